// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
)

var (
	ErrInvalidAdminKey = errors.New("invalid admin key")
	ErrInvalidToken    = errors.New("invalid token format")
)

// IssueVoterToken creates the session token the registration service hands
// to an approved voter: base64(voter_id) "." base64(HMAC(voter_id)).
// This is deterministic and verifiable
func IssueVoterToken(voterID, secret string) string {
	enc := base64.RawURLEncoding
	return enc.EncodeToString([]byte(voterID)) + "." + enc.EncodeToString(tokenMAC(voterID, secret))
}

// ParseVoterToken validates a voter token and returns the voter id it carries
func ParseVoterToken(token, secret string) (string, error) {
	idPart, macPart, ok := strings.Cut(token, ".")
	if !ok || idPart == "" || macPart == "" {
		return "", ErrInvalidToken
	}

	enc := base64.RawURLEncoding
	rawID, err := enc.DecodeString(idPart)
	if err != nil || len(rawID) == 0 {
		return "", ErrInvalidToken
	}
	mac, err := enc.DecodeString(macPart)
	if err != nil {
		return "", ErrInvalidToken
	}

	voterID := string(rawID)
	if !hmac.Equal(mac, tokenMAC(voterID, secret)) {
		return "", ErrInvalidToken
	}
	return voterID, nil
}

func tokenMAC(voterID, secret string) []byte {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte("voter:"))
	h.Write([]byte(voterID))
	return h.Sum(nil)
}

// ValidateAdminKey checks the provided admin key against the configured one
func ValidateAdminKey(provided, expected string) error {
	if provided == "" || expected == "" {
		return ErrInvalidAdminKey
	}
	if !hmac.Equal([]byte(provided), []byte(expected)) {
		return ErrInvalidAdminKey
	}
	return nil
}
