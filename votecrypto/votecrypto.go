// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package votecrypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"

	"golang.org/x/crypto/hkdf"
)

const (
	// IVSize is the length of the random prefix of every ciphertext.
	IVSize   = 16
	keySize  = 32
	saltSize = 16
)

var (
	ErrDecrypt    = errors.New("decryption failed")
	ErrInvalidKey = errors.New("encryption key must be 32 bytes")
)

// Config holds the process-wide vote secrets. Rotating either value makes
// previously stored ciphertexts and signatures unverifiable.
type Config struct {
	Key        []byte
	HMACSecret []byte
}

// NewConfig derives the AES-256 key from the configured encryption secret.
func NewConfig(encryptionSecret, hmacSecret string) (Config, error) {
	if encryptionSecret == "" || hmacSecret == "" {
		return Config{}, errors.New("encryption secret and hmac secret are required")
	}

	key := make([]byte, keySize)
	kdf := hkdf.New(sha256.New, []byte(encryptionSecret), nil, []byte("ward-ballot candidate encryption"))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return Config{}, fmt.Errorf("failed to derive encryption key: %w", err)
	}

	return Config{Key: key, HMACSecret: []byte(hmacSecret)}, nil
}

func (c Config) aead() (cipher.AEAD, error) {
	if len(c.Key) != keySize {
		return nil, ErrInvalidKey
	}
	block, err := aes.NewCipher(c.Key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCMWithNonceSize(block, IVSize)
}

// Encrypt returns base64(iv || ciphertext) under a fresh random IV.
func (c Config) Encrypt(plaintext string) (string, error) {
	gcm, err := c.aead()
	if err != nil {
		return "", err
	}

	iv := make([]byte, IVSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("failed to generate iv: %w", err)
	}

	sealed := gcm.Seal(iv, iv, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Any malformed or tampered input yields ErrDecrypt.
func (c Config) Decrypt(ciphertext string) (string, error) {
	gcm, err := c.aead()
	if err != nil {
		return "", err
	}

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil || len(raw) < IVSize+gcm.Overhead() {
		return "", ErrDecrypt
	}

	plain, err := gcm.Open(nil, raw[:IVSize], raw[IVSize:], nil)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plain), nil
}

// EncryptCandidateID encrypts the decimal form of a candidate id.
func (c Config) EncryptCandidateID(candidateID int64) (string, error) {
	return c.Encrypt(strconv.FormatInt(candidateID, 10))
}

// DecryptCandidateID decrypts and parses a candidate id. A plaintext that is
// not an integer is reported as ErrDecrypt.
func (c Config) DecryptCandidateID(ciphertext string) (int64, error) {
	plain, err := c.Decrypt(ciphertext)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(plain, 10, 64)
	if err != nil {
		return 0, ErrDecrypt
	}
	return id, nil
}

// Hash returns the hex SHA-256 digest of data.
func Hash(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// HMACSign returns the hex HMAC-SHA256 of data under secret.
func HMACSign(data string, secret []byte) string {
	h := hmac.New(sha256.New, secret)
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

// Equal compares two hex digests in constant time.
func Equal(a, b string) bool {
	return hmac.Equal([]byte(a), []byte(b))
}

// NewSalt returns 16 random bytes, hex encoded.
func NewSalt() (string, error) {
	b := make([]byte, saltSize)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// VoteHash is SHA-256 over voter_id || election_id || candidate_id || post_id || salt.
func VoteHash(voterID string, electionID, candidateID, postID int64, salt string) string {
	return Hash(voterID +
		strconv.FormatInt(electionID, 10) +
		strconv.FormatInt(candidateID, 10) +
		strconv.FormatInt(postID, 10) +
		salt)
}

// VoteSignature is HMAC-SHA256 over voter_id || election_id || post_id || candidate_id.
func (c Config) VoteSignature(voterID string, electionID, postID, candidateID int64) string {
	return HMACSign(voterID+
		strconv.FormatInt(electionID, 10)+
		strconv.FormatInt(postID, 10)+
		strconv.FormatInt(candidateID, 10), c.HMACSecret)
}
