// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package votecrypto provides the integrity primitives of the vote ledger.

# Secrets

Config carries the encryption key and the HMAC secret. It is built once at
startup and passed to the ledger, the verifier and the tally engine:

	cfg, err := votecrypto.NewConfig(encryptionSecret, hmacSecret)

The 256-bit AES key is derived from the encryption secret with HKDF-SHA256.

# Candidate Encryption

Encrypt uses AES-256-GCM with a fresh 16-byte IV and returns
base64(iv || ciphertext):

	ct, err := cfg.Encrypt("101")
	pt, err := cfg.Decrypt(ct) // ErrDecrypt on malformed or tampered input

Callers treat ErrDecrypt as a failed integrity check, never as an empty
candidate.

# Vote Hash and Signature

	hash := votecrypto.VoteHash(voterID, electionID, candidateID, postID, salt)
	sig := cfg.VoteSignature(voterID, electionID, postID, candidateID)

Fields are concatenated in decimal form without separators.
*/
package votecrypto
