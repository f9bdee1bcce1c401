// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package votecrypto

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"testing"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	cfg, err := NewConfig("test-encryption-key", "test-hmac-secret")
	if err != nil {
		t.Fatalf("NewConfig() error = %v", err)
	}
	return cfg
}

func TestNewConfig(t *testing.T) {
	cfg := testConfig(t)
	if len(cfg.Key) != 32 {
		t.Errorf("derived key length = %d, want 32", len(cfg.Key))
	}

	// Derivation is deterministic
	again := testConfig(t)
	if hex.EncodeToString(cfg.Key) != hex.EncodeToString(again.Key) {
		t.Error("NewConfig() is not deterministic")
	}

	other, _ := NewConfig("other-key", "test-hmac-secret")
	if hex.EncodeToString(cfg.Key) == hex.EncodeToString(other.Key) {
		t.Error("different secrets derived the same key")
	}

	if _, err := NewConfig("", "x"); err == nil {
		t.Error("expected error for empty encryption secret")
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	cfg := testConfig(t)

	inputs := []string{"", "101", "a longer candidate reference", "ünïcødé"}
	for _, in := range inputs {
		ct1, err := cfg.Encrypt(in)
		if err != nil {
			t.Fatalf("Encrypt(%q) error = %v", in, err)
		}
		ct2, err := cfg.Encrypt(in)
		if err != nil {
			t.Fatalf("Encrypt(%q) error = %v", in, err)
		}

		if ct1 == ct2 {
			t.Errorf("Encrypt(%q) produced identical ciphertexts", in)
		}

		for _, ct := range []string{ct1, ct2} {
			pt, err := cfg.Decrypt(ct)
			if err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}
			if pt != in {
				t.Errorf("Decrypt() = %q, want %q", pt, in)
			}
		}

		raw, _ := base64.StdEncoding.DecodeString(ct1)
		if len(raw) < IVSize {
			t.Errorf("ciphertext shorter than iv: %d", len(raw))
		}
	}
}

func TestDecryptFailures(t *testing.T) {
	cfg := testConfig(t)
	valid, _ := cfg.Encrypt("101")

	raw, _ := base64.StdEncoding.DecodeString(valid)
	raw[len(raw)-1] ^= 0xff
	flipped := base64.StdEncoding.EncodeToString(raw)

	otherCfg, _ := NewConfig("rotated-key", "test-hmac-secret")

	tests := []struct {
		name string
		cfg  Config
		in   string
	}{
		{"not base64", cfg, "%%%not-base64%%%"},
		{"too short", cfg, base64.StdEncoding.EncodeToString([]byte("short"))},
		{"tampered", cfg, flipped},
		{"empty", cfg, ""},
		{"rotated key", otherCfg, valid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cfg.Decrypt(tt.in)
			if !errors.Is(err, ErrDecrypt) {
				t.Errorf("Decrypt() error = %v, want ErrDecrypt", err)
			}
		})
	}
}

func TestCandidateIDRoundTrip(t *testing.T) {
	cfg := testConfig(t)
	ct, err := cfg.EncryptCandidateID(4242)
	if err != nil {
		t.Fatal(err)
	}
	id, err := cfg.DecryptCandidateID(ct)
	if err != nil {
		t.Fatal(err)
	}
	if id != 4242 {
		t.Errorf("DecryptCandidateID() = %d, want 4242", id)
	}

	notNumber, _ := cfg.Encrypt("abc")
	if _, err := cfg.DecryptCandidateID(notNumber); !errors.Is(err, ErrDecrypt) {
		t.Errorf("expected ErrDecrypt for non-numeric plaintext, got %v", err)
	}
}

func TestInvalidKey(t *testing.T) {
	cfg := Config{Key: []byte("short")}
	if _, err := cfg.Encrypt("x"); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("expected ErrInvalidKey, got %v", err)
	}
}

func TestHash(t *testing.T) {
	sum := sha256.Sum256([]byte("abc"))
	if got := Hash("abc"); got != hex.EncodeToString(sum[:]) {
		t.Errorf("Hash() = %s", got)
	}
	if len(Hash("")) != 64 {
		t.Error("Hash() should return 64 hex chars")
	}
}

func TestHMACSign(t *testing.T) {
	a := HMACSign("data", []byte("k1"))
	if a != HMACSign("data", []byte("k1")) {
		t.Error("HMACSign() is not deterministic")
	}
	if a == HMACSign("data", []byte("k2")) {
		t.Error("HMACSign() ignored the secret")
	}
	if !Equal(a, HMACSign("data", []byte("k1"))) {
		t.Error("Equal() rejected identical digests")
	}
}

func TestVoteHashFieldOrder(t *testing.T) {
	got := VoteHash("V1", 10, 101, 4, "salt")
	want := Hash("V1" + "10" + "101" + "4" + "salt")
	if got != want {
		t.Errorf("VoteHash() = %s, want %s", got, want)
	}
}

func TestVoteSignatureFieldOrder(t *testing.T) {
	cfg := testConfig(t)
	got := cfg.VoteSignature("V1", 10, 4, 101)
	want := HMACSign("V1"+"10"+"4"+"101", cfg.HMACSecret)
	if got != want {
		t.Errorf("VoteSignature() = %s, want %s", got, want)
	}
}

func TestNewSalt(t *testing.T) {
	s1, err := NewSalt()
	if err != nil {
		t.Fatal(err)
	}
	s2, _ := NewSalt()
	if len(s1) != 32 {
		t.Errorf("salt length = %d, want 32", len(s1))
	}
	if s1 == s2 {
		t.Error("NewSalt() produced duplicate salts")
	}
}
