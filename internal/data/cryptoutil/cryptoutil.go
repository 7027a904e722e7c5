// Package cryptoutil signs outbound notice bodies and compares shared secrets.
package cryptoutil

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"
)

// SignaturePrefix names the digest in rendered signatures.
const SignaturePrefix = "sha256="

// Signer computes HMAC-SHA256 signatures over message bodies.
type Signer struct {
	key []byte
}

// NewSigner constructs a Signer. The key must be non-empty.
func NewSigner(key []byte) (*Signer, error) {
	if len(key) == 0 {
		return nil, errors.New("signing key is required")
	}
	return &Signer{key: append([]byte(nil), key...)}, nil
}

// Sign returns "sha256=<hex digest>" for body.
func (s *Signer) Sign(body []byte) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write(body)
	return SignaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature was produced by Sign for body.
func (s *Signer) Verify(body []byte, signature string) bool {
	got, ok := strings.CutPrefix(strings.TrimSpace(signature), SignaturePrefix)
	if !ok {
		return false
	}
	raw, err := hex.DecodeString(got)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, s.key)
	mac.Write(body)
	return hmac.Equal(raw, mac.Sum(nil))
}

// SecretEqual compares two shared secrets in constant time. Empty secrets never match.
func SecretEqual(expected, provided string) bool {
	if expected == "" || provided == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(provided)) == 1
}
