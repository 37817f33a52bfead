// Package fieldcrypt implements the per-field authenticated encryption used
// to seal PII values before they leave the enclave: a versioned token made
// of a random nonce and an AES-256-GCM-SIV ciphertext, both
// base64url-encoded.
package fieldcrypt

import (
	"fmt"

	"github.com/google/tink/go/aead/subtle"

	"github.com/allisson/enclaved/internal/apperr"
)

const (
	// KeyLen is the length in bytes of the AES-256 data encryption key.
	KeyLen = 32

	// NonceLen is the length in bytes of the GCM-SIV nonce Tink embeds at
	// the front of its combined output.
	NonceLen = 12
)

// Encrypt seals plaintext under key using AES-256-GCM-SIV. Tink's subtle
// implementation generates the nonce internally and prefixes it to its
// output; Encrypt splits that combined blob into the Token's Nonce and
// Ciphertext fields so the wire format (v1.<nonce>.<ciphertext>) is under
// this package's control rather than Tink's.
//
// GCM-SIV is chosen deliberately over plain GCM: because every field in a
// payload is encrypted independently and a single DEK may seal millions of
// fields over its lifetime, a construction that remains safe even if two
// encryptions ever reuse a nonce is required. Plain GCM's confidentiality
// collapses completely on nonce reuse; GCM-SIV degrades gracefully.
func Encrypt(key, plaintext []byte) (Token, error) {
	if len(key) != KeyLen {
		return Token{}, apperr.Wrap(apperr.ErrEncryptionFailure, fmt.Sprintf("invalid key length: %d", len(key)))
	}

	cipher, err := subtle.NewAESGCMSIV(key)
	if err != nil {
		return Token{}, apperr.Wrap(apperr.ErrEncryptionFailure, "build cipher")
	}

	combined, err := cipher.Encrypt(plaintext, nil)
	if err != nil {
		return Token{}, apperr.Wrap(apperr.ErrEncryptionFailure, "seal field")
	}
	if len(combined) < NonceLen {
		return Token{}, apperr.Wrap(apperr.ErrEncryptionFailure, "short cipher output")
	}

	return Token{
		Nonce:      append([]byte(nil), combined[:NonceLen]...),
		Ciphertext: append([]byte(nil), combined[NonceLen:]...),
	}, nil
}

// Decrypt opens a Token under key and returns the plaintext. No HTTP
// endpoint currently exposes decryption; the operation exists so a future
// decrypt surface only has to wire a handler, and the round-trip tests in
// this package exercise it directly.
func Decrypt(key []byte, token Token) ([]byte, error) {
	if len(key) != KeyLen {
		return nil, apperr.Wrap(apperr.ErrEncryptionFailure, fmt.Sprintf("invalid key length: %d", len(key)))
	}
	if len(token.Nonce) != NonceLen {
		return nil, apperr.Wrap(apperr.ErrEncryptionFailure, "invalid nonce length")
	}

	cipher, err := subtle.NewAESGCMSIV(key)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrEncryptionFailure, "build cipher")
	}

	combined := make([]byte, 0, len(token.Nonce)+len(token.Ciphertext))
	combined = append(combined, token.Nonce...)
	combined = append(combined, token.Ciphertext...)

	plaintext, err := cipher.Decrypt(combined, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrEncryptionFailure, "open field")
	}

	return plaintext, nil
}
