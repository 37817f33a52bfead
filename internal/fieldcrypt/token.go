package fieldcrypt

import (
	"encoding/base64"
	"strings"

	"github.com/allisson/enclaved/internal/apperr"
)

// versionPrefix is the only token version this service produces or accepts.
// A future incompatible cipher change would introduce "v2" alongside it,
// never replace it silently.
const versionPrefix = "v1"

// Token is an encrypted field value in its structured form: a nonce and a
// ciphertext (which, for an AEAD, includes the authentication tag).
type Token struct {
	Nonce      []byte
	Ciphertext []byte
}

// String renders the token as "v1.<nonce-b64url>.<ciphertext-b64url>", the
// form written back into transformed payloads.
func (t Token) String() string {
	var b strings.Builder
	b.WriteString(versionPrefix)
	b.WriteByte('.')
	b.WriteString(base64.RawURLEncoding.EncodeToString(t.Nonce))
	b.WriteByte('.')
	b.WriteString(base64.RawURLEncoding.EncodeToString(t.Ciphertext))
	return b.String()
}

// ParseToken parses the "v1.<nonce>.<ciphertext>" representation back into a
// Token. It rejects anything with the wrong prefix, the wrong number of
// parts, or invalid base64url.
func ParseToken(s string) (Token, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Token{}, apperr.Wrap(apperr.ErrEncryptionFailure, "malformed token: expected three parts")
	}
	if parts[0] != versionPrefix {
		return Token{}, apperr.Wrap(apperr.ErrEncryptionFailure, "unsupported token version: "+parts[0])
	}

	nonce, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return Token{}, apperr.Wrap(apperr.ErrEncryptionFailure, "invalid nonce encoding")
	}

	if len(nonce) != NonceLen {
		return Token{}, apperr.Wrap(apperr.ErrEncryptionFailure, "invalid nonce length")
	}

	ciphertext, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return Token{}, apperr.Wrap(apperr.ErrEncryptionFailure, "invalid ciphertext encoding")
	}

	return Token{Nonce: nonce, Ciphertext: ciphertext}, nil
}
