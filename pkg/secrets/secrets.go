// Package secrets issues one-time tokens whose cleartext is handed out once
// and whose bcrypt hash is the only thing persisted.
package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	dErrors "opencollective/pkg/domain-errors"
)

const tokenBytes = 32

// Token is a freshly issued secret and its storable hash.
type Token struct {
	Cleartext string
	Hash      string
}

// Issue generates a URL-safe random token and hashes it.
func Issue() (Token, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return Token{}, fmt.Errorf("could not generate token: %w", err)
	}
	plain := base64.RawURLEncoding.EncodeToString(buf)
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return Token{}, fmt.Errorf("could not hash token: %w", err)
	}
	return Token{Cleartext: plain, Hash: string(hash)}, nil
}

// Verify checks a presented token against a stored hash.
func Verify(presented, hash string) error {
	if presented == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "token cannot be empty")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(presented)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return dErrors.New(dErrors.CodeInvalidInput, "invalid token")
		}
		return fmt.Errorf("could not verify token: %w", err)
	}
	return nil
}
