package kms

import (
	"errors"
	"fmt"

	"github.com/awnumar/memguard"
)

var ErrEmptyToken = errors.New("kms: empty token")

// Token is a secret held encrypted at rest in a memguard Enclave.
type Token struct {
	enclave *memguard.Enclave
}

// SealToken moves plain into an enclave. plain is wiped.
func SealToken(plain []byte) (*Token, error) {
	if len(plain) == 0 {
		return nil, ErrEmptyToken
	}
	return &Token{enclave: memguard.NewEnclave(plain)}, nil
}

// Reveal opens the enclave momentarily and returns the secret.
func (t *Token) Reveal() (string, error) {
	buf, err := t.enclave.Open()
	if err != nil {
		return "", fmt.Errorf("kms: open enclave: %w", err)
	}
	defer buf.Destroy()
	return string(buf.Bytes()), nil
}
