package security

import (
	"errors"

	"github.com/matthewhartstonge/argon2"
)

// ErrEmptyPassword is returned when hashing an empty password.
var ErrEmptyPassword = errors.New("password must not be empty")

// PasswordHasher derives and verifies salted argon2id digests.
// The encoded digest carries its own salt and parameters, so a digest
// produced with one configuration still verifies after the costs change.
type PasswordHasher struct {
	config argon2.Config
}

// NewPasswordHasher creates a PasswordHasher. Zero costs fall back to the library defaults.
func NewPasswordHasher(timeCost, memoryCost uint32) *PasswordHasher {
	cfg := argon2.DefaultConfig()
	if timeCost > 0 {
		cfg.TimeCost = timeCost
	}
	if memoryCost > 0 {
		cfg.MemoryCost = memoryCost
	}

	return &PasswordHasher{config: cfg}
}

// HashPassword returns the encoded digest of password with a fresh random salt.
func (h *PasswordHasher) HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	encoded, err := h.config.HashEncoded([]byte(password))
	if err != nil {
		return "", err
	}

	return string(encoded), nil
}

// VerifyPassword reports whether password matches the encoded digest.
// The comparison is constant time.
func (h *PasswordHasher) VerifyPassword(password, encoded string) (bool, error) {
	return argon2.VerifyEncoded([]byte(password), []byte(encoded))
}
