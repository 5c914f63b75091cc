package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidState = errors.New("invalid oauth state")

// StateSigner issues and checks the OAuth2 "state" parameter. A state is a short
// lived HS256 token whose audience is the provider it was issued for, so a state
// minted for one provider cannot complete another provider's callback.
type StateSigner struct {
	issuer string
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewStateSigner creates a StateSigner.
func NewStateSigner(issuer, secret string, ttl time.Duration) *StateSigner {
	return &StateSigner{
		issuer: issuer,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue returns a fresh state for provider.
func (s *StateSigner) Issue(provider string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    s.issuer,
		Audience:  jwt.ClaimStrings{provider},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks that state was issued by this signer for provider and has not expired.
func (s *StateSigner) Verify(state, provider string) error {
	if state == "" {
		return ErrInvalidState
	}

	token, err := jwt.ParseWithClaims(state, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return s.secret, nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithAudience(provider),
		jwt.WithIssuer(s.issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return errors.Join(ErrInvalidState, err)
	}
	if !token.Valid {
		return ErrInvalidState
	}

	return nil
}
