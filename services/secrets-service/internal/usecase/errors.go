package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrProviderFailure    = errors.New("identity provider failure")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrUnknownStrategy    = errors.New("unknown authentication strategy")
)

func storeUnavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
