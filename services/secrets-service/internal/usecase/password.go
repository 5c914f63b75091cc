package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/secrets/services/secrets-service/internal/metrics"
	"github.com/vasapolrittideah/secrets/services/secrets-service/internal/model"
	"github.com/vasapolrittideah/secrets/services/secrets-service/internal/repository"
)

// PasswordVerifier registers and verifies local username/password accounts.
// Users it returns never carry the password digest.
type PasswordVerifier interface {
	Register(ctx context.Context, username, password string) (*model.User, error)
	Verify(ctx context.Context, username, password string) (*model.User, error)
}

// PasswordHasher derives and checks password digests.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
	VerifyPassword(password, encoded string) (bool, error)
}

// absentUserPassword is hashed once to give unknown usernames a digest to verify against.
const absentUserPassword = "absent-user-password"

type passwordVerifier struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	logger   *zerolog.Logger

	absentDigest     string
	absentDigestOnce sync.Once
}

func NewPasswordVerifier(
	userRepo repository.UserRepository,
	hasher PasswordHasher,
	logger *zerolog.Logger,
) PasswordVerifier {
	return &passwordVerifier{
		userRepo: userRepo,
		hasher:   hasher,
		logger:   logger,
	}
}

func (v *passwordVerifier) Register(ctx context.Context, username, password string) (*model.User, error) {
	if username == "" {
		return nil, ErrInvalidCredentials
	}

	passwordHash, err := v.hasher.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := v.userRepo.CreateUser(ctx, &model.User{
		Username:     username,
		PasswordHash: passwordHash,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateUsername
		}

		return nil, storeUnavailable(err)
	}

	metrics.UsersCreated.WithLabelValues("username").Inc()
	v.logger.Info().Str("user_id", user.ID.Hex()).Msg("registered local user")

	user.PasswordHash = ""
	return user, nil
}

func (v *passwordVerifier) Verify(ctx context.Context, username, password string) (*model.User, error) {
	user, err := v.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			v.verifyAbsent(password)
			return nil, ErrNotFound
		}

		return nil, storeUnavailable(err)
	}

	if user.PasswordHash == "" {
		v.verifyAbsent(password)
		return nil, ErrInvalidCredentials
	}

	ok, err := v.hasher.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		v.logger.Error().Err(err).Str("user_id", user.ID.Hex()).Msg("stored password digest is unreadable")
		return nil, ErrInvalidCredentials
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	user.PasswordHash = ""
	return user, nil
}

// verifyAbsent spends the same digest work as a real verification so that an
// unknown username answers as slowly as a wrong password.
func (v *passwordVerifier) verifyAbsent(password string) {
	v.absentDigestOnce.Do(func() {
		digest, err := v.hasher.HashPassword(absentUserPassword)
		if err != nil {
			v.logger.Error().Err(err).Msg("failed to derive absent user digest")
			return
		}
		v.absentDigest = digest
	})

	if v.absentDigest == "" {
		return
	}

	_, _ = v.hasher.VerifyPassword(password, v.absentDigest)
}
