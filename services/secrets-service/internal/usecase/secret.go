package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/secrets/services/secrets-service/internal/metrics"
	"github.com/vasapolrittideah/secrets/services/secrets-service/internal/repository"
)

// SecretUsecase stores and lists the one secret each user may share.
type SecretUsecase interface {
	// SubmitSecret replaces the secret of the user identified by userID.
	SubmitSecret(ctx context.Context, userID, secret string) error

	// ListSecrets returns every stored secret without revealing whose it is.
	ListSecrets(ctx context.Context) ([]string, error)
}

type secretUsecase struct {
	userRepo repository.UserRepository
	logger   *zerolog.Logger
}

func NewSecretUsecase(userRepo repository.UserRepository, logger *zerolog.Logger) SecretUsecase {
	return &secretUsecase{
		userRepo: userRepo,
		logger:   logger,
	}
}

func (u *secretUsecase) SubmitSecret(ctx context.Context, userID, secret string) error {
	if err := u.userRepo.UpdateSecret(ctx, userID, secret); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}

		return storeUnavailable(err)
	}

	metrics.SecretsSubmitted.Inc()
	u.logger.Info().Str("user_id", userID).Msg("secret submitted")

	return nil
}

func (u *secretUsecase) ListSecrets(ctx context.Context) ([]string, error) {
	users, err := u.userRepo.ListUsersWithSecret(ctx)
	if err != nil {
		return nil, storeUnavailable(err)
	}

	secrets := make([]string, 0, len(users))
	for _, user := range users {
		secrets = append(secrets, user.Secret)
	}

	return secrets, nil
}
