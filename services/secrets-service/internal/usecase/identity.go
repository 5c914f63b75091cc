package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/secrets/services/secrets-service/internal/metrics"
	"github.com/vasapolrittideah/secrets/services/secrets-service/internal/model"
	"github.com/vasapolrittideah/secrets/services/secrets-service/internal/repository"
)

// IdentityResolver maps a federated profile id to exactly one user.
type IdentityResolver interface {
	Resolve(ctx context.Context, provider model.Provider, providerID string) (*model.User, error)
}

// maxResolveAttempts bounds retries after losing a concurrent first-login race.
const maxResolveAttempts = 3

type identityResolver struct {
	userRepo repository.UserRepository
	logger   *zerolog.Logger
}

func NewIdentityResolver(userRepo repository.UserRepository, logger *zerolog.Logger) IdentityResolver {
	return &identityResolver{
		userRepo: userRepo,
		logger:   logger,
	}
}

func (r *identityResolver) Resolve(ctx context.Context, provider model.Provider, providerID string) (*model.User, error) {
	if providerID == "" {
		return nil, ErrProviderFailure
	}
	if _, err := provider.Field(); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= maxResolveAttempts; attempt++ {
		user, created, err := r.userRepo.FindOrCreateByProvider(ctx, provider, providerID)
		if err == nil {
			if created {
				metrics.UsersCreated.WithLabelValues(string(provider)).Inc()
				r.logger.Info().
					Str("user_id", user.ID.Hex()).
					Str("provider", string(provider)).
					Msg("created user for federated identity")
			}

			return user, nil
		}

		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, storeUnavailable(err)
		}

		lastErr = err
		r.logger.Debug().Int("attempt", attempt).Str("provider", string(provider)).Msg("find-or-create conflict, retrying")
	}

	return nil, storeUnavailable(lastErr)
}
