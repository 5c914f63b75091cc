package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasapolrittideah/secrets/services/secrets-service/internal/model"
	"github.com/vasapolrittideah/secrets/services/secrets-service/internal/repository"
)

func TestIdentityResolver_FindOrCreate(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.resolver.Resolve(ctx, model.ProviderGoogle, "g-123")
	require.NoError(t, err)
	assert.Equal(t, "g-123", first.GoogleID)
	assert.Empty(t, first.Username)

	again, err := env.resolver.Resolve(ctx, model.ProviderGoogle, "g-123")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	// the same id under another provider is a different identity
	other, err := env.resolver.Resolve(ctx, model.ProviderFacebook, "g-123")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
	assert.Equal(t, "g-123", other.FacebookID)
}

func TestIdentityResolver_ConcurrentFirstLogin(t *testing.T) {
	t.Parallel()

	repo := &countingUserRepository{UserRepository: repository.NewUserMemoryRepository()}
	env := newTestEnvWithRepo(t, repo)
	ctx := context.Background()

	const callers = 16
	ids := make([]string, callers)

	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			user, err := env.resolver.Resolve(ctx, model.ProviderFacebook, "fb-42")
			if assert.NoError(t, err) {
				ids[i] = user.ID.Hex()
			}
		}()
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	assert.Equal(t, int32(1), repo.created.Load(), "exactly one user may be created")

	// the identity is already anchored, so another resolve must not insert
	user, created, err := repo.UserRepository.FindOrCreateByProvider(ctx, model.ProviderFacebook, "fb-42")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, ids[0], user.ID.Hex())
	assert.Equal(t, "fb-42", user.FacebookID)
}

func TestIdentityResolver_RetriesLostRace(t *testing.T) {
	t.Parallel()

	repo := &flakyUserRepository{
		UserRepository: repository.NewUserMemoryRepository(),
		duplicatesLeft: maxResolveAttempts - 1,
	}
	env := newTestEnvWithRepo(t, repo)

	user, err := env.resolver.Resolve(context.Background(), model.ProviderGoogle, "g-1")
	require.NoError(t, err)
	assert.Equal(t, "g-1", user.GoogleID)
}

func TestIdentityResolver_GivesUpAfterRepeatedConflicts(t *testing.T) {
	t.Parallel()

	repo := &flakyUserRepository{
		UserRepository: repository.NewUserMemoryRepository(),
		duplicatesLeft: maxResolveAttempts,
	}
	env := newTestEnvWithRepo(t, repo)

	_, err := env.resolver.Resolve(context.Background(), model.ProviderGoogle, "g-1")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestIdentityResolver_Failures(t *testing.T) {
	t.Parallel()

	down := errors.New("connection refused")
	env := newTestEnvWithRepo(t, &flakyUserRepository{
		UserRepository: repository.NewUserMemoryRepository(),
		failWith:       down,
	})
	ctx := context.Background()

	_, err := env.resolver.Resolve(ctx, model.ProviderGoogle, "g-1")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, down)

	_, err = env.resolver.Resolve(ctx, model.ProviderGoogle, "")
	assert.ErrorIs(t, err, ErrProviderFailure)

	_, err = env.resolver.Resolve(ctx, model.Provider("twitter"), "t-1")
	assert.Error(t, err)
}
