package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasapolrittideah/secrets/services/secrets-service/internal/model"
	"github.com/vasapolrittideah/secrets/shared/logger"
)

func TestLocalStrategy(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.verifier.Register(ctx, "alice", "hunter2")
	require.NoError(t, err)

	strategy := NewLocalStrategy(env.verifier)
	assert.Equal(t, StrategyLocal, strategy.Name())

	user, err := strategy.Authenticate(ctx, Credentials{Username: "alice", Password: "hunter2"})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	tests := []struct {
		name  string
		creds Credentials
		want  error
	}{
		{"empty username", Credentials{Password: "hunter2"}, ErrInvalidCredentials},
		{"empty password", Credentials{Username: "alice"}, ErrInvalidCredentials},
		{"wrong password", Credentials{Username: "alice", Password: "nope"}, ErrInvalidCredentials},
		{"unknown user", Credentials{Username: "bob", Password: "hunter2"}, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := strategy.Authenticate(ctx, tt.creds)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFederatedStrategy_ResolvesProfile(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	google := NewGoogleStrategy(&fakeExchanger{profileID: "g-7"}, env.resolver, time.Second, logger.Nop())
	facebook := NewFacebookStrategy(&fakeExchanger{profileID: "fb-7"}, env.resolver, time.Second, logger.Nop())
	assert.Equal(t, StrategyGoogle, google.Name())
	assert.Equal(t, StrategyFacebook, facebook.Name())

	g, err := google.Authenticate(ctx, Credentials{Code: "code"})
	require.NoError(t, err)
	assert.Equal(t, "g-7", g.GoogleID)

	f, err := facebook.Authenticate(ctx, Credentials{Code: "code"})
	require.NoError(t, err)
	assert.Equal(t, "fb-7", f.FacebookID)
	assert.NotEqual(t, g.ID, f.ID)
}

func TestFederatedStrategy_FailsClosed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		exchanger *fakeExchanger
		creds     Credentials
	}{
		{"missing code", &fakeExchanger{profileID: "g-1"}, Credentials{}},
		{"exchange error", &fakeExchanger{err: errors.New("invalid_grant")}, Credentials{Code: "code"}},
		{"provider timeout", &fakeExchanger{block: true}, Credentials{Code: "code"}},
		{"empty profile id", &fakeExchanger{}, Credentials{Code: "code"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t)
			strategy := NewGoogleStrategy(tt.exchanger, env.resolver, 20*time.Millisecond, logger.Nop())

			user, err := strategy.Authenticate(context.Background(), tt.creds)
			assert.ErrorIs(t, err, ErrProviderFailure)
			assert.Nil(t, user)

			// no user may be written for a failed exchange
			_, created, err := env.repo.FindOrCreateByProvider(context.Background(), model.ProviderGoogle, "g-1")
			require.NoError(t, err)
			assert.True(t, created, "failed attempt must not have created the identity")
		})
	}
}
