package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasapolrittideah/secrets/shared/validate"
)

func TestParse_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := Parse(map[string]string{"OAUTH_STATE_SECRET": "0123456789abcdef"})
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.HTTP.Addr)
	assert.Equal(t, "mongo", cfg.Store.Driver)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	assert.Equal(t, "userDB", cfg.Mongo.Database)
	assert.Equal(t, "mongo", cfg.Session.Store)
	assert.Equal(t, 24*time.Hour, cfg.Session.Lifetime)
	assert.Equal(t, "session", cfg.Session.CookieName)
	assert.Equal(t, 10*time.Minute, cfg.OAuth.StateTTL)
	assert.Equal(t, "http://localhost:3000/auth/google/secrets", cfg.Google.CallbackURL)
	assert.Equal(t, "http://localhost:3000/auth/facebook/secrets", cfg.Facebook.CallbackURL)
	assert.False(t, cfg.Google.Enabled())
	assert.False(t, cfg.Facebook.Enabled())
}

func TestParse_Providers(t *testing.T) {
	t.Parallel()

	cfg, err := Parse(map[string]string{
		"OAUTH_STATE_SECRET":    "0123456789abcdef",
		"GOOGLE_CLIENT_ID":      "google-id",
		"GOOGLE_CLIENT_SECRET":  "google-secret",
		"FACEBOOK_APP_ID":       "fb-id",
		"FACEBOOK_APP_SECRET":   "fb-secret",
		"FACEBOOK_CALLBACK_URL": "https://secrets.example.com/auth/facebook/secrets",
		"SESSION_STORE":         "redis",
		"REDIS_DB":              "2",
	})
	require.NoError(t, err)

	assert.True(t, cfg.Google.Enabled())
	assert.Equal(t, "google-id", cfg.Google.ID())
	assert.Equal(t, "google-secret", cfg.Google.Secret())
	assert.True(t, cfg.Facebook.Enabled())
	assert.Equal(t, "fb-id", cfg.Facebook.ID())
	assert.Equal(t, "fb-secret", cfg.Facebook.Secret())
	assert.Equal(t, "https://secrets.example.com/auth/facebook/secrets", cfg.Facebook.CallbackURL)
	assert.Equal(t, "redis", cfg.Session.Store)
	assert.Equal(t, 2, cfg.Redis.DB)
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing state secret", map[string]string{}},
		{"short state secret", map[string]string{"OAUTH_STATE_SECRET": "short"}},
		{"unknown store driver", map[string]string{"OAUTH_STATE_SECRET": "0123456789abcdef", "STORE_DRIVER": "sqlite"}},
		{"unknown session store", map[string]string{"OAUTH_STATE_SECRET": "0123456789abcdef", "SESSION_STORE": "file"}},
		{"bad callback url", map[string]string{"OAUTH_STATE_SECRET": "0123456789abcdef", "GOOGLE_CALLBACK_URL": "::"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.env)
			var validationErr *validate.Error
			assert.ErrorAs(t, err, &validationErr)
		})
	}

	_, err := Parse(map[string]string{"OAUTH_STATE_SECRET": "0123456789abcdef", "SESSION_LIFETIME": "forever"})
	assert.Error(t, err)
}
