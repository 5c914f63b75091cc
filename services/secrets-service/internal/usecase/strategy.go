package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/secrets/services/secrets-service/internal/model"
)

const (
	StrategyLocal    = "local"
	StrategyGoogle   = "google"
	StrategyFacebook = "facebook"
)

// Credentials carries the input of one authentication attempt. Local strategies
// read Username and Password; federated strategies read the authorization Code.
type Credentials struct {
	Username string
	Password string
	Code     string
}

// Strategy authenticates a client from one kind of credentials.
type Strategy interface {
	Name() string
	Authenticate(ctx context.Context, creds Credentials) (*model.User, error)
}

// ProfileExchanger trades an OAuth2 authorization code for a stable provider profile id.
type ProfileExchanger interface {
	ExchangeProfileID(ctx context.Context, code string) (string, error)
}

// LocalStrategy authenticates username/password credentials.
type LocalStrategy struct {
	verifier PasswordVerifier
}

func NewLocalStrategy(verifier PasswordVerifier) *LocalStrategy {
	return &LocalStrategy{verifier: verifier}
}

func (s *LocalStrategy) Name() string {
	return StrategyLocal
}

func (s *LocalStrategy) Authenticate(ctx context.Context, creds Credentials) (*model.User, error) {
	if creds.Username == "" || creds.Password == "" {
		return nil, ErrInvalidCredentials
	}

	return s.verifier.Verify(ctx, creds.Username, creds.Password)
}

// federatedStrategy resolves the profile id confirmed by a provider to a user.
// The provider round trip is bounded by timeout; nothing is written unless it
// completes, so an abandoned exchange fails closed.
type federatedStrategy struct {
	name      string
	provider  model.Provider
	exchanger ProfileExchanger
	resolver  IdentityResolver
	timeout   time.Duration
	logger    *zerolog.Logger
}

func (s *federatedStrategy) Name() string {
	return s.name
}

func (s *federatedStrategy) Authenticate(ctx context.Context, creds Credentials) (*model.User, error) {
	if creds.Code == "" {
		return nil, ErrProviderFailure
	}

	exchangeCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		exchangeCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	profileID, err := s.exchanger.ExchangeProfileID(exchangeCtx, creds.Code)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProviderFailure, err)
	}

	if err := exchangeCtx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProviderFailure, err)
	}

	s.logger.Debug().Str("provider", string(s.provider)).Str("profile_id", profileID).Msg("provider confirmed profile")

	return s.resolver.Resolve(ctx, s.provider, profileID)
}

// GoogleStrategy authenticates Google OAuth2 callbacks.
type GoogleStrategy struct {
	federatedStrategy
}

func NewGoogleStrategy(
	exchanger ProfileExchanger,
	resolver IdentityResolver,
	timeout time.Duration,
	logger *zerolog.Logger,
) *GoogleStrategy {
	return &GoogleStrategy{federatedStrategy{
		name:      StrategyGoogle,
		provider:  model.ProviderGoogle,
		exchanger: exchanger,
		resolver:  resolver,
		timeout:   timeout,
		logger:    logger,
	}}
}

// FacebookStrategy authenticates Facebook OAuth2 callbacks.
type FacebookStrategy struct {
	federatedStrategy
}

func NewFacebookStrategy(
	exchanger ProfileExchanger,
	resolver IdentityResolver,
	timeout time.Duration,
	logger *zerolog.Logger,
) *FacebookStrategy {
	return &FacebookStrategy{federatedStrategy{
		name:      StrategyFacebook,
		provider:  model.ProviderFacebook,
		exchanger: exchanger,
		resolver:  resolver,
		timeout:   timeout,
		logger:    logger,
	}}
}
