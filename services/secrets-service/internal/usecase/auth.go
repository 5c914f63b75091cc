package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/secrets/services/secrets-service/internal/metrics"
	"github.com/vasapolrittideah/secrets/services/secrets-service/internal/model"
)

// AuthUsecase is the single entry point for turning credentials into an
// authenticated session and for answering who the current client is.
// All methods operate on the session attached to ctx.
type AuthUsecase interface {
	// Register creates a local account and logs it in.
	Register(ctx context.Context, username, password string) (*model.User, error)

	// Authenticate runs the named strategy and logs the resulting user in.
	Authenticate(ctx context.Context, strategy string, creds Credentials) (*model.User, error)

	// CurrentUser returns the authenticated user, or nil when anonymous.
	CurrentUser(ctx context.Context) (*model.User, error)

	// RequireUser is CurrentUser that fails with ErrUnauthenticated when anonymous.
	RequireUser(ctx context.Context) (*model.User, error)

	// Logout returns the client to anonymous.
	Logout(ctx context.Context) error

	// HasStrategy reports whether a strategy is configured under name.
	HasStrategy(name string) bool
}

type authUsecase struct {
	verifier   PasswordVerifier
	sessions   *SessionManager
	strategies map[string]Strategy
	logger     *zerolog.Logger
}

func NewAuthUsecase(
	verifier PasswordVerifier,
	sessions *SessionManager,
	logger *zerolog.Logger,
	strategies ...Strategy,
) AuthUsecase {
	byName := make(map[string]Strategy, len(strategies))
	for _, s := range strategies {
		byName[s.Name()] = s
	}

	return &authUsecase{
		verifier:   verifier,
		sessions:   sessions,
		strategies: byName,
		logger:     logger,
	}
}

func (u *authUsecase) Register(ctx context.Context, username, password string) (*model.User, error) {
	user, err := u.verifier.Register(ctx, username, password)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("register", "failure").Inc()
		return nil, err
	}

	if _, err := u.sessions.Login(ctx, user); err != nil {
		metrics.AuthAttempts.WithLabelValues("register", "failure").Inc()
		return nil, err
	}

	metrics.AuthAttempts.WithLabelValues("register", "success").Inc()
	return user, nil
}

func (u *authUsecase) Authenticate(ctx context.Context, strategy string, creds Credentials) (*model.User, error) {
	s, ok := u.strategies[strategy]
	if !ok {
		return nil, ErrUnknownStrategy
	}

	user, err := s.Authenticate(ctx, creds)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues(strategy, "failure").Inc()
		return nil, err
	}

	if _, err := u.sessions.Login(ctx, user); err != nil {
		metrics.AuthAttempts.WithLabelValues(strategy, "failure").Inc()
		return nil, err
	}

	metrics.AuthAttempts.WithLabelValues(strategy, "success").Inc()
	u.logger.Info().Str("user_id", user.ID.Hex()).Str("strategy", strategy).Msg("user logged in")

	return user, nil
}

func (u *authUsecase) CurrentUser(ctx context.Context) (*model.User, error) {
	return u.sessions.Resolve(ctx)
}

func (u *authUsecase) RequireUser(ctx context.Context) (*model.User, error) {
	user, err := u.sessions.Resolve(ctx)
	if err != nil {
		return nil, errors.Join(ErrUnauthenticated, err)
	}
	if user == nil {
		return nil, ErrUnauthenticated
	}

	return user, nil
}

func (u *authUsecase) Logout(ctx context.Context) error {
	return u.sessions.Logout(ctx)
}

func (u *authUsecase) HasStrategy(name string) bool {
	_, ok := u.strategies[name]
	return ok
}
