package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vasapolrittideah/secrets/services/secrets-service/internal/model"
	"github.com/vasapolrittideah/secrets/services/secrets-service/internal/repository"
)

const (
	sessionUserKey       = "user"
	sessionPayloadPrefix = "uid:"
)

var ErrMalformedSessionPayload = errors.New("malformed session payload")

// SessionCodec converts between a user and the reference stored in its session.
type SessionCodec struct{}

// Encode returns the session payload referencing user.
func (SessionCodec) Encode(user *model.User) string {
	return sessionPayloadPrefix + user.ID.Hex()
}

// Decode returns the user id referenced by payload.
func (SessionCodec) Decode(payload string) (string, error) {
	id, ok := strings.CutPrefix(payload, sessionPayloadPrefix)
	if !ok {
		return "", ErrMalformedSessionPayload
	}
	if _, err := bson.ObjectIDFromHex(id); err != nil {
		return "", ErrMalformedSessionPayload
	}

	return id, nil
}

// SessionManager owns the Anonymous -> Authenticated -> Anonymous lifecycle of a
// client session. Every method except Load operates on the session attached to
// ctx, either by Load or by the Middleware wrapping the request.
type SessionManager struct {
	sessions *scs.SessionManager
	userRepo repository.UserRepository
	codec    SessionCodec
	logger   *zerolog.Logger
}

func NewSessionManager(
	sessions *scs.SessionManager,
	userRepo repository.UserRepository,
	logger *zerolog.Logger,
) *SessionManager {
	return &SessionManager{
		sessions: sessions,
		userRepo: userRepo,
		logger:   logger,
	}
}

// Middleware loads the session named by the request cookie and writes the cookie back.
func (m *SessionManager) Middleware(next http.Handler) http.Handler {
	return m.sessions.LoadAndSave(next)
}

// Load attaches the session identified by token to ctx. An unknown or empty token
// yields a fresh anonymous session. It is the token-keyed entry point for callers
// outside an HTTP request; Middleware performs the same load from the session
// cookie. Resolve on the returned context answers who the token belongs to.
func (m *SessionManager) Load(ctx context.Context, token string) (context.Context, error) {
	ctx, err := m.sessions.Load(ctx, token)
	if err != nil {
		return nil, storeUnavailable(err)
	}

	return ctx, nil
}

// Login binds user to the session in ctx under a newly issued token and persists it.
// Other sessions of the same user are left untouched.
func (m *SessionManager) Login(ctx context.Context, user *model.User) (string, error) {
	if err := m.sessions.RenewToken(ctx); err != nil {
		return "", storeUnavailable(err)
	}

	m.sessions.Put(ctx, sessionUserKey, m.codec.Encode(user))

	token, _, err := m.sessions.Commit(ctx)
	if err != nil {
		return "", storeUnavailable(err)
	}

	return token, nil
}

// Resolve returns the user bound to the session in ctx, or nil for an anonymous
// session. A session referencing a user that no longer exists is anonymous.
func (m *SessionManager) Resolve(ctx context.Context) (*model.User, error) {
	payload := m.sessions.GetString(ctx, sessionUserKey)
	if payload == "" {
		return nil, nil
	}

	userID, err := m.codec.Decode(payload)
	if err != nil {
		m.logger.Warn().Err(err).Msg("discarding unreadable session payload")
		return nil, nil
	}

	user, err := m.userRepo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}

		return nil, storeUnavailable(err)
	}

	return user, nil
}

// Logout destroys the session in ctx. Destroying an anonymous or already
// destroyed session is not an error.
func (m *SessionManager) Logout(ctx context.Context) error {
	if err := m.sessions.Destroy(ctx); err != nil {
		return storeUnavailable(err)
	}

	return nil
}

// Token returns the token of the session in ctx, or "" when none was issued yet.
// Pass it to Load to reach the same session again.
func (m *SessionManager) Token(ctx context.Context) string {
	return m.sessions.Token(ctx)
}
