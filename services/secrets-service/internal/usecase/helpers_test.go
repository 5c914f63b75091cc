package usecase

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/stretchr/testify/require"

	"github.com/vasapolrittideah/secrets/services/secrets-service/internal/model"
	"github.com/vasapolrittideah/secrets/services/secrets-service/internal/repository"
	"github.com/vasapolrittideah/secrets/shared/logger"
	"github.com/vasapolrittideah/secrets/shared/security"
)

type testEnv struct {
	repo     repository.UserRepository
	verifier PasswordVerifier
	resolver IdentityResolver
	sessions *SessionManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithRepo(t, repository.NewUserMemoryRepository())
}

func newTestEnvWithRepo(t *testing.T, repo repository.UserRepository) *testEnv {
	t.Helper()

	log := logger.Nop()
	sm := scs.New()
	sm.Store = memstore.New()

	return &testEnv{
		repo:     repo,
		verifier: NewPasswordVerifier(repo, security.NewPasswordHasher(1, 8*1024), log),
		resolver: NewIdentityResolver(repo, log),
		sessions: NewSessionManager(sm, repo, log),
	}
}

// session returns a context carrying the session identified by token ("" for a new client).
func (e *testEnv) session(t *testing.T, token string) context.Context {
	t.Helper()

	ctx, err := e.sessions.Load(context.Background(), token)
	require.NoError(t, err)
	return ctx
}

// flakyUserRepository injects failures in front of a real repository.
type flakyUserRepository struct {
	repository.UserRepository

	duplicatesLeft int
	failWith       error
}

func (r *flakyUserRepository) FindOrCreateByProvider(
	ctx context.Context,
	provider model.Provider,
	providerID string,
) (*model.User, bool, error) {
	if r.failWith != nil {
		return nil, false, r.failWith
	}
	if r.duplicatesLeft > 0 {
		r.duplicatesLeft--
		return nil, false, repository.ErrDuplicate
	}
	return r.UserRepository.FindOrCreateByProvider(ctx, provider, providerID)
}

func (r *flakyUserRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	return r.UserRepository.CreateUser(ctx, user)
}

func (r *flakyUserRepository) GetUser(ctx context.Context, id string) (*model.User, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	return r.UserRepository.GetUser(ctx, id)
}

func (r *flakyUserRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	return r.UserRepository.GetUserByUsername(ctx, username)
}

func (r *flakyUserRepository) ListUsersWithSecret(ctx context.Context) ([]*model.User, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	return r.UserRepository.ListUsersWithSecret(ctx)
}

// countingUserRepository counts the users inserted by find-or-create.
type countingUserRepository struct {
	repository.UserRepository

	created atomic.Int32
}

func (r *countingUserRepository) FindOrCreateByProvider(
	ctx context.Context,
	provider model.Provider,
	providerID string,
) (*model.User, bool, error) {
	user, created, err := r.UserRepository.FindOrCreateByProvider(ctx, provider, providerID)
	if created {
		r.created.Add(1)
	}
	return user, created, err
}

// fakeExchanger stands in for an OAuth2 provider.
type fakeExchanger struct {
	profileID string
	err       error
	block     bool
	calls     int
}

func (f *fakeExchanger) ExchangeProfileID(ctx context.Context, code string) (string, error) {
	f.calls++
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if f.err != nil {
		return "", f.err
	}
	return f.profileID, nil
}
