package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vasapolrittideah/secrets/services/secrets-service/internal/model"
)

// userMemoryRepository keeps users in process memory. It enforces the same anchor
// uniqueness as the Mongo indexes and is used for local runs and tests.
type userMemoryRepository struct {
	mu         sync.RWMutex
	users      map[bson.ObjectID]*model.User
	byUsername map[string]bson.ObjectID
	byProvider map[model.Provider]map[string]bson.ObjectID
}

// NewUserMemoryRepository creates an empty in-memory UserRepository.
func NewUserMemoryRepository() UserRepository {
	return &userMemoryRepository{
		users:      make(map[bson.ObjectID]*model.User),
		byUsername: make(map[string]bson.ObjectID),
		byProvider: map[model.Provider]map[string]bson.ObjectID{
			model.ProviderGoogle:   {},
			model.ProviderFacebook: {},
		},
	}
}

func (r *userMemoryRepository) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	if !user.HasAnchor() {
		return nil, ErrMissingAnchor
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.anchorTaken(user) {
		return nil, ErrDuplicate
	}

	now := time.Now()
	user.ID = bson.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.insert(user)

	return user, nil
}

func (r *userMemoryRepository) anchorTaken(user *model.User) bool {
	if _, ok := r.byUsername[user.Username]; ok && user.Username != "" {
		return true
	}
	for provider, index := range r.byProvider {
		if id := user.ProviderID(provider); id != "" {
			if _, ok := index[id]; ok {
				return true
			}
		}
	}
	return false
}

func (r *userMemoryRepository) insert(user *model.User) {
	stored := *user
	r.users[stored.ID] = &stored
	if stored.Username != "" {
		r.byUsername[stored.Username] = stored.ID
	}
	for provider, index := range r.byProvider {
		if id := stored.ProviderID(provider); id != "" {
			index[id] = stored.ID
		}
	}
}

func (r *userMemoryRepository) GetUser(_ context.Context, id string) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[objectID]
	if !ok {
		return nil, ErrNotFound
	}

	return publicCopy(user), nil
}

func (r *userMemoryRepository) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return nil, ErrNotFound
	}

	user := *r.users[id]
	return &user, nil
}

func (r *userMemoryRepository) FindOrCreateByProvider(
	_ context.Context,
	provider model.Provider,
	providerID string,
) (*model.User, bool, error) {
	if _, err := provider.Field(); err != nil {
		return nil, false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byProvider[provider][providerID]; ok {
		return publicCopy(r.users[id]), false, nil
	}

	now := time.Now()
	user := &model.User{ID: bson.NewObjectID(), CreatedAt: now, UpdatedAt: now}
	user.SetProviderID(provider, providerID)
	r.insert(user)

	return publicCopy(user), true, nil
}

func (r *userMemoryRepository) UpdateSecret(_ context.Context, id string, secret string) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[objectID]
	if !ok {
		return ErrNotFound
	}
	user.Secret = secret
	user.UpdatedAt = time.Now()

	return nil
}

func (r *userMemoryRepository) ListUsersWithSecret(_ context.Context) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var users []*model.User
	for _, user := range r.users {
		if user.Secret != "" {
			users = append(users, publicCopy(user))
		}
	}

	sort.Slice(users, func(i, j int) bool {
		return users[i].UpdatedAt.Before(users[j].UpdatedAt)
	})

	return users, nil
}

func (r *userMemoryRepository) Ping(context.Context) error {
	return nil
}

func publicCopy(user *model.User) *model.User {
	out := *user
	out.PasswordHash = ""
	return &out
}
