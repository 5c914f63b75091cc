package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionStores(t *testing.T) map[string]func(t *testing.T) SessionStore {
	t.Helper()

	return map[string]func(t *testing.T) SessionStore{
		"mongo": func(t *testing.T) SessionStore {
			store, err := NewSessionMongoStore(context.Background(), newTestMongoDatabase(t))
			require.NoError(t, err)
			return store
		},
		"redis": func(t *testing.T) SessionStore {
			addr := os.Getenv("REDIS_TEST_ADDR")
			if addr == "" {
				t.Skip("REDIS_TEST_ADDR not set")
			}
			client := redis.NewClient(&redis.Options{Addr: addr})
			t.Cleanup(func() { _ = client.Close() })
			return NewSessionRedisStore(client)
		},
	}
}

func TestSessionStore_Lifecycle(t *testing.T) {
	for name, newStore := range sessionStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)
			token := "token-" + name + "-" + time.Now().Format("150405.000000000")

			_, found, err := store.FindCtx(ctx, token)
			require.NoError(t, err)
			assert.False(t, found)

			require.NoError(t, store.CommitCtx(ctx, token, []byte("payload"), time.Now().Add(time.Minute)))

			b, found, err := store.FindCtx(ctx, token)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, []byte("payload"), b)

			require.NoError(t, store.CommitCtx(ctx, token, []byte("updated"), time.Now().Add(time.Minute)))
			b, _, err = store.Find(token)
			require.NoError(t, err)
			assert.Equal(t, []byte("updated"), b)

			require.NoError(t, store.DeleteCtx(ctx, token))
			require.NoError(t, store.Delete(token), "deleting twice is not an error")

			_, found, err = store.FindCtx(ctx, token)
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestSessionStore_ExpiredIsNotFound(t *testing.T) {
	for name, newStore := range sessionStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)
			token := "expired-" + name

			require.NoError(t, store.CommitCtx(ctx, token, []byte("payload"), time.Now().Add(-time.Second)))

			_, found, err := store.FindCtx(ctx, token)
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}
