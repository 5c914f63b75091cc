package repository

import (
	"context"
	"errors"
	"time"

	"github.com/alexedwards/scs/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vasapolrittideah/secrets/services/secrets-service/internal/model"
)

// SessionStore persists encoded session state keyed by token.
type SessionStore interface {
	scs.CtxStore
}

const sessionCollection = "sessions"

type sessionMongoStore struct {
	db *mongo.Database
}

// NewSessionMongoStore creates a Mongo backed SessionStore. Expired records are
// removed by a TTL index and ignored by lookups until then.
func NewSessionMongoStore(ctx context.Context, db *mongo.Database) (SessionStore, error) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}

	if _, err := db.Collection(sessionCollection).Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, err
	}

	return &sessionMongoStore{db: db}, nil
}

func (s *sessionMongoStore) FindCtx(ctx context.Context, token string) ([]byte, bool, error) {
	filter := bson.M{
		"_id":        token,
		"expires_at": bson.M{"$gt": time.Now()},
	}

	var session model.Session
	if err := s.db.Collection(sessionCollection).FindOne(ctx, filter).Decode(&session); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, nil
		}

		return nil, false, err
	}

	return session.Data, true, nil
}

func (s *sessionMongoStore) CommitCtx(ctx context.Context, token string, b []byte, expiry time.Time) error {
	_, err := s.db.Collection(sessionCollection).UpdateOne(
		ctx,
		bson.M{"_id": token},
		bson.M{"$set": bson.M{"data": b, "expires_at": expiry}},
		options.UpdateOne().SetUpsert(true),
	)
	return err
}

func (s *sessionMongoStore) DeleteCtx(ctx context.Context, token string) error {
	_, err := s.db.Collection(sessionCollection).DeleteOne(ctx, bson.M{"_id": token})
	return err
}

func (s *sessionMongoStore) Find(token string) ([]byte, bool, error) {
	return s.FindCtx(context.Background(), token)
}

func (s *sessionMongoStore) Commit(token string, b []byte, expiry time.Time) error {
	return s.CommitCtx(context.Background(), token, b, expiry)
}

func (s *sessionMongoStore) Delete(token string) error {
	return s.DeleteCtx(context.Background(), token)
}
