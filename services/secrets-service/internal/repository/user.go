package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/vasapolrittideah/secrets/services/secrets-service/internal/model"
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	// CreateUser inserts a new user. Returns ErrDuplicate when an anchor is already taken.
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)

	// GetUser loads a user by id without its credential fields.
	GetUser(ctx context.Context, id string) (*model.User, error)

	// GetUserByUsername loads a local account including its password hash.
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)

	// FindOrCreateByProvider returns the user whose provider id equals providerID,
	// inserting one with an atomic upsert when none exists. created reports whether
	// this call inserted it. A concurrent insert of the same id may surface as
	// ErrDuplicate; retrying then finds the winner.
	FindOrCreateByProvider(
		ctx context.Context,
		provider model.Provider,
		providerID string,
	) (user *model.User, created bool, err error)

	// UpdateSecret replaces the user's secret.
	UpdateSecret(ctx context.Context, id string, secret string) error

	// ListUsersWithSecret returns every user that has a secret, without credential fields.
	ListUsersWithSecret(ctx context.Context) ([]*model.User, error)

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
}

const userCollection = "users"

var withoutCredentials = bson.M{"password_hash": 0}

type userMongoRepository struct {
	db *mongo.Database
}

// NewUserMongoRepository creates the repository and ensures the anchor indexes exist.
// The indexes are sparse so that documents lacking an anchor do not collide.
func NewUserMongoRepository(ctx context.Context, db *mongo.Database) (UserRepository, error) {
	collection := db.Collection(userCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "google_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "facebook_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "secret", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, err
	}

	return &userMongoRepository{db: db}, nil
}

func (r *userMongoRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	if !user.HasAnchor() {
		return nil, ErrMissingAnchor
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.db.Collection(userCollection).InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}

		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		user.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return user, nil
}

func (r *userMongoRepository) GetUser(ctx context.Context, id string) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	return r.findOne(ctx, bson.M{"_id": objectID}, options.FindOne().SetProjection(withoutCredentials))
}

func (r *userMongoRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"username": username}, options.FindOne())
}

func (r *userMongoRepository) findOne(
	ctx context.Context,
	filter bson.M,
	opts *options.FindOneOptionsBuilder,
) (*model.User, error) {
	var user model.User
	if err := r.db.Collection(userCollection).FindOne(ctx, filter, opts).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	return &user, nil
}

func (r *userMongoRepository) FindOrCreateByProvider(
	ctx context.Context,
	provider model.Provider,
	providerID string,
) (*model.User, bool, error) {
	field, err := provider.Field()
	if err != nil {
		return nil, false, err
	}

	now := time.Now()
	filter := bson.M{field: providerID}
	update := bson.M{
		"$setOnInsert": bson.M{
			field:        providerID,
			"created_at": now,
			"updated_at": now,
		},
	}

	result, err := r.db.Collection(userCollection).UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, false, ErrDuplicate
		}

		return nil, false, err
	}

	user, err := r.findOne(ctx, filter, options.FindOne().SetProjection(withoutCredentials))
	if err != nil {
		return nil, false, err
	}

	return user, result.UpsertedCount > 0, nil
}

func (r *userMongoRepository) UpdateSecret(ctx context.Context, id string, secret string) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	result, err := r.db.Collection(userCollection).UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"secret": secret, "updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *userMongoRepository) ListUsersWithSecret(ctx context.Context) ([]*model.User, error) {
	findOptions := options.Find().
		SetProjection(withoutCredentials).
		SetSort(bson.D{{Key: "updated_at", Value: 1}})

	filter := bson.M{"secret": bson.M{"$exists": true, "$ne": ""}}

	cursor, err := r.db.Collection(userCollection).Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []*model.User
	for cursor.Next(ctx) {
		var user model.User
		if err := cursor.Decode(&user); err != nil {
			return nil, err
		}
		users = append(users, &user)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *userMongoRepository) Ping(ctx context.Context) error {
	return r.db.Client().Ping(ctx, readpref.Primary())
}
