package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound  = errors.New("db: document not found")
	ErrDuplicate = errors.New("db: duplicate key")
)

const (
	usersCollection         = "users"
	recipePostsCollection   = "recipeposts"
	commentsCollection      = "comments"
	revokedTokensCollection = "revokedtokens"
)

// Store is the MongoDB implementation of Storage.
type Store struct {
	Client        *mongo.Client
	Users         *mongo.Collection
	RecipePosts   *mongo.Collection
	Comments      *mongo.Collection
	RevokedTokens *mongo.Collection
}

var _ Storage = (*Store)(nil)

// Connect dials MongoDB and verifies the connection with a ping.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}

	dbh := client.Database(database)
	logrus.WithField("database", database).Info("connected to MongoDB")
	return &Store{
		Client:        client,
		Users:         dbh.Collection(usersCollection),
		RecipePosts:   dbh.Collection(recipePostsCollection),
		Comments:      dbh.Collection(commentsCollection),
		RevokedTokens: dbh.Collection(revokedTokensCollection),
	}, nil
}

// EnsureIndexes creates the indexes the application relies on: the unique
// email constraint and the TTL that expires revoked tokens.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	specs := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{s.Users, mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_unique"),
		}},
		{s.Users, mongo.IndexModel{
			Keys: bson.D{{Key: "profileType", Value: 1}},
		}},
		{s.RecipePosts, mongo.IndexModel{
			Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}},
		}},
		{s.Comments, mongo.IndexModel{
			Keys: bson.D{{Key: "post", Value: 1}, {Key: "createdAt", Value: 1}},
		}},
		{s.Comments, mongo.IndexModel{
			Keys: bson.D{{Key: "user", Value: 1}},
		}},
		{s.RevokedTokens, mongo.IndexModel{
			Keys:    bson.D{{Key: "expiresAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		}},
	}
	for _, spec := range specs {
		if _, err := spec.coll.Indexes().CreateOne(ctx, spec.model); err != nil {
			return fmt.Errorf("create index on %s: %w", spec.coll.Name(), err)
		}
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	if s.Client == nil {
		return nil
	}
	return s.Client.Disconnect(ctx)
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}
