package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"recipehub/models"
)

// RevokeToken upserts so revoking the same token twice is not an error.
func (s *Store) RevokeToken(ctx context.Context, tokenHash string, expiresAt time.Time) error {
	_, err := s.RevokedTokens.ReplaceOne(ctx,
		bson.M{"_id": tokenHash},
		models.RevokedToken{ID: tokenHash, ExpiresAt: expiresAt},
		options.Replace().SetUpsert(true),
	)
	return err
}

// IsTokenRevoked also checks expiresAt because the TTL monitor only runs
// about once a minute.
func (s *Store) IsTokenRevoked(ctx context.Context, tokenHash string) (bool, error) {
	n, err := s.RevokedTokens.CountDocuments(ctx, bson.M{
		"_id":       tokenHash,
		"expiresAt": bson.M{"$gt": time.Now()},
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
