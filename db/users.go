package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"recipehub/models"
)

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.Following == nil {
		u.Following = []primitive.ObjectID{}
	}
	_, err := s.Users.InsertOne(ctx, u)
	return translate(err)
}

func (s *Store) UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.Users.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.Users.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	opts := options.Find().
		SetProjection(bson.M{"password": 0}).
		SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := s.Users.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) PublicUserIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	return distinctIDs(ctx, s.Users, bson.M{"profileType": models.ProfilePublic})
}

// SaveUser writes the profile fields of u. The following set is left alone;
// only AddFollowing and RemoveFollowing change it.
func (s *Store) SaveUser(ctx context.Context, u *models.User) error {
	res, err := s.Users.UpdateOne(ctx, bson.M{"_id": u.ID}, bson.M{"$set": bson.M{
		"firstName":   u.FirstName,
		"lastName":    u.LastName,
		"email":       u.Email,
		"password":    u.Password,
		"profileType": u.ProfileType,
		"role":        u.Role,
		"isActive":    u.IsActive,
		"updatedAt":   u.UpdatedAt,
	}})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.Users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) AddFollowing(ctx context.Context, userID, targetID primitive.ObjectID) error {
	return s.updateFollowing(ctx, userID, bson.M{
		"$addToSet": bson.M{"following": targetID},
		"$set":      bson.M{"updatedAt": time.Now()},
	})
}

func (s *Store) RemoveFollowing(ctx context.Context, userID, targetID primitive.ObjectID) error {
	return s.updateFollowing(ctx, userID, bson.M{
		"$pull": bson.M{"following": targetID},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
}

func (s *Store) updateFollowing(ctx context.Context, userID primitive.ObjectID, update bson.M) error {
	res, err := s.Users.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) RemoveFromAllFollowing(ctx context.Context, targetID primitive.ObjectID) error {
	_, err := s.Users.UpdateMany(ctx,
		bson.M{"following": targetID},
		bson.M{"$pull": bson.M{"following": targetID}},
	)
	return err
}
