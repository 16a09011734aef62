package profile

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"recipehub/apperr"
	"recipehub/db"
)

// Follow adds targetID to userID's following set. Following twice is a no-op.
func (s *Service) Follow(ctx context.Context, userID, targetID primitive.ObjectID) error {
	if err := s.checkFollow(ctx, userID, targetID); err != nil {
		return err
	}
	return s.followErr(s.store.AddFollowing(ctx, userID, targetID))
}

// Unfollow removes targetID from userID's following set.
func (s *Service) Unfollow(ctx context.Context, userID, targetID primitive.ObjectID) error {
	if err := s.checkFollow(ctx, userID, targetID); err != nil {
		return err
	}
	return s.followErr(s.store.RemoveFollowing(ctx, userID, targetID))
}

func (s *Service) checkFollow(ctx context.Context, userID, targetID primitive.ObjectID) error {
	if userID == targetID {
		return apperr.BadRequest("You cannot follow yourself")
	}
	for _, id := range []primitive.ObjectID{userID, targetID} {
		if _, err := s.store.UserByID(ctx, id); errors.Is(err, db.ErrNotFound) {
			return apperr.NotFound("User not found")
		} else if err != nil {
			return apperr.Internal("Failed to update follow relationship", err)
		}
	}
	return nil
}

func (s *Service) followErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, db.ErrNotFound) {
		return apperr.NotFound("User not found")
	}
	return apperr.Internal("Failed to update follow relationship", err)
}
