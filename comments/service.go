// Package comments manages comments on recipe posts.
package comments

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"recipehub/apperr"
	"recipehub/db"
	"recipehub/models"
	"recipehub/utils"
)

const invalidCommentID = "Invalid comment ID"

var errCommentNotFound = apperr.NotFound("Comment not found")

type Store interface {
	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	RecipeByID(ctx context.Context, id primitive.ObjectID) (*models.RecipePost, error)
	AddCommentRef(ctx context.Context, postID, commentID primitive.ObjectID) error
	RemoveCommentRefs(ctx context.Context, commentIDs []primitive.ObjectID) error
	db.CommentRepository
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

func checkText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", apperr.BadRequest("Comment text is required")
	}
	return text, nil
}

// Create adds a comment by userID to a post. The post is checked first,
// then the user.
func (s *Service) Create(ctx context.Context, rawPostID string, userID primitive.ObjectID, text string) (*models.Comment, error) {
	postID, err := utils.ParseObjectID(rawPostID, "Invalid post ID format")
	if err != nil {
		return nil, err
	}
	if text, err = checkText(text); err != nil {
		return nil, err
	}

	if _, err := s.store.RecipeByID(ctx, postID); errors.Is(err, db.ErrNotFound) {
		return nil, apperr.NotFound("Post not found")
	} else if err != nil {
		return nil, apperr.Internal("Failed to create comment", err)
	}
	if _, err := s.store.UserByID(ctx, userID); errors.Is(err, db.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	} else if err != nil {
		return nil, apperr.Internal("Failed to create comment", err)
	}

	now := s.now().UTC()
	c := &models.Comment{User: userID, Post: postID, Text: text, CreatedAt: now, UpdatedAt: now}
	if err := c.Validate(); err != nil {
		return nil, apperr.BadRequest(models.DescribeValidation(err))
	}
	if err := s.store.CreateComment(ctx, c); err != nil {
		return nil, apperr.Internal("Failed to create comment", err)
	}

	// the post may have been deleted between the check and the insert
	if err := s.store.AddCommentRef(ctx, postID, c.ID); err != nil {
		if derr := s.store.DeleteComment(ctx, c.ID); derr != nil && !errors.Is(derr, db.ErrNotFound) {
			logrus.WithError(derr).WithField("commentId", c.ID.Hex()).Error("remove orphaned comment")
		}
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.NotFound("Post not found")
		}
		return nil, apperr.Internal("Failed to create comment", err)
	}
	return c, nil
}

// ListByPost returns the comments of a post, oldest first, with authors.
func (s *Service) ListByPost(ctx context.Context, rawPostID string) ([]models.Comment, error) {
	postID, err := utils.ParseObjectID(rawPostID, "Invalid post ID format")
	if err != nil {
		return nil, err
	}
	comments, err := s.store.CommentsByPost(ctx, postID)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch comments", err)
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	return comments, nil
}

func (s *Service) Get(ctx context.Context, rawID string) (*models.Comment, error) {
	id, err := utils.ParseObjectID(rawID, invalidCommentID)
	if err != nil {
		return nil, err
	}
	c, err := s.store.CommentByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, errCommentNotFound
	}
	if err != nil {
		return nil, apperr.Internal("Failed to fetch comment", err)
	}
	return c, nil
}

// Edit replaces the text and bumps updatedAt.
func (s *Service) Edit(ctx context.Context, rawID, text string) (*models.Comment, error) {
	if !utils.IsObjectIDHex(rawID) {
		return nil, apperr.BadRequest(invalidCommentID)
	}
	text, err := checkText(text)
	if err != nil {
		return nil, err
	}
	c, err := s.Get(ctx, rawID)
	if err != nil {
		return nil, err
	}

	c.Text = text
	c.UpdatedAt = s.now().UTC()
	if err := c.Validate(); err != nil {
		return nil, apperr.BadRequest(models.DescribeValidation(err))
	}
	if err := s.store.SaveComment(ctx, c); errors.Is(err, db.ErrNotFound) {
		return nil, errCommentNotFound
	} else if err != nil {
		return nil, apperr.Internal("Failed to update comment", err)
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, rawID string) error {
	c, err := s.Get(ctx, rawID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteComment(ctx, c.ID); errors.Is(err, db.ErrNotFound) {
		return errCommentNotFound
	} else if err != nil {
		return apperr.Internal("Failed to delete comment", err)
	}
	if err := s.store.RemoveCommentRefs(ctx, []primitive.ObjectID{c.ID}); err != nil {
		logrus.WithError(err).WithField("commentId", c.ID.Hex()).Warn("pull comment from post")
	}
	return nil
}
