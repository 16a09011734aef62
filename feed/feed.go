// Package feed decides which recipe posts a user gets to see.
package feed

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"recipehub/apperr"
	"recipehub/db"
	"recipehub/models"
)

type Users interface {
	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	PublicUserIDs(ctx context.Context) ([]primitive.ObjectID, error)
}

type Recipes interface {
	RecipesByAuthors(ctx context.Context, authors []primitive.ObjectID, page *db.Page) ([]models.RecipePost, error)
}

type Composer struct {
	users    Users
	recipes  Recipes
	maxLimit int64
}

// NewComposer builds a composer; maxLimit caps the page size of
// FollowedUsersFeed (0 means no cap).
func NewComposer(users Users, recipes Recipes, maxLimit int64) *Composer {
	return &Composer{users: users, recipes: recipes, maxLimit: maxLimit}
}

func (c *Composer) user(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, err := c.users.UserByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to fetch user", err)
	}
	return u, nil
}

// ComposeFeed returns every post by someone the user follows or by a public
// profile, newest first. Duplicate author ids are harmless since the query
// is a set-membership filter.
func (c *Composer) ComposeFeed(ctx context.Context, userID primitive.ObjectID) ([]models.RecipePost, error) {
	u, err := c.user(ctx, userID)
	if err != nil {
		return nil, err
	}

	public, err := c.users.PublicUserIDs(ctx)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch posts", err)
	}
	visible := make([]primitive.ObjectID, 0, len(u.Following)+len(public))
	visible = append(visible, u.Following...)
	visible = append(visible, public...)

	posts, err := c.recipes.RecipesByAuthors(ctx, visible, nil)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch posts", err)
	}
	if posts == nil {
		posts = []models.RecipePost{}
	}
	return posts, nil
}

// FollowedUsersFeed pages through posts by the users userID follows. Someone
// who follows nobody gets an empty page, not an error.
func (c *Composer) FollowedUsersFeed(ctx context.Context, userID primitive.ObjectID, limit, skip int64) ([]models.RecipePost, error) {
	u, err := c.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(u.Following) == 0 {
		return []models.RecipePost{}, nil
	}

	page := &db.Page{Limit: limit, Skip: max(skip, 0)}
	if page.Limit <= 0 {
		page.Limit = 10
	}
	if c.maxLimit > 0 && page.Limit > c.maxLimit {
		page.Limit = c.maxLimit
	}

	posts, err := c.recipes.RecipesByAuthors(ctx, u.Following, page)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch followed users' posts", err)
	}
	if posts == nil {
		posts = []models.RecipePost{}
	}
	return posts, nil
}
