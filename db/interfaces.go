package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"recipehub/models"
)

// Page bounds a list query. A nil *Page means no pagination.
type Page struct {
	Limit int64
	Skip  int64
}

// RecipeCounter names a numeric recipe field that can be incremented.
type RecipeCounter string

const (
	CounterViews RecipeCounter = "views"
	CounterLikes RecipeCounter = "likes"
)

// Lookups return ErrNotFound when the document is absent; writes that break
// the unique email index return an error wrapping ErrDuplicate.
type UserRepository interface {
	CreateUser(ctx context.Context, u *models.User) error
	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	PublicUserIDs(ctx context.Context) ([]primitive.ObjectID, error)
	// SaveUser never touches Following.
	SaveUser(ctx context.Context, u *models.User) error
	DeleteUser(ctx context.Context, id primitive.ObjectID) error
	AddFollowing(ctx context.Context, userID, targetID primitive.ObjectID) error
	RemoveFollowing(ctx context.Context, userID, targetID primitive.ObjectID) error
	RemoveFromAllFollowing(ctx context.Context, targetID primitive.ObjectID) error
}

type RecipeRepository interface {
	CreateRecipe(ctx context.Context, p *models.RecipePost) error
	RecipeByID(ctx context.Context, id primitive.ObjectID) (*models.RecipePost, error)
	SaveRecipe(ctx context.Context, p *models.RecipePost) error
	// DeleteRecipe removes the post and returns it as it was stored.
	DeleteRecipe(ctx context.Context, id primitive.ObjectID) (*models.RecipePost, error)
	// RecipesByAuthors returns posts whose user is in authors, newest first,
	// with Author populated.
	RecipesByAuthors(ctx context.Context, authors []primitive.ObjectID, page *Page) ([]models.RecipePost, error)
	RecipeIDsByAuthor(ctx context.Context, author primitive.ObjectID) ([]primitive.ObjectID, error)
	DeleteRecipesByAuthor(ctx context.Context, author primitive.ObjectID) (int64, error)
	IncrementRecipe(ctx context.Context, id primitive.ObjectID, counter RecipeCounter) (*models.RecipePost, error)
	AddCommentRef(ctx context.Context, postID, commentID primitive.ObjectID) error
	RemoveCommentRefs(ctx context.Context, commentIDs []primitive.ObjectID) error
}

type CommentRepository interface {
	CreateComment(ctx context.Context, c *models.Comment) error
	CommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	SaveComment(ctx context.Context, c *models.Comment) error
	DeleteComment(ctx context.Context, id primitive.ObjectID) error
	// CommentsByPost returns the post's comments oldest first, with Author
	// populated.
	CommentsByPost(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error)
	CommentIDsByUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
	DeleteCommentsByPosts(ctx context.Context, postIDs []primitive.ObjectID) (int64, error)
	DeleteCommentsByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

type RevocationRepository interface {
	RevokeToken(ctx context.Context, tokenHash string, expiresAt time.Time) error
	IsTokenRevoked(ctx context.Context, tokenHash string) (bool, error)
}

// Storage is the full document store used by the server.
type Storage interface {
	UserRepository
	RecipeRepository
	CommentRepository
	RevocationRepository
	Close(ctx context.Context) error
}
