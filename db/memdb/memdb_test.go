package memdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"recipehub/db"
	"recipehub/models"
)

func addUser(t *testing.T, s *Store, email string, profile models.ProfileType) *models.User {
	t.Helper()
	u := &models.User{FirstName: "Test", LastName: "User", Email: email, ProfileType: profile}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := New()

	john := addUser(t, s, "john@example.com", models.ProfilePublic)
	jane := addUser(t, s, "jane@example.com", models.ProfilePrivate)

	t.Run("duplicate email is rejected case-insensitively", func(t *testing.T) {
		err := s.CreateUser(ctx, &models.User{Email: "JOHN@example.com"})
		assert.ErrorIs(t, err, db.ErrDuplicate)
	})

	t.Run("save cannot steal an email", func(t *testing.T) {
		u, err := s.UserByID(ctx, jane.ID)
		require.NoError(t, err)
		u.Email = "john@example.com"
		assert.ErrorIs(t, s.SaveUser(ctx, u), db.ErrDuplicate)
	})

	t.Run("save keeps follows made after the load", func(t *testing.T) {
		stale, err := s.UserByID(ctx, jane.ID)
		require.NoError(t, err)
		require.NoError(t, s.AddFollowing(ctx, jane.ID, john.ID))

		stale.FirstName = "Janet"
		require.NoError(t, s.SaveUser(ctx, stale))
		u, err := s.UserByID(ctx, jane.ID)
		require.NoError(t, err)
		assert.Equal(t, "Janet", u.FirstName)
		assert.Equal(t, []primitive.ObjectID{john.ID}, u.Following)
		require.NoError(t, s.RemoveFollowing(ctx, jane.ID, john.ID))
	})

	t.Run("public ids", func(t *testing.T) {
		ids, err := s.PublicUserIDs(ctx)
		require.NoError(t, err)
		assert.Equal(t, []primitive.ObjectID{john.ID}, ids)
	})

	t.Run("follow is a set", func(t *testing.T) {
		require.NoError(t, s.AddFollowing(ctx, john.ID, jane.ID))
		require.NoError(t, s.AddFollowing(ctx, john.ID, jane.ID))
		u, err := s.UserByID(ctx, john.ID)
		require.NoError(t, err)
		assert.Equal(t, []primitive.ObjectID{jane.ID}, u.Following)

		require.NoError(t, s.RemoveFromAllFollowing(ctx, jane.ID))
		u, err = s.UserByID(ctx, john.ID)
		require.NoError(t, err)
		assert.Empty(t, u.Following)
	})

	t.Run("returned users are copies", func(t *testing.T) {
		u, err := s.UserByID(ctx, john.ID)
		require.NoError(t, err)
		u.FirstName = "Mutated"

		again, err := s.UserByID(ctx, john.ID)
		require.NoError(t, err)
		assert.Equal(t, "Test", again.FirstName)
	})

	t.Run("list hides passwords", func(t *testing.T) {
		u, _ := s.UserByID(ctx, john.ID)
		u.Password = "hash"
		require.NoError(t, s.SaveUser(ctx, u))

		users, err := s.ListUsers(ctx)
		require.NoError(t, err)
		require.Len(t, users, 2)
		for _, u := range users {
			assert.Empty(t, u.Password)
		}
	})

	t.Run("delete missing", func(t *testing.T) {
		assert.ErrorIs(t, s.DeleteUser(ctx, primitive.NewObjectID()), db.ErrNotFound)
	})
}

func TestRecipesByAuthors(t *testing.T) {
	ctx := context.Background()
	s := New()
	author := addUser(t, s, "chef@example.com", models.ProfilePublic)
	other := addUser(t, s, "other@example.com", models.ProfilePrivate)

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	var ids []primitive.ObjectID
	for i := 0; i < 5; i++ {
		p := &models.RecipePost{User: author.ID, Title: "r", CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, s.CreateRecipe(ctx, p))
		ids = append(ids, p.ID)
	}
	require.NoError(t, s.CreateRecipe(ctx, &models.RecipePost{User: other.ID, CreatedAt: base}))

	t.Run("newest first and populated", func(t *testing.T) {
		posts, err := s.RecipesByAuthors(ctx, []primitive.ObjectID{author.ID}, nil)
		require.NoError(t, err)
		require.Len(t, posts, 5)
		assert.Equal(t, ids[4], posts[0].ID)
		assert.Equal(t, ids[0], posts[4].ID)
		require.NotNil(t, posts[0].Author)
		assert.Equal(t, author.FirstName, posts[0].Author.FirstName)
		assert.Empty(t, posts[0].Author.Email)
	})

	t.Run("paginated", func(t *testing.T) {
		posts, err := s.RecipesByAuthors(ctx, []primitive.ObjectID{author.ID}, &db.Page{Limit: 2, Skip: 1})
		require.NoError(t, err)
		require.Len(t, posts, 2)
		assert.Equal(t, ids[3], posts[0].ID)
		assert.Equal(t, ids[2], posts[1].ID)
	})

	t.Run("skip past the end", func(t *testing.T) {
		posts, err := s.RecipesByAuthors(ctx, []primitive.ObjectID{author.ID}, &db.Page{Limit: 2, Skip: 50})
		require.NoError(t, err)
		assert.Empty(t, posts)
	})

	t.Run("counters", func(t *testing.T) {
		p, err := s.IncrementRecipe(ctx, ids[0], db.CounterLikes)
		require.NoError(t, err)
		assert.Equal(t, 1, p.Likes)
		p, err = s.IncrementRecipe(ctx, ids[0], db.CounterViews)
		require.NoError(t, err)
		assert.Equal(t, 1, p.Views)
	})
}

func TestCommentRefs(t *testing.T) {
	ctx := context.Background()
	s := New()
	u := addUser(t, s, "a@example.com", models.ProfilePublic)
	p := &models.RecipePost{User: u.ID}
	require.NoError(t, s.CreateRecipe(ctx, p))

	c := &models.Comment{User: u.ID, Post: p.ID, Text: "yum", CreatedAt: time.Now()}
	require.NoError(t, s.CreateComment(ctx, c))
	require.NoError(t, s.AddCommentRef(ctx, p.ID, c.ID))
	assert.ErrorIs(t, s.AddCommentRef(ctx, primitive.NewObjectID(), c.ID), db.ErrNotFound)

	comments, err := s.CommentsByPost(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	require.NotNil(t, comments[0].Author)
	assert.Equal(t, "a@example.com", comments[0].Author.Email)

	require.NoError(t, s.RemoveCommentRefs(ctx, []primitive.ObjectID{c.ID}))
	got, err := s.RecipeByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Comments)
}

func TestRevokedTokens(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.RevokeToken(ctx, "live", now.Add(time.Hour)))
	require.NoError(t, s.RevokeToken(ctx, "stale", now.Add(-time.Second)))

	revoked, err := s.IsTokenRevoked(ctx, "live")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = s.IsTokenRevoked(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, revoked)

	revoked, err = s.IsTokenRevoked(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, revoked)
}
