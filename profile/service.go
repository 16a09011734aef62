// Package profile owns users and the follow graph.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"recipehub/apperr"
	"recipehub/db"
	"recipehub/models"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AllowedUpdates are the body keys accepted by Update.
var AllowedUpdates = []string{"firstName", "lastName", "email", "password", "profileType"}

// Store is what the profile service needs from storage. Deleting a user
// reaches into posts and comments.
type Store interface {
	db.UserRepository
	db.RecipeRepository
	db.CommentRepository
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
}

type Service struct {
	store  Store
	hasher PasswordHasher
	now    func() time.Time
}

func NewService(store Store, hasher PasswordHasher) *Service {
	return &Service{store: store, hasher: hasher, now: time.Now}
}

type CreateInput struct {
	FirstName   string             `json:"firstName"`
	LastName    string             `json:"lastName"`
	Email       string             `json:"email"`
	Password    string             `json:"password"`
	ProfileType models.ProfileType `json:"profileType"`
}

// Create registers a user. The returned user never carries the password.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.User, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.FirstName == "" || in.LastName == "" || in.Email == "" || in.Password == "" {
		return nil, apperr.BadRequest("Missing required fields")
	}
	if !emailPattern.MatchString(in.Email) {
		return nil, apperr.BadRequest("Invalid email format")
	}
	if in.ProfileType == "" {
		in.ProfileType = models.ProfilePublic
	}
	if !in.ProfileType.Valid() {
		return nil, apperr.BadRequest("profileType must be Public or Private")
	}

	if _, err := s.store.UserByEmail(ctx, in.Email); err == nil {
		return nil, apperr.Conflict("Email already exists")
	} else if !errors.Is(err, db.ErrNotFound) {
		return nil, apperr.Internal("Failed to create user", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Internal("Failed to create user", err)
	}

	now := s.now().UTC()
	u := &models.User{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		Password:    hash,
		ProfileType: in.ProfileType,
		Role:        models.DefaultRole,
		IsActive:    true,
		Following:   []primitive.ObjectID{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	// the unique index still catches a concurrent registration
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, apperr.Conflict("Email already exists")
		}
		return nil, apperr.Internal("Failed to create user", err)
	}
	u.Password = ""
	return u, nil
}

func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, err := s.store.UserByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to fetch user", err)
	}
	u.Password = ""
	return u, nil
}

func (s *Service) List(ctx context.Context) ([]models.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch users", err)
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// Update applies a partial body. Every key must be in AllowedUpdates.
func (s *Service) Update(ctx context.Context, id primitive.ObjectID, body map[string]json.RawMessage) (*models.User, error) {
	if len(body) == 0 {
		return nil, apperr.BadRequest("No fields to update")
	}
	fields := make(map[string]string, len(body))
	for key, raw := range body {
		if !isAllowedUpdate(key) {
			return nil, apperr.BadRequest("Invalid updates. Allowed fields: " + strings.Join(AllowedUpdates, ", "))
		}
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, apperr.BadRequest(key + " must be a string")
		}
		if key != "password" {
			v = strings.TrimSpace(v)
		}
		fields[key] = v
	}

	u, err := s.store.UserByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to update user", err)
	}

	// apply in a fixed order so the first reported problem is stable
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if err := s.apply(ctx, u, key, fields[key]); err != nil {
			return nil, err
		}
	}

	u.UpdatedAt = s.now().UTC()
	if err := s.store.SaveUser(ctx, u); err != nil {
		switch {
		case errors.Is(err, db.ErrDuplicate):
			return nil, apperr.BadRequest("Email already in use")
		case errors.Is(err, db.ErrNotFound):
			return nil, apperr.NotFound("User not found")
		default:
			return nil, apperr.Internal("Failed to update user", err)
		}
	}
	if fresh, err := s.store.UserByID(ctx, id); err == nil {
		u = fresh
	}
	u.Password = ""
	return u, nil
}

func (s *Service) apply(ctx context.Context, u *models.User, key, value string) error {
	if value == "" {
		return apperr.BadRequest(key + " cannot be empty")
	}
	switch key {
	case "firstName":
		u.FirstName = value
	case "lastName":
		u.LastName = value
	case "email":
		email := strings.ToLower(value)
		if !emailPattern.MatchString(email) {
			return apperr.BadRequest("Invalid email format")
		}
		existing, err := s.store.UserByEmail(ctx, email)
		if err == nil && existing.ID != u.ID {
			return apperr.BadRequest("Email already in use")
		}
		if err != nil && !errors.Is(err, db.ErrNotFound) {
			return apperr.Internal("Failed to update user", err)
		}
		u.Email = email
	case "password":
		hash, err := s.hasher.Hash(value)
		if err != nil {
			return apperr.Internal("Failed to update user", err)
		}
		u.Password = hash
	case "profileType":
		pt := models.ProfileType(value)
		if !pt.Valid() {
			return apperr.BadRequest("profileType must be Public or Private")
		}
		u.ProfileType = pt
	}
	return nil
}

func isAllowedUpdate(key string) bool {
	for _, k := range AllowedUpdates {
		if k == key {
			return true
		}
	}
	return false
}

// DeleteResult reports what went away with the user.
type DeleteResult struct {
	PostsDeleted    int64 `json:"postsDeleted"`
	CommentsDeleted int64 `json:"commentsDeleted"`
}

// Delete removes the user together with their posts, the comments on those
// posts, the comments they wrote, and their id in other users' following
// sets.
func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) (*DeleteResult, error) {
	if _, err := s.store.UserByID(ctx, id); errors.Is(err, db.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	} else if err != nil {
		return nil, apperr.Internal("Failed to delete user", err)
	}

	fail := func(err error) (*DeleteResult, error) {
		return nil, apperr.Internal("Failed to delete user", err)
	}
	res := &DeleteResult{}

	postIDs, err := s.store.RecipeIDsByAuthor(ctx, id)
	if err != nil {
		return fail(err)
	}
	n, err := s.store.DeleteCommentsByPosts(ctx, postIDs)
	if err != nil {
		return fail(err)
	}
	res.CommentsDeleted += n

	commentIDs, err := s.store.CommentIDsByUser(ctx, id)
	if err != nil {
		return fail(err)
	}
	if err := s.store.RemoveCommentRefs(ctx, commentIDs); err != nil {
		return fail(err)
	}
	if n, err = s.store.DeleteCommentsByUser(ctx, id); err != nil {
		return fail(err)
	}
	res.CommentsDeleted += n

	if res.PostsDeleted, err = s.store.DeleteRecipesByAuthor(ctx, id); err != nil {
		return fail(err)
	}
	if err := s.store.RemoveFromAllFollowing(ctx, id); err != nil {
		return fail(err)
	}

	if err := s.store.DeleteUser(ctx, id); errors.Is(err, db.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	} else if err != nil {
		return fail(err)
	}

	logrus.WithFields(logrus.Fields{
		"userId":   id.Hex(),
		"posts":    res.PostsDeleted,
		"comments": res.CommentsDeleted,
	}).Info("user deleted")
	return res, nil
}
