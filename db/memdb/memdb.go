// Package memdb is an in-memory implementation of db.Storage. It backs the
// "memory" storage driver for local runs and stands in for MongoDB in tests.
package memdb

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"recipehub/db"
	"recipehub/models"
)

type Store struct {
	mu       sync.RWMutex
	users    map[primitive.ObjectID]models.User
	recipes  map[primitive.ObjectID]models.RecipePost
	comments map[primitive.ObjectID]models.Comment
	revoked  map[string]time.Time
	now      func() time.Time
}

var _ db.Storage = (*Store)(nil)

func New() *Store {
	return &Store{
		users:    make(map[primitive.ObjectID]models.User),
		recipes:  make(map[primitive.ObjectID]models.RecipePost),
		comments: make(map[primitive.ObjectID]models.Comment),
		revoked:  make(map[string]time.Time),
		now:      time.Now,
	}
}

func (s *Store) Close(context.Context) error { return nil }

// --- users ---

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emailTaken(u.Email, primitive.NilObjectID) {
		return fmt.Errorf("%w: email %q", db.ErrDuplicate, u.Email)
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.Following == nil {
		u.Following = []primitive.ObjectID{}
	}
	s.users[u.ID] = copyUser(*u)
	return nil
}

func (s *Store) UserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	out := copyUser(u)
	return &out, nil
}

func (s *Store) UserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			out := copyUser(u)
			return &out, nil
		}
	}
	return nil, db.ErrNotFound
}

func (s *Store) ListUsers(context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		u = copyUser(u)
		u.Password = ""
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		return olderFirst(users[i].CreatedAt, users[i].ID, users[j].CreatedAt, users[j].ID)
	})
	return users, nil
}

func (s *Store) PublicUserIDs(context.Context) ([]primitive.ObjectID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := []primitive.ObjectID{}
	for id, u := range s.users {
		if u.ProfileType == models.ProfilePublic {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *Store) SaveUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.users[u.ID]
	if !ok {
		return db.ErrNotFound
	}
	if s.emailTaken(u.Email, u.ID) {
		return fmt.Errorf("%w: email %q", db.ErrDuplicate, u.Email)
	}
	next := copyUser(*u)
	next.Following = cur.Following
	next.CreatedAt = cur.CreatedAt
	s.users[u.ID] = next
	return nil
}

func (s *Store) DeleteUser(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return db.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *Store) AddFollowing(_ context.Context, userID, targetID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return db.ErrNotFound
	}
	if !slices.Contains(u.Following, targetID) {
		u.Following = append(slices.Clone(u.Following), targetID)
	}
	u.UpdatedAt = s.now()
	s.users[userID] = u
	return nil
}

func (s *Store) RemoveFollowing(_ context.Context, userID, targetID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return db.ErrNotFound
	}
	u.Following = without(u.Following, targetID)
	u.UpdatedAt = s.now()
	s.users[userID] = u
	return nil
}

func (s *Store) RemoveFromAllFollowing(_ context.Context, targetID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, u := range s.users {
		if slices.Contains(u.Following, targetID) {
			u.Following = without(u.Following, targetID)
			s.users[id] = u
		}
	}
	return nil
}

// emailTaken must be called with mu held.
func (s *Store) emailTaken(email string, except primitive.ObjectID) bool {
	for id, u := range s.users {
		if id != except && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

// --- recipe posts ---

func (s *Store) CreateRecipe(_ context.Context, p *models.RecipePost) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if _, ok := s.recipes[p.ID]; ok {
		return fmt.Errorf("%w: recipe %s", db.ErrDuplicate, p.ID.Hex())
	}
	if p.Comments == nil {
		p.Comments = []primitive.ObjectID{}
	}
	s.recipes[p.ID] = copyRecipe(*p)
	return nil
}

func (s *Store) RecipeByID(_ context.Context, id primitive.ObjectID) (*models.RecipePost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.recipes[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	out := copyRecipe(p)
	return &out, nil
}

func (s *Store) SaveRecipe(_ context.Context, p *models.RecipePost) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.recipes[p.ID]; !ok {
		return db.ErrNotFound
	}
	s.recipes[p.ID] = copyRecipe(*p)
	return nil
}

func (s *Store) DeleteRecipe(_ context.Context, id primitive.ObjectID) (*models.RecipePost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.recipes[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	delete(s.recipes, id)
	return &p, nil
}

func (s *Store) RecipesByAuthors(_ context.Context, authors []primitive.ObjectID, page *db.Page) ([]models.RecipePost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	posts := []models.RecipePost{}
	for _, p := range s.recipes {
		if slices.Contains(authors, p.User) {
			posts = append(posts, copyRecipe(p))
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		return olderFirst(posts[j].CreatedAt, posts[j].ID, posts[i].CreatedAt, posts[i].ID)
	})
	if page != nil {
		posts = paginate(posts, page)
	}
	for i := range posts {
		if u, ok := s.users[posts[i].User]; ok {
			posts[i].Author = &models.UserSummary{
				ID:          u.ID,
				FirstName:   u.FirstName,
				LastName:    u.LastName,
				ProfileType: u.ProfileType,
			}
		}
	}
	return posts, nil
}

func (s *Store) RecipeIDsByAuthor(_ context.Context, author primitive.ObjectID) ([]primitive.ObjectID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := []primitive.ObjectID{}
	for id, p := range s.recipes {
		if p.User == author {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *Store) DeleteRecipesByAuthor(_ context.Context, author primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, p := range s.recipes {
		if p.User == author {
			delete(s.recipes, id)
			n++
		}
	}
	return n, nil
}

func (s *Store) IncrementRecipe(_ context.Context, id primitive.ObjectID, counter db.RecipeCounter) (*models.RecipePost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.recipes[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	switch counter {
	case db.CounterViews:
		p.Views++
	case db.CounterLikes:
		p.Likes++
	default:
		return nil, fmt.Errorf("memdb: unknown counter %q", counter)
	}
	s.recipes[id] = p
	out := copyRecipe(p)
	return &out, nil
}

func (s *Store) AddCommentRef(_ context.Context, postID, commentID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.recipes[postID]
	if !ok {
		return db.ErrNotFound
	}
	if !slices.Contains(p.Comments, commentID) {
		p.Comments = append(slices.Clone(p.Comments), commentID)
	}
	s.recipes[postID] = p
	return nil
}

func (s *Store) RemoveCommentRefs(_ context.Context, commentIDs []primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, p := range s.recipes {
		kept := slices.DeleteFunc(slices.Clone(p.Comments), func(c primitive.ObjectID) bool {
			return slices.Contains(commentIDs, c)
		})
		if len(kept) != len(p.Comments) {
			p.Comments = kept
			s.recipes[id] = p
		}
	}
	return nil
}

// --- comments ---

func (s *Store) CreateComment(_ context.Context, c *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	stored := *c
	stored.Author = nil
	s.comments[c.ID] = stored
	return nil
}

func (s *Store) CommentByID(_ context.Context, id primitive.ObjectID) (*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.comments[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &c, nil
}

func (s *Store) SaveComment(_ context.Context, c *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[c.ID]; !ok {
		return db.ErrNotFound
	}
	stored := *c
	stored.Author = nil
	s.comments[c.ID] = stored
	return nil
}

func (s *Store) DeleteComment(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[id]; !ok {
		return db.ErrNotFound
	}
	delete(s.comments, id)
	return nil
}

func (s *Store) CommentsByPost(_ context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Comment{}
	for _, c := range s.comments {
		if c.Post != postID {
			continue
		}
		if u, ok := s.users[c.User]; ok {
			c.Author = &models.UserSummary{
				ID:        u.ID,
				FirstName: u.FirstName,
				LastName:  u.LastName,
				Email:     u.Email,
			}
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return olderFirst(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID)
	})
	return out, nil
}

func (s *Store) CommentIDsByUser(_ context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := []primitive.ObjectID{}
	for id, c := range s.comments {
		if c.User == userID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *Store) DeleteCommentsByPosts(_ context.Context, postIDs []primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, c := range s.comments {
		if slices.Contains(postIDs, c.Post) {
			delete(s.comments, id)
			n++
		}
	}
	return n, nil
}

func (s *Store) DeleteCommentsByUser(_ context.Context, userID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, c := range s.comments {
		if c.User == userID {
			delete(s.comments, id)
			n++
		}
	}
	return n, nil
}

// --- revoked tokens ---

func (s *Store) RevokeToken(_ context.Context, tokenHash string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.revoked[tokenHash] = expiresAt
	for h, exp := range s.revoked {
		if !exp.After(s.now()) {
			delete(s.revoked, h)
		}
	}
	return nil
}

func (s *Store) IsTokenRevoked(_ context.Context, tokenHash string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	exp, ok := s.revoked[tokenHash]
	return ok && exp.After(s.now()), nil
}

// --- helpers ---

// olderFirst orders by creation time, then by id, which also grows with time.
func olderFirst(ta time.Time, ida primitive.ObjectID, tb time.Time, idb primitive.ObjectID) bool {
	if !ta.Equal(tb) {
		return ta.Before(tb)
	}
	return ida.Hex() < idb.Hex()
}

func paginate(posts []models.RecipePost, page *db.Page) []models.RecipePost {
	skip := min(max(page.Skip, 0), int64(len(posts)))
	posts = posts[skip:]
	if page.Limit > 0 && page.Limit < int64(len(posts)) {
		posts = posts[:page.Limit]
	}
	return posts
}

func without(ids []primitive.ObjectID, drop primitive.ObjectID) []primitive.ObjectID {
	return slices.DeleteFunc(slices.Clone(ids), func(id primitive.ObjectID) bool { return id == drop })
}

func copyUser(u models.User) models.User {
	u.Following = slices.Clone(u.Following)
	return u
}

func copyRecipe(p models.RecipePost) models.RecipePost {
	p.Author = nil
	p.Comments = slices.Clone(p.Comments)
	p.Ingredients = slices.Clone(p.Ingredients)
	p.Steps = slices.Clone(p.Steps)
	if p.LastEditedAt != nil {
		t := *p.LastEditedAt
		p.LastEditedAt = &t
	}
	return p
}
