package recipes

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"recipehub/apperr"
	"recipehub/db"
	"recipehub/db/memdb"
	"recipehub/filemgr"
	"recipehub/globals"
	"recipehub/models"
)

// spyStore counts every storage call that reaches it.
type spyStore struct {
	*memdb.Store
	calls int
}

func (s *spyStore) RecipeByID(ctx context.Context, id primitive.ObjectID) (*models.RecipePost, error) {
	s.calls++
	return s.Store.RecipeByID(ctx, id)
}

func (s *spyStore) DeleteRecipe(ctx context.Context, id primitive.ObjectID) (*models.RecipePost, error) {
	s.calls++
	return s.Store.DeleteRecipe(ctx, id)
}

func (s *spyStore) IncrementRecipe(ctx context.Context, id primitive.ObjectID, c db.RecipeCounter) (*models.RecipePost, error) {
	s.calls++
	return s.Store.IncrementRecipe(ctx, id, c)
}

type fixture struct {
	svc   *Service
	store *spyStore
	owner *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := &spyStore{Store: memdb.New()}
	owner := &models.User{FirstName: "Jane", LastName: "Cook", Email: "jane@example.com", ProfileType: models.ProfilePublic}
	require.NoError(t, store.CreateUser(context.Background(), owner))
	images := filemgr.New(t.TempDir(), "/static/recipes")
	return &fixture{svc: NewService(store, images, "http://localhost:8080/"), store: store, owner: owner}
}

func (f *fixture) input() CreateInput {
	return CreateInput{
		User:      f.owner.ID.Hex(),
		Title:     "Spaghetti Bolognese",
		Recipe:    "Cook pasta, make sauce, combine.",
		PrepTime:  10,
		CookTime:  30,
		TotalTime: 40,
		Ingredients: []models.Ingredient{
			{Name: "Spaghetti", Quantity: "200g"},
		},
		Steps: []models.Step{
			{StepNumber: 1, Instruction: "Boil water."},
		},
	}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	p, err := f.svc.Create(ctx, f.input())
	require.NoError(t, err)
	assert.False(t, p.ID.IsZero())
	assert.False(t, p.CreatedAt.IsZero())
	assert.Equal(t, "0", p.Rating.String())
	assert.True(t, p.IsPublished)
	assert.NotNil(t, p.Comments)

	stored, err := f.store.Store.RecipeByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, stored.ID)

	again, err := f.svc.Create(ctx, f.input())
	require.NoError(t, err)
	assert.NotEqual(t, p.ID, again.ID)
}

func TestCreateMissingFields(t *testing.T) {
	f := newFixture(t)
	drops := map[string]func(*CreateInput){
		"user":      func(in *CreateInput) { in.User = "" },
		"title":     func(in *CreateInput) { in.Title = "" },
		"recipe":    func(in *CreateInput) { in.Recipe = "   " },
		"prepTime":  func(in *CreateInput) { in.PrepTime = 0 },
		"cookTime":  func(in *CreateInput) { in.CookTime = 0 },
		"totalTime": func(in *CreateInput) { in.TotalTime = 0 },
	}
	for field, drop := range drops {
		t.Run(field, func(t *testing.T) {
			in := f.input()
			drop(&in)
			_, err := f.svc.Create(context.Background(), in)
			require.True(t, apperr.Is(err, apperr.KindBadRequest))
			assert.Equal(t, MissingFieldsMessage, apperr.Message(err))
		})
	}
}

func TestCreateRejectsEnumerations(t *testing.T) {
	f := newFixture(t)
	in := f.input()
	in.Difficulty = "Impossible"

	_, err := f.svc.Create(context.Background(), in)
	require.True(t, apperr.Is(err, apperr.KindBadRequest))
	assert.Contains(t, apperr.Message(err), "difficulty must be one of")
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	t.Run("malformed id never reaches storage", func(t *testing.T) {
		before := f.store.calls
		_, err := f.svc.Delete(ctx, "invalid-id")
		require.True(t, apperr.Is(err, apperr.KindBadRequest))
		assert.Equal(t, "Invalid post ID format", apperr.Message(err))
		assert.Equal(t, before, f.store.calls)
	})

	t.Run("well formed but unknown", func(t *testing.T) {
		_, err := f.svc.Delete(ctx, primitive.NewObjectID().Hex())
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})

	t.Run("removes the post and its comments", func(t *testing.T) {
		p, err := f.svc.Create(ctx, f.input())
		require.NoError(t, err)
		c := &models.Comment{User: f.owner.ID, Post: p.ID, Text: "yum", CreatedAt: time.Now()}
		require.NoError(t, f.store.CreateComment(ctx, c))

		res, err := f.svc.Delete(ctx, p.ID.Hex())
		require.NoError(t, err)
		assert.Equal(t, DeleteResult{PostID: p.ID.Hex(), Title: "Spaghetti Bolognese"}, *res)

		_, err = f.store.CommentByID(ctx, c.ID)
		assert.ErrorIs(t, err, db.ErrNotFound)
	})
}

func TestGetUpdateLike(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p, err := f.svc.Create(ctx, f.input())
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, p.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 1, got.Views)
	require.NotNil(t, got.Author)
	assert.Equal(t, "Jane", got.Author.FirstName)

	title := "Better Bolognese"
	hard := models.DifficultyHard
	updated, err := f.svc.Update(ctx, p.ID.Hex(), f.owner.ID, UpdateInput{Title: &title, Difficulty: &hard})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	require.NotNil(t, updated.LastEditedAt)

	_, err = f.svc.Update(ctx, p.ID.Hex(), primitive.NewObjectID(), UpdateInput{Title: &title})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	empty := ""
	_, err = f.svc.Update(ctx, p.ID.Hex(), f.owner.ID, UpdateInput{Recipe: &empty})
	assert.Equal(t, MissingFieldsMessage, apperr.Message(err))

	liked, err := f.svc.Like(ctx, p.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 1, liked.Likes)

	_, err = f.svc.Like(ctx, primitive.NewObjectID().Hex())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestCard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p, err := f.svc.Create(ctx, f.input())
	require.NoError(t, err)

	pdf, err := f.svc.Card(ctx, p.ID.Hex())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func authed(r *http.Request, id primitive.ObjectID) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), globals.UserIDKey, id.Hex()))
}

func TestHandlers(t *testing.T) {
	f := newFixture(t)

	body, err := json.Marshal(f.input())
	require.NoError(t, err)
	w := httptest.NewRecorder()
	f.svc.CreatePost(w, httptest.NewRequest(http.MethodPost, "/posts", bytes.NewReader(body)), nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Data models.RecipePost `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created.Data.ID.Hex()
	params := httprouter.Params{{Key: "postId", Value: id}}

	w = httptest.NewRecorder()
	f.svc.CreatePost(w, httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader(`{"title":"x"}`)), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), MissingFieldsMessage)

	t.Run("image upload", func(t *testing.T) {
		var form bytes.Buffer
		mw := multipart.NewWriter(&form)
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="dish.png"`)
		h.Set("Content-Type", "image/png")
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		require.NoError(t, png.Encode(part, image.NewRGBA(image.Rect(0, 0, 64, 64))))
		require.NoError(t, mw.Close())

		r := httptest.NewRequest(http.MethodPost, "/posts/"+id+"/image", &form)
		r.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()
		f.svc.UploadImage(w, authed(r, f.owner.ID), params)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), "/static/recipes/thumb/")
	})

	t.Run("card", func(t *testing.T) {
		w := httptest.NewRecorder()
		f.svc.GetCard(w, httptest.NewRequest(http.MethodGet, "/posts/"+id+"/card", nil), params)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Equal(t, "attachment; filename=recipe-"+id+".pdf", w.Header().Get("Content-Disposition"))
	})

	t.Run("delete", func(t *testing.T) {
		w := httptest.NewRecorder()
		f.svc.DeletePost(w, httptest.NewRequest(http.MethodDelete, "/posts/invalid-id", nil), httprouter.Params{{Key: "postId", Value: "invalid-id"}})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = httptest.NewRecorder()
		f.svc.DeletePost(w, httptest.NewRequest(http.MethodDelete, "/posts/"+id, nil), params)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"postId":"`+id+`"`)

		w = httptest.NewRecorder()
		f.svc.DeletePost(w, httptest.NewRequest(http.MethodDelete, "/posts/"+id, nil), params)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
