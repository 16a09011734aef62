package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"recipehub/auth"
	"recipehub/comments"
	"recipehub/db/memdb"
	"recipehub/feed"
	"recipehub/filemgr"
	"recipehub/profile"
	"recipehub/recipes"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T) *httprouter.Router {
	t.Helper()
	store := memdb.New()
	hasher := auth.NewHasher(bcrypt.MinCost)
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	revocations := auth.NewRevocationList(store, nil, tokens)
	static := t.TempDir()

	return New(Deps{
		Auth:        auth.NewService(store, hasher, tokens, revocations),
		Tokens:      tokens,
		Revocations: revocations,
		Profiles:    profile.NewService(store, hasher),
		Recipes:     recipes.NewService(store, filemgr.New(static+"/recipes", "/static/recipes"), "http://localhost"),
		Comments:    comments.NewService(store),
		Feed:        feed.NewComposer(store, store, 100),
		StaticDir:   static,
	})
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	r := httptest.NewRequest(method, path, &buf)
	r.Header.Set("Content-Type", "application/json")
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestRecipeFlow(t *testing.T) {
	h := newTestRouter(t)

	w := do(t, h, http.MethodPost, "/users", "", map[string]string{
		"firstName": "Ada", "lastName": "Lovelace", "email": "ada@example.com", "password": "s3cret!",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	var user struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(created.Data, &user))
	require.NotEmpty(t, user.ID)

	w = do(t, h, http.MethodPost, "/login", "", map[string]string{"email": "ADA@example.com", "password": "s3cret!"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login auth.LoginResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	require.NotEmpty(t, login.Token)
	assert.Equal(t, user.ID, login.User.ID)

	w = do(t, h, http.MethodPost, "/posts", "", map[string]any{
		"user": user.ID, "title": "Shakshuka", "recipe": "Eggs in sauce",
		"prepTime": 10, "cookTime": 20, "totalTime": 30,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var post envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &post))
	var p struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(post.Data, &p))

	w = do(t, h, http.MethodPost, "/posts/"+p.ID+"/comments", login.Token, map[string]string{"text": "Lovely"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, h, http.MethodGet, "/posts", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var feedResp struct {
		Data []struct {
			ID       string   `json:"id"`
			Comments []string `json:"comments"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &feedResp))
	require.Len(t, feedResp.Data, 1)
	assert.Equal(t, p.ID, feedResp.Data[0].ID)
	assert.Len(t, feedResp.Data[0].Comments, 1)

	w = do(t, h, http.MethodPost, "/logout", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, h, http.MethodGet, "/posts", login.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Token has been invalidated")
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	h := newTestRouter(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/posts"},
		{http.MethodPut, "/posts/65f000000000000000000001"},
		{http.MethodPost, "/posts/65f000000000000000000001/like"},
		{http.MethodPost, "/posts/65f000000000000000000001/comments"},
		{http.MethodPost, "/users/65f000000000000000000001/follow"},
	} {
		w := do(t, h, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestHealthAndUnknownRoute(t *testing.T) {
	h := newTestRouter(t)

	w := do(t, h, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMalformedIDs(t *testing.T) {
	h := newTestRouter(t)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/users/123", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/posts/invalid-id", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodDelete, "/posts/invalid-id", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/comments/zzz", "", nil).Code)
}
