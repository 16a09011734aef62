package routes

import (
	"context"
	"net/http"
	"path/filepath"
	"time"

	"github.com/julienschmidt/httprouter"

	"recipehub/auth"
	"recipehub/comments"
	"recipehub/feed"
	"recipehub/middleware"
	"recipehub/profile"
	"recipehub/ratelim"
	"recipehub/recipes"
	"recipehub/utils"
)

// Deps carries the services the HTTP surface is built from.
type Deps struct {
	Auth        *auth.Service
	Tokens      middleware.Verifier
	Revocations middleware.RevocationChecker
	Profiles    *profile.Service
	Recipes     *recipes.Service
	Comments    *comments.Service
	Feed        *feed.Composer
	// RateLimiter guards login and registration; nil disables it.
	RateLimiter *ratelim.RateLimiter
	StaticDir   string
	// Health reports whether the backing stores are reachable.
	Health func(ctx context.Context) error
}

func (d Deps) authenticate(h httprouter.Handle) httprouter.Handle {
	return middleware.Authenticate(d.Tokens, d.Revocations)(h)
}

func (d Deps) limit(h httprouter.Handle) httprouter.Handle {
	if d.RateLimiter == nil {
		return h
	}
	return d.RateLimiter.Limit(h)
}

func AddStaticRoutes(router *httprouter.Router, staticDir string) {
	if staticDir == "" {
		return
	}
	router.ServeFiles("/static/recipes/*filepath", http.Dir(filepath.Join(staticDir, "recipes")))
}

func AddHealthRoutes(router *httprouter.Router, d Deps) {
	router.GET("/health", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		if d.Health != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := d.Health(ctx); err != nil {
				utils.RespondWithJSON(w, http.StatusServiceUnavailable, utils.M{"status": "unavailable"})
				return
			}
		}
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"status": "ok"})
	})
}

func AddAuthRoutes(router *httprouter.Router, d Deps) {
	router.POST("/login", d.limit(d.Auth.LoginHandler))
	router.POST("/logout", d.Auth.LogoutHandler)
}

func AddUserRoutes(router *httprouter.Router, d Deps) {
	router.GET("/users", d.Profiles.GetUsers)
	router.POST("/users", d.limit(d.Profiles.CreateUser))
	router.GET("/users/:id", d.Profiles.GetUser)
	router.PUT("/users/:id", d.Profiles.UpdateUser)
	router.PATCH("/users/:id", d.Profiles.UpdateUser)
	router.DELETE("/users/:id", d.Profiles.DeleteUser)
	router.POST("/users/:id/follow", d.authenticate(d.Profiles.FollowUser))
	router.DELETE("/users/:id/follow", d.authenticate(d.Profiles.UnfollowUser))
	router.GET("/users/:id/followed-posts", d.Feed.GetFollowedPosts)
}

func AddPostRoutes(router *httprouter.Router, d Deps) {
	router.GET("/posts", d.authenticate(d.Feed.GetPosts))
	router.POST("/posts", d.Recipes.CreatePost)
	router.GET("/posts/:postId", d.Recipes.GetPost)
	router.PUT("/posts/:postId", d.authenticate(d.Recipes.UpdatePost))
	router.DELETE("/posts/:postId", d.Recipes.DeletePost)
	router.POST("/posts/:postId/like", d.authenticate(d.Recipes.LikePost))
	router.POST("/posts/:postId/image", d.authenticate(d.Recipes.UploadImage))
	router.GET("/posts/:postId/card", d.Recipes.GetCard)
}

func AddCommentsRoutes(router *httprouter.Router, d Deps) {
	router.POST("/posts/:postId/comments", d.authenticate(d.Comments.CreateComment))
	router.GET("/posts/:postId/comments", d.Comments.GetPostComments)
	router.GET("/comments/:id", d.Comments.GetComment)
	router.PUT("/comments/:id", d.Comments.UpdateComment)
	router.DELETE("/comments/:id", d.Comments.DeleteComment)
}
