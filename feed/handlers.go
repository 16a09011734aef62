package feed

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"recipehub/apperr"
	"recipehub/utils"
)

const requestTimeout = 5 * time.Second

// GetPosts serves the authenticated user's feed.
func (c *Composer) GetPosts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, err := primitive.ObjectIDFromHex(utils.GetUserIDFromRequest(r))
	if err != nil {
		utils.RespondWithError(w, r, apperr.Unauthorized("Invalid or expired token"))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	posts, err := c.ComposeFeed(ctx, userID)
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, "", posts)
}

// GetFollowedPosts serves /users/:id/followed-posts?limit=&skip=.
func (c *Composer) GetFollowedPosts(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, err := utils.ParseObjectID(ps.ByName("id"), "Invalid user ID")
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	page, err := utils.ParsePagination(r, c.maxLimit)
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	posts, err := c.FollowedUsersFeed(ctx, userID, page.Limit, page.Skip)
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success": true,
		"data":    posts,
		"limit":   page.Limit,
		"skip":    page.Skip,
	})
}
