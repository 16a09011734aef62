package comments

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

type textBody struct {
	Text string `json:"text"`
}

// CreateComment handles POST /posts/:postId/comments. The author is the
// authenticated user.
func (s *Service) CreateComment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, err := primitive.ObjectIDFromHex(utils.GetUserIDFromRequest(r))
	if err != nil {
		utils.RespondWithError(w, r, apperr.Unauthorized("Invalid or expired token"))
		return
	}
	var body textBody
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	c, err := s.Create(ctx, ps.ByName("postId"), userID, body.Text)
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	utils.RespondWithData(w, http.StatusCreated, "Comment added successfully", c)
}

func (s *Service) GetPostComments(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	comments, err := s.ListByPost(ctx, ps.ByName("postId"))
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, "", comments)
}

func (s *Service) GetComment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	c, err := s.Get(ctx, ps.ByName("id"))
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, "", c)
}

func (s *Service) UpdateComment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body textBody
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	c, err := s.Edit(ctx, ps.ByName("id"), body.Text)
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, "Comment updated successfully", c)
}

func (s *Service) DeleteComment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := s.Delete(ctx, ps.ByName("id")); err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, "Comment deleted successfully", nil)
}
