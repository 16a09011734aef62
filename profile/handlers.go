package profile

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"recipehub/apperr"
	"recipehub/utils"
)

const requestTimeout = 5 * time.Second

func parseUserID(ps httprouter.Params) (primitive.ObjectID, error) {
	return utils.ParseObjectID(ps.ByName("id"), "Invalid user ID")
}

// GetUsers returns every user as a bare array.
func (s *Service) GetUsers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	users, err := s.List(ctx)
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, users)
}

func (s *Service) GetUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := parseUserID(ps)
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	u, err := s.Get(ctx, id)
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, "", u)
}

func (s *Service) CreateUser(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in CreateInput
	if err := utils.DecodeJSON(w, r, &in); err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	u, err := s.Create(ctx, in)
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	utils.RespondWithData(w, http.StatusCreated, "User created successfully", u)
}

// UpdateUser serves both PUT and PATCH.
func (s *Service) UpdateUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := parseUserID(ps)
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	var body map[string]json.RawMessage
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		if apperr.Message(err) == "Request body is empty" {
			err = apperr.BadRequest("No fields to update")
		}
		utils.RespondWithError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	u, err := s.Update(ctx, id, body)
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, "User updated successfully", u)
}

func (s *Service) DeleteUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := parseUserID(ps)
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	res, err := s.Delete(ctx, id)
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, "User deleted successfully", res)
}

func (s *Service) FollowUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s.handleFollowAction(w, r, ps, true)
}

func (s *Service) UnfollowUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s.handleFollowAction(w, r, ps, false)
}

func (s *Service) handleFollowAction(w http.ResponseWriter, r *http.Request, ps httprouter.Params, follow bool) {
	currentUserID, err := utils.ParseObjectID(utils.GetUserIDFromRequest(r), "Invalid user ID")
	if err != nil {
		utils.RespondWithError(w, r, apperr.Unauthorized("Invalid or expired token"))
		return
	}
	targetID, err := parseUserID(ps)
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if follow {
		err = s.Follow(ctx, currentUserID, targetID)
	} else {
		err = s.Unfollow(ctx, currentUserID, targetID)
	}
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, "", utils.M{"isFollowing": follow})
}
