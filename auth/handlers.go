package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"recipehub/utils"
)

const requestTimeout = 5 * time.Second

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginHandler handles POST /login.
func (s *Service) LoginHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req loginRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.RespondWithError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	res, err := s.Login(ctx, req.Email, req.Password)
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, res)
}

// LogoutHandler handles POST /logout.
func (s *Service) LogoutHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := s.Logout(ctx, r.Header.Get("Authorization")); err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Logged out successfully"})
}
