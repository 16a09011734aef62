package recipes

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"recipehub/apperr"
	"recipehub/utils"
)

const (
	requestTimeout = 5 * time.Second
	maxUploadBytes = 11 << 20
)

func actorFromRequest(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(utils.GetUserIDFromRequest(r))
	if err != nil {
		return primitive.NilObjectID, apperr.Unauthorized("Invalid or expired token")
	}
	return id, nil
}

func (s *Service) CreatePost(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in CreateInput
	if err := utils.DecodeJSON(w, r, &in); err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	p, err := s.Create(ctx, in)
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	utils.RespondWithData(w, http.StatusCreated, "Recipe post created successfully", p)
}

func (s *Service) GetPost(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	p, err := s.Get(ctx, ps.ByName("postId"))
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, "", p)
}

func (s *Service) UpdatePost(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := actorFromRequest(r)
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	var in UpdateInput
	if err := utils.DecodeJSON(w, r, &in); err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	p, err := s.Update(ctx, ps.ByName("postId"), actor, in)
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, "Recipe post updated successfully", p)
}

func (s *Service) DeletePost(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	res, err := s.Delete(ctx, ps.ByName("postId"))
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, "Recipe post deleted successfully", res)
}

func (s *Service) LikePost(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	p, err := s.Like(ctx, ps.ByName("postId"))
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, "", utils.M{"postId": p.ID.Hex(), "likes": p.Likes})
}

// UploadImage takes a multipart form with an "image" file.
func (s *Service) UploadImage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := actorFromRequest(r)
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		utils.RespondWithError(w, r, apperr.BadRequest("Unable to parse form"))
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		utils.RespondWithError(w, r, apperr.BadRequest("No image file uploaded"))
		return
	}
	defer file.Close()
	if err := utils.ValidateImageFileType(header); err != nil {
		utils.RespondWithError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	p, err := s.AttachImage(ctx, ps.ByName("postId"), actor, file)
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, "Image uploaded successfully", utils.M{
		"imageUrl":     p.ImageURL,
		"thumbnailUrl": p.ThumbnailURL,
	})
}

func (s *Service) GetCard(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	pdf, err := s.Card(ctx, ps.ByName("postId"))
	if err != nil {
		utils.RespondWithError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename="+utils.SanitizeFilename("recipe-"+ps.ByName("postId")+".pdf"))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
