// Package recipes manages recipe posts.
package recipes

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"recipehub/apperr"
	"recipehub/db"
	"recipehub/filemgr"
	"recipehub/models"
	"recipehub/recipecard"
	"recipehub/utils"
)

// MissingFieldsMessage is reported whenever a mandatory post field is absent.
const MissingFieldsMessage = "Missing required fields: user, title, recipe, prepTime, cookTime, totalTime"

const invalidPostID = "Invalid post ID format"

var errPostNotFound = apperr.NotFound("Post not found")

type Store interface {
	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	db.RecipeRepository
	DeleteCommentsByPosts(ctx context.Context, postIDs []primitive.ObjectID) (int64, error)
}

// ImageStore keeps uploaded pictures. *filemgr.Manager implements it.
type ImageStore interface {
	SaveImageWithThumb(r io.Reader) (*filemgr.Saved, error)
	Remove(s filemgr.Saved)
}

type Service struct {
	store     Store
	images    ImageStore
	publicURL string
	now       func() time.Time
}

// NewService builds the service. publicURL is the externally visible base
// URL printed into recipe cards.
func NewService(store Store, images ImageStore, publicURL string) *Service {
	return &Service{
		store:     store,
		images:    images,
		publicURL: strings.TrimRight(publicURL, "/"),
		now:       time.Now,
	}
}

type CreateInput struct {
	User        string              `json:"user"`
	Title       string              `json:"title"`
	Recipe      string              `json:"recipe"`
	ImageURL    string              `json:"imageUrl"`
	Ingredients []models.Ingredient `json:"ingredients"`
	Steps       []models.Step       `json:"steps"`
	PrepTime    int                 `json:"prepTime"`
	CookTime    int                 `json:"cookTime"`
	TotalTime   int                 `json:"totalTime"`
	Servings    int                 `json:"servings"`
	Difficulty  models.Difficulty   `json:"difficulty"`
	MealType    models.MealType     `json:"mealType"`
	IsPublished *bool               `json:"isPublished"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*models.RecipePost, error) {
	p := &models.RecipePost{
		Title:       strings.TrimSpace(in.Title),
		Recipe:      strings.TrimSpace(in.Recipe),
		ImageURL:    in.ImageURL,
		Rating:      models.ZeroRating(),
		Comments:    []primitive.ObjectID{},
		Ingredients: in.Ingredients,
		Steps:       in.Steps,
		PrepTime:    in.PrepTime,
		CookTime:    in.CookTime,
		TotalTime:   in.TotalTime,
		Servings:    in.Servings,
		Difficulty:  in.Difficulty,
		MealType:    in.MealType,
		IsPublished: true,
		CreatedAt:   s.now().UTC(),
	}
	if in.User != "" {
		id, err := utils.ParseObjectID(in.User, "Invalid user ID")
		if err != nil {
			return nil, err
		}
		p.User = id
	}
	if in.IsPublished != nil {
		p.IsPublished = *in.IsPublished
	}
	if p.Ingredients == nil {
		p.Ingredients = []models.Ingredient{}
	}
	if p.Steps == nil {
		p.Steps = []models.Step{}
	}

	if err := validatePost(p); err != nil {
		return nil, err
	}
	if err := s.store.CreateRecipe(ctx, p); err != nil {
		return nil, apperr.Internal("Failed to create recipe post", err)
	}
	return p, nil
}

func validatePost(p *models.RecipePost) error {
	err := p.Validate()
	if err == nil {
		return nil
	}
	if missing := models.MissingFields(err); len(missing) > 0 {
		return &apperr.Error{Kind: apperr.KindBadRequest, Message: MissingFieldsMessage, Err: err}
	}
	return apperr.BadRequest(models.DescribeValidation(err))
}

// Get returns the post and counts the view.
func (s *Service) Get(ctx context.Context, rawID string) (*models.RecipePost, error) {
	id, err := utils.ParseObjectID(rawID, invalidPostID)
	if err != nil {
		return nil, err
	}
	p, err := s.store.IncrementRecipe(ctx, id, db.CounterViews)
	if errors.Is(err, db.ErrNotFound) {
		return nil, errPostNotFound
	}
	if err != nil {
		return nil, apperr.Internal("Failed to fetch recipe post", err)
	}
	s.populateAuthor(ctx, p)
	return p, nil
}

func (s *Service) populateAuthor(ctx context.Context, p *models.RecipePost) {
	u, err := s.store.UserByID(ctx, p.User)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			logrus.WithError(err).WithField("postId", p.ID.Hex()).Warn("populate author")
		}
		return
	}
	p.Author = &models.UserSummary{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		ProfileType: u.ProfileType,
	}
}

// UpdateInput is a partial edit; nil fields are left alone.
type UpdateInput struct {
	Title       *string              `json:"title"`
	Recipe      *string              `json:"recipe"`
	Ingredients *[]models.Ingredient `json:"ingredients"`
	Steps       *[]models.Step       `json:"steps"`
	PrepTime    *int                 `json:"prepTime"`
	CookTime    *int                 `json:"cookTime"`
	TotalTime   *int                 `json:"totalTime"`
	Servings    *int                 `json:"servings"`
	Difficulty  *models.Difficulty   `json:"difficulty"`
	MealType    *models.MealType     `json:"mealType"`
	IsPublished *bool                `json:"isPublished"`
}

// Update edits a post owned by actor.
func (s *Service) Update(ctx context.Context, rawID string, actor primitive.ObjectID, in UpdateInput) (*models.RecipePost, error) {
	p, err := s.owned(ctx, rawID, actor)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		p.Title = strings.TrimSpace(*in.Title)
	}
	if in.Recipe != nil {
		p.Recipe = strings.TrimSpace(*in.Recipe)
	}
	if in.Ingredients != nil {
		p.Ingredients = *in.Ingredients
	}
	if in.Steps != nil {
		p.Steps = *in.Steps
	}
	if in.PrepTime != nil {
		p.PrepTime = *in.PrepTime
	}
	if in.CookTime != nil {
		p.CookTime = *in.CookTime
	}
	if in.TotalTime != nil {
		p.TotalTime = *in.TotalTime
	}
	if in.Servings != nil {
		p.Servings = *in.Servings
	}
	if in.Difficulty != nil {
		p.Difficulty = *in.Difficulty
	}
	if in.MealType != nil {
		p.MealType = *in.MealType
	}
	if in.IsPublished != nil {
		p.IsPublished = *in.IsPublished
	}
	edited := s.now().UTC()
	p.LastEditedAt = &edited

	if err := validatePost(p); err != nil {
		return nil, err
	}
	if err := s.save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) owned(ctx context.Context, rawID string, actor primitive.ObjectID) (*models.RecipePost, error) {
	id, err := utils.ParseObjectID(rawID, invalidPostID)
	if err != nil {
		return nil, err
	}
	p, err := s.store.RecipeByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, errPostNotFound
	}
	if err != nil {
		return nil, apperr.Internal("Failed to fetch recipe post", err)
	}
	if p.User != actor {
		return nil, apperr.Forbidden("You can only modify your own posts")
	}
	return p, nil
}

func (s *Service) save(ctx context.Context, p *models.RecipePost) error {
	err := s.store.SaveRecipe(ctx, p)
	if errors.Is(err, db.ErrNotFound) {
		return errPostNotFound
	}
	if err != nil {
		return apperr.Internal("Failed to update recipe post", err)
	}
	return nil
}

type DeleteResult struct {
	PostID string `json:"postId"`
	Title  string `json:"title"`
}

// Delete removes a post and its comments. The id shape is checked before
// storage is touched.
func (s *Service) Delete(ctx context.Context, rawID string) (*DeleteResult, error) {
	id, err := utils.ParseObjectID(rawID, invalidPostID)
	if err != nil {
		return nil, err
	}
	p, err := s.store.DeleteRecipe(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, errPostNotFound
	}
	if err != nil {
		return nil, apperr.Internal("Failed to delete recipe post", err)
	}

	if _, err := s.store.DeleteCommentsByPosts(ctx, []primitive.ObjectID{id}); err != nil {
		// the post is already gone; leftover comments are unreachable
		logrus.WithError(err).WithField("postId", id.Hex()).Error("delete comments of removed post")
	}
	if s.images != nil && p.ImageURL != "" {
		s.images.Remove(filemgr.Saved{ImageURL: p.ImageURL, ThumbnailURL: p.ThumbnailURL})
	}
	return &DeleteResult{PostID: id.Hex(), Title: p.Title}, nil
}

func (s *Service) Like(ctx context.Context, rawID string) (*models.RecipePost, error) {
	id, err := utils.ParseObjectID(rawID, invalidPostID)
	if err != nil {
		return nil, err
	}
	p, err := s.store.IncrementRecipe(ctx, id, db.CounterLikes)
	if errors.Is(err, db.ErrNotFound) {
		return nil, errPostNotFound
	}
	if err != nil {
		return nil, apperr.Internal("Failed to like recipe post", err)
	}
	return p, nil
}

// AttachImage stores a new picture for a post owned by actor and replaces
// the previous one.
func (s *Service) AttachImage(ctx context.Context, rawID string, actor primitive.ObjectID, img io.Reader) (*models.RecipePost, error) {
	if s.images == nil {
		return nil, apperr.Internal("Image uploads are not configured", nil)
	}
	p, err := s.owned(ctx, rawID, actor)
	if err != nil {
		return nil, err
	}

	saved, err := s.images.SaveImageWithThumb(img)
	if err != nil {
		if errors.Is(err, filemgr.ErrInvalidMIME) || errors.Is(err, filemgr.ErrFileTooLarge) || errors.Is(err, filemgr.ErrBadImage) {
			return nil, &apperr.Error{Kind: apperr.KindBadRequest, Message: "Invalid image", Err: err}
		}
		return nil, apperr.Internal("Failed to store image", err)
	}

	previous := filemgr.Saved{ImageURL: p.ImageURL, ThumbnailURL: p.ThumbnailURL}
	p.ImageURL, p.ThumbnailURL = saved.ImageURL, saved.ThumbnailURL
	if err := s.save(ctx, p); err != nil {
		s.images.Remove(*saved)
		return nil, err
	}
	if previous.ImageURL != "" {
		s.images.Remove(previous)
	}
	return p, nil
}

// Card renders the printable PDF of a post.
func (s *Service) Card(ctx context.Context, rawID string) ([]byte, error) {
	id, err := utils.ParseObjectID(rawID, invalidPostID)
	if err != nil {
		return nil, err
	}
	p, err := s.store.RecipeByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, errPostNotFound
	}
	if err != nil {
		return nil, apperr.Internal("Failed to fetch recipe post", err)
	}
	s.populateAuthor(ctx, p)

	author := ""
	if p.Author != nil {
		author = strings.TrimSpace(p.Author.FirstName + " " + p.Author.LastName)
	}
	var buf bytes.Buffer
	if err := recipecard.Render(&buf, recipecard.FromPost(p, author, s.publicURL+"/posts/"+id.Hex())); err != nil {
		return nil, apperr.Internal("Failed to render recipe card", err)
	}
	return buf.Bytes(), nil
}
