package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

type MealType string

const (
	MealBreakfast MealType = "Breakfast"
	MealLunch     MealType = "Lunch"
	MealDinner    MealType = "Dinner"
	MealSnack     MealType = "Snack"
	MealDessert   MealType = "Dessert"
	MealBrunch    MealType = "Brunch"
	MealOther     MealType = "Other"
)

type Ingredient struct {
	Name     string `json:"name" bson:"name" validate:"required"`
	Quantity string `json:"quantity" bson:"quantity"`
}

type Step struct {
	StepNumber  int    `json:"stepNumber" bson:"stepNumber" validate:"gte=1"`
	Instruction string `json:"instruction" bson:"instruction" validate:"required"`
}

// RecipePost is a published recipe. Author is only set on reads that
// expand the user reference.
type RecipePost struct {
	ID           primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	User         primitive.ObjectID   `json:"user" bson:"user" validate:"required"`
	Author       *UserSummary         `json:"author,omitempty" bson:"author,omitempty"`
	Title        string               `json:"title" bson:"title" validate:"required"`
	Recipe       string               `json:"recipe" bson:"recipe" validate:"required"`
	ImageURL     string               `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	ThumbnailURL string               `json:"thumbnailUrl,omitempty" bson:"thumbnailUrl,omitempty"`
	Likes        int                  `json:"likes" bson:"likes" validate:"gte=0"`
	Rating       primitive.Decimal128 `json:"rating" bson:"rating"`
	Comments     []primitive.ObjectID `json:"comments" bson:"comments"`
	Ingredients  []Ingredient         `json:"ingredients" bson:"ingredients" validate:"dive"`
	Steps        []Step               `json:"steps" bson:"steps" validate:"dive"`
	PrepTime     int                  `json:"prepTime" bson:"prepTime" validate:"required,gte=0"`
	CookTime     int                  `json:"cookTime" bson:"cookTime" validate:"required,gte=0"`
	TotalTime    int                  `json:"totalTime" bson:"totalTime" validate:"required,gte=0"`
	Servings     int                  `json:"servings,omitempty" bson:"servings,omitempty" validate:"gte=0"`
	Difficulty   Difficulty           `json:"difficulty,omitempty" bson:"difficulty,omitempty" validate:"omitempty,oneof=Easy Medium Hard"`
	MealType     MealType             `json:"mealType,omitempty" bson:"mealType,omitempty" validate:"omitempty,oneof=Breakfast Lunch Dinner Snack Dessert Brunch Other"`
	Views        int                  `json:"views" bson:"views"`
	IsPublished  bool                 `json:"isPublished" bson:"isPublished"`
	LastEditedAt *time.Time           `json:"lastEditedAt,omitempty" bson:"lastEditedAt,omitempty"`
	CreatedAt    time.Time            `json:"createdAt" bson:"createdAt"`
}

// ZeroRating is the stored default rating.
func ZeroRating() primitive.Decimal128 {
	return primitive.NewDecimal128(0x3040000000000000, 0)
}
