package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func validPost() *RecipePost {
	return &RecipePost{
		User:      primitive.NewObjectID(),
		Title:     "Spaghetti Bolognese",
		Recipe:    "Cook pasta and sauce.",
		PrepTime:  10,
		CookTime:  20,
		TotalTime: 30,
		Ingredients: []Ingredient{
			{Name: "Pasta", Quantity: "200g"},
		},
		Steps: []Step{
			{StepNumber: 1, Instruction: "Boil water."},
		},
	}
}

func TestRecipePostValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, validPost().Validate())
	})

	t.Run("missing required fields", func(t *testing.T) {
		p := validPost()
		p.Title = ""
		p.CookTime = 0

		err := p.Validate()
		require.Error(t, err)
		assert.Equal(t, []string{"title", "cookTime"}, MissingFields(err))
	})

	t.Run("missing user", func(t *testing.T) {
		p := validPost()
		p.User = primitive.NilObjectID

		assert.Equal(t, []string{"user"}, MissingFields(p.Validate()))
	})

	t.Run("bad difficulty", func(t *testing.T) {
		p := validPost()
		p.Difficulty = "Impossible"

		err := p.Validate()
		require.Error(t, err)
		assert.Empty(t, MissingFields(err))
		assert.Contains(t, DescribeValidation(err), "difficulty must be one of [Easy, Medium, Hard]")
	})

	t.Run("bad meal type", func(t *testing.T) {
		p := validPost()
		p.MealType = "Supper"

		assert.Contains(t, DescribeValidation(p.Validate()), "mealType must be one of")
	})

	t.Run("enumerations accepted", func(t *testing.T) {
		p := validPost()
		p.Difficulty = DifficultyHard
		p.MealType = MealBrunch

		assert.NoError(t, p.Validate())
	})

	t.Run("step without instruction", func(t *testing.T) {
		p := validPost()
		p.Steps = append(p.Steps, Step{StepNumber: 2})

		assert.Equal(t, []string{"steps[1].instruction"}, MissingFields(p.Validate()))
	})
}

func TestCommentValidate(t *testing.T) {
	c := &Comment{User: primitive.NewObjectID(), Post: primitive.NewObjectID()}
	assert.Equal(t, []string{"text"}, MissingFields(c.Validate()))

	c.Text = "Looks great"
	assert.NoError(t, c.Validate())
}

func TestZeroRating(t *testing.T) {
	assert.Equal(t, "0", ZeroRating().String())
}

func TestProfileTypeValid(t *testing.T) {
	assert.True(t, ProfilePublic.Valid())
	assert.True(t, ProfilePrivate.Valid())
	assert.False(t, ProfileType("public").Valid())
}
