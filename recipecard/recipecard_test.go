package recipecard

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipehub/models"
)

func TestRender(t *testing.T) {
	post := &models.RecipePost{
		Title:      "Crème brûlée",
		Recipe:     "Bake in a water bath, chill, then torch the sugar.",
		PrepTime:   20,
		CookTime:   40,
		TotalTime:  60,
		Servings:   4,
		Difficulty: models.DifficultyMedium,
		Ingredients: []models.Ingredient{
			{Name: "Cream", Quantity: "500ml"},
			{Name: "Sugar"},
		},
		Steps: []models.Step{
			{StepNumber: 1, Instruction: "Heat the cream."},
			{StepNumber: 2, Instruction: "Whisk in the yolks."},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FromPost(post, "Jane Doe", "http://localhost:8080/posts/abc")))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))

	var bare bytes.Buffer
	require.NoError(t, Render(&bare, Card{Title: "Toast"}))
	assert.True(t, bytes.HasPrefix(bare.Bytes(), []byte("%PDF")))
	assert.Less(t, bare.Len(), buf.Len())
}

func TestSummaryLine(t *testing.T) {
	c := Card{PrepTime: 5, CookTime: 10, TotalTime: 15, MealType: models.MealSnack}
	assert.Equal(t, "Prep 5 min | Cook 10 min | Total 15 min | Snack", summaryLine(c))
}
