package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodgram-project/backend/internal/models"
	"github.com/foodgram-project/backend/internal/types"
)

// makeRecipe persists a recipe through the service so hooks and validation run.
func makeRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, tagIDs []uuid.UUID, lines []types.IngredientLineInput) *types.RecipeView {
	t.Helper()
	view, err := NewRecipeService(db).Create(context.Background(), author.ID, &types.CreateRecipeInput{
		Tags:        tagIDs,
		Ingredients: lines,
		Name:        name,
		Text:        "mix everything and serve",
		CookingTime: 15,
	})
	if err != nil {
		t.Fatalf("failed to create recipe %s: %v", name, err)
	}
	return view
}

func line(id uuid.UUID, amount int) types.IngredientLineInput {
	return types.IngredientLineInput{ID: id, Amount: amount}
}
