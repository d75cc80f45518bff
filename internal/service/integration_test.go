package service

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram-project/backend/internal/testhelpers"
	"github.com/foodgram-project/backend/internal/types"
)

// TestPostgresIntegration runs the core flows against a real postgres via
// testcontainers. Set RUN_INTEGRATION_TESTS=true to enable; it needs docker.
func TestPostgresIntegration(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("set RUN_INTEGRATION_TESTS=true to run postgres integration tests")
	}

	db := testhelpers.StartPostgres(t)
	author := testhelpers.CreateUser(t, db, "chef")
	fan := testhelpers.CreateUser(t, db, "fan")
	dinner := testhelpers.CreateTag(t, db, "Dinner", "#49B64E", "dinner")
	flour := testhelpers.CreateIngredient(t, db, "flour", "g")

	recipes := NewRecipeService(db)
	view, err := recipes.Create(context.Background(), author.ID, &types.CreateRecipeInput{
		Tags:        []uuid.UUID{dinner.ID},
		Ingredients: []types.IngredientLineInput{line(flour.ID, 500)},
		Name:        "Bread",
		Text:        "knead and bake",
		CookingTime: 90,
	})
	require.NoError(t, err)

	relations := NewRelationService(db)
	_, err = relations.Add(context.Background(), RelationFavorite, fan.ID, view.ID)
	require.NoError(t, err)
	_, err = relations.Add(context.Background(), RelationFavorite, fan.ID, view.ID)
	assert.ErrorIs(t, err, ErrAlreadyExists, "the unique constraint must translate on postgres too")

	_, err = relations.Add(context.Background(), RelationCart, fan.ID, view.ID)
	require.NoError(t, err)

	lines, err := NewShoppingListService(db).Build(context.Background(), fan.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 500, lines[0].Amount)

	page, err := recipes.List(context.Background(), types.RecipeFilter{Favorited: true}, types.Viewer{ID: fan.ID})
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.True(t, page.Results[0].IsFavorited)
	assert.True(t, page.Results[0].IsInShoppingCart)
}
