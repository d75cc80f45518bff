package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram-project/backend/internal/models"
	"github.com/foodgram-project/backend/internal/testhelpers"
	"github.com/foodgram-project/backend/internal/types"
)

func TestRecipeService_CreateAndGet(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	author := testhelpers.CreateUser(t, db, "chef")
	breakfast := testhelpers.CreateTag(t, db, "Breakfast", "#E26C2D", "breakfast")
	flour := testhelpers.CreateIngredient(t, db, "flour", "g")
	milk := testhelpers.CreateIngredient(t, db, "milk", "ml")

	svc := NewRecipeService(db)
	view, err := svc.Create(context.Background(), author.ID, &types.CreateRecipeInput{
		Tags:        []uuid.UUID{breakfast.ID},
		Ingredients: []types.IngredientLineInput{line(flour.ID, 200), line(milk.ID, 300)},
		Name:        "Pancakes",
		Text:        "whisk and fry",
		CookingTime: 20,
	})
	require.NoError(t, err)

	assert.Equal(t, "Pancakes", view.Name)
	assert.Equal(t, 20, view.CookingTime)
	assert.Equal(t, author.ID, view.Author.ID)
	assert.Equal(t, "chef", view.Author.Username)
	assert.False(t, view.Author.IsSubscribed)
	assert.False(t, view.IsFavorited)
	assert.False(t, view.IsInShoppingCart)

	require.Len(t, view.Tags, 1)
	assert.Equal(t, "breakfast", view.Tags[0].Slug)

	require.Len(t, view.Ingredients, 2)
	amounts := map[uuid.UUID]int{}
	for _, l := range view.Ingredients {
		amounts[l.ID] = l.Amount
	}
	assert.Equal(t, 200, amounts[flour.ID])
	assert.Equal(t, 300, amounts[milk.ID])

	fetched, err := svc.Get(context.Background(), view.ID, types.AnonymousViewer())
	require.NoError(t, err)
	assert.Equal(t, view.ID, fetched.ID)
	assert.Len(t, fetched.Ingredients, 2)
}

func TestRecipeService_CreateDeduplicatesTags(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	author := testhelpers.CreateUser(t, db, "chef")
	dinner := testhelpers.CreateTag(t, db, "Dinner", "#49B64E", "dinner")
	flour := testhelpers.CreateIngredient(t, db, "flour", "g")

	view := makeRecipe(t, db, author, "Bread", []uuid.UUID{dinner.ID, dinner.ID}, []types.IngredientLineInput{line(flour.ID, 500)})
	assert.Len(t, view.Tags, 1)
}

func TestRecipeService_CreateValidation(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	author := testhelpers.CreateUser(t, db, "chef")
	dinner := testhelpers.CreateTag(t, db, "Dinner", "#49B64E", "dinner")
	flour := testhelpers.CreateIngredient(t, db, "flour", "g")

	svc := NewRecipeService(db)

	cases := []struct {
		name  string
		input types.CreateRecipeInput
		field string
	}{
		{
			name: "no ingredients",
			input: types.CreateRecipeInput{
				Tags: []uuid.UUID{dinner.ID}, Name: "Soup", Text: "boil", CookingTime: 10,
			},
			field: "ingredients",
		},
		{
			name: "no tags",
			input: types.CreateRecipeInput{
				Ingredients: []types.IngredientLineInput{line(flour.ID, 100)},
				Name:        "Soup", Text: "boil", CookingTime: 10,
			},
			field: "tags",
		},
		{
			name: "zero amount",
			input: types.CreateRecipeInput{
				Tags:        []uuid.UUID{dinner.ID},
				Ingredients: []types.IngredientLineInput{line(flour.ID, 0)},
				Name:        "Soup", Text: "boil", CookingTime: 10,
			},
			field: "ingredients",
		},
		{
			name: "repeated ingredient",
			input: types.CreateRecipeInput{
				Tags:        []uuid.UUID{dinner.ID},
				Ingredients: []types.IngredientLineInput{line(flour.ID, 100), line(flour.ID, 200)},
				Name:        "Soup", Text: "boil", CookingTime: 10,
			},
			field: "ingredients",
		},
		{
			name: "zero cooking time",
			input: types.CreateRecipeInput{
				Tags:        []uuid.UUID{dinner.ID},
				Ingredients: []types.IngredientLineInput{line(flour.ID, 100)},
				Name:        "Soup", Text: "boil",
			},
			field: "cooking_time",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), author.ID, &tc.input)
			require.Error(t, err)

			ve, ok := AsValidationError(err)
			require.True(t, ok, "expected a validation error, got %v", err)
			assert.Contains(t, ve.Fields, tc.field)
		})
	}

	var count int64
	require.NoError(t, db.Model(&models.Recipe{}).Count(&count).Error)
	assert.Zero(t, count, "rejected payloads must not persist anything")
}

func TestRecipeService_CreateUnknownReferences(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	author := testhelpers.CreateUser(t, db, "chef")
	dinner := testhelpers.CreateTag(t, db, "Dinner", "#49B64E", "dinner")
	flour := testhelpers.CreateIngredient(t, db, "flour", "g")

	svc := NewRecipeService(db)

	_, err := svc.Create(context.Background(), author.ID, &types.CreateRecipeInput{
		Tags:        []uuid.UUID{dinner.ID},
		Ingredients: []types.IngredientLineInput{line(uuid.New(), 100)},
		Name:        "Soup", Text: "boil", CookingTime: 10,
	})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Create(context.Background(), author.ID, &types.CreateRecipeInput{
		Tags:        []uuid.UUID{uuid.New()},
		Ingredients: []types.IngredientLineInput{line(flour.ID, 100)},
		Name:        "Soup", Text: "boil", CookingTime: 10,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecipeService_UpdatePartial(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	author := testhelpers.CreateUser(t, db, "chef")
	dinner := testhelpers.CreateTag(t, db, "Dinner", "#49B64E", "dinner")
	flour := testhelpers.CreateIngredient(t, db, "flour", "g")

	created := makeRecipe(t, db, author, "Bread", []uuid.UUID{dinner.ID}, []types.IngredientLineInput{line(flour.ID, 500)})

	svc := NewRecipeService(db)
	newName := "Sourdough"
	view, err := svc.Update(context.Background(), created.ID, author.ID, &types.UpdateRecipeInput{Name: &newName})
	require.NoError(t, err)

	assert.Equal(t, "Sourdough", view.Name)
	require.Len(t, view.Ingredients, 1, "omitted fields stay untouched")
	assert.Equal(t, flour.ID, view.Ingredients[0].ID)
	assert.Len(t, view.Tags, 1)
}

func TestRecipeService_UpdateReplacesIngredientsWholesale(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	author := testhelpers.CreateUser(t, db, "chef")
	dinner := testhelpers.CreateTag(t, db, "Dinner", "#49B64E", "dinner")
	flour := testhelpers.CreateIngredient(t, db, "flour", "g")
	sugar := testhelpers.CreateIngredient(t, db, "sugar", "g")

	created := makeRecipe(t, db, author, "Bread", []uuid.UUID{dinner.ID}, []types.IngredientLineInput{line(flour.ID, 500)})

	svc := NewRecipeService(db)
	lines := []types.IngredientLineInput{line(sugar.ID, 50)}
	view, err := svc.Update(context.Background(), created.ID, author.ID, &types.UpdateRecipeInput{Ingredients: &lines})
	require.NoError(t, err)

	require.Len(t, view.Ingredients, 1)
	assert.Equal(t, sugar.ID, view.Ingredients[0].ID)
	assert.Equal(t, 50, view.Ingredients[0].Amount)

	var count int64
	require.NoError(t, db.Model(&models.RecipeIngredient{}).Where("recipe_id = ?", created.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count, "old lines must be gone")
}

func TestRecipeService_UpdateRejectsEmptyReplacement(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	author := testhelpers.CreateUser(t, db, "chef")
	dinner := testhelpers.CreateTag(t, db, "Dinner", "#49B64E", "dinner")
	flour := testhelpers.CreateIngredient(t, db, "flour", "g")

	created := makeRecipe(t, db, author, "Bread", []uuid.UUID{dinner.ID}, []types.IngredientLineInput{line(flour.ID, 500)})

	svc := NewRecipeService(db)
	empty := []types.IngredientLineInput{}
	_, err := svc.Update(context.Background(), created.ID, author.ID, &types.UpdateRecipeInput{Ingredients: &empty})

	ve, ok := AsValidationError(err)
	require.True(t, ok, "expected a validation error, got %v", err)
	assert.Contains(t, ve.Fields, "ingredients")

	view, err := svc.Get(context.Background(), created.ID, types.AnonymousViewer())
	require.NoError(t, err)
	assert.Len(t, view.Ingredients, 1, "rejected update must leave the recipe intact")
}

func TestRecipeService_UpdateAndDeleteOwnership(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	author := testhelpers.CreateUser(t, db, "chef")
	intruder := testhelpers.CreateUser(t, db, "intruder")
	dinner := testhelpers.CreateTag(t, db, "Dinner", "#49B64E", "dinner")
	flour := testhelpers.CreateIngredient(t, db, "flour", "g")

	created := makeRecipe(t, db, author, "Bread", []uuid.UUID{dinner.ID}, []types.IngredientLineInput{line(flour.ID, 500)})

	svc := NewRecipeService(db)
	newName := "Hijacked"
	_, err := svc.Update(context.Background(), created.ID, intruder.ID, &types.UpdateRecipeInput{Name: &newName})
	assert.ErrorIs(t, err, ErrForbidden)

	err = svc.Delete(context.Background(), created.ID, intruder.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Update(context.Background(), uuid.New(), author.ID, &types.UpdateRecipeInput{Name: &newName})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecipeService_DeleteCascades(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	author := testhelpers.CreateUser(t, db, "chef")
	fan := testhelpers.CreateUser(t, db, "fan")
	dinner := testhelpers.CreateTag(t, db, "Dinner", "#49B64E", "dinner")
	flour := testhelpers.CreateIngredient(t, db, "flour", "g")

	created := makeRecipe(t, db, author, "Bread", []uuid.UUID{dinner.ID}, []types.IngredientLineInput{line(flour.ID, 500)})

	relations := NewRelationService(db)
	_, err := relations.Add(context.Background(), RelationFavorite, fan.ID, created.ID)
	require.NoError(t, err)
	_, err = relations.Add(context.Background(), RelationCart, fan.ID, created.ID)
	require.NoError(t, err)

	svc := NewRecipeService(db)
	require.NoError(t, svc.Delete(context.Background(), created.ID, author.ID))

	_, err = svc.Get(context.Background(), created.ID, types.AnonymousViewer())
	assert.ErrorIs(t, err, ErrNotFound)

	for _, model := range []interface{}{&models.RecipeIngredient{}, &models.Favorite{}, &models.CartItem{}} {
		var count int64
		require.NoError(t, db.Model(model).Where("recipe_id = ?", created.ID).Count(&count).Error)
		assert.Zero(t, count, "no orphan rows after delete")
	}
}

func TestRecipeService_ListFiltersAndOrdering(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	alice := testhelpers.CreateUser(t, db, "alice")
	bob := testhelpers.CreateUser(t, db, "bob")
	breakfast := testhelpers.CreateTag(t, db, "Breakfast", "#E26C2D", "breakfast")
	dinner := testhelpers.CreateTag(t, db, "Dinner", "#49B64E", "dinner")
	flour := testhelpers.CreateIngredient(t, db, "flour", "g")

	pancakes := makeRecipe(t, db, alice, "Pancakes", []uuid.UUID{breakfast.ID}, []types.IngredientLineInput{line(flour.ID, 200)})
	stew := makeRecipe(t, db, bob, "Stew", []uuid.UUID{dinner.ID}, []types.IngredientLineInput{line(flour.ID, 50)})
	bread := makeRecipe(t, db, bob, "Bread", []uuid.UUID{dinner.ID, breakfast.ID}, []types.IngredientLineInput{line(flour.ID, 500)})

	// Fix publication times so ordering is deterministic.
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []uuid.UUID{pancakes.ID, stew.ID, bread.ID} {
		require.NoError(t, db.Model(&models.Recipe{}).Where("id = ?", id).
			Update("pub_date", base.Add(time.Duration(i)*time.Hour)).Error)
	}

	svc := NewRecipeService(db)
	viewer := types.Viewer{ID: alice.ID}

	page, err := svc.List(context.Background(), types.RecipeFilter{}, viewer)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Count)
	require.Len(t, page.Results, 3)
	assert.Equal(t, bread.ID, page.Results[0].ID, "newest first")
	assert.Equal(t, pancakes.ID, page.Results[2].ID)

	page, err = svc.List(context.Background(), types.RecipeFilter{TagSlugs: []string{"breakfast"}}, viewer)
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Count)

	page, err = svc.List(context.Background(), types.RecipeFilter{TagSlugs: []string{"breakfast", "dinner"}}, viewer)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Count, "tag slugs combine as a union")

	page, err = svc.List(context.Background(), types.RecipeFilter{AuthorID: &bob.ID}, viewer)
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Count)

	page, err = svc.List(context.Background(), types.RecipeFilter{Page: 2, Limit: 2}, viewer)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Count)
	assert.Len(t, page.Results, 1)
}

func TestRecipeService_ListRelationFilters(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	alice := testhelpers.CreateUser(t, db, "alice")
	bob := testhelpers.CreateUser(t, db, "bob")
	dinner := testhelpers.CreateTag(t, db, "Dinner", "#49B64E", "dinner")
	flour := testhelpers.CreateIngredient(t, db, "flour", "g")

	stew := makeRecipe(t, db, bob, "Stew", []uuid.UUID{dinner.ID}, []types.IngredientLineInput{line(flour.ID, 50)})
	bread := makeRecipe(t, db, bob, "Bread", []uuid.UUID{dinner.ID}, []types.IngredientLineInput{line(flour.ID, 500)})

	relations := NewRelationService(db)
	_, err := relations.Add(context.Background(), RelationFavorite, alice.ID, stew.ID)
	require.NoError(t, err)
	_, err = relations.Add(context.Background(), RelationCart, alice.ID, bread.ID)
	require.NoError(t, err)

	svc := NewRecipeService(db)
	viewer := types.Viewer{ID: alice.ID}

	page, err := svc.List(context.Background(), types.RecipeFilter{Favorited: true}, viewer)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, stew.ID, page.Results[0].ID)
	assert.True(t, page.Results[0].IsFavorited)
	assert.False(t, page.Results[0].IsInShoppingCart)

	page, err = svc.List(context.Background(), types.RecipeFilter{InCart: true}, viewer)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, bread.ID, page.Results[0].ID)
	assert.True(t, page.Results[0].IsInShoppingCart)

	// For anonymous viewers the relation filters do not narrow anything.
	page, err = svc.List(context.Background(), types.RecipeFilter{Favorited: true, InCart: true}, types.AnonymousViewer())
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Count)
	for _, view := range page.Results {
		assert.False(t, view.IsFavorited)
		assert.False(t, view.IsInShoppingCart)
	}
}

func TestRecipeService_ViewerSubscriptionFlag(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	alice := testhelpers.CreateUser(t, db, "alice")
	bob := testhelpers.CreateUser(t, db, "bob")
	dinner := testhelpers.CreateTag(t, db, "Dinner", "#49B64E", "dinner")
	flour := testhelpers.CreateIngredient(t, db, "flour", "g")

	stew := makeRecipe(t, db, bob, "Stew", []uuid.UUID{dinner.ID}, []types.IngredientLineInput{line(flour.ID, 50)})

	relations := NewRelationService(db)
	_, err := relations.Add(context.Background(), RelationFollow, alice.ID, bob.ID)
	require.NoError(t, err)

	svc := NewRecipeService(db)
	view, err := svc.Get(context.Background(), stew.ID, types.Viewer{ID: alice.ID})
	require.NoError(t, err)
	assert.True(t, view.Author.IsSubscribed)

	view, err = svc.Get(context.Background(), stew.ID, types.AnonymousViewer())
	require.NoError(t, err)
	assert.False(t, view.Author.IsSubscribed)
}

func TestRecipeService_GetUnknown(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := NewRecipeService(db)

	_, err := svc.Get(context.Background(), uuid.New(), types.AnonymousViewer())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}
