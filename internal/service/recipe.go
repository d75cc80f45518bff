package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodgram-project/backend/internal/models"
	"github.com/foodgram-project/backend/internal/types"
)

const DefaultPageSize = 6

// RecipeService owns recipe authoring, validation and read serialization.
type RecipeService struct {
	db *gorm.DB
}

func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

// Create validates the payload and persists the recipe, its ingredient lines
// and its tag links as one transaction. The author is server-assigned.
func (s *RecipeService) Create(ctx context.Context, authorID uuid.UUID, in *types.CreateRecipeInput) (*types.RecipeView, error) {
	tagIDs := dedupeIDs(in.Tags)
	if err := s.validateRecipeInput(ctx, &tagIDs, &in.Ingredients, &in.CookingTime); err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        in.Name,
		Image:       in.Image,
		Text:        in.Text,
		CookingTime: in.CookingTime,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		if err := s.insertLines(tx, recipe.ID, in.Ingredients); err != nil {
			return err
		}
		return s.setTags(tx, &recipe, tagIDs)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, recipe.ID, types.Viewer{ID: authorID})
}

// Update applies a partial update. Only the author may edit; tags and
// ingredient lines, when present, replace the existing sets wholesale.
func (s *RecipeService) Update(ctx context.Context, recipeID, editorID uuid.UUID, in *types.UpdateRecipeInput) (*types.RecipeView, error) {
	recipe, err := s.load(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if recipe.AuthorID != editorID {
		return nil, ErrForbidden
	}

	var tagIDs *[]uuid.UUID
	if in.Tags != nil {
		deduped := dedupeIDs(*in.Tags)
		tagIDs = &deduped
	}
	if err := s.validateRecipeInput(ctx, tagIDs, in.Ingredients, in.CookingTime); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Image != nil {
		updates["image"] = *in.Image
	}
	if in.Text != nil {
		updates["text"] = *in.Text
	}
	if in.CookingTime != nil {
		updates["cooking_time"] = *in.CookingTime
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(recipe).Updates(updates).Error; err != nil {
				return err
			}
		}
		if in.Ingredients != nil {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
				return err
			}
			if err := s.insertLines(tx, recipe.ID, *in.Ingredients); err != nil {
				return err
			}
		}
		if tagIDs != nil {
			if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
				return err
			}
			return s.setTags(tx, recipe, *tagIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, recipeID, types.Viewer{ID: editorID})
}

// Delete removes a recipe together with its ingredient lines, tag links and
// any favorite or cart rows referencing it.
func (s *RecipeService) Delete(ctx context.Context, recipeID, editorID uuid.UUID) error {
	recipe, err := s.load(ctx, recipeID)
	if err != nil {
		return err
	}
	if recipe.AuthorID != editorID {
		return ErrForbidden
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&models.Recipe{}, "id = ?", recipeID).Error
	})
}

// Get returns the full read view of one recipe for the given viewer.
func (s *RecipeService) Get(ctx context.Context, recipeID uuid.UUID, viewer types.Viewer) (*types.RecipeView, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		Preload("Author").
		First(&recipe, "id = ?", recipeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("recipe %s: %w", recipeID, ErrNotFound)
		}
		return nil, err
	}

	views, err := s.buildViews(ctx, []models.Recipe{recipe}, viewer)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// List returns a filtered, paginated page of recipe views, newest first.
// Relation filters are no-ops for anonymous viewers.
func (s *RecipeService) List(ctx context.Context, f types.RecipeFilter, viewer types.Viewer) (*types.Page[types.RecipeView], error) {
	query := s.db.WithContext(ctx).Model(&models.Recipe{})

	if len(f.TagSlugs) > 0 {
		sub := s.db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", f.TagSlugs)
		query = query.Where("recipes.id IN (?)", sub)
	}
	if f.AuthorID != nil {
		query = query.Where("recipes.author_id = ?", *f.AuthorID)
	}
	if f.Favorited && !viewer.Anonymous {
		sub := s.db.Table("favorites").Select("recipe_id").Where("user_id = ?", viewer.ID)
		query = query.Where("recipes.id IN (?)", sub)
	}
	if f.InCart && !viewer.Anonymous {
		sub := s.db.Table("cart_items").Select("recipe_id").Where("user_id = ?", viewer.ID)
		query = query.Where("recipes.id IN (?)", sub)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, err
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 {
		limit = DefaultPageSize
	}

	var recipes []models.Recipe
	err := query.
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		Preload("Author").
		Order("recipes.pub_date DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}

	views, err := s.buildViews(ctx, recipes, viewer)
	if err != nil {
		return nil, err
	}

	return &types.Page[types.RecipeView]{Count: count, Results: views}, nil
}

func (s *RecipeService) load(ctx context.Context, recipeID uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("recipe %s: %w", recipeID, ErrNotFound)
		}
		return nil, err
	}
	return &recipe, nil
}

// validateRecipeInput checks the invariants for the parts of a payload that
// are present; nil pointers mean "not in this payload" for partial updates.
func (s *RecipeService) validateRecipeInput(ctx context.Context, tagIDs *[]uuid.UUID, lines *[]types.IngredientLineInput, cookingTime *int) error {
	ve := &ValidationError{}

	if lines != nil {
		if len(*lines) == 0 {
			ve.Add("ingredients", "recipe needs at least one ingredient")
		}
		seen := make(map[uuid.UUID]bool, len(*lines))
		for _, line := range *lines {
			if seen[line.ID] {
				ve.Add("ingredients", "ingredients must not repeat")
			}
			seen[line.ID] = true
			if line.Amount < 1 {
				ve.Add("ingredients", "minimum amount is 1")
			}
		}
	}
	if tagIDs != nil && len(*tagIDs) == 0 {
		ve.Add("tags", "recipe needs at least one tag")
	}
	if cookingTime != nil && *cookingTime < 1 {
		ve.Add("cooking_time", "cooking time must be at least 1 minute")
	}
	if len(ve.Fields) > 0 {
		return ve
	}

	if lines != nil {
		ids := make([]uuid.UUID, 0, len(*lines))
		for _, line := range *lines {
			ids = append(ids, line.ID)
		}
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Ingredient{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
			return err
		}
		if int(count) != len(ids) {
			return fmt.Errorf("unknown ingredient id: %w", ErrNotFound)
		}
	}
	if tagIDs != nil {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Tag{}).Where("id IN ?", *tagIDs).Count(&count).Error; err != nil {
			return err
		}
		if int(count) != len(*tagIDs) {
			return fmt.Errorf("unknown tag id: %w", ErrNotFound)
		}
	}
	return nil
}

func (s *RecipeService) insertLines(tx *gorm.DB, recipeID uuid.UUID, lines []types.IngredientLineInput) error {
	for _, line := range lines {
		ri := models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: line.ID,
			Amount:       line.Amount,
		}
		if err := tx.Create(&ri).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *RecipeService) setTags(tx *gorm.DB, recipe *models.Recipe, tagIDs []uuid.UUID) error {
	var tags []models.Tag
	if err := tx.Where("id IN ?", tagIDs).Find(&tags).Error; err != nil {
		return err
	}
	return tx.Model(recipe).Association("Tags").Append(&tags)
}

// buildViews serializes recipes for a viewer. The derived flags are computed
// with one query per relation across the whole set, never per recipe.
func (s *RecipeService) buildViews(ctx context.Context, recipes []models.Recipe, viewer types.Viewer) ([]types.RecipeView, error) {
	views := make([]types.RecipeView, 0, len(recipes))
	if len(recipes) == 0 {
		return views, nil
	}

	recipeIDs := make([]uuid.UUID, 0, len(recipes))
	authorIDs := make([]uuid.UUID, 0, len(recipes))
	for _, r := range recipes {
		recipeIDs = append(recipeIDs, r.ID)
		authorIDs = append(authorIDs, r.AuthorID)
	}

	favorited := make(map[uuid.UUID]bool)
	inCart := make(map[uuid.UUID]bool)
	subscribed := make(map[uuid.UUID]bool)
	if !viewer.Anonymous {
		var ids []uuid.UUID
		if err := s.db.WithContext(ctx).Model(&models.Favorite{}).
			Where("user_id = ? AND recipe_id IN ?", viewer.ID, recipeIDs).
			Pluck("recipe_id", &ids).Error; err != nil {
			return nil, err
		}
		for _, id := range ids {
			favorited[id] = true
		}

		ids = nil
		if err := s.db.WithContext(ctx).Model(&models.CartItem{}).
			Where("user_id = ? AND recipe_id IN ?", viewer.ID, recipeIDs).
			Pluck("recipe_id", &ids).Error; err != nil {
			return nil, err
		}
		for _, id := range ids {
			inCart[id] = true
		}

		ids = nil
		if err := s.db.WithContext(ctx).Model(&models.Follow{}).
			Where("follower_id = ? AND author_id IN ?", viewer.ID, authorIDs).
			Pluck("author_id", &ids).Error; err != nil {
			return nil, err
		}
		for _, id := range ids {
			subscribed[id] = true
		}
	}

	for i := range recipes {
		r := &recipes[i]

		tags := make([]types.TagView, 0, len(r.Tags))
		for _, t := range r.Tags {
			tags = append(tags, types.TagView{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug})
		}

		lines := make([]types.IngredientLineView, 0, len(r.Ingredients))
		for _, line := range r.Ingredients {
			lines = append(lines, types.IngredientLineView{
				ID:              line.IngredientID,
				Name:            line.Ingredient.Name,
				MeasurementUnit: line.Ingredient.MeasurementUnit,
				Amount:          line.Amount,
			})
		}

		views = append(views, types.RecipeView{
			ID:   r.ID,
			Tags: tags,
			Author: types.UserView{
				ID:           r.Author.ID,
				Email:        r.Author.Email,
				Username:     r.Author.Username,
				FirstName:    r.Author.FirstName,
				LastName:     r.Author.LastName,
				IsSubscribed: subscribed[r.AuthorID],
			},
			Ingredients:      lines,
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			Name:             r.Name,
			Image:            r.Image,
			Text:             r.Text,
			CookingTime:      r.CookingTime,
		})
	}

	return views, nil
}

func recipeSummary(r *models.Recipe) types.RecipeSummary {
	return types.RecipeSummary{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		CookingTime: r.CookingTime,
	}
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
