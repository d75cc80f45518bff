package types

import (
	"github.com/google/uuid"
)

// IngredientLineInput references a catalog ingredient with an amount.
type IngredientLineInput struct {
	ID     uuid.UUID `json:"id" binding:"required"`
	Amount int       `json:"amount"`
}

// CreateRecipeInput is the authoring payload. The author is never part of it;
// it is taken from the request identity server-side.
type CreateRecipeInput struct {
	Tags        []uuid.UUID           `json:"tags"`
	Ingredients []IngredientLineInput `json:"ingredients"`
	Name        string                `json:"name" binding:"required"`
	Image       string                `json:"image"`
	Text        string                `json:"text" binding:"required"`
	CookingTime int                   `json:"cooking_time"`
}

// UpdateRecipeInput is a partial update: nil fields are left unchanged, while
// non-nil tags and ingredients replace the existing sets wholesale.
type UpdateRecipeInput struct {
	Tags        *[]uuid.UUID           `json:"tags"`
	Ingredients *[]IngredientLineInput `json:"ingredients"`
	Name        *string                `json:"name"`
	Image       *string                `json:"image"`
	Text        *string                `json:"text"`
	CookingTime *int                   `json:"cooking_time"`
}

// RecipeFilter narrows a recipe listing. Favorited and InCart only apply to
// authenticated viewers.
type RecipeFilter struct {
	TagSlugs  []string
	AuthorID  *uuid.UUID
	Favorited bool
	InCart    bool
	Page      int
	Limit     int
}
