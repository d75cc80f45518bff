package types

import (
	"github.com/google/uuid"
)

// Viewer is the authenticated identity attached to a request. Anonymous
// viewers see every derived flag as false and relation filters as no-ops.
type Viewer struct {
	ID        uuid.UUID
	Anonymous bool
}

// AnonymousViewer returns the identity used for unauthenticated requests.
func AnonymousViewer() Viewer {
	return Viewer{Anonymous: true}
}

// TagView is a fully expanded tag object.
type TagView struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Color string    `json:"color"`
	Slug  string    `json:"slug"`
}

// UserView is an author profile with the viewer-dependent subscription flag.
type UserView struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsSubscribed bool      `json:"is_subscribed"`
}

// IngredientLineView is one recipe line joined against the catalog.
type IngredientLineView struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
	Amount          int       `json:"amount"`
}

// RecipeView is the full read representation of a recipe for a given viewer.
type RecipeView struct {
	ID               uuid.UUID            `json:"id"`
	Tags             []TagView            `json:"tags"`
	Author           UserView             `json:"author"`
	Ingredients      []IngredientLineView `json:"ingredients"`
	IsFavorited      bool                 `json:"is_favorited"`
	IsInShoppingCart bool                 `json:"is_in_shopping_cart"`
	Name             string               `json:"name"`
	Image            string               `json:"image"`
	Text             string               `json:"text"`
	CookingTime      int                  `json:"cooking_time"`
}

// RecipeSummary is the short form returned from relation toggles and
// subscription previews.
type RecipeSummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	CookingTime int       `json:"cooking_time"`
}

// Subscription is a followed author with a capped recent-recipes preview.
type Subscription struct {
	UserView
	Recipes      []RecipeSummary `json:"recipes"`
	RecipesCount int64           `json:"recipes_count"`
}

// ShoppingListLine is one aggregated ingredient requirement.
type ShoppingListLine struct {
	Name   string `json:"name"`
	Amount int    `json:"amount"`
	Unit   string `json:"unit"`
}

// Page is the paginated list envelope.
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}
