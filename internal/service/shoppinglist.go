package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodgram-project/backend/internal/models"
	"github.com/foodgram-project/backend/internal/types"
)

// ShoppingListService aggregates the ingredient lines of every recipe in a
// user's cart into a flat report.
type ShoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// Build groups all cart ingredient requirements by (name, unit) and sums the
// amounts, ordered by ingredient name. An empty cart is reported before any
// aggregation happens.
func (s *ShoppingListService) Build(ctx context.Context, userID uuid.UUID) ([]types.ShoppingListLine, error) {
	var cartCount int64
	if err := s.db.WithContext(ctx).Model(&models.CartItem{}).Where("user_id = ?", userID).Count(&cartCount).Error; err != nil {
		return nil, err
	}
	if cartCount == 0 {
		return nil, ErrEmptyCart
	}

	var lines []types.ShoppingListLine
	err := s.db.WithContext(ctx).
		Table("recipe_ingredients").
		Select("ingredients.name AS name, ingredients.measurement_unit AS unit, SUM(recipe_ingredients.amount) AS amount").
		Joins("JOIN cart_items ON cart_items.recipe_id = recipe_ingredients.recipe_id").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("cart_items.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name").
		Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// Render formats the aggregated lines as the downloadable text report.
func (s *ShoppingListService) Render(user *models.User, lines []types.ShoppingListLine) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Shopping list for %s\n\n", user.FirstName)
	for _, line := range lines {
		fmt.Fprintf(&b, "%s: %d %s\n", line.Name, line.Amount, line.Unit)
	}
	return b.String()
}

// Filename derives the attachment name from the username.
func (s *ShoppingListService) Filename(username string) string {
	return fmt.Sprintf("%s_shopping_list.txt", username)
}
