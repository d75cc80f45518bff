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

// RelationKind selects one of the three membership relations.
type RelationKind string

const (
	RelationFavorite RelationKind = "favorite"
	RelationCart     RelationKind = "cart"
	RelationFollow   RelationKind = "follow"
)

// relationDescriptor is the strategy table entry for one relation kind.
type relationDescriptor struct {
	newRow func(subject, target uuid.UUID) interface{}
	model  func() interface{}
	pair   func(db *gorm.DB, subject, target uuid.UUID) *gorm.DB
}

var relations = map[RelationKind]relationDescriptor{
	RelationFavorite: {
		newRow: func(s, t uuid.UUID) interface{} { return &models.Favorite{UserID: s, RecipeID: t} },
		model:  func() interface{} { return &models.Favorite{} },
		pair: func(db *gorm.DB, s, t uuid.UUID) *gorm.DB {
			return db.Where("user_id = ? AND recipe_id = ?", s, t)
		},
	},
	RelationCart: {
		newRow: func(s, t uuid.UUID) interface{} { return &models.CartItem{UserID: s, RecipeID: t} },
		model:  func() interface{} { return &models.CartItem{} },
		pair: func(db *gorm.DB, s, t uuid.UUID) *gorm.DB {
			return db.Where("user_id = ? AND recipe_id = ?", s, t)
		},
	},
	RelationFollow: {
		newRow: func(s, t uuid.UUID) interface{} { return &models.Follow{FollowerID: s, AuthorID: t} },
		model:  func() interface{} { return &models.Follow{} },
		pair: func(db *gorm.DB, s, t uuid.UUID) *gorm.DB {
			return db.Where("follower_id = ? AND author_id = ?", s, t)
		},
	},
}

// RelationResult carries the related entity returned after a successful add:
// a recipe summary for favorite/cart, the author subscription for follow.
type RelationResult struct {
	Recipe *types.RecipeSummary
	Author *types.Subscription
}

// RelationService is the generic idempotent-add / error-on-missing-remove
// toggle over the three membership relations. Uniqueness is enforced by the
// unique constraint on each pair; a lost race surfaces as ErrAlreadyExists.
type RelationService struct {
	db   *gorm.DB
	subs *SubscriptionService
}

func NewRelationService(db *gorm.DB) *RelationService {
	return &RelationService{db: db, subs: NewSubscriptionService(db)}
}

// Add creates the relation row and returns the related entity for display.
func (s *RelationService) Add(ctx context.Context, kind RelationKind, subjectID, targetID uuid.UUID) (*RelationResult, error) {
	desc, ok := relations[kind]
	if !ok {
		return nil, fmt.Errorf("unknown relation kind %q", kind)
	}
	if kind == RelationFollow && subjectID == targetID {
		return nil, ErrSelfFollow
	}

	result := &RelationResult{}
	var author *models.User
	if kind == RelationFollow {
		var err error
		author, err = s.loadUser(ctx, targetID)
		if err != nil {
			return nil, err
		}
	} else {
		recipe, err := s.loadRecipe(ctx, targetID)
		if err != nil {
			return nil, err
		}
		summary := recipeSummary(recipe)
		result.Recipe = &summary
	}

	if err := s.db.WithContext(ctx).Create(desc.newRow(subjectID, targetID)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}

	if kind == RelationFollow {
		sub, err := s.subs.build(ctx, author, 0)
		if err != nil {
			return nil, err
		}
		result.Author = sub
	}
	return result, nil
}

// Remove deletes the relation row. Removing an absent pair is an error, not
// a no-op: the second delete of the same pair reports ErrRelationMissing.
func (s *RelationService) Remove(ctx context.Context, kind RelationKind, subjectID, targetID uuid.UUID) error {
	desc, ok := relations[kind]
	if !ok {
		return fmt.Errorf("unknown relation kind %q", kind)
	}

	if kind == RelationFollow {
		if _, err := s.loadUser(ctx, targetID); err != nil {
			return err
		}
	} else {
		if _, err := s.loadRecipe(ctx, targetID); err != nil {
			return err
		}
	}

	res := desc.pair(s.db.WithContext(ctx), subjectID, targetID).Delete(desc.model())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRelationMissing
	}
	return nil
}

func (s *RelationService) loadRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("recipe %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &recipe, nil
}

func (s *RelationService) loadUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}
