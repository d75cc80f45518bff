package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodgram-project/backend/internal/models"
	"github.com/foodgram-project/backend/internal/types"
)

// SubscriptionService lists the authors a user follows, each entry carrying
// a capped recent-recipes preview and the author's total recipe count.
type SubscriptionService struct {
	db *gorm.DB
}

func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{db: db}
}

// List returns a page of the user's subscriptions, most recent first.
// recipesLimit caps the preview per author; 0 means no cap.
func (s *SubscriptionService) List(ctx context.Context, userID uuid.UUID, recipesLimit, page, limit int) (*types.Page[types.Subscription], error) {
	query := s.db.WithContext(ctx).Model(&models.Follow{}).Where("follower_id = ?", userID)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}

	var follows []models.Follow
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&follows).Error
	if err != nil {
		return nil, err
	}

	results := make([]types.Subscription, 0, len(follows))
	if len(follows) == 0 {
		return &types.Page[types.Subscription]{Count: count, Results: results}, nil
	}

	authorIDs := make([]uuid.UUID, 0, len(follows))
	for _, f := range follows {
		authorIDs = append(authorIDs, f.AuthorID)
	}
	var authors []models.User
	if err := s.db.WithContext(ctx).Where("id IN ?", authorIDs).Find(&authors).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*models.User, len(authors))
	for i := range authors {
		byID[authors[i].ID] = &authors[i]
	}

	for _, f := range follows {
		author, ok := byID[f.AuthorID]
		if !ok {
			continue
		}
		sub, err := s.build(ctx, author, recipesLimit)
		if err != nil {
			return nil, err
		}
		results = append(results, *sub)
	}

	return &types.Page[types.Subscription]{Count: count, Results: results}, nil
}

// build assembles one subscription entry. The caller guarantees the viewer
// follows the author, so IsSubscribed is always true here.
func (s *SubscriptionService) build(ctx context.Context, author *models.User, recipesLimit int) (*types.Subscription, error) {
	var recipesCount int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("author_id = ?", author.ID).Count(&recipesCount).Error; err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).Where("author_id = ?", author.ID).Order("pub_date DESC")
	if recipesLimit > 0 {
		query = query.Limit(recipesLimit)
	}
	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}

	summaries := make([]types.RecipeSummary, 0, len(recipes))
	for i := range recipes {
		summaries = append(summaries, recipeSummary(&recipes[i]))
	}

	return &types.Subscription{
		UserView: types.UserView{
			ID:           author.ID,
			Email:        author.Email,
			Username:     author.Username,
			FirstName:    author.FirstName,
			LastName:     author.LastName,
			IsSubscribed: true,
		},
		Recipes:      summaries,
		RecipesCount: recipesCount,
	}, nil
}
