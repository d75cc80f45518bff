package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram-project/backend/internal/testhelpers"
)

func TestTagService_List(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	testhelpers.CreateTag(t, db, "Dinner", "#49B64E", "dinner")
	testhelpers.CreateTag(t, db, "Breakfast", "#E26C2D", "breakfast")

	svc := NewTagService(db)
	tags, err := svc.List(context.Background())
	require.NoError(t, err)

	require.Len(t, tags, 2)
	assert.Equal(t, "Breakfast", tags[0].Name)
	assert.Equal(t, "Dinner", tags[1].Name)
}

func TestTagService_Get(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	dinner := testhelpers.CreateTag(t, db, "Dinner", "#49B64E", "dinner")

	svc := NewTagService(db)

	got, err := svc.Get(context.Background(), dinner.ID)
	require.NoError(t, err)
	assert.Equal(t, "dinner", got.Slug)

	_, err = svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
