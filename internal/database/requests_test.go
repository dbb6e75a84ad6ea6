package database

import (
	"context"
	"testing"
	"time"

	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequests(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	anna := createTestUser(t, db, "Anna", "anna@example.com")
	bob := createTestUser(t, db, "Bob", "bob@example.com")

	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	older := &models.ItemRequest{Description: "Need a ladder", RequestorID: anna.ID, Created: base}
	newer := &models.ItemRequest{Description: "Need a kayak", RequestorID: anna.ID, Created: base.Add(time.Hour)}
	bobs := &models.ItemRequest{Description: "Need a projector", RequestorID: bob.ID, Created: base.Add(2 * time.Hour)}
	for _, r := range []*models.ItemRequest{older, newer, bobs} {
		require.NoError(t, db.CreateRequest(ctx, r))
	}

	t.Run("GetByID", func(t *testing.T) {
		got, err := db.GetRequestByID(ctx, older.ID)
		require.NoError(t, err)
		assert.Equal(t, "Need a ladder", got.Description)
		assert.Equal(t, anna.ID, got.RequestorID)
		assert.True(t, base.Equal(got.Created))

		_, err = db.GetRequestByID(ctx, 9999)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("ByRequestorNewestFirst", func(t *testing.T) {
		reqs, err := db.GetRequestsByRequestor(ctx, anna.ID)
		require.NoError(t, err)
		require.Len(t, reqs, 2)
		assert.Equal(t, newer.ID, reqs[0].ID)
		assert.Equal(t, older.ID, reqs[1].ID)
	})

	t.Run("OfOthers", func(t *testing.T) {
		reqs, err := db.GetRequestsOfOthers(ctx, bob.ID, models.DefaultPage())
		require.NoError(t, err)
		require.Len(t, reqs, 2)
		assert.Equal(t, newer.ID, reqs[0].ID)

		reqs, err = db.GetRequestsOfOthers(ctx, anna.ID, models.Page{From: 0, Size: 1})
		require.NoError(t, err)
		require.Len(t, reqs, 1)
		assert.Equal(t, bobs.ID, reqs[0].ID)
	})
}

func TestComments(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "Owner", "owner@example.com")
	author := createTestUser(t, db, "Author", "author@example.com")
	item := createTestItem(t, db, owner.ID, "Drill", true)
	other := createTestItem(t, db, owner.ID, "Saw", true)

	first := &models.Comment{Text: "Great drill", ItemID: item.ID, AuthorID: author.ID, Created: time.Now().Add(-time.Minute)}
	second := &models.Comment{Text: "Still great", ItemID: item.ID, AuthorID: author.ID, Created: time.Now()}
	require.NoError(t, db.CreateComment(ctx, first))
	require.NoError(t, db.CreateComment(ctx, second))

	comments, err := db.GetCommentsByItems(ctx, []int64{item.ID, other.ID})
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, first.ID, comments[0].ID)
	assert.Equal(t, "Author", comments[0].AuthorName)
	assert.Equal(t, item.ID, comments[1].ItemID)

	comments, err = db.GetCommentsByItems(ctx, []int64{other.ID})
	require.NoError(t, err)
	assert.Empty(t, comments)
}
