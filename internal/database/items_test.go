package database

import (
	"context"
	"testing"

	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemCRUD(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "Owner", "owner@example.com")
	other := createTestUser(t, db, "Other", "other@example.com")

	drill := createTestItem(t, db, owner.ID, "Drill", true)
	saw := createTestItem(t, db, owner.ID, "Saw", false)
	createTestItem(t, db, other.ID, "Ladder", true)

	t.Run("GetByID", func(t *testing.T) {
		got, err := db.GetItemByID(ctx, drill.ID)
		require.NoError(t, err)
		assert.Equal(t, "Drill", got.Name)
		assert.True(t, got.Available)
		assert.Nil(t, got.RequestID)

		_, err = db.GetItemByID(ctx, 9999)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Update", func(t *testing.T) {
		saw.Description = "Hand saw"
		saw.Available = true
		require.NoError(t, db.UpdateItem(ctx, saw))

		got, err := db.GetItemByID(ctx, saw.ID)
		require.NoError(t, err)
		assert.Equal(t, "Hand saw", got.Description)
		assert.True(t, got.Available)

		assert.ErrorIs(t, db.UpdateItem(ctx, &models.Item{ID: 9999}), ErrNotFound)
	})

	t.Run("ByOwnerPaged", func(t *testing.T) {
		items, err := db.GetItemsByOwner(ctx, owner.ID, models.Page{From: 0, Size: 10})
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, drill.ID, items[0].ID)
		assert.Equal(t, saw.ID, items[1].ID)

		items, err = db.GetItemsByOwner(ctx, owner.ID, models.Page{From: 1, Size: 1})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, saw.ID, items[0].ID)
	})
}

func TestSearchAvailableItems(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "Owner", "owner@example.com")

	drill := createTestItem(t, db, owner.ID, "Power Drill", true)
	createTestItem(t, db, owner.ID, "Old drill", false)
	screwdriver := &models.Item{Name: "Screwdriver", Description: "Works like a DRILL", Available: true, OwnerID: owner.ID}
	require.NoError(t, db.CreateItem(ctx, screwdriver))
	createTestItem(t, db, owner.ID, "Hammer", true)

	items, err := db.SearchAvailableItems(ctx, "dRiLl", models.DefaultPage())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, drill.ID, items[0].ID)
	assert.Equal(t, screwdriver.ID, items[1].ID)

	items, err = db.SearchAvailableItems(ctx, "%", models.DefaultPage())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSearchAvailableItemsUnicode(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "Owner", "owner@example.com")

	drill := createTestItem(t, db, owner.ID, "Дрель", true)
	saw := &models.Item{Name: "Пила", Description: "Ручная ПИЛА по ДЕРЕВУ", Available: true, OwnerID: owner.ID}
	require.NoError(t, db.CreateItem(ctx, saw))

	tests := []struct {
		text string
		want []int64
	}{
		{text: "Дрель", want: []int64{drill.ID}},
		{text: "дрель", want: []int64{drill.ID}},
		{text: "ДРЕЛЬ", want: []int64{drill.ID}},
		{text: "дре", want: []int64{drill.ID}},
		{text: "по дереву", want: []int64{saw.ID}},
		{text: "молоток", want: []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			items, err := db.SearchAvailableItems(ctx, tt.text, models.DefaultPage())
			require.NoError(t, err)
			ids := make([]int64, 0, len(items))
			for _, it := range items {
				ids = append(ids, it.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestItemsByRequest(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "Owner", "owner@example.com")
	requestor := createTestUser(t, db, "Requestor", "req@example.com")

	req := &models.ItemRequest{Description: "Need a tent", RequestorID: requestor.ID}
	require.NoError(t, db.CreateRequest(ctx, req))

	tent := &models.Item{Name: "Tent", Description: "Two person tent", Available: true, OwnerID: owner.ID, RequestID: &req.ID}
	require.NoError(t, db.CreateItem(ctx, tent))
	createTestItem(t, db, owner.ID, "Lamp", true)

	items, err := db.GetItemsByRequestIDs(ctx, []int64{req.ID})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, tent.ID, items[0].ID)
	require.NotNil(t, items[0].RequestID)
	assert.Equal(t, req.ID, *items[0].RequestID)

	items, err = db.GetItemsByRequestIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, items)
}
