package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, name, email string) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: email}
	require.NoError(t, db.CreateUser(context.Background(), user))
	return user
}

func createTestItem(t *testing.T, db *DB, ownerID int64, name string, available bool) *models.Item {
	t.Helper()
	item := &models.Item{Name: name, Description: name + " description", Available: available, OwnerID: ownerID}
	require.NoError(t, db.CreateItem(context.Background(), item))
	return item
}

func createTestBooking(t *testing.T, db *DB, itemID, bookerID int64, start, end time.Time, status models.BookingStatus) *models.Booking {
	t.Helper()
	b := &models.Booking{ItemID: itemID, BookerID: bookerID, Start: start, End: end, Status: status}
	require.NoError(t, db.CreateBooking(context.Background(), b))
	return b
}

func TestWithinTx(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	t.Run("Commit", func(t *testing.T) {
		err := db.WithinTx(ctx, func(repo domain.Repository) error {
			return repo.CreateUser(ctx, &models.User{Name: "Tx", Email: "tx@example.com"})
		})
		require.NoError(t, err)

		users, err := db.GetAllUsers(ctx)
		require.NoError(t, err)
		assert.Len(t, users, 1)
	})

	t.Run("Rollback", func(t *testing.T) {
		boom := errors.New("boom")
		err := db.WithinTx(ctx, func(repo domain.Repository) error {
			if err := repo.CreateUser(ctx, &models.User{Name: "Gone", Email: "gone@example.com"}); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		users, err := db.GetAllUsers(ctx)
		require.NoError(t, err)
		assert.Len(t, users, 1)
	})

	t.Run("Nested", func(t *testing.T) {
		err := db.WithinTx(ctx, func(repo domain.Repository) error {
			return repo.WithinTx(ctx, func(inner domain.Repository) error {
				return inner.CreateUser(ctx, &models.User{Name: "Inner", Email: "inner@example.com"})
			})
		})
		require.NoError(t, err)

		users, err := db.GetAllUsers(ctx)
		require.NoError(t, err)
		assert.Len(t, users, 2)
	})
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\tmp`, escapeLike(`c:\tmp`))
}
