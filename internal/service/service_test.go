package service

import (
	"context"
	"strconv"
	"testing"
	"time"

	"shareit/internal/database"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}

type fixture struct {
	db       *database.DB
	bus      *mockPublisher
	users    *UserService
	items    *ItemService
	requests *RequestService
	bookings *BookingService
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	bus := &mockPublisher{}
	bus.On("PublishJSON", mock.Anything, mock.Anything).Return(nil).Maybe()

	f := &fixture{
		db:       db,
		bus:      bus,
		users:    NewUserService(db, &logger),
		items:    NewItemService(db, bus, &logger),
		requests: NewRequestService(db, &logger),
		bookings: NewBookingService(db, bus, &logger),
		now:      time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	f.items.now = clock
	f.requests.now = clock
	f.bookings.now = clock
	return f
}

func (f *fixture) user(t *testing.T, name string) *models.User {
	t.Helper()
	u, err := f.users.Create(context.Background(), name, name+"@example.com")
	require.NoError(t, err)
	return u
}

func (f *fixture) item(t *testing.T, ownerID int64, name string, available bool) *models.Item {
	t.Helper()
	item, err := f.items.Create(context.Background(), ownerID, models.NewItem{
		Name:        name,
		Description: name + " for rent",
		Available:   &available,
	})
	require.NoError(t, err)
	return item
}

// approvedBooking books item for booker at [start, end] and approves it as the owner.
func (f *fixture) approvedBooking(t *testing.T, ownerID, bookerID, itemID int64, start, end time.Time) *models.Booking {
	t.Helper()
	ctx := context.Background()
	saved := f.now
	f.now = start.Add(-time.Hour)
	defer func() { f.now = saved }()

	b, err := f.bookings.Create(ctx, bookerID, models.NewBooking{ItemID: itemID, Start: start, End: end})
	require.NoError(t, err)
	b, err = f.bookings.Approve(ctx, ownerID, b.ID, true)
	require.NoError(t, err)
	return b
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
