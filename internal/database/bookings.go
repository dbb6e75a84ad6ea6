package database

import (
	"context"
	"fmt"
	"time"

	"shareit/internal/models"

	"github.com/doug-martin/goqu/v9"
)

// bookingRow is a booking joined with its item and booker.
type bookingRow struct {
	ID              int64     `db:"id"`
	Start           time.Time `db:"start_date"`
	End             time.Time `db:"end_date"`
	Status          string    `db:"status"`
	Version         int64     `db:"version"`
	ItemID          int64     `db:"item_id"`
	BookerID        int64     `db:"booker_id"`
	ItemName        string    `db:"item_name"`
	ItemDescription string    `db:"item_description"`
	ItemAvailable   bool      `db:"item_available"`
	ItemOwnerID     int64     `db:"item_owner_id"`
	ItemRequestID   *int64    `db:"item_request_id"`
	BookerName      string    `db:"booker_name"`
	BookerEmail     string    `db:"booker_email"`
}

func (r *bookingRow) toModel() *models.Booking {
	return &models.Booking{
		ID:       r.ID,
		Start:    r.Start,
		End:      r.End,
		Status:   models.BookingStatus(r.Status),
		Version:  r.Version,
		ItemID:   r.ItemID,
		BookerID: r.BookerID,
		Item: models.Item{
			ID:          r.ItemID,
			Name:        r.ItemName,
			Description: r.ItemDescription,
			Available:   r.ItemAvailable,
			OwnerID:     r.ItemOwnerID,
			RequestID:   r.ItemRequestID,
		},
		Booker: models.User{
			ID:    r.BookerID,
			Name:  r.BookerName,
			Email: r.BookerEmail,
		},
	}
}

func (db *DB) bookingsQuery() *goqu.SelectDataset {
	return db.dialect.From(goqu.T("bookings").As("b")).
		Join(goqu.T("items").As("i"), goqu.On(col("i.id").Eq(col("b.item_id")))).
		Join(goqu.T("users").As("u"), goqu.On(col("u.id").Eq(col("b.booker_id")))).
		Select(
			col("b.id"),
			col("b.start_date"),
			col("b.end_date"),
			col("b.status"),
			col("b.version"),
			col("b.item_id"),
			col("b.booker_id"),
			col("i.name").As("item_name"),
			col("i.description").As("item_description"),
			col("i.available").As("item_available"),
			col("i.owner_id").As("item_owner_id"),
			col("i.request_id").As("item_request_id"),
			col("u.name").As("booker_name"),
			col("u.email").As("booker_email"),
		)
}

func (db *DB) selectBookings(ctx context.Context, ds *goqu.SelectDataset) ([]*models.Booking, error) {
	var rows []bookingRow
	if err := db.selectDataset(ctx, &rows, ds); err != nil {
		return nil, err
	}
	out := make([]*models.Booking, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toModel())
	}
	return out, nil
}

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	booking.Start = booking.Start.UTC()
	booking.End = booking.End.UTC()
	id, err := db.insertReturningID(ctx,
		`INSERT INTO bookings (start_date, end_date, item_id, booker_id, status, version)
		 VALUES (?, ?, ?, ?, ?, ?) RETURNING id`,
		booking.Start, booking.End, booking.ItemID, booking.BookerID, string(booking.Status), 1)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	booking.ID = id
	booking.Version = 1
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	bookings, err := db.selectBookings(ctx, db.bookingsQuery().Where(col("b.id").Eq(id)))
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if len(bookings) == 0 {
		return nil, ErrNotFound
	}
	return bookings[0], nil
}

// UpdateBookingStatusWithVersion moves a WAITING booking to status when version still matches.
func (db *DB) UpdateBookingStatusWithVersion(ctx context.Context, id int64, version int64, status models.BookingStatus) error {
	err := db.execAffecting(ctx,
		`UPDATE bookings SET status = ?, version = version + 1
		 WHERE id = ? AND version = ? AND status = ?`,
		string(status), id, version, string(models.StatusWaiting))
	if err == ErrNotFound {
		return ErrConcurrentModification
	}
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	return nil
}

// ListBookings returns bookings of a booker (BookerID) or of an owner's items (OwnerID),
// newest start first.
func (db *DB) ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error) {
	ds := db.bookingsQuery()
	if filter.BookerID != 0 {
		ds = ds.Where(col("b.booker_id").Eq(filter.BookerID))
	}
	if filter.OwnerID != 0 {
		ds = ds.Where(col("i.owner_id").Eq(filter.OwnerID))
	}

	now := filter.Now.UTC()
	switch filter.State {
	case models.StateCurrent:
		ds = ds.Where(col("b.start_date").Lte(now), col("b.end_date").Gte(now))
	case models.StatePast:
		ds = ds.Where(col("b.end_date").Lt(now))
	case models.StateFuture:
		ds = ds.Where(col("b.start_date").Gt(now))
	case models.StateWaiting:
		ds = ds.Where(col("b.status").Eq(string(models.StatusWaiting)))
	case models.StateRejected:
		ds = ds.Where(col("b.status").Eq(string(models.StatusRejected)))
	}

	ds = ds.Order(col("b.start_date").Desc(), col("b.id").Desc())
	bookings, err := db.selectBookings(ctx, paginate(ds, filter.Page))
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

func (db *DB) GetApprovedBookingsByItems(ctx context.Context, itemIDs []int64) ([]*models.Booking, error) {
	if len(itemIDs) == 0 {
		return []*models.Booking{}, nil
	}
	ds := db.bookingsQuery().
		Where(
			col("b.item_id").In(itemIDs),
			col("b.status").Eq(string(models.StatusApproved)),
		).
		Order(col("b.start_date").Asc(), col("b.id").Asc())
	bookings, err := db.selectBookings(ctx, ds)
	if err != nil {
		return nil, fmt.Errorf("failed to get approved bookings: %w", err)
	}
	return bookings, nil
}

func (db *DB) GetApprovedBookingsByBooker(ctx context.Context, bookerID, itemID int64) ([]*models.Booking, error) {
	ds := db.bookingsQuery().
		Where(
			col("b.booker_id").Eq(bookerID),
			col("b.item_id").Eq(itemID),
			col("b.status").Eq(string(models.StatusApproved)),
		).
		Order(col("b.start_date").Asc())
	bookings, err := db.selectBookings(ctx, ds)
	if err != nil {
		return nil, fmt.Errorf("failed to get booker bookings: %w", err)
	}
	return bookings, nil
}
