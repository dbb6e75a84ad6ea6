package service

import (
	"context"
	"errors"
	"time"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/export"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type BookingService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
	now      clock
}

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		repo:     repo,
		eventBus: eventBus,
		logger:   nopLogger(logger),
		now:      time.Now,
	}
}

func (s *BookingService) Create(ctx context.Context, bookerID int64, in models.NewBooking) (*models.Booking, error) {
	if !in.Start.Before(in.End) {
		return nil, domain.BadRequest("Booking start must be before end")
	}
	if !in.End.After(s.now()) {
		return nil, domain.BadRequest("Booking end must be in the future")
	}

	var created *models.Booking
	err := s.repo.WithinTx(ctx, func(repo domain.Repository) error {
		if _, err := repo.GetUserByID(ctx, bookerID); err != nil {
			return notFound(err, "User with id %d not found", bookerID)
		}
		item, err := repo.GetItemByID(ctx, in.ItemID)
		if err != nil {
			return notFound(err, "Item with id %d not found", in.ItemID)
		}
		if item.OwnerID == bookerID {
			return domain.NotFound("Owner cannot book own item")
		}
		if !item.Available {
			return domain.BadRequest("Item with id %d is not available for booking", item.ID)
		}

		booking := &models.Booking{
			Start:    in.Start,
			End:      in.End,
			Status:   models.StatusWaiting,
			ItemID:   item.ID,
			BookerID: bookerID,
		}
		if err := repo.CreateBooking(ctx, booking); err != nil {
			return err
		}
		created, err = repo.GetBooking(ctx, booking.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("booking_id", created.ID).
		Int64("item_id", created.ItemID).
		Int64("booker_id", bookerID).
		Msg("booking created")
	s.publishEvent(events.EventBookingCreated, created, 0)
	return created, nil
}

// GetByID is visible to the booker and to the item owner only.
func (s *BookingService) GetByID(ctx context.Context, userID, bookingID int64) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, notFound(err, "Booking with id %d not found", bookingID)
	}
	if booking.BookerID != userID && booking.Item.OwnerID != userID {
		return nil, domain.NotFound("Booking with id %d not found for user with id %d", bookingID, userID)
	}
	return booking, nil
}

// Approve moves a WAITING booking to APPROVED or REJECTED on behalf of the item owner.
func (s *BookingService) Approve(ctx context.Context, ownerID, bookingID int64, approved bool) (*models.Booking, error) {
	status := models.StatusRejected
	if approved {
		status = models.StatusApproved
	}

	var updated *models.Booking
	err := s.repo.WithinTx(ctx, func(repo domain.Repository) error {
		if _, err := repo.GetUserByID(ctx, ownerID); err != nil {
			return notFound(err, "User with id %d not found", ownerID)
		}
		booking, err := repo.GetBooking(ctx, bookingID)
		if err != nil {
			return notFound(err, "Booking with id %d not found", bookingID)
		}
		if booking.Item.OwnerID != ownerID {
			return domain.NotFound("User with id %d cannot change booking %d", ownerID, bookingID)
		}
		if booking.Status != models.StatusWaiting {
			return alreadyDecided(booking)
		}

		err = repo.UpdateBookingStatusWithVersion(ctx, bookingID, booking.Version, status)
		if errors.Is(err, database.ErrConcurrentModification) {
			current, getErr := repo.GetBooking(ctx, bookingID)
			if getErr != nil {
				return getErr
			}
			return alreadyDecided(current)
		}
		if err != nil {
			return err
		}

		updated, err = repo.GetBooking(ctx, bookingID)
		return err
	})
	if err != nil {
		return nil, err
	}

	eventType := events.EventBookingRejected
	if approved {
		eventType = events.EventBookingApproved
	}
	s.logger.Info().Int64("booking_id", bookingID).Str("status", string(status)).Msg("booking decided")
	s.publishEvent(eventType, updated, ownerID)
	return updated, nil
}

func (s *BookingService) ListForBooker(ctx context.Context, bookerID int64, state models.BookingState, page models.Page) ([]*models.Booking, error) {
	if _, err := s.repo.GetUserByID(ctx, bookerID); err != nil {
		return nil, notFound(err, "User with id %d not found", bookerID)
	}
	return s.repo.ListBookings(ctx, models.BookingFilter{BookerID: bookerID, State: state, Now: s.now(), Page: page})
}

// ListForOwner lists bookings across every item owned by ownerID.
func (s *BookingService) ListForOwner(ctx context.Context, ownerID int64, state models.BookingState, page models.Page) ([]*models.Booking, error) {
	if _, err := s.repo.GetUserByID(ctx, ownerID); err != nil {
		return nil, notFound(err, "User with id %d not found", ownerID)
	}
	return s.repo.ListBookings(ctx, models.BookingFilter{OwnerID: ownerID, State: state, Now: s.now(), Page: page})
}

// ExportForOwner renders all of the owner's bookings in state as an XLSX workbook.
func (s *BookingService) ExportForOwner(ctx context.Context, ownerID int64, state models.BookingState) ([]byte, error) {
	bookings, err := s.ListForOwner(ctx, ownerID, state, models.AllRows)
	if err != nil {
		return nil, err
	}
	return export.OwnerBookings(bookings, s.now())
}

func alreadyDecided(b *models.Booking) error {
	switch b.Status {
	case models.StatusApproved:
		return domain.BadRequest("Booking with id %d is already approved", b.ID)
	case models.StatusRejected:
		return domain.BadRequest("Booking with id %d is already rejected", b.ID)
	default:
		return domain.BadRequest("Booking with id %d cannot be changed in status %s", b.ID, b.Status)
	}
}

func (s *BookingService) publishEvent(eventType string, b *models.Booking, changedBy int64) {
	publish(s.eventBus, s.logger, eventType, events.BookingEventPayload{
		BookingID: b.ID,
		ItemID:    b.ItemID,
		ItemName:  b.Item.Name,
		OwnerID:   b.Item.OwnerID,
		BookerID:  b.BookerID,
		Status:    string(b.Status),
		Start:     b.Start,
		End:       b.End,
		ChangedBy: changedBy,
	})
}
