package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type ItemService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
	now      clock
}

func NewItemService(repo domain.Repository, eventBus domain.EventPublisher, logger *zerolog.Logger) *ItemService {
	return &ItemService{
		repo:     repo,
		eventBus: eventBus,
		logger:   nopLogger(logger),
		now:      time.Now,
	}
}

// Create stores an item for ownerID. An unknown requestId is dropped silently.
func (s *ItemService) Create(ctx context.Context, ownerID int64, in models.NewItem) (*models.Item, error) {
	item := &models.Item{
		Name:        in.Name,
		Description: in.Description,
		OwnerID:     ownerID,
	}
	if in.Available != nil {
		item.Available = *in.Available
	}

	err := s.repo.WithinTx(ctx, func(repo domain.Repository) error {
		if _, err := repo.GetUserByID(ctx, ownerID); err != nil {
			return notFound(err, "User with id %d not found", ownerID)
		}

		if in.RequestID != nil {
			_, err := repo.GetRequestByID(ctx, *in.RequestID)
			switch {
			case err == nil:
				reqID := *in.RequestID
				item.RequestID = &reqID
			case errors.Is(err, database.ErrNotFound):
				s.logger.Debug().Int64("request_id", *in.RequestID).Msg("item request not found, ignoring")
			default:
				return err
			}
		}

		return repo.CreateItem(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("item_id", item.ID).Int64("owner_id", ownerID).Msg("item created")
	return item, nil
}

func (s *ItemService) Update(ctx context.Context, ownerID, itemID int64, patch models.ItemPatch) (*models.Item, error) {
	var updated *models.Item
	err := s.repo.WithinTx(ctx, func(repo domain.Repository) error {
		item, err := repo.GetItemByID(ctx, itemID)
		if err != nil {
			return notFound(err, "Item with id %d not found", itemID)
		}
		if item.OwnerID != ownerID {
			return domain.NotFound("User with id %d has no edit rights for item %d", ownerID, itemID)
		}

		patch.Apply(item)
		if err := repo.UpdateItem(ctx, item); err != nil {
			return notFound(err, "Item with id %d not found", itemID)
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// GetByID returns the item with comments; the owner also sees last and next bookings.
func (s *ItemService) GetByID(ctx context.Context, userID, itemID int64) (*models.ItemDetails, error) {
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		return nil, notFound(err, "User with id %d not found", userID)
	}
	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, notFound(err, "Item with id %d not found", itemID)
	}

	details, err := s.enrich(ctx, []*models.Item{item}, item.OwnerID == userID)
	if err != nil {
		return nil, err
	}
	return details[0], nil
}

// ListByOwner returns the owner's items ordered by id, each with bookings and comments.
func (s *ItemService) ListByOwner(ctx context.Context, userID int64, page models.Page) ([]*models.ItemDetails, error) {
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		return nil, notFound(err, "User with id %d not found", userID)
	}
	items, err := s.repo.GetItemsByOwner(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, items, true)
}

// Search matches available items by name or description. Blank text matches nothing.
func (s *ItemService) Search(ctx context.Context, text string, page models.Page) ([]*models.Item, error) {
	if strings.TrimSpace(text) == "" {
		return []*models.Item{}, nil
	}
	return s.repo.SearchAvailableItems(ctx, text, page)
}

// Comment adds a comment from a user who has an approved booking on the item that already started.
func (s *ItemService) Comment(ctx context.Context, authorID, itemID int64, text string) (*models.Comment, error) {
	now := s.now().UTC()
	comment := &models.Comment{Text: text, ItemID: itemID, AuthorID: authorID, Created: now}

	err := s.repo.WithinTx(ctx, func(repo domain.Repository) error {
		author, err := repo.GetUserByID(ctx, authorID)
		if err != nil {
			return notFound(err, "User with id %d not found", authorID)
		}
		if _, err := repo.GetItemByID(ctx, itemID); err != nil {
			return notFound(err, "Item with id %d not found", itemID)
		}

		bookings, err := repo.GetApprovedBookingsByBooker(ctx, authorID, itemID)
		if err != nil {
			return err
		}
		if len(bookings) == 0 {
			return domain.BadRequest("User with id %d has no approved bookings for item %d", authorID, itemID)
		}
		used := false
		for _, b := range bookings {
			if !b.Start.After(now) {
				used = true
				break
			}
		}
		if !used {
			return domain.BadRequest("User with id %d has not used item %d yet", authorID, itemID)
		}

		comment.AuthorName = author.Name
		return repo.CreateComment(ctx, comment)
	})
	if err != nil {
		return nil, err
	}

	publish(s.eventBus, s.logger, events.EventCommentAdded, events.CommentEventPayload{
		CommentID: comment.ID,
		ItemID:    itemID,
		AuthorID:  authorID,
		Text:      text,
		Created:   comment.Created,
	})
	return comment, nil
}

func (s *ItemService) enrich(ctx context.Context, items []*models.Item, withBookings bool) ([]*models.ItemDetails, error) {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}

	comments, err := s.repo.GetCommentsByItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	byItem := make(map[int64][]models.Comment, len(items))
	for _, c := range comments {
		byItem[c.ItemID] = append(byItem[c.ItemID], *c)
	}

	bookingsByItem := make(map[int64][]*models.Booking)
	if withBookings {
		bookings, err := s.repo.GetApprovedBookingsByItems(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, b := range bookings {
			bookingsByItem[b.ItemID] = append(bookingsByItem[b.ItemID], b)
		}
	}

	now := s.now()
	out := make([]*models.ItemDetails, 0, len(items))
	for _, item := range items {
		d := &models.ItemDetails{Item: *item, Comments: byItem[item.ID]}
		if d.Comments == nil {
			d.Comments = []models.Comment{}
		}
		if withBookings {
			d.LastBooking, d.NextBooking = lastAndNext(bookingsByItem[item.ID], now)
		}
		out = append(out, d)
	}
	return out, nil
}

// lastAndNext picks, among approved bookings, the latest-ending one that started
// before now and the earliest-starting one that starts after now.
func lastAndNext(bookings []*models.Booking, now time.Time) (last, next *models.BookingRef) {
	var lastB, nextB *models.Booking
	for _, b := range bookings {
		if b.Start.Before(now) && (lastB == nil || b.End.After(lastB.End)) {
			lastB = b
		}
		if b.Start.After(now) && (nextB == nil || b.Start.Before(nextB.Start)) {
			nextB = b
		}
	}
	if lastB != nil {
		last = lastB.Ref()
	}
	if nextB != nil {
		next = nextB.Ref()
	}
	return last, next
}
