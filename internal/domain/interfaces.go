package domain

import (
	"context"
	"time"

	"shareit/internal/models"
)

// Repository is the storage boundary of the services. Lookups of missing rows
// return database.ErrNotFound.
type Repository interface {
	UserRepository
	ItemRepository
	RequestRepository
	BookingRepository
	CommentRepository

	// WithinTx runs fn against a repository bound to a single transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(repo Repository) error) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error
}

type ItemRepository interface {
	CreateItem(ctx context.Context, item *models.Item) error
	UpdateItem(ctx context.Context, item *models.Item) error
	GetItemByID(ctx context.Context, id int64) (*models.Item, error)
	GetItemsByOwner(ctx context.Context, ownerID int64, page models.Page) ([]*models.Item, error)
	SearchAvailableItems(ctx context.Context, text string, page models.Page) ([]*models.Item, error)
	GetItemsByRequestIDs(ctx context.Context, requestIDs []int64) ([]*models.Item, error)
}

type RequestRepository interface {
	CreateRequest(ctx context.Context, req *models.ItemRequest) error
	GetRequestByID(ctx context.Context, id int64) (*models.ItemRequest, error)
	GetRequestsByRequestor(ctx context.Context, requestorID int64) ([]*models.ItemRequest, error)
	GetRequestsOfOthers(ctx context.Context, userID int64, page models.Page) ([]*models.ItemRequest, error)
}

type BookingRepository interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	UpdateBookingStatusWithVersion(ctx context.Context, id int64, version int64, status models.BookingStatus) error
	ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error)
	GetApprovedBookingsByItems(ctx context.Context, itemIDs []int64) ([]*models.Booking, error)
	GetApprovedBookingsByBooker(ctx context.Context, bookerID, itemID int64) ([]*models.Booking, error)
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentsByItems(ctx context.Context, itemIDs []int64) ([]*models.Comment, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// ResponseCache stores upstream responses for a bounded time. Get returns nil, nil on a miss.
type ResponseCache interface {
	Get(ctx context.Context, key string) (*models.CachedResponse, error)
	Set(ctx context.Context, key string, resp *models.CachedResponse, ttl time.Duration) error
	// DeletePrefix drops every entry whose key starts with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}
