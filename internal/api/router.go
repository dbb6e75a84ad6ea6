package api

import (
	"context"
	"net/http"

	"shareit/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type UserDirectory interface {
	Create(ctx context.Context, name, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}

type ItemCatalog interface {
	Create(ctx context.Context, ownerID int64, in models.NewItem) (*models.Item, error)
	Update(ctx context.Context, ownerID, itemID int64, patch models.ItemPatch) (*models.Item, error)
	GetByID(ctx context.Context, userID, itemID int64) (*models.ItemDetails, error)
	ListByOwner(ctx context.Context, userID int64, page models.Page) ([]*models.ItemDetails, error)
	Search(ctx context.Context, text string, page models.Page) ([]*models.Item, error)
	Comment(ctx context.Context, authorID, itemID int64, text string) (*models.Comment, error)
}

type RequestBoard interface {
	Create(ctx context.Context, userID int64, description string) (*models.ItemRequest, error)
	ListOwn(ctx context.Context, userID int64) ([]*models.ItemRequest, error)
	ListOthers(ctx context.Context, userID int64, page models.Page) ([]*models.ItemRequest, error)
	GetByID(ctx context.Context, userID, requestID int64) (*models.ItemRequest, error)
}

type BookingLifecycle interface {
	Create(ctx context.Context, bookerID int64, in models.NewBooking) (*models.Booking, error)
	GetByID(ctx context.Context, userID, bookingID int64) (*models.Booking, error)
	Approve(ctx context.Context, ownerID, bookingID int64, approved bool) (*models.Booking, error)
	ListForBooker(ctx context.Context, bookerID int64, state models.BookingState, page models.Page) ([]*models.Booking, error)
	ListForOwner(ctx context.Context, ownerID int64, state models.BookingState, page models.Page) ([]*models.Booking, error)
	ExportForOwner(ctx context.Context, ownerID int64, state models.BookingState) ([]byte, error)
}

// Services groups the use cases served over HTTP.
type Services struct {
	Users    UserDirectory
	Items    ItemCatalog
	Requests RequestBoard
	Bookings BookingLifecycle
	// Ready reports whether dependencies (the database) are reachable.
	Ready func(ctx context.Context) error
}

type handlers struct {
	svc    Services
	logger *zerolog.Logger
}

// NewRouter builds the REST router of the ShareIt server.
func NewRouter(svc Services, logger *zerolog.Logger) http.Handler {
	h := &handlers{svc: svc, logger: logger}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logging(logger, "server"))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.healthz)
	r.Get("/readyz", h.readyz)

	r.Route("/users", func(r chi.Router) {
		r.Post("/", h.createUser)
		r.Get("/", h.listUsers)
		r.Get("/{id}", h.getUser)
		r.Patch("/{id}", h.updateUser)
		r.Delete("/{id}", h.deleteUser)
	})

	r.Route("/items", func(r chi.Router) {
		r.Post("/", h.createItem)
		r.Get("/", h.listItems)
		r.Get("/search", h.searchItems)
		r.Get("/{id}", h.getItem)
		r.Patch("/{id}", h.updateItem)
		r.Post("/{id}/comment", h.addComment)
	})

	r.Route("/bookings", func(r chi.Router) {
		r.Post("/", h.createBooking)
		r.Get("/", h.listBookerBookings)
		r.Get("/owner", h.listOwnerBookings)
		r.Get("/owner/export", h.exportOwnerBookings)
		r.Get("/{id}", h.getBooking)
		r.Patch("/{id}", h.approveBooking)
	})

	r.Route("/requests", func(r chi.Router) {
		r.Post("/", h.createRequest)
		r.Get("/", h.listOwnRequests)
		r.Get("/all", h.listOtherRequests)
		r.Get("/{id}", h.getRequest)
	})

	return r
}

func (h *handlers) healthz(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) readyz(w http.ResponseWriter, r *http.Request) {
	if h.svc.Ready != nil {
		if err := h.svc.Ready(r.Context()); err != nil {
			h.logger.Warn().Err(err).Msg("readiness check failed")
			WriteError(w, r, http.StatusServiceUnavailable, err.Error())
			return
		}
	}
	WriteJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeDomainError(w, r, h.logger, err)
}
