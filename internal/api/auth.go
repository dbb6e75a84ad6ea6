package api

import (
	"net/http"
	"strconv"
	"strings"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// UserIDFromHeader reads the trusted caller id from X-Sharer-User-Id.
func UserIDFromHeader(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.Header.Get(models.HeaderUserID))
	if raw == "" {
		return 0, domain.BadRequest("Header %s is required", models.HeaderUserID)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.BadRequest("Header %s must be a number, got %q", models.HeaderUserID, raw)
	}
	return id, nil
}

// PathID parses the named chi URL parameter as an id.
func PathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.BadRequest("Invalid %s: %q", name, raw)
	}
	return id, nil
}

// ParsePage reads from/size with defaults and bounds.
func ParsePage(r *http.Request) (models.Page, error) {
	page := models.DefaultPage()
	q := r.URL.Query()

	if raw := strings.TrimSpace(q.Get("from")); raw != "" {
		from, err := strconv.Atoi(raw)
		if err != nil || from < 0 {
			return page, domain.BadRequest("Parameter from must be a non-negative integer")
		}
		page.From = from
	}
	if raw := strings.TrimSpace(q.Get("size")); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 || size > models.MaxPageSize {
			return page, domain.BadRequest("Parameter size must be between 1 and %d", models.MaxPageSize)
		}
		page.Size = size
	}
	return page, nil
}

func ParseState(r *http.Request) (models.BookingState, error) {
	raw := r.URL.Query().Get("state")
	state, ok := models.ParseBookingState(raw)
	if !ok {
		return "", domain.BadRequest("Unknown state: %s", raw)
	}
	return state, nil
}

func ParseApproved(r *http.Request) (bool, error) {
	raw := r.URL.Query().Get("approved")
	approved, err := strconv.ParseBool(raw)
	if err != nil {
		return false, domain.BadRequest("Parameter approved must be true or false, got %q", raw)
	}
	return approved, nil
}

func decodeBody(r *http.Request, v any) error {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		return domain.BadRequest("Invalid request body: %v", err)
	}
	return nil
}
