package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"shareit/internal/database"
	"shareit/internal/export"
	"shareit/internal/models"
	"shareit/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	t       *testing.T
	handler http.Handler
	ready   error
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	api := &testAPI{t: t}
	svc := Services{
		Users:    service.NewUserService(db, &logger),
		Items:    service.NewItemService(db, nil, &logger),
		Requests: service.NewRequestService(db, &logger),
		Bookings: service.NewBookingService(db, nil, &logger),
		Ready:    func(ctx context.Context) error { return api.ready },
	}
	api.handler = NewRouter(svc, &logger)
	return api
}

func (a *testAPI) do(method, path string, userID int64, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set(models.HeaderUserID, strconv.FormatInt(userID, 10))
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (a *testAPI) createUser(name string) models.User {
	rec := a.do(http.MethodPost, "/users", 0, map[string]string{"name": name, "email": name + "@example.com"})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[models.User](a.t, rec)
}

func (a *testAPI) createItem(ownerID int64, name string, available bool) models.Item {
	rec := a.do(http.MethodPost, "/items", ownerID, map[string]any{"name": name, "description": name + " desc", "available": available})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[models.Item](a.t, rec)
}

func TestHealthEndpoints(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/healthz", 0, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodGet, "/readyz", 0, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	api.ready = errors.New("database is closed")
	rec = api.do(http.MethodGet, "/readyz", 0, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "database is closed", decode[ErrorResponse](t, rec).Error)
}

func TestUserEndpoints(t *testing.T) {
	api := newTestAPI(t)
	anna := api.createUser("anna")

	t.Run("Conflict", func(t *testing.T) {
		rec := api.do(http.MethodPost, "/users", 0, map[string]string{"name": "x", "email": "anna@example.com"})
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, decode[ErrorResponse](t, rec).Error, "anna@example.com")
	})

	t.Run("Patch", func(t *testing.T) {
		rec := api.do(http.MethodPatch, fmt.Sprintf("/users/%d", anna.ID), 0, map[string]string{"name": "Anna"})
		require.Equal(t, http.StatusOK, rec.Code)
		got := decode[models.User](t, rec)
		assert.Equal(t, "Anna", got.Name)
		assert.Equal(t, "anna@example.com", got.Email)
	})

	t.Run("List", func(t *testing.T) {
		rec := api.do(http.MethodGet, "/users", 0, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]models.User](t, rec), 1)
	})

	t.Run("UnknownID", func(t *testing.T) {
		for _, method := range []string{http.MethodGet, http.MethodPatch, http.MethodDelete} {
			rec := api.do(method, "/users/9999", 0, map[string]string{})
			assert.Equal(t, http.StatusNotFound, rec.Code, method)
			assert.Contains(t, decode[ErrorResponse](t, rec).Error, "9999")
		}
	})

	t.Run("BadID", func(t *testing.T) {
		rec := api.do(http.MethodGet, "/users/abc", 0, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("BadBody", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		api.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Delete", func(t *testing.T) {
		rec := api.do(http.MethodDelete, fmt.Sprintf("/users/%d", anna.ID), 0, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		rec = api.do(http.MethodGet, fmt.Sprintf("/users/%d", anna.ID), 0, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestItemEndpoints(t *testing.T) {
	api := newTestAPI(t)
	owner := api.createUser("owner")
	other := api.createUser("other")
	drill := api.createItem(owner.ID, "Drill", true)
	api.createItem(owner.ID, "Old drill", false)

	t.Run("MissingHeader", func(t *testing.T) {
		rec := api.do(http.MethodPost, "/items", 0, map[string]any{"name": "x"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		req := httptest.NewRequest(http.MethodGet, "/items", nil)
		req.Header.Set(models.HeaderUserID, "abc")
		rec = httptest.NewRecorder()
		api.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("UpdateByStranger", func(t *testing.T) {
		rec := api.do(http.MethodPatch, fmt.Sprintf("/items/%d", drill.ID), other.ID, map[string]any{"name": "Mine"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Search", func(t *testing.T) {
		rec := api.do(http.MethodGet, "/items/search?text=DRILL", other.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		items := decode[[]models.Item](t, rec)
		require.Len(t, items, 1)
		assert.Equal(t, drill.ID, items[0].ID)

		rec = api.do(http.MethodGet, "/items/search?text=", other.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "[]\n", rec.Body.String())
	})

	t.Run("ListOwn", func(t *testing.T) {
		rec := api.do(http.MethodGet, "/items?from=0&size=1", owner.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		items := decode[[]models.ItemDetails](t, rec)
		require.Len(t, items, 1)
		assert.Equal(t, drill.ID, items[0].ID)
	})

	t.Run("Pagination", func(t *testing.T) {
		for _, q := range []string{"from=-1", "size=0", "size=201", "size=abc"} {
			rec := api.do(http.MethodGet, "/items?"+q, owner.ID, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code, q)
		}
	})

	t.Run("CommentWithoutBooking", func(t *testing.T) {
		rec := api.do(http.MethodPost, fmt.Sprintf("/items/%d/comment", drill.ID), other.ID, map[string]string{"text": "hi"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestBookingScenario(t *testing.T) {
	api := newTestAPI(t)
	owner := api.createUser("owner")
	booker := api.createUser("booker")
	item := api.createItem(owner.ID, "Drill", true)
	hidden := api.createItem(owner.ID, "Saw", false)

	now := time.Now().UTC()
	body := map[string]any{"itemId": item.ID, "start": now.Add(-time.Minute), "end": now.Add(2 * time.Hour)}

	rec := api.do(http.MethodPost, "/bookings", owner.ID, body)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(http.MethodPost, "/bookings", booker.ID, map[string]any{"itemId": hidden.ID, "start": now.Add(time.Hour), "end": now.Add(2 * time.Hour)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPost, "/bookings", booker.ID, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	booking := decode[models.Booking](t, rec)
	assert.Equal(t, models.StatusWaiting, booking.Status)
	assert.Equal(t, "Drill", booking.Item.Name)
	assert.Equal(t, booker.ID, booking.Booker.ID)

	rec = api.do(http.MethodGet, "/bookings?state=current", booker.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]models.Booking](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, booking.ID, list[0].ID)

	rec = api.do(http.MethodGet, "/bookings?state=UNSUPPORTED_STATUS", booker.ID, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Unknown state: UNSUPPORTED_STATUS", decode[ErrorResponse](t, rec).Error)

	path := fmt.Sprintf("/bookings/%d", booking.ID)
	rec = api.do(http.MethodPatch, path+"?approved=maybe", owner.ID, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPatch, path+"?approved=true", booker.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(http.MethodPatch, path+"?approved=true", owner.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StatusApproved, decode[models.Booking](t, rec).Status)

	rec = api.do(http.MethodPatch, path+"?approved=true", owner.ID, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodGet, path, owner.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodGet, "/bookings/owner?state=ALL&from=0&size=5", owner.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Booking](t, rec), 1)

	rec = api.do(http.MethodGet, "/bookings/owner/export", owner.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.ContentType, rec.Header().Get("Content-Type"))
	assert.NotZero(t, rec.Body.Len())

	rec = api.do(http.MethodPost, fmt.Sprintf("/items/%d/comment", item.ID), booker.ID, map[string]string{"text": "Great"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	comment := decode[models.Comment](t, rec)
	assert.Equal(t, "booker", comment.AuthorName)

	rec = api.do(http.MethodGet, fmt.Sprintf("/items/%d", item.ID), owner.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	details := decode[models.ItemDetails](t, rec)
	require.NotNil(t, details.LastBooking)
	assert.Equal(t, booking.ID, details.LastBooking.ID)
	assert.Len(t, details.Comments, 1)
}

func TestRequestEndpoints(t *testing.T) {
	api := newTestAPI(t)
	anna := api.createUser("anna")
	bob := api.createUser("bob")

	rec := api.do(http.MethodPost, "/requests", anna.ID, map[string]string{"description": "Need a ladder"})
	require.Equal(t, http.StatusOK, rec.Code)
	req := decode[models.ItemRequest](t, rec)
	assert.Empty(t, req.Items)

	rec = api.do(http.MethodPost, "/items", bob.ID, map[string]any{"name": "Ladder", "description": "3m", "available": true, "requestId": req.ID})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodGet, "/requests", anna.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	own := decode[[]models.ItemRequest](t, rec)
	require.Len(t, own, 1)
	assert.Len(t, own[0].Items, 1)

	rec = api.do(http.MethodGet, "/requests/all?from=0&size=10", bob.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.ItemRequest](t, rec), 1)

	rec = api.do(http.MethodGet, fmt.Sprintf("/requests/%d", req.ID), bob.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodGet, "/requests/9999", bob.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
