package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.NotEqual(t, "abc-123", seen)
}

func TestLoggingRecordsStatus(t *testing.T) {
	logger := zerolog.Nop()
	h := Logging(&logger, "test")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tea", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(config.GatewayRateLimitConfig{RPS: 0.001, Burst: 2})
	h := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	call := func(userID string) int {
		req := httptest.NewRequest(http.MethodGet, "/items", nil)
		if userID != "" {
			req.Header.Set(models.HeaderUserID, userID)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call("1"))
	assert.Equal(t, http.StatusOK, call("1"))
	assert.Equal(t, http.StatusTooManyRequests, call("1"))
	assert.Equal(t, http.StatusOK, call("2"))
	assert.Equal(t, http.StatusOK, call(""))

	unlimited := NewRateLimiter(config.GatewayRateLimitConfig{}).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		unlimited.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusFor(domain.NotFound("x")))
	assert.Equal(t, http.StatusBadRequest, StatusFor(domain.BadRequest("x")))
	assert.Equal(t, http.StatusConflict, StatusFor(domain.Conflict("x")))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(assert.AnError))
}

func TestParsers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?from=5&size=20&state=past&approved=false", nil)
	page, err := ParsePage(req)
	require.NoError(t, err)
	assert.Equal(t, models.Page{From: 5, Size: 20}, page)

	state, err := ParseState(req)
	require.NoError(t, err)
	assert.Equal(t, models.StatePast, state)

	approved, err := ParseApproved(req)
	require.NoError(t, err)
	assert.False(t, approved)

	page, err = ParsePage(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, models.DefaultPage(), page)

	_, err = UserIDFromHeader(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}
