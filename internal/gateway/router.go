package gateway

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"shareit/internal/api"
	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/rs/zerolog"
)

// maxRequestBody bounds client bodies read by the gateway.
const maxRequestBody = 1 << 20

// Upstream is the server as seen by the gateway.
type Upstream interface {
	Forward(ctx context.Context, out Outbound) (*models.CachedResponse, error)
	Search(ctx context.Context, out Outbound) (*models.CachedResponse, error)
	Ping(ctx context.Context) error
}

type handlers struct {
	upstream  Upstream
	validator *Validator
	logger    *zerolog.Logger
}

// NewRouter builds the validating edge. Every route mirrors the server's path.
func NewRouter(upstream Upstream, validator *Validator, limits config.GatewayRateLimitConfig, logger *zerolog.Logger) http.Handler {
	h := &handlers{upstream: upstream, validator: validator, logger: logger}

	r := chi.NewRouter()
	r.Use(api.RequestID)
	r.Use(api.Logging(logger, "gateway"))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.healthz)
	r.Get("/readyz", h.readyz)

	r.Group(func(r chi.Router) {
		r.Use(api.NewRateLimiter(limits).Middleware)

		r.Route("/users", func(r chi.Router) {
			r.Post("/", h.createUser)
			r.Get("/", h.forward)
			r.Get("/{id}", h.withPathID(h.forward))
			r.Patch("/{id}", h.withPathID(h.updateUser))
			r.Delete("/{id}", h.withPathID(h.forward))
		})

		r.Route("/items", func(r chi.Router) {
			r.Use(requireUser)
			r.Post("/", h.createItem)
			r.Get("/", h.withPage(h.forward))
			r.Get("/search", h.withPage(h.search))
			r.Get("/{id}", h.withPathID(h.forward))
			r.Patch("/{id}", h.withPathID(h.updateItem))
			r.Post("/{id}/comment", h.withPathID(h.addComment))
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Use(requireUser)
			r.Post("/", h.createBooking)
			r.Get("/", h.withPage(h.withState(h.forward)))
			r.Get("/owner", h.withPage(h.withState(h.forward)))
			r.Get("/owner/export", h.withState(h.forward))
			r.Get("/{id}", h.withPathID(h.forward))
			r.Patch("/{id}", h.withPathID(h.approveBooking))
		})

		r.Route("/requests", func(r chi.Router) {
			r.Use(requireUser)
			r.Post("/", h.createRequest)
			r.Get("/", h.forward)
			r.Get("/all", h.withPage(h.forward))
			r.Get("/{id}", h.withPathID(h.forward))
		})
	})

	return r
}

func (h *handlers) healthz(w http.ResponseWriter, r *http.Request) {
	api.WriteJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) readyz(w http.ResponseWriter, r *http.Request) {
	if err := h.upstream.Ping(r.Context()); err != nil {
		h.logger.Warn().Err(err).Msg("upstream not ready")
		api.WriteError(w, r, http.StatusServiceUnavailable, err.Error())
		return
	}
	api.WriteJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *handlers) createUser(w http.ResponseWriter, r *http.Request) {
	h.validated(w, r, &userCreateRequest{})
}

func (h *handlers) updateUser(w http.ResponseWriter, r *http.Request) {
	h.validated(w, r, &userUpdateRequest{})
}

func (h *handlers) createItem(w http.ResponseWriter, r *http.Request) {
	h.validated(w, r, &itemCreateRequest{})
}

func (h *handlers) updateItem(w http.ResponseWriter, r *http.Request) {
	h.validated(w, r, &itemUpdateRequest{})
}

func (h *handlers) addComment(w http.ResponseWriter, r *http.Request) {
	h.validated(w, r, &commentCreateRequest{})
}

func (h *handlers) createRequest(w http.ResponseWriter, r *http.Request) {
	h.validated(w, r, &requestCreateRequest{})
}

func (h *handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	h.validated(w, r, &bookingCreateRequest{})
}

func (h *handlers) approveBooking(w http.ResponseWriter, r *http.Request) {
	if _, err := api.ParseApproved(r); err != nil {
		h.reject(w, r, err)
		return
	}
	h.forward(w, r)
}

func (h *handlers) forward(w http.ResponseWriter, r *http.Request) {
	h.relay(w, r, nil, h.upstream.Forward)
}

func (h *handlers) search(w http.ResponseWriter, r *http.Request) {
	h.relay(w, r, nil, h.upstream.Search)
}

// validated decodes the body into dst, validates it and forwards the original bytes.
func (h *handlers) validated(w http.ResponseWriter, r *http.Request, dst any) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		h.reject(w, r, domain.BadRequest("Invalid request body: %v", err))
		return
	}
	if err := render.DecodeJSON(bytes.NewReader(body), dst); err != nil {
		h.reject(w, r, domain.BadRequest("Invalid request body: %v", err))
		return
	}
	if err := h.validator.Struct(dst); err != nil {
		h.reject(w, r, err)
		return
	}
	h.relay(w, r, body, h.upstream.Forward)
}

func (h *handlers) relay(w http.ResponseWriter, r *http.Request, body []byte,
	send func(context.Context, Outbound) (*models.CachedResponse, error)) {
	resp, err := send(r.Context(), Outbound{
		Method:    r.Method,
		Path:      r.URL.Path,
		Query:     r.URL.Query(),
		UserID:    r.Header.Get(models.HeaderUserID),
		RequestID: api.RequestIDFromContext(r.Context()),
		Body:      body,
	})
	if err != nil {
		h.logger.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("upstream request failed")
		msg := "upstream unavailable"
		if errors.Is(err, ErrResponseTooLarge) {
			msg = "upstream response too large"
		}
		api.WriteError(w, r, http.StatusBadGateway, msg)
		return
	}

	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(resp.Body)))
	w.WriteHeader(resp.Status)
	_, _ = w.Write(resp.Body)
}

func (h *handlers) reject(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Debug().Err(err).Str("path", r.URL.Path).Msg("request rejected")
	api.WriteError(w, r, api.StatusFor(err), err.Error())
}

func (h *handlers) withPathID(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := api.PathID(r, "id"); err != nil {
			h.reject(w, r, err)
			return
		}
		next(w, r)
	}
}

func (h *handlers) withPage(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := api.ParsePage(r); err != nil {
			h.reject(w, r, err)
			return
		}
		next(w, r)
	}
}

func (h *handlers) withState(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := api.ParseState(r); err != nil {
			h.reject(w, r, err)
			return
		}
		next(w, r)
	}
}

// requireUser rejects calls without a numeric identity header.
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := api.UserIDFromHeader(r); err != nil {
			api.WriteError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}
