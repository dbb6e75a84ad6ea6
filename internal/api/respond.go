package api

import (
	"net/http"

	"shareit/internal/domain"

	"github.com/go-chi/render"
	"github.com/rs/zerolog"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

func WriteJSON(w http.ResponseWriter, r *http.Request, statusCode int, payload any) {
	render.Status(r, statusCode)
	render.JSON(w, r, payload)
}

func WriteError(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	WriteJSON(w, r, statusCode, ErrorResponse{Error: message})
}

// StatusFor maps a domain error kind to its HTTP status.
func StatusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindBadRequest:
		return http.StatusBadRequest
	case domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeDomainError renders err with the status of its kind; unclassified errors are logged.
func writeDomainError(w http.ResponseWriter, r *http.Request, logger *zerolog.Logger, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
	} else {
		logger.Debug().Err(err).Int("status", status).Msg("request rejected")
	}
	WriteError(w, r, status, err.Error())
}
