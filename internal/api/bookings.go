package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"shareit/internal/export"
	"shareit/internal/models"
)

func (h *handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromHeader(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var in models.NewBooking
	if err := decodeBody(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	booking, err := h.svc.Bookings.Create(r.Context(), userID, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, r, http.StatusOK, booking)
}

func (h *handlers) getBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromHeader(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	bookingID, err := PathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	booking, err := h.svc.Bookings.GetByID(r.Context(), userID, bookingID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, r, http.StatusOK, booking)
}

func (h *handlers) approveBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromHeader(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	bookingID, err := PathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	approved, err := ParseApproved(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	booking, err := h.svc.Bookings.Approve(r.Context(), userID, bookingID, approved)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, r, http.StatusOK, booking)
}

func (h *handlers) listBookerBookings(w http.ResponseWriter, r *http.Request) {
	h.listBookings(w, r, h.svc.Bookings.ListForBooker)
}

func (h *handlers) listOwnerBookings(w http.ResponseWriter, r *http.Request) {
	h.listBookings(w, r, h.svc.Bookings.ListForOwner)
}

type bookingLister func(ctx context.Context, userID int64, state models.BookingState, page models.Page) ([]*models.Booking, error)

func (h *handlers) listBookings(w http.ResponseWriter, r *http.Request, list bookingLister) {
	userID, err := UserIDFromHeader(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	state, err := ParseState(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page, err := ParsePage(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	bookings, err := list(r.Context(), userID, state, page)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, r, http.StatusOK, bookings)
}

func (h *handlers) exportOwnerBookings(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromHeader(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	state, err := ParseState(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	raw, err := h.svc.Bookings.ExportForOwner(r.Context(), userID, state)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	name := fmt.Sprintf("bookings_%d_%s.xlsx", userID, time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(raw)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}
