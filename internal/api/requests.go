package api

import (
	"net/http"

	"shareit/internal/models"
)

func (h *handlers) createRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromHeader(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var in models.NewItemRequest
	if err := decodeBody(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	req, err := h.svc.Requests.Create(r.Context(), userID, in.Description)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, r, http.StatusOK, req)
}

func (h *handlers) listOwnRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromHeader(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	reqs, err := h.svc.Requests.ListOwn(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, r, http.StatusOK, reqs)
}

func (h *handlers) listOtherRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromHeader(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page, err := ParsePage(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	reqs, err := h.svc.Requests.ListOthers(r.Context(), userID, page)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, r, http.StatusOK, reqs)
}

func (h *handlers) getRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromHeader(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	requestID, err := PathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	req, err := h.svc.Requests.GetByID(r.Context(), userID, requestID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, r, http.StatusOK, req)
}
