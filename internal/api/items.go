package api

import (
	"net/http"

	"shareit/internal/models"
)

func (h *handlers) createItem(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromHeader(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var in models.NewItem
	if err := decodeBody(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	item, err := h.svc.Items.Create(r.Context(), userID, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, r, http.StatusOK, item)
}

func (h *handlers) updateItem(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromHeader(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	itemID, err := PathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var patch models.ItemPatch
	if err := decodeBody(r, &patch); err != nil {
		h.fail(w, r, err)
		return
	}
	item, err := h.svc.Items.Update(r.Context(), userID, itemID, patch)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, r, http.StatusOK, item)
}

func (h *handlers) getItem(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromHeader(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	itemID, err := PathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	item, err := h.svc.Items.GetByID(r.Context(), userID, itemID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, r, http.StatusOK, item)
}

func (h *handlers) listItems(w http.ResponseWriter, r *http.Request) {
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
	items, err := h.svc.Items.ListByOwner(r.Context(), userID, page)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, r, http.StatusOK, items)
}

func (h *handlers) searchItems(w http.ResponseWriter, r *http.Request) {
	if _, err := UserIDFromHeader(r); err != nil {
		h.fail(w, r, err)
		return
	}
	page, err := ParsePage(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	items, err := h.svc.Items.Search(r.Context(), r.URL.Query().Get("text"), page)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, r, http.StatusOK, items)
}

func (h *handlers) addComment(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromHeader(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	itemID, err := PathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var in models.NewComment
	if err := decodeBody(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	comment, err := h.svc.Items.Comment(r.Context(), userID, itemID, in.Text)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, r, http.StatusOK, comment)
}
