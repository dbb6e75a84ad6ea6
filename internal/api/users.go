package api

import (
	"net/http"

	"shareit/internal/models"
)

type userInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *handlers) createUser(w http.ResponseWriter, r *http.Request) {
	var in userInput
	if err := decodeBody(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	user, err := h.svc.Users.Create(r.Context(), in.Name, in.Email)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, r, http.StatusOK, user)
}

func (h *handlers) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.Users.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, r, http.StatusOK, users)
}

func (h *handlers) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	user, err := h.svc.Users.GetByID(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, r, http.StatusOK, user)
}

func (h *handlers) updateUser(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var patch models.UserPatch
	if err := decodeBody(r, &patch); err != nil {
		h.fail(w, r, err)
		return
	}
	user, err := h.svc.Users.Update(r.Context(), id, patch)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, r, http.StatusOK, user)
}

func (h *handlers) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.svc.Users.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
