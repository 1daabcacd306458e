package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"pocketapps/internal/models"
)

// ListContacts returns all contacts, or those matching ?q= on name or phone.
func (h *Handlers) ListContacts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		contacts []models.Contact
		err      error
	)
	if q := r.URL.Query().Get("q"); q != "" {
		contacts, err = h.contacts.SearchContacts(ctx, q)
	} else {
		contacts, err = h.contacts.ListContacts(ctx)
	}
	if err != nil {
		h.respondServerError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, contacts)
}

// CreateContact adds a contact.
func (h *Handlers) CreateContact(w http.ResponseWriter, r *http.Request) {
	var c models.Contact
	if err := decodeJSON(w, r, &c); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}

	created, err := h.contacts.AddContact(r.Context(), c)
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// GetContact returns one contact.
func (h *Handlers) GetContact(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid contact id")
		return
	}

	c, err := h.contacts.GetContact(r.Context(), id)
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, c)
}

// UpdateContact replaces the fields of a contact.
func (h *Handlers) UpdateContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid contact id")
		return
	}

	var c models.Contact
	if err := decodeJSON(w, r, &c); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}

	found, err := h.contacts.UpdateContact(ctx, id, c)
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}
	if !found {
		respondError(w, http.StatusNotFound, "contact not found")
		return
	}

	updated, err := h.contacts.GetContact(ctx, id)
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// DeleteContact deletes a contact.
func (h *Handlers) DeleteContact(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid contact id")
		return
	}

	found, err := h.contacts.DeleteContact(r.Context(), id)
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}
	if !found {
		respondError(w, http.StatusNotFound, "contact not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parsePosition(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "pos"))
}

// ReplaceContactAt overwrites the contact at a 0-based position in the full list.
func (h *Handlers) ReplaceContactAt(w http.ResponseWriter, r *http.Request) {
	pos, err := parsePosition(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid position")
		return
	}

	var c models.Contact
	if err := decodeJSON(w, r, &c); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}

	found, err := h.contacts.ReplaceContactAt(r.Context(), pos, c)
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}
	if !found {
		respondError(w, http.StatusNotFound, "no contact at that position")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteContactAt deletes the contact at a 0-based position in the full list.
func (h *Handlers) DeleteContactAt(w http.ResponseWriter, r *http.Request) {
	pos, err := parsePosition(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid position")
		return
	}

	found, err := h.contacts.DeleteContactAt(r.Context(), pos)
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}
	if !found {
		respondError(w, http.StatusNotFound, "no contact at that position")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
