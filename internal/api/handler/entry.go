package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rorticus/crohns-tracker-sub000/internal/domain"
	"github.com/rorticus/crohns-tracker-sub000/internal/service"
)

// EntryHandler handles entry CRUD and the tag filter search.
type EntryHandler struct {
	entries *service.EntryService
	filter  *service.FilterService
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(entries *service.EntryService, filter *service.FilterService) *EntryHandler {
	return &EntryHandler{entries: entries, filter: filter}
}

// Create logs a new entry.
func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.entries.CreateEntry(r.Context(), req)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, entry)
}

// List returns the entries of a date range (start and end query parameters)
// or of a single date (date query parameter), newest first.
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		entries []*domain.Entry
		err     error
	)
	if date := q.Get("date"); date != "" {
		entries, err = h.entries.EntriesForDate(r.Context(), date)
	} else {
		entries, err = h.entries.EntriesInDateRange(r.Context(), q.Get("start"), q.Get("end"))
	}
	if err != nil {
		handleError(w, err)
		return
	}
	if entries == nil {
		entries = []*domain.Entry{}
	}
	respondJSON(w, http.StatusOK, entries)
}

// Get gets an entry by id.
func (h *EntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "id is required")
		return
	}

	entry, err := h.entries.GetEntry(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

// Update rewrites an entry.
func (h *EntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "id is required")
		return
	}

	var req domain.UpdateEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.entries.UpdateEntry(r.Context(), id, req)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

// Delete deletes an entry.
func (h *EntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.entries.DeleteEntry(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search returns the entries of a date range whose dates qualify under a
// multi-tag AND/OR filter, each annotated with its day tags.
func (h *EntryHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req domain.EntrySearchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	filter := domain.TagFilter{Tags: req.Tags, MatchMode: req.MatchMode}
	entries, err := h.filter.EntriesByTags(r.Context(), filter, req.StartDate, req.EndDate)
	if err != nil {
		handleError(w, err)
		return
	}
	if entries == nil {
		entries = []*domain.TaggedEntry{}
	}
	respondJSON(w, http.StatusOK, entries)
}
