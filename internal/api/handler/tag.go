package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rorticus/crohns-tracker-sub000/internal/domain"
	"github.com/rorticus/crohns-tracker-sub000/internal/service"
)

// TagHandler handles tag endpoints.
type TagHandler struct {
	tags     *service.TagService
	reports  *service.ReportService
	calendar *service.CalendarService
}

// NewTagHandler creates a new TagHandler.
func NewTagHandler(tags *service.TagService, reports *service.ReportService, calendar *service.CalendarService) *TagHandler {
	return &TagHandler{tags: tags, reports: reports, calendar: calendar}
}

// Create creates a tag or returns the existing one with the same normalized
// name.
func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateTagRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tag, err := h.tags.CreateOrGetTag(r.Context(), req.Name, req.Description)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, tag)
}

// List lists all tags, most used first.
func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	tags, err := h.tags.ListTags(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tags)
}

// Get gets a tag by id.
func (h *TagHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "id is required")
		return
	}

	tag, err := h.tags.GetTag(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tag)
}

// UpdateDescription overwrites a tag's description. A null body field clears
// it.
func (h *TagHandler) UpdateDescription(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "id is required")
		return
	}

	var req domain.UpdateTagDescriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tag, err := h.tags.UpdateDescription(r.Context(), id, req.Description)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tag)
}

// Delete deletes a tag and all of its date associations.
func (h *TagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.tags.DeleteTag(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	h.calendar.Invalidate()
	w.WriteHeader(http.StatusNoContent)
}

// Dates lists the dates a tag is attached to, optionally bounded by the
// start and end query parameters.
func (h *TagHandler) Dates(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "id is required")
		return
	}

	startDate := r.URL.Query().Get("start")
	endDate := r.URL.Query().Get("end")

	dates, err := h.tags.DatesForTag(r.Context(), id, startDate, endDate)
	if err != nil {
		handleError(w, err)
		return
	}
	if dates == nil {
		dates = []string{}
	}
	respondJSON(w, http.StatusOK, dates)
}

// Statistics reports over the bowel movement entries on a tag's dates.
func (h *TagHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "id is required")
		return
	}

	stats, err := h.reports.StatisticsForTag(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
