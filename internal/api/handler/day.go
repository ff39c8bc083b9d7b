package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rorticus/crohns-tracker-sub000/internal/domain"
	"github.com/rorticus/crohns-tracker-sub000/internal/service"
)

// DayHandler handles the tag-to-date association endpoints.
type DayHandler struct {
	tags     *service.TagService
	calendar *service.CalendarService
}

// NewDayHandler creates a new DayHandler.
func NewDayHandler(tags *service.TagService, calendar *service.CalendarService) *DayHandler {
	return &DayHandler{tags: tags, calendar: calendar}
}

// ListTags lists the tags attached to a date.
func (h *DayHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if date == "" {
		respondError(w, http.StatusBadRequest, "date is required")
		return
	}

	tags, err := h.tags.TagsForDate(r.Context(), date)
	if err != nil {
		handleError(w, err)
		return
	}
	if tags == nil {
		tags = []*domain.Tag{}
	}
	respondJSON(w, http.StatusOK, tags)
}

// AddTag attaches a tag to a date.
func (h *DayHandler) AddTag(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if date == "" {
		respondError(w, http.StatusBadRequest, "date is required")
		return
	}

	var req domain.AddTagToDayRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TagID == "" {
		respondError(w, http.StatusBadRequest, "tagId is required")
		return
	}

	assoc, err := h.tags.AddTagToDay(r.Context(), req.TagID, date)
	if err != nil {
		handleError(w, err)
		return
	}

	h.calendar.Invalidate()
	respondJSON(w, http.StatusCreated, assoc)
}

// RemoveTag detaches a tag from a date. Removing an association that does
// not exist succeeds, so the UI can reconcile without special-casing.
func (h *DayHandler) RemoveTag(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	tagID := chi.URLParam(r, "tag_id")
	if date == "" || tagID == "" {
		respondError(w, http.StatusBadRequest, "date and tag_id are required")
		return
	}

	removed, err := h.tags.RemoveTagFromDay(r.Context(), tagID, date)
	if err != nil {
		handleError(w, err)
		return
	}

	if removed {
		h.calendar.Invalidate()
	}
	w.WriteHeader(http.StatusNoContent)
}
