package handler

import (
	"net/http"
	"strings"

	"github.com/rorticus/crohns-tracker-sub000/internal/domain"
	"github.com/rorticus/crohns-tracker-sub000/internal/service"
)

// ExportHandler serves the export document consumed by the file-writing and
// share layers.
type ExportHandler struct {
	export *service.ExportService
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(export *service.ExportService) *ExportHandler {
	return &ExportHandler{export: export}
}

// Get builds the export document for the start/end query parameters.
// Optional tags (comma-separated) and matchMode parameters restrict the
// entries to qualifying dates.
func (h *ExportHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var filter *domain.TagFilter
	if tags := q.Get("tags"); tags != "" {
		mode := domain.MatchMode(q.Get("matchMode"))
		if mode == "" {
			mode = domain.MatchAny
		}
		filter = &domain.TagFilter{
			Tags:      strings.Split(tags, ","),
			MatchMode: mode,
		}
	}

	doc, err := h.export.Export(r.Context(), filter, q.Get("start"), q.Get("end"))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}
