package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/rorticus/crohns-tracker-sub000/internal/api/handler"
	"github.com/rorticus/crohns-tracker-sub000/internal/api/middleware"
	"github.com/rorticus/crohns-tracker-sub000/internal/service"
	"github.com/rorticus/crohns-tracker-sub000/internal/storage"
)

// NewRouter creates a new HTTP router with all routes configured.
func NewRouter(store storage.Storage) http.Handler {
	tags := service.NewTagService(store)
	calendar := service.NewCalendarService(store)
	filter := service.NewFilterService(store)
	reports := service.NewReportService(store)
	entries := service.NewEntryService(store)
	export := service.NewExportService(store, filter)

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logging)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.ContentType)

		// Tags
		tagHandler := handler.NewTagHandler(tags, reports, calendar)
		r.Post("/tags", tagHandler.Create)
		r.Get("/tags", tagHandler.List)
		r.Get("/tags/{id}", tagHandler.Get)
		r.Put("/tags/{id}", tagHandler.UpdateDescription)
		r.Delete("/tags/{id}", tagHandler.Delete)
		r.Get("/tags/{id}/dates", tagHandler.Dates)
		r.Get("/tags/{id}/statistics", tagHandler.Statistics)

		// Day tag associations
		dayHandler := handler.NewDayHandler(tags, calendar)
		r.Get("/days/{date}/tags", dayHandler.ListTags)
		r.Post("/days/{date}/tags", dayHandler.AddTag)
		r.Delete("/days/{date}/tags/{tag_id}", dayHandler.RemoveTag)

		// Calendar month projection
		calendarHandler := handler.NewCalendarHandler(calendar)
		r.Get("/calendar/{year}/{month}", calendarHandler.Month)

		// Entries and tag filter search
		entryHandler := handler.NewEntryHandler(entries, filter)
		r.Post("/entries", entryHandler.Create)
		r.Get("/entries", entryHandler.List)
		r.Post("/entries/search", entryHandler.Search)
		r.Get("/entries/{id}", entryHandler.Get)
		r.Put("/entries/{id}", entryHandler.Update)
		r.Delete("/entries/{id}", entryHandler.Delete)

		// Export
		exportHandler := handler.NewExportHandler(export)
		r.Get("/export", exportHandler.Get)
	})

	return r
}
