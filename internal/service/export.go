package service

import (
	"context"
	"time"

	"github.com/rorticus/crohns-tracker-sub000/internal/domain"
	"github.com/rorticus/crohns-tracker-sub000/internal/storage"
)

// ExportService assembles the document handed to the export/share layer:
// every tag plus the entries of a date range, each annotated with its
// inherited day tags. With a filter, only entries on qualifying dates are
// included.
type ExportService struct {
	store  storage.Storage
	filter *FilterService
}

// NewExportService creates a new ExportService.
func NewExportService(store storage.Storage, filter *FilterService) *ExportService {
	return &ExportService{store: store, filter: filter}
}

// Export builds the export document for [startDate, endDate]. A nil or
// empty filter exports every entry in range.
func (s *ExportService) Export(ctx context.Context, filter *domain.TagFilter, startDate, endDate string) (*domain.ExportDocument, error) {
	if err := validateRange(startDate, endDate); err != nil {
		return nil, err
	}

	tags, err := s.store.ListTags(ctx)
	if err != nil {
		return nil, err
	}

	var entries []*domain.TaggedEntry
	if filter != nil && len(filter.Tags) > 0 {
		entries, err = s.filter.EntriesByTags(ctx, *filter, startDate, endDate)
	} else {
		var all []*domain.Entry
		all, err = s.store.ListEntriesInDateRange(ctx, startDate, endDate)
		if err == nil {
			entries, err = s.filter.annotateEntries(ctx, all)
		}
	}
	if err != nil {
		return nil, err
	}

	return &domain.ExportDocument{
		GeneratedAt: time.Now(),
		StartDate:   startDate,
		EndDate:     endDate,
		Tags:        tags,
		Entries:     entries,
	}, nil
}
