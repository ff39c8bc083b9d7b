package service

import (
	"context"
	"fmt"

	"github.com/rorticus/crohns-tracker-sub000/internal/domain"
	"github.com/rorticus/crohns-tracker-sub000/internal/storage"
	"github.com/rorticus/crohns-tracker-sub000/internal/validation"
)

// FilterService resolves multi-tag AND/OR filters into qualifying dates and
// joins them against the entry collection at query time. Entries never store
// tag references; the day tag set is attached here, on read.
type FilterService struct {
	store storage.Storage
}

// NewFilterService creates a new FilterService.
func NewFilterService(store storage.Storage) *FilterService {
	return &FilterService{store: store}
}

// validateRange checks both bounds of a date range.
func validateRange(startDate, endDate string) error {
	var errs validation.ValidationErrors
	if err := validation.ValidateDate(startDate); err != nil {
		errs.Add("startDate", startDate, "start date must be a valid calendar date in YYYY-MM-DD form")
	}
	if err := validation.ValidateDate(endDate); err != nil {
		errs.Add("endDate", endDate, "end date must be a valid calendar date in YYYY-MM-DD form")
	}
	if errs.HasErrors() {
		return errs
	}
	return nil
}

// ResolveDatesForFilter resolves the filter's tag names (deduplicated by
// normalized key) and returns the dates in [startDate, endDate] that
// qualify: any = at least one tag, all = every tag. Filtering by an unknown
// tag is an error, not an empty result, so typos surface immediately.
func (s *FilterService) ResolveDatesForFilter(ctx context.Context, filter domain.TagFilter, startDate, endDate string) ([]string, error) {
	if !filter.MatchMode.Valid() {
		return nil, fmt.Errorf("match mode %q: %w", filter.MatchMode, domain.ErrInvalidInput)
	}
	if len(filter.Tags) == 0 {
		return nil, fmt.Errorf("filter requires at least one tag: %w", domain.ErrInvalidInput)
	}
	if err := validateRange(startDate, endDate); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(filter.Tags))
	tagIDs := make([]string, 0, len(filter.Tags))
	for _, name := range filter.Tags {
		key := validation.Normalize(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		tag, err := s.store.GetTagByName(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("tag %q: %w", name, err)
		}
		tagIDs = append(tagIDs, tag.ID)
	}

	if filter.MatchMode == domain.MatchAll {
		return s.store.ListDatesMatchingAll(ctx, tagIDs, startDate, endDate)
	}
	return s.store.ListDatesMatchingAny(ctx, tagIDs, startDate, endDate)
}

// EntriesByTags returns the entries of [startDate, endDate] whose date
// qualifies under the filter, newest first, each annotated with the full day
// tag set of its date.
func (s *FilterService) EntriesByTags(ctx context.Context, filter domain.TagFilter, startDate, endDate string) ([]*domain.TaggedEntry, error) {
	dates, err := s.ResolveDatesForFilter(ctx, filter, startDate, endDate)
	if err != nil {
		return nil, err
	}
	qualifying := make(map[string]bool, len(dates))
	for _, date := range dates {
		qualifying[date] = true
	}

	entries, err := s.store.ListEntriesInDateRange(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}

	matched := entries[:0]
	for _, entry := range entries {
		if qualifying[entry.Date] {
			matched = append(matched, entry)
		}
	}
	return s.annotateEntries(ctx, matched)
}

// EntriesByTag is the single-tag case of EntriesByTags.
func (s *FilterService) EntriesByTag(ctx context.Context, tagName, startDate, endDate string) ([]*domain.TaggedEntry, error) {
	filter := domain.TagFilter{Tags: []string{tagName}, MatchMode: domain.MatchAny}
	return s.EntriesByTags(ctx, filter, startDate, endDate)
}

// annotateEntries attaches the day tag set to each entry, looked up once per
// distinct date rather than once per entry.
func (s *FilterService) annotateEntries(ctx context.Context, entries []*domain.Entry) ([]*domain.TaggedEntry, error) {
	tagsByDate := make(map[string][]*domain.Tag)
	result := make([]*domain.TaggedEntry, 0, len(entries))
	for _, entry := range entries {
		tags, ok := tagsByDate[entry.Date]
		if !ok {
			var err error
			tags, err = s.store.ListTagsForDate(ctx, entry.Date)
			if err != nil {
				return nil, err
			}
			tagsByDate[entry.Date] = tags
		}
		result = append(result, &domain.TaggedEntry{Entry: *entry, Tags: tags})
	}
	return result, nil
}
