package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rorticus/crohns-tracker-sub000/internal/domain"
	"github.com/rorticus/crohns-tracker-sub000/internal/storage"
)

// CalendarService projects the association table into per-month
// date-to-tag-names views for calendar decoration. Views are cached per
// month; handlers invalidate the cache after each tag or association
// mutation.
type CalendarService struct {
	store storage.Storage

	mu    sync.Mutex
	cache map[string]*domain.MonthView
}

// NewCalendarService creates a new CalendarService.
func NewCalendarService(store storage.Storage) *CalendarService {
	return &CalendarService{
		store: store,
		cache: make(map[string]*domain.MonthView),
	}
}

// MonthView returns every tagged date of the given month mapped to its tag
// display names. Dates without tags are omitted. Cached views are shared;
// callers must not mutate them.
func (s *CalendarService) MonthView(ctx context.Context, year, month int) (*domain.MonthView, error) {
	if month < 1 || month > 12 || year < 1 {
		return nil, domain.ErrInvalidInput
	}

	key := fmt.Sprintf("%04d-%02d", year, month)
	s.mu.Lock()
	if view, ok := s.cache[key]; ok {
		s.mu.Unlock()
		return view, nil
	}
	s.mu.Unlock()

	firstDay := key + "-01"
	// Day zero of the next month is the last day of this one.
	lastDay := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Format("2006-01-02")

	tagged, err := s.store.ListTaggedDates(ctx, firstDay, lastDay)
	if err != nil {
		return nil, err
	}

	view := &domain.MonthView{
		Year:  year,
		Month: month,
		Days:  make(map[string][]string, len(tagged)),
	}
	for _, td := range tagged {
		view.Days[td.Date] = td.TagNames
	}

	s.mu.Lock()
	s.cache[key] = view
	s.mu.Unlock()
	return view, nil
}

// Invalidate drops every cached month view.
func (s *CalendarService) Invalidate() {
	s.mu.Lock()
	s.cache = make(map[string]*domain.MonthView)
	s.mu.Unlock()
}
