package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rorticus/crohns-tracker-sub000/internal/domain"
	"github.com/rorticus/crohns-tracker-sub000/internal/storage"
	"github.com/rorticus/crohns-tracker-sub000/internal/validation"
)

// EntryService owns the bowel movement and note entry records. It performs
// no tag bookkeeping: tags attach to dates, never to entries.
type EntryService struct {
	store storage.Storage
}

// NewEntryService creates a new EntryService.
func NewEntryService(store storage.Storage) *EntryService {
	return &EntryService{store: store}
}

// entryTimestamp combines the entry's date and wall clock time into the
// sortable instant used for newest-first ordering.
func entryTimestamp(date, timeOfDay string) time.Time {
	ts, err := time.ParseInLocation("2006-01-02 15:04", date+" "+timeOfDay, time.Local)
	if err != nil {
		return time.Now()
	}
	return ts
}

// CreateEntry validates and stores a new entry.
func (s *EntryService) CreateEntry(ctx context.Context, req domain.CreateEntryRequest) (*domain.Entry, error) {
	if errs := validation.ValidateEntry(req.Type, req.Date, req.Time, req.BowelMovement, req.Note); errs.HasErrors() {
		return nil, errs
	}

	entry := &domain.Entry{
		ID:        uuid.New().String(),
		Type:      req.Type,
		Date:      req.Date,
		Time:      req.Time,
		Timestamp: entryTimestamp(req.Date, req.Time),
	}
	switch req.Type {
	case domain.EntryTypeBowelMovement:
		entry.BowelMovement = req.BowelMovement
	case domain.EntryTypeNote:
		entry.Note = req.Note
	}

	if err := s.store.CreateEntry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// GetEntry returns the entry with the given id.
func (s *EntryService) GetEntry(ctx context.Context, id string) (*domain.Entry, error) {
	return s.store.GetEntry(ctx, id)
}

// UpdateEntry rewrites an entry's date, time, and detail record. The entry
// type is fixed at creation.
func (s *EntryService) UpdateEntry(ctx context.Context, id string, req domain.UpdateEntryRequest) (*domain.Entry, error) {
	entry, err := s.store.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	if errs := validation.ValidateEntry(entry.Type, req.Date, req.Time, req.BowelMovement, req.Note); errs.HasErrors() {
		return nil, errs
	}

	entry.Date = req.Date
	entry.Time = req.Time
	entry.Timestamp = entryTimestamp(req.Date, req.Time)
	switch entry.Type {
	case domain.EntryTypeBowelMovement:
		entry.BowelMovement = req.BowelMovement
	case domain.EntryTypeNote:
		entry.Note = req.Note
	}

	if err := s.store.UpdateEntry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// DeleteEntry removes an entry.
func (s *EntryService) DeleteEntry(ctx context.Context, id string) error {
	return s.store.DeleteEntry(ctx, id)
}

// EntriesInDateRange returns the entries of [startDate, endDate], newest
// first.
func (s *EntryService) EntriesInDateRange(ctx context.Context, startDate, endDate string) ([]*domain.Entry, error) {
	if err := validateRange(startDate, endDate); err != nil {
		return nil, err
	}
	return s.store.ListEntriesInDateRange(ctx, startDate, endDate)
}

// EntriesForDate returns the entries recorded on one date, newest first.
func (s *EntryService) EntriesForDate(ctx context.Context, date string) ([]*domain.Entry, error) {
	if err := validation.ValidateDate(date); err != nil {
		var errs validation.ValidationErrors
		errs.Add("date", date, "date must be a valid calendar date in YYYY-MM-DD form")
		return nil, errs
	}
	return s.store.ListEntriesForDate(ctx, date)
}
