// Package service holds the day-tag core: tag identity and the tag-to-date
// association lifecycle, the month projection, the tag filter engine, the
// per-tag reporting aggregator, and the entry and export services built on
// the same store.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rorticus/crohns-tracker-sub000/internal/domain"
	"github.com/rorticus/crohns-tracker-sub000/internal/storage"
	"github.com/rorticus/crohns-tracker-sub000/internal/validation"
)

// TagService owns tags and their date associations. Every mutation that
// touches both an association row and its tag's usage count runs inside one
// storage transaction.
type TagService struct {
	store storage.Storage
}

// NewTagService creates a new TagService.
func NewTagService(store storage.Storage) *TagService {
	return &TagService{store: store}
}

// CreateOrGetTag returns the tag whose normalized name matches displayName,
// creating it when absent. Reuse never changes the stored display name, so
// the first-seen casing wins; a description is backfilled only when the
// existing tag has none and a new one was supplied.
func (s *TagService) CreateOrGetTag(ctx context.Context, displayName string, description *string) (*domain.Tag, error) {
	if errs := validation.ValidateTagName(displayName); errs.HasErrors() {
		return nil, errs
	}
	name := validation.Normalize(displayName)

	existing, err := s.store.GetTagByName(ctx, name)
	if err == nil {
		if description != nil && existing.Description == nil {
			return s.backfillDescription(ctx, name, description)
		}
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	tag := &domain.Tag{
		ID:          uuid.New().String(),
		Name:        name,
		DisplayName: strings.TrimSpace(displayName),
		Description: description,
		UsageCount:  0,
		CreatedAt:   time.Now(),
	}
	if err := s.store.CreateTag(ctx, tag); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Lost a create race; the winner's tag is the canonical one.
			return s.store.GetTagByName(ctx, name)
		}
		return nil, err
	}
	return tag, nil
}

// backfillDescription re-reads the tag and fills its description inside one
// transaction, so a description written concurrently is never overwritten.
func (s *TagService) backfillDescription(ctx context.Context, name string, description *string) (*domain.Tag, error) {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	tag, err := tx.GetTagByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if tag.Description == nil {
		if err := tx.UpdateTagDescription(ctx, tag.ID, description); err != nil {
			return nil, err
		}
		tag.Description = description
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return tag, nil
}

// GetTag returns the tag with the given id.
func (s *TagService) GetTag(ctx context.Context, id string) (*domain.Tag, error) {
	return s.store.GetTag(ctx, id)
}

// GetTagByName returns the tag matching the (normalized) name.
func (s *TagService) GetTagByName(ctx context.Context, name string) (*domain.Tag, error) {
	return s.store.GetTagByName(ctx, validation.Normalize(name))
}

// ListTags returns every tag ordered by usage count descending, then display
// name ascending, so zero-usage tags keep a stable autocomplete order.
func (s *TagService) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	return s.store.ListTags(ctx)
}

// UpdateDescription overwrites the tag's description unconditionally. A nil
// description clears it.
func (s *TagService) UpdateDescription(ctx context.Context, id string, description *string) (*domain.Tag, error) {
	if err := s.store.UpdateTagDescription(ctx, id, description); err != nil {
		return nil, err
	}
	return s.store.GetTag(ctx, id)
}

// DeleteTag removes the tag and every association referencing it.
func (s *TagService) DeleteTag(ctx context.Context, id string) error {
	return s.store.DeleteTag(ctx, id)
}

// AddTagToDay links a tag to a calendar date. The association insert and the
// usage count increment commit as one unit; a failure on either leaves the
// counter untouched.
func (s *TagService) AddTagToDay(ctx context.Context, tagID, date string) (*domain.Association, error) {
	if err := validation.ValidateDate(date); err != nil {
		var errs validation.ValidationErrors
		errs.Add("date", date, "date must be a valid calendar date in YYYY-MM-DD form")
		return nil, errs
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.GetTag(ctx, tagID); err != nil {
		return nil, err
	}

	// A duplicate pair is a conflict even when the day is already full, so
	// this check runs before the capacity gate.
	existing, err := tx.ListDatesForTag(ctx, tagID, date, date)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, domain.ErrConflict
	}

	count, err := tx.CountAssociationsForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if count >= domain.MaxTagsPerDay {
		return nil, domain.ErrCapacityExceeded
	}

	assoc := &domain.Association{
		ID:        uuid.New().String(),
		TagID:     tagID,
		Date:      date,
		CreatedAt: time.Now(),
	}
	if err := tx.CreateAssociation(ctx, assoc); err != nil {
		return nil, err
	}
	if err := tx.IncrementTagUsage(ctx, tagID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return assoc, nil
}

// RemoveTagFromDay unlinks a tag from a date. A missing association is a
// successful no-op here (removed == false): the storage primitive reports
// not-found, and this layer owns the idempotence contract the UI
// reconciliation flow relies on. The delete and the floored usage count
// decrement commit as one unit.
func (s *TagService) RemoveTagFromDay(ctx context.Context, tagID, date string) (removed bool, err error) {
	if err := validation.ValidateDate(date); err != nil {
		var errs validation.ValidationErrors
		errs.Add("date", date, "date must be a valid calendar date in YYYY-MM-DD form")
		return false, errs
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.DeleteAssociation(ctx, tagID, date); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := tx.DecrementTagUsage(ctx, tagID); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

// TagsForDate returns the tags attached to a date, display name ascending.
// Entries recorded on that date inherit this set at read time.
func (s *TagService) TagsForDate(ctx context.Context, date string) ([]*domain.Tag, error) {
	if err := validation.ValidateDate(date); err != nil {
		var errs validation.ValidationErrors
		errs.Add("date", date, "date must be a valid calendar date in YYYY-MM-DD form")
		return nil, errs
	}
	return s.store.ListTagsForDate(ctx, date)
}

// DatesForTag returns the dates the tag is attached to, chronologically,
// inclusively bounded when startDate/endDate are non-empty.
func (s *TagService) DatesForTag(ctx context.Context, tagID, startDate, endDate string) ([]string, error) {
	if _, err := s.store.GetTag(ctx, tagID); err != nil {
		return nil, err
	}
	return s.store.ListDatesForTag(ctx, tagID, startDate, endDate)
}
