package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/rorticus/crohns-tracker-sub000/internal/domain"
	"github.com/rorticus/crohns-tracker-sub000/internal/storage"
)

// Store is an in-memory implementation of the storage interface for testing.
type Store struct {
	mu sync.RWMutex

	tags         map[string]*domain.Tag         // key: id
	tagsByName   map[string]string              // normalized name -> id
	associations map[string]*domain.Association // key: tagID + "|" + date
	entries      map[string]*domain.Entry       // key: id
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		tags:         make(map[string]*domain.Tag),
		tagsByName:   make(map[string]string),
		associations: make(map[string]*domain.Association),
		entries:      make(map[string]*domain.Entry),
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) BeginTx(ctx context.Context) (storage.Transaction, error) {
	return &Tx{store: s}, nil
}

// Tx is a no-op transaction for the in-memory store.
type Tx struct {
	store *Store
}

func (t *Tx) Commit() error   { return nil }
func (t *Tx) Rollback() error { return nil }
func (t *Tx) Close() error    { return nil }
func (t *Tx) BeginTx(ctx context.Context) (storage.Transaction, error) {
	return nil, domain.ErrInvalidInput
}

func assocKey(tagID, date string) string {
	return tagID + "|" + date
}

func copyTag(tag *domain.Tag) *domain.Tag {
	c := *tag
	if tag.Description != nil {
		desc := *tag.Description
		c.Description = &desc
	}
	return &c
}

// ============================================
// Tags
// ============================================

func (s *Store) CreateTag(ctx context.Context, tag *domain.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tagsByName[tag.Name]; exists {
		return domain.ErrConflict
	}
	s.tags[tag.ID] = copyTag(tag)
	s.tagsByName[tag.Name] = tag.ID
	return nil
}

func (s *Store) GetTag(ctx context.Context, id string) (*domain.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tag, ok := s.tags[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyTag(tag), nil
}

func (s *Store) GetTagByName(ctx context.Context, name string) (*domain.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.tagsByName[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyTag(s.tags[id]), nil
}

func (s *Store) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tags := make([]*domain.Tag, 0, len(s.tags))
	for _, tag := range s.tags {
		tags = append(tags, copyTag(tag))
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].UsageCount != tags[j].UsageCount {
			return tags[i].UsageCount > tags[j].UsageCount
		}
		return tags[i].DisplayName < tags[j].DisplayName
	})
	return tags, nil
}

func (s *Store) UpdateTagDescription(ctx context.Context, id string, description *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tag, ok := s.tags[id]
	if !ok {
		return domain.ErrNotFound
	}
	if description != nil {
		desc := *description
		tag.Description = &desc
	} else {
		tag.Description = nil
	}
	return nil
}

func (s *Store) DeleteTag(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tag, ok := s.tags[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(s.tagsByName, tag.Name)
	delete(s.tags, id)
	// Cascade, matching the SQL foreign key.
	for key, assoc := range s.associations {
		if assoc.TagID == id {
			delete(s.associations, key)
		}
	}
	return nil
}

func (s *Store) IncrementTagUsage(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tag, ok := s.tags[id]
	if !ok {
		return domain.ErrNotFound
	}
	tag.UsageCount++
	return nil
}

func (s *Store) DecrementTagUsage(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tag, ok := s.tags[id]
	if !ok {
		return domain.ErrNotFound
	}
	if tag.UsageCount > 0 {
		tag.UsageCount--
	}
	return nil
}

// ============================================
// Associations
// ============================================

func (s *Store) CreateAssociation(ctx context.Context, assoc *domain.Association) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := assocKey(assoc.TagID, assoc.Date)
	if _, exists := s.associations[key]; exists {
		return domain.ErrConflict
	}
	c := *assoc
	s.associations[key] = &c
	return nil
}

func (s *Store) DeleteAssociation(ctx context.Context, tagID, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := assocKey(tagID, date)
	if _, exists := s.associations[key]; !exists {
		return domain.ErrNotFound
	}
	delete(s.associations, key)
	return nil
}

func (s *Store) CountAssociationsForDate(ctx context.Context, date string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, assoc := range s.associations {
		if assoc.Date == date {
			count++
		}
	}
	return count, nil
}

func (s *Store) ListTagsForDate(ctx context.Context, date string) ([]*domain.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var tags []*domain.Tag
	for _, assoc := range s.associations {
		if assoc.Date == date {
			if tag, ok := s.tags[assoc.TagID]; ok {
				tags = append(tags, copyTag(tag))
			}
		}
	}
	sort.Slice(tags, func(i, j int) bool {
		return tags[i].DisplayName < tags[j].DisplayName
	})
	return tags, nil
}

func (s *Store) ListDatesForTag(ctx context.Context, tagID, startDate, endDate string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var dates []string
	for _, assoc := range s.associations {
		if assoc.TagID != tagID {
			continue
		}
		if startDate != "" && assoc.Date < startDate {
			continue
		}
		if endDate != "" && assoc.Date > endDate {
			continue
		}
		dates = append(dates, assoc.Date)
	}
	sort.Strings(dates)
	return dates, nil
}

func (s *Store) ListTaggedDates(ctx context.Context, startDate, endDate string) ([]*domain.TaggedDate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byDate := make(map[string][]string)
	for _, assoc := range s.associations {
		if assoc.Date < startDate || assoc.Date > endDate {
			continue
		}
		if tag, ok := s.tags[assoc.TagID]; ok {
			byDate[assoc.Date] = append(byDate[assoc.Date], tag.DisplayName)
		}
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	result := make([]*domain.TaggedDate, 0, len(dates))
	for _, date := range dates {
		names := byDate[date]
		sort.Strings(names)
		result = append(result, &domain.TaggedDate{Date: date, TagNames: names})
	}
	return result, nil
}

func (s *Store) ListDatesMatchingAny(ctx context.Context, tagIDs []string, startDate, endDate string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]bool, len(tagIDs))
	for _, id := range tagIDs {
		wanted[id] = true
	}

	seen := make(map[string]bool)
	var dates []string
	for _, assoc := range s.associations {
		if !wanted[assoc.TagID] || assoc.Date < startDate || assoc.Date > endDate {
			continue
		}
		if !seen[assoc.Date] {
			seen[assoc.Date] = true
			dates = append(dates, assoc.Date)
		}
	}
	sort.Strings(dates)
	return dates, nil
}

func (s *Store) ListDatesMatchingAll(ctx context.Context, tagIDs []string, startDate, endDate string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]bool, len(tagIDs))
	for _, id := range tagIDs {
		wanted[id] = true
	}

	counts := make(map[string]int)
	for _, assoc := range s.associations {
		if !wanted[assoc.TagID] || assoc.Date < startDate || assoc.Date > endDate {
			continue
		}
		counts[assoc.Date]++
	}

	var dates []string
	for date, count := range counts {
		if count == len(wanted) {
			dates = append(dates, date)
		}
	}
	sort.Strings(dates)
	return dates, nil
}

// ============================================
// Entries
// ============================================

func (s *Store) CreateEntry(ctx context.Context, entry *domain.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[entry.ID]; exists {
		return domain.ErrConflict
	}
	c := *entry
	s.entries[entry.ID] = &c
	return nil
}

func (s *Store) GetEntry(ctx context.Context, id string) (*domain.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *entry
	return &c, nil
}

func (s *Store) UpdateEntry(ctx context.Context, entry *domain.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[entry.ID]; !ok {
		return domain.ErrNotFound
	}
	c := *entry
	s.entries[entry.ID] = &c
	return nil
}

func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.entries, id)
	return nil
}

func (s *Store) ListEntriesInDateRange(ctx context.Context, startDate, endDate string) ([]*domain.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []*domain.Entry
	for _, entry := range s.entries {
		if entry.Date < startDate || entry.Date > endDate {
			continue
		}
		c := *entry
		entries = append(entries, &c)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	return entries, nil
}

func (s *Store) ListEntriesForDate(ctx context.Context, date string) ([]*domain.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []*domain.Entry
	for _, entry := range s.entries {
		if entry.Date != date {
			continue
		}
		c := *entry
		entries = append(entries, &c)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	return entries, nil
}

// ============================================
// Forward all Tx methods to the underlying store
// ============================================

func (t *Tx) CreateTag(ctx context.Context, tag *domain.Tag) error {
	return t.store.CreateTag(ctx, tag)
}
func (t *Tx) GetTag(ctx context.Context, id string) (*domain.Tag, error) {
	return t.store.GetTag(ctx, id)
}
func (t *Tx) GetTagByName(ctx context.Context, name string) (*domain.Tag, error) {
	return t.store.GetTagByName(ctx, name)
}
func (t *Tx) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	return t.store.ListTags(ctx)
}
func (t *Tx) UpdateTagDescription(ctx context.Context, id string, description *string) error {
	return t.store.UpdateTagDescription(ctx, id, description)
}
func (t *Tx) DeleteTag(ctx context.Context, id string) error {
	return t.store.DeleteTag(ctx, id)
}
func (t *Tx) IncrementTagUsage(ctx context.Context, id string) error {
	return t.store.IncrementTagUsage(ctx, id)
}
func (t *Tx) DecrementTagUsage(ctx context.Context, id string) error {
	return t.store.DecrementTagUsage(ctx, id)
}
func (t *Tx) CreateAssociation(ctx context.Context, assoc *domain.Association) error {
	return t.store.CreateAssociation(ctx, assoc)
}
func (t *Tx) DeleteAssociation(ctx context.Context, tagID, date string) error {
	return t.store.DeleteAssociation(ctx, tagID, date)
}
func (t *Tx) CountAssociationsForDate(ctx context.Context, date string) (int, error) {
	return t.store.CountAssociationsForDate(ctx, date)
}
func (t *Tx) ListTagsForDate(ctx context.Context, date string) ([]*domain.Tag, error) {
	return t.store.ListTagsForDate(ctx, date)
}
func (t *Tx) ListDatesForTag(ctx context.Context, tagID, startDate, endDate string) ([]string, error) {
	return t.store.ListDatesForTag(ctx, tagID, startDate, endDate)
}
func (t *Tx) ListTaggedDates(ctx context.Context, startDate, endDate string) ([]*domain.TaggedDate, error) {
	return t.store.ListTaggedDates(ctx, startDate, endDate)
}
func (t *Tx) ListDatesMatchingAny(ctx context.Context, tagIDs []string, startDate, endDate string) ([]string, error) {
	return t.store.ListDatesMatchingAny(ctx, tagIDs, startDate, endDate)
}
func (t *Tx) ListDatesMatchingAll(ctx context.Context, tagIDs []string, startDate, endDate string) ([]string, error) {
	return t.store.ListDatesMatchingAll(ctx, tagIDs, startDate, endDate)
}
func (t *Tx) CreateEntry(ctx context.Context, entry *domain.Entry) error {
	return t.store.CreateEntry(ctx, entry)
}
func (t *Tx) GetEntry(ctx context.Context, id string) (*domain.Entry, error) {
	return t.store.GetEntry(ctx, id)
}
func (t *Tx) UpdateEntry(ctx context.Context, entry *domain.Entry) error {
	return t.store.UpdateEntry(ctx, entry)
}
func (t *Tx) DeleteEntry(ctx context.Context, id string) error {
	return t.store.DeleteEntry(ctx, id)
}
func (t *Tx) ListEntriesInDateRange(ctx context.Context, startDate, endDate string) ([]*domain.Entry, error) {
	return t.store.ListEntriesInDateRange(ctx, startDate, endDate)
}
func (t *Tx) ListEntriesForDate(ctx context.Context, date string) ([]*domain.Entry, error) {
	return t.store.ListEntriesForDate(ctx, date)
}
