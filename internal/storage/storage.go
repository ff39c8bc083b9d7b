package storage

import (
	"context"

	"github.com/rorticus/crohns-tracker-sub000/internal/domain"
)

// Storage defines the interface for the storage layer.
// Implementations must be safe for concurrent use.
//
// Dates are passed and returned as YYYY-MM-DD strings; chronological order
// and lexical order coincide for that form, and both the SQL and the
// in-memory implementation rely on it.
type Storage interface {
	// Close closes the storage connection.
	Close() error

	// Tags
	CreateTag(ctx context.Context, tag *domain.Tag) error
	GetTag(ctx context.Context, id string) (*domain.Tag, error)
	// GetTagByName looks a tag up by its normalized name.
	GetTagByName(ctx context.Context, name string) (*domain.Tag, error)
	// ListTags returns every tag ordered by usage count descending, then
	// display name ascending (case-sensitive).
	ListTags(ctx context.Context) ([]*domain.Tag, error)
	UpdateTagDescription(ctx context.Context, id string, description *string) error
	// DeleteTag removes the tag and cascades deletion of its associations.
	DeleteTag(ctx context.Context, id string) error
	// IncrementTagUsage adds 1 to the tag's usage count.
	IncrementTagUsage(ctx context.Context, id string) error
	// DecrementTagUsage subtracts 1 from the tag's usage count, floored at 0.
	DecrementTagUsage(ctx context.Context, id string) error

	// Associations
	CreateAssociation(ctx context.Context, assoc *domain.Association) error
	// DeleteAssociation removes the (tagID, date) link. Returns
	// domain.ErrNotFound when no such link exists; callers that want no-op
	// semantics handle that themselves.
	DeleteAssociation(ctx context.Context, tagID, date string) error
	CountAssociationsForDate(ctx context.Context, date string) (int, error)
	// ListTagsForDate returns the tags linked to date, display name ascending.
	ListTagsForDate(ctx context.Context, date string) ([]*domain.Tag, error)
	// ListDatesForTag returns the dates linked to tagID in chronological
	// order, inclusively bounded when startDate/endDate are non-empty.
	ListDatesForTag(ctx context.Context, tagID, startDate, endDate string) ([]string, error)
	// ListTaggedDates returns every date in [startDate, endDate] with at
	// least one association, chronologically, each with its tag display
	// names in ascending order.
	ListTaggedDates(ctx context.Context, startDate, endDate string) ([]*domain.TaggedDate, error)
	// ListDatesMatchingAny returns the dates in range linked to at least one
	// of the given tags.
	ListDatesMatchingAny(ctx context.Context, tagIDs []string, startDate, endDate string) ([]string, error)
	// ListDatesMatchingAll returns the dates in range linked to every one of
	// the given tags.
	ListDatesMatchingAll(ctx context.Context, tagIDs []string, startDate, endDate string) ([]string, error)

	// Entries
	CreateEntry(ctx context.Context, entry *domain.Entry) error
	GetEntry(ctx context.Context, id string) (*domain.Entry, error)
	UpdateEntry(ctx context.Context, entry *domain.Entry) error
	DeleteEntry(ctx context.Context, id string) error
	// ListEntriesInDateRange returns entries with date in [startDate,
	// endDate], newest timestamp first.
	ListEntriesInDateRange(ctx context.Context, startDate, endDate string) ([]*domain.Entry, error)
	ListEntriesForDate(ctx context.Context, date string) ([]*domain.Entry, error)

	// Transaction support
	BeginTx(ctx context.Context) (Transaction, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Storage
	Commit() error
	Rollback() error
}
