package domain

import "time"

// Entry types.
const (
	EntryTypeBowelMovement = "bowel_movement"
	EntryTypeNote          = "note"
)

// Bounds for the bowel movement scales.
const (
	ConsistencyMin = 1
	ConsistencyMax = 7
	UrgencyMin     = 1
	UrgencyMax     = 4
)

// Entry is a single logged observation: either a bowel movement or a
// free-form note. Entries carry no stored tag references; they inherit the
// tags of their date at read time.
type Entry struct {
	ID            string         `json:"id" db:"id"`
	Type          string         `json:"type" db:"type"`
	Date          string         `json:"date" db:"date"` // YYYY-MM-DD
	Time          string         `json:"time" db:"time"` // HH:MM
	Timestamp     time.Time      `json:"timestamp" db:"timestamp"`
	BowelMovement *BowelMovement `json:"bowelMovement,omitempty" db:"-"`
	Note          *Note          `json:"note,omitempty" db:"-"`
}

// BowelMovement holds the observation scales for a bowel movement entry.
type BowelMovement struct {
	Consistency int     `json:"consistency"` // Bristol scale, 1-7
	Urgency     int     `json:"urgency"`     // 1-4
	Notes       *string `json:"notes,omitempty"`
}

// Note holds the fields of a free-form note entry.
type Note struct {
	Category string   `json:"category"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags,omitempty"`
}

// TaggedEntry is an entry annotated with the tags inherited from its date.
type TaggedEntry struct {
	Entry
	Tags []*Tag `json:"dayTags"`
}

// CreateEntryRequest is the request body for logging an entry.
type CreateEntryRequest struct {
	Type          string         `json:"type"`
	Date          string         `json:"date"`
	Time          string         `json:"time"`
	BowelMovement *BowelMovement `json:"bowelMovement,omitempty"`
	Note          *Note          `json:"note,omitempty"`
}

// UpdateEntryRequest is the request body for updating an entry.
type UpdateEntryRequest struct {
	Date          string         `json:"date"`
	Time          string         `json:"time"`
	BowelMovement *BowelMovement `json:"bowelMovement,omitempty"`
	Note          *Note          `json:"note,omitempty"`
}
