package domain

import "time"

// Association links one tag to one calendar date. The (TagID, Date) pair is
// unique. Creating or deleting an association always adjusts the owning
// tag's usage count inside the same storage transaction.
type Association struct {
	ID        string    `json:"id" db:"id"`
	TagID     string    `json:"tagId" db:"tag_id"`
	Date      string    `json:"date" db:"date"` // YYYY-MM-DD, no time component
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// AddTagToDayRequest is the request body for attaching a tag to a date.
type AddTagToDayRequest struct {
	TagID string `json:"tagId"`
}

// TaggedDate is one calendar date together with the display names of the
// tags attached to it, ordered alphabetically.
type TaggedDate struct {
	Date     string   `json:"date"`
	TagNames []string `json:"tags"`
}

// MonthView maps each tagged date of a month to its tag display names.
// Dates without tags are omitted.
type MonthView struct {
	Year  int                 `json:"year"`
	Month int                 `json:"month"`
	Days  map[string][]string `json:"days"`
}
