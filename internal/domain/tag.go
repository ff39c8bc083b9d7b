package domain

import "time"

// MaxTagsPerDay is the maximum number of tags that may be attached to a
// single calendar date.
const MaxTagsPerDay = 10

// Tag is a reusable label attachable to calendar dates.
// Name is the normalized (trimmed, lower-cased) matching key and is globally
// unique. DisplayName preserves the casing and spacing the user first typed
// for that key and never changes afterwards.
type Tag struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	DisplayName string    `json:"displayName" db:"display_name"`
	Description *string   `json:"description,omitempty" db:"description"`
	UsageCount  int       `json:"usageCount" db:"usage_count"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// CreateTagRequest is the request body for creating (or reusing) a tag.
type CreateTagRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// UpdateTagDescriptionRequest is the request body for updating a tag's
// description. A null description clears it.
type UpdateTagDescriptionRequest struct {
	Description *string `json:"description"`
}
