package domain

// MatchMode selects how a multi-tag filter combines its tags.
type MatchMode string

const (
	// MatchAny qualifies a date carrying at least one of the filter's tags.
	MatchAny MatchMode = "any"
	// MatchAll qualifies a date carrying every one of the filter's tags.
	MatchAll MatchMode = "all"
)

// Valid reports whether the match mode is one of the known values.
func (m MatchMode) Valid() bool {
	return m == MatchAny || m == MatchAll
}

// TagFilter is an ephemeral query input: tag names plus a match mode. It is
// never persisted.
type TagFilter struct {
	Tags      []string  `json:"tags"`
	MatchMode MatchMode `json:"matchMode"`
}

// EntrySearchRequest is the request body for filtering entries by tags over
// a date range.
type EntrySearchRequest struct {
	Tags      []string  `json:"tags"`
	MatchMode MatchMode `json:"matchMode"`
	StartDate string    `json:"startDate"`
	EndDate   string    `json:"endDate"`
}
