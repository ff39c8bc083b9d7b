package domain

import "time"

// ExportDocument is the shape handed to the export/share layer: every tag,
// plus the entries of the requested range annotated with their inherited day
// tags.
type ExportDocument struct {
	GeneratedAt time.Time      `json:"generatedAt"`
	StartDate   string         `json:"startDate"`
	EndDate     string         `json:"endDate"`
	Tags        []*Tag         `json:"tags"`
	Entries     []*TaggedEntry `json:"entries"`
}
