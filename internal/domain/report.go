package domain

// TagStatistics is a read-only report over the bowel movement entries
// recorded on a tag's dates.
type TagStatistics struct {
	TagID                   string      `json:"tagId"`
	TaggedDays              int         `json:"taggedDays"`
	EntryCount              int         `json:"entryCount"`
	EntriesPerDay           float64     `json:"entriesPerDay"`
	ConsistencyMean         float64     `json:"consistencyMean"`
	ConsistencyDistribution map[int]int `json:"consistencyDistribution"`
	UrgencyMean             float64     `json:"urgencyMean"`
	UrgencyDistribution     map[int]int `json:"urgencyDistribution"`
	FirstDate               string      `json:"firstDate,omitempty"`
	LastDate                string      `json:"lastDate,omitempty"`
}
