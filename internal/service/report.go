package service

import (
	"context"

	"github.com/rorticus/crohns-tracker-sub000/internal/domain"
	"github.com/rorticus/crohns-tracker-sub000/internal/storage"
)

// ReportService computes read-only per-tag statistics over the bowel
// movement entries recorded on the tag's dates.
type ReportService struct {
	store storage.Storage
}

// NewReportService creates a new ReportService.
func NewReportService(store storage.Storage) *ReportService {
	return &ReportService{store: store}
}

// StatisticsForTag reports over every date the tag is attached to: tagged
// day count, qualifying entry count, entries per day, consistency and
// urgency means with per-value distributions, and the earliest and latest
// tagged date. A tag with zero tagged days yields a zero-valued report; an
// unknown tag is ErrNotFound.
func (s *ReportService) StatisticsForTag(ctx context.Context, tagID string) (*domain.TagStatistics, error) {
	if _, err := s.store.GetTag(ctx, tagID); err != nil {
		return nil, err
	}

	dates, err := s.store.ListDatesForTag(ctx, tagID, "", "")
	if err != nil {
		return nil, err
	}

	stats := &domain.TagStatistics{
		TagID:                   tagID,
		TaggedDays:              len(dates),
		ConsistencyDistribution: make(map[int]int),
		UrgencyDistribution:     make(map[int]int),
	}
	if len(dates) == 0 {
		return stats, nil
	}
	stats.FirstDate = dates[0]
	stats.LastDate = dates[len(dates)-1]

	var consistencySum, urgencySum int
	for _, date := range dates {
		entries, err := s.store.ListEntriesForDate(ctx, date)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.Type != domain.EntryTypeBowelMovement || entry.BowelMovement == nil {
				continue
			}
			stats.EntryCount++
			consistencySum += entry.BowelMovement.Consistency
			urgencySum += entry.BowelMovement.Urgency
			stats.ConsistencyDistribution[entry.BowelMovement.Consistency]++
			stats.UrgencyDistribution[entry.BowelMovement.Urgency]++
		}
	}

	stats.EntriesPerDay = float64(stats.EntryCount) / float64(stats.TaggedDays)
	if stats.EntryCount > 0 {
		stats.ConsistencyMean = float64(consistencySum) / float64(stats.EntryCount)
		stats.UrgencyMean = float64(urgencySum) / float64(stats.EntryCount)
	}
	return stats, nil
}
