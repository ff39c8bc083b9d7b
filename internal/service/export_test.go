package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rorticus/crohns-tracker-sub000/internal/domain"
	"github.com/rorticus/crohns-tracker-sub000/internal/storage/memory"
)

func TestExportUnfiltered(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	tags := NewTagService(store)
	entries := NewEntryService(store)
	export := NewExportService(store, NewFilterService(store))

	tagDays(t, tags, "Vacation", "2025-10-25")
	tagDays(t, tags, "Unused") // appears in the tag list even with no dates

	_, err := entries.CreateEntry(ctx, domain.CreateEntryRequest{
		Type:          domain.EntryTypeBowelMovement,
		Date:          "2025-10-25",
		Time:          "08:00",
		BowelMovement: &domain.BowelMovement{Consistency: 4, Urgency: 2},
	})
	require.NoError(t, err)
	_, err = entries.CreateEntry(ctx, domain.CreateEntryRequest{
		Type: domain.EntryTypeNote,
		Date: "2025-10-26",
		Time: "12:00",
		Note: &domain.Note{Category: "diet", Content: "untagged day"},
	})
	require.NoError(t, err)

	doc, err := export.Export(ctx, nil, "2025-10-01", "2025-10-31")
	require.NoError(t, err)
	assert.False(t, doc.GeneratedAt.IsZero())
	assert.Equal(t, "2025-10-01", doc.StartDate)
	assert.Equal(t, "2025-10-31", doc.EndDate)
	assert.Len(t, doc.Tags, 2)
	require.Len(t, doc.Entries, 2)

	// Newest first; each entry carries the day tags of its date.
	assert.Equal(t, "2025-10-26", doc.Entries[0].Date)
	assert.Empty(t, doc.Entries[0].Tags)
	assert.Equal(t, "2025-10-25", doc.Entries[1].Date)
	require.Len(t, doc.Entries[1].Tags, 1)
	assert.Equal(t, "Vacation", doc.Entries[1].Tags[0].DisplayName)
}

func TestExportFiltered(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	tags := NewTagService(store)
	entries := NewEntryService(store)
	export := NewExportService(store, NewFilterService(store))

	tagDays(t, tags, "Vacation", "2025-10-25")

	for _, date := range []string{"2025-10-25", "2025-10-26"} {
		_, err := entries.CreateEntry(ctx, domain.CreateEntryRequest{
			Type: domain.EntryTypeNote,
			Date: date,
			Time: "12:00",
			Note: &domain.Note{Category: "general", Content: "on " + date},
		})
		require.NoError(t, err)
	}

	doc, err := export.Export(ctx,
		&domain.TagFilter{Tags: []string{"Vacation"}, MatchMode: domain.MatchAny},
		"2025-10-01", "2025-10-31")
	require.NoError(t, err)
	require.Len(t, doc.Entries, 1)
	assert.Equal(t, "2025-10-25", doc.Entries[0].Date)
}

func TestExportInvalidRange(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	export := NewExportService(store, NewFilterService(store))

	_, err := export.Export(ctx, nil, "2025-10-01", "bogus")
	assert.Error(t, err)
}
