package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rorticus/crohns-tracker-sub000/internal/domain"
	"github.com/rorticus/crohns-tracker-sub000/internal/storage/memory"
)

func TestMonthView(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	tags := NewTagService(store)
	cal := NewCalendarService(store)

	tagDays(t, tags, "Vacation", "2025-10-25", "2025-10-26", "2025-11-01")
	tagDays(t, tags, "Stress", "2025-10-25")

	view, err := cal.MonthView(ctx, 2025, 10)
	require.NoError(t, err)
	assert.Equal(t, 2025, view.Year)
	assert.Equal(t, 10, view.Month)
	require.Len(t, view.Days, 2, "untagged dates are omitted")
	assert.Equal(t, []string{"Stress", "Vacation"}, view.Days["2025-10-25"])
	assert.Equal(t, []string{"Vacation"}, view.Days["2025-10-26"])

	// The November association stays out of the October view.
	_, ok := view.Days["2025-11-01"]
	assert.False(t, ok)

	november, err := cal.MonthView(ctx, 2025, 11)
	require.NoError(t, err)
	assert.Equal(t, []string{"Vacation"}, november.Days["2025-11-01"])
}

func TestMonthViewEmptyMonth(t *testing.T) {
	ctx := context.Background()
	cal := NewCalendarService(memory.New())

	view, err := cal.MonthView(ctx, 2025, 2)
	require.NoError(t, err)
	assert.Empty(t, view.Days)
}

func TestMonthViewRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	cal := NewCalendarService(memory.New())

	for _, tc := range []struct{ year, month int }{
		{2025, 0},
		{2025, 13},
		{0, 6},
	} {
		_, err := cal.MonthView(ctx, tc.year, tc.month)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "year=%d month=%d", tc.year, tc.month)
	}
}

func TestMonthViewCacheAndInvalidate(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	tags := NewTagService(store)
	cal := NewCalendarService(store)

	tag := tagDays(t, tags, "Vacation", "2025-10-25")

	view, err := cal.MonthView(ctx, 2025, 10)
	require.NoError(t, err)
	require.Len(t, view.Days, 1)

	// A mutation behind the cache's back is not visible until Invalidate.
	_, err = tags.AddTagToDay(ctx, tag.ID, "2025-10-26")
	require.NoError(t, err)

	stale, err := cal.MonthView(ctx, 2025, 10)
	require.NoError(t, err)
	assert.Len(t, stale.Days, 1)

	cal.Invalidate()

	fresh, err := cal.MonthView(ctx, 2025, 10)
	require.NoError(t, err)
	assert.Len(t, fresh.Days, 2)
}
