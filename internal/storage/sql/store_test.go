package sql

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rorticus/crohns-tracker-sub000/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db") + "?_foreign_keys=on"
	store, err := New("sqlite3", dsn)
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func mkTag(t *testing.T, store *Store, name, displayName string) *domain.Tag {
	t.Helper()
	tag := &domain.Tag{
		ID:          uuid.New().String(),
		Name:        name,
		DisplayName: displayName,
		CreatedAt:   time.Now(),
	}
	if err := store.CreateTag(context.Background(), tag); err != nil {
		t.Fatalf("creating tag %q: %v", name, err)
	}
	return tag
}

func mkAssociation(t *testing.T, store *Store, tagID, date string) {
	t.Helper()
	err := store.CreateAssociation(context.Background(), &domain.Association{
		ID:        uuid.New().String(),
		TagID:     tagID,
		Date:      date,
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("creating association %s/%s: %v", tagID, date, err)
	}
}

func TestTagCRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tag := mkTag(t, store, "vacation", "Vacation")

	got, err := store.GetTag(ctx, tag.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "vacation" || got.DisplayName != "Vacation" {
		t.Fatalf("unexpected tag: %+v", got)
	}

	byName, err := store.GetTagByName(ctx, "vacation")
	if err != nil || byName.ID != tag.ID {
		t.Fatalf("get by name: %v, tag %+v", err, byName)
	}

	desc := "away from home"
	if err := store.UpdateTagDescription(ctx, tag.ID, &desc); err != nil {
		t.Fatalf("update description: %v", err)
	}
	got, _ = store.GetTag(ctx, tag.ID)
	if got.Description == nil || *got.Description != desc {
		t.Fatalf("expected description %q, got %+v", desc, got.Description)
	}
	if err := store.UpdateTagDescription(ctx, tag.ID, nil); err != nil {
		t.Fatalf("clear description: %v", err)
	}
	got, _ = store.GetTag(ctx, tag.ID)
	if got.Description != nil {
		t.Fatalf("expected cleared description, got %q", *got.Description)
	}

	if err := store.DeleteTag(ctx, tag.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetTag(ctx, tag.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.DeleteTag(ctx, tag.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestCreateTagDuplicateName(t *testing.T) {
	store := newTestStore(t)

	mkTag(t, store, "vacation", "Vacation")
	err := store.CreateTag(context.Background(), &domain.Tag{
		ID:          uuid.New().String(),
		Name:        "vacation",
		DisplayName: "VACATION",
		CreatedAt:   time.Now(),
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestListTagsOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alpha := mkTag(t, store, "alpha", "Alpha")
	beta := mkTag(t, store, "beta", "Beta")
	mkTag(t, store, "zebra", "Zebra")

	for i := 0; i < 3; i++ {
		if err := store.IncrementTagUsage(ctx, alpha.ID); err != nil {
			t.Fatalf("increment: %v", err)
		}
		if err := store.IncrementTagUsage(ctx, beta.ID); err != nil {
			t.Fatalf("increment: %v", err)
		}
	}

	tags, err := store.ListTags(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tags) != 3 {
		t.Fatalf("expected 3 tags, got %d", len(tags))
	}
	want := []string{"Alpha", "Beta", "Zebra"}
	for i, name := range want {
		if tags[i].DisplayName != name {
			t.Fatalf("position %d: expected %s, got %s", i, name, tags[i].DisplayName)
		}
	}
}

func TestUsageCounter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tag := mkTag(t, store, "flare", "Flare")

	if err := store.IncrementTagUsage(ctx, tag.ID); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if err := store.DecrementTagUsage(ctx, tag.ID); err != nil {
		t.Fatalf("decrement: %v", err)
	}
	// Floored at zero.
	if err := store.DecrementTagUsage(ctx, tag.ID); err != nil {
		t.Fatalf("decrement at zero: %v", err)
	}
	got, _ := store.GetTag(ctx, tag.ID)
	if got.UsageCount != 0 {
		t.Fatalf("expected usage count 0, got %d", got.UsageCount)
	}

	if err := store.IncrementTagUsage(ctx, "no-such-id"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAssociations(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	vacation := mkTag(t, store, "vacation", "Vacation")
	stress := mkTag(t, store, "stress", "Stress")

	mkAssociation(t, store, vacation.ID, "2025-10-25")
	mkAssociation(t, store, vacation.ID, "2025-10-26")
	mkAssociation(t, store, stress.ID, "2025-10-25")

	// Duplicate (tag, date) pair violates the unique index.
	err := store.CreateAssociation(ctx, &domain.Association{
		ID:        uuid.New().String(),
		TagID:     vacation.ID,
		Date:      "2025-10-25",
		CreatedAt: time.Now(),
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	count, err := store.CountAssociationsForDate(ctx, "2025-10-25")
	if err != nil || count != 2 {
		t.Fatalf("count: %v, got %d", err, count)
	}

	tags, err := store.ListTagsForDate(ctx, "2025-10-25")
	if err != nil || len(tags) != 2 {
		t.Fatalf("tags for date: %v, got %d", err, len(tags))
	}
	if tags[0].DisplayName != "Stress" || tags[1].DisplayName != "Vacation" {
		t.Fatalf("expected alphabetical order, got %s, %s", tags[0].DisplayName, tags[1].DisplayName)
	}

	dates, err := store.ListDatesForTag(ctx, vacation.ID, "", "")
	if err != nil || len(dates) != 2 || dates[0] != "2025-10-25" {
		t.Fatalf("dates for tag: %v, got %v", err, dates)
	}
	dates, err = store.ListDatesForTag(ctx, vacation.ID, "2025-10-26", "")
	if err != nil || len(dates) != 1 || dates[0] != "2025-10-26" {
		t.Fatalf("bounded dates: %v, got %v", err, dates)
	}

	if err := store.DeleteAssociation(ctx, stress.ID, "2025-10-25"); err != nil {
		t.Fatalf("delete association: %v", err)
	}
	if err := store.DeleteAssociation(ctx, stress.ID, "2025-10-25"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteTagCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tag := mkTag(t, store, "vacation", "Vacation")
	mkAssociation(t, store, tag.ID, "2025-10-25")
	mkAssociation(t, store, tag.ID, "2025-10-26")

	if err := store.DeleteTag(ctx, tag.ID); err != nil {
		t.Fatalf("delete tag: %v", err)
	}

	for _, date := range []string{"2025-10-25", "2025-10-26"} {
		count, err := store.CountAssociationsForDate(ctx, date)
		if err != nil {
			t.Fatalf("count: %v", err)
		}
		if count != 0 {
			t.Fatalf("expected 0 associations on %s after cascade, got %d", date, count)
		}
	}
}

func TestListTaggedDates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	vacation := mkTag(t, store, "vacation", "Vacation")
	stress := mkTag(t, store, "stress", "Stress")
	mkAssociation(t, store, vacation.ID, "2025-10-25")
	mkAssociation(t, store, stress.ID, "2025-10-25")
	mkAssociation(t, store, vacation.ID, "2025-10-26")
	mkAssociation(t, store, vacation.ID, "2025-11-01")

	tagged, err := store.ListTaggedDates(ctx, "2025-10-01", "2025-10-31")
	if err != nil {
		t.Fatalf("list tagged dates: %v", err)
	}
	if len(tagged) != 2 {
		t.Fatalf("expected 2 tagged dates, got %d", len(tagged))
	}
	if tagged[0].Date != "2025-10-25" || len(tagged[0].TagNames) != 2 {
		t.Fatalf("unexpected first date: %+v", tagged[0])
	}
	if tagged[0].TagNames[0] != "Stress" || tagged[0].TagNames[1] != "Vacation" {
		t.Fatalf("expected alphabetical names, got %v", tagged[0].TagNames)
	}
	if tagged[1].Date != "2025-10-26" || len(tagged[1].TagNames) != 1 {
		t.Fatalf("unexpected second date: %+v", tagged[1])
	}
}

func TestDatesMatching(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	vacation := mkTag(t, store, "vacation", "Vacation")
	stress := mkTag(t, store, "stress", "Stress")
	mkAssociation(t, store, vacation.ID, "2025-10-01")
	mkAssociation(t, store, vacation.ID, "2025-10-02")
	mkAssociation(t, store, stress.ID, "2025-10-02")
	mkAssociation(t, store, stress.ID, "2025-10-03")

	ids := []string{vacation.ID, stress.ID}

	union, err := store.ListDatesMatchingAny(ctx, ids, "2025-10-01", "2025-10-31")
	if err != nil {
		t.Fatalf("any: %v", err)
	}
	if len(union) != 3 || union[0] != "2025-10-01" || union[2] != "2025-10-03" {
		t.Fatalf("unexpected any dates: %v", union)
	}

	intersection, err := store.ListDatesMatchingAll(ctx, ids, "2025-10-01", "2025-10-31")
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(intersection) != 1 || intersection[0] != "2025-10-02" {
		t.Fatalf("unexpected all dates: %v", intersection)
	}
}

func TestTransactionRollback(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tag := mkTag(t, store, "vacation", "Vacation")

	tx, err := store.BeginTx(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	err = tx.CreateAssociation(ctx, &domain.Association{
		ID:        uuid.New().String(),
		TagID:     tag.ID,
		Date:      "2025-10-25",
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("create in tx: %v", err)
	}
	if err := tx.IncrementTagUsage(ctx, tag.ID); err != nil {
		t.Fatalf("increment in tx: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	count, _ := store.CountAssociationsForDate(ctx, "2025-10-25")
	if count != 0 {
		t.Fatalf("expected rollback to discard the association, got %d", count)
	}
	got, _ := store.GetTag(ctx, tag.ID)
	if got.UsageCount != 0 {
		t.Fatalf("expected rollback to discard the counter, got %d", got.UsageCount)
	}
}

func TestEntryCRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	notes := "after lunch"
	entry := &domain.Entry{
		ID:        uuid.New().String(),
		Type:      domain.EntryTypeBowelMovement,
		Date:      "2025-10-25",
		Time:      "13:30",
		Timestamp: time.Date(2025, 10, 25, 13, 30, 0, 0, time.UTC),
		BowelMovement: &domain.BowelMovement{
			Consistency: 5,
			Urgency:     3,
			Notes:       &notes,
		},
	}
	if err := store.CreateEntry(ctx, entry); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.GetEntry(ctx, entry.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.BowelMovement == nil || got.BowelMovement.Consistency != 5 {
		t.Fatalf("unexpected entry: %+v", got)
	}
	if got.BowelMovement.Notes == nil || *got.BowelMovement.Notes != notes {
		t.Fatalf("expected notes %q, got %+v", notes, got.BowelMovement.Notes)
	}
	if got.Note != nil {
		t.Fatalf("expected no note record, got %+v", got.Note)
	}

	entry.Date = "2025-10-26"
	entry.BowelMovement.Consistency = 6
	if err := store.UpdateEntry(ctx, entry); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = store.GetEntry(ctx, entry.ID)
	if got.Date != "2025-10-26" || got.BowelMovement.Consistency != 6 {
		t.Fatalf("unexpected entry after update: %+v", got)
	}

	if err := store.DeleteEntry(ctx, entry.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetEntry(ctx, entry.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNoteEntryRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	entry := &domain.Entry{
		ID:        uuid.New().String(),
		Type:      domain.EntryTypeNote,
		Date:      "2025-10-25",
		Time:      "20:00",
		Timestamp: time.Date(2025, 10, 25, 20, 0, 0, 0, time.UTC),
		Note: &domain.Note{
			Category: "diet",
			Content:  "skipped dinner",
			Tags:     []string{"fasting", "evening"},
		},
	}
	if err := store.CreateEntry(ctx, entry); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.GetEntry(ctx, entry.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Note == nil || got.Note.Content != "skipped dinner" {
		t.Fatalf("unexpected note: %+v", got.Note)
	}
	if len(got.Note.Tags) != 2 || got.Note.Tags[0] != "fasting" {
		t.Fatalf("unexpected note tags: %v", got.Note.Tags)
	}
	if got.BowelMovement != nil {
		t.Fatalf("expected no bowel movement record, got %+v", got.BowelMovement)
	}
}

func TestListEntries(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mk := func(date, timeOfDay string, ts time.Time) string {
		id := uuid.New().String()
		err := store.CreateEntry(ctx, &domain.Entry{
			ID:        id,
			Type:      domain.EntryTypeNote,
			Date:      date,
			Time:      timeOfDay,
			Timestamp: ts,
			Note:      &domain.Note{Category: "general", Content: "x"},
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		return id
	}
	a := mk("2025-10-25", "08:00", time.Date(2025, 10, 25, 8, 0, 0, 0, time.UTC))
	b := mk("2025-10-25", "21:00", time.Date(2025, 10, 25, 21, 0, 0, 0, time.UTC))
	mk("2025-11-02", "07:00", time.Date(2025, 11, 2, 7, 0, 0, 0, time.UTC))

	entries, err := store.ListEntriesInDateRange(ctx, "2025-10-01", "2025-10-31")
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != b || entries[1].ID != a {
		t.Fatalf("unexpected range order: %v", entries)
	}

	entries, err = store.ListEntriesForDate(ctx, "2025-10-25")
	if err != nil || len(entries) != 2 {
		t.Fatalf("date: %v, got %d", err, len(entries))
	}
}
