package sql

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/rorticus/crohns-tracker-sub000/internal/domain"
	"github.com/rorticus/crohns-tracker-sub000/internal/storage"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// isUniqueViolation checks if an error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	// SQLite
	if strings.Contains(errStr, "UNIQUE constraint failed") {
		return true
	}
	// PostgreSQL
	if strings.Contains(errStr, "duplicate key value violates unique constraint") {
		return true
	}
	return false
}

// wrapUniqueError converts UNIQUE violations to domain.ErrConflict.
func wrapUniqueError(err error) error {
	if isUniqueViolation(err) {
		return domain.ErrConflict
	}
	return err
}

// Store implements the storage.Storage interface using SQL.
type Store struct {
	db     *sqlx.DB
	driver string
}

// New creates a new SQL store and runs any pending migrations.
func New(driver, dsn string) (*Store, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect(driver); err != nil {
		return nil, fmt.Errorf("setting goose dialect: %w", err)
	}

	if err := goose.Up(db.DB, "migrations"); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db, driver: driver}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction.
func (s *Store) BeginTx(ctx context.Context) (storage.Transaction, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx, driver: s.driver}, nil
}

// Tx wraps a database transaction.
type Tx struct {
	tx     *sqlx.Tx
	driver string
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	return t.tx.Commit()
}

// Rollback rolls back the transaction.
func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}

// Close is a no-op for transactions (they should be committed or rolled back).
func (t *Tx) Close() error {
	return nil
}

// BeginTx is not supported within a transaction.
func (t *Tx) BeginTx(ctx context.Context) (storage.Transaction, error) {
	return nil, fmt.Errorf("nested transactions not supported")
}

// helper to get the correct database interface
type dbInterface interface {
	sqlx.ExtContext
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ============================================
// Tags
// ============================================

const tagColumns = `id, name, display_name, description, usage_count, created_at`

func createTag(ctx context.Context, db dbInterface, tag *domain.Tag) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO tags (id, name, display_name, description, usage_count, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		tag.ID, tag.Name, tag.DisplayName, tag.Description, tag.UsageCount, tag.CreatedAt)
	return wrapUniqueError(err)
}

func (s *Store) CreateTag(ctx context.Context, tag *domain.Tag) error {
	return createTag(ctx, s.db, tag)
}

func (t *Tx) CreateTag(ctx context.Context, tag *domain.Tag) error {
	return createTag(ctx, t.tx, tag)
}

func getTag(ctx context.Context, db dbInterface, id string) (*domain.Tag, error) {
	var tag domain.Tag
	err := db.GetContext(ctx, &tag,
		`SELECT `+tagColumns+` FROM tags WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	return &tag, err
}

func (s *Store) GetTag(ctx context.Context, id string) (*domain.Tag, error) {
	return getTag(ctx, s.db, id)
}

func (t *Tx) GetTag(ctx context.Context, id string) (*domain.Tag, error) {
	return getTag(ctx, t.tx, id)
}

func getTagByName(ctx context.Context, db dbInterface, name string) (*domain.Tag, error) {
	var tag domain.Tag
	err := db.GetContext(ctx, &tag,
		`SELECT `+tagColumns+` FROM tags WHERE name = $1`, name)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	return &tag, err
}

func (s *Store) GetTagByName(ctx context.Context, name string) (*domain.Tag, error) {
	return getTagByName(ctx, s.db, name)
}

func (t *Tx) GetTagByName(ctx context.Context, name string) (*domain.Tag, error) {
	return getTagByName(ctx, t.tx, name)
}

func listTags(ctx context.Context, db dbInterface) ([]*domain.Tag, error) {
	var tags []*domain.Tag
	err := db.SelectContext(ctx, &tags,
		`SELECT `+tagColumns+` FROM tags ORDER BY usage_count DESC, display_name ASC`)
	if err != nil {
		return nil, err
	}
	return tags, nil
}

func (s *Store) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	return listTags(ctx, s.db)
}

func (t *Tx) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	return listTags(ctx, t.tx)
}

func updateTagDescription(ctx context.Context, db dbInterface, id string, description *string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE tags SET description = $1 WHERE id = $2`, description, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) UpdateTagDescription(ctx context.Context, id string, description *string) error {
	return updateTagDescription(ctx, s.db, id, description)
}

func (t *Tx) UpdateTagDescription(ctx context.Context, id string, description *string) error {
	return updateTagDescription(ctx, t.tx, id, description)
}

// deleteTag removes the tag row; associations cascade via the foreign key.
func deleteTag(ctx context.Context, db dbInterface, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteTag(ctx context.Context, id string) error {
	return deleteTag(ctx, s.db, id)
}

func (t *Tx) DeleteTag(ctx context.Context, id string) error {
	return deleteTag(ctx, t.tx, id)
}

func incrementTagUsage(ctx context.Context, db dbInterface, id string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE tags SET usage_count = usage_count + 1 WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) IncrementTagUsage(ctx context.Context, id string) error {
	return incrementTagUsage(ctx, s.db, id)
}

func (t *Tx) IncrementTagUsage(ctx context.Context, id string) error {
	return incrementTagUsage(ctx, t.tx, id)
}

func decrementTagUsage(ctx context.Context, db dbInterface, id string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE tags SET usage_count = CASE WHEN usage_count > 0 THEN usage_count - 1 ELSE 0 END
		 WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) DecrementTagUsage(ctx context.Context, id string) error {
	return decrementTagUsage(ctx, s.db, id)
}

func (t *Tx) DecrementTagUsage(ctx context.Context, id string) error {
	return decrementTagUsage(ctx, t.tx, id)
}

// ============================================
// Associations
// ============================================

func createAssociation(ctx context.Context, db dbInterface, assoc *domain.Association) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO associations (id, tag_id, date, created_at)
		 VALUES ($1, $2, $3, $4)`,
		assoc.ID, assoc.TagID, assoc.Date, assoc.CreatedAt)
	return wrapUniqueError(err)
}

func (s *Store) CreateAssociation(ctx context.Context, assoc *domain.Association) error {
	return createAssociation(ctx, s.db, assoc)
}

func (t *Tx) CreateAssociation(ctx context.Context, assoc *domain.Association) error {
	return createAssociation(ctx, t.tx, assoc)
}

func deleteAssociation(ctx context.Context, db dbInterface, tagID, date string) error {
	result, err := db.ExecContext(ctx,
		`DELETE FROM associations WHERE tag_id = $1 AND date = $2`, tagID, date)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteAssociation(ctx context.Context, tagID, date string) error {
	return deleteAssociation(ctx, s.db, tagID, date)
}

func (t *Tx) DeleteAssociation(ctx context.Context, tagID, date string) error {
	return deleteAssociation(ctx, t.tx, tagID, date)
}

func countAssociationsForDate(ctx context.Context, db dbInterface, date string) (int, error) {
	var count int
	err := db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM associations WHERE date = $1`, date)
	return count, err
}

func (s *Store) CountAssociationsForDate(ctx context.Context, date string) (int, error) {
	return countAssociationsForDate(ctx, s.db, date)
}

func (t *Tx) CountAssociationsForDate(ctx context.Context, date string) (int, error) {
	return countAssociationsForDate(ctx, t.tx, date)
}

func listTagsForDate(ctx context.Context, db dbInterface, date string) ([]*domain.Tag, error) {
	var tags []*domain.Tag
	err := db.SelectContext(ctx, &tags,
		`SELECT t.id, t.name, t.display_name, t.description, t.usage_count, t.created_at
		 FROM tags t
		 JOIN associations a ON a.tag_id = t.id
		 WHERE a.date = $1
		 ORDER BY t.display_name ASC`, date)
	if err != nil {
		return nil, err
	}
	return tags, nil
}

func (s *Store) ListTagsForDate(ctx context.Context, date string) ([]*domain.Tag, error) {
	return listTagsForDate(ctx, s.db, date)
}

func (t *Tx) ListTagsForDate(ctx context.Context, date string) ([]*domain.Tag, error) {
	return listTagsForDate(ctx, t.tx, date)
}

func listDatesForTag(ctx context.Context, db dbInterface, tagID, startDate, endDate string) ([]string, error) {
	query := `SELECT date FROM associations WHERE tag_id = $1`
	args := []any{tagID}
	if startDate != "" {
		args = append(args, startDate)
		query += fmt.Sprintf(` AND date >= $%d`, len(args))
	}
	if endDate != "" {
		args = append(args, endDate)
		query += fmt.Sprintf(` AND date <= $%d`, len(args))
	}
	query += ` ORDER BY date ASC`

	var dates []string
	if err := db.SelectContext(ctx, &dates, query, args...); err != nil {
		return nil, err
	}
	return dates, nil
}

func (s *Store) ListDatesForTag(ctx context.Context, tagID, startDate, endDate string) ([]string, error) {
	return listDatesForTag(ctx, s.db, tagID, startDate, endDate)
}

func (t *Tx) ListDatesForTag(ctx context.Context, tagID, startDate, endDate string) ([]string, error) {
	return listDatesForTag(ctx, t.tx, tagID, startDate, endDate)
}

func listTaggedDates(ctx context.Context, db dbInterface, startDate, endDate string) ([]*domain.TaggedDate, error) {
	rows, err := db.QueryxContext(ctx,
		`SELECT a.date, t.display_name
		 FROM associations a
		 JOIN tags t ON t.id = a.tag_id
		 WHERE a.date >= $1 AND a.date <= $2
		 ORDER BY a.date ASC, t.display_name ASC`, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.TaggedDate
	for rows.Next() {
		var date, displayName string
		if err := rows.Scan(&date, &displayName); err != nil {
			return nil, err
		}
		if len(result) == 0 || result[len(result)-1].Date != date {
			result = append(result, &domain.TaggedDate{Date: date})
		}
		last := result[len(result)-1]
		last.TagNames = append(last.TagNames, displayName)
	}
	return result, rows.Err()
}

func (s *Store) ListTaggedDates(ctx context.Context, startDate, endDate string) ([]*domain.TaggedDate, error) {
	return listTaggedDates(ctx, s.db, startDate, endDate)
}

func (t *Tx) ListTaggedDates(ctx context.Context, startDate, endDate string) ([]*domain.TaggedDate, error) {
	return listTaggedDates(ctx, t.tx, startDate, endDate)
}

func listDatesMatchingAny(ctx context.Context, db dbInterface, tagIDs []string, startDate, endDate string) ([]string, error) {
	if len(tagIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(
		`SELECT DISTINCT date FROM associations
		 WHERE tag_id IN (?) AND date >= ? AND date <= ?
		 ORDER BY date ASC`, tagIDs, startDate, endDate)
	if err != nil {
		return nil, err
	}
	var dates []string
	if err := db.SelectContext(ctx, &dates, db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return dates, nil
}

func (s *Store) ListDatesMatchingAny(ctx context.Context, tagIDs []string, startDate, endDate string) ([]string, error) {
	return listDatesMatchingAny(ctx, s.db, tagIDs, startDate, endDate)
}

func (t *Tx) ListDatesMatchingAny(ctx context.Context, tagIDs []string, startDate, endDate string) ([]string, error) {
	return listDatesMatchingAny(ctx, t.tx, tagIDs, startDate, endDate)
}

// listDatesMatchingAll counts live associations per date among the requested
// tags and keeps the dates whose count equals the number of distinct tags.
func listDatesMatchingAll(ctx context.Context, db dbInterface, tagIDs []string, startDate, endDate string) ([]string, error) {
	if len(tagIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(
		`SELECT date FROM associations
		 WHERE tag_id IN (?) AND date >= ? AND date <= ?
		 GROUP BY date
		 HAVING COUNT(DISTINCT tag_id) = ?
		 ORDER BY date ASC`, tagIDs, startDate, endDate, len(tagIDs))
	if err != nil {
		return nil, err
	}
	var dates []string
	if err := db.SelectContext(ctx, &dates, db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return dates, nil
}

func (s *Store) ListDatesMatchingAll(ctx context.Context, tagIDs []string, startDate, endDate string) ([]string, error) {
	return listDatesMatchingAll(ctx, s.db, tagIDs, startDate, endDate)
}

func (t *Tx) ListDatesMatchingAll(ctx context.Context, tagIDs []string, startDate, endDate string) ([]string, error) {
	return listDatesMatchingAll(ctx, t.tx, tagIDs, startDate, endDate)
}

// ============================================
// Entries
// ============================================

// entryRow flattens an entry and its optional detail records into one table
// row.
type entryRow struct {
	ID            string         `db:"id"`
	Type          string         `db:"type"`
	Date          string         `db:"date"`
	Time          string         `db:"time"`
	Timestamp     sql.NullTime   `db:"timestamp"`
	BMConsistency sql.NullInt64  `db:"bm_consistency"`
	BMUrgency     sql.NullInt64  `db:"bm_urgency"`
	BMNotes       sql.NullString `db:"bm_notes"`
	NoteCategory  sql.NullString `db:"note_category"`
	NoteContent   sql.NullString `db:"note_content"`
	NoteTags      sql.NullString `db:"note_tags"`
}

const entryColumns = `id, type, date, time, timestamp, bm_consistency, bm_urgency, bm_notes, note_category, note_content, note_tags`

func (r *entryRow) toDomain() (*domain.Entry, error) {
	entry := &domain.Entry{
		ID:   r.ID,
		Type: r.Type,
		Date: r.Date,
		Time: r.Time,
	}
	if r.Timestamp.Valid {
		entry.Timestamp = r.Timestamp.Time
	}
	switch r.Type {
	case domain.EntryTypeBowelMovement:
		bm := &domain.BowelMovement{
			Consistency: int(r.BMConsistency.Int64),
			Urgency:     int(r.BMUrgency.Int64),
		}
		if r.BMNotes.Valid {
			notes := r.BMNotes.String
			bm.Notes = &notes
		}
		entry.BowelMovement = bm
	case domain.EntryTypeNote:
		note := &domain.Note{
			Category: r.NoteCategory.String,
			Content:  r.NoteContent.String,
		}
		if r.NoteTags.Valid && r.NoteTags.String != "" {
			if err := json.Unmarshal([]byte(r.NoteTags.String), &note.Tags); err != nil {
				return nil, fmt.Errorf("decoding note tags: %w", err)
			}
		}
		entry.Note = note
	}
	return entry, nil
}

func entryArgs(entry *domain.Entry) ([]any, error) {
	var (
		bmConsistency, bmUrgency                     any
		bmNotes, noteCategory, noteContent, noteTags any
	)
	if bm := entry.BowelMovement; bm != nil {
		bmConsistency = bm.Consistency
		bmUrgency = bm.Urgency
		if bm.Notes != nil {
			bmNotes = *bm.Notes
		}
	}
	if note := entry.Note; note != nil {
		noteCategory = note.Category
		noteContent = note.Content
		if len(note.Tags) > 0 {
			encoded, err := json.Marshal(note.Tags)
			if err != nil {
				return nil, fmt.Errorf("encoding note tags: %w", err)
			}
			noteTags = string(encoded)
		}
	}
	return []any{
		entry.ID, entry.Type, entry.Date, entry.Time, entry.Timestamp,
		bmConsistency, bmUrgency, bmNotes, noteCategory, noteContent, noteTags,
	}, nil
}

func createEntry(ctx context.Context, db dbInterface, entry *domain.Entry) error {
	args, err := entryArgs(entry)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO entries (`+entryColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`, args...)
	return wrapUniqueError(err)
}

func (s *Store) CreateEntry(ctx context.Context, entry *domain.Entry) error {
	return createEntry(ctx, s.db, entry)
}

func (t *Tx) CreateEntry(ctx context.Context, entry *domain.Entry) error {
	return createEntry(ctx, t.tx, entry)
}

func getEntry(ctx context.Context, db dbInterface, id string) (*domain.Entry, error) {
	var row entryRow
	err := db.GetContext(ctx, &row,
		`SELECT `+entryColumns+` FROM entries WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain()
}

func (s *Store) GetEntry(ctx context.Context, id string) (*domain.Entry, error) {
	return getEntry(ctx, s.db, id)
}

func (t *Tx) GetEntry(ctx context.Context, id string) (*domain.Entry, error) {
	return getEntry(ctx, t.tx, id)
}

func updateEntry(ctx context.Context, db dbInterface, entry *domain.Entry) error {
	args, err := entryArgs(entry)
	if err != nil {
		return err
	}
	// entryArgs puts the id first; move it to the end for the WHERE clause.
	args = append(args[1:], args[0])
	result, err := db.ExecContext(ctx,
		`UPDATE entries SET type = $1, date = $2, time = $3, timestamp = $4,
		 bm_consistency = $5, bm_urgency = $6, bm_notes = $7,
		 note_category = $8, note_content = $9, note_tags = $10
		 WHERE id = $11`, args...)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) UpdateEntry(ctx context.Context, entry *domain.Entry) error {
	return updateEntry(ctx, s.db, entry)
}

func (t *Tx) UpdateEntry(ctx context.Context, entry *domain.Entry) error {
	return updateEntry(ctx, t.tx, entry)
}

func deleteEntry(ctx context.Context, db dbInterface, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM entries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	return deleteEntry(ctx, s.db, id)
}

func (t *Tx) DeleteEntry(ctx context.Context, id string) error {
	return deleteEntry(ctx, t.tx, id)
}

func selectEntries(ctx context.Context, db dbInterface, query string, args ...any) ([]*domain.Entry, error) {
	var rows []entryRow
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	entries := make([]*domain.Entry, 0, len(rows))
	for i := range rows {
		entry, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func listEntriesInDateRange(ctx context.Context, db dbInterface, startDate, endDate string) ([]*domain.Entry, error) {
	return selectEntries(ctx, db,
		`SELECT `+entryColumns+` FROM entries
		 WHERE date >= $1 AND date <= $2
		 ORDER BY timestamp DESC`, startDate, endDate)
}

func (s *Store) ListEntriesInDateRange(ctx context.Context, startDate, endDate string) ([]*domain.Entry, error) {
	return listEntriesInDateRange(ctx, s.db, startDate, endDate)
}

func (t *Tx) ListEntriesInDateRange(ctx context.Context, startDate, endDate string) ([]*domain.Entry, error) {
	return listEntriesInDateRange(ctx, t.tx, startDate, endDate)
}

func listEntriesForDate(ctx context.Context, db dbInterface, date string) ([]*domain.Entry, error) {
	return selectEntries(ctx, db,
		`SELECT `+entryColumns+` FROM entries
		 WHERE date = $1
		 ORDER BY timestamp DESC`, date)
}

func (s *Store) ListEntriesForDate(ctx context.Context, date string) ([]*domain.Entry, error) {
	return listEntriesForDate(ctx, s.db, date)
}

func (t *Tx) ListEntriesForDate(ctx context.Context, date string) ([]*domain.Entry, error) {
	return listEntriesForDate(ctx, t.tx, date)
}
