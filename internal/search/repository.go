package search

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// historyLimit is how many executed searches the history keeps.
const historyLimit = 20

// HistoryRepository persists the bounded search execution history.
type HistoryRepository interface {
	// Record stores an executed search, trimming the history to its bound.
	Record(ctx context.Context, entry *HistoryEntry) error

	// Recent returns the history, newest first.
	Recent(ctx context.Context) ([]HistoryEntry, error)

	// Clear removes the entire history.
	Clear(ctx context.Context) error
}

// SavedSearchRepository persists named saved searches.
type SavedSearchRepository interface {
	// Save stores a saved search, generating an id if absent.
	Save(ctx context.Context, s *SavedSearch) error

	// List returns all saved searches, newest first.
	List(ctx context.Context) ([]SavedSearch, error)

	// Delete removes a saved search by id.
	// Returns ErrSavedSearchNotFound if it does not exist.
	Delete(ctx context.Context, id string) error
}

// SQLiteHistoryRepository implements HistoryRepository using SQLite.
type SQLiteHistoryRepository struct {
	db *sql.DB
}

// NewSQLiteHistoryRepository creates a SQLite-backed history repository.
func NewSQLiteHistoryRepository(db *sql.DB) *SQLiteHistoryRepository {
	return &SQLiteHistoryRepository{db: db}
}

// Record stores an executed search and trims the history to the newest
// entries within the bound.
func (r *SQLiteHistoryRepository) Record(ctx context.Context, entry *HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.ExecutedAt.IsZero() {
		entry.ExecutedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	_, err = tx.ExecContext(ctx, `
		INSERT INTO search_history (id, property, operator, value, tenant_id, result_count, query_time_ms, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Property,
		string(entry.Operator),
		entry.Value,
		nullableString(entry.TenantID),
		entry.ResultCount,
		entry.QueryTimeMS,
		entry.ExecutedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting history entry: %w", err)
	}

	// Keep only the newest entries.
	_, err = tx.ExecContext(ctx, `
		DELETE FROM search_history
		WHERE id NOT IN (
			SELECT id FROM search_history ORDER BY executed_at DESC, id DESC LIMIT ?
		)`, historyLimit)
	if err != nil {
		return fmt.Errorf("trimming history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing history entry: %w", err)
	}
	return nil
}

// Recent returns the history, newest first.
func (r *SQLiteHistoryRepository) Recent(ctx context.Context) ([]HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, property, operator, value, tenant_id, result_count, query_time_ms, executed_at
		FROM search_history
		ORDER BY executed_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Best effort cleanup

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var operator, executedAt string
		var tenantID sql.NullString
		if err := rows.Scan(&e.ID, &e.Property, &operator, &e.Value, &tenantID, &e.ResultCount, &e.QueryTimeMS, &executedAt); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		e.Operator = Operator(operator)
		e.TenantID = tenantID.String
		e.ExecutedAt, _ = time.Parse(time.RFC3339, executedAt) //nolint:errcheck // Format is controlled
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history: %w", err)
	}
	return entries, nil
}

// Clear removes the entire history.
func (r *SQLiteHistoryRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM search_history"); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	return nil
}

// SQLiteSavedSearchRepository implements SavedSearchRepository using SQLite.
type SQLiteSavedSearchRepository struct {
	db *sql.DB
}

// NewSQLiteSavedSearchRepository creates a SQLite-backed saved search repository.
func NewSQLiteSavedSearchRepository(db *sql.DB) *SQLiteSavedSearchRepository {
	return &SQLiteSavedSearchRepository{db: db}
}

// Save stores a saved search, generating an id if absent.
func (r *SQLiteSavedSearchRepository) Save(ctx context.Context, s *SavedSearch) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO saved_searches (id, name, property, operator, value, tenant_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID,
		s.Name,
		s.Property,
		string(s.Operator),
		s.Value,
		nullableString(s.TenantID),
		s.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting saved search: %w", err)
	}
	return nil
}

// List returns all saved searches, newest first.
func (r *SQLiteSavedSearchRepository) List(ctx context.Context) ([]SavedSearch, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, property, operator, value, tenant_id, created_at
		FROM saved_searches
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying saved searches: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Best effort cleanup

	var searches []SavedSearch
	for rows.Next() {
		var s SavedSearch
		var operator, createdAt string
		var tenantID sql.NullString
		if err := rows.Scan(&s.ID, &s.Name, &s.Property, &operator, &s.Value, &tenantID, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning saved search row: %w", err)
		}
		s.Operator = Operator(operator)
		s.TenantID = tenantID.String
		s.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // Format is controlled
		searches = append(searches, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating saved searches: %w", err)
	}
	return searches, nil
}

// Delete removes a saved search by id.
func (r *SQLiteSavedSearchRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM saved_searches WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting saved search: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return ErrSavedSearchNotFound
	}
	return nil
}

// nullableString maps "" to NULL for optional columns.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Interface compliance checks.
var (
	_ HistoryRepository     = (*SQLiteHistoryRepository)(nil)
	_ SavedSearchRepository = (*SQLiteSavedSearchRepository)(nil)
)
