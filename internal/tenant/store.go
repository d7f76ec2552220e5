package tenant

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Store persists the currently selected tenant across restarts.
// Load returning (nil, nil) means no tenant is selected.
type Store interface {
	// Load retrieves the persisted tenant selection, or nil if none.
	Load(ctx context.Context) (*Tenant, error)

	// Save persists the tenant selection, replacing any previous one.
	Save(ctx context.Context, t *Tenant) error

	// Clear removes the persisted selection.
	Clear(ctx context.Context) error
}

// SQLiteStore implements Store over the single-row tenant_selection table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a SQLite-backed selection store.
// The db parameter should be an open SQLite connection with migrations applied.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Load retrieves the persisted tenant selection.
func (s *SQLiteStore) Load(ctx context.Context) (*Tenant, error) {
	var serialized string
	err := s.db.QueryRowContext(ctx,
		"SELECT tenant_json FROM tenant_selection WHERE id = 1",
	).Scan(&serialized)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading tenant selection: %w", err)
	}

	var t Tenant
	if err := json.Unmarshal([]byte(serialized), &t); err != nil {
		return nil, fmt.Errorf("decoding tenant selection: %w", err)
	}
	return &t, nil
}

// Save persists the tenant selection, replacing any previous one.
func (s *SQLiteStore) Save(ctx context.Context, t *Tenant) error {
	serialized, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encoding tenant selection: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tenant_selection (id, tenant_json, selected_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			tenant_json = excluded.tenant_json,
			selected_at = excluded.selected_at`,
		string(serialized),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving tenant selection: %w", err)
	}
	return nil
}

// Clear removes the persisted selection.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM tenant_selection WHERE id = 1"); err != nil {
		return fmt.Errorf("clearing tenant selection: %w", err)
	}
	return nil
}
