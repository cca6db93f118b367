package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/DenisMSouza/abtest-sub000/types"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the database at dsn and runs migrations.
//
// Parameters:
//   - dsn: SQLite DSN, e.g. "abtest.db" or ":memory:"
//
// Returns:
//   - *SQLiteStore: Initialized store
//   - error: Open or migration failure
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite serializes writers anyway; a single pooled connection avoids
	// SQLITE_BUSY under concurrent writes and makes ":memory:" databases
	// behave (each new connection would otherwise get its own database).
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS experiments (
			experiment_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			definition TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS assignments (
			assignment_id TEXT PRIMARY KEY,
			experiment_id TEXT NOT NULL,
			visitor_id TEXT NOT NULL,
			variation TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (experiment_id, visitor_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_assignments_experiment ON assignments(experiment_id, visitor_id)`,
		`CREATE TABLE IF NOT EXISTS success_events (
			event_id TEXT PRIMARY KEY,
			experiment_id TEXT NOT NULL,
			user_id TEXT,
			event TEXT NOT NULL,
			value REAL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_success_experiment ON success_events(experiment_id, created_at)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// PutExperiment creates or replaces an experiment definition.
func (s *SQLiteStore) PutExperiment(ctx context.Context, exp types.Experiment) error {
	if exp.ID == "" {
		return types.ErrExperimentRequired
	}

	definition, err := json.Marshal(exp)
	if err != nil {
		return fmt.Errorf("failed to encode experiment %s: %w", exp.ID, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO experiments (experiment_id, name, definition) VALUES (?, ?, ?)
		 ON CONFLICT(experiment_id) DO UPDATE SET name = excluded.name, definition = excluded.definition`,
		exp.ID, exp.Name, string(definition))
	if err != nil {
		return fmt.Errorf("failed to store experiment %s: %w", exp.ID, err)
	}

	return nil
}

// GetExperiment returns the definition for id.
func (s *SQLiteStore) GetExperiment(ctx context.Context, id string) (*types.Experiment, error) {
	var definition string
	err := s.db.QueryRowContext(ctx,
		`SELECT definition FROM experiments WHERE experiment_id = ?`, id).Scan(&definition)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("experiment %s: %w", id, types.ErrExperimentNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load experiment %s: %w", id, err)
	}

	var exp types.Experiment
	if err := json.Unmarshal([]byte(definition), &exp); err != nil {
		return nil, fmt.Errorf("failed to decode experiment %s: %w", id, err)
	}

	return &exp, nil
}

// GetAssignment returns the assignment for (experimentID, visitorID).
func (s *SQLiteStore) GetAssignment(ctx context.Context, experimentID, visitorID string) (*types.Assignment, error) {
	var a types.Assignment
	var createdAt time.Time

	err := s.db.QueryRowContext(ctx,
		`SELECT experiment_id, variation, created_at FROM assignments
		 WHERE experiment_id = ? AND visitor_id = ?`,
		experimentID, visitorID).Scan(&a.Experiment, &a.Variation, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load assignment: %w", err)
	}
	a.Timestamp = createdAt

	return &a, nil
}

// CreateAssignment inserts an assignment unless one already exists.
//
// The insert relies on the UNIQUE(experiment_id, visitor_id) constraint with
// ON CONFLICT DO NOTHING, so two concurrent writers for the same visitor
// cannot both create a row; the loser reads back the winner's record.
func (s *SQLiteStore) CreateAssignment(ctx context.Context, experimentID, visitorID, variation string) (types.Assignment, bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO assignments (assignment_id, experiment_id, visitor_id, variation)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(experiment_id, visitor_id) DO NOTHING`,
		uuid.NewString(), experimentID, visitorID, variation)
	if err != nil {
		return types.Assignment{}, false, fmt.Errorf("failed to insert assignment: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return types.Assignment{}, false, fmt.Errorf("failed to read insert result: %w", err)
	}

	stored, err := s.GetAssignment(ctx, experimentID, visitorID)
	if err != nil {
		return types.Assignment{}, false, err
	}
	if stored == nil {
		return types.Assignment{}, false, fmt.Errorf("assignment vanished after insert for experiment %s", experimentID)
	}

	return *stored, affected > 0, nil
}

// RecordSuccess stores a success event for an experiment.
func (s *SQLiteStore) RecordSuccess(ctx context.Context, experimentID string, event types.SuccessEvent) error {
	var value sql.NullFloat64
	if event.Value != nil {
		value = sql.NullFloat64{Float64: *event.Value, Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO success_events (event_id, experiment_id, user_id, event, value)
		 VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), experimentID, event.UserID, event.Event, value)
	if err != nil {
		return fmt.Errorf("failed to record success event: %w", err)
	}

	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
