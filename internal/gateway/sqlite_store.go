package gateway

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"pdv-reconciliation/internal/domain"
)

// ErrRunNotFound is returned by GetRun for an unknown run id.
var ErrRunNotFound = errors.New("batch run not found")

const schema = `
CREATE TABLE IF NOT EXISTS local_records (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	reference   TEXT NOT NULL,
	store_id    TEXT NOT NULL DEFAULT '',
	occurred_at INTEGER,
	payload     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_local_records_store_time ON local_records (store_id, occurred_at);

CREATE TABLE IF NOT EXISTS batch_runs (
	id          TEXT PRIMARY KEY,
	started_at  TEXT NOT NULL,
	finished_at TEXT NOT NULL,
	summary     TEXT NOT NULL,
	filters     TEXT NOT NULL
);
`

// SQLiteStore keeps the local record pool and the history of batch runs.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an open database handle.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// OpenSQLiteStore opens the database file at path and makes sure the schema exists.
func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	store := NewSQLiteStore(db)
	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates the tables the store needs.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("schema migration failed: %w", err)
	}
	return nil
}

// SaveLocalRecord stores a raw local record, indexed by the store and timestamp of its normalized form.
func (s *SQLiteStore) SaveLocalRecord(ctx context.Context, raw domain.RawRecord, rec domain.CanonicalRecord) error {
	payload, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("could not encode local record %s: %w", rec.Reference(), err)
	}

	var occurredAt sql.NullInt64
	if !rec.Timestamp.IsZero() {
		occurredAt = sql.NullInt64{Int64: rec.Timestamp.UnixMilli(), Valid: true}
	}

	query := `
		INSERT INTO local_records (reference, store_id, occurred_at, payload)
		VALUES (?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, rec.Reference(), rec.Store.ID, occurredAt, string(payload)); err != nil {
		return fmt.Errorf("database insert failed: %w", err)
	}
	return nil
}

// GetLocalRecords returns the stored records of query.StoreID whose timestamp falls in [From, To).
// Records without a store or timestamp are always returned, since they can still match by key.
func (s *SQLiteStore) GetLocalRecords(ctx context.Context, query domain.LocalQuery) ([]domain.RawRecord, error) {
	var from, to int64
	if !query.From.IsZero() {
		from = query.From.UnixMilli()
	}
	if !query.To.IsZero() {
		to = query.To.UnixMilli()
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT payload
		FROM local_records
		WHERE (? = '' OR store_id = ? OR store_id = '')
		  AND (? = 0 OR occurred_at IS NULL OR occurred_at >= ?)
		  AND (? = 0 OR occurred_at IS NULL OR occurred_at < ?)
		ORDER BY id
	`, query.StoreID, query.StoreID, from, from, to, to)
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	defer rows.Close()

	var records []domain.RawRecord
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan local record: %w", err)
		}
		record, err := decodeObject([]byte(payload))
		if err != nil {
			return nil, fmt.Errorf("could not decode stored record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	return records, nil
}

// RecordRun stores the metadata of a finished batch run.
func (s *SQLiteStore) RecordRun(ctx context.Context, run domain.BatchRun) error {
	summary, err := json.Marshal(run.Summary)
	if err != nil {
		return fmt.Errorf("could not encode run summary: %w", err)
	}
	filters, err := json.Marshal(run.Filters)
	if err != nil {
		return fmt.Errorf("could not encode run filters: %w", err)
	}

	query := `
		INSERT INTO batch_runs (id, started_at, finished_at, summary, filters)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query, run.ID,
		run.StartedAt.UTC().Format(time.RFC3339Nano), run.FinishedAt.UTC().Format(time.RFC3339Nano),
		string(summary), string(filters))
	if err != nil {
		return fmt.Errorf("database insert failed: %w", err)
	}
	return nil
}

// GetRun loads a batch run by id.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*domain.BatchRun, error) {
	query := `
		SELECT id, started_at, finished_at, summary, filters
		FROM batch_runs
		WHERE id = ?
	`

	var (
		run                  domain.BatchRun
		startedAt, finished  string
		summary, filtersJSON string
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(&run.ID, &startedAt, &finished, &summary, &filtersJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		return nil, fmt.Errorf("database query failed: %w", err)
	}

	if run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
		return nil, fmt.Errorf("could not parse started_at '%s': %w", startedAt, err)
	}
	if run.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
		return nil, fmt.Errorf("could not parse finished_at '%s': %w", finished, err)
	}
	if err := json.Unmarshal([]byte(summary), &run.Summary); err != nil {
		return nil, fmt.Errorf("could not decode run summary: %w", err)
	}
	if err := json.Unmarshal([]byte(filtersJSON), &run.Filters); err != nil {
		return nil, fmt.Errorf("could not decode run filters: %w", err)
	}
	return &run, nil
}
