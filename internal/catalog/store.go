package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store is a local SQLite-backed persistence layer for reference records.
// It is a catalog source: record authoring writes here out-of-band, and
// the engine loads an immutable snapshot from it at startup or reload.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	p := filepath.Clean(strings.TrimSpace(path))
	if p == "" {
		return nil, errors.New("missing db path")
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", p)
	if err != nil {
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Put upserts a record. The stored version is bumped past both the incoming
// record's version and any previously stored one, so every write moves the
// aggregate catalog version forward and invalidates resolution caches on the
// next reload.
func (s *Store) Put(ctx context.Context, rec ReferenceRecord) (ReferenceRecord, error) {
	if s == nil || s.db == nil {
		return ReferenceRecord{}, errors.New("store not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	rec.ID = strings.TrimSpace(rec.ID)
	if rec.ID == "" {
		return ReferenceRecord{}, errors.New("missing record id")
	}
	if strings.TrimSpace(rec.FileType) == "" {
		return ReferenceRecord{}, errors.New("missing record file_type")
	}

	var prevVersion int
	err := s.db.QueryRowContext(ctx,
		`SELECT version FROM reference_records WHERE id = ?`, rec.ID).Scan(&prevVersion)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return ReferenceRecord{}, err
	}
	if rec.Version <= prevVersion {
		rec.Version = prevVersion + 1
	}
	if rec.UpdatedAtUnixMs <= 0 {
		rec.UpdatedAtUnixMs = time.Now().UnixMilli()
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return ReferenceRecord{}, err
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO reference_records (id, file_type, category, is_active, version, updated_at_unix_ms, record_json)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  file_type = excluded.file_type,
  category = excluded.category,
  is_active = excluded.is_active,
  version = excluded.version,
  updated_at_unix_ms = excluded.updated_at_unix_ms,
  record_json = excluded.record_json
`, rec.ID, rec.FileType, rec.Category, boolToInt(rec.IsActive), rec.Version, rec.UpdatedAtUnixMs, string(payload))
	if err != nil {
		return ReferenceRecord{}, err
	}
	return rec, nil
}

// List returns records in ID order. With activeOnly set, inactive records
// are filtered at the query.
func (s *Store) List(ctx context.Context, activeOnly bool) ([]ReferenceRecord, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	q := `SELECT record_json FROM reference_records`
	if activeOnly {
		q += ` WHERE is_active = 1`
	}
	q += ` ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ReferenceRecord, 0, 32)
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var rec ReferenceRecord
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, fmt.Errorf("corrupt record payload: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Get loads one record by ID.
func (s *Store) Get(ctx context.Context, id string) (ReferenceRecord, bool, error) {
	if s == nil || s.db == nil {
		return ReferenceRecord{}, false, errors.New("store not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return ReferenceRecord{}, false, errors.New("missing record id")
	}

	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT record_json FROM reference_records WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return ReferenceRecord{}, false, nil
	}
	if err != nil {
		return ReferenceRecord{}, false, err
	}
	var rec ReferenceRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return ReferenceRecord{}, false, fmt.Errorf("corrupt record payload: %w", err)
	}
	return rec, true, nil
}

// Deactivate retires a record from matching without deleting its history.
// The version bump ensures dependent caches invalidate.
func (s *Store) Deactivate(ctx context.Context, id string) error {
	rec, found, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no such record: %s", id)
	}
	rec.IsActive = false
	rec.UpdatedAtUnixMs = time.Now().UnixMilli()
	_, err = s.Put(ctx, rec)
	return err
}

// MaxVersion is the aggregate catalog version across all stored records.
func (s *Store) MaxVersion(ctx context.Context) (int, error) {
	if s == nil || s.db == nil {
		return 0, errors.New("store not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	var v sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(version) FROM reference_records`).Scan(&v); err != nil {
		return 0, err
	}
	return int(v.Int64), nil
}

// Import writes a whole record set, e.g. from a parsed card directory or a
// bundle, upserting one by one. It returns the resulting aggregate catalog
// version so callers can tell whether a live snapshot is stale.
func (s *Store) Import(ctx context.Context, records []ReferenceRecord) (int, error) {
	for _, rec := range records {
		if _, err := s.Put(ctx, rec); err != nil {
			return 0, fmt.Errorf("import %s: %w", rec.ID, err)
		}
	}
	return s.MaxVersion(ctx)
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS reference_records (
  id TEXT PRIMARY KEY,
  file_type TEXT NOT NULL,
  category TEXT NOT NULL DEFAULT '',
  is_active INTEGER NOT NULL DEFAULT 1,
  version INTEGER NOT NULL,
  updated_at_unix_ms INTEGER NOT NULL,
  record_json TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reference_records_active ON reference_records(is_active, id ASC);
`)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
