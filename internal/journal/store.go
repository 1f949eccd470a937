package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"wardrobe/internal/upload"
	"wardrobe/internal/wardrobe"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes incompatibly.
const schemaVersion = 1

// ErrSchemaMismatch indicates the journal was written by another schema version.
var ErrSchemaMismatch = errors.New("journal schema version mismatch")

const defaultListLimit = 20

// Entry is one recorded upload session.
type Entry struct {
	ID        int64
	SessionID string
	FileName  string
	Origin    string
	Bytes     int64
	Stage     upload.Stage
	FailedAt  upload.Stage
	ItemID    int64
	Category  wardrobe.Category
	Message   string
	StartedAt time.Time
	Duration  time.Duration
}

// Succeeded reports whether the session reached done.
func (e Entry) Succeeded() bool {
	return e.Stage == upload.StageDone
}

// Store is the SQLite-backed upload journal.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the journal at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("journal path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}
	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record appends a session outcome. It satisfies upload.Recorder.
func (s *Store) Record(ctx context.Context, outcome upload.Outcome) error {
	started := outcome.StartedAt
	if started.IsZero() {
		started = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO upload_sessions (
            session_id, file_name, origin, bytes, stage, failed_at,
            item_id, category, message, started_at, duration_ms
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		outcome.SessionID,
		outcome.FileName,
		nullableString(outcome.Origin),
		outcome.Bytes,
		string(outcome.Stage),
		nullableString(string(outcome.FailedAt)),
		nullableInt(outcome.ItemID),
		nullableString(string(outcome.Category)),
		nullableString(outcome.Message),
		started.UTC().Format(time.RFC3339Nano),
		outcome.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert upload session: %w", err)
	}
	return nil
}

// List returns the most recent sessions first. A non-positive limit uses the
// default of 20.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, file_name, origin, bytes, stage, failed_at,
            item_id, category, message, started_at, duration_ms
        FROM upload_sessions ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query upload sessions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e        Entry
			origin   sql.NullString
			failedAt sql.NullString
			itemID   sql.NullInt64
			category sql.NullString
			message  sql.NullString
			started  string
			stage    string
			duration int64
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &e.FileName, &origin, &e.Bytes, &stage, &failedAt,
			&itemID, &category, &message, &started, &duration); err != nil {
			return nil, fmt.Errorf("scan upload session: %w", err)
		}
		e.Origin = origin.String
		e.Stage = upload.Stage(stage)
		e.FailedAt = upload.Stage(failedAt.String)
		e.ItemID = itemID.Int64
		e.Category = wardrobe.Category(category.String)
		e.Message = message.String
		e.Duration = time.Duration(duration) * time.Millisecond
		if ts, err := time.Parse(time.RFC3339Nano, started); err == nil {
			e.StartedAt = ts
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate upload sessions: %w", err)
	}
	return entries, nil
}

// Clear removes every recorded session and reports how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM upload_sessions")
	if err != nil {
		return 0, fmt.Errorf("clear upload sessions: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists); err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset history)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return tx.Commit()
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableInt(value int64) any {
	if value == 0 {
		return nil
	}
	return value
}
