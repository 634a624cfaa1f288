package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Entry is one recorded signing run.
type Entry struct {
	ID             string
	CreatedAt      time.Time
	PKID           string
	FileCount      int
	ManifestDigest string
	OutputPath     string
}

// Store manages signing-run persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database at path and applies
// the schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts a completed signing run and returns it with its assigned id
// and timestamp.
func (s *Store) Record(ctx context.Context, entry Entry) (Entry, error) {
	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO sign_runs (id, created_at, pkid, file_count, manifest_digest, output_path)
         VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.CreatedAt.Format(time.RFC3339Nano),
		entry.PKID,
		entry.FileCount,
		entry.ManifestDigest,
		entry.OutputPath,
	)
	if err != nil {
		return Entry{}, fmt.Errorf("insert sign run: %w", err)
	}
	return entry, nil
}

// List returns the most recent signing runs, newest first. A non-positive
// limit returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT id, created_at, pkid, file_count, manifest_digest, output_path
              FROM sign_runs ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sign runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var createdAt string
		if err := rows.Scan(&entry.ID, &createdAt, &entry.PKID, &entry.FileCount, &entry.ManifestDigest, &entry.OutputPath); err != nil {
			return nil, fmt.Errorf("scan sign run: %w", err)
		}
		entry.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse sign run timestamp %q: %w", createdAt, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sign runs: %w", err)
	}
	return entries, nil
}
