// Package embedcache persists chunk embeddings in SQLite so repeated runs over
// the same text do not call the embeddings endpoint again.
//
// Entries are keyed by the SHA-256 of the model name and chunk text. A nil
// *Store is a valid disabled cache: lookups miss and writes are dropped.
package embedcache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one cached embedding.
type Entry struct {
	Key        string
	Model      string
	Tokens     int
	Dimensions int
	Vector     []float64
	CreatedAt  time.Time
}

// Store manages embedding persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the cache database at path and applies migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure cache directory: %w", err)
		}
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
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Key derives the cache key for text embedded with model.
func Key(model, text string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

// Lookup returns the entry stored under key. The boolean is false on a miss.
func (s *Store) Lookup(ctx context.Context, key string) (Entry, bool, error) {
	if s == nil {
		return Entry{}, false, nil
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT key, model, tokens, dimensions, vector_json, created_at FROM embeddings WHERE key = ?`, key)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("lookup embedding: %w", err)
	}
	return entry, true, nil
}

// Store inserts or replaces an entry. Empty vectors are rejected.
func (s *Store) Store(ctx context.Context, entry Entry) error {
	if s == nil {
		return nil
	}
	if entry.Key == "" {
		return errors.New("store embedding: key required")
	}
	if len(entry.Vector) == 0 {
		return errors.New("store embedding: vector required")
	}
	encoded, err := json.Marshal(entry.Vector)
	if err != nil {
		return fmt.Errorf("encode vector: %w", err)
	}
	created := entry.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO embeddings (key, model, tokens, dimensions, vector_json, created_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(key) DO UPDATE SET
            model = excluded.model,
            tokens = excluded.tokens,
            dimensions = excluded.dimensions,
            vector_json = excluded.vector_json,
            created_at = excluded.created_at`,
		entry.Key,
		entry.Model,
		entry.Tokens,
		len(entry.Vector),
		string(encoded),
		created.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("store embedding: %w", err)
	}
	return nil
}

// List returns all entries, newest first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	if s == nil {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, model, tokens, dimensions, vector_json, created_at FROM embeddings ORDER BY created_at DESC, key`)
	if err != nil {
		return nil, fmt.Errorf("list embeddings: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan embedding: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate embeddings: %w", err)
	}
	return entries, nil
}

// Clear removes every entry and returns how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	if s == nil {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM embeddings`)
	if err != nil {
		return 0, fmt.Errorf("clear embeddings: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		entry      Entry
		vectorJSON string
		created    string
	)
	if err := row.Scan(&entry.Key, &entry.Model, &entry.Tokens, &entry.Dimensions, &vectorJSON, &created); err != nil {
		return Entry{}, err
	}
	if err := json.Unmarshal([]byte(vectorJSON), &entry.Vector); err != nil {
		return Entry{}, fmt.Errorf("decode vector for %s: %w", entry.Key, err)
	}
	if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
		entry.CreatedAt = ts
	}
	return entry, nil
}
