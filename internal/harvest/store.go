package harvest

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/softwarepub/loam/internal/ld"
)

//go:embed schema.sql
var schemaSQL string

const currentSchemaVersion = 1

// Store is the SQLite-backed harvest cache. One accumulator per
// source can be saved and loaded; saving a source replaces its
// previous cached state atomically.
type Store struct {
	db *sql.DB
}

// Open creates or opens the harvest cache at the given path.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// This function is idempotent - safe to call multiple times.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to cache: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save writes an accumulator's entries and context fragments to the
// cache, replacing any previously saved state for the same source.
// The write is transactional: a failed save leaves the prior state
// intact.
func (s *Store) Save(ctx context.Context, acc *Accumulator) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save %s: %w", acc.Source(), err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM harvest_entries WHERE source = ?`, acc.Source()); err != nil {
		return fmt.Errorf("save %s: %w", acc.Source(), err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM harvest_contexts WHERE source = ?`, acc.Source()); err != nil {
		return fmt.Errorf("save %s: %w", acc.Source(), err)
	}

	for seq, e := range acc.Entries() {
		value, err := ld.MarshalCanonicalValue(e.Value)
		if err != nil {
			return fmt.Errorf("save %s: entry %q: %w", acc.Source(), e.Key, err)
		}
		attrs, err := ld.MarshalCanonicalValue(attrsToPlain(e.Attrs))
		if err != nil {
			return fmt.Errorf("save %s: entry %q: %w", acc.Source(), e.Key, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO harvest_entries (source, seq, key, value, attrs)
			VALUES (?, ?, ?, ?, ?)
		`, acc.Source(), seq, e.Key, string(value), string(attrs)); err != nil {
			return fmt.Errorf("save %s: entry %q: %w", acc.Source(), e.Key, err)
		}
	}

	for pos, f := range acc.Fragments() {
		terms, err := ld.MarshalCanonicalValue(termsToPlain(f.Terms))
		if err != nil {
			return fmt.Errorf("save %s: context %d: %w", acc.Source(), pos, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO harvest_contexts (source, position, url, terms)
			VALUES (?, ?, ?, ?)
		`, acc.Source(), pos, f.URL, string(terms)); err != nil {
			return fmt.Errorf("save %s: context %d: %w", acc.Source(), pos, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save %s: %w", acc.Source(), err)
	}
	return nil
}

// Load rebuilds a source's accumulator from the cache. A source with
// no cached state yields an empty accumulator, not an error.
func (s *Store) Load(ctx context.Context, source string) (*Accumulator, error) {
	entries, err := s.loadEntries(ctx, source)
	if err != nil {
		return nil, err
	}
	fragments, err := s.loadContexts(ctx, source)
	if err != nil {
		return nil, err
	}
	return FromEntries(source, entries, fragments), nil
}

// Sources lists the sources with cached state, sorted by name.
func (s *Store) Sources(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT source FROM harvest_entries ORDER BY source`)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var src string
		if err := rows.Scan(&src); err != nil {
			return nil, fmt.Errorf("list sources: %w", err)
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

// Clean drops a source's cached state. Cleaning an unknown source is
// a no-op.
func (s *Store) Clean(ctx context.Context, source string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("clean %s: %w", source, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM harvest_entries WHERE source = ?`, source); err != nil {
		return fmt.Errorf("clean %s: %w", source, err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM harvest_contexts WHERE source = ?`, source); err != nil {
		return fmt.Errorf("clean %s: %w", source, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("clean %s: %w", source, err)
	}
	return nil
}

func (s *Store) loadEntries(ctx context.Context, source string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, value, attrs FROM harvest_entries
		WHERE source = ? ORDER BY seq
	`, source)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", source, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var key, valueJSON, attrsJSON string
		if err := rows.Scan(&key, &valueJSON, &attrsJSON); err != nil {
			return nil, fmt.Errorf("load %s: %w", source, err)
		}
		var value any
		if err := json.Unmarshal([]byte(valueJSON), &value); err != nil {
			return nil, fmt.Errorf("load %s: entry %q: %w", source, key, err)
		}
		attrs := Attrs{}
		if err := json.Unmarshal([]byte(attrsJSON), &attrs); err != nil {
			return nil, fmt.Errorf("load %s: entry %q: %w", source, key, err)
		}
		entries = append(entries, Entry{Key: key, Value: value, Attrs: attrs})
	}
	return entries, rows.Err()
}

func (s *Store) loadContexts(ctx context.Context, source string) ([]ld.Fragment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT url, terms FROM harvest_contexts
		WHERE source = ? ORDER BY position
	`, source)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", source, err)
	}
	defer rows.Close()

	var fragments []ld.Fragment
	for rows.Next() {
		var url, termsJSON string
		if err := rows.Scan(&url, &termsJSON); err != nil {
			return nil, fmt.Errorf("load %s: %w", source, err)
		}
		terms := map[string]string{}
		if err := json.Unmarshal([]byte(termsJSON), &terms); err != nil {
			return nil, fmt.Errorf("load %s: context: %w", source, err)
		}
		fragments = append(fragments, ld.Fragment{URL: url, Terms: terms})
	}
	return fragments, rows.Err()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// attrsToPlain converts Attrs to a map[string]any for canonical JSON
// serialization.
func attrsToPlain(attrs Attrs) map[string]any {
	out := make(map[string]any, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}

func termsToPlain(terms map[string]string) map[string]any {
	out := make(map[string]any, len(terms))
	for k, v := range terms {
		out[k] = v
	}
	return out
}
