package scanindex

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"odea/internal/archive"
	"odea/internal/identity"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped when the schema changes. The index is advisory,
// so a mismatched database is simply recreated.
const schemaVersion = 1

// IndexFile is the database filename inside the archive state directory.
const IndexFile = "index.db"

// Store is the sqlite-backed scan index for one archive root.
type Store struct {
	db   *sql.DB
	root string
}

// Open connects to the archive's index database, creating or recreating the
// schema as needed.
func Open(root string) (*Store, error) {
	stateDir, err := archive.EnsureStateDir(root)
	if err != nil {
		return nil, err
	}

	dbPath := filepath.Join(stateDir, IndexFile)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open scan index: %w", err)
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

	store := &Store{db: db, root: root}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists > 0 {
		var version int
		if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
			return fmt.Errorf("read schema version: %w", err)
		}
		if version == schemaVersion {
			return nil
		}
		// Stale schema: drop everything and start over. Nothing in the
		// index is authoritative.
		if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS payload_files; DROP TABLE IF EXISTS schema_version"); err != nil {
			return fmt.Errorf("reset schema: %w", err)
		}
	}

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

// Entry is one indexed payload file.
type Entry struct {
	Path       string
	Identifier string
	Format     string
}

// Rebuild replaces the index contents with a fresh walk of the data tree.
// Untagged files are not indexed; they have no identifier to look up.
func (s *Store) Rebuild(ctx context.Context) (int, error) {
	var entries []Entry
	dataRoot := archive.Join(s.root, archive.DataDir)
	err := filepath.WalkDir(dataRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		id, ok := identity.FindIdentifier(d.Name())
		if !ok {
			return nil
		}
		rel, err := archive.Rel(s.root, p)
		if err != nil {
			return err
		}
		c := identity.Decompose(rel, id)
		entries = append(entries, Entry{Path: rel, Identifier: id, Format: c.FormatTag})
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("walk %s: %w", archive.DataDir, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin rebuild tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM payload_files"); err != nil {
		return 0, fmt.Errorf("clear index: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	for _, entry := range entries {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO payload_files (path, identifier, format, scanned_at) VALUES (?, ?, ?, ?)",
			entry.Path, entry.Identifier, entry.Format, now,
		); err != nil {
			return 0, fmt.Errorf("index %s: %w", entry.Path, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit rebuild: %w", err)
	}
	return len(entries), nil
}

// Record upserts one payload path, keeping the index coherent after a tag
// or rename without a full rebuild.
func (s *Store) Record(ctx context.Context, entry Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payload_files (path, identifier, format, scanned_at) VALUES (?, ?, ?, ?)
         ON CONFLICT(path) DO UPDATE SET identifier = excluded.identifier,
             format = excluded.format, scanned_at = excluded.scanned_at`,
		entry.Path, entry.Identifier, entry.Format, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("record %s: %w", entry.Path, err)
	}
	return nil
}

// Invalidate removes one path from the index, for renames and deletions.
func (s *Store) Invalidate(ctx context.Context, path string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM payload_files WHERE path = ?", path); err != nil {
		return fmt.Errorf("invalidate %s: %w", path, err)
	}
	return nil
}

// Lookup returns the indexed entries for an identifier, sorted by path.
func (s *Store) Lookup(ctx context.Context, identifier string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT path, identifier, format FROM payload_files WHERE identifier = ? ORDER BY path",
		identifier,
	)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", identifier, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.Path, &entry.Identifier, &entry.Format); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

// SourcePath returns the indexed source-format path for an identifier.
func (s *Store) SourcePath(ctx context.Context, identifier string) (string, bool, error) {
	var path string
	err := s.db.QueryRowContext(ctx,
		"SELECT path FROM payload_files WHERE identifier = ? AND format = ? ORDER BY path LIMIT 1",
		identifier, identity.FormatSource,
	).Scan(&path)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("source path %s: %w", identifier, err)
	}
	return path, true, nil
}

// Count reports how many payload files are indexed.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM payload_files").Scan(&count); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return count, nil
}

// Paths implements the catalog Locator against the index.
func (s *Store) Paths(identifier string) ([]string, error) {
	entries, err := s.Lookup(context.Background(), identifier)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		paths = append(paths, entry.Path)
	}
	return paths, nil
}
