// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package knowledge splits personas into sections and chunks and keeps them
// in a SQLite index for keyword search and export.
package knowledge

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/persona-mcp/pkg/types"
)

const (
	indexDir = ".index"
	dbFile   = "personas.db"

	defaultMaxResults = 5
)

// Source is the persona storage the index ingests from.
type Source interface {
	Entries() ([]types.PersonaEntry, error)
	Read(name string) (string, error)
}

// Index manages the persona knowledge SQLite database.
type Index struct {
	db         *sql.DB
	src        Source
	maxResults int
	chunkSize  int
}

// DefaultPath returns the database location inside a persona directory.
func DefaultPath(personaDir string) string {
	return filepath.Join(personaDir, indexDir, dbFile)
}

// Open opens or creates the index database at cfg.Path and binds it to src.
// The schema is created if it does not exist.
func Open(cfg types.IndexConfig, src Source) (*Index, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("index path is not configured")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	idx := &Index{
		db:         db,
		src:        src,
		maxResults: maxResults,
		chunkSize:  chunkSize,
	}

	if err := idx.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return idx, nil
}

// Close releases the database connection.
func (idx *Index) Close() error {
	return idx.db.Close()
}

func (idx *Index) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS personas (
			name TEXT PRIMARY KEY,
			title TEXT,
			category TEXT,
			description TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS chunks (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			persona TEXT NOT NULL REFERENCES personas(name) ON DELETE CASCADE,
			section TEXT,
			content TEXT NOT NULL,
			seq INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_persona ON chunks(persona)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			persona TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := idx.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// IngestSummary holds counts from an indexing run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Removed int
	Failed  int
}

// Total returns the number of personas processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Removed + s.Failed
}

// Ingest indexes every persona of the bound source. Personas whose file
// modification time is unchanged since the last run are skipped; personas
// no longer present are removed. One status line per persona goes to w.
func (idx *Index) Ingest(ctx context.Context, w io.Writer) (IngestSummary, error) {
	entries, err := idx.src.Entries()
	if err != nil {
		return IngestSummary{}, fmt.Errorf("listing personas: %w", err)
	}

	var summary IngestSummary
	seen := make(map[string]bool, len(entries))

	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		seen[entry.Name] = true
		modTime := entry.ModTime.UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err := idx.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM indexing_status WHERE persona = ?`, entry.Name,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", entry.Name)
			summary.Skipped++
			continue
		}
		isUpdate := err == nil

		content, err := idx.src.Read(entry.Name)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", entry.Name, err)
			summary.Failed++
			continue
		}

		profile := Parse(types.Persona{Name: entry.Name, Content: content})
		chunks := ChunkProfile(profile, idx.chunkSize)

		if err := idx.ingestPersona(ctx, profile, chunks, modTime); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", entry.Name, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d chunks)\n", entry.Name, len(chunks))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d chunks)\n", entry.Name, len(chunks))
			summary.Indexed++
		}
	}

	stale, err := idx.indexedNames(ctx)
	if err != nil {
		return summary, err
	}
	for _, name := range stale {
		if seen[name] {
			continue
		}
		if err := idx.removePersona(ctx, name); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}
		fmt.Fprintf(w, "removed %s\n", name)
		summary.Removed++
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, removed: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Removed, summary.Failed)

	return summary, nil
}

// Refresh re-ingests the bound source without status output.
func (idx *Index) Refresh(ctx context.Context) error {
	_, err := idx.Ingest(ctx, io.Discard)
	return err
}

func (idx *Index) ingestPersona(ctx context.Context, p Profile, chunks []types.Chunk, modTime string) error {
	tx, err := idx.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE persona = ?`, p.Name); err != nil {
		return fmt.Errorf("deleting old chunks: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO personas (name, title, category, description)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
			title=excluded.title, category=excluded.category,
			description=excluded.description`,
		p.Name, p.Title, string(p.Category), p.Description,
	)
	if err != nil {
		return fmt.Errorf("upserting persona: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO chunks (id, persona, section, content, seq)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		if _, err := stmt.ExecContext(ctx, c.ID, c.Persona, c.Section, c.Content, c.Seq); err != nil {
			return fmt.Errorf("inserting chunk %s: %w", c.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (persona, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(persona) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		p.Name, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}

	return tx.Commit()
}

func (idx *Index) removePersona(ctx context.Context, name string) error {
	tx, err := idx.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM chunks WHERE persona = ?`,
		`DELETE FROM personas WHERE name = ?`,
		`DELETE FROM indexing_status WHERE persona = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, name); err != nil {
			return fmt.Errorf("removing persona %s: %w", name, err)
		}
	}
	return tx.Commit()
}

func (idx *Index) indexedNames(ctx context.Context) ([]string, error) {
	rows, err := idx.db.QueryContext(ctx, `SELECT persona FROM indexing_status ORDER BY persona`)
	if err != nil {
		return nil, fmt.Errorf("listing indexed personas: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
