// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger records publication outcomes in a SQLite database so batch
// runs can be audited and re-exported later.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/knowledge-publisher/pkg/types"
)

const dbFile = "publications.db"

// outputLimit bounds how much captured CLI output is stored per record.
const outputLimit = 4096

// Record is one registration attempt, keyed by tag.
type Record struct {
	Tag         string `json:"tag" yaml:"tag"`
	SourcePath  string `json:"source_path" yaml:"source_path"`
	OutputPath  string `json:"output_path" yaml:"output_path"`
	Title       string `json:"title" yaml:"title"`
	Link        string `json:"link" yaml:"link"`
	CreatedAt   string `json:"created_at" yaml:"created_at"`
	UpdatedAt   string `json:"updated_at" yaml:"updated_at"`
	PublishedAt string `json:"published_at" yaml:"published_at"`
	ExitCode    int    `json:"exit_code" yaml:"exit_code"`
	Output      string `json:"output,omitempty" yaml:"output,omitempty"`
}

// Ok reports whether the registration exited cleanly.
func (r Record) Ok() bool {
	return r.ExitCode == 0
}

// Store manages the publication ledger database.
type Store struct {
	db         *sql.DB
	ledgerDir  string
	maxResults int
}

// NewStore opens or creates the ledger database at ledgerDir/publications.db,
// creating the schema if needed.
func NewStore(cfg types.LedgerConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.LedgerDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}

	dbPath := filepath.Join(cfg.LedgerDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening ledger database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 50
	}

	s := &Store{
		db:         db,
		ledgerDir:  cfg.LedgerDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating ledger schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS publications (
			tag TEXT PRIMARY KEY,
			source_path TEXT NOT NULL,
			output_path TEXT,
			title TEXT,
			link TEXT,
			created_at TEXT,
			updated_at TEXT,
			published_at TEXT NOT NULL,
			exit_code INTEGER NOT NULL,
			output TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_publications_published_at
			ON publications(published_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Put upserts a record. A re-published tag replaces its previous row. The
// published_at timestamp is filled in when empty.
func (s *Store) Put(ctx context.Context, rec Record) error {
	if rec.Tag == "" {
		return fmt.Errorf("record has no tag")
	}
	if rec.PublishedAt == "" {
		rec.PublishedAt = time.Now().UTC().Format(time.RFC3339)
	}
	output := rec.Output
	if len(output) > outputLimit {
		output = output[:outputLimit]
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO publications
			(tag, source_path, output_path, title, link, created_at, updated_at, published_at, exit_code, output)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(tag) DO UPDATE SET
			source_path = excluded.source_path,
			output_path = excluded.output_path,
			title = excluded.title,
			link = excluded.link,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			published_at = excluded.published_at,
			exit_code = excluded.exit_code,
			output = excluded.output`,
		rec.Tag, rec.SourcePath, rec.OutputPath, rec.Title, rec.Link,
		rec.CreatedAt, rec.UpdatedAt, rec.PublishedAt, rec.ExitCode, output,
	)
	if err != nil {
		return fmt.Errorf("recording publication %s: %w", rec.Tag, err)
	}
	return nil
}

// Get returns the record for tag.
func (s *Store) Get(ctx context.Context, tag string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT tag, source_path, output_path, title, link, created_at, updated_at, published_at, exit_code, output
		FROM publications WHERE tag = ?`, tag)

	var rec Record
	err := row.Scan(&rec.Tag, &rec.SourcePath, &rec.OutputPath, &rec.Title, &rec.Link,
		&rec.CreatedAt, &rec.UpdatedAt, &rec.PublishedAt, &rec.ExitCode, &rec.Output)
	if err == sql.ErrNoRows {
		return Record{}, fmt.Errorf("no publication recorded for tag %q", tag)
	}
	if err != nil {
		return Record{}, fmt.Errorf("querying publication %s: %w", tag, err)
	}
	return rec, nil
}

// List returns records newest first. A zero limit uses the store default.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT tag, source_path, output_path, title, link, created_at, updated_at, published_at, exit_code, output
		FROM publications
		ORDER BY published_at DESC, tag
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying publications: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.Tag, &rec.SourcePath, &rec.OutputPath, &rec.Title, &rec.Link,
			&rec.CreatedAt, &rec.UpdatedAt, &rec.PublishedAt, &rec.ExitCode, &rec.Output); err != nil {
			return nil, fmt.Errorf("scanning publication: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
