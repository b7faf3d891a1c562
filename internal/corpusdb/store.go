// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpusdb indexes an enriched corpus snapshot in SQLite for
// full-text search and entity, term and keyword lookups.
package corpusdb

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/biotextgen/internal/corpus"
	"github.com/pdiddy/biotextgen/internal/stats"
	"github.com/pdiddy/biotextgen/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "corpus.db"
)

// TermSource resolves a PMID to the search terms it was collected under.
type TermSource interface {
	Terms(pmid string) []string
}

// Store manages the corpus index database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
}

// Open opens or creates outputDir/index/corpus.db and its schema.
func Open(outputDir string, maxResults int) (*Store, error) {
	dir := filepath.Join(outputDir, indexDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dir, dbFile)+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if maxResults <= 0 {
		maxResults = 20
	}
	s := &Store{db: db, dir: dir, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dir returns the directory holding the database and exports.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS records (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			pmid TEXT NOT NULL UNIQUE,
			title TEXT,
			abstract TEXT,
			matched_text TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS entities (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			pmid TEXT NOT NULL REFERENCES records(pmid) ON DELETE CASCADE,
			entity TEXT NOT NULL,
			multi_word INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS keywords (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			pmid TEXT NOT NULL REFERENCES records(pmid) ON DELETE CASCADE,
			keyword TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS terms (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			pmid TEXT NOT NULL REFERENCES records(pmid) ON DELETE CASCADE,
			term TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entities_pmid ON entities(pmid)`,
		`CREATE INDEX IF NOT EXISTS idx_entities_entity ON entities(entity)`,
		`CREATE INDEX IF NOT EXISTS idx_keywords_pmid ON keywords(pmid)`,
		`CREATE INDEX IF NOT EXISTS idx_terms_pmid ON terms(pmid)`,
		`CREATE INDEX IF NOT EXISTS idx_terms_term ON terms(term)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			snapshot TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='records_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists > 0 {
		return nil
	}

	ftsStatements := []string{
		`CREATE VIRTUAL TABLE records_fts USING fts5(title, abstract, content=records, content_rowid=rowid)`,
		`CREATE TRIGGER records_ai AFTER INSERT ON records BEGIN
			INSERT INTO records_fts(rowid, title, abstract) VALUES (new.rowid, new.title, new.abstract);
		END`,
		`CREATE TRIGGER records_ad AFTER DELETE ON records BEGIN
			INSERT INTO records_fts(records_fts, rowid, title, abstract) VALUES('delete', old.rowid, old.title, old.abstract);
		END`,
		`CREATE TRIGGER records_au AFTER UPDATE ON records BEGIN
			INSERT INTO records_fts(records_fts, rowid, title, abstract) VALUES('delete', old.rowid, old.title, old.abstract);
			INSERT INTO records_fts(rowid, title, abstract) VALUES (new.rowid, new.title, new.abstract);
		END`,
	}
	for _, stmt := range ftsStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS infrastructure: %w", err)
		}
	}
	return nil
}

// IngestSummary holds counts from one indexing run.
type IngestSummary struct {
	Records  int
	Entities int
	Keywords int
	Terms    int

	// Skipped is set when the snapshot was unchanged since the last run.
	Skipped bool
}

// Ingest indexes the records snapshot at snapshotPath, replacing whatever
// the index held before. The snapshot may be annotated or reduced; missing
// fields index as empty. A snapshot whose modification time matches the
// last indexed run is skipped. Duplicate PMIDs abort the run with
// corpus.ErrDuplicateIdentifier and leave the index unchanged.
func (s *Store) Ingest(ctx context.Context, snapshotPath string, terms TermSource, w io.Writer) (IngestSummary, error) {
	info, err := os.Stat(snapshotPath)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading snapshot: %w", err)
	}
	modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

	var stored string
	err = s.db.QueryRowContext(ctx,
		`SELECT file_mod_time FROM indexing_status WHERE snapshot = ?`, snapshotPath,
	).Scan(&stored)
	if err == nil && stored == modTime {
		fmt.Fprintf(w, "skipped %s (unchanged)\n", snapshotPath)
		return IngestSummary{Skipped: true}, nil
	}

	records, err := corpus.ReadSnapshot[types.ReducedRecord](snapshotPath)
	if err != nil {
		return IngestSummary{}, err
	}
	if err := corpus.CheckUnique(records, func(r types.ReducedRecord) string { return r.PMID }); err != nil {
		return IngestSummary{}, fmt.Errorf("indexing %s: %w", snapshotPath, err)
	}

	sum, err := s.replace(ctx, records, terms, snapshotPath, modTime)
	if err != nil {
		return IngestSummary{}, err
	}

	fmt.Fprintf(w, "indexed %d records (%d entities, %d keywords, %d terms) -> %s\n",
		sum.Records, sum.Entities, sum.Keywords, sum.Terms, filepath.Join(s.dir, dbFile))
	return sum, nil
}

func (s *Store) replace(ctx context.Context, records []types.ReducedRecord, terms TermSource, snapshotPath, modTime string) (IngestSummary, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"entities", "keywords", "terms", "records"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return IngestSummary{}, fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	insRecord, err := tx.PrepareContext(ctx,
		`INSERT INTO records (pmid, title, abstract, matched_text) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("preparing insert: %w", err)
	}
	defer insRecord.Close()
	insEntity, err := tx.PrepareContext(ctx,
		`INSERT INTO entities (pmid, entity, multi_word) VALUES (?, ?, ?)`)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("preparing insert: %w", err)
	}
	defer insEntity.Close()
	insKeyword, err := tx.PrepareContext(ctx,
		`INSERT INTO keywords (pmid, keyword) VALUES (?, ?)`)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("preparing insert: %w", err)
	}
	defer insKeyword.Close()
	insTerm, err := tx.PrepareContext(ctx,
		`INSERT INTO terms (pmid, term) VALUES (?, ?)`)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("preparing insert: %w", err)
	}
	defer insTerm.Close()

	var sum IngestSummary
	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return IngestSummary{}, err
		}
		if _, err := insRecord.ExecContext(ctx, r.PMID, r.Title, r.Abstract, r.MatchedText); err != nil {
			return IngestSummary{}, fmt.Errorf("inserting record %s: %w", r.PMID, err)
		}
		sum.Records++
		for _, e := range r.Entities {
			if _, err := insEntity.ExecContext(ctx, r.PMID, e, stats.IsMultiWord(e)); err != nil {
				return IngestSummary{}, fmt.Errorf("inserting entity for %s: %w", r.PMID, err)
			}
			sum.Entities++
		}
		for _, k := range r.CombinedKeywords {
			if _, err := insKeyword.ExecContext(ctx, r.PMID, k); err != nil {
				return IngestSummary{}, fmt.Errorf("inserting keyword for %s: %w", r.PMID, err)
			}
			sum.Keywords++
		}
		if terms == nil {
			continue
		}
		for _, t := range terms.Terms(r.PMID) {
			if _, err := insTerm.ExecContext(ctx, r.PMID, t); err != nil {
				return IngestSummary{}, fmt.Errorf("inserting term for %s: %w", r.PMID, err)
			}
			sum.Terms++
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (snapshot, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(snapshot) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		snapshotPath, modTime,
	)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("updating indexing status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return IngestSummary{}, fmt.Errorf("committing index: %w", err)
	}
	return sum, nil
}

// Count returns the number of indexed records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return n, nil
}
