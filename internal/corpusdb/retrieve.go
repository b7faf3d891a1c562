// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpusdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pdiddy/biotextgen/internal/stats"
)

// QueryOptions holds parameters for index queries.
type QueryOptions struct {
	// Query is an FTS5 match expression over title and abstract.
	Query string

	// Term restricts results to records collected under this search term.
	Term string

	// Entity restricts results to records mentioning this exact entity.
	Entity string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Term == "" && q.Entity == ""
}

// Result is one indexed record with its annotations.
type Result struct {
	PMID        string   `json:"pmid" yaml:"pmid"`
	Title       string   `json:"title" yaml:"title"`
	Abstract    string   `json:"abstract" yaml:"abstract"`
	MatchedText string   `json:"matched_text,omitempty" yaml:"matched_text,omitempty"`
	Entities    []string `json:"entities" yaml:"entities"`
	Keywords    []string `json:"combined_keywords" yaml:"combined_keywords"`
	Terms       []string `json:"terms" yaml:"terms"`
}

// Search queries the index. Full-text queries are ranked by relevance;
// filter-only queries are returned in indexing order.
func (s *Store) Search(ctx context.Context, opts QueryOptions) ([]Result, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)
	if useFTS {
		qb.WriteString(
			`SELECT r.pmid, r.title, r.abstract, r.matched_text
			FROM records_fts
			JOIN records r ON r.rowid = records_fts.rowid
			WHERE records_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT r.pmid, r.title, r.abstract, r.matched_text
			FROM records r
			WHERE 1=1`)
	}

	if opts.Term != "" {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM terms t WHERE t.pmid = r.pmid AND t.term = ?)`)
		args = append(args, opts.Term)
	}
	if opts.Entity != "" {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM entities e WHERE e.pmid = r.pmid AND e.entity = ?)`)
		args = append(args, opts.Entity)
	}

	if useFTS {
		qb.WriteString(` ORDER BY records_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY r.rowid`)
	}
	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying corpus index: %w", err)
	}
	var results []Result
	for rows.Next() {
		var (
			r       Result
			title   sql.NullString
			abs     sql.NullString
			matched sql.NullString
		)
		if err := rows.Scan(&r.PMID, &title, &abs, &matched); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		r.Title, r.Abstract, r.MatchedText = title.String, abs.String, matched.String
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range results {
		if err := s.annotate(ctx, &results[i]); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (s *Store) annotate(ctx context.Context, r *Result) error {
	var err error
	if r.Entities, err = s.column(ctx, `SELECT entity FROM entities WHERE pmid = ? ORDER BY id`, r.PMID); err != nil {
		return err
	}
	if r.Keywords, err = s.column(ctx, `SELECT keyword FROM keywords WHERE pmid = ? ORDER BY id`, r.PMID); err != nil {
		return err
	}
	r.Terms, err = s.column(ctx, `SELECT term FROM terms WHERE pmid = ? ORDER BY id`, r.PMID)
	return err
}

func (s *Store) column(ctx context.Context, query, pmid string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, pmid)
	if err != nil {
		return nil, fmt.Errorf("loading annotations for %s: %w", pmid, err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning annotation: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// EntityCounts returns the n most frequent multi-word entities by
// descending count, ties in first-indexed order. It mirrors
// stats.TopMultiWordEntities over the indexed snapshot. n <= 0 returns all.
func (s *Store) EntityCounts(ctx context.Context, n int) ([]stats.EntityCount, error) {
	if n <= 0 {
		n = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT entity, count(*) AS c FROM entities
		 WHERE multi_word = 1
		 GROUP BY entity
		 ORDER BY c DESC, min(id) ASC
		 LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("counting entities: %w", err)
	}
	defer rows.Close()

	var out []stats.EntityCount
	for rows.Next() {
		var ec stats.EntityCount
		if err := rows.Scan(&ec.Entity, &ec.Count); err != nil {
			return nil, fmt.Errorf("scanning entity count: %w", err)
		}
		out = append(out, ec)
	}
	return out, rows.Err()
}
