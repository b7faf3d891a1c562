// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest collects raw abstracts per search term from a bibliographic
// API and records them in an explicit manifest.
package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/biotextgen/internal/corpus"
	"github.com/pdiddy/biotextgen/pkg/types"
)

// Backend searches and fetches records from one bibliographic API.
type Backend interface {
	Name() string
	Search(ctx context.Context, term string, limit int) ([]string, error)
	Fetch(ctx context.Context, ids []string) ([]types.RawRecord, error)
}

// CollectSummary holds per-term outcome counts for one Collect run.
type CollectSummary struct {
	Collected int
	Empty     int
	Failed    int
	Duplicate int
	Records   int
}

// Total returns the number of terms processed.
func (s CollectSummary) Total() int {
	return s.Collected + s.Empty + s.Failed + s.Duplicate
}

// HasFailures reports whether any term failed.
func (s CollectSummary) HasFailures() bool {
	return s.Failed > 0
}

// Collect searches and fetches every term in order and writes one JSON file
// per term under cfg.InputDir plus a manifest listing them. A failing term
// is reported and skipped; the run continues with the next term. A term
// whose file name collides with an earlier collected term (same words
// ignoring case and spacing) is skipped so no file is overwritten. Only
// failures to create the directory or write the manifest are returned.
func Collect(ctx context.Context, b Backend, terms []string, cfg types.PipelineConfig, w io.Writer) (CollectSummary, Manifest, error) {
	var summary CollectSummary
	if err := os.MkdirAll(cfg.InputDir, 0o755); err != nil {
		return summary, Manifest{}, fmt.Errorf("creating input dir: %w", err)
	}

	m := Manifest{dir: cfg.InputDir}
	owners := make(map[string]string)
	for _, term := range terms {
		if err := ctx.Err(); err != nil {
			return summary, m, err
		}

		name := Slug(term) + ".json"
		if prev, ok := owners[name]; ok {
			fmt.Fprintf(w, "skipped %s: same file as %q\n", term, prev)
			summary.Duplicate++
			continue
		}

		recs, err := collectTerm(ctx, b, term, cfg.MaxResultsPerTerm)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", term, err)
			summary.Failed++
			continue
		}

		if err := corpus.WriteSnapshot(filepath.Join(cfg.InputDir, name), recs); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", term, err)
			summary.Failed++
			continue
		}
		owners[name] = term
		m.Entries = append(m.Entries, ManifestEntry{Term: term, Path: name})

		if len(recs) == 0 {
			fmt.Fprintf(w, "empty   %s\n", term)
			summary.Empty++
			continue
		}
		fmt.Fprintf(w, "saved   %s: %d records -> %s\n", term, len(recs), name)
		summary.Collected++
		summary.Records += len(recs)
	}

	m.Generated = time.Now().UTC()
	if err := WriteManifest(filepath.Join(cfg.InputDir, ManifestName), m); err != nil {
		return summary, m, err
	}
	return summary, m, nil
}

func collectTerm(ctx context.Context, b Backend, term string, limit int) ([]types.RawRecord, error) {
	ids, err := b.Search(ctx, term, limit)
	if err != nil {
		return nil, fmt.Errorf("%s search: %w", b.Name(), err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	recs, err := b.Fetch(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%s fetch: %w", b.Name(), err)
	}
	return recs, nil
}
