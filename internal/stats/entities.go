// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package stats computes read-only corpus analytics: multi-word entity
// frequencies and token-length distributions.
package stats

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/pdiddy/biotextgen/internal/corpus"
	"github.com/pdiddy/biotextgen/pkg/types"
)

// Output files relative to the output directory.
const (
	TopEntitiesPath = "processed/top_multiword_entities.json"
	TokensPath      = "processed/abstracts_with_tokens.json"
)

// EntityCount is one entity and the number of mentions across the corpus.
// It is encoded as a two-element JSON array: ["entity", count].
type EntityCount struct {
	Entity string
	Count  int
}

// MarshalJSON writes the pair form.
func (e EntityCount) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{e.Entity, e.Count})
}

// UnmarshalJSON reads the pair form.
func (e *EntityCount) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("entity count: want 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &e.Entity); err != nil {
		return fmt.Errorf("entity count: %w", err)
	}
	if err := json.Unmarshal(pair[1], &e.Count); err != nil {
		return fmt.Errorf("entity count: %w", err)
	}
	return nil
}

// IsMultiWord reports whether s has at least two whitespace-separated tokens.
func IsMultiWord(s string) bool {
	return len(strings.Fields(s)) >= 2
}

// TopMultiWordEntities counts multi-word entity mentions across records and
// returns the n most frequent, by descending count with ties in
// first-encountered order. n <= 0 returns all.
func TopMultiWordEntities(records []types.AnnotatedRecord, n int) []EntityCount {
	index := make(map[string]int)
	var counts []EntityCount
	for _, r := range records {
		for _, e := range r.Entities {
			if !IsMultiWord(e) {
				continue
			}
			if i, ok := index[e]; ok {
				counts[i].Count++
				continue
			}
			index[e] = len(counts)
			counts = append(counts, EntityCount{Entity: e, Count: 1})
		}
	}

	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	if n > 0 && len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// EntityReport writes the top multi-word entities under outputDir and
// prints the leading entries on w.
func EntityReport(records []types.AnnotatedRecord, cfg types.StatsConfig, outputDir string, w io.Writer) ([]EntityCount, error) {
	top := TopMultiWordEntities(records, cfg.TopEntities)
	if err := corpus.WriteSnapshot(filepath.Join(outputDir, TopEntitiesPath), top); err != nil {
		return nil, err
	}

	fmt.Fprintf(w, "Top multi-word entities (%d of %d records):\n", len(top), len(records))
	for i, e := range top {
		if i == 20 {
			fmt.Fprintf(w, "  ... %d more\n", len(top)-i)
			break
		}
		fmt.Fprintf(w, "  %5d  %s\n", e.Count, e.Entity)
	}
	return top, nil
}
