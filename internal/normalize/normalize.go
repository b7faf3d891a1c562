// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize merges raw per-term records into one corpus of complete,
// unique records with cleaned abstract text.
package normalize

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/biotextgen/internal/corpus"
	"github.com/pdiddy/biotextgen/internal/ingest"
	"github.com/pdiddy/biotextgen/pkg/types"
)

// Options controls text cleaning.
type Options struct {
	// FoldDiacritics maps accented letters to their base letter before the
	// allow-list is applied, so "naïve" becomes "naive" instead of "nave".
	FoldDiacritics bool
}

// LoadSummary counts the raw files read by LoadRaw.
type LoadSummary struct {
	Files   int
	Skipped int
	Records int
}

// Summary counts what Normalize kept and dropped.
type Summary struct {
	Loaded          int
	Kept            int
	Merged          int
	MissingID       int
	Incomplete      int
	EmptyAfterClean int
}

// Dropped returns the number of records removed for any reason other than
// merging.
func (s Summary) Dropped() int {
	return s.MissingID + s.Incomplete + s.EmptyAfterClean
}

// LoadRaw reads every file listed in the manifest, in manifest order.
// Unreadable or malformed files are reported on w and skipped.
func LoadRaw(m ingest.Manifest, w io.Writer) ([]types.RawRecord, LoadSummary) {
	var all []types.RawRecord
	var s LoadSummary
	for _, e := range m.Entries {
		recs, err := ingest.ReadRawFile(m.Resolve(e))
		if err != nil {
			fmt.Fprintf(w, "skipped %s: %v\n", e.Path, err)
			s.Skipped++
			continue
		}
		s.Files++
		s.Records += len(recs)
		all = append(all, recs...)
	}
	return all, s
}

// Normalize merges duplicate PMIDs, drops incomplete records and cleans the
// abstract text. Records keep the order of their first occurrence.
func Normalize(raw []types.RawRecord, opts Options) ([]types.Record, Summary) {
	s := Summary{Loaded: len(raw)}

	index := make(map[string]int)
	var merged []types.RawRecord
	for _, r := range raw {
		r.PMID = strings.TrimSpace(r.PMID)
		if r.PMID == "" {
			s.MissingID++
			continue
		}
		if i, ok := index[r.PMID]; ok {
			mergeInto(&merged[i], r)
			s.Merged++
			continue
		}
		index[r.PMID] = len(merged)
		merged = append(merged, r)
	}

	out := make([]types.Record, 0, len(merged))
	for _, r := range merged {
		title := collapseSpace(r.Title)
		if title == "" || strings.TrimSpace(r.Abstract) == "" {
			s.Incomplete++
			continue
		}
		abstract := CleanText(r.Abstract, opts)
		if abstract == "" {
			s.EmptyAfterClean++
			continue
		}
		out = append(out, types.Record{PMID: r.PMID, Title: title, Abstract: abstract})
	}
	s.Kept = len(out)
	return out, s
}

// Clean loads the manifest's raw files, normalizes them, and writes the
// cleaned snapshot under cfg.OutputDir.
func Clean(m ingest.Manifest, cfg types.PipelineConfig, w io.Writer) ([]types.Record, Summary, error) {
	raw, ls := LoadRaw(m, w)
	recs, s := Normalize(raw, Options{FoldDiacritics: cfg.FoldDiacritics})

	path := filepath.Join(cfg.OutputDir, corpus.CleanedPath)
	if err := corpus.WriteSnapshot(path, recs); err != nil {
		return nil, s, err
	}
	fmt.Fprintf(w, "\nLoaded %d records from %d files (%d skipped); kept %d, merged %d, dropped %d (missing id %d, incomplete %d, empty after cleaning %d)\n",
		s.Loaded, ls.Files, ls.Skipped, s.Kept, s.Merged, s.Dropped(), s.MissingID, s.Incomplete, s.EmptyAfterClean)
	return recs, s, nil
}

// mergeInto fills empty fields of dst from src. The first occurrence wins.
func mergeInto(dst *types.RawRecord, src types.RawRecord) {
	if strings.TrimSpace(dst.Title) == "" {
		dst.Title = src.Title
	}
	if strings.TrimSpace(dst.Abstract) == "" {
		dst.Abstract = src.Abstract
	}
}

// allowed reports whether r survives cleaning: ASCII letters and digits,
// Greek letters, the punctuation . , ; : ( ) [ ] ' " and whitespace.
func allowed(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r >= 'Α' && r <= 'Ω', r >= 'α' && r <= 'ω':
		return true
	case unicode.IsSpace(r):
		return true
	}
	return strings.ContainsRune(`.,;:()[]'"`, r)
}

var keepAllowed = runes.Remove(runes.Predicate(func(r rune) bool { return !allowed(r) }))

// CleanText applies the abstract cleaning rules: optional diacritic folding,
// removal of characters outside the allow-list, then whitespace collapse and
// trim.
func CleanText(s string, opts Options) string {
	var t transform.Transformer = keepAllowed
	if opts.FoldDiacritics {
		t = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), keepAllowed)
	}
	out, _, err := transform.String(t, s)
	if err != nil {
		return ""
	}
	return collapseSpace(out)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
