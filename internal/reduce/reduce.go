// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reduce narrows each abstract to the sentences that mention its
// entity-bearing keyphrases.
//
// For one record the reducer extracts ranked keyphrases, keeps those that
// share a whole word with an entity mention, drops phrases contained in a
// longer kept phrase, and concatenates the abstract sentences containing a
// survivor. An empty result is valid and not an error.
package reduce

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/pdiddy/biotextgen/internal/corpus"
	"github.com/pdiddy/biotextgen/internal/keyphrase"
	"github.com/pdiddy/biotextgen/pkg/types"
)

// Reducer holds the injected keyphrase extractor and sentence splitter.
type Reducer struct {
	Extractor keyphrase.Extractor
	Splitter  SentenceSplitter
	MaxNgram  int
	TopK      int
}

// New builds a Reducer from the pipeline configuration.
func New(ex keyphrase.Extractor, sp SentenceSplitter, cfg types.PipelineConfig) *Reducer {
	return &Reducer{
		Extractor: ex,
		Splitter:  sp,
		MaxNgram:  cfg.Keyphrase.MaxNgram,
		TopK:      cfg.TopKKeyphrases,
	}
}

// Reduce computes all_entities, combined_keywords and matched_text for rec.
func (r *Reducer) Reduce(rec types.AnnotatedRecord) (types.ReducedRecord, error) {
	kps, err := r.Extractor.Extract(rec.Abstract, r.MaxNgram, r.TopK)
	if err != nil {
		return rec.WithReduction(types.Reduction{}), fmt.Errorf("extracting keyphrases: %w", err)
	}
	candidates := keyphrase.Phrases(kps)
	if r.TopK > 0 && len(candidates) > r.TopK {
		candidates = candidates[:r.TopK]
	}

	red := types.Reduction{AllEntities: AllTerms(rec.Entities, candidates)}

	filtered := FilterPhrases(EntityWords(rec.Entities), candidates)
	red.CombinedKeywords = DeduplicatePhrases(filtered)
	if len(red.CombinedKeywords) > 0 {
		matched := MatchSentences(r.Splitter.Split(rec.Abstract), red.CombinedKeywords)
		red.MatchedText = ComposeMatchedText(matched)
	}
	return rec.WithReduction(red), nil
}

// Summary holds per-record outcome counts for one reduction run.
type Summary struct {
	Reduced int
	Matched int
	Failed  int
}

// Total returns the number of records processed.
func (s Summary) Total() int {
	return s.Reduced + s.Failed
}

// HasFailures reports whether extraction failed on any record.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Run reduces every record of the annotated corpus and writes the reduced
// snapshot under outputDir. A record whose extraction fails is reported on
// w and kept with empty reductions.
func (r *Reducer) Run(records []types.AnnotatedRecord, outputDir string, w io.Writer) ([]types.ReducedRecord, Summary, error) {
	var s Summary
	out := make([]types.ReducedRecord, 0, len(records))
	for _, rec := range records {
		red, err := r.Reduce(rec)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", rec.PMID, err)
			s.Failed++
		} else {
			s.Reduced++
			if red.MatchedText != "" {
				s.Matched++
			}
		}
		out = append(out, red)
	}

	if err := corpus.WriteSnapshot(filepath.Join(outputDir, corpus.ReducedPath), out); err != nil {
		return nil, s, err
	}
	fmt.Fprintf(w, "\nReduced %d records: %d with matched text, %d failed\n", s.Total(), s.Matched, s.Failed)
	return out, s, nil
}
