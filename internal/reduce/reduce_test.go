// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reduce

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/biotextgen/internal/corpus"
	"github.com/pdiddy/biotextgen/internal/keyphrase"
	"github.com/pdiddy/biotextgen/pkg/types"
)

// --- stubs ---

type stubExtractor struct {
	phrases []string
	err     error
}

func (s stubExtractor) Extract(_ string, _, topK int) ([]keyphrase.Keyphrase, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []keyphrase.Keyphrase
	for i, p := range s.phrases {
		out = append(out, keyphrase.Keyphrase{Phrase: p, Score: float64(len(s.phrases) - i)})
	}
	return out, nil
}

// periodSplitter splits after every ". " for tests that do not need Punkt.
type periodSplitter struct{}

func (periodSplitter) Split(text string) []string {
	var out []string
	for _, s := range strings.SplitAfter(text, ". ") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// --- phrase containment ---

func TestPhraseContainsAny(t *testing.T) {
	tests := []struct {
		name   string
		words  []string
		phrase string
		want   bool
	}{
		{"whole word only", []string{"cell"}, "cells are", false},
		{"exact token", []string{"cells"}, "cells are", true},
		{"case folded", []string{"Immunotherapy"}, "IMMUNOTHERAPY response", true},
		{"multi-word entity contributes each word", []string{"cancer cells"}, "breast cancer", true},
		{"no substring within token", []string{"tumor"}, "tumorigenesis", false},
		{"empty phrase", []string{"x"}, "", false},
		{"empty words", nil, "anything", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PhraseContainsAny(EntityWords(tt.words), tt.phrase))
		})
	}
}

// --- phrase deduplication ---

func TestDeduplicatePhrases(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"empty", nil, []string{}},
		{"contained phrase dropped", []string{"cancer", "lung cancer cells", "cells"}, []string{"lung cancer cells"}},
		{"case-insensitive containment", []string{"Lung Cancer", "non-small lung cancer"}, []string{"non-small lung cancer"}},
		{"case-insensitive duplicate keeps first", []string{"PD-1", "pd-1"}, []string{"PD-1"}},
		{"case variants of equal length collapse", []string{"immunotherapy", "Cancer cells", "cancer cells"}, []string{"immunotherapy", "Cancer cells"}},
		{"equal length kept independently", []string{"abc", "abd"}, []string{"abc", "abd"}},
		{"survivors keep input order", []string{"cancer cells", "immunotherapy"}, []string{"cancer cells", "immunotherapy"}},
		{"substring across word boundary", []string{"cell", "T cells"}, []string{"T cells"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeduplicatePhrases(tt.in))
		})
	}
}

func TestDeduplicatePhrases_Properties(t *testing.T) {
	inputs := [][]string{
		{"tumor", "tumor microenvironment", "Tumor Microenvironment", "immune", "immune cells", "cells"},
		{"a", "b", "ab", "ba", "aba", "bab"},
		{"PD-L1 expression", "expression", "PD-L1", "pd-l1 expression level"},
	}
	for _, in := range inputs {
		once := DeduplicatePhrases(in)
		assert.Equal(t, once, DeduplicatePhrases(once), "idempotent for %v", in)

		for i, p := range once {
			for j, q := range once {
				if i == j {
					continue
				}
				assert.False(t, strings.Contains(strings.ToLower(q), strings.ToLower(p)),
					"%q survives inside %q", p, q)
			}
		}
	}
}

// --- sentences ---

func TestMatchSentences(t *testing.T) {
	sents := []string{"Cancer cells grow.", "Nothing here.", "cancer cells grow.", "Cancer cells grow."}
	got := MatchSentences(sents, []string{"CANCER CELLS"})
	assert.Equal(t, []string{"Cancer cells grow.", "cancer cells grow."}, got)
	assert.Empty(t, MatchSentences(sents, nil))
}

func TestComposeMatchedText(t *testing.T) {
	assert.Equal(t, "A. B. C? D!", ComposeMatchedText([]string{"A.", "B", " C? ", "D!"}))
	assert.Equal(t, "", ComposeMatchedText(nil))
}

func TestPunktSplitter(t *testing.T) {
	sp, err := NewPunktSplitter()
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"Cancer cells grow.", "Immunotherapy helps patients."},
		sp.Split("Cancer cells grow. Immunotherapy helps patients."))
	assert.Empty(t, sp.Split("   "))
}

// --- Reduce ---

func exampleRecord() types.AnnotatedRecord {
	return types.Record{
		PMID:     "1",
		Title:    "T",
		Abstract: "Cancer cells grow. Immunotherapy helps patients.",
	}.WithEntities([]string{"immunotherapy", "cancer cells"})
}

func TestReduce_EndToEndExample(t *testing.T) {
	sp, err := NewPunktSplitter()
	require.NoError(t, err)
	r := &Reducer{
		Extractor: stubExtractor{phrases: []string{"cancer cells", "immunotherapy", "patients"}},
		Splitter:  sp,
		MaxNgram:  10,
		TopK:      20,
	}

	got, err := r.Reduce(exampleRecord())
	require.NoError(t, err)

	assert.Equal(t, []string{"cancer cells", "immunotherapy"}, got.CombinedKeywords)
	assert.Equal(t, "Cancer cells grow. Immunotherapy helps patients.", got.MatchedText)
	assert.ElementsMatch(t, []string{"immunotherapy", "cancer cells", "patients"}, got.AllEntities)
	assert.Equal(t, exampleRecord(), got.Annotated())
}

func TestReduce_NoEntities(t *testing.T) {
	r := &Reducer{
		Extractor: stubExtractor{phrases: []string{"cancer cells"}},
		Splitter:  periodSplitter{},
		TopK:      20,
	}
	rec := types.Record{PMID: "2", Title: "T", Abstract: "Cancer cells grow."}.WithEntities(nil)

	got, err := r.Reduce(rec)
	require.NoError(t, err)
	assert.Equal(t, []string{}, got.CombinedKeywords)
	assert.Equal(t, "", got.MatchedText)
	assert.Equal(t, []string{"cancer cells"}, got.AllEntities)
}

func TestReduce_TopKCut(t *testing.T) {
	r := &Reducer{
		Extractor: stubExtractor{phrases: []string{"melanoma risk", "melanoma", "uv exposure"}},
		Splitter:  periodSplitter{},
		TopK:      1,
	}
	rec := types.Record{PMID: "3", Title: "T", Abstract: "UV exposure raises melanoma risk. Sunscreen helps."}.
		WithEntities([]string{"melanoma", "UV exposure"})

	got, err := r.Reduce(rec)
	require.NoError(t, err)
	assert.Equal(t, []string{"melanoma risk"}, got.CombinedKeywords)
	assert.Equal(t, "UV exposure raises melanoma risk.", got.MatchedText)
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	failing := &Reducer{Extractor: stubExtractor{err: errors.New("model offline")}, Splitter: periodSplitter{}}

	var buf bytes.Buffer
	out, s, err := failing.Run([]types.AnnotatedRecord{exampleRecord()}, dir, &buf)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, Summary{Failed: 1}, s)
	assert.Contains(t, buf.String(), "failed  1: extracting keyphrases: model offline")
	assert.Equal(t, []string{}, out[0].CombinedKeywords)

	r := &Reducer{Extractor: stubExtractor{phrases: []string{"cancer cells"}}, Splitter: periodSplitter{}}
	buf.Reset()
	_, s, err = r.Run([]types.AnnotatedRecord{exampleRecord()}, dir, &buf)
	require.NoError(t, err)
	assert.Equal(t, Summary{Reduced: 1, Matched: 1}, s)

	saved, err := corpus.ReadSnapshot[types.ReducedRecord](filepath.Join(dir, corpus.ReducedPath))
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "Cancer cells grow.", saved[0].MatchedText)
	assert.Equal(t, []string{"immunotherapy", "cancer cells"}, saved[0].Entities)
}
