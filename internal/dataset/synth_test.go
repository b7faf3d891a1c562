// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/biotextgen/internal/corpus"
	"github.com/pdiddy/biotextgen/pkg/types"
)

type mapTerms map[string][]string

func (m mapTerms) Terms(pmid string) []string { return m[pmid] }

func testCorpus() []types.AnnotatedRecord {
	return []types.AnnotatedRecord{
		types.Record{PMID: "1", Title: "Checkpoints", Abstract: "PD-1 blockade helps melanoma patients."}.
			WithEntities([]string{"PD-1 blockade", "melanoma", "melanoma patients"}),
		types.Record{PMID: "2", Title: "Lung", Abstract: "Lung cancer cells resist therapy."}.
			WithEntities([]string{"lung cancer cells"}),
		types.Record{PMID: "3", Title: "", Abstract: "Untitled abstract."}.
			WithEntities(nil),
	}
}

func testTerms() mapTerms {
	return mapTerms{
		"1": {"melanoma", "immunotherapy"},
		"2": {"lung cancer"},
		"3": {"cancer"},
	}
}

func duplicated() []types.AnnotatedRecord {
	recs := testCorpus()
	return append(recs, recs[0])
}

// --- template selection ---

func TestRoundRobin(t *testing.T) {
	rr := &RoundRobin{}
	var got []int
	for range 7 {
		got = append(got, rr.Pick(5))
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4, 0, 1}, got)
}

func TestSeededRandom_Reproducible(t *testing.T) {
	a, b := NewSeededRandom(42), NewSeededRandom(42)
	for range 50 {
		i, j := a.Pick(5), b.Pick(5)
		assert.Equal(t, i, j)
		assert.True(t, i >= 0 && i < 5)
	}
}

func TestNewSelector(t *testing.T) {
	sel, err := NewSelector(types.DatasetConfig{TemplatePolicy: types.PolicyRoundRobin})
	require.NoError(t, err)
	assert.IsType(t, &RoundRobin{}, sel)

	sel, err = NewSelector(types.DatasetConfig{TemplatePolicy: types.PolicyRandom, Seed: 1})
	require.NoError(t, err)
	assert.IsType(t, &SeededRandom{}, sel)

	_, err = NewSelector(types.DatasetConfig{TemplatePolicy: "weighted"})
	assert.Error(t, err)
}

// --- synthesizers ---

func TestEntityQA(t *testing.T) {
	pairs, err := EntityQA(testCorpus(), &RoundRobin{})
	require.NoError(t, err)

	require.Len(t, pairs, 3)
	assert.Equal(t, "What is the role of PD-1 blockade?", pairs[0].Input)
	assert.Equal(t, "How does melanoma patients affect cancer?", pairs[1].Input)
	assert.Equal(t, "What do we know about lung cancer cells?", pairs[2].Input)
	for _, p := range pairs {
		assert.Equal(t, types.TaskQA, p.Task)
		assert.Equal(t, p.Context, p.Target)
	}
	assert.Equal(t, "1", pairs[0].PMID)
	assert.Equal(t, "2", pairs[2].PMID)
}

func TestEntityQA_SeededIsDeterministic(t *testing.T) {
	a, err := EntityQA(testCorpus(), NewSeededRandom(7))
	require.NoError(t, err)
	b, err := EntityQA(testCorpus(), NewSeededRandom(7))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestVanillaSummarization(t *testing.T) {
	pairs, err := VanillaSummarization(testCorpus())
	require.NoError(t, err)
	require.Len(t, pairs, 2, "record without a title is skipped")
	assert.Equal(t, "PD-1 blockade helps melanoma patients.", pairs[0].Input)
	assert.Equal(t, "Checkpoints", pairs[0].Target)
}

func TestEntitySummarization(t *testing.T) {
	pairs, err := EntitySummarization(testCorpus())
	require.NoError(t, err)
	require.Len(t, pairs, 4)
	assert.Equal(t, "Summarize findings about melanoma.", pairs[1].Input)
	assert.Equal(t, "melanoma", pairs[1].Entity)
}

func TestMultiEntitySummarization(t *testing.T) {
	recs := testCorpus()
	recs = append(recs, types.Record{PMID: "4", Title: "Many", Abstract: "Many."}.WithEntities([]string{
		"a b", "c d", "e f", "g h", "i j", "k l", "single",
	}))

	pairs, err := MultiEntitySummarization(recs, 5)
	require.NoError(t, err)
	require.Len(t, pairs, 2)

	assert.Equal(t, "Summarize findings involving: PD-1 blockade, melanoma patients", pairs[0].Input)
	assert.Equal(t, []string{"PD-1 blockade", "melanoma patients"}, pairs[0].Entities)
	assert.Equal(t, []string{"a b", "c d", "e f", "g h", "i j"}, pairs[1].Entities)

	for _, p := range pairs {
		assert.GreaterOrEqual(t, len(p.Entities), 2)
		for _, e := range p.Entities {
			assert.GreaterOrEqual(t, len(strings.Fields(e)), 2, "entity %q", e)
		}
	}
}

func TestEntityToText(t *testing.T) {
	pairs, err := EntityToText(testCorpus())
	require.NoError(t, err)
	require.Len(t, pairs, 3)
	assert.Equal(t, "Write a biomedical paragraph about PD-1 blockade.", pairs[0].Input)
	assert.Equal(t, types.TaskTextGen, pairs[0].Task)
}

func TestMultiEntityToText(t *testing.T) {
	pairs, err := MultiEntityToText(testCorpus())
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "Write a biomedical paragraph using the terms: PD-1 blockade, melanoma patients.", pairs[0].Input)
}

func TestKeywordSynthesizers(t *testing.T) {
	recs, terms := testCorpus(), testTerms()

	kw, err := KeywordToText(recs, terms)
	require.NoError(t, err)
	var inputs []string
	for _, p := range kw {
		inputs = append(inputs, p.Input)
	}
	assert.Equal(t, []string{
		"Write an abstract about melanoma.",
		"Write an abstract about immunotherapy.",
		"Write an abstract about lung cancer.",
		"Write an abstract about cancer.",
	}, inputs)

	multi, err := MultiKeywordToText(recs, terms)
	require.NoError(t, err)
	require.Len(t, multi, 1)
	assert.Equal(t, "melanoma & immunotherapy", multi[0].Input)
	assert.Equal(t, []string{"melanoma", "immunotherapy"}, multi[0].Keywords)

	ke, err := KeywordEntityToText(recs, terms)
	require.NoError(t, err)
	require.Len(t, ke, 3, "record without entities is skipped")
	assert.Equal(t, "melanoma, PD-1 blockade, melanoma, melanoma patients", ke[0].Input)
	assert.Equal(t, "lung cancer, lung cancer cells", ke[2].Input)
}

func TestSynthesizers_RejectDuplicateIdentifiers(t *testing.T) {
	recs, terms := duplicated(), testTerms()
	runs := map[string]func() ([]types.TrainingPair, error){
		"qa":             func() ([]types.TrainingPair, error) { return EntityQA(recs, &RoundRobin{}) },
		"vanilla":        func() ([]types.TrainingPair, error) { return VanillaSummarization(recs) },
		"entity summary": func() ([]types.TrainingPair, error) { return EntitySummarization(recs) },
		"multi summary":  func() ([]types.TrainingPair, error) { return MultiEntitySummarization(recs, 5) },
		"entity text":    func() ([]types.TrainingPair, error) { return EntityToText(recs) },
		"multi text":     func() ([]types.TrainingPair, error) { return MultiEntityToText(recs) },
		"keyword":        func() ([]types.TrainingPair, error) { return KeywordToText(recs, terms) },
		"multi keyword":  func() ([]types.TrainingPair, error) { return MultiKeywordToText(recs, terms) },
		"keyword entity": func() ([]types.TrainingPair, error) { return KeywordEntityToText(recs, terms) },
	}
	for name, run := range runs {
		t.Run(name, func(t *testing.T) {
			_, err := run()
			assert.True(t, errors.Is(err, corpus.ErrDuplicateIdentifier), "got %v", err)
		})
	}
}

func TestGenerate_WritesLayout(t *testing.T) {
	dir := t.TempDir()
	cfg := types.DefaultConfig().Dataset
	recs := testCorpus()

	var buf bytes.Buffer
	qa, err := GenerateQA(recs, cfg, dir, &buf)
	require.NoError(t, err)
	sum, err := GenerateSummarization(recs, cfg, dir, &buf)
	require.NoError(t, err)
	tg, err := GenerateTextGen(recs, testTerms(), dir, &buf)
	require.NoError(t, err)
	assert.Len(t, qa, 1)
	assert.Len(t, sum, 3)
	assert.Len(t, tg, 5)

	pairs, bad, err := ReadJSONL(filepath.Join(dir, QAPath), &buf)
	require.NoError(t, err)
	assert.Zero(t, bad)
	assert.Len(t, pairs, 3)
	assert.Equal(t, types.TaskQA, pairs[0].Task)

	reps, err := CombineFamilies(dir, types.DedupFirst, &buf)
	require.NoError(t, err)
	require.Len(t, reps, 2)
	assert.Equal(t, 4+1, reps[0].Written)
	assert.Equal(t, 3+1+4+1+3, reps[1].Written)
}
