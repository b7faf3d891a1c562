// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/pdiddy/biotextgen/pkg/types"
)

// Dataset file locations relative to the output directory.
const (
	QAPath                 = "training/qa/qa_dataset.jsonl"
	VanillaSummaryPath     = "training/summarization/vanilla_summarization.jsonl"
	EntitySummaryPath      = "training/summarization/entity_to_abstract.jsonl"
	MultiEntitySummaryPath = "training/summarization/multi_entity_to_abstract.jsonl"
	CombinedSummaryPath    = "training/summarization/combined_summarization_dataset.jsonl"
	EntityTextPath         = "training/text_gen/entity_to_text.jsonl"
	MultiEntityTextPath    = "training/text_gen/multi_entity_to_text.jsonl"
	KeywordTextPath        = "training/text_gen/keyword_to_abstract.jsonl"
	MultiKeywordTextPath   = "training/text_gen/multi_keyword_to_text.jsonl"
	KeywordEntityTextPath  = "training/text_gen/keywords_entities_to_text.jsonl"
	CombinedTextGenPath    = "training/text_gen/combined_text_gen.jsonl"
)

// SummarizationCombineInputs and TextGenCombineInputs are the sibling files
// merged by default for each family.
var (
	SummarizationCombineInputs = []string{EntitySummaryPath, MultiEntitySummaryPath}
	TextGenCombineInputs       = []string{EntityTextPath, MultiEntityTextPath, KeywordTextPath, MultiKeywordTextPath, KeywordEntityTextPath}
)

// Output records one written dataset file.
type Output struct {
	Name  string
	Path  string
	Pairs int
}

type job struct {
	name string
	path string
	run  func() ([]types.TrainingPair, error)
}

func runJobs(jobs []job, outputDir string, w io.Writer) ([]Output, error) {
	var outs []Output
	for _, j := range jobs {
		pairs, err := j.run()
		if err != nil {
			return outs, fmt.Errorf("%s: %w", j.name, err)
		}
		path := filepath.Join(outputDir, j.path)
		if err := WriteJSONL(path, pairs); err != nil {
			return outs, fmt.Errorf("%s: %w", j.name, err)
		}
		fmt.Fprintf(w, "wrote   %-26s %6d pairs -> %s\n", j.name, len(pairs), j.path)
		outs = append(outs, Output{Name: j.name, Path: path, Pairs: len(pairs)})
	}
	return outs, nil
}

// GenerateQA writes the entity question-answering dataset.
func GenerateQA(records []types.AnnotatedRecord, cfg types.DatasetConfig, outputDir string, w io.Writer) ([]Output, error) {
	sel, err := NewSelector(cfg)
	if err != nil {
		return nil, err
	}
	return runJobs([]job{
		{"entity_qa", QAPath, func() ([]types.TrainingPair, error) { return EntityQA(records, sel) }},
	}, outputDir, w)
}

// GenerateSummarization writes the vanilla, entity and multi-entity
// summarization datasets.
func GenerateSummarization(records []types.AnnotatedRecord, cfg types.DatasetConfig, outputDir string, w io.Writer) ([]Output, error) {
	return runJobs([]job{
		{"vanilla_summarization", VanillaSummaryPath, func() ([]types.TrainingPair, error) { return VanillaSummarization(records) }},
		{"entity_to_abstract", EntitySummaryPath, func() ([]types.TrainingPair, error) { return EntitySummarization(records) }},
		{"multi_entity_to_abstract", MultiEntitySummaryPath, func() ([]types.TrainingPair, error) {
			return MultiEntitySummarization(records, cfg.MaxSummaryEntities)
		}},
	}, outputDir, w)
}

// GenerateTextGen writes the five text generation datasets.
func GenerateTextGen(records []types.AnnotatedRecord, terms TermSource, outputDir string, w io.Writer) ([]Output, error) {
	return runJobs([]job{
		{"entity_to_text", EntityTextPath, func() ([]types.TrainingPair, error) { return EntityToText(records) }},
		{"multi_entity_to_text", MultiEntityTextPath, func() ([]types.TrainingPair, error) { return MultiEntityToText(records) }},
		{"keyword_to_abstract", KeywordTextPath, func() ([]types.TrainingPair, error) { return KeywordToText(records, terms) }},
		{"multi_keyword_to_text", MultiKeywordTextPath, func() ([]types.TrainingPair, error) { return MultiKeywordToText(records, terms) }},
		{"keywords_entities_to_text", KeywordEntityTextPath, func() ([]types.TrainingPair, error) { return KeywordEntityToText(records, terms) }},
	}, outputDir, w)
}

// CombineFamilies merges the default summarization and text generation
// siblings under outputDir.
func CombineFamilies(outputDir string, policy types.DedupPolicy, w io.Writer) ([]CombineReport, error) {
	families := []struct {
		inputs []string
		output string
	}{
		{SummarizationCombineInputs, CombinedSummaryPath},
		{TextGenCombineInputs, CombinedTextGenPath},
	}
	var reps []CombineReport
	for _, f := range families {
		inputs := make([]string, len(f.inputs))
		for i, in := range f.inputs {
			inputs[i] = filepath.Join(outputDir, in)
		}
		rep, err := Combine(inputs, policy, filepath.Join(outputDir, f.output), w)
		if err != nil {
			return reps, err
		}
		reps = append(reps, rep)
	}
	return reps, nil
}
