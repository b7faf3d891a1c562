// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/biotextgen/internal/corpus"
	"github.com/pdiddy/biotextgen/internal/dataset"
	"github.com/pdiddy/biotextgen/internal/ingest"
	"github.com/pdiddy/biotextgen/pkg/types"
)

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Synthesize training datasets from the annotated corpus",
	Long: `Dataset turns annotated records into (input, target) training pairs and
writes them as JSONL under training/. Use a subcommand per family.`,
}

var datasetQACmd = &cobra.Command{
	Use:   "qa",
	Short: "Write the entity question-answering dataset",
	RunE:  runDatasetQA,
}

var datasetSummarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Write the vanilla, entity and multi-entity summarization datasets",
	RunE:  runDatasetSummarize,
}

var datasetTextGenCmd = &cobra.Command{
	Use:   "textgen",
	Short: "Write the entity, keyword and mixed text generation datasets",
	Long: `Textgen writes five text generation datasets. The keyword variants need
the search terms each record was collected under, read from the raw files
listed in the input manifest.`,
	RunE: runDatasetTextGen,
}

func init() {
	datasetCmd.PersistentFlags().String("policy", "", "question template selection: round_robin or random")
	datasetCmd.PersistentFlags().Int64("seed", 0, "seed for random template selection (0 = config default)")
	datasetTextGenCmd.Flags().String("manifest", "", "manifest file (default: <input-dir>/manifest.yaml)")

	datasetCmd.AddCommand(datasetQACmd)
	datasetCmd.AddCommand(datasetSummarizeCmd)
	datasetCmd.AddCommand(datasetTextGenCmd)
	rootCmd.AddCommand(datasetCmd)
}

func datasetInputs(cmd *cobra.Command) (types.PipelineConfig, []types.AnnotatedRecord, error) {
	cfg, err := loadConfig()
	if err != nil {
		return cfg, nil, err
	}
	if p, _ := cmd.Flags().GetString("policy"); p != "" {
		cfg.Dataset.TemplatePolicy = types.TemplatePolicy(p)
	}
	if s, _ := cmd.Flags().GetInt64("seed"); s != 0 {
		cfg.Dataset.Seed = s
	}
	records, err := corpus.ReadSnapshot[types.AnnotatedRecord](filepath.Join(cfg.OutputDir, corpus.AnnotatedPath))
	return cfg, records, err
}

func runDatasetQA(cmd *cobra.Command, args []string) error {
	cfg, records, err := datasetInputs(cmd)
	if err != nil {
		return err
	}
	_, err = dataset.GenerateQA(records, cfg.Dataset, cfg.OutputDir, os.Stdout)
	return err
}

func runDatasetSummarize(cmd *cobra.Command, args []string) error {
	cfg, records, err := datasetInputs(cmd)
	if err != nil {
		return err
	}
	_, err = dataset.GenerateSummarization(records, cfg.Dataset, cfg.OutputDir, os.Stdout)
	return err
}

func runDatasetTextGen(cmd *cobra.Command, args []string) error {
	cfg, records, err := datasetInputs(cmd)
	if err != nil {
		return err
	}
	m, err := openManifest(cmd, cfg.InputDir)
	if err != nil {
		return err
	}
	terms, skipped := ingest.BuildTermIndex(m, os.Stdout)
	fmt.Fprintf(os.Stdout, "term index: %d records from %d files (%d skipped)\n", terms.Len(), len(m.Entries), skipped)

	if _, err := dataset.GenerateTextGen(records, terms, cfg.OutputDir, os.Stdout); err != nil {
		return err
	}
	return strictCheck(cmd, skipped, "raw file(s)")
}
