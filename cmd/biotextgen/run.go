// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/biotextgen/internal/annotate"
	"github.com/pdiddy/biotextgen/internal/ingest"
	"github.com/pdiddy/biotextgen/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the whole pipeline in order",
	Long: `Run executes collect, clean, annotate, reduce, stats, every dataset
synthesizer and both combines with the configured settings, then prints a
per-stage summary table and writes run_summary.yaml under the output
directory.`,
	RunE: runPipeline,
}

func init() {
	runCmd.Flags().Bool("skip-collect", false, "reuse the raw files already listed in the input directory")
	runCmd.Flags().Bool("index", false, "also build the SQLite corpus index")

	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	skip, _ := cmd.Flags().GetBool("skip-collect")
	index, _ := cmd.Flags().GetBool("index")

	rec, err := annotate.NewRecognizer(cfg.Annotate, logger)
	if err != nil {
		return err
	}
	ex, sp, err := reduceDeps(cfg)
	if err != nil {
		return err
	}
	deps := pipeline.Deps{Recognizer: rec, Extractor: ex, Splitter: sp}
	if !skip {
		deps.Backend = ingest.NewPubMedBackend(cfg.Ingest, logger)
	}

	rep, err := pipeline.Run(cmd.Context(), cfg, deps, pipeline.Options{SkipCollect: skip, Index: index}, os.Stdout)
	if err != nil {
		return err
	}
	return strictCheck(cmd, rep.Failures(), "unit(s) of work")
}
