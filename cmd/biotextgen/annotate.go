// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/biotextgen/internal/annotate"
	"github.com/pdiddy/biotextgen/internal/corpus"
	"github.com/pdiddy/biotextgen/pkg/types"
)

var annotateCmd = &cobra.Command{
	Use:   "annotate",
	Short: "Recognize biomedical entities in the cleaned abstracts",
	Long: `Annotate runs the configured entity recognizer (a gazetteer file or a
remote NER endpoint) over every cleaned abstract and writes
enriched/abstracts_with_entities.json. Records the recognizer fails on are
kept with an empty entity list.`,
	RunE: runAnnotate,
}

func init() {
	annotateCmd.Flags().String("backend", "", "recognizer backend: gazetteer or http")
	annotateCmd.Flags().String("gazetteer", "", "gazetteer file, one entity name per line")
	annotateCmd.Flags().String("endpoint", "", "NER service URL for the http backend")

	rootCmd.AddCommand(annotateCmd)
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetString("backend"); v != "" {
		cfg.Annotate.Backend = types.AnnotatorBackend(v)
	}
	if v, _ := cmd.Flags().GetString("gazetteer"); v != "" {
		cfg.Annotate.GazetteerPath = v
	}
	if v, _ := cmd.Flags().GetString("endpoint"); v != "" {
		cfg.Annotate.Endpoint = v
	}

	records, err := corpus.ReadSnapshot[types.Record](filepath.Join(cfg.OutputDir, corpus.CleanedPath))
	if err != nil {
		return err
	}
	rec, err := annotate.NewRecognizer(cfg.Annotate, logger)
	if err != nil {
		return err
	}
	_, summary, err := annotate.Run(cmd.Context(), rec, records, cfg, os.Stdout)
	if err != nil {
		return err
	}
	return strictCheck(cmd, summary.Failed, "record(s)")
}
