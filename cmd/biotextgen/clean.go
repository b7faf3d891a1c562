// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/biotextgen/internal/ingest"
	"github.com/pdiddy/biotextgen/internal/normalize"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Merge, validate and clean the raw abstracts",
	Long: `Clean loads every raw file listed in the input manifest (or every *.json
file in the input directory when there is no manifest), merges records that
share a PMID, drops incomplete records, and restricts abstracts to the
cleaning allow-list. The result is written to cleaned/all_abstracts_cleaned.json.`,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().String("manifest", "", "manifest file (default: <input-dir>/manifest.yaml)")
	cleanCmd.Flags().Bool("no-fold", false, "keep accented letters instead of folding them to ASCII")

	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if noFold, _ := cmd.Flags().GetBool("no-fold"); noFold {
		cfg.FoldDiacritics = false
	}

	m, err := openManifest(cmd, cfg.InputDir)
	if err != nil {
		return err
	}
	_, _, err = normalize.Clean(m, cfg, os.Stdout)
	return err
}

func openManifest(cmd *cobra.Command, inputDir string) (ingest.Manifest, error) {
	if path, _ := cmd.Flags().GetString("manifest"); path != "" {
		return ingest.LoadManifest(path)
	}
	m, err := ingest.OpenManifest(inputDir)
	if err != nil {
		return m, fmt.Errorf("opening manifest in %s: %w", inputDir, err)
	}
	return m, nil
}
