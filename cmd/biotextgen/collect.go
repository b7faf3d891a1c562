// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/biotextgen/internal/ingest"
)

var collectCmd = &cobra.Command{
	Use:   "collect [terms...]",
	Short: "Search PubMed and save raw abstracts per term",
	Long: `Collect runs one PubMed search per term, fetches the matching abstracts,
and writes one JSON file per term under the input directory together with
manifest.yaml. Terms come from the arguments, --terms-file, or the
configured defaults, in that order of preference. A failing term is
reported and skipped.`,
	RunE: runCollect,
}

func init() {
	collectCmd.Flags().String("terms-file", "", "file with one search term per line")
	collectCmd.Flags().Int("max-results", 0, "maximum hits per term (0 = config default)")

	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if n, _ := cmd.Flags().GetInt("max-results"); n > 0 {
		cfg.MaxResultsPerTerm = n
	}

	terms := args
	if len(terms) == 0 {
		if path, _ := cmd.Flags().GetString("terms-file"); path != "" {
			if terms, err = ingest.ReadTermFile(path); err != nil {
				return err
			}
		}
	}
	if len(terms) == 0 {
		terms = cfg.Ingest.Terms
	}
	if len(terms) == 0 {
		return fmt.Errorf("no search terms: pass terms, --terms-file, or set ingest.terms")
	}

	backend := ingest.NewPubMedBackend(cfg.Ingest, logger)
	summary, _, err := ingest.Collect(cmd.Context(), backend, terms, cfg, os.Stdout)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "\ncollected: %d, empty: %d, failed: %d, duplicate: %d, records: %d\n",
		summary.Collected, summary.Empty, summary.Failed, summary.Duplicate, summary.Records)
	return strictCheck(cmd, summary.Failed, "term(s)")
}
