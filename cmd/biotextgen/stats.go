// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/biotextgen/internal/corpus"
	"github.com/pdiddy/biotextgen/internal/stats"
	"github.com/pdiddy/biotextgen/pkg/types"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Report corpus statistics",
	Long: `Stats computes read-only analytics over the corpus snapshots: the most
frequent multi-word entities and the token-length distributions of titles
and abstracts.`,
}

var statsEntitiesCmd = &cobra.Command{
	Use:   "entities",
	Short: "Count the most frequent multi-word entities",
	Long: `Entities counts multi-word entity mentions across the annotated corpus
and writes the top N as [entity, count] pairs to
processed/top_multiword_entities.json.`,
	RunE: runStatsEntities,
}

var statsTokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "Summarize title and abstract token lengths",
	Long: `Tokens counts title and abstract tokens for every cleaned record, writes
processed/abstracts_with_tokens.json, and prints descriptive statistics and
a histogram of abstract lengths.`,
	RunE: runStatsTokens,
}

func init() {
	statsEntitiesCmd.Flags().Int("top", 0, "number of entities reported (0 = config default)")
	statsTokensCmd.Flags().Int("bins", 0, "histogram bins (0 = config default)")

	statsCmd.AddCommand(statsEntitiesCmd)
	statsCmd.AddCommand(statsTokensCmd)
	rootCmd.AddCommand(statsCmd)
}

func runStatsEntities(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if n, _ := cmd.Flags().GetInt("top"); n > 0 {
		cfg.Stats.TopEntities = n
	}
	records, err := corpus.ReadSnapshot[types.AnnotatedRecord](filepath.Join(cfg.OutputDir, corpus.AnnotatedPath))
	if err != nil {
		return err
	}
	_, err = stats.EntityReport(records, cfg.Stats, cfg.OutputDir, os.Stdout)
	return err
}

func runStatsTokens(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if n, _ := cmd.Flags().GetInt("bins"); n > 0 {
		cfg.Stats.HistogramBins = n
	}
	records, err := corpus.ReadSnapshot[types.Record](filepath.Join(cfg.OutputDir, corpus.CleanedPath))
	if err != nil {
		return err
	}
	_, err = stats.TokenReport(records, cfg.Stats, cfg.OutputDir, os.Stdout)
	return err
}
