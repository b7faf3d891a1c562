// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/biotextgen/internal/corpus"
	"github.com/pdiddy/biotextgen/internal/keyphrase"
	"github.com/pdiddy/biotextgen/internal/reduce"
	"github.com/pdiddy/biotextgen/pkg/types"
)

var reduceCmd = &cobra.Command{
	Use:   "reduce",
	Short: "Reduce abstracts to their entity-bearing keyphrase sentences",
	Long: `Reduce extracts ranked keyphrases from each annotated abstract, keeps
those sharing a whole word with an entity mention, drops phrases contained
in a longer kept phrase, and collects the abstract sentences that mention a
survivor. The result is written to enriched/abstracts_to_text.json.`,
	RunE: runReduce,
}

func init() {
	reduceCmd.Flags().Int("top-k", 0, "keyphrase candidates kept per abstract (0 = config default)")
	reduceCmd.Flags().Int("max-ngram", 0, "longest candidate phrase in words (0 = config default)")
	reduceCmd.Flags().String("stopwords", "", "stopword list replacing the built-in English list")

	rootCmd.AddCommand(reduceCmd)
}

func runReduce(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if n, _ := cmd.Flags().GetInt("top-k"); n > 0 {
		cfg.TopKKeyphrases = n
	}
	if n, _ := cmd.Flags().GetInt("max-ngram"); n > 0 {
		cfg.Keyphrase.MaxNgram = n
	}
	if p, _ := cmd.Flags().GetString("stopwords"); p != "" {
		cfg.Keyphrase.StopwordsPath = p
	}

	records, err := corpus.ReadSnapshot[types.AnnotatedRecord](filepath.Join(cfg.OutputDir, corpus.AnnotatedPath))
	if err != nil {
		return err
	}
	ex, sp, err := reduceDeps(cfg)
	if err != nil {
		return err
	}
	_, summary, err := reduce.New(ex, sp, cfg).Run(records, cfg.OutputDir, os.Stdout)
	if err != nil {
		return err
	}
	return strictCheck(cmd, summary.Failed, "record(s)")
}

// reduceDeps builds the RAKE extractor and the Punkt sentence splitter.
func reduceDeps(cfg types.PipelineConfig) (keyphrase.Extractor, reduce.SentenceSplitter, error) {
	stop := keyphrase.DefaultStopwords()
	if cfg.Keyphrase.StopwordsPath != "" {
		var err error
		if stop, err = keyphrase.LoadStopwords(cfg.Keyphrase.StopwordsPath); err != nil {
			return nil, nil, err
		}
	}
	sp, err := reduce.NewPunktSplitter()
	if err != nil {
		return nil, nil, err
	}
	return keyphrase.NewRAKE(stop), sp, nil
}
