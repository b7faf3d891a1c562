// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/biotextgen/internal/dataset"
	"github.com/pdiddy/biotextgen/pkg/types"
)

var combineCmd = &cobra.Command{
	Use:   "combine [inputs...]",
	Short: "Merge JSONL pair files and drop exact duplicates",
	Long: `Combine concatenates JSONL pair files in order and removes pairs whose
(input, target) was already seen. Inputs may be paths or glob patterns
(including **). A YAML report is written next to the output.

Without inputs, combine merges the default summarization and text
generation families under the output directory.`,
	RunE: runCombine,
}

func init() {
	combineCmd.Flags().StringP("output", "o", "", "combined output file (required with inputs)")
	combineCmd.Flags().String("policy", "", "duplicate policy: first or last (default from config)")

	rootCmd.AddCommand(combineCmd)
}

func runCombine(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	policy := cfg.DedupPolicy
	if p, _ := cmd.Flags().GetString("policy"); p != "" {
		policy = types.DedupPolicy(p)
	}

	if len(args) == 0 {
		reps, err := dataset.CombineFamilies(cfg.OutputDir, policy, os.Stdout)
		if err != nil {
			return err
		}
		malformed := 0
		for _, r := range reps {
			malformed += r.Malformed
		}
		return strictCheck(cmd, malformed, "line(s)")
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		return fmt.Errorf("--output is required when inputs are given")
	}
	rep, err := dataset.Combine(args, policy, output, os.Stdout)
	if err != nil {
		return err
	}
	return strictCheck(cmd, rep.Malformed+rep.SkippedFiles, "input(s)")
}
