// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/biotextgen/pkg/types"
)

// CombineReport describes one Combine run.
type CombineReport struct {
	RunID                 string   `yaml:"run_id"`
	Policy                string   `yaml:"policy"`
	Inputs                []string `yaml:"inputs"`
	Output                string   `yaml:"output"`
	SkippedFiles          int      `yaml:"skipped_files"`
	Malformed             int      `yaml:"malformed_lines"`
	Loaded                int      `yaml:"loaded"`
	Written               int      `yaml:"written"`
	Duplicates            int      `yaml:"duplicates"`
	UniqueIdentifiers     int      `yaml:"unique_identifiers"`
	AvgPairsPerIdentifier float64  `yaml:"avg_pairs_per_identifier"`
}

// CombinePairs concatenates lists in order and removes pairs whose
// (input, target) key was already seen. With DedupFirst the first occurrence
// is kept; with DedupLast the first occurrence's position holds the last
// occurrence's content. The second result is the number of pairs removed.
func CombinePairs(lists [][]types.TrainingPair, policy types.DedupPolicy) ([]types.TrainingPair, int) {
	index := make(map[[2]string]int)
	var out []types.TrainingPair
	dups := 0
	for _, list := range lists {
		for _, p := range list {
			k := p.Key()
			if i, ok := index[k]; ok {
				dups++
				if policy == types.DedupLast {
					out[i] = p
				}
				continue
			}
			index[k] = len(out)
			out = append(out, p)
		}
	}
	return out, dups
}

// ExpandInputs resolves doublestar patterns in inputs, keeping list order
// and dropping repeated paths. Plain paths pass through unchanged even when
// they do not exist, so the reader reports them.
func ExpandInputs(inputs []string) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	for _, in := range inputs {
		if !strings.ContainsAny(in, "*?[{") {
			add(in)
			continue
		}
		matches, err := doublestar.FilepathGlob(in)
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", in, err)
		}
		for _, m := range matches {
			add(m)
		}
	}
	return out, nil
}

// Combine merges the pair files named by inputs into output, deduplicating
// by exact (input, target). Unreadable files and malformed lines are reported
// on w and skipped. A YAML report is written next to the output.
func Combine(inputs []string, policy types.DedupPolicy, output string, w io.Writer) (CombineReport, error) {
	if policy == "" {
		policy = types.DedupFirst
	}
	if policy != types.DedupFirst && policy != types.DedupLast {
		return CombineReport{}, fmt.Errorf("unknown dedup policy %q", policy)
	}

	files, err := ExpandInputs(inputs)
	if err != nil {
		return CombineReport{}, err
	}

	rep := CombineReport{
		RunID:  uuid.NewString(),
		Policy: string(policy),
		Output: output,
	}
	var lists [][]types.TrainingPair
	for _, f := range files {
		if f == output {
			continue
		}
		pairs, bad, err := ReadJSONL(f, w)
		if err != nil {
			fmt.Fprintf(w, "skipped %s: %v\n", f, err)
			rep.SkippedFiles++
			continue
		}
		rep.Inputs = append(rep.Inputs, f)
		rep.Malformed += bad
		rep.Loaded += len(pairs)
		lists = append(lists, pairs)
	}

	merged, dups := CombinePairs(lists, policy)
	rep.Written = len(merged)
	rep.Duplicates = dups

	ids := make(map[string]struct{})
	for _, p := range merged {
		ids[p.PMID] = struct{}{}
	}
	rep.UniqueIdentifiers = len(ids)
	if len(ids) > 0 {
		rep.AvgPairsPerIdentifier = float64(len(merged)) / float64(len(ids))
	}

	if err := WriteJSONL(output, merged); err != nil {
		return rep, err
	}
	if err := writeReport(ReportPath(output), rep); err != nil {
		return rep, err
	}

	fmt.Fprintf(w, "Combined %d files: loaded %d, wrote %d, removed %d duplicates -> %s\n",
		len(rep.Inputs), rep.Loaded, rep.Written, rep.Duplicates, output)
	fmt.Fprintf(w, "  unique identifiers: %d, avg pairs per identifier: %.2f\n",
		rep.UniqueIdentifiers, rep.AvgPairsPerIdentifier)
	return rep, nil
}

// ReportPath returns the report location for a combined output file.
func ReportPath(output string) string {
	return strings.TrimSuffix(output, ".jsonl") + "_report.yaml"
}

func writeReport(path string, rep CombineReport) error {
	data, err := yaml.Marshal(&rep)
	if err != nil {
		return fmt.Errorf("marshaling combine report: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
