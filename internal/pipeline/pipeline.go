// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs every stage in order: collect, clean, annotate,
// reduce, stats, dataset synthesis, combine and (optionally) indexing.
// Each stage reads the snapshot the previous stage wrote.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/biotextgen/internal/annotate"
	"github.com/pdiddy/biotextgen/internal/corpus"
	"github.com/pdiddy/biotextgen/internal/corpusdb"
	"github.com/pdiddy/biotextgen/internal/dataset"
	"github.com/pdiddy/biotextgen/internal/ingest"
	"github.com/pdiddy/biotextgen/internal/keyphrase"
	"github.com/pdiddy/biotextgen/internal/normalize"
	"github.com/pdiddy/biotextgen/internal/reduce"
	"github.com/pdiddy/biotextgen/internal/stats"
	"github.com/pdiddy/biotextgen/pkg/types"
)

// ReportPath is the run summary location relative to the output directory.
const ReportPath = "run_summary.yaml"

// Deps holds the injected model and network handles. Backend may be nil
// when collection is skipped.
type Deps struct {
	Backend    ingest.Backend
	Recognizer annotate.Recognizer
	Extractor  keyphrase.Extractor
	Splitter   reduce.SentenceSplitter
}

// Options selects optional stages.
type Options struct {
	// SkipCollect reuses the raw files listed by the input manifest.
	SkipCollect bool

	// Index builds the SQLite corpus index from the reduced snapshot.
	Index bool
}

// StageResult is one row of the run summary.
type StageResult struct {
	Stage   string        `yaml:"stage"`
	In      int           `yaml:"in"`
	Out     int           `yaml:"out"`
	Failed  int           `yaml:"failed"`
	Note    string        `yaml:"note,omitempty"`
	Elapsed time.Duration `yaml:"elapsed"`
}

// Report summarizes one pipeline run.
type Report struct {
	RunID    string        `yaml:"run_id"`
	Started  time.Time     `yaml:"started"`
	Finished time.Time     `yaml:"finished"`
	Stages   []StageResult `yaml:"stages"`
}

// HasFailures reports whether any stage counted a failed unit of work.
func (r Report) HasFailures() bool {
	for _, s := range r.Stages {
		if s.Failed > 0 {
			return true
		}
	}
	return false
}

// Failures returns the total number of failed units across stages.
func (r Report) Failures() int {
	n := 0
	for _, s := range r.Stages {
		n += s.Failed
	}
	return n
}

type runner struct {
	rep Report
	w   io.Writer
}

func (r *runner) stage(name string) func(StageResult) {
	fmt.Fprintf(r.w, "\n== %s ==\n", name)
	start := time.Now()
	return func(res StageResult) {
		res.Stage = name
		res.Elapsed = time.Since(start).Round(time.Millisecond)
		r.rep.Stages = append(r.rep.Stages, res)
	}
}

// Run executes the pipeline with cfg and deps, writing progress to w. It
// stops at the first structural error; per-unit failures are counted in
// the report. The report is written under cfg.OutputDir even when a stage
// fails.
func Run(ctx context.Context, cfg types.PipelineConfig, deps Deps, opts Options, w io.Writer) (Report, error) {
	r := &runner{
		rep: Report{RunID: uuid.NewString(), Started: time.Now().UTC()},
		w:   w,
	}
	err := r.run(ctx, cfg, deps, opts)
	r.rep.Finished = time.Now().UTC()

	PrintReport(w, r.rep)
	if werr := writeReport(filepath.Join(cfg.OutputDir, ReportPath), r.rep); werr != nil && err == nil {
		err = werr
	}
	return r.rep, err
}

func (r *runner) run(ctx context.Context, cfg types.PipelineConfig, deps Deps, opts Options) error {
	w := r.w

	var m ingest.Manifest
	if opts.SkipCollect {
		var err error
		if m, err = ingest.OpenManifest(cfg.InputDir); err != nil {
			return fmt.Errorf("opening manifest: %w", err)
		}
		fmt.Fprintf(w, "skipped collect: using %d files from %s\n", len(m.Entries), cfg.InputDir)
	} else {
		if deps.Backend == nil {
			return fmt.Errorf("collect: no backend configured")
		}
		done := r.stage("collect")
		cs, cm, err := ingest.Collect(ctx, deps.Backend, cfg.Ingest.Terms, cfg, w)
		done(StageResult{In: cs.Total(), Out: cs.Records, Failed: cs.Failed, Note: fmt.Sprintf("%d empty, %d duplicate terms", cs.Empty, cs.Duplicate)})
		if err != nil {
			return fmt.Errorf("collect: %w", err)
		}
		m = cm
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	done := r.stage("clean")
	cleaned, ns, err := normalize.Clean(m, cfg, w)
	done(StageResult{In: ns.Loaded, Out: ns.Kept, Note: fmt.Sprintf("%d merged, %d dropped", ns.Merged, ns.Dropped())})
	if err != nil {
		return fmt.Errorf("clean: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	done = r.stage("annotate")
	annotated, as, err := annotate.Run(ctx, deps.Recognizer, cleaned, cfg, w)
	done(StageResult{In: len(cleaned), Out: as.Annotated, Failed: as.Failed, Note: fmt.Sprintf("%d mentions", as.Mentions)})
	if err != nil {
		return fmt.Errorf("annotate: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	done = r.stage("reduce")
	_, rs, err := reduce.New(deps.Extractor, deps.Splitter, cfg).Run(annotated, cfg.OutputDir, w)
	done(StageResult{In: len(annotated), Out: rs.Reduced, Failed: rs.Failed, Note: fmt.Sprintf("%d with matched text", rs.Matched)})
	if err != nil {
		return fmt.Errorf("reduce: %w", err)
	}

	done = r.stage("stats")
	top, err := stats.EntityReport(annotated, cfg.Stats, cfg.OutputDir, w)
	if err != nil {
		done(StageResult{In: len(annotated)})
		return fmt.Errorf("stats: %w", err)
	}
	if _, err := stats.TokenReport(cleaned, cfg.Stats, cfg.OutputDir, w); err != nil {
		done(StageResult{In: len(annotated)})
		return fmt.Errorf("stats: %w", err)
	}
	done(StageResult{In: len(annotated), Out: len(top), Note: "top multi-word entities"})

	terms, skipped := ingest.BuildTermIndex(m, w)

	if err := ctx.Err(); err != nil {
		return err
	}
	done = r.stage("datasets")
	var outs []dataset.Output
	qa, err := dataset.GenerateQA(annotated, cfg.Dataset, cfg.OutputDir, w)
	outs = append(outs, qa...)
	if err == nil {
		var sum []dataset.Output
		sum, err = dataset.GenerateSummarization(annotated, cfg.Dataset, cfg.OutputDir, w)
		outs = append(outs, sum...)
	}
	if err == nil {
		var tg []dataset.Output
		tg, err = dataset.GenerateTextGen(annotated, terms, cfg.OutputDir, w)
		outs = append(outs, tg...)
	}
	pairs := 0
	for _, o := range outs {
		pairs += o.Pairs
	}
	done(StageResult{In: len(annotated), Out: pairs, Failed: skipped, Note: fmt.Sprintf("%d files, %d terms indexed", len(outs), terms.Len())})
	if err != nil {
		return fmt.Errorf("datasets: %w", err)
	}

	done = r.stage("combine")
	reps, err := dataset.CombineFamilies(cfg.OutputDir, cfg.DedupPolicy, w)
	loaded, written, dups, malformed := 0, 0, 0, 0
	for _, cr := range reps {
		loaded += cr.Loaded
		written += cr.Written
		dups += cr.Duplicates
		malformed += cr.Malformed
	}
	done(StageResult{In: loaded, Out: written, Failed: malformed, Note: fmt.Sprintf("%d duplicates", dups)})
	if err != nil {
		return fmt.Errorf("combine: %w", err)
	}

	if !opts.Index {
		return nil
	}
	done = r.stage("index")
	store, err := corpusdb.Open(cfg.OutputDir, 0)
	if err != nil {
		done(StageResult{})
		return fmt.Errorf("index: %w", err)
	}
	defer store.Close()
	is, err := store.Ingest(ctx, filepath.Join(cfg.OutputDir, corpus.ReducedPath), terms, w)
	done(StageResult{In: len(annotated), Out: is.Records, Note: fmt.Sprintf("%d entities", is.Entities)})
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}
	return nil
}

// PrintReport writes the per-stage summary table.
func PrintReport(w io.Writer, rep Report) {
	fmt.Fprintf(w, "\nRun %s\n", rep.RunID)
	fmt.Fprintf(w, "%-10s  %8s  %8s  %6s  %9s  %s\n", "Stage", "In", "Out", "Failed", "Elapsed", "Note")
	fmt.Fprintln(w, strings.Repeat("-", 72))
	for _, s := range rep.Stages {
		fmt.Fprintf(w, "%-10s  %8d  %8d  %6d  %9s  %s\n", s.Stage, s.In, s.Out, s.Failed, s.Elapsed, s.Note)
	}
}

func writeReport(path string, rep Report) error {
	data, err := yaml.Marshal(&rep)
	if err != nil {
		return fmt.Errorf("marshaling run summary: %w", err)
	}
	return corpus.WriteFileAtomic(path, data)
}
