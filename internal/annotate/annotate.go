// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package annotate attaches named-entity mentions to cleaned records. The
// recognition model is a black box behind the Recognizer interface.
package annotate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/pdiddy/biotextgen/internal/corpus"
	"github.com/pdiddy/biotextgen/internal/httputil"
	"github.com/pdiddy/biotextgen/pkg/types"
)

// Recognizer maps text to entity mention spans.
type Recognizer interface {
	Recognize(ctx context.Context, text string) ([]types.Mention, error)
}

// Summary holds per-record outcome counts for one annotation run.
type Summary struct {
	Annotated int
	Failed    int
	Mentions  int
}

// Total returns the number of records processed.
func (s Summary) Total() int {
	return s.Annotated + s.Failed
}

// HasFailures reports whether the recognizer failed on any record.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// NewRecognizer builds the recognizer selected by cfg.Backend.
func NewRecognizer(cfg types.AnnotateConfig, log *zap.Logger) (Recognizer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	switch cfg.Backend {
	case types.AnnotatorGazetteer, "":
		g, err := LoadGazetteer(cfg.GazetteerPath)
		if err != nil {
			return nil, err
		}
		log.Debug("gazetteer loaded", zap.String("path", cfg.GazetteerPath), zap.Int("names", g.Len()))
		return g, nil
	case types.AnnotatorHTTP:
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("annotate.endpoint is required for the http backend")
		}
		return &HTTPRecognizer{
			Endpoint:  cfg.Endpoint,
			Token:     cfg.Token,
			UserAgent: cfg.UserAgent,
			Client:    httputil.NewClient(&http.Client{Timeout: cfg.Timeout}, 0, 0, log),
		}, nil
	default:
		return nil, fmt.Errorf("unknown annotator backend %q", cfg.Backend)
	}
}

// Entities filters mentions shorter than minLen characters and deduplicates
// the rest case-sensitively, keeping first-seen order.
func Entities(mentions []types.Mention, minLen int) []string {
	seen := make(map[string]struct{}, len(mentions))
	out := make([]string, 0, len(mentions))
	for _, m := range mentions {
		text := strings.TrimSpace(m.Text)
		if utf8.RuneCountInString(text) < minLen {
			continue
		}
		if _, ok := seen[text]; ok {
			continue
		}
		seen[text] = struct{}{}
		out = append(out, text)
	}
	return out
}

// Annotate runs the recognizer over every record's abstract. A record whose
// recognition fails is reported on w and kept with no entities.
func Annotate(ctx context.Context, rec Recognizer, records []types.Record, cfg types.AnnotateConfig, w io.Writer) ([]types.AnnotatedRecord, Summary, error) {
	minLen := cfg.MinMentionLength
	if minLen <= 0 {
		minLen = 3
	}

	var s Summary
	out := make([]types.AnnotatedRecord, 0, len(records))
	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return nil, s, err
		}
		mentions, err := rec.Recognize(ctx, r.Abstract)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", r.PMID, err)
			s.Failed++
			out = append(out, r.WithEntities(nil))
			continue
		}
		ents := Entities(mentions, minLen)
		s.Annotated++
		s.Mentions += len(ents)
		out = append(out, r.WithEntities(ents))
	}
	return out, s, nil
}

// Run annotates the cleaned corpus and writes the annotated snapshot under
// cfg.OutputDir.
func Run(ctx context.Context, rec Recognizer, records []types.Record, cfg types.PipelineConfig, w io.Writer) ([]types.AnnotatedRecord, Summary, error) {
	out, s, err := Annotate(ctx, rec, records, cfg.Annotate, w)
	if err != nil {
		return nil, s, err
	}
	if err := corpus.WriteSnapshot(filepath.Join(cfg.OutputDir, corpus.AnnotatedPath), out); err != nil {
		return nil, s, err
	}
	fmt.Fprintf(w, "\nAnnotated %d records: %d entities, %d failed\n", s.Total(), s.Mentions, s.Failed)
	return out, s, nil
}
