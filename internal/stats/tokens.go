// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package stats

import (
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pdiddy/biotextgen/internal/corpus"
	"github.com/pdiddy/biotextgen/pkg/types"
)

// tokenPattern approximates a subword tokenizer's pre-split: runs of
// letters, runs of digits, and single punctuation marks.
var tokenPattern = regexp.MustCompile(`\pL+|\pN+|[^\s\pL\pN]`)

// Tokenize splits text into word, number and punctuation tokens.
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(text, -1)
}

// TokenizedRecord is a cleaned record with its token counts.
type TokenizedRecord struct {
	types.Record
	TitleTokens    int `json:"title_tokens"`
	AbstractTokens int `json:"abstract_tokens"`
}

// Description summarizes a sample like a dataframe describe().
type Description struct {
	Count  int     `json:"count" yaml:"count"`
	Mean   float64 `json:"mean" yaml:"mean"`
	Std    float64 `json:"std" yaml:"std"`
	Min    float64 `json:"min" yaml:"min"`
	Q25    float64 `json:"q25" yaml:"q25"`
	Median float64 `json:"median" yaml:"median"`
	Q75    float64 `json:"q75" yaml:"q75"`
	Max    float64 `json:"max" yaml:"max"`
}

// Describe computes summary statistics of xs. The standard deviation is the
// sample (n-1) estimate. An empty sample yields a zero Description.
func Describe(xs []float64) Description {
	if len(xs) == 0 {
		return Description{}
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	d := Description{
		Count:  len(sorted),
		Mean:   stat.Mean(sorted, nil),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Q25:    stat.Quantile(0.25, stat.LinInterp, sorted, nil),
		Median: stat.Quantile(0.5, stat.LinInterp, sorted, nil),
		Q75:    stat.Quantile(0.75, stat.LinInterp, sorted, nil),
	}
	if len(sorted) > 1 {
		d.Std = stat.StdDev(sorted, nil)
	}
	return d
}

// Histogram holds bin edges and counts; Counts[i] covers
// [Edges[i], Edges[i+1]).
type Histogram struct {
	Edges  []float64 `json:"edges" yaml:"edges"`
	Counts []float64 `json:"counts" yaml:"counts"`
}

// NewHistogram bins xs into n equal-width bins spanning the sample range.
func NewHistogram(xs []float64, n int) Histogram {
	if len(xs) == 0 || n <= 0 {
		return Histogram{}
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	lo, hi := floats.Min(sorted), floats.Max(sorted)
	// The last edge is exclusive; widen it so the maximum falls in the last bin.
	edges := floats.Span(make([]float64, n+1), lo, hi+1)
	counts := stat.Histogram(nil, edges, sorted, nil)
	return Histogram{Edges: edges, Counts: counts}
}

// TokenSummary is the token-length report for a corpus.
type TokenSummary struct {
	Title     Description `json:"title" yaml:"title"`
	Abstract  Description `json:"abstract" yaml:"abstract"`
	Histogram Histogram   `json:"abstract_histogram" yaml:"abstract_histogram"`
}

// TokenStats counts title and abstract tokens per record and summarizes
// the distributions.
func TokenStats(records []types.Record, bins int) ([]TokenizedRecord, TokenSummary) {
	out := make([]TokenizedRecord, len(records))
	titles := make([]float64, len(records))
	abstracts := make([]float64, len(records))
	for i, r := range records {
		t, a := len(Tokenize(r.Title)), len(Tokenize(r.Abstract))
		out[i] = TokenizedRecord{Record: r, TitleTokens: t, AbstractTokens: a}
		titles[i], abstracts[i] = float64(t), float64(a)
	}
	return out, TokenSummary{
		Title:     Describe(titles),
		Abstract:  Describe(abstracts),
		Histogram: NewHistogram(abstracts, bins),
	}
}

// TokenReport computes token statistics, writes the per-record counts
// under outputDir and prints the summary and histogram on w.
func TokenReport(records []types.Record, cfg types.StatsConfig, outputDir string, w io.Writer) (TokenSummary, error) {
	tokenized, s := TokenStats(records, cfg.HistogramBins)
	if err := corpus.WriteSnapshot(filepath.Join(outputDir, TokensPath), tokenized); err != nil {
		return s, err
	}

	fmt.Fprintf(w, "%-8s %8s %8s %8s %8s %8s %8s %8s %8s\n", "", "count", "mean", "std", "min", "25%", "50%", "75%", "max")
	for _, row := range []struct {
		name string
		d    Description
	}{{"title", s.Title}, {"abstract", s.Abstract}} {
		d := row.d
		fmt.Fprintf(w, "%-8s %8d %8.1f %8.1f %8.0f %8.1f %8.1f %8.1f %8.0f\n",
			row.name, d.Count, d.Mean, d.Std, d.Min, d.Q25, d.Median, d.Q75, d.Max)
	}
	PrintHistogram(w, s.Histogram, 40)
	return s, nil
}

// PrintHistogram draws h as horizontal bars scaled to width characters.
func PrintHistogram(w io.Writer, h Histogram, width int) {
	if len(h.Counts) == 0 {
		return
	}
	peak := floats.Max(h.Counts)
	fmt.Fprintln(w, "\nAbstract token lengths:")
	for i, c := range h.Counts {
		bar := 0
		if peak > 0 {
			bar = int(c / peak * float64(width))
		}
		fmt.Fprintf(w, "  [%6.0f, %6.0f) %6.0f %s\n", h.Edges[i], h.Edges[i+1], c, strings.Repeat("#", bar))
	}
}
