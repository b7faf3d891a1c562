// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/biotextgen/internal/corpus"
	"github.com/pdiddy/biotextgen/internal/normalize"
	"github.com/pdiddy/biotextgen/pkg/types"
)

// --- gazetteer ---

func TestGazetteerRecognize(t *testing.T) {
	g := NewGazetteer([]string{"cancer", "cancer cells", "PD-1", "immune checkpoint inhibitor", "T cells"})

	text := "Cancer cells evade T  cells via PD-1; an immune checkpoint inhibitor restores cancer control."
	mentions, err := g.Recognize(context.Background(), text)
	require.NoError(t, err)

	var got []string
	for _, m := range mentions {
		got = append(got, m.Text)
		assert.Equal(t, m.Text, text[m.Start:m.End])
	}
	assert.Equal(t, []string{"Cancer cells", "T  cells", "PD-1", "immune checkpoint inhibitor", "cancer"}, got)
}

func TestGazetteerRecognize_CleanedText(t *testing.T) {
	g := NewGazetteer([]string{"non-small cell lung cancer", "PD-1 inhibitors", "Sjögren syndrome"})

	text := normalize.CleanText("Patients with non-small cell lung cancer received PD-1 inhibitors; Sjögren syndrome was excluded.",
		normalize.Options{FoldDiacritics: true})
	require.Equal(t, "Patients with nonsmall cell lung cancer received PD1 inhibitors; Sjogren syndrome was excluded.", text)

	mentions, err := g.Recognize(context.Background(), text)
	require.NoError(t, err)

	var got []string
	for _, m := range mentions {
		got = append(got, m.Text)
	}
	assert.Equal(t, []string{"nonsmall cell lung cancer", "PD1 inhibitors", "Sjogren syndrome"}, got)
}

func TestGazetteerRecognize_NoNames(t *testing.T) {
	mentions, err := NewGazetteer(nil).Recognize(context.Background(), "anything at all")
	require.NoError(t, err)
	assert.Empty(t, mentions)
}

func TestLoadGazetteer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gazetteer.txt")
	require.NoError(t, os.WriteFile(path, []byte("# oncology\nmelanoma\n\nbreast cancer\n"), 0o644))

	g, err := LoadGazetteer(path)
	require.NoError(t, err)
	assert.Equal(t, 2, g.Len())

	_, err = LoadGazetteer(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

// --- http backend ---

func TestHTTPRecognizer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		var req nerRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Tumor necrosis factor rises.", req.Text)
		fmt.Fprint(w, `{"entities":[{"text":"Tumor necrosis factor","start":0,"end":21}]}`)
	}))
	defer srv.Close()

	h := &HTTPRecognizer{Endpoint: srv.URL, Token: "secret"}
	mentions, err := h.Recognize(context.Background(), "Tumor necrosis factor rises.")
	require.NoError(t, err)
	assert.Equal(t, []types.Mention{{Text: "Tumor necrosis factor", Start: 0, End: 21}}, mentions)
}

func TestHTTPRecognizer_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := (&HTTPRecognizer{Endpoint: srv.URL}).Recognize(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestNewRecognizer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "g.txt")
	require.NoError(t, os.WriteFile(path, []byte("leukemia\n"), 0o644))

	r, err := NewRecognizer(types.AnnotateConfig{Backend: types.AnnotatorGazetteer, GazetteerPath: path}, nil)
	require.NoError(t, err)
	assert.IsType(t, &GazetteerRecognizer{}, r)

	r, err = NewRecognizer(types.AnnotateConfig{Backend: types.AnnotatorHTTP, Endpoint: "http://localhost:1"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &HTTPRecognizer{}, r)

	_, err = NewRecognizer(types.AnnotateConfig{Backend: types.AnnotatorHTTP}, nil)
	assert.Error(t, err)

	_, err = NewRecognizer(types.AnnotateConfig{Backend: "spacy"}, nil)
	assert.ErrorContains(t, err, "unknown annotator backend")
}

// --- entity filtering ---

func TestEntities(t *testing.T) {
	mentions := []types.Mention{
		{Text: "IL"},
		{Text: "p53"},
		{Text: "Cancer cells"},
		{Text: "cancer cells"},
		{Text: " p53 "},
		{Text: "αβ"},
		{Text: "αβγ"},
	}
	assert.Equal(t, []string{"p53", "Cancer cells", "cancer cells", "αβγ"}, Entities(mentions, 3))
	assert.Equal(t, []string{}, Entities(nil, 3))
}

// --- Annotate ---

type stubRecognizer struct {
	failOn string
}

func (s stubRecognizer) Recognize(_ context.Context, text string) ([]types.Mention, error) {
	if strings.Contains(text, s.failOn) {
		return nil, errors.New("model crashed")
	}
	var out []types.Mention
	for _, w := range strings.Fields(text) {
		out = append(out, types.Mention{Text: strings.Trim(w, ".")})
	}
	return out, nil
}

func TestAnnotate(t *testing.T) {
	records := []types.Record{
		{PMID: "1", Title: "A", Abstract: "Lymphoma and lymphoma cells."},
		{PMID: "2", Title: "B", Abstract: "poison pill"},
	}

	var buf bytes.Buffer
	out, s, err := Annotate(context.Background(), stubRecognizer{failOn: "poison"}, records, types.AnnotateConfig{MinMentionLength: 3}, &buf)
	require.NoError(t, err)

	require.Len(t, out, 2)
	assert.Equal(t, []string{"Lymphoma", "and", "lymphoma", "cells"}, out[0].Entities)
	assert.Equal(t, []string{}, out[1].Entities)
	assert.Equal(t, records[1], out[1].Base())
	assert.Equal(t, Summary{Annotated: 1, Failed: 1, Mentions: 4}, s)
	assert.True(t, s.HasFailures())
	assert.Contains(t, buf.String(), "failed  2: model crashed")
}

func TestRun_WritesSnapshot(t *testing.T) {
	cfg := types.DefaultConfig()
	cfg.OutputDir = t.TempDir()
	records := []types.Record{{PMID: "9", Title: "T", Abstract: "Melanoma spreads."}}

	var buf bytes.Buffer
	_, _, err := Run(context.Background(), NewGazetteer([]string{"melanoma"}), records, cfg, &buf)
	require.NoError(t, err)

	saved, err := corpus.ReadSnapshot[types.AnnotatedRecord](filepath.Join(cfg.OutputDir, corpus.AnnotatedPath))
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, []string{"Melanoma"}, saved[0].Entities)
}
