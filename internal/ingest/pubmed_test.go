// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/biotextgen/pkg/types"
)

const efetchXML = `<?xml version="1.0" ?>
<PubmedArticleSet>
  <PubmedArticle>
    <MedlineCitation>
      <PMID Version="1">101</PMID>
      <Article>
        <ArticleTitle>PD-1 blockade in <i>melanoma</i></ArticleTitle>
        <Abstract>
          <AbstractText Label="BACKGROUND">Immune checkpoint inhibitors help.</AbstractText>
          <AbstractText Label="RESULTS">Survival improved &amp; toxicity was low.</AbstractText>
        </Abstract>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
  <PubmedArticle>
    <MedlineCitation>
      <PMID Version="1">102</PMID>
      <Article>
        <ArticleTitle>Letter without abstract</ArticleTitle>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
</PubmedArticleSet>`

// eutilsServer stands in for NCBI E-utilities and restores eutilsBase on cleanup.
func eutilsServer(t *testing.T, h http.HandlerFunc) {
	t.Helper()
	srv := httptest.NewServer(h)
	orig := eutilsBase
	eutilsBase = srv.URL
	t.Cleanup(func() {
		eutilsBase = orig
		srv.Close()
	})
}

func testIngestCfg() types.IngestConfig {
	cfg := types.DefaultConfig().Ingest
	cfg.RequestDelay = 0
	cfg.Email = "dev@example.org"
	cfg.APIKey = "k123"
	return cfg
}

func TestPubMedSearch(t *testing.T) {
	eutilsServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/esearch.fcgi", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "pubmed", q.Get("db"))
		assert.Equal(t, "breast cancer", q.Get("term"))
		assert.Equal(t, "50", q.Get("retmax"))
		assert.Equal(t, "dev@example.org", q.Get("email"))
		assert.Equal(t, "k123", q.Get("api_key"))
		assert.Equal(t, "biotextgen", q.Get("tool"))
		fmt.Fprint(w, `{"esearchresult":{"count":"2","idlist":["101","102"]}}`)
	})

	b := NewPubMedBackend(testIngestCfg(), nil)
	ids, err := b.Search(context.Background(), "breast cancer", 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"101", "102"}, ids)
}

func TestPubMedSearch_APIError(t *testing.T) {
	eutilsServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"esearchresult":{"ERROR":"Invalid query"}}`)
	})

	_, err := NewPubMedBackend(testIngestCfg(), nil).Search(context.Background(), "x", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid query")
}

func TestPubMedSearch_HTTPError(t *testing.T) {
	eutilsServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := NewPubMedBackend(testIngestCfg(), nil).Search(context.Background(), "x", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 400")
}

func TestPubMedFetch(t *testing.T) {
	eutilsServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/efetch.fcgi", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "101,102", r.PostForm.Get("id"))
		assert.Equal(t, "xml", r.PostForm.Get("retmode"))
		fmt.Fprint(w, efetchXML)
	})

	recs, err := NewPubMedBackend(testIngestCfg(), nil).Fetch(context.Background(), []string{"101", "102"})
	require.NoError(t, err)
	require.Len(t, recs, 1, "article without abstract is skipped")
	assert.Equal(t, types.RawRecord{
		PMID:     "101",
		Title:    "PD-1 blockade in melanoma",
		Abstract: "Immune checkpoint inhibitors help. Survival improved & toxicity was low.",
	}, recs[0])
}

func TestPubMedFetch_Batches(t *testing.T) {
	var batches []string
	eutilsServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		batches = append(batches, r.PostForm.Get("id"))
		fmt.Fprint(w, `<PubmedArticleSet></PubmedArticleSet>`)
	})

	cfg := testIngestCfg()
	cfg.FetchBatchSize = 2
	_, err := NewPubMedBackend(cfg, nil).Fetch(context.Background(), []string{"1", "2", "3", "4", "5"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1,2", "3,4", "5"}, batches)
}

func TestPubMedFetch_MalformedXML(t *testing.T) {
	eutilsServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<PubmedArticleSet><PubmedArticle>`)
	})

	_, err := NewPubMedBackend(testIngestCfg(), nil).Fetch(context.Background(), []string{"1"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "parsing efetch"))
}

func TestMarkupText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"  <b>bold</b> and <i>italic</i> ", "bold and italic"},
		{"a &lt; b", "a < b"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := (markup{Inner: tt.in}).Text(); got != tt.want {
			t.Errorf("Text(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
