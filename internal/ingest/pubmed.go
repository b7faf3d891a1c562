// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/pdiddy/biotextgen/internal/httputil"
	"github.com/pdiddy/biotextgen/pkg/types"
)

// eutilsBase is the NCBI E-utilities root. Declared as a var so tests
// can substitute an httptest server.
var eutilsBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

const defaultFetchBatch = 200

// PubMedBackend searches and fetches abstracts through NCBI E-utilities.
type PubMedBackend struct {
	Client *httputil.Client
	Cfg    types.IngestConfig
	Log    *zap.Logger
}

// NewPubMedBackend builds a backend whose requests are spaced by
// cfg.RequestDelay and retried on throttling.
func NewPubMedBackend(cfg types.IngestConfig, log *zap.Logger) *PubMedBackend {
	if log == nil {
		log = zap.NewNop()
	}
	hc := &http.Client{Timeout: cfg.Timeout}
	return &PubMedBackend{
		Client: httputil.NewClient(hc, cfg.RequestDelay, cfg.MaxRetries, log),
		Cfg:    cfg,
		Log:    log,
	}
}

// Name returns the backend identifier.
func (b *PubMedBackend) Name() string { return "pubmed" }

// Search runs esearch for term and returns up to limit PMIDs.
func (b *PubMedBackend) Search(ctx context.Context, term string, limit int) ([]string, error) {
	params := b.params()
	params.Set("db", "pubmed")
	params.Set("term", term)
	params.Set("retmode", "json")
	if limit > 0 {
		params.Set("retmax", strconv.Itoa(limit))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, eutilsBase+"/esearch.fcgi?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", b.Cfg.UserAgent)

	resp, err := b.Client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("esearch request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("esearch returned HTTP %d", resp.StatusCode)
	}

	var sr esearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing esearch response: %w", err)
	}
	if sr.Result.Error != "" {
		return nil, fmt.Errorf("esearch error: %s", sr.Result.Error)
	}

	b.Log.Debug("esearch", zap.String("term", term), zap.String("count", sr.Result.Count), zap.Int("ids", len(sr.Result.IDList)))
	return sr.Result.IDList, nil
}

// Fetch runs efetch for ids in batches and returns the articles that carry
// both a title and an abstract. Articles without an abstract are skipped.
func (b *PubMedBackend) Fetch(ctx context.Context, ids []string) ([]types.RawRecord, error) {
	batch := b.Cfg.FetchBatchSize
	if batch <= 0 {
		batch = defaultFetchBatch
	}

	var out []types.RawRecord
	for start := 0; start < len(ids); start += batch {
		end := min(start+batch, len(ids))
		recs, err := b.fetchBatch(ctx, ids[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, recs...)
	}
	return out, nil
}

func (b *PubMedBackend) fetchBatch(ctx context.Context, ids []string) ([]types.RawRecord, error) {
	form := b.params()
	form.Set("db", "pubmed")
	form.Set("id", strings.Join(ids, ","))
	form.Set("rettype", "abstract")
	form.Set("retmode", "xml")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, eutilsBase+"/efetch.fcgi", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", b.Cfg.UserAgent)

	resp, err := b.Client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("efetch request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("efetch returned HTTP %d", resp.StatusCode)
	}

	var set pubmedArticleSet
	if err := xml.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("parsing efetch response: %w", err)
	}

	var out []types.RawRecord
	for _, a := range set.Articles {
		rec, ok := a.record()
		if !ok {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// params returns the identification parameters NCBI asks every caller to send.
func (b *PubMedBackend) params() url.Values {
	v := url.Values{"tool": {"biotextgen"}}
	if b.Cfg.Email != "" {
		v.Set("email", b.Cfg.Email)
	}
	if b.Cfg.APIKey != "" {
		v.Set("api_key", b.Cfg.APIKey)
	}
	return v
}

// E-utilities response structures.
type esearchResponse struct {
	Result esearchResult `json:"esearchresult"`
}

type esearchResult struct {
	Count  string   `json:"count"`
	IDList []string `json:"idlist"`
	Error  string   `json:"ERROR"`
}

type pubmedArticleSet struct {
	XMLName  xml.Name        `xml:"PubmedArticleSet"`
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	Citation medlineCitation `xml:"MedlineCitation"`
}

type medlineCitation struct {
	PMID    string        `xml:"PMID"`
	Article pubmedContent `xml:"Article"`
}

type pubmedContent struct {
	Title    markup          `xml:"ArticleTitle"`
	Abstract *pubmedAbstract `xml:"Abstract"`
}

type pubmedAbstract struct {
	Sections []markup `xml:"AbstractText"`
}

// markup captures element content that may contain inline tags such as <i>.
type markup struct {
	Inner string `xml:",innerxml"`
}

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// Text strips inline markup and decodes entities.
func (m markup) Text() string {
	return strings.TrimSpace(html.UnescapeString(tagPattern.ReplaceAllString(m.Inner, "")))
}

func (a pubmedArticle) record() (types.RawRecord, bool) {
	c := a.Citation
	if c.Article.Abstract == nil || len(c.Article.Abstract.Sections) == 0 {
		return types.RawRecord{}, false
	}

	parts := make([]string, 0, len(c.Article.Abstract.Sections))
	for _, s := range c.Article.Abstract.Sections {
		if t := s.Text(); t != "" {
			parts = append(parts, t)
		}
	}
	if len(parts) == 0 {
		return types.RawRecord{}, false
	}

	return types.RawRecord{
		PMID:     strings.TrimSpace(c.PMID),
		Title:    c.Article.Title.Text(),
		Abstract: strings.Join(parts, " "),
	}, true
}
