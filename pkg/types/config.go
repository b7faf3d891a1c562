// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// IngestConfig holds settings for the source ingestion stage.
type IngestConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Email identifies the caller to NCBI E-utilities.
	Email string `json:"email,omitempty" yaml:"email,omitempty" mapstructure:"email"`

	// APIKey raises the NCBI rate limit from 3 to 10 requests per second.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// RequestDelay is the fixed pause between consecutive API requests (default 1s).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay" mapstructure:"request_delay"`

	// FetchBatchSize caps the number of ids per efetch request (default 200).
	FetchBatchSize int `json:"fetch_batch_size" yaml:"fetch_batch_size" mapstructure:"fetch_batch_size"`

	// MaxRetries bounds retries on HTTP 429/503 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// Terms are the search terms collected when no manifest is supplied.
	Terms []string `json:"terms" yaml:"terms" mapstructure:"terms"`
}

// AnnotatorBackend selects the named-entity recognition model backend.
type AnnotatorBackend string

const (
	AnnotatorGazetteer AnnotatorBackend = "gazetteer"
	AnnotatorHTTP      AnnotatorBackend = "http"
)

// AnnotateConfig holds settings for the entity annotation stage.
type AnnotateConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Backend selects the recognizer: gazetteer or http.
	Backend AnnotatorBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// GazetteerPath is a newline-delimited list of entity names.
	GazetteerPath string `json:"gazetteer_path,omitempty" yaml:"gazetteer_path,omitempty" mapstructure:"gazetteer_path"`

	// Endpoint is the URL of a remote NER service for the http backend.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty" mapstructure:"endpoint"`

	// Token is sent as a bearer token to the remote NER service.
	Token string `json:"token,omitempty" yaml:"token,omitempty" mapstructure:"token"`

	// MinMentionLength drops shorter mentions (default 3 characters).
	MinMentionLength int `json:"min_mention_length" yaml:"min_mention_length" mapstructure:"min_mention_length"`
}

// KeyphraseConfig holds settings for keyphrase extraction.
type KeyphraseConfig struct {
	// MaxNgram is the longest candidate phrase in tokens (default 10).
	MaxNgram int `json:"max_ngram" yaml:"max_ngram" mapstructure:"max_ngram"`

	// StopwordsPath optionally replaces the built-in English stopword list.
	StopwordsPath string `json:"stopwords_path,omitempty" yaml:"stopwords_path,omitempty" mapstructure:"stopwords_path"`
}

// StatsConfig holds settings for corpus statistics.
type StatsConfig struct {
	// TopEntities is the number of multi-word entities reported (default 350).
	TopEntities int `json:"top_entities" yaml:"top_entities" mapstructure:"top_entities"`

	// HistogramBins is the number of token-length histogram bins (default 40).
	HistogramBins int `json:"histogram_bins" yaml:"histogram_bins" mapstructure:"histogram_bins"`
}

// TemplatePolicy selects how question templates are chosen.
type TemplatePolicy string

const (
	PolicyRoundRobin TemplatePolicy = "round_robin"
	PolicyRandom     TemplatePolicy = "random"
)

// DatasetConfig holds settings for the dataset synthesizers.
type DatasetConfig struct {
	// TemplatePolicy is round_robin or random (seeded).
	TemplatePolicy TemplatePolicy `json:"template_policy" yaml:"template_policy" mapstructure:"template_policy"`

	// Seed makes random template selection reproducible.
	Seed int64 `json:"seed" yaml:"seed" mapstructure:"seed"`

	// MaxSummaryEntities caps entities named in a multi-entity prompt (default 5).
	MaxSummaryEntities int `json:"max_summary_entities" yaml:"max_summary_entities" mapstructure:"max_summary_entities"`
}

// DedupPolicy selects which duplicate survives in the combiner.
type DedupPolicy string

const (
	// DedupFirst keeps the first occurrence of each (input, target) pair.
	DedupFirst DedupPolicy = "first"

	// DedupLast keeps the position of the first occurrence and the content
	// of the last.
	DedupLast DedupPolicy = "last"
)

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	// InputDir holds the raw per-term files and the manifest.
	InputDir string `json:"input_dir" yaml:"input_dir" mapstructure:"input_dir"`

	// OutputDir is the root for cleaned/, enriched/, processed/, training/ and index/.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// MaxResultsPerTerm caps search hits per term (default 1000).
	MaxResultsPerTerm int `json:"max_results_per_term" yaml:"max_results_per_term" mapstructure:"max_results_per_term"`

	// TopKKeyphrases is the number of keyphrase candidates kept per abstract (default 20).
	TopKKeyphrases int `json:"top_k_keyphrases" yaml:"top_k_keyphrases" mapstructure:"top_k_keyphrases"`

	// DedupPolicy controls the combiner (default first).
	DedupPolicy DedupPolicy `json:"dedup_policy" yaml:"dedup_policy" mapstructure:"dedup_policy"`

	// FoldDiacritics maps accented letters to their base letter before cleaning.
	FoldDiacritics bool `json:"fold_diacritics" yaml:"fold_diacritics" mapstructure:"fold_diacritics"`

	Ingest    IngestConfig    `json:"ingest" yaml:"ingest" mapstructure:"ingest"`
	Annotate  AnnotateConfig  `json:"annotate" yaml:"annotate" mapstructure:"annotate"`
	Keyphrase KeyphraseConfig `json:"keyphrase" yaml:"keyphrase" mapstructure:"keyphrase"`
	Stats     StatsConfig     `json:"stats" yaml:"stats" mapstructure:"stats"`
	Dataset   DatasetConfig   `json:"dataset" yaml:"dataset" mapstructure:"dataset"`
}

// DefaultTerms are the oncology search terms collected by default.
var DefaultTerms = []string{
	"cancer", "breast cancer", "lung cancer", "prostate cancer", "colorectal cancer",
	"pancreatic cancer", "ovarian cancer", "leukemia", "melanoma", "lymphoma",
	"immunotherapy", "radiotherapy", "chemotherapy", "metastasis",
	"tumor microenvironment", "oncogenes", "tumor suppressor genes",
	"cancer biomarkers", "precision oncology", "targeted therapy",
}

// DefaultConfig returns a PipelineConfig populated with the standard defaults.
func DefaultConfig() PipelineConfig {
	return PipelineConfig{
		InputDir:          "data/raw",
		OutputDir:         "data",
		MaxResultsPerTerm: 1000,
		TopKKeyphrases:    20,
		DedupPolicy:       DedupFirst,
		FoldDiacritics:    true,
		Ingest: IngestConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   60 * time.Second,
				UserAgent: "biotextgen/0.1",
			},
			RequestDelay:   time.Second,
			FetchBatchSize: 200,
			MaxRetries:     5,
			Terms:          append([]string(nil), DefaultTerms...),
		},
		Annotate: AnnotateConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   30 * time.Second,
				UserAgent: "biotextgen/0.1",
			},
			Backend:          AnnotatorGazetteer,
			GazetteerPath:    "data/gazetteer.txt",
			MinMentionLength: 3,
		},
		Keyphrase: KeyphraseConfig{
			MaxNgram: 10,
		},
		Stats: StatsConfig{
			TopEntities:   350,
			HistogramBins: 40,
		},
		Dataset: DatasetConfig{
			TemplatePolicy:     PolicyRandom,
			Seed:               42,
			MaxSummaryEntities: 5,
		},
	}
}
