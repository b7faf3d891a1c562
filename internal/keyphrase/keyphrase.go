// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package keyphrase extracts ranked candidate phrases from abstract text.
package keyphrase

import (
	"bufio"
	_ "embed"
	"fmt"
	"os"
	"strings"
)

// Keyphrase is one ranked candidate. Only the rank order is used downstream.
type Keyphrase struct {
	Phrase string  `json:"phrase" yaml:"phrase"`
	Score  float64 `json:"score" yaml:"score"`
}

// Extractor returns up to topK candidate phrases of at most maxNgram words,
// best first.
type Extractor interface {
	Extract(text string, maxNgram, topK int) ([]Keyphrase, error)
}

// Phrases returns the phrase strings of kps in order.
func Phrases(kps []Keyphrase) []string {
	out := make([]string, len(kps))
	for i, k := range kps {
		out[i] = k.Phrase
	}
	return out
}

//go:embed stopwords_en.txt
var defaultStopwords string

// Stopwords is a lowercase word set.
type Stopwords map[string]struct{}

// Has reports whether the lowercase form of w is a stopword.
func (s Stopwords) Has(w string) bool {
	_, ok := s[strings.ToLower(w)]
	return ok
}

// DefaultStopwords returns the built-in English list.
func DefaultStopwords() Stopwords {
	return parseStopwords(defaultStopwords)
}

// LoadStopwords reads a stopword list, one word per line.
func LoadStopwords(path string) (Stopwords, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading stopwords: %w", err)
	}
	return parseStopwords(string(data)), nil
}

func parseStopwords(src string) Stopwords {
	set := make(Stopwords)
	sc := bufio.NewScanner(strings.NewReader(src))
	for sc.Scan() {
		w := strings.ToLower(strings.TrimSpace(sc.Text()))
		if w != "" && !strings.HasPrefix(w, "#") {
			set[w] = struct{}{}
		}
	}
	return set
}
