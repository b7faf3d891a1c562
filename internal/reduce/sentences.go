// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reduce

import (
	"fmt"
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// SentenceSplitter splits text into sentences.
type SentenceSplitter interface {
	Split(text string) []string
}

// PunktSplitter splits English text with the pre-trained Punkt model, which
// knows common abbreviations such as "e.g." and "Dr.".
type PunktSplitter struct {
	tok *sentences.DefaultSentenceTokenizer
}

// NewPunktSplitter loads the English Punkt model.
func NewPunktSplitter() (*PunktSplitter, error) {
	tok, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("loading sentence model: %w", err)
	}
	return &PunktSplitter{tok: tok}, nil
}

// Split returns the trimmed, non-empty sentences of text.
func (p *PunktSplitter) Split(text string) []string {
	var out []string
	for _, s := range p.tok.Tokenize(text) {
		if t := strings.TrimSpace(s.Text); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// MatchSentences returns the sentences that contain any phrase as a
// case-insensitive substring. Repeated sentences appear once, in first-seen
// order.
func MatchSentences(sents, phrases []string) []string {
	folded := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if f := fold(strings.TrimSpace(p)); f != "" {
			folded = append(folded, f)
		}
	}

	seen := make(map[string]struct{})
	var out []string
	for _, s := range sents {
		if _, ok := seen[s]; ok {
			continue
		}
		fs := fold(s)
		for _, p := range folded {
			if strings.Contains(fs, p) {
				seen[s] = struct{}{}
				out = append(out, s)
				break
			}
		}
	}
	return out
}

// ComposeMatchedText joins sentences with single spaces, appending a period
// to any sentence that does not already end in terminal punctuation.
// Questions and exclamations keep their own mark instead of gaining a
// trailing period.
func ComposeMatchedText(sents []string) string {
	parts := make([]string, 0, len(sents))
	for _, s := range sents {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if !strings.HasSuffix(s, ".") && !strings.HasSuffix(s, "!") && !strings.HasSuffix(s, "?") {
			s += "."
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}
