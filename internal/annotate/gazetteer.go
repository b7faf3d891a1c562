// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotate

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"golang.org/x/text/cases"

	"github.com/pdiddy/biotextgen/internal/normalize"
	"github.com/pdiddy/biotextgen/pkg/types"
)

// wordPattern matches alphanumeric tokens, allowing inner hyphens and
// apostrophes so "PD-1" and "non-small" stay whole.
var wordPattern = regexp.MustCompile(`[\pL\pN]+(?:[-'][\pL\pN]+)*`)

// GazetteerRecognizer finds dictionary entity names in text. Matching is
// case-insensitive over token windows and prefers the longest name starting
// at each token. Names and windows are compared after the abstract cleaning
// rules, so "PD-1 inhibitors" matches the cleaned "PD1 inhibitors". The
// returned mention carries the span as written in the text.
type GazetteerRecognizer struct {
	names   map[string]struct{}
	longest int
	fold    cases.Caser
}

// NewGazetteer builds a recognizer from entity names.
func NewGazetteer(names []string) *GazetteerRecognizer {
	g := &GazetteerRecognizer{
		names: make(map[string]struct{}, len(names)),
		fold:  cases.Fold(),
	}
	for _, n := range names {
		toks := wordPattern.FindAllString(cleanName(n), -1)
		if len(toks) == 0 {
			continue
		}
		g.names[g.key(toks)] = struct{}{}
		g.longest = max(g.longest, len(toks))
	}
	return g
}

// LoadGazetteer reads entity names from a file, one per line. Blank lines
// and lines starting with # are ignored.
func LoadGazetteer(path string) (*GazetteerRecognizer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening gazetteer: %w", err)
	}
	defer f.Close()

	var names []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading gazetteer: %w", err)
	}
	return NewGazetteer(names), nil
}

// Len returns the number of distinct names.
func (g *GazetteerRecognizer) Len() int { return len(g.names) }

func (g *GazetteerRecognizer) key(toks []string) string {
	return g.fold.String(cleanName(strings.Join(toks, " ")))
}

// cleanName applies the abstract cleaning rules with diacritic folding.
func cleanName(s string) string {
	return normalize.CleanText(s, normalize.Options{FoldDiacritics: true})
}

// Recognize returns non-overlapping dictionary matches in text order.
func (g *GazetteerRecognizer) Recognize(_ context.Context, text string) ([]types.Mention, error) {
	spans := wordPattern.FindAllStringIndex(text, -1)
	toks := make([]string, len(spans))
	for i, s := range spans {
		toks[i] = text[s[0]:s[1]]
	}

	var out []types.Mention
	for i := 0; i < len(toks); {
		n := min(g.longest, len(toks)-i)
		for ; n > 0; n-- {
			if _, ok := g.names[g.key(toks[i:i+n])]; ok {
				break
			}
		}
		if n == 0 {
			i++
			continue
		}
		start, end := spans[i][0], spans[i+n-1][1]
		out = append(out, types.Mention{Text: text[start:end], Start: start, End: end})
		i += n
	}
	return out, nil
}
