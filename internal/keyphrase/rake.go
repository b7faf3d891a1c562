// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package keyphrase

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

var (
	// fragmentSep splits text at punctuation that ends a candidate phrase.
	fragmentSep = regexp.MustCompile(`[,.;:?!()\[\]"]+`)

	// rakeWord matches word tokens, keeping inner hyphens and apostrophes.
	rakeWord = regexp.MustCompile(`[\pL\pN]+(?:[-'][\pL\pN]+)*`)
)

// RAKE is a Rapid Automatic Keyword Extraction scorer. Candidates are runs
// of non-stopwords between stopwords and punctuation. A word scores
// degree/frequency and a phrase scores the sum of its words.
type RAKE struct {
	Stop Stopwords
}

// NewRAKE returns a RAKE extractor using stop, or the built-in English list
// when stop is nil.
func NewRAKE(stop Stopwords) *RAKE {
	if stop == nil {
		stop = DefaultStopwords()
	}
	return &RAKE{Stop: stop}
}

type candidate struct {
	key     string
	surface string
	words   []string
}

// Extract implements Extractor. Runs longer than maxNgram are cut into
// consecutive maxNgram-word pieces. Candidates are deduplicated
// case-insensitively keeping the surface form of the first occurrence; ties
// in score keep first-occurrence order.
func (r *RAKE) Extract(text string, maxNgram, topK int) ([]Keyphrase, error) {
	if maxNgram <= 0 {
		maxNgram = 3
	}

	var runs []candidate
	bounds := append(fragmentSep.FindAllStringIndex(text, -1), []int{len(text), len(text)})
	prev := 0
	for _, b := range bounds {
		base, frag := prev, text[prev:b[0]]
		prev = b[1]

		var words [][]int
		flush := func() {
			for len(words) > 0 {
				n := min(len(words), maxNgram)
				runs = append(runs, makeCandidate(text, base, words[:n]))
				words = words[n:]
			}
		}
		for _, span := range rakeWord.FindAllStringIndex(frag, -1) {
			w := frag[span[0]:span[1]]
			if r.Stop.Has(w) || !hasLetter(w) {
				flush()
				continue
			}
			words = append(words, span)
		}
		flush()
	}

	freq := make(map[string]int)
	degree := make(map[string]int)
	for _, c := range runs {
		for _, w := range c.words {
			freq[w]++
			degree[w] += len(c.words)
		}
	}

	seen := make(map[string]struct{})
	var out []Keyphrase
	for _, c := range runs {
		if _, ok := seen[c.key]; ok {
			continue
		}
		seen[c.key] = struct{}{}
		var score float64
		for _, w := range c.words {
			score += float64(degree[w]) / float64(freq[w])
		}
		out = append(out, Keyphrase{Phrase: c.surface, Score: score})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if topK > 0 && len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

func makeCandidate(text string, base int, spans [][]int) candidate {
	start, end := base+spans[0][0], base+spans[len(spans)-1][1]
	words := make([]string, len(spans))
	for i, s := range spans {
		words[i] = strings.ToLower(text[base+s[0] : base+s[1]])
	}
	return candidate{
		key:     strings.Join(words, " "),
		surface: strings.Join(strings.Fields(text[start:end]), " "),
		words:   words,
	}
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
