// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reduce

import (
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// fold returns the case-folded form of s used for every comparison in this
// package.
func fold(s string) string {
	return cases.Fold().String(s)
}

// WordSet is a set of case-folded words.
type WordSet map[string]struct{}

// EntityWords splits every entity mention on whitespace and returns the set
// of case-folded tokens, so a phrase matches an entity when it shares a
// whole word with any mention.
func EntityWords(entities []string) WordSet {
	set := make(WordSet)
	for _, e := range entities {
		for _, tok := range strings.Fields(e) {
			set[fold(tok)] = struct{}{}
		}
	}
	return set
}

// PhraseContainsAny reports whether one of phrase's whitespace-split tokens,
// case-folded, is in words. Tokens are compared whole: "cells" does not
// contain "cell".
func PhraseContainsAny(words WordSet, phrase string) bool {
	for _, tok := range strings.Fields(phrase) {
		if _, ok := words[fold(tok)]; ok {
			return true
		}
	}
	return false
}

// FilterPhrases keeps the phrases that share a whole word with words,
// preserving order.
func FilterPhrases(words WordSet, phrases []string) []string {
	out := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if PhraseContainsAny(words, p) {
			out = append(out, p)
		}
	}
	return out
}

// DeduplicatePhrases removes overlapping phrases. Phrases are considered
// longest first; a phrase is dropped when, case-insensitively, it equals or
// is a substring of a phrase already kept. Survivors are returned in their
// input order. Phrases that differ only in case are duplicates rather than
// equal-length ties: the one earliest in input order survives. The result
// contains no phrase that is a case-insensitive substring of another, and
// applying the function again changes nothing.
func DeduplicatePhrases(phrases []string) []string {
	folded := make([]string, len(phrases))
	order := make([]int, len(phrases))
	for i, p := range phrases {
		folded[i] = fold(strings.TrimSpace(p))
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return utf8.RuneCountInString(folded[order[a]]) > utf8.RuneCountInString(folded[order[b]])
	})

	keep := make([]bool, len(phrases))
	var kept []string
	for _, i := range order {
		p := folded[i]
		if p == "" {
			continue
		}
		covered := false
		for _, k := range kept {
			if strings.Contains(k, p) {
				covered = true
				break
			}
		}
		if covered {
			continue
		}
		keep[i] = true
		kept = append(kept, p)
	}

	out := make([]string, 0, len(kept))
	for i, p := range phrases {
		if keep[i] {
			out = append(out, p)
		}
	}
	return out
}

// AllTerms returns the case-folded union of entities and candidate phrases
// in first-seen order.
func AllTerms(entities, candidates []string) []string {
	seen := make(map[string]struct{}, len(entities)+len(candidates))
	out := make([]string, 0, len(entities)+len(candidates))
	for _, list := range [][]string{entities, candidates} {
		for _, s := range list {
			f := fold(strings.TrimSpace(s))
			if f == "" {
				continue
			}
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			out = append(out, f)
		}
	}
	return out
}
