// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dataset turns annotated records into supervised training pairs and
// merges sibling dataset files.
//
// Every synthesizer is a pure mapping from records to pairs. Output follows
// record order, and within a record it follows entity or search-term order.
// A corpus that carries the same PMID twice is rejected with
// corpus.ErrDuplicateIdentifier.
package dataset

import (
	"fmt"
	"strings"

	"github.com/pdiddy/biotextgen/internal/corpus"
	"github.com/pdiddy/biotextgen/internal/stats"
	"github.com/pdiddy/biotextgen/pkg/types"
)

// TermSource returns the search terms a record was retrieved under, in
// manifest order.
type TermSource interface {
	Terms(pmid string) []string
}

func checkUnique(records []types.AnnotatedRecord) error {
	return corpus.CheckUnique(records, func(r types.AnnotatedRecord) string { return r.PMID })
}

// multiWord returns the entities with two or more tokens, in order.
func multiWord(entities []string) []string {
	var out []string
	for _, e := range entities {
		if stats.IsMultiWord(e) {
			out = append(out, e)
		}
	}
	return out
}

// EntityQA emits one question per multi-word entity. The template is chosen
// by sel; context and answer are the abstract.
func EntityQA(records []types.AnnotatedRecord, sel TemplateSelector) ([]types.TrainingPair, error) {
	if err := checkUnique(records); err != nil {
		return nil, err
	}
	var out []types.TrainingPair
	for _, r := range records {
		if r.Abstract == "" {
			continue
		}
		for _, e := range multiWord(r.Entities) {
			tmpl := QuestionTemplates[sel.Pick(len(QuestionTemplates))]
			out = append(out, types.TrainingPair{
				Task:    types.TaskQA,
				PMID:    r.PMID,
				Input:   fmt.Sprintf(tmpl, e),
				Target:  r.Abstract,
				Context: r.Abstract,
				Entity:  e,
			})
		}
	}
	return out, nil
}

// VanillaSummarization pairs each abstract with its title.
func VanillaSummarization(records []types.AnnotatedRecord) ([]types.TrainingPair, error) {
	if err := checkUnique(records); err != nil {
		return nil, err
	}
	var out []types.TrainingPair
	for _, r := range records {
		if r.Abstract == "" || r.Title == "" {
			continue
		}
		out = append(out, types.TrainingPair{
			Task:   types.TaskSummarization,
			PMID:   r.PMID,
			Input:  r.Abstract,
			Target: r.Title,
		})
	}
	return out, nil
}

// EntitySummarization emits one prompt per entity asking for a summary
// about it, targeting the abstract.
func EntitySummarization(records []types.AnnotatedRecord) ([]types.TrainingPair, error) {
	if err := checkUnique(records); err != nil {
		return nil, err
	}
	var out []types.TrainingPair
	for _, r := range records {
		if r.Abstract == "" {
			continue
		}
		for _, e := range r.Entities {
			out = append(out, types.TrainingPair{
				Task:   types.TaskSummarization,
				PMID:   r.PMID,
				Input:  fmt.Sprintf(entitySummaryPrompt, e),
				Target: r.Abstract,
				Entity: e,
			})
		}
	}
	return out, nil
}

// MultiEntitySummarization emits one prompt naming up to limit multi-word
// entities. Records with fewer than two multi-word entities are skipped.
func MultiEntitySummarization(records []types.AnnotatedRecord, limit int) ([]types.TrainingPair, error) {
	if err := checkUnique(records); err != nil {
		return nil, err
	}
	if limit < 2 {
		limit = 5
	}
	var out []types.TrainingPair
	for _, r := range records {
		used := multiWord(r.Entities)
		if r.Abstract == "" || len(used) < 2 {
			continue
		}
		if len(used) > limit {
			used = used[:limit]
		}
		out = append(out, types.TrainingPair{
			Task:     types.TaskSummarization,
			PMID:     r.PMID,
			Input:    fmt.Sprintf(multiEntitySummaryPrompt, strings.Join(used, ", ")),
			Target:   r.Abstract,
			Entities: used,
		})
	}
	return out, nil
}

// EntityToText emits one paragraph prompt per multi-word entity.
func EntityToText(records []types.AnnotatedRecord) ([]types.TrainingPair, error) {
	if err := checkUnique(records); err != nil {
		return nil, err
	}
	var out []types.TrainingPair
	for _, r := range records {
		if r.Abstract == "" {
			continue
		}
		for _, e := range multiWord(r.Entities) {
			out = append(out, types.TrainingPair{
				Task:   types.TaskTextGen,
				PMID:   r.PMID,
				Input:  fmt.Sprintf(entityTextPrompt, e),
				Target: r.Abstract,
				Entity: e,
			})
		}
	}
	return out, nil
}

// MultiEntityToText emits one paragraph prompt listing every distinct
// multi-word entity of a record. Records with fewer than two are skipped.
func MultiEntityToText(records []types.AnnotatedRecord) ([]types.TrainingPair, error) {
	if err := checkUnique(records); err != nil {
		return nil, err
	}
	var out []types.TrainingPair
	for _, r := range records {
		used := distinct(multiWord(r.Entities))
		if r.Abstract == "" || len(used) < 2 {
			continue
		}
		out = append(out, types.TrainingPair{
			Task:     types.TaskTextGen,
			PMID:     r.PMID,
			Input:    fmt.Sprintf(multiEntityTextPrompt, strings.Join(used, ", ")),
			Target:   r.Abstract,
			Entities: used,
		})
	}
	return out, nil
}

// KeywordToText emits one prompt per originating search term of each record.
func KeywordToText(records []types.AnnotatedRecord, terms TermSource) ([]types.TrainingPair, error) {
	if err := checkUnique(records); err != nil {
		return nil, err
	}
	var out []types.TrainingPair
	for _, r := range records {
		if r.Abstract == "" {
			continue
		}
		for _, k := range terms.Terms(r.PMID) {
			out = append(out, types.TrainingPair{
				Task:    types.TaskTextGen,
				PMID:    r.PMID,
				Input:   fmt.Sprintf(keywordTextPrompt, k),
				Target:  r.Abstract,
				Keyword: k,
			})
		}
	}
	return out, nil
}

// MultiKeywordToText emits one prompt joining all originating terms with
// " & " for records retrieved under two or more distinct terms.
func MultiKeywordToText(records []types.AnnotatedRecord, terms TermSource) ([]types.TrainingPair, error) {
	if err := checkUnique(records); err != nil {
		return nil, err
	}
	var out []types.TrainingPair
	for _, r := range records {
		ks := distinct(terms.Terms(r.PMID))
		if r.Abstract == "" || len(ks) < 2 {
			continue
		}
		out = append(out, types.TrainingPair{
			Task:     types.TaskTextGen,
			PMID:     r.PMID,
			Input:    strings.Join(ks, " & "),
			Target:   r.Abstract,
			Keywords: ks,
		})
	}
	return out, nil
}

// KeywordEntityToText emits one prompt per originating term listing the term
// followed by the record's entities. Records without entities are skipped.
func KeywordEntityToText(records []types.AnnotatedRecord, terms TermSource) ([]types.TrainingPair, error) {
	if err := checkUnique(records); err != nil {
		return nil, err
	}
	var out []types.TrainingPair
	for _, r := range records {
		if r.Abstract == "" || len(r.Entities) == 0 {
			continue
		}
		for _, k := range terms.Terms(r.PMID) {
			parts := append([]string{k}, r.Entities...)
			out = append(out, types.TrainingPair{
				Task:     types.TaskTextGen,
				PMID:     r.PMID,
				Input:    strings.Join(parts, ", "),
				Target:   r.Abstract,
				Keyword:  k,
				Entities: append([]string(nil), r.Entities...),
			})
		}
	}
	return out, nil
}

func distinct(xs []string) []string {
	seen := make(map[string]struct{}, len(xs))
	out := make([]string, 0, len(xs))
	for _, x := range xs {
		if _, ok := seen[x]; ok {
			continue
		}
		seen[x] = struct{}{}
		out = append(out, x)
	}
	return out
}
