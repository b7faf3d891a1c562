// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"github.com/goccy/go-json"
)

// Task identifies the dataset family a TrainingPair belongs to. Each family
// has its own on-disk field names.
type Task string

const (
	TaskQA            Task = "qa"
	TaskSummarization Task = "summarization"
	TaskTextGen       Task = "text_gen"
)

// TrainingPair is one (input, target) example derived from a single record.
// Pairs are immutable once created.
type TrainingPair struct {
	// Task selects the wire format.
	Task Task `json:"-" yaml:"task"`

	// PMID back-references the source record.
	PMID string `json:"-" yaml:"pmid"`

	// Input is the prompt (the question for QA).
	Input string `json:"-" yaml:"input"`

	// Target is the expected output (the answer for QA).
	Target string `json:"-" yaml:"target"`

	// Context is the supporting passage for QA pairs.
	Context string `json:"-" yaml:"context,omitempty"`

	// Entity, Entities, Keyword and Keywords record which template inputs
	// produced the pair.
	Entity   string   `json:"-" yaml:"entity,omitempty"`
	Entities []string `json:"-" yaml:"entities,omitempty"`
	Keyword  string   `json:"-" yaml:"keyword,omitempty"`
	Keywords []string `json:"-" yaml:"keywords,omitempty"`
}

// Key returns the (input, target) pair used for exact deduplication.
func (p TrainingPair) Key() [2]string {
	return [2]string{p.Input, p.Target}
}

type qaWire struct {
	PMID     string `json:"pmid"`
	Context  string `json:"context"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type summaryWire struct {
	Input        string   `json:"input"`
	Output       string   `json:"output"`
	PMID         string   `json:"pmid,omitempty"`
	Entity       string   `json:"entity,omitempty"`
	EntitiesUsed []string `json:"entities_used,omitempty"`
}

type textGenWire struct {
	PMID     string   `json:"pmid"`
	Entity   string   `json:"entity,omitempty"`
	Entities []string `json:"entities,omitempty"`
	Keyword  string   `json:"keyword,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
	Input    string   `json:"input"`
	Target   string   `json:"target"`
}

// anyWire accepts every family's field names.
type anyWire struct {
	PMID         string   `json:"pmid"`
	Input        string   `json:"input"`
	Target       *string  `json:"target"`
	Output       *string  `json:"output"`
	Question     *string  `json:"question"`
	Answer       *string  `json:"answer"`
	Context      string   `json:"context"`
	Entity       string   `json:"entity"`
	Entities     []string `json:"entities"`
	EntitiesUsed []string `json:"entities_used"`
	Keyword      string   `json:"keyword"`
	Keywords     []string `json:"keywords"`
}

// MarshalJSON writes the pair with its family's field names.
func (p TrainingPair) MarshalJSON() ([]byte, error) {
	switch p.Task {
	case TaskQA:
		return json.Marshal(qaWire{
			PMID:     p.PMID,
			Context:  p.Context,
			Question: p.Input,
			Answer:   p.Target,
		})
	case TaskSummarization:
		return json.Marshal(summaryWire{
			Input:        p.Input,
			Output:       p.Target,
			PMID:         p.PMID,
			Entity:       p.Entity,
			EntitiesUsed: p.Entities,
		})
	default:
		return json.Marshal(textGenWire{
			PMID:     p.PMID,
			Entity:   p.Entity,
			Entities: p.Entities,
			Keyword:  p.Keyword,
			Keywords: p.Keywords,
			Input:    p.Input,
			Target:   p.Target,
		})
	}
}

// UnmarshalJSON reads a pair written by any family. Missing optional fields
// are left empty. The family is inferred from which target field is present.
func (p *TrainingPair) UnmarshalJSON(data []byte) error {
	var w anyWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	out := TrainingPair{
		PMID:     w.PMID,
		Input:    w.Input,
		Context:  w.Context,
		Entity:   w.Entity,
		Entities: w.Entities,
		Keyword:  w.Keyword,
		Keywords: w.Keywords,
	}
	if len(out.Entities) == 0 {
		out.Entities = w.EntitiesUsed
	}

	switch {
	case w.Question != nil || w.Answer != nil:
		out.Task = TaskQA
		out.Input = deref(w.Question)
		out.Target = deref(w.Answer)
	case w.Output != nil:
		out.Task = TaskSummarization
		out.Target = *w.Output
	default:
		out.Task = TaskTextGen
		out.Target = deref(w.Target)
	}

	*p = out
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
