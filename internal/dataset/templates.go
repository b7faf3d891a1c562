// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"fmt"
	"math/rand/v2"

	"github.com/pdiddy/biotextgen/pkg/types"
)

// QuestionTemplates are the entity question forms, each taking the entity
// as its only argument.
var QuestionTemplates = []string{
	"What is the role of %s?",
	"How does %s affect cancer?",
	"What do we know about %s?",
	"What is %s?",
	"How is %s used in treatment?",
}

// Prompt templates for the summarization and text generation families.
const (
	entitySummaryPrompt      = "Summarize findings about %s."
	multiEntitySummaryPrompt = "Summarize findings involving: %s"
	entityTextPrompt         = "Write a biomedical paragraph about %s."
	multiEntityTextPrompt    = "Write a biomedical paragraph using the terms: %s."
	keywordTextPrompt        = "Write an abstract about %s."
)

// TemplateSelector picks one of n templates. Implementations are
// deterministic for a given construction so synthesis is reproducible.
type TemplateSelector interface {
	Pick(n int) int
}

// RoundRobin cycles through templates in order.
type RoundRobin struct {
	next int
}

// Pick returns the next index modulo n.
func (r *RoundRobin) Pick(n int) int {
	i := r.next % n
	r.next++
	return i
}

// SeededRandom picks uniformly at random from a seeded source.
type SeededRandom struct {
	rng *rand.Rand
}

// NewSeededRandom returns a selector whose sequence depends only on seed.
func NewSeededRandom(seed int64) *SeededRandom {
	return &SeededRandom{rng: rand.New(rand.NewPCG(uint64(seed), 0x9e3779b97f4a7c15))}
}

// Pick returns a uniform index in [0, n).
func (s *SeededRandom) Pick(n int) int {
	return s.rng.IntN(n)
}

// NewSelector builds the selector named by cfg.TemplatePolicy.
func NewSelector(cfg types.DatasetConfig) (TemplateSelector, error) {
	switch cfg.TemplatePolicy {
	case types.PolicyRoundRobin:
		return &RoundRobin{}, nil
	case types.PolicyRandom, "":
		return NewSeededRandom(cfg.Seed), nil
	default:
		return nil, fmt.Errorf("unknown template policy %q", cfg.TemplatePolicy)
	}
}
