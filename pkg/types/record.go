// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the biotextgen pipeline.
// Records move through the stages as progressively richer shapes:
//
//	RawRecord -> Record (cleaned) -> AnnotatedRecord -> ReducedRecord
//
// The PMID is the join key across every stage and is only ever carried
// forward, never regenerated.
package types

// RawRecord is one search hit as returned by the bibliographic API and
// persisted per search term under the input directory.
type RawRecord struct {
	// PMID is the PubMed identifier.
	PMID string `json:"pmid" yaml:"pmid"`

	// Title is the article title as fetched.
	Title string `json:"title" yaml:"title"`

	// Abstract is the full abstract text, sections joined by a space.
	Abstract string `json:"abstract" yaml:"abstract"`
}

// Record is a normalized abstract: complete, unique by PMID, and with its
// abstract restricted to the cleaning allow-list.
type Record struct {
	PMID     string `json:"pmid" yaml:"pmid"`
	Title    string `json:"title" yaml:"title"`
	Abstract string `json:"abstract" yaml:"abstract"`
}

// WithEntities upgrades a cleaned record to an annotated one.
func (r Record) WithEntities(entities []string) AnnotatedRecord {
	if entities == nil {
		entities = []string{}
	}
	return AnnotatedRecord{Record: r, Entities: entities}
}

// Mention is one entity span recognized by a named-entity model.
type Mention struct {
	Text  string `json:"text" yaml:"text"`
	Start int    `json:"start" yaml:"start"`
	End   int    `json:"end" yaml:"end"`
}

// AnnotatedRecord is a Record with its deduplicated entity mentions.
type AnnotatedRecord struct {
	Record `yaml:",inline"`

	// Entities holds unique mentions (case-sensitive) in first-seen order.
	Entities []string `json:"entities" yaml:"entities"`
}

// Base narrows an annotated record back to its cleaned shape.
func (a AnnotatedRecord) Base() Record {
	return a.Record
}

// Reduction holds the keyword/phrase reducer outputs for one record.
type Reduction struct {
	// AllEntities is the case-folded union of entity mentions and raw
	// keyphrase candidates. Used for corpus analytics only.
	AllEntities []string `json:"all_entities" yaml:"all_entities"`

	// CombinedKeywords are the entity-bearing keyphrases that survived
	// overlap deduplication, in extraction rank order.
	CombinedKeywords []string `json:"combined_keywords" yaml:"combined_keywords"`

	// MatchedText is the concatenation of abstract sentences containing a
	// combined keyword. Empty when nothing matched.
	MatchedText string `json:"matched_text" yaml:"matched_text"`
}

// WithReduction upgrades an annotated record to a reduced one.
func (a AnnotatedRecord) WithReduction(red Reduction) ReducedRecord {
	if red.AllEntities == nil {
		red.AllEntities = []string{}
	}
	if red.CombinedKeywords == nil {
		red.CombinedKeywords = []string{}
	}
	return ReducedRecord{AnnotatedRecord: a, Reduction: red}
}

// ReducedRecord is the final enriched record shape.
type ReducedRecord struct {
	AnnotatedRecord `yaml:",inline"`
	Reduction       `yaml:",inline"`
}

// Annotated narrows a reduced record to its annotated shape.
func (r ReducedRecord) Annotated() AnnotatedRecord {
	return r.AnnotatedRecord
}
