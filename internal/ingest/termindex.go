// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"fmt"
	"io"

	"github.com/pdiddy/biotextgen/internal/corpus"
	"github.com/pdiddy/biotextgen/pkg/types"
)

// TermIndex maps a PMID to the ordered set of search terms it was retrieved
// under. The keyword synthesizers read it to build prompts.
type TermIndex struct {
	terms map[string][]string
}

// NewTermIndex returns an empty index.
func NewTermIndex() *TermIndex {
	return &TermIndex{terms: make(map[string][]string)}
}

// Add records that pmid was found under term. Repeated terms are ignored.
func (ix *TermIndex) Add(pmid, term string) {
	for _, t := range ix.terms[pmid] {
		if t == term {
			return
		}
	}
	ix.terms[pmid] = append(ix.terms[pmid], term)
}

// Terms returns the originating terms of pmid in first-seen order.
func (ix *TermIndex) Terms(pmid string) []string {
	if ix == nil {
		return nil
	}
	return ix.terms[pmid]
}

// Len returns the number of indexed PMIDs.
func (ix *TermIndex) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.terms)
}

// ReadRawFile loads one per-term file of raw records.
func ReadRawFile(path string) ([]types.RawRecord, error) {
	return corpus.ReadSnapshot[types.RawRecord](path)
}

// BuildTermIndex reads every manifest file and indexes each PMID under the
// entry's term. Unreadable or malformed files are reported on w and
// skipped; the returned count is the number of files skipped.
func BuildTermIndex(m Manifest, w io.Writer) (*TermIndex, int) {
	ix := NewTermIndex()
	skipped := 0
	for _, e := range m.Entries {
		recs, err := ReadRawFile(m.Resolve(e))
		if err != nil {
			fmt.Fprintf(w, "skipped %s: %v\n", e.Path, err)
			skipped++
			continue
		}
		for _, r := range recs {
			if r.PMID == "" {
				continue
			}
			ix.Add(r.PMID, e.Term)
		}
	}
	return ix, skipped
}
