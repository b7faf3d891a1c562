// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus reads and writes the JSON-array snapshots exchanged between
// pipeline stages and enforces the unique-identifier invariant.
package corpus

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

// ErrDuplicateIdentifier signals that a corpus carries the same PMID twice
// past the normalizer. It indicates a join bug upstream and is fatal.
var ErrDuplicateIdentifier = errors.New("duplicate identifier")

// Standard snapshot locations relative to the output directory.
const (
	CleanedPath   = "cleaned/all_abstracts_cleaned.json"
	AnnotatedPath = "enriched/abstracts_with_entities.json"
	ReducedPath   = "enriched/abstracts_to_text.json"
)

// ReadSnapshot decodes a JSON array file into a slice of T. Fields missing
// from the file are left at their zero value.
func ReadSnapshot[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return out, nil
}

// WriteSnapshot encodes items as an indented JSON array. The file is written
// to a temporary sibling and renamed into place so readers never observe a
// partial snapshot. Parent directories are created as needed.
func WriteSnapshot[T any](path string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return WriteFileAtomic(path, data)
}

// WriteFileAtomic writes data to path through a temp file and rename.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming %s: %w", path, err)
	}
	return nil
}

// CheckUnique returns ErrDuplicateIdentifier (wrapped with the offending
// PMID) if any two items share an identifier.
func CheckUnique[T any](items []T, id func(T) string) error {
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		k := id(it)
		if _, ok := seen[k]; ok {
			return fmt.Errorf("%w: pmid %q", ErrDuplicateIdentifier, k)
		}
		seen[k] = struct{}{}
	}
	return nil
}
