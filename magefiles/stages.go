//go:build mage

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Stage runs single pipeline stages through the built CLI.
type Stage mg.Namespace

func stage(args ...string) error {
	mg.Deps(Build)
	return sh.RunV(binPath(), args...)
}

// Collect searches PubMed for the configured terms.
func (Stage) Collect() error { return stage("collect") }

// Clean merges and cleans the raw abstracts.
func (Stage) Clean() error { return stage("clean") }

// Annotate recognizes entities in the cleaned abstracts.
func (Stage) Annotate() error { return stage("annotate") }

// Reduce keeps the entity-bearing keyphrase sentences.
func (Stage) Reduce() error { return stage("reduce") }

// Stats writes the entity and token reports.
func (Stage) Stats() error {
	if err := stage("stats", "entities"); err != nil {
		return err
	}
	return stage("stats", "tokens")
}

// Datasets writes every training dataset and the combined families.
func (Stage) Datasets() error {
	for _, family := range []string{"qa", "summarize", "textgen"} {
		if err := stage("dataset", family); err != nil {
			return err
		}
	}
	return stage("combine")
}

// Index builds the SQLite corpus index.
func (Stage) Index() error { return stage("index", "build") }
