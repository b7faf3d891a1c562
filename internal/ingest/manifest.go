// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
)

// ManifestName is the manifest file written next to the raw per-term files.
const ManifestName = "manifest.yaml"

// Manifest is the ordered list of (search term, source file) pairs that
// drives every stage reading raw records. Order is significant: it decides
// the order of originating terms in the term index.
type Manifest struct {
	Entries   []ManifestEntry `yaml:"entries"`
	Generated time.Time       `yaml:"generated,omitempty"`

	// dir resolves relative entry paths. Set by LoadManifest.
	dir string
}

// ManifestEntry pairs a search term with the file holding its raw records.
type ManifestEntry struct {
	Term string `yaml:"term"`
	Path string `yaml:"path"`
}

// Resolve returns the entry path, joined to the manifest directory when it
// is relative.
func (m Manifest) Resolve(e ManifestEntry) string {
	if filepath.IsAbs(e.Path) || m.dir == "" {
		return e.Path
	}
	return filepath.Join(m.dir, e.Path)
}

// Terms returns the entry terms in manifest order.
func (m Manifest) Terms() []string {
	out := make([]string, len(m.Entries))
	for i, e := range m.Entries {
		out[i] = e.Term
	}
	return out
}

// WriteManifest saves the manifest as YAML.
func WriteManifest(path string, m Manifest) error {
	data, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadManifest reads a manifest from disk. Relative entry paths resolve
// against the manifest's directory.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parsing manifest: %w", err)
	}
	for i, e := range m.Entries {
		if strings.TrimSpace(e.Term) == "" || strings.TrimSpace(e.Path) == "" {
			return Manifest{}, fmt.Errorf("manifest entry %d: term and path are required", i+1)
		}
	}
	m.dir = filepath.Dir(path)
	return m, nil
}

// ManifestFromDir builds a manifest from every *.json file in dir, sorted by
// name. The term is the file stem with underscores turned back into spaces,
// matching the names Collect writes.
func ManifestFromDir(dir string) (Manifest, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return Manifest{}, fmt.Errorf("listing %s: %w", dir, err)
	}
	sort.Strings(matches)

	m := Manifest{dir: dir}
	for _, p := range matches {
		stem := strings.TrimSuffix(filepath.Base(p), ".json")
		m.Entries = append(m.Entries, ManifestEntry{
			Term: strings.ReplaceAll(stem, "_", " "),
			Path: filepath.Base(p),
		})
	}
	return m, nil
}

// OpenManifest loads <dir>/manifest.yaml when present and otherwise falls
// back to ManifestFromDir.
func OpenManifest(dir string) (Manifest, error) {
	path := filepath.Join(dir, ManifestName)
	if _, err := os.Stat(path); err == nil {
		return LoadManifest(path)
	}
	return ManifestFromDir(dir)
}

// Slug turns a search term into a file stem: lowercased, with runs of
// spaces replaced by a single underscore.
func Slug(term string) string {
	return strings.ToLower(strings.Join(strings.Fields(term), "_"))
}

// ReadTermFile reads search terms from a text file, one per line. Blank
// lines and lines starting with # are ignored.
func ReadTermFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening term file: %w", err)
	}
	defer f.Close()

	var terms []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		terms = append(terms, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading term file: %w", err)
	}
	return terms, nil
}
