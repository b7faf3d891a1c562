// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"

	"github.com/pdiddy/biotextgen/internal/corpus"
	"github.com/pdiddy/biotextgen/pkg/types"
)

// maxLineSize bounds one JSONL line; abstracts are far smaller.
const maxLineSize = 4 << 20

// WriteJSONL writes pairs one JSON object per line, replacing path
// atomically.
func WriteJSONL(path string, pairs []types.TrainingPair) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	for _, p := range pairs {
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("encoding pair for %s: %w", p.PMID, err)
		}
	}
	return corpus.WriteFileAtomic(path, buf.Bytes())
}

// ReadJSONL reads pairs from a JSONL file. Blank lines are ignored;
// malformed lines are reported on w, counted and skipped. Only a file that
// cannot be opened or read returns an error.
func ReadJSONL(path string, w io.Writer) ([]types.TrainingPair, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var out []types.TrainingPair
	malformed := 0
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var p types.TrainingPair
		if err := json.Unmarshal([]byte(text), &p); err != nil {
			fmt.Fprintf(w, "skipped %s:%d: %v\n", path, line, err)
			malformed++
			continue
		}
		out = append(out, p)
	}
	if err := sc.Err(); err != nil {
		return out, malformed, fmt.Errorf("reading %s: %w", path, err)
	}
	return out, malformed, nil
}
