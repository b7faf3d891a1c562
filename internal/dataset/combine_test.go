// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/biotextgen/pkg/types"
)

func summaryPair(pmid, in, out string) types.TrainingPair {
	return types.TrainingPair{Task: types.TaskSummarization, PMID: pmid, Input: in, Target: out}
}

func TestCombinePairs_OverlappingFiles(t *testing.T) {
	shared := summaryPair("1", "a", "b")
	other := summaryPair("2", "c", "d")

	got, dups := CombinePairs([][]types.TrainingPair{{shared}, {shared, other}}, types.DedupFirst)
	assert.Equal(t, []types.TrainingPair{shared, other}, got)
	assert.Equal(t, 1, dups)
}

func TestCombinePairs_Policies(t *testing.T) {
	first := types.TrainingPair{Task: types.TaskTextGen, PMID: "1", Input: "x", Target: "y", Keyword: "first"}
	mid := types.TrainingPair{Task: types.TaskTextGen, PMID: "2", Input: "m", Target: "n"}
	last := types.TrainingPair{Task: types.TaskTextGen, PMID: "1", Input: "x", Target: "y", Keyword: "last"}
	lists := [][]types.TrainingPair{{first, mid}, {last}}

	keepFirst, _ := CombinePairs(lists, types.DedupFirst)
	assert.Equal(t, []types.TrainingPair{first, mid}, keepFirst)

	keepLast, _ := CombinePairs(lists, types.DedupLast)
	assert.Equal(t, []types.TrainingPair{last, mid}, keepLast)
}

func TestCombinePairs_Invariants(t *testing.T) {
	lists := [][]types.TrainingPair{
		{summaryPair("1", "a", "b"), summaryPair("1", "a", "c"), summaryPair("2", "a", "b")},
		{summaryPair("3", "d", "e"), summaryPair("1", "a", "c")},
		{summaryPair("4", "a", "b")},
	}
	got, dups := CombinePairs(lists, types.DedupFirst)

	total := 0
	for _, l := range lists {
		total += len(l)
	}
	assert.LessOrEqual(t, len(got), total)
	assert.Equal(t, total, len(got)+dups)

	seen := make(map[[2]string]bool)
	for _, p := range got {
		assert.False(t, seen[p.Key()], "duplicate key %v", p.Key())
		seen[p.Key()] = true
	}
	assert.Equal(t, []string{"1", "1", "3"}, []string{got[0].PMID, got[1].PMID, got[2].PMID})
}

func writeLines(t *testing.T, path string, lines ...string) {
	t.Helper()
	var buf bytes.Buffer
	for _, l := range lines {
		buf.WriteString(l + "\n")
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestCombine_Files(t *testing.T) {
	dir := t.TempDir()
	pair := `{"input":"a","output":"b","pmid":"1"}`
	writeLines(t, filepath.Join(dir, "parts", "one.jsonl"), pair)
	writeLines(t, filepath.Join(dir, "parts", "two.jsonl"), pair, `{"input":"c","output":"d","pmid":"2"}`, `{broken`, ``)
	out := filepath.Join(dir, "combined.jsonl")

	var buf bytes.Buffer
	rep, err := Combine([]string{
		filepath.Join(dir, "parts", "one.jsonl"),
		filepath.Join(dir, "parts", "*.jsonl"),
		filepath.Join(dir, "missing.jsonl"),
	}, types.DedupFirst, out, &buf)
	require.NoError(t, err)

	assert.Equal(t, 2, rep.Written)
	assert.Equal(t, 3, rep.Loaded)
	assert.Equal(t, 1, rep.Duplicates)
	assert.Equal(t, 1, rep.Malformed)
	assert.Equal(t, 1, rep.SkippedFiles)
	assert.Equal(t, 2, rep.UniqueIdentifiers)
	assert.InDelta(t, 1.0, rep.AvgPairsPerIdentifier, 1e-9)
	assert.Len(t, rep.Inputs, 2, "glob match of an explicit path is not read twice")
	_, err = uuid.Parse(rep.RunID)
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "skipped")

	pairs, _, err := ReadJSONL(out, &buf)
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, "a", pairs[0].Input)
	assert.Equal(t, "b", pairs[0].Target)
	assert.Equal(t, types.TaskSummarization, pairs[0].Task)

	data, err := os.ReadFile(ReportPath(out))
	require.NoError(t, err)
	var saved CombineReport
	require.NoError(t, yaml.Unmarshal(data, &saved))
	assert.Equal(t, rep, saved)
}

func TestCombine_UnknownPolicy(t *testing.T) {
	_, err := Combine(nil, "newest", filepath.Join(t.TempDir(), "x.jsonl"), &bytes.Buffer{})
	assert.ErrorContains(t, err, "unknown dedup policy")
}

func TestReadJSONL_MissingOptionalFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tg.jsonl")
	writeLines(t, path,
		`{"input":"Write an abstract about cancer.","target":"T"}`,
		`{"question":"What is x?","answer":"A","context":"A","pmid":"9"}`,
		`{"input":"Summarize findings involving: a b, c d","output":"T","entities_used":["a b","c d"]}`,
	)

	pairs, bad, err := ReadJSONL(path, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Zero(t, bad)
	require.Len(t, pairs, 3)

	assert.Equal(t, types.TaskTextGen, pairs[0].Task)
	assert.Empty(t, pairs[0].PMID)
	assert.Empty(t, pairs[0].Keyword)

	assert.Equal(t, types.TaskQA, pairs[1].Task)
	assert.Equal(t, "What is x?", pairs[1].Input)
	assert.Equal(t, "A", pairs[1].Target)

	assert.Equal(t, types.TaskSummarization, pairs[2].Task)
	assert.Equal(t, []string{"a b", "c d"}, pairs[2].Entities)
}

func TestWriteJSONL_FamilyFieldNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	require.NoError(t, WriteJSONL(path, []types.TrainingPair{
		{Task: types.TaskQA, PMID: "1", Input: "Q?", Target: "A", Context: "A"},
		{Task: types.TaskSummarization, PMID: "1", Input: "in", Target: "out", Entity: "e"},
		{Task: types.TaskTextGen, PMID: "1", Input: "in", Target: "tg", Keywords: []string{"a", "b"}},
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	require.Len(t, lines, 3)
	assert.JSONEq(t, `{"pmid":"1","context":"A","question":"Q?","answer":"A"}`, string(lines[0]))
	assert.JSONEq(t, `{"input":"in","output":"out","pmid":"1","entity":"e"}`, string(lines[1]))
	assert.JSONEq(t, `{"pmid":"1","keywords":["a","b"],"input":"in","target":"tg"}`, string(lines[2]))
}
