package report

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readHistory(t *testing.T, path string) []HistoricalEntry {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var entries []HistoricalEntry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var e HistoricalEntry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		entries = append(entries, e)
	}
	require.NoError(t, scanner.Err())
	return entries
}

func TestAppendToHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")
	summary := BuildSummary(makeTestResults())

	require.NoError(t, AppendToHistory(path, summary))
	require.NoError(t, AppendToHistory(path, BuildSummary(nil)))

	entries := readHistory(t, path)
	require.Len(t, entries, 2)

	assert.Equal(t, summary.ID, entries[0].SummaryID)
	assert.Equal(t, 2, entries[0].Total)
	assert.Equal(t, 1, entries[0].Failed)
	assert.Equal(t, "3s", entries[0].Duration)
	assert.Equal(t, []string{"Channel gets publish"}, entries[0].FailedCases)

	assert.Zero(t, entries[1].Total)
	assert.Empty(t, entries[1].FailedCases)
}

func TestAppendToHistory_MarshalError(t *testing.T) {
	originalMarshal := jsonMarshal
	t.Cleanup(func() { jsonMarshal = originalMarshal })
	jsonMarshal = func(any) ([]byte, error) { return nil, assert.AnError }

	err := AppendToHistory(filepath.Join(t.TempDir(), "h.jsonl"), BuildSummary(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "marshal history entry")
}

func TestAppendToHistory_OpenError(t *testing.T) {
	err := AppendToHistory(filepath.Join(t.TempDir(), "missing", "h.jsonl"), BuildSummary(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open history file")
}
