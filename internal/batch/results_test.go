// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/grant-mapper/pkg/types"
)

func sampleRecords() []types.MatchRecord {
	return []types.MatchRecord{
		{
			Publication: types.Publication{
				Title:   "Hippocampal replay during slow-wave sleep",
				Year:    2019,
				Authors: []string{"Martin Williams", "Jane Doe"},
				DOI:     "10.1000/abc",
			},
			GrantTitle: "Neural correlates of memory consolidation",
			GrantCode:  "G-001",
			Confidence: types.ConfidenceHigh,
			Reasoning:  "Strong topical overlap.",
		},
		{
			// Unmapped publications keep their row with empty derived columns.
			Publication: types.Publication{Title: "Editorial, with a comma", Year: 2020},
		},
	}
}

func TestRowStoreAppendAndRead(t *testing.T) {
	store := rowStore{path: filepath.Join(t.TempDir(), "results.csv")}

	require.NoError(t, store.Append(sampleRecords()))

	got, err := store.Read()
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Hippocampal replay during slow-wave sleep", got[0].Publication.Title)
	assert.Equal(t, 2019, got[0].Publication.Year)
	assert.Equal(t, []string{"Martin Williams", "Jane Doe"}, got[0].Publication.Authors)
	assert.Equal(t, "G-001", got[0].GrantCode)
	assert.Equal(t, types.ConfidenceHigh, got[0].Confidence)

	assert.Equal(t, "Editorial, with a comma", got[1].Publication.Title)
	assert.False(t, got[1].Mapped())
}

func TestRowStoreAppendIsAppend(t *testing.T) {
	store := rowStore{path: filepath.Join(t.TempDir(), "results.csv")}
	recs := sampleRecords()

	require.NoError(t, store.Append(recs[:1]))
	require.NoError(t, store.Append(recs[1:]))

	got, err := store.Read()
	require.NoError(t, err)
	assert.Len(t, got, 2)

	// Exactly one header row.
	data, err := os.ReadFile(store.path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "Confidence Level"))
}

func TestRowStoreEnsureHeaderIdempotent(t *testing.T) {
	store := rowStore{path: filepath.Join(t.TempDir(), "results.csv")}
	require.NoError(t, store.EnsureHeader())
	require.NoError(t, store.EnsureHeader())

	got, err := store.Read()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRowStoreReadAbsent(t *testing.T) {
	store := rowStore{path: filepath.Join(t.TempDir(), "none.csv")}
	got, err := store.Read()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRowStoreAppendEmptyCreatesNothing(t *testing.T) {
	store := rowStore{path: filepath.Join(t.TempDir(), "results.csv")}
	require.NoError(t, store.Append(nil))

	_, err := os.Stat(store.path)
	assert.True(t, os.IsNotExist(err))
}

func TestRowStoreDelete(t *testing.T) {
	store := rowStore{path: filepath.Join(t.TempDir(), "results.csv")}
	require.NoError(t, store.Delete())

	require.NoError(t, store.Append(sampleRecords()))
	require.NoError(t, store.Delete())

	_, err := os.Stat(store.path)
	assert.True(t, os.IsNotExist(err))
}
