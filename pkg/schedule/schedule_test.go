package schedule

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule")

	entries := []Entry{
		{Key: "buffy", Display: "Buffy the Vampire Slayer", Code: "S02E03", Aired: 100},
		{Key: "wire", Display: "The Wire", Code: "S01E01", Aired: 200},
	}

	require.NoError(t, Save(path, entries))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}

func TestLoadMissingFile(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoadSkipsDamagedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule")
	content := "buffy:Buffy:S01E01:100\ngarbage line\nwire:The Wire:S01E01:notanumber\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got, err := Load(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "buffy", got[0].Key)
}

func TestSortByEpochThenDisplay(t *testing.T) {
	entries := []Entry{
		{Key: "c", Display: "Charlie", Aired: 200},
		{Key: "b", Display: "Bravo", Aired: 100},
		{Key: "a", Display: "Alpha", Aired: 200},
	}

	Sort(entries)

	assert.Equal(t, "b", entries[0].Key)
	assert.Equal(t, "a", entries[1].Key)
	assert.Equal(t, "c", entries[2].Key)
}

func TestDiff(t *testing.T) {
	previous := []Entry{
		{Key: "a", Display: "A Show", Code: "S01E01", Aired: 100},
	}
	current := []Entry{
		{Key: "a", Display: "A Show", Code: "S01E02", Aired: 200},
		{Key: "b", Display: "B Show", Code: "S01E01", Aired: 50},
	}

	delta := Diff(previous, current)
	require.Len(t, delta, 2)

	// sorted by epoch ascending: the new show airs first
	assert.Equal(t, "b", delta[0].Key)
	assert.Equal(t, "a", delta[1].Key)
}

func TestDiffUnchangedEntryExcluded(t *testing.T) {
	previous := []Entry{
		{Key: "a", Display: "A Show", Code: "S01E01", Aired: 100},
	}
	current := []Entry{
		{Key: "A", Display: "A Show", Code: "S01E01", Aired: 100},
	}

	assert.Empty(t, Diff(previous, current))
}
