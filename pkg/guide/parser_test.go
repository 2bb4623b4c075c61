package guide

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	lines := []string{
		"Some preamble about the show",
		"Season 1",
		"  1.   1-1        10 Mar 97   <a href='x'>Welcome</a>",
		"  2.   1-2        17 Mar 97   <a href='x'>The Harvest</a>",
		"Season 2",
		"  3.   2-1        15 Sep 97   <a href='x'>When She Was Bad</a>",
	}

	episodes := Parse(lines, time.UTC)
	require.Len(t, episodes, 3)

	assert.Equal(t, "S01E01", episodes[0].Code)
	assert.Equal(t, "S01E02", episodes[1].Code)
	assert.Equal(t, "S02E01", episodes[2].Code)

	assert.Equal(t, 1, episodes[0].Season)
	assert.Equal(t, 2, episodes[1].Number)
	assert.Equal(t, time.Date(1997, time.March, 10, 0, 0, 0, 0, time.UTC), episodes[0].Aired)
	assert.Equal(t, time.Date(1997, time.September, 15, 0, 0, 0, 0, time.UTC), episodes[2].Aired)
}

func TestParseZeroPadsCodes(t *testing.T) {
	lines := []string{
		"Season 10",
		" 100.  10-12       1 Jan 05   Title",
	}

	episodes := Parse(lines, time.UTC)
	require.Len(t, episodes, 1)
	assert.Equal(t, "S10E12", episodes[0].Code)
}

func TestParseNormalizesMarkup(t *testing.T) {
	lines := []string{
		"<b>Season 3</b>",
		"  5.&nbsp;&nbsp;3-2&nbsp;&nbsp;&nbsp;12 Oct 99&nbsp;&nbsp;<a href='e'>Title</a>",
	}

	episodes := Parse(lines, time.UTC)
	require.Len(t, episodes, 1)
	assert.Equal(t, "S03E02", episodes[0].Code)
	assert.Equal(t, time.Date(1999, time.October, 12, 0, 0, 0, 0, time.UTC), episodes[0].Aired)
}

func TestParseSkipsSpecials(t *testing.T) {
	lines := []string{
		"Season 1",
		"  1.   1-1        10 Mar 97   Pilot",
		"  S1.  1-0        14 Jul 97   Recap Special",
		"  2.   1-2        17 Mar 97   Second",
	}

	episodes := Parse(lines, time.UTC)
	require.Len(t, episodes, 2)
	assert.Equal(t, "S01E01", episodes[0].Code)
	assert.Equal(t, "S01E02", episodes[1].Code)
}

func TestParseSkipsRowsBeforeSeasonHeader(t *testing.T) {
	lines := []string{
		"  1.   1-1        10 Mar 97   Orphan row",
		"Season 1",
		"  2.   1-2        17 Mar 97   Kept",
	}

	episodes := Parse(lines, time.UTC)
	require.Len(t, episodes, 1)
	assert.Equal(t, "S01E02", episodes[0].Code)
}

func TestParseEmptyPayload(t *testing.T) {
	assert.Empty(t, Parse(nil, time.UTC))
	assert.Empty(t, Parse([]string{"nothing", "to", "see"}, time.UTC))
}

func TestParseDeterministic(t *testing.T) {
	lines := []string{
		"Season 1",
		"  1.   1-1        10 Mar 97   Pilot",
	}

	first := Parse(lines, time.UTC)
	second := Parse(lines, time.UTC)
	assert.Equal(t, first, second)
}

func TestAirDateYearBoundary(t *testing.T) {
	d := airDate(1, "Jan", 45, time.UTC)
	assert.Equal(t, 2045, d.Year())

	d = airDate(1, "Jan", 46, time.UTC)
	assert.Equal(t, 1946, d.Year())
}

func TestMonthFallback(t *testing.T) {
	// unknown abbreviations degrade to January instead of erroring
	d := airDate(5, "Xxx", 20, time.UTC)
	assert.Equal(t, time.January, d.Month())

	d = airDate(5, "dEc", 20, time.UTC)
	assert.Equal(t, time.December, d.Month())
}

func TestCodeOrdinal(t *testing.T) {
	assert.Equal(t, 102, CodeOrdinal("S01E02"))
	assert.Equal(t, 1004, CodeOrdinal("s10e04"))
	assert.Equal(t, 0, CodeOrdinal(""))
	assert.Equal(t, 0, CodeOrdinal("garbage"))
}
