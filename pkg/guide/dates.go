package guide

import (
	"strings"
	"time"
)

// pivotYear is the two-digit-year boundary: values below it land in the
// 2000s, the rest in the 1900s. The earliest series in the source predates
// the 1950s, which fixes the cutoff.
const pivotYear = 46

var monthOrdinals = map[string]int{
	"jan": 0, "feb": 1, "mar": 2, "apr": 3,
	"may": 4, "jun": 5, "jul": 6, "aug": 7,
	"sep": 8, "oct": 9, "nov": 10, "dec": 11,
}

// monthOrdinal maps a three-letter month abbreviation to 0..11. Unrecognized
// abbreviations fall back to January rather than erroring; the scraped format
// is too loose to treat that as fatal.
func monthOrdinal(abbr string) int {
	if ord, ok := monthOrdinals[strings.ToLower(abbr)]; ok {
		return ord
	}
	return 0
}

// airDate resolves a parsed day / month-abbreviation / two-digit year triple
// to midnight in loc.
func airDate(day int, monthAbbr string, twoDigitYear int, loc *time.Location) time.Time {
	year := twoDigitYear + 1900
	if twoDigitYear < pivotYear {
		year = twoDigitYear + 2000
	}

	month := time.Month(monthOrdinal(monthAbbr) + 1)
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}
