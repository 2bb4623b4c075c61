package guide

import (
	"strings"
	"time"
)

// Resolution is the outcome of resolving a show's episode list against a
// point in time or a watched pointer. Final marks a list with no episode
// scheduled past the resolved one (the series has, as far as the guide
// knows, fully aired).
type Resolution struct {
	Code  string
	Aired time.Time
	Final bool
}

// LatestAired returns the most recent episode that has aired as of today
// (a local-midnight timestamp). Episodes airing today count as aired. When
// every known episode has aired the last one is returned with Final set.
// The second return is false when nothing has aired yet, which is distinct
// from any fetch or parse failure.
func LatestAired(episodes []Episode, today time.Time) (Resolution, bool) {
	for i, ep := range episodes {
		if ep.Aired.After(today) {
			if i == 0 {
				return Resolution{}, false
			}
			prev := episodes[i-1]
			return Resolution{Code: prev.Code, Aired: prev.Aired}, true
		}
	}

	if len(episodes) == 0 {
		return Resolution{}, false
	}

	last := episodes[len(episodes)-1]
	return Resolution{Code: last.Code, Aired: last.Aired, Final: true}, true
}

// NextAfter returns the episode immediately following the one whose code
// equals watchedCode. It is used to validate a manual "caught up through X"
// claim; a watched code that never appears yields no result.
func NextAfter(episodes []Episode, watchedCode string) (Resolution, bool) {
	for i := 1; i < len(episodes); i++ {
		if strings.EqualFold(episodes[i-1].Code, watchedCode) {
			ep := episodes[i]
			return Resolution{Code: ep.Code, Aired: ep.Aired, Final: i == len(episodes)-1}, true
		}
	}

	return Resolution{}, false
}
