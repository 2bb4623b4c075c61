package guide

import (
	"regexp"
	"strconv"
	"time"
)

// The guide source serves one loosely formatted text/HTML table per show:
// "Season N" header lines group runs of episode rows such as
//
//	  12.   2-3        15 Sep 04   <a href="...">Title</a>
//
// with stray markup and &nbsp; entities mixed in. The scan below is a small
// state machine: rows seen before any season header have no season context
// and are dropped, as are specials (rows whose ordinal does not start with a
// digit).
var (
	nbspRe   = regexp.MustCompile(`(?i)&nbsp;?`)
	tagRe    = regexp.MustCompile(`<[^>]*>`)
	seasonRe = regexp.MustCompile(`(?i)^\s*Season\s+(\d+)\b`)

	// rowHintRe is the loose gate: an in-line season-episode pair followed by
	// a "d Mon yy" date somewhere on the line.
	rowHintRe = regexp.MustCompile(`\d+\s*-\s*\d+.*\d{1,2}\s+[A-Za-z]{3}\s+\d{2}`)

	// rowRe extracts the row ordinal, in-season episode number and date parts
	// from a normalized line. The season half of the pair is ignored; season
	// context always comes from the preceding header.
	rowRe = regexp.MustCompile(`^\s*(\S+?)\.?\s+\d+-\s*(\d+)\s+(\d{1,2})\s+([A-Za-z]{3})\s+(\d{2})\b`)
)

func normalizeLine(line string) string {
	line = nbspRe.ReplaceAllString(line, " ")
	return tagRe.ReplaceAllString(line, "")
}

// Parse scans raw payload lines in order and returns the episode records
// found, in file order. It is deterministic and side-effect free; re-running
// it on the same input yields the same records. A payload with no
// recognizable rows yields an empty result, not an error.
func Parse(lines []string, loc *time.Location) []Episode {
	if loc == nil {
		loc = time.Local
	}

	var (
		episodes []Episode
		season   int
		inSeason bool
	)

	for _, raw := range lines {
		line := normalizeLine(raw)

		if m := seasonRe.FindStringSubmatch(line); m != nil {
			season, _ = strconv.Atoi(m[1])
			inSeason = true
			continue
		}

		if !rowHintRe.MatchString(line) {
			continue
		}

		m := rowRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		ordinal := m[1]
		if ordinal == "" || ordinal[0] < '0' || ordinal[0] > '9' {
			// specials carry a non-numeric ordinal and are not part of the run
			continue
		}
		if !inSeason {
			continue
		}

		number, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		year, _ := strconv.Atoi(m[5])

		episodes = append(episodes, Episode{
			Season: season,
			Number: number,
			Code:   Code(season, number),
			Aired:  airDate(day, m[4], year, loc),
		})
	}

	return episodes
}
