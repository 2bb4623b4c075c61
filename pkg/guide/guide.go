// Package guide parses raw episode-guide payloads into episode records and
// resolves "last watched" pointers against them.
package guide

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Episode is one row of a show's episode table. Aired is the air date
// normalized to local midnight.
type Episode struct {
	Season int
	Number int
	Code   string
	Aired  time.Time
}

var codeRe = regexp.MustCompile(`(?i)^S(\d+)E(\d+)$`)

// Code renders a season/episode pair in S##E## form.
func Code(season, number int) string {
	return fmt.Sprintf("S%02dE%02d", season, number)
}

// CodeOrdinal maps an S##E## code onto a single comparable ordinal,
// season*100+episode. Unparsable codes (including the empty "never watched"
// code) rank as zero so any real episode sorts after them.
func CodeOrdinal(code string) int {
	m := codeRe.FindStringSubmatch(strings.TrimSpace(code))
	if m == nil {
		return 0
	}

	season, _ := strconv.Atoi(m[1])
	episode, _ := strconv.Atoi(m[2])
	return season*100 + episode
}

// Midnight truncates t to midnight in its own location.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
