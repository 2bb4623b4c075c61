// Package schedule persists the current per-show schedule: for each show
// with a resolved episode, the episode code and its air time. The file is
// owned entirely by this program and fully regenerated on each successful
// probe run.
package schedule

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/epwatch/epwatch/pkg/fsx"
	"github.com/gofrs/flock"
)

// Entry is one persisted schedule line: `key:display:code:epoch`.
type Entry struct {
	Key     string
	Display string
	Code    string
	Aired   int64
}

// Load reads the schedule at path. A missing file is an empty schedule.
// Malformed lines are dropped; the file is machine-written, so anything else
// there is damage, not intent.
func Load(path string) ([]Entry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read schedule: %w", err)
	}

	var entries []Entry
	for _, l := range strings.Split(strings.TrimSuffix(string(raw), "\n"), "\n") {
		if strings.TrimSpace(l) == "" {
			continue
		}

		fields := strings.Split(l, ":")
		if len(fields) != 4 {
			continue
		}

		aired, err := strconv.ParseInt(fields[3], 10, 64)
		if err != nil {
			continue
		}

		entries = append(entries, Entry{
			Key:     strings.ToLower(fields[0]),
			Display: fields[1],
			Code:    fields[2],
			Aired:   aired,
		})
	}

	return entries, nil
}

// Save atomically replaces the schedule at path with entries, in order,
// under an exclusive lock.
func Save(path string, entries []Entry) error {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock schedule: %w", err)
	}
	defer lock.Unlock()

	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%s:%s:%s:%d\n", strings.ToLower(e.Key), e.Display, e.Code, e.Aired)
	}

	if err := fsx.WriteFileAtomic(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write schedule: %w", err)
	}

	return nil
}

// Sort orders entries by air epoch ascending, ties broken by display name
// ascending (ordinal compare).
func Sort(entries []Entry) {
	slices.SortFunc(entries, func(a, b Entry) int {
		if a.Aired != b.Aired {
			if a.Aired < b.Aired {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Display, b.Display)
	})
}

// Diff returns the candidate entries whose code or air epoch differ from the
// persisted entry with the same key, or that have no persisted counterpart,
// sorted like Sort. Keys compare case-insensitively.
func Diff(previous, current []Entry) []Entry {
	prior := make(map[string]Entry, len(previous))
	for _, e := range previous {
		prior[strings.ToLower(e.Key)] = e
	}

	var changed []Entry
	for _, e := range current {
		old, ok := prior[strings.ToLower(e.Key)]
		if ok && old.Code == e.Code && old.Aired == e.Aired {
			continue
		}
		changed = append(changed, e)
	}

	Sort(changed)
	return changed
}
