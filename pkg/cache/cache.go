// Package cache stores the last raw episode-guide payload fetched for each
// show, one file per show key. Entries have no expiry; they live until the
// next successful fetch overwrites them. The file mtime doubles as the
// conditional-fetch reference time.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/epwatch/epwatch/pkg/fsx"
)

type Store struct {
	dir string
}

// New returns a Store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(showKey string) string {
	return filepath.Join(s.dir, strings.ToLower(showKey))
}

// Get returns the cached payload for showKey split into lines. The second
// return reports whether an entry exists; the error is non-nil only when an
// existing entry could not be read.
func (s *Store) Get(showKey string) ([]string, bool, error) {
	raw, err := os.ReadFile(s.path(showKey))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, true, fmt.Errorf("read cache entry %q: %w", showKey, err)
	}

	return SplitLines(raw), true, nil
}

// Put overwrites the cache entry for showKey with the raw payload as received.
func (s *Store) Put(showKey string, raw []byte) error {
	if err := fsx.WriteFileAtomic(s.path(showKey), raw, 0o644); err != nil {
		return fmt.Errorf("write cache entry %q: %w", showKey, err)
	}
	return nil
}

// Mtime returns the fetch time of the cached entry for showKey, if any.
func (s *Store) Mtime(showKey string) (time.Time, bool) {
	info, err := os.Stat(s.path(showKey))
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// SplitLines splits a raw payload into lines, tolerating both LF and CRLF
// endings. A trailing newline does not produce an empty final line.
func SplitLines(raw []byte) []string {
	text := strings.ReplaceAll(string(raw), "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
