// Package watched reads and rewrites the user-owned watched-configuration
// file. The file is line oriented: blank lines and `#` comments are preserved
// verbatim, every other line is `display name:show key:last watched code`.
// Users hand-edit this file, so rewrites must touch nothing but the code
// field of the targeted entries.
package watched

import (
	"fmt"
	"os"
	"strings"

	"github.com/epwatch/epwatch/pkg/fsx"
	"github.com/gofrs/flock"
)

// Entry is one show line from the file. Key keeps its original spelling;
// lookups normalize to lowercase.
type Entry struct {
	Display string
	Key     string
	Code    string
}

type line struct {
	raw   string // verbatim text for comments, blanks and malformed lines
	entry *Entry
}

// File is a parsed watched-configuration file that can be rewritten in place.
type File struct {
	path  string
	lines []line
}

// Load parses the file at path. A missing file yields an empty File that can
// still be saved. Lines that are neither comments nor three colon-delimited
// fields are kept verbatim but carry no entry.
func Load(path string) (*File, []string, error) {
	f := &File{path: path}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil, nil
		}
		return nil, nil, fmt.Errorf("read watched file: %w", err)
	}

	if len(raw) == 0 {
		return f, nil, nil
	}

	var malformed []string

	text := strings.TrimSuffix(strings.ReplaceAll(string(raw), "\r\n", "\n"), "\n")
	for _, l := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(l)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			f.lines = append(f.lines, line{raw: l})
			continue
		}

		fields := strings.Split(l, ":")
		if len(fields) != 3 {
			malformed = append(malformed, l)
			f.lines = append(f.lines, line{raw: l})
			continue
		}

		f.lines = append(f.lines, line{
			raw: l,
			entry: &Entry{
				Display: fields[0],
				Key:     fields[1],
				Code:    strings.TrimSpace(fields[2]),
			},
		})
	}

	return f, malformed, nil
}

// Entries returns the show entries in file order.
func (f *File) Entries() []Entry {
	var entries []Entry
	for _, l := range f.lines {
		if l.entry != nil {
			entries = append(entries, *l.entry)
		}
	}
	return entries
}

// Lookup finds the entry for key, case-insensitively.
func (f *File) Lookup(key string) (Entry, bool) {
	want := strings.ToLower(key)
	for _, l := range f.lines {
		if l.entry != nil && strings.ToLower(l.entry.Key) == want {
			return *l.entry, true
		}
	}
	return Entry{}, false
}

// SetCode replaces the last-watched code of the entry for key, leaving the
// display name and key spelling untouched. It reports whether the key was
// found.
func (f *File) SetCode(key, code string) bool {
	want := strings.ToLower(key)
	for i := range f.lines {
		e := f.lines[i].entry
		if e == nil || strings.ToLower(e.Key) != want {
			continue
		}

		e.Code = code
		f.lines[i].raw = fmt.Sprintf("%s:%s:%s", e.Display, e.Key, e.Code)
		return true
	}
	return false
}

// Save rewrites the file under an exclusive lock via a temp file and atomic
// rename, preserving the original file's permission and ownership bits.
// Comment and blank lines come back byte for byte.
func (f *File) Save() error {
	lock := flock.New(f.path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock watched file: %w", err)
	}
	defer lock.Unlock()

	var b strings.Builder
	for _, l := range f.lines {
		b.WriteString(l.raw)
		b.WriteByte('\n')
	}

	if err := fsx.ReplaceFilePreserving(f.path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("rewrite watched file: %w", err)
	}

	return nil
}
