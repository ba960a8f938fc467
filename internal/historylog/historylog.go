// Package historylog persists the Reader's accepted command lines to a
// flat file, the way the teacher's internal/config package persists its
// own settings file: load what exists, hold it in memory, write it back
// out with restrictive permissions on demand.
package historylog

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Log is an in-memory, append-only command history backed by a file on
// disk. It is owned by the Reader goroutine alone; nothing else touches
// it concurrently (spec.md §3's single-owner discipline extended to this
// ambient feature).
type Log struct {
	path    string
	ignore  []string
	entries []string
}

// Load reads path's existing lines (if any) into a new Log. ignore is the
// set of glob patterns (github.com/bmatcuk/doublestar/v4 syntax) checked
// against a line's first word by ShouldIgnore.
func Load(path string, ignore []string) (*Log, error) {
	l := &Log{path: path, ignore: ignore}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open history file %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			l.entries = append(l.entries, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history file %s: %w", path, err)
	}

	return l, nil
}

// Append records line in memory; it is not written to disk until Persist.
func (l *Log) Append(line string) {
	l.entries = append(l.entries, line)
}

// ShouldIgnore reports whether line's first word matches one of the
// configured historyIgnore glob patterns. Matching lines still run; they
// are simply never appended to history (spec.md's ambient config feature,
// not part of the job-control core).
func (l *Log) ShouldIgnore(line string) bool {
	word := strings.Fields(line)
	if len(word) == 0 {
		return false
	}
	for _, pattern := range l.ignore {
		if ok, err := doublestar.Match(pattern, word[0]); err == nil && ok {
			return true
		}
	}
	return false
}

// Entries returns a copy of the recorded history, oldest first.
func (l *Log) Entries() []string {
	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}

// Persist writes the full in-memory history back to disk, creating the
// parent directory and the file (mode 0600, matching the teacher's
// config-file permission choice) if they do not exist.
func (l *Log) Persist() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o700); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	var sb strings.Builder
	for _, line := range l.entries {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}

	if err := os.WriteFile(l.path, []byte(sb.String()), 0o600); err != nil {
		return fmt.Errorf("failed to write history file %s: %w", l.path, err)
	}
	return nil
}
