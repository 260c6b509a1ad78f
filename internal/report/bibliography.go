// File path: internal/report/bibliography.go
package report

import (
	"sort"
	"strings"
)

// Bibliography accumulates reference lines across sections. It is owned by
// the caller and threaded through each AddSection call.
type Bibliography struct {
	seen  map[string]struct{}
	lines []string
}

func NewBibliography() *Bibliography {
	return &Bibliography{seen: make(map[string]struct{})}
}

// Add records a reference line, ignoring blanks and repeats. It reports
// whether the line was new.
func (b *Bibliography) Add(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if b.seen == nil {
		b.seen = make(map[string]struct{})
	}
	if _, ok := b.seen[line]; ok {
		return false
	}
	b.seen[line] = struct{}{}
	b.lines = append(b.lines, line)
	return true
}

func (b *Bibliography) Len() int {
	if b == nil {
		return 0
	}
	return len(b.lines)
}

// Entries returns the unique lines sorted.
func (b *Bibliography) Entries() []string {
	if b == nil {
		return nil
	}
	out := append([]string(nil), b.lines...)
	sort.Strings(out)
	return out
}
