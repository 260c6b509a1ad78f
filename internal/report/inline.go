// File path: internal/report/inline.go
package report

import (
	"regexp"
	"strings"
)

var inlinePattern = regexp.MustCompile(`(\*\*[^\*]+\*\*|https?://\S+|\S+|\s+)`)

// ParseInline splits body text into runs: **bold** spans, http(s) links and
// plain text. Adjacent plain tokens are merged.
func ParseInline(text string) []Run {
	var runs []Run
	appendPlain := func(s string) {
		if n := len(runs); n > 0 && !runs[n-1].Bold && runs[n-1].Link == "" {
			runs[n-1].Text += s
			return
		}
		runs = append(runs, Run{Text: s})
	}
	for _, part := range inlinePattern.FindAllString(text, -1) {
		switch {
		case strings.TrimSpace(part) == "":
			appendPlain(part)
		case len(part) > 4 && strings.HasPrefix(part, "**") && strings.HasSuffix(part, "**"):
			runs = append(runs, Run{Text: part[2 : len(part)-2], Bold: true})
		case strings.HasPrefix(part, "http://") || strings.HasPrefix(part, "https://"):
			runs = append(runs, Run{Text: part, Link: part})
		default:
			appendPlain(part)
		}
	}
	return runs
}
