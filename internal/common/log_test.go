// File path: internal/common/log_test.go
package common

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestCapturedEntryComponentFromMessagePrefix(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "debug", "")
	marker := "probe-" + time.Now().Format("150405.000000000")
	l.Info("narrative: request sent", "marker", marker, "error", errors.New("boom"))

	entry, ok := findEntry(marker)
	if !ok {
		t.Fatalf("expected captured entry for %s", marker)
	}
	if entry.Component != "narrative" {
		t.Fatalf("expected component narrative, got %q", entry.Component)
	}
	if entry.Attributes["error"] != "boom" {
		t.Fatalf("expected error attribute flattened to string, got %#v", entry.Attributes["error"])
	}
	if !strings.Contains(buf.String(), "request sent") {
		t.Fatalf("expected console output, got %q", buf.String())
	}
}

func TestBoundComponentAttributeWins(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "info", "json").With("component", "report")
	marker := "bound-" + time.Now().Format("150405.000000000")
	l.Warn("assembler: image missing", "marker", marker)

	entry, ok := findEntry(marker)
	if !ok {
		t.Fatalf("expected captured entry for %s", marker)
	}
	if entry.Component != "report" {
		t.Fatalf("expected bound component report, got %q", entry.Component)
	}
	if entry.Level != "warn" {
		t.Fatalf("expected warn level, got %q", entry.Level)
	}
}

func TestFilterLogEntries(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "debug", "")
	since := time.Now().UTC()
	l.Debug("filtertest: quiet")
	l.Error("filtertest: loud")

	got := FilterLogEntries(LogFilter{MinLevel: slog.LevelWarn, Component: "filtertest", Since: since})
	if len(got) != 1 || got[0].Message != "filtertest: loud" {
		t.Fatalf("unexpected filtered entries: %#v", got)
	}
	limited := FilterLogEntries(LogFilter{Component: "filtertest", Since: since, Limit: 1})
	if len(limited) != 1 || limited[0].Message != "filtertest: loud" {
		t.Fatalf("expected newest entry only, got %#v", limited)
	}
}

func findEntry(marker string) (LogEntry, bool) {
	for _, entry := range LogEntries() {
		if entry.Attributes["marker"] == marker {
			return entry, true
		}
	}
	return LogEntry{}, false
}
