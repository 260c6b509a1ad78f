// File path: internal/common/log.go
package common

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

const defaultLogHistory = 1000

var (
	logger     *slog.Logger
	loggerOnce sync.Once
	sink       = newLogSink(defaultLogHistory)
)

// LogEntry is one captured record, served by the API log endpoint.
type LogEntry struct {
	Time       time.Time              `json:"time"`
	Level      string                 `json:"level"`
	Message    string                 `json:"message"`
	Component  string                 `json:"component,omitempty"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

// LogFilter narrows the captured history. Zero values match everything.
type LogFilter struct {
	MinLevel  slog.Level
	Component string
	Since     time.Time
	Limit     int
}

// Logger returns the process-wide logger. LOG_LEVEL selects the level and
// LOG_FORMAT=json switches the console handler to JSON.
func Logger() *slog.Logger {
	loggerOnce.Do(func() {
		logger = newLogger(os.Stdout, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	})
	return logger
}

func newLogger(w io.Writer, levelName, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(levelName)}
	var base slog.Handler
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		base = slog.NewJSONHandler(w, opts)
	} else {
		base = slog.NewTextHandler(w, opts)
	}
	return slog.New(&capturingHandler{handler: base, sink: sink})
}

// ParseLevel maps debug/warn/error names onto slog levels, defaulting to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogEntries returns a copy of every captured entry.
func LogEntries() []LogEntry {
	if sink == nil {
		return nil
	}
	return sink.entries()
}

// FilterLogEntries returns the captured entries matching filter, newest last.
// When Limit is set only the most recent Limit matches are kept.
func FilterLogEntries(filter LogFilter) []LogEntry {
	all := LogEntries()
	component := strings.ToLower(strings.TrimSpace(filter.Component))
	out := make([]LogEntry, 0, len(all))
	for _, entry := range all {
		if ParseLevel(entry.Level) < filter.MinLevel {
			continue
		}
		if component != "" && strings.ToLower(entry.Component) != component {
			continue
		}
		if !filter.Since.IsZero() && entry.Time.Before(filter.Since) {
			continue
		}
		out = append(out, entry)
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[len(out)-filter.Limit:]
	}
	return out
}

type capturingHandler struct {
	handler slog.Handler
	sink    *logSink
	attrs   []slog.Attr
}

func (h *capturingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *capturingHandler) Handle(ctx context.Context, record slog.Record) error {
	err := h.handler.Handle(ctx, record)
	if h.sink != nil {
		h.sink.capture(record, h.attrs)
	}
	return err
}

func (h *capturingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &capturingHandler{handler: h.handler.WithAttrs(attrs), sink: h.sink, attrs: merged}
}

func (h *capturingHandler) WithGroup(name string) slog.Handler {
	return &capturingHandler{handler: h.handler.WithGroup(name), sink: h.sink, attrs: h.attrs}
}

type logSink struct {
	mu      sync.RWMutex
	max     int
	history []LogEntry
}

func newLogSink(max int) *logSink {
	if max <= 0 {
		max = defaultLogHistory
	}
	return &logSink{max: max}
}

func (s *logSink) capture(record slog.Record, bound []slog.Attr) {
	entry := buildLogEntry(record, bound)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, entry)
	if len(s.history) > s.max {
		s.history = s.history[len(s.history)-s.max:]
	}
}

func (s *logSink) entries() []LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.history) == 0 {
		return nil
	}
	out := make([]LogEntry, len(s.history))
	copy(out, s.history)
	return out
}

func buildLogEntry(record slog.Record, bound []slog.Attr) LogEntry {
	entry := LogEntry{
		Time:    record.Time,
		Level:   strings.ToLower(record.Level.String()),
		Message: record.Message,
	}
	if entry.Time.IsZero() {
		entry.Time = time.Now()
	}
	entry.Time = entry.Time.UTC()

	var attrs map[string]interface{}
	collect := func(a slog.Attr) bool {
		value := valueToAny(a.Value)
		if a.Key == "component" {
			entry.Component = strings.TrimSpace(valueString(value))
			return true
		}
		if attrs == nil {
			attrs = make(map[string]interface{})
		}
		attrs[a.Key] = value
		return true
	}
	for _, a := range bound {
		collect(a)
	}
	record.Attrs(collect)

	// Messages follow the "component: text" convention.
	if entry.Component == "" {
		if idx := strings.Index(entry.Message, ":"); idx > 0 && !strings.Contains(entry.Message[:idx], " ") {
			entry.Component = entry.Message[:idx]
		}
	}
	if len(attrs) > 0 {
		entry.Attributes = attrs
	}
	return entry
}

func valueToAny(v slog.Value) interface{} {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindBool:
		return v.Bool()
	case slog.KindInt64:
		return v.Int64()
	case slog.KindUint64:
		return v.Uint64()
	case slog.KindFloat64:
		return v.Float64()
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().UTC()
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return v.Any()
	default:
		return v.String()
	}
}

func valueString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
