// File path: internal/metrics/errors.go
package metrics

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingColumn = errors.New("required column missing")
	ErrNotNumeric    = errors.New("value is not numeric")
)

// DataError reports unusable input: an absent column, a malformed cell or an
// unreadable table. Row is 1-based over data rows and zero when not
// applicable.
type DataError struct {
	Dimension string
	Path      string
	Column    string
	Row       int
	Value     string
	Err       error
}

func (e *DataError) Error() string {
	var b strings.Builder
	b.WriteString("metrics")
	if e.Dimension != "" {
		b.WriteString(": ")
		b.WriteString(e.Dimension)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, ": column %q", e.Column)
	}
	if e.Row > 0 {
		fmt.Fprintf(&b, " row %d", e.Row)
	}
	if e.Value != "" {
		fmt.Fprintf(&b, " value %q", e.Value)
	}
	if e.Path != "" {
		fmt.Fprintf(&b, " in %s", e.Path)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *DataError) Unwrap() error { return e.Err }
