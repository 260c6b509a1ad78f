// File path: internal/narrative/errors.go
package narrative

import "fmt"

// GenerationError reports that no usable narrative could be obtained for a
// dimension. The caller decides whether that aborts the report.
type GenerationError struct {
	Dimension string
	Attempts  int
	Err       error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("narrative: generate %s failed after %d attempt(s): %v", e.Dimension, e.Attempts, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
