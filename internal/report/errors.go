// File path: internal/report/errors.go
package report

import "fmt"

// AssetMissingError reports an image that could not be placed. It never
// stops assembly.
type AssetMissingError struct {
	Dimension string
	Path      string
	Err       error
}

func (e *AssetMissingError) Error() string {
	return fmt.Sprintf("report: %s image %s missing: %v", e.Dimension, e.Path, e.Err)
}

func (e *AssetMissingError) Unwrap() error { return e.Err }
