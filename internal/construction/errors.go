// File path: internal/construction/errors.go
package construction

import "fmt"

// LookupError reports an identifier missing from one of the libraries.
type LookupError struct {
	Kind       string
	Identifier string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("construction: unknown %s %q", e.Kind, e.Identifier)
}

// LayerError reports a construction whose mass layers already exceed the
// requested thermal resistance.
type LayerError struct {
	Construction string
	TargetR      float64
	MassR        float64
}

func (e *LayerError) Error() string {
	return fmt.Sprintf("construction: %s target R %.4g does not exceed mass layers R %.4g", e.Construction, e.TargetR, e.MassR)
}
