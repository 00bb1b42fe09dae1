package flowmap

import (
	"fmt"

	"github.com/pkg/errors"
)

// ConfigurationError is returned from Empty when a SketchConf describes an
// internally inconsistent sketch: non-positive sizes, zero depth, or
// inverted bounds. It is the only error kind a caller should expect to see
// out of this package; everything past construction is total.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("flowmap: invalid configuration field %q: %s", e.Field, e.Reason)
}

func configErr(field, reason string) error {
	return errors.WithStack(&ConfigurationError{Field: field, Reason: reason})
}

// panicEmptyStructures is raised when the structures stack invariant
// (never empty) has been violated. That invariant is maintained entirely
// inside this package, so seeing this panic means a bug here, not bad
// caller input.
func panicEmptyStructures(where string) {
	panic(fmt.Sprintf("flowmap: %s observed an empty structures stack; this is a bug", where))
}
