package svg

import (
	"errors"
	"fmt"
)

// ErrOptimization is matched by every OptimizationError.
var ErrOptimization = errors.New("svg optimization failed")

// OptimizationError reports markup the optimizer rejected. The build must
// abort for the file rather than emit unoptimized output.
type OptimizationError struct {
	// Source is the icon source path, relative to the icons root.
	Source string
	Err    error
}

func (e *OptimizationError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("%s: %v", ErrOptimization, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", ErrOptimization, e.Source, e.Err)
}

func (e *OptimizationError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrOptimization.
func (e *OptimizationError) Is(target error) bool {
	return target == ErrOptimization
}

// errNoRoot is returned for markup without an <svg> element.
var errNoRoot = errors.New("no <svg> root element")
