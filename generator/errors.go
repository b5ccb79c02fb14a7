package generator

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrDuplicate is matched by *DuplicateError.
	ErrDuplicate = errors.New("duplicate icon names")

	// ErrMissingFile is matched by *MissingFileError.
	ErrMissingFile = errors.New("icon source missing")
)

// MissingFileError reports an incremental addition whose source file does
// not exist. It is logged and skipped, never returned from a build.
type MissingFileError struct {
	Path string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("icon source missing: %s", e.Path)
}

func (e *MissingFileError) Is(target error) bool {
	return target == ErrMissingFile
}

// DuplicateError carries a non-empty duplicate report.
type DuplicateError struct {
	Report *DuplicateReport
}

func (e *DuplicateError) Error() string {
	var parts []string
	for _, name := range e.Report.SameFilename {
		parts = append(parts, fmt.Sprintf("%s exists in both icon directories", name))
	}
	names := make([]string, 0, len(e.Report.Collisions))
	for name := range e.Report.Collisions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%q is derived from %s", name, strings.Join(e.Report.Collisions[name], ", ")))
	}
	return fmt.Sprintf("duplicate icon names: %s", strings.Join(parts, "; "))
}

func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}
