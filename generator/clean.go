package generator

import (
	"errors"
	"fmt"
	"os"
)

// Clean removes the generated component directory, index and manifest
// record. Icon sources are left alone. It reports whether a manifest record
// existed before the call.
func (g *Generator) Clean() (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	existed := g.store.Exists()
	if !existed {
		g.logger.Info("No manifest record, removing leftover output", "path", g.store.Path())
	}

	if err := os.RemoveAll(g.componentsDir()); err != nil {
		return existed, fmt.Errorf("remove component directory: %w", err)
	}
	if err := os.Remove(g.indexPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return existed, fmt.Errorf("remove index: %w", err)
	}
	if err := g.store.Delete(); err != nil {
		return existed, err
	}
	g.logger.Info("Removed generated output", "components", g.componentsDir(), "index", g.indexPath())
	return existed, nil
}
