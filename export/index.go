package export

import (
	"bytes"
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// IndexHeader is the first line of every generated index module.
const IndexHeader = "// Code generated by iconforge. DO NOT EDIT."

// RenderIndex renders the index module re-exporting every entry, sorted
// by name. importPrefix is the module specifier of the component
// directory relative to the index, e.g. "./icons". An empty manifest
// renders a valid module with no exports.
func RenderIndex(m *Manifest, importPrefix string) []byte {
	var buf bytes.Buffer
	buf.WriteString(IndexHeader)
	buf.WriteByte('\n')

	entries := m.Entries()
	if len(entries) == 0 {
		buf.WriteString("export {};\n")
		return buf.Bytes()
	}
	for _, e := range entries {
		fmt.Fprintf(&buf, "export { %s } from '%s/%s';\n", e.ComponentID, importPrefix, e.Name)
	}
	return buf.Bytes()
}

// ImportPrefix returns the relative module specifier of componentsDir as
// seen from the index file at indexPath.
func ImportPrefix(indexPath, componentsDir string) (string, error) {
	rel, err := filepath.Rel(filepath.Dir(indexPath), componentsDir)
	if err != nil {
		return "", fmt.Errorf("relate %s to %s: %w", componentsDir, indexPath, err)
	}
	rel = path.Clean(filepath.ToSlash(rel))
	if rel == "." {
		return ".", nil
	}
	if !strings.HasPrefix(rel, "../") {
		rel = "./" + rel
	}
	return rel, nil
}
