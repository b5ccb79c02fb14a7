package export

import (
	"fmt"
	"sort"
	"strings"
)

// Format is a distribution module format built from the index.
type Format string

const (
	// FormatESM is an ES module with the framework left external.
	FormatESM Format = "esm"
	// FormatCJS is a CommonJS module with the framework left external.
	FormatCJS Format = "cjs"
	// FormatBrowser is a self-contained, minified script for <script> tags.
	FormatBrowser Format = "browser"
)

// FormatInfo provides metadata about a distribution format.
type FormatInfo struct {
	// Name is the format identifier.
	Name Format

	// FileName is the output file name inside the dist directory.
	FileName string

	// MIMEType is the standard MIME type.
	MIMEType string

	// External reports whether framework imports stay unbundled.
	External bool

	// Minify reports whether the output is minified.
	Minify bool

	// Description describes the format.
	Description string
}

// FormatRegistry contains metadata for all supported formats.
var FormatRegistry = map[Format]FormatInfo{
	FormatESM: {
		Name:        FormatESM,
		FileName:    "index.mjs",
		MIMEType:    "text/javascript",
		External:    true,
		Description: "ES module for bundlers and modern runtimes",
	},
	FormatCJS: {
		Name:        FormatCJS,
		FileName:    "index.cjs",
		MIMEType:    "application/node",
		External:    true,
		Description: "CommonJS module for require()",
	},
	FormatBrowser: {
		Name:        FormatBrowser,
		FileName:    "iconforge.min.js",
		MIMEType:    "text/javascript",
		External:    false,
		Minify:      true,
		Description: "Self-registering browser bundle (IIFE)",
	},
}

// GetFormatInfo returns metadata for a format.
func GetFormatInfo(format Format) (FormatInfo, bool) {
	info, ok := FormatRegistry[format]
	return info, ok
}

// ParseFormats validates a list of format names, dropping duplicates while
// keeping order.
func ParseFormats(names []string) ([]Format, error) {
	seen := make(map[Format]bool, len(names))
	var formats []Format
	for _, name := range names {
		f := Format(strings.ToLower(strings.TrimSpace(name)))
		if _, ok := FormatRegistry[f]; !ok {
			return nil, fmt.Errorf("unknown distribution format %q (supported: %s)", name, strings.Join(FormatNames(), ", "))
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		formats = append(formats, f)
	}
	return formats, nil
}

// FormatNames returns the supported format names, sorted.
func FormatNames() []string {
	names := make([]string, 0, len(FormatRegistry))
	for f := range FormatRegistry {
		names = append(names, string(f))
	}
	sort.Strings(names)
	return names
}
