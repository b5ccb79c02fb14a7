// Package svg turns raw SVG source into markup that can be embedded in a
// generated component: dimensions are read first, then a per-type optimizer
// runs, then whitespace and comments are normalized.
package svg

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/c360studio/iconforge/model"
)

// Result is one transformed icon.
type Result struct {
	// Markup is single-line SVG safe to place in a template literal once
	// escaped with EscapeTemplateLiteral.
	Markup string
	// Dimensions is the intrinsic size read before optimization, or nil.
	Dimensions *model.Dimensions
}

// Transform optimizes raw markup of the given type with opt. source names
// the file in errors. Optimizer failures are returned as
// *OptimizationError.
func Transform(source string, raw []byte, t model.IconType, opt Optimizer) (*Result, error) {
	if opt == nil {
		return nil, fmt.Errorf("no optimizer for %s icons", t)
	}

	dims := ExtractDimensions(raw)

	out, err := opt.Optimize(raw)
	if err != nil {
		return nil, &OptimizationError{Source: source, Err: err}
	}

	if t == model.ColorPreserving {
		if out, err = StripRootSize(out, dims); err != nil {
			return nil, &OptimizationError{Source: source, Err: err}
		}
	}

	markup := Normalize(string(out))
	if markup == "" {
		return nil, &OptimizationError{Source: source, Err: errNoRoot}
	}
	return &Result{Markup: markup, Dimensions: dims}, nil
}

var (
	commentPattern     = regexp.MustCompile(`(?s)<!--.*?-->`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
	betweenTagsPattern = regexp.MustCompile(`>\s+<`)
)

// Normalize removes comments, collapses whitespace runs to one space,
// drops whitespace between tags and trims.
func Normalize(markup string) string {
	s := commentPattern.ReplaceAllString(markup, "")
	s = whitespacePattern.ReplaceAllString(s, " ")
	s = betweenTagsPattern.ReplaceAllString(s, "><")
	return strings.TrimSpace(s)
}

var templateLiteralEscaper = strings.NewReplacer(`\`, `\\`, "`", "\\`", "${", "\\${")

// EscapeTemplateLiteral escapes markup for a JavaScript template literal.
func EscapeTemplateLiteral(markup string) string {
	return templateLiteralEscaper.Replace(markup)
}
