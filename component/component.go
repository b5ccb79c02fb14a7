// Package component synthesizes the source of one custom-element icon
// component from an icon's identity and transformed markup.
package component

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"unicode"

	"github.com/c360studio/iconforge/identity"
	"github.com/c360studio/iconforge/model"
	"github.com/c360studio/iconforge/svg"
)

// Extension is the file extension of generated component sources.
const Extension = ".ts"

// Generator names the tool in the generated-code header.
const Generator = "iconforge"

//go:embed templates/component.ts.tmpl
var componentSource string

var componentTemplate = template.Must(template.New("component").
	Funcs(template.FuncMap{"jsString": jsString}).
	Parse(componentSource))

// Input is everything needed to emit one component.
type Input struct {
	Identity identity.Identity
	Type     model.IconType
	// Markup is the normalized SVG from svg.Transform, unescaped.
	Markup     string
	Dimensions *model.Dimensions
	// Source is the icon's path relative to the icons root, for the header.
	Source string
}

type templateData struct {
	Generator   string
	Source      string
	Name        string
	ComponentID string
	TagName     string
	Markup      string
	ViewBox     string
	AspectRatio string
	Colorable   bool
}

// Synthesize renders the component source for in.
func Synthesize(in Input) ([]byte, error) {
	if !in.Type.IsValid() {
		return nil, fmt.Errorf("synthesize %s: unknown icon type %q", in.Identity.SafeBaseName, in.Type)
	}
	if in.Identity.ComponentID == "" || in.Identity.TagName == "" {
		return nil, fmt.Errorf("synthesize %s: incomplete identity", in.Source)
	}

	data := templateData{
		Generator:   Generator,
		Source:      printable(in.Source),
		Name:        in.Identity.SafeBaseName,
		ComponentID: in.Identity.ComponentID,
		TagName:     in.Identity.TagName,
		Markup:      svg.EscapeTemplateLiteral(in.Markup),
		ViewBox:     svg.RootViewBox(in.Markup),
		AspectRatio: model.FormatFloat(in.Dimensions.AspectRatio()),
		Colorable:   in.Type == model.Colorable,
	}

	var buf bytes.Buffer
	if err := componentTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render component %s: %w", in.Identity.ComponentID, err)
	}
	return buf.Bytes(), nil
}

// FileName returns the generated file name for an identity.
func FileName(id identity.Identity) string {
	return id.SafeBaseName + Extension
}

// jsString renders s as a JavaScript string literal. JSON string syntax is
// a subset of it, and the encoder escapes U+2028 and U+2029.
func jsString(s string) (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// printable strips control characters and line separators so a path can
// sit in a line comment.
func printable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || r == '\u2028' || r == '\u2029' {
			return -1
		}
		return r
	}, s)
}
