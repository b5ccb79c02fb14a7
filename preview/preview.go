// Package preview renders a static HTML gallery of the generated icons.
package preview

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"regexp"

	"github.com/c360studio/iconforge/export"
	"github.com/c360studio/iconforge/storage"
)

//go:embed templates/index.html.tmpl
var pageSource string

var pageTemplate = template.Must(template.New("preview").Parse(pageSource))

// tagPattern guards the one place a tag name is emitted as markup.
var tagPattern = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)+$`)

// Options configures the page.
type Options struct {
	Title string
	// BundleURL is the script registering every component, usually the
	// browser bundle.
	BundleURL string
	// LiveReloadURL is a websocket path; empty disables live reload.
	LiveReloadURL string
}

type icon struct {
	export.Entry
	Element template.HTML
}

type page struct {
	Generator     string
	Title         string
	BundleURL     string
	LiveReloadURL string
	Icons         []icon
}

// Render renders the gallery for every manifest entry with a tag name.
func Render(m *export.Manifest, opts Options) ([]byte, error) {
	if opts.Title == "" {
		opts.Title = "Icons"
	}

	p := page{
		Generator:     "iconforge",
		Title:         opts.Title,
		BundleURL:     opts.BundleURL,
		LiveReloadURL: opts.LiveReloadURL,
	}
	for _, e := range m.Entries() {
		if e.TagName == "" {
			continue
		}
		if !tagPattern.MatchString(e.TagName) {
			return nil, fmt.Errorf("preview %s: invalid tag name %q", e.Name, e.TagName)
		}
		p.Icons = append(p.Icons, icon{
			Entry:   e,
			Element: template.HTML("<" + e.TagName + "></" + e.TagName + ">"),
		})
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, p); err != nil {
		return nil, fmt.Errorf("render preview: %w", err)
	}
	return buf.Bytes(), nil
}

// Write renders the gallery to path.
func Write(path string, m *export.Manifest, opts Options) error {
	data, err := Render(m, opts)
	if err != nil {
		return err
	}
	if err := storage.WriteFileAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("write preview: %w", err)
	}
	return nil
}
