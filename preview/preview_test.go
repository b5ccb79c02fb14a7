package preview

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/iconforge/export"
	"github.com/c360studio/iconforge/model"
)

func sampleManifest() *export.Manifest {
	return export.NewManifest(
		export.Entry{ComponentID: "QxIconHome", Name: "home", TagName: "qx-icon-home", Type: model.Colorable, Source: "nocolors/home.svg"},
		export.Entry{ComponentID: "QxIconFlag", Name: "flag", TagName: "qx-icon-flag", Type: model.ColorPreserving, Source: "colors/flag.svg"},
	)
}

func TestRender(t *testing.T) {
	out, err := Render(sampleManifest(), Options{
		Title:         "Acme <icons>",
		BundleURL:     "/dist/iconforge.min.js",
		LiveReloadURL: "/ws",
	})
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, "<title>Acme &lt;icons&gt;</title>")
	assert.Contains(t, html, "<qx-icon-home></qx-icon-home>")
	assert.Contains(t, html, "<qx-icon-flag></qx-icon-flag>")
	assert.Contains(t, html, `<script src="/dist/iconforge.min.js"></script>`)
	assert.Contains(t, html, "new WebSocket(")
	assert.Contains(t, html, "2 icons")

	// Sorted by name.
	assert.Less(t, strings.Index(html, "qx-icon-flag"), strings.Index(html, "qx-icon-home"))
}

func TestRender_Empty(t *testing.T) {
	out, err := Render(export.NewManifest(), Options{})
	require.NoError(t, err)

	assert.Contains(t, string(out), "No icons generated yet.")
	assert.Contains(t, string(out), "<title>Icons</title>")
	assert.NotContains(t, string(out), "WebSocket")
	assert.NotContains(t, string(out), "<script src=")
}

func TestRender_SkipsRecoveredEntries(t *testing.T) {
	m := export.NewManifest(export.Entry{ComponentID: "QxIconOld", Name: "old"})

	out, err := Render(m, Options{})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "QxIconOld")
}

func TestRender_RejectsInvalidTag(t *testing.T) {
	m := export.NewManifest(export.Entry{ComponentID: "X", Name: "x", TagName: "x><script>"})

	_, err := Render(m, Options{})
	assert.Error(t, err)
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preview", "index.html")
	require.NoError(t, Write(path, sampleManifest(), Options{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "qx-icon-home")
}
