package bundle

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/iconforge/export"
)

const homeComponent = `import { LitElement } from 'lit';
export class QxIconHome extends LitElement {
  declare size?: number;
}
if (!customElements.get('qx-icon-home')) {
  customElements.define('qx-icon-home', QxIconHome);
}
`

func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src", "icons"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "icons", "home.ts"), []byte(homeComponent), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "index.ts"),
		[]byte(export.IndexHeader+"\nexport { QxIconHome } from './icons/home';\n"), 0644))
	return dir
}

func TestBundle_ExternalFormats(t *testing.T) {
	dir := writeProject(t)

	outputs, err := Bundle(context.Background(), Options{
		IndexPath: filepath.Join(dir, "src", "index.ts"),
		OutDir:    filepath.Join(dir, "dist"),
		Formats:   []export.Format{export.FormatESM, export.FormatCJS},
		External:  []string{"lit", "lit/*"},
	})
	require.NoError(t, err)
	require.Len(t, outputs, 2)

	esm, err := os.ReadFile(filepath.Join(dir, "dist", "index.mjs"))
	require.NoError(t, err)
	assert.Contains(t, string(esm), `from "lit"`)
	assert.Contains(t, string(esm), "QxIconHome")
	assert.Equal(t, len(esm), outputs[0].Size)

	cjs, err := os.ReadFile(filepath.Join(dir, "dist", "index.cjs"))
	require.NoError(t, err)
	assert.Contains(t, string(cjs), `require("lit")`)
}

func TestBundle_ReportsUnresolvedImports(t *testing.T) {
	dir := writeProject(t)

	// The browser bundle inlines lit, which is not installed here.
	_, err := Bundle(context.Background(), Options{
		IndexPath:  filepath.Join(dir, "src", "index.ts"),
		OutDir:     filepath.Join(dir, "dist"),
		Formats:    []export.Format{export.FormatBrowser},
		GlobalName: "QxIcons",
		External:   []string{"lit", "lit/*"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBuild))
	assert.Contains(t, err.Error(), "lit")
}

func TestBundle_Validation(t *testing.T) {
	_, err := Bundle(context.Background(), Options{})
	assert.Error(t, err)

	_, err = Bundle(context.Background(), Options{IndexPath: "/does/not/exist.ts", OutDir: t.TempDir()})
	assert.Error(t, err)

	dir := writeProject(t)
	_, err = Bundle(context.Background(), Options{
		IndexPath: filepath.Join(dir, "src", "index.ts"),
		OutDir:    filepath.Join(dir, "dist"),
		Formats:   []export.Format{"amd"},
	})
	assert.Error(t, err)
}

func TestBundle_Cancelled(t *testing.T) {
	dir := writeProject(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Bundle(ctx, Options{
		IndexPath: filepath.Join(dir, "src", "index.ts"),
		OutDir:    filepath.Join(dir, "dist"),
		Formats:   []export.Format{export.FormatESM},
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFormatMessages(t *testing.T) {
	got := formatMessages([]api.Message{
		{Text: `Could not resolve "lit"`, Location: &api.Location{File: "src/icons/home.ts", Line: 1, Column: 27}},
		{Text: "plain"},
	})
	assert.Equal(t, `src/icons/home.ts:1:27: Could not resolve "lit"; plain`, got)
}
