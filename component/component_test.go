package component

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/iconforge/identity"
	"github.com/c360studio/iconforge/model"
)

func mustIdentity(t *testing.T, filename string) identity.Identity {
	t.Helper()
	id, err := identity.NewDeriver("", "").Derive(filename)
	require.NoError(t, err)
	return id
}

// colorValue matches fill/stroke declarations or attributes with a fixed color.
var colorValue = regexp.MustCompile(`(?i)(fill|stroke)\s*[:=]\s*"?\s*(#[0-9a-f]{3,8}|rgb|hsl|red|blue|green|black|white)`)

func TestSynthesize_Colorable(t *testing.T) {
	id := mustIdentity(t, "箭头-左.svg")
	src, err := Synthesize(Input{
		Identity:   id,
		Type:       model.Colorable,
		Markup:     `<svg viewBox="0 0 24 24" fill="currentColor"><path d="M0 0h24" stroke="currentColor"></path></svg>`,
		Dimensions: &model.Dimensions{Width: 24, Height: 24},
		Source:     "nocolors/箭头-左.svg",
	})
	require.NoError(t, err)
	out := string(src)

	assert.Contains(t, out, "DO NOT EDIT")
	assert.Contains(t, out, "from nocolors/箭头-左.svg")
	assert.Contains(t, out, "export class QxIconJianTouZuo extends LitElement")
	assert.Contains(t, out, "customElements.define('qx-icon-jian-tou-zuo', QxIconJianTouZuo)")
	assert.Contains(t, out, "'qx-icon-jian-tou-zuo': QxIconJianTouZuo;")
	assert.Contains(t, out, "color: { type: String },")
	assert.Contains(t, out, "color: var(--icon-color, currentColor);")
	assert.Contains(t, out, "size: { type: Number },")
	assert.Contains(t, out, "attribute: 'auto-crop',")
	assert.Contains(t, out, "this.autoCrop = true;")
	assert.Contains(t, out, `const VIEW_BOX: string | null = "0 0 24 24";`)
	assert.Contains(t, out, "const ASPECT_RATIO = 1;")
	assert.Contains(t, out, "height: var(--icon-size, 1em);")
	assert.Contains(t, out, "width: var(--icon-width, var(--icon-size, 1em));")
	assert.NotRegexp(t, colorValue, out)
}

func TestSynthesize_ColorPreserving(t *testing.T) {
	id := mustIdentity(t, "flag.svg")
	src, err := Synthesize(Input{
		Identity:   id,
		Type:       model.ColorPreserving,
		Markup:     `<svg viewBox="0 0 24 32"><rect fill="#ff0000" x="0" y="0"></rect></svg>`,
		Dimensions: &model.Dimensions{Width: 24, Height: 32},
		Source:     "colors/flag.svg",
	})
	require.NoError(t, err)
	out := string(src)

	assert.Contains(t, out, `fill="#ff0000"`)
	assert.Contains(t, out, "const ASPECT_RATIO = 0.75;")
	assert.Contains(t, out, `const VIEW_BOX: string | null = "0 0 24 32";`)
	assert.NotContains(t, out, "color: { type: String }")
	assert.NotContains(t, out, "--icon-color")
	assert.Contains(t, out, "export class QxIconFlag extends LitElement")
	assert.Contains(t, out, "customElements.define('qx-icon-flag', QxIconFlag)")
}

func TestSynthesize_EscapesMarkup(t *testing.T) {
	id := mustIdentity(t, "text.svg")
	src, err := Synthesize(Input{
		Identity: id,
		Type:     model.ColorPreserving,
		Markup:   "<svg><text>`${alert(1)}`</text></svg>",
		Source:   "colors/text.svg",
	})
	require.NoError(t, err)
	out := string(src)

	assert.Contains(t, out, "const MARKUP = `<svg><text>\\`\\${alert(1)}\\`</text></svg>`;")
	assert.Contains(t, out, "const VIEW_BOX: string | null = null;")
	assert.Contains(t, out, "const ASPECT_RATIO = 1;")
}

func TestSynthesize_Deterministic(t *testing.T) {
	in := Input{
		Identity:   mustIdentity(t, "arrow-left.svg"),
		Type:       model.Colorable,
		Markup:     `<svg viewBox="0 0 16 8"><path d="M0 0h16"></path></svg>`,
		Dimensions: &model.Dimensions{Width: 16, Height: 8},
		Source:     "nocolors/arrow-left.svg",
	}

	first, err := Synthesize(in)
	require.NoError(t, err)
	second, err := Synthesize(in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Contains(t, string(first), "const ASPECT_RATIO = 2;")
}

func TestSynthesize_InvalidInput(t *testing.T) {
	_, err := Synthesize(Input{Identity: mustIdentity(t, "x.svg"), Type: model.IconType("mono")})
	assert.Error(t, err)

	_, err = Synthesize(Input{Type: model.Colorable, Source: "nocolors/x.svg"})
	assert.Error(t, err)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "jian-tou-zuo.ts", FileName(mustIdentity(t, "箭头-左.svg")))
}

func TestJSString(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "0 0 24 24", `"0 0 24 24"`},
		{"quotes and backslash", `a"b\c`, `"a\"b\\c"`},
		{"line separators", "a\u2028b\u2029c", `"a\u2028b\u2029c"`},
		{"bell", "a\ab", `"a\u0007b"`},
		{"astral rune", "\U0001F600", "\"\U0001F600\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := jsString(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrintable(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"unchanged", "nocolors/home.svg", "nocolors/home.svg"},
		{"newline", "nocolors/a\nb.svg", "nocolors/ab.svg"},
		{"line separator", "nocolors/a\u2028b.svg", "nocolors/ab.svg"},
		{"paragraph separator", "nocolors/a\u2029b.svg", "nocolors/ab.svg"},
		{"next line", "nocolors/a\u0085b.svg", "nocolors/ab.svg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, printable(tt.in))
		})
	}
}

func TestSynthesize_SourceWithLineSeparator(t *testing.T) {
	src, err := Synthesize(Input{
		Identity: mustIdentity(t, "home.svg"),
		Type:     model.Colorable,
		Markup:   `<svg viewBox="0 0 24 24"></svg>`,
		Source:   "nocolors/home\u2028alert(1).svg",
	})
	require.NoError(t, err)
	out := string(src)

	assert.NotContains(t, out, "\u2028")
	assert.Contains(t, out, "nocolors/homealert(1).svg")
	assert.Contains(t, out, `const VIEW_BOX: string | null = "0 0 24 24";`)
}
