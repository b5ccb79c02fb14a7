package identity

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var safeNamePattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

func TestSafeBaseName(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"arrow-left.svg", "arrow-left"},
		{"Arrow Left.svg", "arrow-left"},
		{"arrow__left--.svg", "arrow-left"},
		{"--arrow.SVG", "arrow"},
		{"icon@2x.svg", "icon-2x"},
		{"箭头-左.svg", "jian-tou-zuo"},
		{"箭头左.svg", "jian-tou-zuo"},
		{"home箭头.svg", "home-jian-tou"},
		{"café.svg", "cafe"},
		{"nested/dir/check.svg", "check"},
		{"no-extension", "no-extension"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got, err := SafeBaseName(tt.filename)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Regexp(t, safeNamePattern, got)
		})
	}
}

func TestSafeBaseName_Empty(t *testing.T) {
	for _, filename := range []string{".svg", "---.svg", "  .svg", "!!!.svg"} {
		t.Run(filename, func(t *testing.T) {
			_, err := SafeBaseName(filename)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrNaming))

			var namingErr *NamingError
			require.True(t, errors.As(err, &namingErr))
			assert.Equal(t, filename, namingErr.Filename)
		})
	}
}

func TestDerive_Example(t *testing.T) {
	d := NewDeriver("", "")

	id, err := d.Derive("箭头-左.svg")
	require.NoError(t, err)
	assert.Equal(t, Identity{
		SafeBaseName: "jian-tou-zuo",
		ComponentID:  "QxIconJianTouZuo",
		TagName:      "qx-icon-jian-tou-zuo",
	}, id)
}

func TestDerive_CustomPrefixes(t *testing.T) {
	d := NewDeriver("Acme", "acme-glyph-")

	id, err := d.Derive("user-circle.svg")
	require.NoError(t, err)
	assert.Equal(t, "AcmeUserCircle", id.ComponentID)
	assert.Equal(t, "acme-glyph-user-circle", id.TagName)
}

func TestDerive_Deterministic(t *testing.T) {
	d := NewDeriver("", "")
	names := []string{"箭头-左.svg", "Arrow Up.svg", "x.svg", "ÆØÅ-symbol.svg"}

	first := make([]Identity, 0, len(names))
	for _, n := range names {
		id, err := d.Derive(n)
		require.NoError(t, err)
		first = append(first, id)
	}

	// Reverse order must not change any result.
	for i := len(names) - 1; i >= 0; i-- {
		id, err := d.Derive(names[i])
		require.NoError(t, err)
		assert.Equal(t, first[i], id)
	}
}

func TestPascalCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"arrow-left", "ArrowLeft"},
		{"icon-2x", "Icon2x"},
		{"a", "A"},
		{"jian-tou-zuo", "JianTouZuo"},
		{"MIXED-case", "MixedCase"},
		{"double--hyphen", "DoubleHyphen"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := PascalCase(tt.in)
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, "-")
		})
	}
}
