// Package identity derives the identifiers of a generated icon component
// from the raw filename of its SVG source.
//
// A filename maps to three identifiers that always agree with each other:
//   - a safe base name: lowercase ASCII, hyphen separated ("jian-tou-zuo")
//   - a component identifier: prefix + PascalCase ("QxIconJianTouZuo")
//   - a custom-element tag name: kebab prefix + base name ("qx-icon-jian-tou-zuo")
//
// Derivation is a pure function of the filename and the configured prefixes.
package identity

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/mozillazg/go-pinyin"
	"github.com/mozillazg/go-unidecode"
)

const (
	// DefaultComponentPrefix is prepended to the PascalCase component name.
	DefaultComponentPrefix = "QxIcon"
	// DefaultTagPrefix is prepended to the kebab-case tag name.
	DefaultTagPrefix = "qx-icon"
	// Extension is the source file extension stripped before derivation.
	Extension = ".svg"
)

// ErrNaming is matched by every NamingError.
var ErrNaming = errors.New("invalid icon name")

// NamingError reports a filename that sanitizes to an empty base name.
type NamingError struct {
	Filename string
}

func (e *NamingError) Error() string {
	return fmt.Sprintf("%s: %q sanitizes to an empty name", ErrNaming, e.Filename)
}

// Is reports whether target is ErrNaming.
func (e *NamingError) Is(target error) bool {
	return target == ErrNaming
}

// Identity is the derived identifier triple of one icon.
type Identity struct {
	// SafeBaseName is the lowercase ASCII, hyphen separated base name.
	SafeBaseName string
	// ComponentID is the exported class identifier.
	ComponentID string
	// TagName is the public custom-element tag.
	TagName string
}

// Deriver derives identities with a fixed pair of prefixes.
type Deriver struct {
	ComponentPrefix string
	TagPrefix       string
}

// NewDeriver returns a Deriver. Empty prefixes fall back to the defaults.
func NewDeriver(componentPrefix, tagPrefix string) *Deriver {
	if componentPrefix == "" {
		componentPrefix = DefaultComponentPrefix
	}
	if tagPrefix == "" {
		tagPrefix = DefaultTagPrefix
	}
	return &Deriver{
		ComponentPrefix: componentPrefix,
		TagPrefix:       strings.Trim(tagPrefix, "-"),
	}
}

// Derive returns the identity for a raw filename such as "箭头-左.svg".
func (d *Deriver) Derive(rawFilename string) (Identity, error) {
	name, err := SafeBaseName(rawFilename)
	if err != nil {
		return Identity{}, err
	}
	return Identity{
		SafeBaseName: name,
		ComponentID:  d.ComponentPrefix + PascalCase(name),
		TagName:      d.TagPrefix + "-" + name,
	}, nil
}

var (
	nonAlnumRun = regexp.MustCompile(`[^A-Za-z0-9]+`)
	hyphenRun   = regexp.MustCompile(`-{2,}`)
)

// pinyinArgs uses the toneless style; the zero Fallback drops characters
// the dictionary does not know, which are handled by unidecode instead.
var pinyinArgs = pinyin.NewArgs()

// SafeBaseName strips the .svg extension and sanitizes the remainder into
// [a-z0-9]([a-z0-9-]*[a-z0-9])?.
func SafeBaseName(rawFilename string) (string, error) {
	base := filepath.Base(rawFilename)
	if strings.EqualFold(filepath.Ext(base), Extension) {
		base = base[:len(base)-len(Extension)]
	}

	name := nonAlnumRun.ReplaceAllString(transliterate(base), "-")
	name = hyphenRun.ReplaceAllString(name, "-")
	name = strings.ToLower(strings.Trim(name, "-"))
	if name == "" {
		return "", &NamingError{Filename: rawFilename}
	}
	return name, nil
}

// transliterate romanizes every non-ASCII rune. Han ideographs become one
// pinyin syllable each, bounded by hyphens; other scripts are folded inline.
func transliterate(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r <= unicode.MaxASCII:
			b.WriteRune(r)
		case unicode.Is(unicode.Han, r):
			syllables := pinyin.LazyPinyin(string(r), pinyinArgs)
			b.WriteByte('-')
			if len(syllables) > 0 {
				b.WriteString(syllables[0])
			} else {
				b.WriteString(unidecode.Unidecode(string(r)))
			}
			b.WriteByte('-')
		default:
			b.WriteString(unidecode.Unidecode(string(r)))
		}
	}
	return b.String()
}

// PascalCase joins the hyphen separated segments of name, upper-casing the
// first rune of each segment and lower-casing the rest.
func PascalCase(name string) string {
	var b strings.Builder
	for _, segment := range strings.Split(name, "-") {
		if segment == "" {
			continue
		}
		runes := []rune(strings.ToLower(segment))
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}
	return b.String()
}
