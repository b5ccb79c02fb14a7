// Package model holds the shared vocabulary of the icon pipeline: icon types
// and the intrinsic dimensions extracted from a source SVG.
package model

import (
	"fmt"
	"strconv"
)

// IconType selects how an icon's colors are treated at generation time.
type IconType string

const (
	// Colorable icons have their fill/stroke colors stripped so CSS
	// (currentColor, --icon-color) controls the rendered color.
	Colorable IconType = "colorable"

	// ColorPreserving icons keep their authored colors exactly.
	ColorPreserving IconType = "color-preserving"
)

// DefaultDirs maps each type to its conventional source directory name.
var DefaultDirs = map[IconType]string{
	Colorable:       "nocolors",
	ColorPreserving: "colors",
}

// AllTypes lists the icon types in processing order.
var AllTypes = []IconType{Colorable, ColorPreserving}

// IsValid reports whether t is a known icon type.
func (t IconType) IsValid() bool {
	switch t {
	case Colorable, ColorPreserving:
		return true
	}
	return false
}

// String returns the type name.
func (t IconType) String() string {
	return string(t)
}

// ParseIconType parses a type name, accepting the directory aliases too.
func ParseIconType(s string) (IconType, error) {
	switch s {
	case string(Colorable), DefaultDirs[Colorable]:
		return Colorable, nil
	case string(ColorPreserving), DefaultDirs[ColorPreserving]:
		return ColorPreserving, nil
	}
	return "", fmt.Errorf("unknown icon type: %q", s)
}

// Dimensions is the intrinsic size of an icon in user units.
type Dimensions struct {
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

// AspectRatio returns width/height, or 1 when the height is not positive.
func (d *Dimensions) AspectRatio() float64 {
	if d == nil || d.Height <= 0 || d.Width <= 0 {
		return 1
	}
	return d.Width / d.Height
}

// FormatFloat renders a number in the shortest form that round-trips,
// which keeps generated source stable across builds.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
