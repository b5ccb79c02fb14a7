package svg

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/c360studio/iconforge/model"
)

// Plugin rewrites or validates the parsed tree of an optimized icon.
type Plugin struct {
	Name  string
	Apply func(root *html.Node) error
}

var (
	pathDataPattern   = regexp.MustCompile(`^[\sMmZzLlHhVvCcSsQqTtAa0-9eE.,+\-]*$`)
	pointsDataPattern = regexp.MustCompile(`^[\s0-9eE.,+\-]*$`)
)

// ValidatePaths rejects elements whose geometry attributes contain
// characters that are not valid path or point data.
func ValidatePaths() Plugin {
	return Plugin{
		Name: "validate-paths",
		Apply: func(root *html.Node) error {
			return walk(root, func(n *html.Node) error {
				if d, ok := getAttr(n, "d"); ok {
					trimmed := strings.TrimSpace(d)
					if !pathDataPattern.MatchString(trimmed) {
						return fmt.Errorf("malformed path data on <%s>: %q", n.Data, truncate(trimmed))
					}
					if trimmed != "" && trimmed[0] != 'M' && trimmed[0] != 'm' {
						return fmt.Errorf("path data on <%s> must start with a moveto: %q", n.Data, truncate(trimmed))
					}
				}
				if points, ok := getAttr(n, "points"); ok && !pointsDataPattern.MatchString(points) {
					return fmt.Errorf("malformed points on <%s>: %q", n.Data, truncate(points))
				}
				return nil
			})
		},
	}
}

// StripColors makes an icon recolorable: fill colors are removed so they
// inherit the root's currentColor fill, and strokes are rewritten to
// currentColor. Explicit "none" values are kept, since they carry shape.
// Rules inside <style> elements are rewritten to currentColor.
func StripColors() Plugin {
	return Plugin{
		Name: "strip-colors",
		Apply: func(root *html.Node) error {
			rootFill, hasRootFill := getAttr(root, "fill")
			if !hasRootFill || !isNone(rootFill) {
				setAttr(root, "fill", "currentColor")
			}
			for c := root.FirstChild; c != nil; c = c.NextSibling {
				stripColors(c, isNone(rootFill))
			}
			if stroke, ok := getAttr(root, "stroke"); ok && !isNone(stroke) {
				setAttr(root, "stroke", "currentColor")
			}
			rewriteStyle(root, false)
			return recolorStyleSheets(root)
		},
	}
}

// stripColors rewrites n and its descendants. inheritedNone is true when
// an ancestor declares fill="none"; a removed fill would then inherit
// "none" and vanish, so it is rewritten to currentColor instead.
func stripColors(n *html.Node, inheritedNone bool) {
	if n.Type != html.ElementNode {
		return
	}

	if fill, ok := getAttr(n, "fill"); ok {
		switch {
		case isNone(fill):
			inheritedNone = true
		case inheritedNone:
			setAttr(n, "fill", "currentColor")
			inheritedNone = false
		default:
			removeAttr(n, "fill")
		}
	}
	if stroke, ok := getAttr(n, "stroke"); ok && !isNone(stroke) {
		setAttr(n, "stroke", "currentColor")
	}
	rewriteStyle(n, inheritedNone)

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		stripColors(c, inheritedNone)
	}
}

// rewriteStyle applies the fill/stroke policy to an inline style attribute.
func rewriteStyle(n *html.Node, inheritedNone bool) {
	style, ok := getAttr(n, "style")
	if !ok {
		return
	}

	var kept []string
	for _, decl := range strings.Split(style, ";") {
		prop, val, found := strings.Cut(decl, ":")
		if !found {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		val = strings.TrimSpace(val)
		switch prop {
		case "fill":
			if isNone(val) {
				kept = append(kept, "fill:none")
			} else if inheritedNone {
				kept = append(kept, "fill:currentColor")
			}
		case "stroke":
			if isNone(val) {
				kept = append(kept, "stroke:none")
			} else {
				kept = append(kept, "stroke:currentColor")
			}
		default:
			kept = append(kept, prop+":"+val)
		}
	}

	if len(kept) == 0 {
		removeAttr(n, "style")
		return
	}
	setAttr(n, "style", strings.Join(kept, ";"))
}

// RemoveAttributes drops the named attributes from every element.
func RemoveAttributes(keys ...string) Plugin {
	return Plugin{
		Name: "remove-attributes",
		Apply: func(root *html.Node) error {
			return walk(root, func(n *html.Node) error {
				removeAttr(n, keys...)
				return nil
			})
		},
	}
}

// StripRootSize removes width/height from the root so the icon scales via
// CSS. When the root has no viewBox, one is synthesized from dims so the
// aspect ratio survives.
func StripRootSize(markup []byte, dims *model.Dimensions) ([]byte, error) {
	root, err := parseRoot(markup)
	if err != nil {
		return nil, err
	}
	if _, ok := getAttr(root, "viewBox"); !ok && dims != nil {
		setAttr(root, "viewBox", fmt.Sprintf("0 0 %s %s", model.FormatFloat(dims.Width), model.FormatFloat(dims.Height)))
	}
	removeAttr(root, "width", "height")
	return render(root)
}

func truncate(s string) string {
	const max = 40
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
