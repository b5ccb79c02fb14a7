package svg

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/c360studio/iconforge/model"
)

// ExtractDimensions reads the intrinsic size of raw markup: fields three
// and four of viewBox, falling back to the width/height attributes. It
// returns nil when neither is usable.
func ExtractDimensions(raw []byte) *model.Dimensions {
	root, err := parseRoot(raw)
	if err != nil {
		return nil
	}

	if viewBox, ok := getAttr(root, "viewBox"); ok {
		fields := strings.FieldsFunc(viewBox, func(r rune) bool {
			return r == ' ' || r == ',' || r == '\t' || r == '\n' || r == '\r'
		})
		if len(fields) == 4 {
			w, errW := strconv.ParseFloat(fields[2], 64)
			h, errH := strconv.ParseFloat(fields[3], 64)
			if errW == nil && errH == nil && w > 0 && h > 0 {
				return &model.Dimensions{Width: w, Height: h}
			}
		}
	}

	w, okW := parseLength(root, "width")
	h, okH := parseLength(root, "height")
	if okW && okH {
		return &model.Dimensions{Width: w, Height: h}
	}
	return nil
}

// parseLength parses a unitless or px length attribute.
func parseLength(n *html.Node, key string) (float64, bool) {
	raw, ok := getAttr(n, key)
	if !ok {
		return 0, false
	}
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "px")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// RootViewBox returns the viewBox of the markup's root element, or "".
func RootViewBox(markup string) string {
	root, err := parseRoot([]byte(markup))
	if err != nil {
		return ""
	}
	viewBox, _ := getAttr(root, "viewBox")
	return strings.TrimSpace(viewBox)
}
