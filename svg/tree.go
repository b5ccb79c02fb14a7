package svg

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// parseRoot parses markup and returns its outermost <svg> element. The HTML
// parser treats <svg> as foreign content, so attribute names such as viewBox
// keep their SVG casing.
func parseRoot(markup []byte) (*html.Node, error) {
	doc, err := html.Parse(bytes.NewReader(markup))
	if err != nil {
		return nil, err
	}
	root := findSVG(doc)
	if root == nil {
		return nil, errNoRoot
	}
	return root, nil
}

func findSVG(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "svg" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findSVG(c); found != nil {
			return found
		}
	}
	return nil
}

func render(root *html.Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, root); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// walk visits n and its element descendants in document order.
func walk(n *html.Node, fn func(*html.Node) error) error {
	if n.Type == html.ElementNode {
		if err := fn(n); err != nil {
			return err
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := walk(c, fn); err != nil {
			return err
		}
	}
	return nil
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, keys ...string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && contains(keys, a.Key) {
			continue
		}
		kept = append(kept, a)
	}
	n.Attr = kept
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func isNone(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), "none")
}
