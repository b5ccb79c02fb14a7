package svg

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"golang.org/x/net/html"
)

// recolorStyleSheets rewrites the CSS of every <style> element under root
// so class and element rules cannot pin a fill or stroke color.
func recolorStyleSheets(root *html.Node) error {
	return walk(root, func(n *html.Node) error {
		if n.Data != "style" {
			return nil
		}

		var text strings.Builder
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				text.WriteString(c.Data)
			}
		}
		rewritten, err := recolorStyleSheet(text.String())
		if err != nil {
			return err
		}

		for c := n.FirstChild; c != nil; {
			next := c.NextSibling
			n.RemoveChild(c)
			c = next
		}
		if rewritten != "" {
			n.AppendChild(&html.Node{Type: html.TextNode, Data: rewritten})
		}
		return nil
	})
}

// recolorStyleSheet rewrites fill and stroke declarations that are not
// "none" to currentColor. Everything else is re-serialized unchanged.
func recolorStyleSheet(sheet string) (string, error) {
	var out bytes.Buffer
	p := css.NewParser(parse.NewInputString(sheet), false)
	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			if errors.Is(p.Err(), io.EOF) {
				return out.String(), nil
			}
			if !p.HasParseError() {
				return "", fmt.Errorf("read <style>: %w", p.Err())
			}
			writeValues(&out, p.Values())

		case css.DeclarationGrammar:
			prop := string(data)
			var val bytes.Buffer
			writeValues(&val, p.Values())
			if (prop == "fill" || prop == "stroke") && !isNone(val.String()) {
				out.WriteString(prop + ":currentColor;")
				continue
			}
			out.WriteString(prop + ":" + val.String() + ";")

		case css.CustomPropertyGrammar:
			out.Write(data)
			out.WriteByte(':')
			writeValues(&out, p.Values())
			out.WriteByte(';')

		case css.AtRuleGrammar, css.BeginAtRuleGrammar, css.QualifiedRuleGrammar, css.BeginRulesetGrammar:
			out.Write(data)
			writeValues(&out, p.Values())
			switch gt {
			case css.AtRuleGrammar:
				out.WriteByte(';')
			case css.QualifiedRuleGrammar:
				out.WriteByte(',')
			default:
				out.WriteByte('{')
			}

		default:
			out.Write(data)
		}
	}
}

func writeValues(buf *bytes.Buffer, values []css.Token) {
	for _, v := range values {
		buf.Write(v.Data)
	}
}
