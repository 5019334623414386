package components

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/a-h/templ"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Attrs are element attributes. Output order is sorted by name so renders are stable.
type Attrs map[string]string

// El builds an element node. Nil children are skipped so optional parts can be passed inline.
func El(tag string, attrs Attrs, children ...*html.Node) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}

	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		n.Attr = append(n.Attr, html.Attribute{Key: k, Val: attrs[k]})
	}

	return Append(n, children...)
}

// Append adds children to parent, skipping nils
func Append(parent *html.Node, children ...*html.Node) *html.Node {
	for _, c := range children {
		if c != nil {
			parent.AppendChild(c)
		}
	}
	return parent
}

// Text is an escaped text node
func Text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// Textf is Text with fmt formatting
func Textf(format string, args ...any) *html.Node {
	return Text(fmt.Sprintf(format, args...))
}

// Hidden toggles visibility through the style attribute
func Hidden(attrs Attrs, hidden bool) Attrs {
	if hidden {
		attrs["style"] = "display: none"
	} else {
		attrs["style"] = "display: block"
	}
	return attrs
}

// Document wraps the root <html> element with a doctype
func Document(root *html.Node) *html.Node {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	doc.AppendChild(root)
	return doc
}

// Render writes the nodes in order
func Render(w io.Writer, nodes ...*html.Node) error {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if err := html.Render(w, n); err != nil {
			return err
		}
	}
	return nil
}

// RenderString renders nodes into a string, mostly for tests and small fragments
func RenderString(nodes ...*html.Node) string {
	var buf bytes.Buffer
	if err := Render(&buf, nodes...); err != nil {
		return ""
	}
	return buf.String()
}

// Builder produces nodes for a request context (locale, nonce)
type Builder func(ctx context.Context) []*html.Node

// Component adapts a builder to templ so handlers render every view the same way
func Component(build Builder) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return Render(w, build(ctx)...)
	})
}
