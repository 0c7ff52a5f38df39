package dom

import (
	"bytes"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ToHTML converts a tree into x/net/html nodes. Listeners carrying a script
// become inline on* attributes; Go-only listeners are dropped.
func ToHTML(n Node) *html.Node {
	switch v := n.(type) {
	case *Text:
		return &html.Node{Type: html.TextNode, Data: v.Data}
	case *Element:
		out := &html.Node{
			Type:     html.ElementNode,
			Data:     v.Tag,
			DataAtom: atom.Lookup([]byte(v.Tag)),
		}
		for _, name := range v.AttrNames() {
			out.Attr = append(out.Attr, html.Attribute{Key: name, Val: v.attrs[name]})
		}
		for _, name := range v.ListenerNames() {
			if script := v.listeners[name].Script; script != "" {
				out.Attr = append(out.Attr, html.Attribute{Key: name, Val: script})
			}
		}
		for _, c := range v.children {
			out.AppendChild(ToHTML(c))
		}
		return out
	default:
		return nil
	}
}

// Render writes n as HTML.
func Render(w io.Writer, n Node) error {
	return html.Render(w, ToHTML(n))
}

// RenderString renders n to a string, returning "" on error.
func RenderString(n Node) string {
	var buf bytes.Buffer
	if err := Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

// RenderDocument writes the document with an HTML5 doctype.
func RenderDocument(w io.Writer, d *Document) error {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	doc.AppendChild(ToHTML(d.root))
	return html.Render(w, doc)
}
