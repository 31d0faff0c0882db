// Package htmlhost hosts the viewer headlessly. Stages are x/net/html trees
// that render to a static HTML snapshot; scrolling and page turns are driven
// by method calls instead of user input.
package htmlhost

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func element(a atom.Atom, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: a.String(), DataAtom: a}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func removeChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}

func detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// style builds an inline style from key/value pairs.
func style(kv ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(kv); i += 2 {
		if b.Len() > 0 {
			b.WriteByte(';')
		}
		b.WriteString(kv[i])
		b.WriteByte(':')
		b.WriteString(kv[i+1])
	}
	return b.String()
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "px"
}

// WritePage renders a complete HTML document holding the given stages.
func WritePage(w io.Writer, title string, stages ...*Stage) error {
	body := element(atom.Body)
	for _, s := range stages {
		detach(s.root)
		body.AppendChild(s.root)
	}
	head := element(atom.Head)
	meta := element(atom.Meta, "charset", "utf-8")
	t := element(atom.Title)
	t.AppendChild(text(title))
	css := element(atom.Style)
	css.AppendChild(text(stylesheet))
	head.AppendChild(meta)
	head.AppendChild(t)
	head.AppendChild(css)

	root := element(atom.Html, "lang", "en")
	root.AppendChild(head)
	root.AppendChild(body)

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	doc.AppendChild(root)
	if err := html.Render(w, doc); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	// The stages stay usable on their own.
	for _, s := range stages {
		detach(s.root)
	}
	return nil
}

const stylesheet = `
.page-slot{position:relative;margin:0 auto 16px;background:#f4f1ea}
.page-placeholder{display:flex;align-items:center;justify-content:center;color:#888;height:100%}
.page-clip{position:relative;overflow:hidden}
.page-canvas{position:absolute}
.textLayer{position:absolute;color:transparent;line-height:1}
.textLayer span{position:absolute;white-space:pre;transform-origin:0 0}
`
