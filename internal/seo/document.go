package seo

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a read-only view over a parsed HTML tree. It is safe for
// concurrent use as long as nobody mutates the underlying nodes.
type Document struct {
	root *html.Node
}

// NewDocument wraps an already parsed tree.
func NewDocument(root *html.Node) *Document {
	return &Document{root: root}
}

// ParseDocument parses r as HTML. The html5 parsing algorithm recovers from
// malformed markup, so errors only come from the reader.
func ParseDocument(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return NewDocument(root), nil
}

// FindAll returns every element matching sel in document order.
func (d *Document) FindAll(sel Selector) []*html.Node {
	var out []*html.Node
	d.walk(func(n *html.Node) bool {
		if matches(n, sel) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// First returns the first element matching sel.
func (d *Document) First(sel Selector) (*html.Node, bool) {
	var found *html.Node
	d.walk(func(n *html.Node) bool {
		if matches(n, sel) {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}

// Count returns the number of elements matching sel.
func (d *Document) Count(sel Selector) int {
	var c int
	d.walk(func(n *html.Node) bool {
		if matches(n, sel) {
			c++
		}
		return true
	})
	return c
}

// Text returns the visible text of the document. Script, style, noscript and
// template contents are skipped. Block elements and line breaks act as word
// separators; inline markup such as <b> or <span> does not split words.
func (d *Document) Text() string {
	if d.root == nil {
		return ""
	}
	var b strings.Builder
	collectText(d.root, &b)
	return b.String()
}

// Attr returns the value of the named attribute on n.
func Attr(n *html.Node, name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}

// NodeText returns the concatenated text content of n, including hidden text.
func NodeText(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	var rec func(*html.Node)
	rec = func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		for ch := c.FirstChild; ch != nil; ch = ch.NextSibling {
			rec(ch)
		}
	}
	rec(n)
	return b.String()
}

// walk visits element nodes depth-first until visit returns false.
func (d *Document) walk(visit func(*html.Node) bool) {
	if d.root == nil {
		return
	}
	var rec func(*html.Node) bool
	rec = func(n *html.Node) bool {
		if n.Type == html.ElementNode && !visit(n) {
			return false
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !rec(c) {
				return false
			}
		}
		return true
	}
	rec(d.root)
}

func matches(n *html.Node, sel Selector) bool {
	if sel.Tag != "" && !strings.EqualFold(n.Data, sel.Tag) {
		return false
	}
	for _, m := range sel.Attrs {
		v, ok := Attr(n, m.Name)
		if !ok || !m.match(v) {
			return false
		}
	}
	return true
}

// blockElements break the flow of text.
var blockElements = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Body: true, atom.Br: true, atom.Caption: true, atom.Dd: true,
	atom.Details: true, atom.Div: true, atom.Dl: true, atom.Dt: true,
	atom.Fieldset: true, atom.Figcaption: true, atom.Figure: true, atom.Footer: true,
	atom.Form: true, atom.H1: true, atom.H2: true, atom.H3: true,
	atom.H4: true, atom.H5: true, atom.H6: true, atom.Head: true,
	atom.Header: true, atom.Hr: true, atom.Li: true, atom.Main: true,
	atom.Nav: true, atom.Ol: true, atom.Option: true, atom.P: true,
	atom.Pre: true, atom.Section: true, atom.Summary: true, atom.Table: true,
	atom.Td: true, atom.Th: true, atom.Title: true, atom.Tr: true,
	atom.Ul: true,
}

func collectText(n *html.Node, b *strings.Builder) {
	block := false
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Noscript, atom.Template:
			return
		}
		block = blockElements[n.DataAtom]
	}
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
	}
	if block {
		b.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
	if block {
		b.WriteByte(' ')
	}
}
