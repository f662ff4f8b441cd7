// Package dom exposes the small slice of an HTML tree that source rules need:
// selecting elements by tag and attributes, reading trimmed text and anchors.
// A selector that matches nothing yields a nil *Node; every Node method is
// safe to call on nil.
package dom

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

type Document struct {
	doc *goquery.Document
}

func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return &Document{doc: goquery.NewDocumentFromNode(root)}, nil
}

func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Find returns the first element matching sel, or nil.
func (d *Document) Find(sel Selector) *Node {
	if d == nil || d.doc == nil {
		return nil
	}
	return first(d.doc.Find(sel.CSS()))
}

// FindAll returns every element matching sel in document order.
func (d *Document) FindAll(sel Selector) []*Node {
	if d == nil || d.doc == nil {
		return nil
	}
	return all(d.doc.Find(sel.CSS()))
}

// Title returns the trimmed <title> text.
func (d *Document) Title() string {
	return d.Find(Tag("title")).Text()
}

type Node struct {
	sel *goquery.Selection
}

func (n *Node) Find(sel Selector) *Node {
	if n == nil {
		return nil
	}
	return first(n.sel.Find(sel.CSS()))
}

func (n *Node) FindAll(sel Selector) []*Node {
	if n == nil {
		return nil
	}
	return all(n.sel.Find(sel.CSS()))
}

// Text is the node's text content, NFKC-normalised and trimmed.
func (n *Node) Text() string {
	return strings.TrimSpace(n.RawText())
}

func (n *Node) RawText() string {
	if n == nil {
		return ""
	}
	return norm.NFKC.String(n.sel.Text())
}

// Lines splits the text content on newlines and keeps the non-empty lines, trimmed.
func (n *Node) Lines() []string {
	var out []string
	for _, line := range strings.Split(n.RawText(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

func (n *Node) Attr(name string) (string, bool) {
	if n == nil {
		return "", false
	}
	return n.sel.Attr(name)
}

func (n *Node) Href() string {
	v, _ := n.Attr("href")
	return strings.TrimSpace(v)
}

// OptionalText returns nil for an absent node and the trimmed text otherwise.
func OptionalText(n *Node) *string {
	if n == nil {
		return nil
	}
	s := n.Text()
	return &s
}

// FirstPresent returns the first non-nil value in priority order.
func FirstPresent(candidates ...*string) *string {
	for _, c := range candidates {
		if c != nil {
			return c
		}
	}
	return nil
}

func first(s *goquery.Selection) *Node {
	if s.Length() == 0 {
		return nil
	}
	return &Node{sel: s.First()}
}

func all(s *goquery.Selection) []*Node {
	out := make([]*Node, 0, s.Length())
	s.Each(func(_ int, item *goquery.Selection) {
		out = append(out, &Node{sel: item})
	})
	return out
}
