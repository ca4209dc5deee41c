package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse reads a complete HTML document.
func Parse(r io.Reader) (*Node, error) {
	h, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return fromHTML(h), nil
}

// ParseString is Parse over a string.
func ParseString(markup string) (*Node, error) {
	return Parse(strings.NewReader(markup))
}

// ParseFragment parses markup as the content of a <body> and returns the
// nodes under a detached document, so the result behaves like a tree root.
func ParseFragment(markup string) (*Node, error) {
	nodes, err := parseFragment(markup, "body")
	if err != nil {
		return nil, err
	}
	doc := NewDocument()
	for _, n := range nodes {
		doc.AppendChild(n)
	}
	return doc, nil
}

// MustParseFragment is ParseFragment that panics on error.
func MustParseFragment(markup string) *Node {
	doc, err := ParseFragment(markup)
	if err != nil {
		panic(err)
	}
	return doc
}

func parseFragment(markup, contextTag string) ([]*Node, error) {
	context := &html.Node{
		Type:     html.ElementNode,
		Data:     contextTag,
		DataAtom: atom.Lookup([]byte(contextTag)),
	}
	hs, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, fmt.Errorf("parse fragment in <%s>: %w", contextTag, err)
	}
	nodes := make([]*Node, 0, len(hs))
	for _, h := range hs {
		if n := fromHTML(h); n != nil {
			nodes = append(nodes, n)
		}
	}
	return nodes, nil
}

// SetInnerHTML replaces the children of n with parsed markup.
func (n *Node) SetInnerHTML(markup string) error {
	tag := n.Tag
	if tag == "" || tag == "template" {
		tag = "div"
	}
	nodes, err := parseFragment(markup, tag)
	if err != nil {
		return err
	}
	target := n
	if n.content != nil {
		target = n.content
	}
	target.removeChildren()
	for _, c := range nodes {
		target.AppendChild(c)
	}
	return nil
}

// InnerHTML serializes the children of n.
func (n *Node) InnerHTML() string {
	var buf bytes.Buffer
	src := n
	if n.content != nil {
		src = n.content
	}
	for c := src.firstChild; c != nil; c = c.next {
		if err := html.Render(&buf, toHTML(c)); err != nil {
			return buf.String()
		}
	}
	return buf.String()
}

// OuterHTML serializes n itself.
func (n *Node) OuterHTML() string {
	var buf bytes.Buffer
	if err := Render(&buf, n); err != nil {
		return buf.String()
	}
	return buf.String()
}

func (n *Node) String() string {
	return n.OuterHTML()
}

// Render writes n as HTML. Documents and fragments render their children.
func Render(w io.Writer, n *Node) error {
	if n.Type == DocumentNode || n.Type == FragmentNode {
		for c := n.firstChild; c != nil; c = c.next {
			if err := html.Render(w, toHTML(c)); err != nil {
				return fmt.Errorf("render: %w", err)
			}
		}
		return nil
	}
	if err := html.Render(w, toHTML(n)); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

func fromHTML(h *html.Node) *Node {
	var n *Node
	switch h.Type {
	case html.DocumentNode:
		n = NewDocument()
	case html.ElementNode:
		n = NewElement(h.Data)
		for _, a := range h.Attr {
			name := a.Key
			if a.Namespace != "" {
				name = a.Namespace + ":" + a.Key
			}
			n.attrs = append(n.attrs, Attr{Name: name, Value: a.Val})
		}
	case html.TextNode:
		n = NewText(h.Data)
	case html.CommentNode:
		n = NewComment(h.Data)
	case html.DoctypeNode:
		n = &Node{Type: DoctypeNode, Data: h.Data}
	default:
		return nil
	}

	children := n
	if n.content != nil {
		children = n.content
	}
	for c := h.FirstChild; c != nil; c = c.NextSibling {
		if cn := fromHTML(c); cn != nil {
			children.AppendChild(cn)
		}
	}
	return n
}

func toHTML(n *Node) *html.Node {
	h := &html.Node{}
	switch n.Type {
	case DocumentNode, FragmentNode:
		h.Type = html.DocumentNode
	case ElementNode:
		h.Type = html.ElementNode
		h.Data = n.Tag
		h.DataAtom = atom.Lookup([]byte(n.Tag))
		for _, a := range n.attrs {
			h.Attr = append(h.Attr, html.Attribute{Key: a.Name, Val: a.Value})
		}
	case TextNode:
		h.Type = html.TextNode
		h.Data = n.Data
	case CommentNode:
		h.Type = html.CommentNode
		h.Data = n.Data
	case DoctypeNode:
		h.Type = html.DoctypeNode
		h.Data = n.Data
	}

	src := n
	if n.content != nil {
		src = n.content
	}
	for c := src.firstChild; c != nil; c = c.next {
		h.AppendChild(toHTML(c))
	}
	return h
}
