// Package dom is a small in-memory host UI tree: element, text and comment
// nodes with attributes, live form properties, class tokens, template content
// and DOM-style event dispatch. Markup goes in and out through
// golang.org/x/net/html.
package dom

type NodeType uint8

const (
	ElementNode NodeType = iota + 1
	TextNode
	CommentNode
	DocumentNode
	FragmentNode
	DoctypeNode
)

func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	case DocumentNode:
		return "document"
	case FragmentNode:
		return "fragment"
	case DoctypeNode:
		return "doctype"
	default:
		return "unknown"
	}
}

type Attr struct {
	Name  string
	Value string
}

type Node struct {
	Type NodeType
	// Tag is the lower case element name.
	Tag string
	// Data holds text, comment and doctype contents.
	Data string

	attrs []Attr
	props map[string]any

	parent, firstChild, lastChild, prev, next *Node

	// content is the inert fragment of a <template>.
	content *Node

	listeners map[string][]*listener
}

func NewDocument() *Node {
	return &Node{Type: DocumentNode}
}

func NewFragment() *Node {
	return &Node{Type: FragmentNode}
}

func NewElement(tag string) *Node {
	n := &Node{Type: ElementNode, Tag: tag}
	if tag == "template" {
		n.content = NewFragment()
	}
	return n
}

func NewText(data string) *Node {
	return &Node{Type: TextNode, Data: data}
}

func NewComment(data string) *Node {
	return &Node{Type: CommentNode, Data: data}
}

func (n *Node) IsElement() bool {
	return n != nil && n.Type == ElementNode
}

// Content returns the template content fragment, nil for other nodes.
func (n *Node) Content() *Node {
	return n.content
}

func (n *Node) Parent() *Node      { return n.parent }
func (n *Node) FirstChild() *Node  { return n.firstChild }
func (n *Node) LastChild() *Node   { return n.lastChild }
func (n *Node) NextSibling() *Node { return n.next }
func (n *Node) PrevSibling() *Node { return n.prev }

func (n *Node) FirstElementChild() *Node {
	for c := n.firstChild; c != nil; c = c.next {
		if c.Type == ElementNode {
			return c
		}
	}
	return nil
}

func (n *Node) NextElementSibling() *Node {
	for c := n.next; c != nil; c = c.next {
		if c.Type == ElementNode {
			return c
		}
	}
	return nil
}

// ChildNodes returns a snapshot of the children.
func (n *Node) ChildNodes() []*Node {
	var nodes []*Node
	for c := n.firstChild; c != nil; c = c.next {
		nodes = append(nodes, c)
	}
	return nodes
}

// Children returns a snapshot of the element children.
func (n *Node) Children() []*Node {
	var nodes []*Node
	for c := n.FirstElementChild(); c != nil; c = c.NextElementSibling() {
		nodes = append(nodes, c)
	}
	return nodes
}

// Contains reports whether other is n or one of its descendants.
func (n *Node) Contains(other *Node) bool {
	for ; other != nil; other = other.parent {
		if other == n {
			return true
		}
	}
	return false
}

// Walk visits n and its descendants depth first, in document order. Template
// content is not visited. Returning false from fn skips the node's subtree.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.firstChild; c != nil; {
		next := c.next
		c.Walk(fn)
		c = next
	}
}

// ElementsWithAttr returns every descendant element of n (n included) that
// carries the attribute, in document order.
func (n *Node) ElementsWithAttr(name string) []*Node {
	var found []*Node
	n.Walk(func(c *Node) bool {
		if c.Type == ElementNode && c.HasAttr(name) {
			found = append(found, c)
		}
		return true
	})
	return found
}

// Query returns the first descendant element (n included) matching fn.
func (n *Node) Query(fn func(*Node) bool) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if found != nil {
			return false
		}
		if c.Type == ElementNode && fn(c) {
			found = c
			return false
		}
		return true
	})
	return found
}

// ByAttr returns the first element whose attribute equals value.
func (n *Node) ByAttr(name, value string) *Node {
	return n.Query(func(c *Node) bool {
		v, ok := c.Attr(name)
		return ok && v == value
	})
}

// ByID is ByAttr for "id".
func (n *Node) ByID(id string) *Node {
	return n.ByAttr("id", id)
}
