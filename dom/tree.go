package dom

import "strings"

// AppendChild is InsertBefore(child, nil).
func (n *Node) AppendChild(child *Node) {
	n.InsertBefore(child, nil)
}

// InsertBefore moves child so it sits right before ref, or last when ref is
// nil. Inserting a fragment moves its children and leaves it empty.
func (n *Node) InsertBefore(child, ref *Node) {
	if child == nil || child == ref {
		return
	}
	if ref != nil && ref.parent != n {
		panic("dom: reference node is not a child of this node")
	}
	if child.Type == FragmentNode {
		for _, c := range child.ChildNodes() {
			n.InsertBefore(c, ref)
		}
		return
	}
	if child.Contains(n) {
		panic("dom: cannot insert a node into its own subtree")
	}

	child.Remove()
	child.parent = n
	child.next = ref
	if ref == nil {
		child.prev = n.lastChild
		if n.lastChild != nil {
			n.lastChild.next = child
		} else {
			n.firstChild = child
		}
		n.lastChild = child
		return
	}
	child.prev = ref.prev
	if ref.prev != nil {
		ref.prev.next = child
	} else {
		n.firstChild = child
	}
	ref.prev = child
}

// RemoveChild detaches child when it belongs to n.
func (n *Node) RemoveChild(child *Node) {
	if child == nil || child.parent != n {
		return
	}
	child.Remove()
}

// Remove detaches n from its parent. Detached nodes are left untouched.
func (n *Node) Remove() {
	p := n.parent
	if p == nil {
		return
	}
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		p.firstChild = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		p.lastChild = n.prev
	}
	n.parent, n.prev, n.next = nil, nil, nil
}

// ReplaceWith puts other where n is and detaches n.
func (n *Node) ReplaceWith(other *Node) {
	p := n.parent
	if p == nil {
		return
	}
	p.InsertBefore(other, n)
	n.Remove()
}

func (n *Node) removeChildren() {
	for c := n.firstChild; c != nil; {
		next := c.next
		c.parent, c.prev, c.next = nil, nil, nil
		c = next
	}
	n.firstChild, n.lastChild = nil, nil
}

// CloneNode copies the node, its attributes and properties and, when deep,
// its children and template content. Listeners are not copied.
func (n *Node) CloneNode(deep bool) *Node {
	c := &Node{
		Type: n.Type,
		Tag:  n.Tag,
		Data: n.Data,
	}
	if len(n.attrs) > 0 {
		c.attrs = append([]Attr(nil), n.attrs...)
	}
	if len(n.props) > 0 {
		c.props = make(map[string]any, len(n.props))
		for k, v := range n.props {
			c.props[k] = v
		}
	}
	if n.content != nil {
		if deep {
			c.content = n.content.CloneNode(true)
		} else {
			c.content = NewFragment()
		}
	}
	if deep {
		for child := n.firstChild; child != nil; child = child.next {
			c.AppendChild(child.CloneNode(true))
		}
	}
	return c
}

// TextContent concatenates every descendant text node.
func (n *Node) TextContent() string {
	switch n.Type {
	case TextNode, CommentNode:
		return n.Data
	}
	var sb strings.Builder
	n.Walk(func(c *Node) bool {
		if c.Type == TextNode {
			sb.WriteString(c.Data)
		}
		return true
	})
	return sb.String()
}

// SetTextContent replaces every child with a single text node, or with
// nothing when s is empty.
func (n *Node) SetTextContent(s string) {
	switch n.Type {
	case TextNode, CommentNode:
		n.Data = s
		return
	}
	n.removeChildren()
	if s != "" {
		n.AppendChild(NewText(s))
	}
}
