package dom

// Ops is the default node operation table.
type Ops struct{}

func (Ops) Text(n *Node, v any) {
	n.SetTextContent(Stringify(v))
}

// HTML replaces the children with parsed markup.
func (Ops) HTML(n *Node, v any) error {
	return n.SetInnerHTML(Stringify(v))
}

// Value writes a form control: checkboxes take truthiness, named radios
// compare against their own value, everything else gets the string form
// unless it already holds it.
func (Ops) Value(n *Node, v any) {
	switch n.InputType() {
	case "checkbox":
		n.SetChecked(Truthy(v))
		return
	case "radio":
		if n.HasAttr("name") {
			n.SetChecked(n.Value() == Stringify(v))
		} else {
			n.SetChecked(Truthy(v))
		}
		return
	}
	s := Stringify(v)
	if n.Value() != s {
		n.SetValue(s)
	}
}

// Prop sets a boolean property directly, otherwise adds or removes the
// attribute. nil and false remove it.
func (Ops) Prop(n *Node, name string, v any) {
	if IsBooleanProp(name) {
		n.SetBoolProp(name, Truthy(v))
		return
	}
	if b, ok := v.(bool); v == nil || (ok && !b) {
		n.RemoveAttr(name)
		return
	}
	n.SetAttr(name, Stringify(v))
}

func (Ops) Class(n *Node, name string, v any) {
	n.ToggleClass(name, Truthy(v))
}
