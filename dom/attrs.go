package dom

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// booleanProps are the properties that hold a bool rather than reflecting a
// string attribute.
var booleanProps = mapset.NewSet(
	"checked", "disabled", "hidden", "selected", "readonly", "required",
	"multiple", "autofocus", "open", "novalidate", "inert",
)

// IsBooleanProp reports whether the named property is boolean-typed.
func IsBooleanProp(name string) bool {
	return booleanProps.Contains(strings.ToLower(name))
}

func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// GetAttr returns the attribute value or "".
func (n *Node) GetAttr(name string) string {
	v, _ := n.Attr(name)
	return v
}

func (n *Node) HasAttr(name string) bool {
	_, ok := n.Attr(name)
	return ok
}

func (n *Node) SetAttr(name, value string) {
	for i := range n.attrs {
		if n.attrs[i].Name == name {
			n.attrs[i].Value = value
			return
		}
	}
	n.attrs = append(n.attrs, Attr{Name: name, Value: value})
}

func (n *Node) RemoveAttr(name string) {
	for i := range n.attrs {
		if n.attrs[i].Name == name {
			n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
			return
		}
	}
}

// Attrs returns a copy of the attributes in source order.
func (n *Node) Attrs() []Attr {
	return append([]Attr(nil), n.attrs...)
}

// InputType is the lower case "type" attribute of a form control.
func (n *Node) InputType() string {
	return strings.ToLower(n.GetAttr("type"))
}

// Value is the live value property. Until it is written it mirrors the
// "value" attribute, or the text of a <textarea>.
func (n *Node) Value() string {
	if v, ok := n.props["value"].(string); ok {
		return v
	}
	if n.Tag == "textarea" {
		return n.TextContent()
	}
	if v, ok := n.Attr("value"); ok {
		return v
	}
	if t := n.InputType(); t == "checkbox" || t == "radio" {
		return "on"
	}
	return ""
}

func (n *Node) SetValue(v string) {
	n.setProp("value", v)
}

// Checked is the live checked property, defaulting to the attribute.
func (n *Node) Checked() bool {
	if v, ok := n.props["checked"].(bool); ok {
		return v
	}
	return n.HasAttr("checked")
}

func (n *Node) SetChecked(v bool) {
	n.setProp("checked", v)
}

func (n *Node) setProp(name string, v any) {
	if n.props == nil {
		n.props = map[string]any{}
	}
	n.props[name] = v
}

// BoolProp reads a boolean property. "checked" is live, the others reflect
// their attribute.
func (n *Node) BoolProp(name string) bool {
	name = strings.ToLower(name)
	if name == "checked" {
		return n.Checked()
	}
	return n.HasAttr(name)
}

// SetBoolProp writes a boolean property. "checked" is live, the others
// reflect to their attribute.
func (n *Node) SetBoolProp(name string, v bool) {
	name = strings.ToLower(name)
	if name == "checked" {
		n.SetChecked(v)
		return
	}
	if v {
		n.SetAttr(name, "")
	} else {
		n.RemoveAttr(name)
	}
}

// Classes returns the class tokens in order.
func (n *Node) Classes() []string {
	return strings.Fields(n.GetAttr("class"))
}

func (n *Node) HasClass(name string) bool {
	for _, c := range n.Classes() {
		if c == name {
			return true
		}
	}
	return false
}

// ToggleClass adds the token when on is true and removes it otherwise.
func (n *Node) ToggleClass(name string, on bool) {
	classes := n.Classes()
	out := classes[:0]
	found := false
	for _, c := range classes {
		if c == name {
			found = true
			if !on {
				continue
			}
		}
		out = append(out, c)
	}
	if on && !found {
		out = append(out, name)
	}
	if len(out) == 0 {
		if n.HasAttr("class") {
			n.SetAttr("class", "")
		}
		return
	}
	n.SetAttr("class", strings.Join(out, " "))
}
