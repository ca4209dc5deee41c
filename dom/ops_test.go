package dom_test

import (
	"math"
	"testing"

	"github.com/delaneyj/signalbind/dom"
	"github.com/stretchr/testify/assert"
)

func TestOpsValue(t *testing.T) {
	ops := dom.Ops{}
	doc := dom.MustParseFragment(`<input id="text"><input id="cb" type="checkbox"><input id="r1" type="radio" name="g" value="a"><input id="r2" type="radio" value="b">`)

	text := doc.ByID("text")
	ops.Value(text, 42)
	assert.Equal(t, "42", text.Value())
	ops.Value(text, nil)
	assert.Equal(t, "", text.Value())

	cb := doc.ByID("cb")
	ops.Value(cb, "yes")
	assert.True(t, cb.Checked())
	ops.Value(cb, 0)
	assert.False(t, cb.Checked())

	r1 := doc.ByID("r1")
	ops.Value(r1, "a")
	assert.True(t, r1.Checked())
	ops.Value(r1, "b")
	assert.False(t, r1.Checked())

	r2 := doc.ByID("r2")
	ops.Value(r2, true)
	assert.True(t, r2.Checked())
}

func TestOpsProp(t *testing.T) {
	ops := dom.Ops{}
	n := dom.NewElement("button")

	ops.Prop(n, "disabled", 1)
	assert.True(t, n.BoolProp("disabled"))
	ops.Prop(n, "disabled", "")
	assert.False(t, n.HasAttr("disabled"))

	ops.Prop(n, "title", "hi")
	assert.Equal(t, "hi", n.GetAttr("title"))
	ops.Prop(n, "title", false)
	assert.False(t, n.HasAttr("title"))
	ops.Prop(n, "aria-busy", true)
	assert.Equal(t, "true", n.GetAttr("aria-busy"))
}

func TestOpsTextHTMLClass(t *testing.T) {
	ops := dom.Ops{}
	n := dom.NewElement("div")

	ops.Text(n, 3.5)
	assert.Equal(t, "3.5", n.TextContent())
	ops.Text(n, nil)
	assert.Equal(t, "", n.TextContent())

	assert.NoError(t, ops.HTML(n, "<b>x</b>"))
	assert.Equal(t, "<b>x</b>", n.InnerHTML())

	ops.Class(n, "active", "yes")
	assert.True(t, n.HasClass("active"))
	ops.Class(n, "active", nil)
	assert.False(t, n.HasClass("active"))
}

func TestTruthy(t *testing.T) {
	var nilPtr *dom.Node
	for _, v := range []any{nil, false, 0, int64(0), uint8(0), 0.0, math.NaN(), "", nilPtr} {
		assert.False(t, dom.Truthy(v), "%#v", v)
	}
	for _, v := range []any{true, 1, -1, 0.5, "0", dom.NewElement("a"), []any{}, map[string]any{}, struct{}{}} {
		assert.True(t, dom.Truthy(v), "%#v", v)
	}
}
