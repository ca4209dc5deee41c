package dom_test

import (
	"testing"

	"github.com/delaneyj/signalbind/dom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAndRenderRoundTrip(t *testing.T) {
	markup := `<div id="app" class="a b"><p>hello <b>world</b></p><!--note--></div>`
	doc, err := dom.ParseFragment(markup)
	require.NoError(t, err)
	assert.Equal(t, markup, doc.InnerHTML())

	app := doc.ByID("app")
	require.NotNil(t, app)
	assert.Equal(t, []string{"a", "b"}, app.Classes())
	assert.Equal(t, "hello world", app.TextContent())
}

func TestTemplateChildrenLiveInContent(t *testing.T) {
	doc := dom.MustParseFragment(`<template id="t"><li>x</li><li>y</li></template>`)
	tpl := doc.ByID("t")
	require.NotNil(t, tpl)

	assert.Nil(t, tpl.FirstChild())
	require.NotNil(t, tpl.Content())
	assert.Len(t, tpl.Content().Children(), 2)
	assert.Equal(t, `<template id="t"><li>x</li><li>y</li></template>`, tpl.OuterHTML())
}

func TestInsertBeforeMovesNode(t *testing.T) {
	doc := dom.MustParseFragment(`<ul><li id="a"></li><li id="b"></li><li id="c"></li></ul>`)
	ul := doc.FirstElementChild()
	a, c := doc.ByID("a"), doc.ByID("c")

	ul.InsertBefore(c, a)
	assert.Equal(t, `<ul><li id="c"></li><li id="a"></li><li id="b"></li></ul>`, ul.OuterHTML())
	assert.Same(t, c, ul.FirstChild())
	assert.Same(t, a, c.NextSibling())

	ul.AppendChild(c)
	assert.Equal(t, `<ul><li id="a"></li><li id="b"></li><li id="c"></li></ul>`, ul.OuterHTML())
	assert.Same(t, c, ul.LastChild())
}

func TestInsertFragmentMovesItsChildren(t *testing.T) {
	doc := dom.MustParseFragment(`<div id="host"><span id="end"></span></div>`)
	frag := dom.NewFragment()
	frag.AppendChild(dom.NewElement("i"))
	frag.AppendChild(dom.NewText("t"))

	host := doc.ByID("host")
	host.InsertBefore(frag, doc.ByID("end"))
	assert.Nil(t, frag.FirstChild())
	assert.Equal(t, `<i></i>t<span id="end"></span>`, host.InnerHTML())
}

func TestRemoveAndReplace(t *testing.T) {
	doc := dom.MustParseFragment(`<div><a id="a"></a><b id="b"></b></div>`)
	div := doc.FirstElementChild()
	a := doc.ByID("a")

	marker := dom.NewText("")
	a.ReplaceWith(marker)
	assert.Nil(t, a.Parent())
	assert.Same(t, marker, div.FirstChild())
	assert.Equal(t, `<b id="b"></b>`, div.InnerHTML())

	a.Remove()
	assert.Nil(t, a.Parent())
}

func TestCloneNodeDeep(t *testing.T) {
	doc := dom.MustParseFragment(`<section data-x="1"><p>one</p><template><i>t</i></template></section>`)
	src := doc.FirstElementChild()
	src.AddEventListener("click", func(*dom.Event) {}, false)

	c := src.CloneNode(true)
	assert.Nil(t, c.Parent())
	assert.Equal(t, src.OuterHTML(), c.OuterHTML())
	assert.Equal(t, 0, c.ListenerCount("click"))

	c.SetAttr("data-x", "2")
	assert.Equal(t, "1", src.GetAttr("data-x"))

	shallow := src.CloneNode(false)
	assert.Nil(t, shallow.FirstChild())
}

func TestSetTextContentAndInnerHTML(t *testing.T) {
	doc := dom.MustParseFragment(`<div><b>x</b></div>`)
	div := doc.FirstElementChild()

	div.SetTextContent("<not markup>")
	assert.Equal(t, `&lt;not markup&gt;`, div.InnerHTML())

	div.SetTextContent("")
	assert.Nil(t, div.FirstChild())

	require.NoError(t, div.SetInnerHTML(`<em>hi</em>`))
	assert.Equal(t, "em", div.FirstElementChild().Tag)
}

func TestToggleClass(t *testing.T) {
	n := dom.NewElement("div")
	n.ToggleClass("on", true)
	n.ToggleClass("on", true)
	assert.Equal(t, "on", n.GetAttr("class"))

	n.ToggleClass("x", true)
	assert.Equal(t, []string{"on", "x"}, n.Classes())

	n.ToggleClass("on", false)
	assert.Equal(t, []string{"x"}, n.Classes())
	assert.False(t, n.HasClass("on"))
}

func TestElementsWithAttrInDocumentOrder(t *testing.T) {
	doc := dom.MustParseFragment(`<div data-func="a" id="1"><div data-func="b" id="2"></div></div><p data-func="c" id="3"></p>`)
	var ids []string
	for _, n := range doc.ElementsWithAttr("data-func") {
		ids = append(ids, n.GetAttr("id"))
	}
	assert.Equal(t, []string{"1", "2", "3"}, ids)
}
