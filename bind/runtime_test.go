package bind_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/delaneyj/signalbind/bind"
	"github.com/delaneyj/signalbind/dom"
	"github.com/delaneyj/signalbind/reactive"
	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type logLines []string

func (l *logLines) contains(s string) bool {
	for _, line := range *l {
		if strings.Contains(line, s) {
			return true
		}
	}
	return false
}

func (l *logLines) count(s string) int {
	n := 0
	for _, line := range *l {
		if strings.Contains(line, s) {
			n++
		}
	}
	return n
}

func captureLog() (logr.Logger, *logLines) {
	return captureLogAt(1)
}

func captureLogAt(verbosity int) (logr.Logger, *logLines) {
	lines := &logLines{}
	log := funcr.New(func(prefix, args string) {
		*lines = append(*lines, args)
	}, funcr.Options{Verbosity: verbosity})
	return log, lines
}

func byTag(root *dom.Node, tag string) *dom.Node {
	return root.Query(func(n *dom.Node) bool { return n.Tag == tag })
}

func counter(s *bind.Setup) any {
	return map[string]any{
		"count": 0,
		"inc": func(c *bind.Context, e *dom.Event) {
			c.Set("count", c.Int("count")+1)
		},
	}
}

func TestMountBindsTextAndHandlers(t *testing.T) {
	doc := dom.MustParseFragment(`<div data-func="counter"><span data-text="count"></span><button data-bind="click:inc">+</button></div>`)
	rt := bind.New()
	rt.Register("counter", counter)

	comps := rt.Start(doc)
	require.Len(t, comps, 1)
	assert.Equal(t, "counter", comps[0].Name())
	assert.True(t, comps[0].Mounted())

	span := byTag(doc, "span")
	assert.Equal(t, "0", span.TextContent())

	rt.Dispatch(byTag(doc, "button"), dom.NewEvent("click"))
	assert.Equal(t, "1", span.TextContent())

	rt.Dispatch(byTag(doc, "button"), dom.NewEvent("click"))
	assert.Equal(t, "2", span.TextContent())
	assert.Equal(t, 2, comps[0].State().Get("count"))
}

func TestUpdatesWaitForFlush(t *testing.T) {
	doc := dom.MustParseFragment(`<div data-func="counter"><span data-text="count"></span></div>`)
	rt := bind.New()
	rt.Register("counter", counter)
	c := rt.Mount(doc.FirstChild())
	require.NotNil(t, c)

	span := byTag(doc, "span")
	c.State().Set("count", 1)
	c.State().Set("count", 2)
	assert.Equal(t, "0", span.TextContent())
	assert.True(t, rt.System().Scheduler().Pending())

	rt.Flush()
	assert.Equal(t, "2", span.TextContent())
	assert.False(t, rt.System().Scheduler().Pending())
}

func TestMountIsIdempotent(t *testing.T) {
	doc := dom.MustParseFragment(`<div data-func="counter"></div>`)
	rt := bind.New()
	rt.Register("counter", counter)

	root := doc.FirstChild()
	require.NotNil(t, rt.Mount(root))
	assert.Nil(t, rt.Mount(root))

	_, err := rt.MountErr(root)
	assert.ErrorIs(t, err, bind.ErrAlreadyMounted)
}

func TestMountSkipsUnusableFactories(t *testing.T) {
	log, lines := captureLog()
	doc := dom.MustParseFragment(`<div data-func="missing"></div><div data-func="number"></div>`)
	rt := bind.New(bind.WithLogger(log))
	rt.Register("number", func(*bind.Setup) any { return 42 })

	assert.Empty(t, rt.Start(doc))
	assert.True(t, lines.contains("skipping mount"))

	roots := doc.Children()
	_, err := rt.MountErr(roots[0])
	assert.ErrorIs(t, err, bind.ErrNoFactory)
	_, err = rt.MountErr(roots[1])
	assert.ErrorIs(t, err, bind.ErrNotObject)

	rt.Register("missing", counter)
	assert.NotNil(t, rt.Mount(roots[0]), "a failed mount leaves the root mountable")
}

func TestPanickingFactoryFailsTheMount(t *testing.T) {
	log, lines := captureLog()
	doc := dom.MustParseFragment(`<div data-func="broken"><span data-text="count"></span></div>`)
	rt := bind.New(bind.WithLogger(log))
	shared := rt.System().Wrap(reactive.NewObject(map[string]any{"n": 1}))
	rt.Register("broken", func(s *bind.Setup) any {
		s.Computed(func() any { return shared.Get("n") })
		panic("boom")
	})

	require.NotPanics(t, func() { assert.Empty(t, rt.Start(doc)) })
	assert.True(t, lines.contains("skipping mount"))

	root := doc.FirstChild()
	_, err := rt.MountErr(root)
	require.ErrorIs(t, err, bind.ErrFactoryFailed)
	assert.Contains(t, err.Error(), "boom")
	assert.Zero(t, rt.System().Subscribers(shared.Raw(), "n"), "setup work is disposed")

	rt.Register("broken", counter)
	c := rt.Mount(root)
	require.NotNil(t, c)
	assert.Equal(t, "0", byTag(doc, "span").TextContent())
}

func TestMountAcceptsObjectsAndProxies(t *testing.T) {
	doc := dom.MustParseFragment(`<p data-func="obj" data-text="a"></p><p data-func="proxy" data-text="a"></p>`)
	rt := bind.New()
	rt.Register("obj", func(*bind.Setup) any {
		return reactive.NewObject(map[string]any{"a": "x"})
	})
	rt.Register("proxy", func(s *bind.Setup) any {
		return s.Reactive(reactive.NewObject(map[string]any{"a": "y"}))
	})

	require.Len(t, rt.Start(doc), 2)
	ps := doc.Children()
	assert.Equal(t, "x", ps[0].TextContent())
	assert.Equal(t, "y", ps[1].TextContent())
}

func TestUnmountDisposesEverything(t *testing.T) {
	doc := dom.MustParseFragment(`<div data-func="counter"><span data-text="count"></span><button data-bind="click:inc">+</button></div>`)
	rt := bind.New()
	rt.Register("counter", counter)
	c := rt.Mount(doc.FirstChild())
	require.NotNil(t, c)
	root := c.Root()
	require.Equal(t, 1, root.ListenerCount("click"))

	c.Unmount()
	assert.False(t, c.Mounted())
	assert.Zero(t, root.ListenerCount("click"))
	assert.Zero(t, rt.System().TrackedTargets())

	c.State().Set("count", 5)
	rt.Flush()
	assert.Equal(t, "0", byTag(doc, "span").TextContent(), "tree is left as rendered")

	c.Unmount()

	again := rt.Mount(root)
	require.NotNil(t, again)
	assert.Equal(t, 1, root.ListenerCount("click"))
}

func TestConditionalCreatesFreshSubtrees(t *testing.T) {
	doc := dom.MustParseFragment(`<div data-func="cond"><p data-if="show"><span data-text="msg"></span></p></div>`)
	rt := bind.New()
	rt.Register("cond", func(*bind.Setup) any {
		return map[string]any{"show": true, "msg": "hello"}
	})
	c := rt.Mount(doc.FirstChild())
	require.NotNil(t, c)

	first := byTag(doc, "p")
	require.NotNil(t, first)
	assert.False(t, first.HasAttr("data-if"))
	oldSpan := byTag(first, "span")
	assert.Equal(t, "hello", oldSpan.TextContent())

	c.State().Set("show", false)
	rt.Flush()
	assert.Nil(t, byTag(doc, "p"))
	assert.Nil(t, first.Parent())

	c.State().Set("msg", "changed")
	rt.Flush()
	assert.Equal(t, "hello", oldSpan.TextContent(), "effects of a hidden clone never fire")

	c.State().Set("show", true)
	rt.Flush()
	second := byTag(doc, "p")
	require.NotNil(t, second)
	assert.NotSame(t, first, second)
	assert.Equal(t, "changed", second.TextContent())
	assert.Equal(t, `<div data-func="cond"><p><span data-text="msg">changed</span></p></div>`, c.Root().OuterHTML())
}

func TestConditionalStartsHidden(t *testing.T) {
	doc := dom.MustParseFragment(`<div data-func="cond"><b data-if="show">yes</b><i>after</i></div>`)
	rt := bind.New()
	rt.Register("cond", func(*bind.Setup) any {
		return map[string]any{"show": 0}
	})
	c := rt.Mount(doc.FirstChild())
	require.NotNil(t, c)
	assert.Equal(t, "after", c.Root().TextContent())

	c.State().Set("show", 1)
	rt.Flush()
	assert.Equal(t, "yesafter", c.Root().TextContent())
}

func TestSiblingsAfterConditionalAreBound(t *testing.T) {
	doc := dom.MustParseFragment(`<div data-func="cond"><p data-if="show"></p><span data-text="msg"></span></div>`)
	rt := bind.New()
	rt.Register("cond", func(*bind.Setup) any {
		return map[string]any{"show": false, "msg": "bound"}
	})
	require.NotNil(t, rt.Mount(doc.FirstChild()))
	assert.Equal(t, "bound", byTag(doc, "span").TextContent())
}

func TestContentDirectives(t *testing.T) {
	doc := dom.MustParseFragment(`<div data-func="form">` +
		`<input type="checkbox" data-value="done">` +
		`<input id="title" data-value="title">` +
		`<button data-props="disabled:busy, title:tip" data-class="active:done"></button>` +
		`<span id="once" data-text="*title"></span>` +
		`<div id="html" data-html="markup"></div>` +
		`</div>`)
	rt := bind.New()
	rt.Register("form", func(*bind.Setup) any {
		return map[string]any{
			"done":   true,
			"title":  "hi",
			"busy":   false,
			"tip":    nil,
			"markup": "<em>x</em>",
		}
	})
	c := rt.Mount(doc.FirstChild())
	require.NotNil(t, c)

	box := byTag(doc, "input")
	btn := byTag(doc, "button")
	assert.True(t, box.Checked())
	assert.Equal(t, "hi", doc.ByID("title").Value())
	assert.False(t, btn.BoolProp("disabled"))
	assert.False(t, btn.HasAttr("title"))
	assert.True(t, btn.HasClass("active"))
	assert.Equal(t, "hi", doc.ByID("once").TextContent())
	assert.Equal(t, "<em>x</em>", doc.ByID("html").InnerHTML())

	c.State().Set("done", false)
	c.State().Set("title", "bye")
	c.State().Set("busy", true)
	c.State().Set("tip", "help")
	rt.Flush()
	assert.False(t, box.Checked())
	assert.Equal(t, "bye", doc.ByID("title").Value())
	assert.True(t, btn.BoolProp("disabled"))
	assert.Equal(t, "help", btn.GetAttr("title"))
	assert.False(t, btn.HasClass("active"))
	assert.Equal(t, "hi", doc.ByID("once").TextContent(), "once bindings do not track")
}

func TestStaticAndNestedRootsAreSkipped(t *testing.T) {
	doc := dom.MustParseFragment(`<div data-func="outer">` +
		`<p data-static><span data-text="msg">raw</span></p>` +
		`<section data-func="inner"><span id="inner" data-text="msg">inner</span></section>` +
		`</div>`)
	rt := bind.New()
	rt.Register("outer", func(*bind.Setup) any {
		return map[string]any{"msg": "outer"}
	})
	require.NotNil(t, rt.Mount(doc.FirstChild()))
	assert.Equal(t, "raw", byTag(doc, "p").TextContent())
	assert.Equal(t, "inner", doc.ByID("inner").TextContent())
}

func TestRefsAndInit(t *testing.T) {
	doc := dom.MustParseFragment(`<form data-func="refs"><input data-ref="name"><p data-bind="setup"></p></form>`)
	rt := bind.New()
	var initRef *dom.Node
	rt.Register("refs", func(*bind.Setup) any {
		return map[string]any{
			"setup": func(c *bind.Context) {
				c.El().SetAttr("data-ready", "yes")
			},
			"init": func(c *bind.Context) error {
				initRef, _ = c.Get("refs.name").(*dom.Node)
				if c.Get("root") != c.El() {
					return errors.New("init runs on the root")
				}
				return nil
			},
		}
	})
	c := rt.Mount(doc.FirstChild())
	require.NotNil(t, c)

	input := byTag(doc, "input")
	assert.Same(t, input, c.Refs()["name"])
	assert.Same(t, input, initRef)
	assert.Equal(t, "yes", byTag(doc, "p").GetAttr("data-ready"))
}

func TestInitErrorsAreLogged(t *testing.T) {
	log, lines := captureLog()
	doc := dom.MustParseFragment(`<div data-func="bad"></div>`)
	rt := bind.New(bind.WithLogger(log))
	rt.Register("bad", func(*bind.Setup) any {
		return map[string]any{
			"init": func() { panic("boom") },
		}
	})
	assert.NotNil(t, rt.Mount(doc.FirstChild()))
	assert.True(t, lines.contains("init failed"))
	assert.True(t, lines.contains("boom"))
}

func TestSetupComputed(t *testing.T) {
	doc := dom.MustParseFragment(`<div data-func="calc"><span data-text="double.value"></span></div>`)
	rt := bind.New()
	rt.Register("calc", func(s *bind.Setup) any {
		state := reactive.NewObject(map[string]any{"n": 2})
		p := s.Reactive(state).(*reactive.Proxy)
		state.Put("double", s.Computed(func() any {
			return p.Get("n").(int) * 2
		}))
		return state
	})
	c := rt.Mount(doc.FirstChild())
	require.NotNil(t, c)
	span := byTag(doc, "span")
	assert.Equal(t, "4", span.TextContent())

	c.State().Set("n", 5)
	rt.Flush()
	assert.Equal(t, "10", span.TextContent())

	c.Unmount()
	assert.Zero(t, rt.System().TrackedTargets())
}

type recordingOps struct {
	bind.Ops
	texts []string
}

func (r *recordingOps) Text(n *dom.Node, v any) {
	r.texts = append(r.texts, dom.Stringify(v))
	r.Ops.Text(n, v)
}

func TestWithOps(t *testing.T) {
	ops := &recordingOps{Ops: dom.Ops{}}
	doc := dom.MustParseFragment(`<div data-func="counter"><span data-text="count"></span></div>`)
	rt := bind.New(bind.WithOps(ops))
	rt.Register("counter", counter)
	c := rt.Mount(doc.FirstChild())
	require.NotNil(t, c)

	c.State().Set("count", 1)
	c.State().Set("count", 2)
	rt.Flush()
	assert.Equal(t, []string{"0", "2"}, ops.texts)
}

func TestWithSystemPostHook(t *testing.T) {
	posted := 0
	var flush func()
	sys := reactive.NewSystem(reactive.WithPost(func(f func()) {
		posted++
		flush = f
	}))
	doc := dom.MustParseFragment(`<div data-func="counter"><span data-text="count"></span></div>`)
	rt := bind.New(bind.WithSystem(sys))
	rt.Register("counter", counter)
	c := rt.Mount(doc.FirstChild())
	require.NotNil(t, c)
	assert.Same(t, sys, rt.System())

	c.State().Set("count", 1)
	c.State().Set("count", 2)
	require.Equal(t, 1, posted)
	flush()
	assert.Equal(t, "2", byTag(doc, "span").TextContent())
}
