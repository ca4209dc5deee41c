package bind_test

import (
	"testing"

	"github.com/delaneyj/signalbind/bind"
	"github.com/delaneyj/signalbind/dom"
	"github.com/delaneyj/signalbind/reactive"
	"github.com/stretchr/testify/assert"
)

func TestEvalPaths(t *testing.T) {
	sys := reactive.NewSystem()
	state := sys.Wrap(reactive.NewObject(map[string]any{
		"user": map[string]any{
			"name": "ada",
			"tags": []any{"a", "b"},
		},
		"plain": map[string]any{"x": 1},
		"n":     3,
	}))
	scope := bind.StateScope(state)

	assert.Equal(t, "ada", bind.Eval(scope, "user.name"))
	assert.Equal(t, 2, bind.Eval(scope, "user.tags.length"))
	assert.Equal(t, "b", bind.Eval(scope, "user.tags.1"))
	assert.Equal(t, 3, bind.Eval(scope, "n"))
	assert.Nil(t, bind.Eval(scope, "missing"))
	assert.Nil(t, bind.Eval(scope, "missing.deeper.still"))
	assert.Nil(t, bind.Eval(scope, "n.x"))
}

func TestContextAccessors(t *testing.T) {
	sys := reactive.NewSystem()
	state := sys.Wrap(reactive.NewObject(map[string]any{
		"count": 2,
		"name":  "x",
		"list":  []any{1},
	}))
	el := dom.NewElement("p")
	c := bind.NewContext(bind.StateScope(state), el)

	assert.Same(t, el, c.El())
	assert.Same(t, el, c.Get("el"))
	assert.Equal(t, 2, c.Int("count"))
	assert.Zero(t, c.Int("name"))
	assert.Equal(t, "x", c.String("name"))
	assert.Equal(t, 1, c.Proxy("list").Len())
	assert.Nil(t, c.Proxy("name"))

	c.Set("count", 5)
	c.Set("el", "ignored")
	assert.Equal(t, 5, state.Get("count"))
	assert.False(t, state.Has("el"))
}
