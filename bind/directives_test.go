package bind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLoop(t *testing.T) {
	cases := map[string]loopExpr{
		"item in items":          {alias: "item", source: "items"},
		"(item, i) in list.rows": {alias: "item", index: "i", source: "list.rows"},
		"(row) in rows":          {alias: "row", source: "rows"},
		"  (a,b)   in   c.d  ":   {alias: "a", index: "b", source: "c.d"},
	}
	for expr, want := range cases {
		got, err := parseLoop(expr)
		require.NoError(t, err, expr)
		assert.Equal(t, want, got, expr)
	}

	for _, bad := range []string{"", "items", "in items", "item of items"} {
		_, err := parseLoop(bad)
		assert.ErrorIs(t, err, ErrBadLoop, bad)
	}
}

func TestParseArgPaths(t *testing.T) {
	got := parseArgPaths("disabled:busy, title : info.tip,broken, :x, y:")
	assert.Equal(t, []argPath{
		{arg: "disabled", path: "busy"},
		{arg: "title", path: "info.tip"},
	}, got)
	assert.Empty(t, parseArgPaths(""))
}

func TestParseBindTokens(t *testing.T) {
	got := parseBindTokens("click:save  setup focus:track :x y:")
	assert.Equal(t, []bindToken{
		{event: "click", method: "save"},
		{init: "setup"},
		{event: "focus", method: "track"},
	}, got)
}
