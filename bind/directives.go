package bind

import (
	"fmt"
	"regexp"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

const (
	attrFunc   = "data-func"
	attrStatic = "data-static"
	attrIf     = "data-if"
	attrBind   = "data-bind"
	attrLoop   = "data-loop"
	attrKey    = "data-key"
	attrRef    = "data-ref"
	attrText   = "data-text"
	attrHTML   = "data-html"
	attrValue  = "data-value"
	attrProps  = "data-props"
	attrClass  = "data-class"
)

// onceMarker prefixes a content path that is evaluated a single time.
const onceMarker = "*"

// captured event types do not bubble, so the delegated listener has to see
// them on the way down.
var captured = mapset.NewSet("focus", "blur", "scroll", "load", "error")

var loopRE = regexp.MustCompile(`\(?\s*(\w+)(?:,\s*(\w+))?\)?\s+in\s+(\S+)`)

type loopExpr struct {
	alias  string
	index  string
	source string
}

func parseLoop(expr string) (loopExpr, error) {
	m := loopRE.FindStringSubmatch(expr)
	if m == nil {
		return loopExpr{}, fmt.Errorf("%w: %q", ErrBadLoop, expr)
	}
	return loopExpr{alias: m[1], index: m[2], source: m[3]}, nil
}

type argPath struct {
	arg  string
	path string
}

// parseArgPaths splits "a:x, b:y.z" into pairs, dropping incomplete ones.
func parseArgPaths(list string) []argPath {
	var pairs []argPath
	for _, item := range strings.Split(list, ",") {
		arg, path, _ := strings.Cut(item, ":")
		arg, path = strings.TrimSpace(arg), strings.TrimSpace(path)
		if arg == "" || path == "" {
			continue
		}
		pairs = append(pairs, argPath{arg: arg, path: path})
	}
	return pairs
}

type bindToken struct {
	event  string
	method string
	init   string
}

// parseBindTokens splits "click:save focus:track setup" into handler and
// initializer tokens.
func parseBindTokens(list string) []bindToken {
	var tokens []bindToken
	for _, tok := range strings.Fields(list) {
		if evt, method, ok := strings.Cut(tok, ":"); ok {
			evt, method = strings.TrimSpace(evt), strings.TrimSpace(method)
			if evt == "" || method == "" {
				continue
			}
			tokens = append(tokens, bindToken{event: evt, method: method})
			continue
		}
		tokens = append(tokens, bindToken{init: tok})
	}
	return tokens
}
