package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/delaneyj/signalbind/bind"
	"github.com/delaneyj/signalbind/dom"
	"github.com/delaneyj/signalbind/reactive"
	"github.com/go-logr/stdr"
	"github.com/urfave/cli/v3"
)

const (
	inputKey   = "in"
	eventKey   = "event"
	verboseKey = "verbose"
)

func main() {
	cmd := &cli.Command{
		Name:  "render",
		Usage: "Mount the demo components on an HTML document, replay events and print the result",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  inputKey,
				Usage: "HTML document to load, stdin when empty",
			},
			&cli.StringSliceFlag{
				Name:  eventKey,
				Usage: "Event to dispatch as type=#id or type=ref, repeatable",
			},
			&cli.IntFlag{
				Name:  verboseKey,
				Usage: "Log verbosity",
			},
		},
		Action: render,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func render(ctx context.Context, cmd *cli.Command) error {
	stdr.SetVerbosity(int(cmd.Int(verboseKey)))
	logger := stdr.New(log.New(os.Stderr, "", log.LstdFlags))

	var r io.Reader = os.Stdin
	if path := cmd.String(inputKey); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}
	doc, err := dom.Parse(r)
	if err != nil {
		return err
	}

	rt := bind.New(bind.WithLogger(logger))
	registerDemos(rt)
	comps := rt.Start(doc)
	logger.Info("mounted", "components", len(comps))

	for _, ev := range cmd.StringSlice(eventKey) {
		typ, sel, ok := strings.Cut(ev, "=")
		if !ok {
			return fmt.Errorf("event %q: want type=target", ev)
		}
		target := find(doc, sel, comps)
		if target == nil {
			return fmt.Errorf("event %q: no node matches %q", ev, sel)
		}
		logger.V(1).Info("dispatch", "type", typ, "target", sel)
		rt.Dispatch(target, dom.NewEvent(typ))
	}

	for _, c := range comps {
		c.Unmount()
	}
	return dom.Render(os.Stdout, doc)
}

// find resolves "#id" against the document and anything else against the
// refs of the mounted components.
func find(doc *dom.Node, sel string, comps []*bind.Component) *dom.Node {
	if id, ok := strings.CutPrefix(sel, "#"); ok {
		return doc.ByID(id)
	}
	for _, c := range comps {
		if n, ok := c.Refs()[sel]; ok {
			return n
		}
	}
	return nil
}

func registerDemos(rt *bind.Runtime) {
	rt.Register("counter", func(*bind.Setup) any {
		return map[string]any{
			"count": 0,
			"inc": func(c *bind.Context, e *dom.Event) {
				c.Set("count", c.Int("count")+1)
			},
			"dec": func(c *bind.Context, e *dom.Event) {
				c.Set("count", c.Int("count")-1)
			},
		}
	})

	rt.Register("todos", func(s *bind.Setup) any {
		state := reactive.NewObject(map[string]any{
			"draft":  "",
			"nextID": 1,
			"items":  []any{},
		})
		p := s.Reactive(state).(*reactive.Proxy)
		state.Put("remaining", s.Computed(func() any {
			left := 0
			for _, item := range p.Get("items").(*reactive.Proxy).Items() {
				if !item.(*reactive.Proxy).Get("done").(bool) {
					left++
				}
			}
			return left
		}))
		state.Put("add", func(c *bind.Context, e *dom.Event) error {
			input, _ := c.Get("refs.draft").(*dom.Node)
			if input == nil {
				return fmt.Errorf("no draft input")
			}
			text := strings.TrimSpace(input.Value())
			if text == "" {
				return nil
			}
			id := c.Int("nextID")
			c.Set("nextID", id+1)
			c.Proxy("items").Push(map[string]any{"id": id, "text": text, "done": false})
			input.SetValue("")
			return nil
		})
		state.Put("toggle", func(c *bind.Context, e *dom.Event) {
			item := c.Proxy("item")
			item.Set("done", !item.Get("done").(bool))
		})
		state.Put("remove", func(c *bind.Context, e *dom.Event) {
			items := c.Proxy("items")
			at := c.Int("i")
			for j := at; j < items.Len()-1; j++ {
				items.SetAt(j, items.At(j+1))
			}
			items.SetLength(items.Len() - 1)
		})
		return state
	})
}
