package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/delaneyj/signalbind/bind"
	"github.com/delaneyj/signalbind/dom"
	"github.com/delaneyj/signalbind/reactive"
	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"
)

const (
	itersKey   = "iters"
	profileKey = "profile"
	rowsKey    = "rows"
	verboseKey = "verbose"
)

var (
	ww = []int{1, 10, 100, 1_000}
	hh = []int{1, 10, 100}
)

func main() {
	cmd := &cli.Command{
		Name:  "benchmark",
		Usage: "Measure propagation and list reconciliation latency",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  itersKey,
				Usage: "Samples per benchmark",
				Value: 100,
			},
			&cli.IntFlag{
				Name:  rowsKey,
				Usage: "Rows in the reconciliation benchmarks",
				Value: 1_000,
			},
			&cli.StringFlag{
				Name:  profileKey,
				Usage: "Write a CPU profile to this file",
				Value: "default.pgo",
			},
			&cli.IntFlag{
				Name:  verboseKey,
				Usage: "Log verbosity",
			},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	stdr.SetVerbosity(int(cmd.Int(verboseKey)))
	logger := stdr.New(log.New(os.Stderr, "", log.LstdFlags))

	if path := cmd.String(profileKey); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("start profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	iters := int(cmd.Int(itersKey))
	rows := int(cmd.Int(rowsKey))

	logger.Info("warming up")
	benchmarkPropagate(logger, iters, false, false)
	benchmarkPropagate(logger, iters, true, false)
	benchmarkReconcile(logger, iters, rows, false)

	benchmarkPropagate(logger, iters, false, true)
	benchmarkPropagate(logger, iters, true, true)
	benchmarkReconcile(logger, iters, rows, true)
	return nil
}

func newTable(title string) table.Writer {
	tbl := table.NewWriter()
	tbl.SetTitle(title)
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})
	return tbl
}

func appendCalc(tbl table.Writer, name string, tach *tachymeter.Tachymeter) {
	calc := tach.Calc()
	tbl.AppendRows([]table.Row{
		{
			name,
			calc.Time.Avg,
			calc.Time.Min,
			calc.Time.P75,
			calc.Time.P99,
			calc.Time.Max,
		},
	})
}

// benchmarkPropagate builds w chains of h computed boxes over one source
// field, each ending in an effect, and times a single write.
func benchmarkPropagate(logger logr.Logger, iters int, batched, shouldRender bool) {
	title := "Propagation (sync effects)"
	if batched {
		title = "Propagation (batched effects)"
	}
	tbl := newTable(title)

	for _, w := range ww {
		for _, h := range hh {
			tach := tachymeter.New(&tachymeter.Config{Size: iters})

			sys := reactive.NewSystem(reactive.WithLogger(logger))
			src := sys.Wrap(reactive.NewObject(map[string]any{"n": 1}))
			var opts []reactive.EffectOption
			if batched {
				opts = append(opts, reactive.Batched())
			}

			for i := 0; i < w; i++ {
				last := src
				key := "n"
				for j := 0; j < h; j++ {
					prev, prevKey := last, key
					last, _ = sys.Computed(func() any {
						return prev.Get(prevKey).(int) + 1
					})
					key = reactive.ComputedKey
				}
				leaf, leafKey := last, key
				sys.Effect(func() {
					_ = leaf.Get(leafKey)
				}, opts...)
			}

			for i := 0; i < iters; i++ {
				start := time.Now()
				src.Set("n", src.Get("n").(int)+1)
				sys.Flush()
				tach.AddTime(time.Since(start))
			}

			appendCalc(tbl, fmt.Sprintf("propagate: %d * %d", w, h), tach)
		}
	}

	if shouldRender {
		tbl.Render()
	}
}

const listMarkup = `<ul data-func="list"><template data-loop="(row, i) in rows" data-key="row.id"><li data-class="selected:row.selected"><span data-text="i"></span><b data-text="row.label"></b></li></template></ul>`

func makeRows(n, offset int) []any {
	rows := make([]any, n)
	for i := range rows {
		id := offset + i
		rows[i] = map[string]any{
			"id":       id,
			"label":    fmt.Sprintf("row %d", id),
			"selected": false,
		}
	}
	return rows
}

type listBench struct {
	rt   *bind.Runtime
	rows *reactive.Proxy
}

func mountList(logger logr.Logger, n int) (*listBench, error) {
	doc, err := dom.ParseFragment(listMarkup)
	if err != nil {
		return nil, err
	}
	rt := bind.New(bind.WithLogger(logger))
	rt.Register("list", func(*bind.Setup) any {
		return map[string]any{"rows": makeRows(n, 0)}
	})
	c, err := rt.MountErr(doc.FirstChild())
	if err != nil {
		return nil, err
	}
	return &listBench{
		rt:   rt,
		rows: c.State().Get("rows").(*reactive.Proxy),
	}, nil
}

// benchmarkReconcile times common keyed list mutations followed by a flush.
func benchmarkReconcile(logger logr.Logger, iters, n int, shouldRender bool) {
	tbl := newTable(fmt.Sprintf("Keyed list reconciliation (%d rows)", n))

	ops := []struct {
		name string
		fn   func(b *listBench, i int)
	}{
		{"swap rows", func(b *listBench, i int) {
			x, y := b.rows.At(1), b.rows.At(n-2)
			b.rows.SetAt(1, y)
			b.rows.SetAt(n-2, x)
		}},
		{"reverse", func(b *listBench, i int) {
			items := b.rows.Items()
			for j, item := range items {
				b.rows.SetAt(len(items)-1-j, item)
			}
		}},
		{"select row", func(b *listBench, i int) {
			row := b.rows.At(i % n).(*reactive.Proxy)
			row.Set("selected", !row.Get("selected").(bool))
		}},
		{"update every 10th", func(b *listBench, i int) {
			for j := 0; j < n; j += 10 {
				row := b.rows.At(j).(*reactive.Proxy)
				row.Set("label", fmt.Sprintf("row %d !%d", j, i))
			}
		}},
		{"replace all", func(b *listBench, i int) {
			for j, row := range makeRows(n, (i+1)*n) {
				b.rows.SetAt(j, row)
			}
		}},
	}

	for _, op := range ops {
		b, err := mountList(logger, n)
		if err != nil {
			logger.Error(err, "mount failed", "benchmark", op.name)
			continue
		}
		tach := tachymeter.New(&tachymeter.Config{Size: iters})
		for i := 0; i < iters; i++ {
			start := time.Now()
			op.fn(b, i)
			b.rt.Flush()
			tach.AddTime(time.Since(start))
		}
		appendCalc(tbl, op.name, tach)
	}

	if shouldRender {
		tbl.Render()
	}
}
