package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/delaneyj/signalbind/bind"
	"github.com/delaneyj/signalbind/dom"
	"github.com/delaneyj/signalbind/reactive"
	"github.com/dustin/go-humanize"
	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
)

const (
	repeatsKey = "repeats"
	scaleKey   = "scale"
	verboseKey = "verbose"
)

func main() {
	cmd := &cli.Command{
		Name:  "benchmark_reconcile",
		Usage: "Run randomized keyed list workloads and verify their output",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  repeatsKey,
				Usage: "Timed runs per workload, the best one is reported",
				Value: 5,
			},
			&cli.FloatFlag{
				Name:  scaleKey,
				Usage: "Multiplier applied to every workload's iteration count",
				Value: 1,
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

type workloadConfig struct {
	name            string  // friendly name, should be unique
	rows            int     // rows rendered at start
	iterations      int64   // mutations applied per run
	reorderFraction float64 // fraction of mutations that move rows
	updateFraction  float64 // fraction of mutations that edit a row in place
	insertFraction  float64 // fraction of mutations that insert a row; the rest remove one
	batch           int     // mutations between flushes
}

var workloads = []workloadConfig{
	{
		name:            "small table",
		rows:            10,
		iterations:      50_000,
		reorderFraction: 0.3,
		updateFraction:  0.5,
		insertFraction:  0.1,
		batch:           1,
	},
	{
		name:            "todo app",
		rows:            100,
		iterations:      20_000,
		reorderFraction: 0.1,
		updateFraction:  0.6,
		insertFraction:  0.15,
		batch:           1,
	},
	{
		name:            "sortable grid",
		rows:            1_000,
		iterations:      2_000,
		reorderFraction: 0.8,
		updateFraction:  0.1,
		insertFraction:  0.05,
		batch:           4,
	},
	{
		name:            "live feed",
		rows:            500,
		iterations:      5_000,
		reorderFraction: 0,
		updateFraction:  0.2,
		insertFraction:  0.4,
		batch:           10,
	},
	{
		name:            "wide batches",
		rows:            2_000,
		iterations:      1_000,
		reorderFraction: 0.25,
		updateFraction:  0.5,
		insertFraction:  0.125,
		batch:           50,
	},
}

const listMarkup = `<table data-func="grid"><tbody><template data-loop="(row, i) in rows" data-key="row.id"><tr data-class="odd:row.odd"><td data-text="i"></td><td data-text="row.label"></td><td data-text="row.count"></td></tr></template></tbody></table>`

// countingOps counts every node write the runtime performs.
type countingOps struct {
	bind.Ops
	writes int64
}

func (o *countingOps) Text(n *dom.Node, v any) {
	o.writes++
	o.Ops.Text(n, v)
}

func (o *countingOps) Class(n *dom.Node, name string, v any) {
	o.writes++
	o.Ops.Class(n, name, v)
}

type result struct {
	writes   int64
	duration time.Duration
	checksum uint64
}

func run(ctx context.Context, cmd *cli.Command) error {
	stdr.SetVerbosity(int(cmd.Int(verboseKey)))
	logger := stdr.New(log.New(os.Stderr, "", log.LstdFlags))

	logger.Info("starting reconcile benchmark, please wait")
	defer logger.Info("finished reconcile benchmark")

	repeats := int(cmd.Int(repeatsKey))
	scale := cmd.Float(scaleKey)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{
		"test", "rows", "nTimes", "reorder%", "update%", "insert%", "batch",
		"time", "writes", "writeRate", "checksum", "verified",
	})

	for _, cfg := range workloads {
		cfg.iterations = int64(float64(cfg.iterations) * scale)
		logger.Info("running workload", "name", cfg.name)

		// warm up
		if _, err := runWorkload(logger, cfg); err != nil {
			return fmt.Errorf("workload %q: %w", cfg.name, err)
		}

		best := result{duration: time.Hour}
		verified := true
		var checksum uint64
		for i := 0; i < repeats; i++ {
			logger.V(1).Info("repeat", "name", cfg.name, "run", i+1, "of", repeats)
			res, err := runWorkload(logger, cfg)
			if err != nil {
				return fmt.Errorf("workload %q: %w", cfg.name, err)
			}
			if i == 0 {
				checksum = res.checksum
			} else if res.checksum != checksum {
				verified = false
				logger.Info("checksum mismatch", "name", cfg.name, "want", checksum, "got", res.checksum)
			}
			if res.duration < best.duration {
				best = res
			}
		}

		rate := float64(best.writes) / (float64(best.duration) / float64(time.Millisecond))
		table.Append([]string{
			cfg.name,
			humanize.Comma(int64(cfg.rows)),
			humanize.Comma(cfg.iterations),
			fmt.Sprint(100 * cfg.reorderFraction),
			fmt.Sprint(100 * cfg.updateFraction),
			fmt.Sprint(100 * cfg.insertFraction),
			fmt.Sprint(cfg.batch),
			fmt.Sprint(best.duration),
			humanize.Comma(best.writes),
			humanize.Comma(int64(rate)),
			fmt.Sprintf("%016x", checksum),
			fmt.Sprint(verified),
		})
	}
	table.Render()
	return nil
}

// runWorkload mounts a fresh grid, applies the seeded mutation stream and
// hashes the rendered markup.
func runWorkload(logger logr.Logger, cfg workloadConfig) (result, error) {
	doc, err := dom.ParseFragment(listMarkup)
	if err != nil {
		return result{}, err
	}
	ops := &countingOps{Ops: dom.Ops{}}
	rt := bind.New(bind.WithLogger(logger), bind.WithOps(ops))

	nextID := 0
	newRow := func() any {
		nextID++
		return map[string]any{
			"id":    nextID,
			"label": fmt.Sprintf("row %d", nextID),
			"count": 0,
			"odd":   nextID%2 == 1,
		}
	}
	rt.Register("grid", func(*bind.Setup) any {
		rows := make([]any, cfg.rows)
		for i := range rows {
			rows[i] = newRow()
		}
		return map[string]any{"rows": rows}
	})
	c, err := rt.MountErr(doc.FirstChild())
	if err != nil {
		return result{}, err
	}
	rows := c.State().Get("rows").(*reactive.Proxy)

	random := rand.New(rand.NewSource(0))
	ops.writes = 0
	start := time.Now()
	for i := int64(0); i < cfg.iterations; i++ {
		mutate(random, rows, cfg, newRow)
		if cfg.batch <= 1 || (i+1)%int64(cfg.batch) == 0 {
			rt.Flush()
		}
	}
	rt.Flush()
	duration := time.Since(start)

	var sb strings.Builder
	if err := dom.Render(&sb, doc); err != nil {
		return result{}, err
	}
	c.Unmount()

	return result{
		writes:   ops.writes,
		duration: duration,
		checksum: xxhash.Sum64String(sb.String()),
	}, nil
}

func mutate(random *rand.Rand, rows *reactive.Proxy, cfg workloadConfig, newRow func() any) {
	n := rows.Len()
	roll := random.Float64()
	switch {
	case n > 1 && roll < cfg.reorderFraction:
		x, y := random.Intn(n), random.Intn(n)
		a, b := rows.At(x), rows.At(y)
		rows.SetAt(x, b)
		rows.SetAt(y, a)
	case n > 0 && roll < cfg.reorderFraction+cfg.updateFraction:
		row := rows.At(random.Intn(n)).(*reactive.Proxy)
		row.Set("count", row.Get("count").(int)+1)
		row.Set("odd", !row.Get("odd").(bool))
	case roll < cfg.reorderFraction+cfg.updateFraction+cfg.insertFraction || n == 0:
		at := random.Intn(n + 1)
		rows.Push(nil)
		for j := n; j > at; j-- {
			rows.SetAt(j, rows.At(j-1))
		}
		rows.SetAt(at, newRow())
	default:
		at := random.Intn(n)
		for j := at; j < n-1; j++ {
			rows.SetAt(j, rows.At(j+1))
		}
		rows.SetLength(n - 1)
	}
}
