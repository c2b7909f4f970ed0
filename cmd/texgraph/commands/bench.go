package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/DrSkyle/texgraph/internal/app"
	"github.com/DrSkyle/texgraph/pkg/config"
	"github.com/DrSkyle/texgraph/pkg/graph"
	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

var metricsAddr string

var BenchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run a synthetic edit storm",
	Long: `Queues random transactions against several documents in parallel, drains them
and audits every document afterwards.`,
	Example: `  texgraph bench --documents 8 --transactions 2000
  texgraph bench --metrics-addr :9100`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		a, err := startApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close(context.Background())

		if metricsAddr != "" {
			srv := &http.Server{Addr: metricsAddr, Handler: promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{})}
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					a.Logger.Error("metrics server", "error", err)
				}
			}()
			defer srv.Shutdown(context.Background())
		}

		res, err := runBench(ctx, a, a.Config.Bench)
		if err != nil {
			return err
		}
		res.print(cmd.OutOrStdout())
		return nil
	},
}

func init() {
	def := config.DefaultBenchConfig()
	f := BenchCmd.Flags()
	f.Int("documents", def.Documents, "Documents edited in parallel")
	f.Int("transactions", def.Transactions, "Transactions queued per document")
	f.Int("ops", def.OpsPerTransaction, "Random edits per transaction")
	f.Float64("undo-ratio", def.UndoRatio, "Fraction of transactions replaced by an undo")
	f.StringVar(&metricsAddr, "metrics-addr", "", "Serve prometheus metrics on this address while running")

	viper.BindPFlag("bench.documents", f.Lookup("documents"))
	viper.BindPFlag("bench.transactions", f.Lookup("transactions"))
	viper.BindPFlag("bench.ops_per_transaction", f.Lookup("ops"))
	viper.BindPFlag("bench.undo_ratio", f.Lookup("undo-ratio"))
}

type docResult struct {
	vertices, edges int
	applied, failed int
	undone          int
	bytes           uint64
}

type benchResult struct {
	docs    []docResult
	elapsed time.Duration
}

func runBench(ctx context.Context, a *app.App, cfg config.BenchConfig) (*benchResult, error) {
	seed := a.Config.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	res := &benchResult{docs: make([]docResult, cfg.Documents)}
	start := time.Now()

	eg, ctx := errgroup.WithContext(ctx)
	for i := range cfg.Documents {
		eg.Go(func() error {
			rng := rand.New(rand.NewPCG(seed, uint64(i)))
			g := a.NewGraph(graph.WithRand(rng))
			defer g.Dispose(context.Background())

			d, err := storm(ctx, g, rng, cfg)
			if err != nil {
				return fmt.Errorf("document %d: %w", i, err)
			}
			res.docs[i] = d
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	res.elapsed = time.Since(start)
	return res, nil
}

// storm queues every transaction up front, then drains and audits.
func storm(ctx context.Context, g *graph.Graph, rng *rand.Rand, cfg config.BenchConfig) (docResult, error) {
	var d docResult
	pending := make([]*graph.Pending, 0, cfg.Transactions)
	undos := make([]bool, 0, cfg.Transactions)
	for range cfg.Transactions {
		if rng.Float64() < cfg.UndoRatio {
			pending = append(pending, g.Undo())
			undos = append(undos, true)
			continue
		}
		pending = append(pending, g.Transaction(func(_ context.Context, g *graph.Graph) error {
			for range cfg.OpsPerTransaction {
				if err := randomEdit(g, rng); err != nil {
					return err
				}
			}
			return nil
		}))
		undos = append(undos, false)
	}

	// Per-transaction errors are tallied below; only cancellation aborts.
	_ = g.Drain(ctx)
	if err := ctx.Err(); err != nil {
		return d, err
	}

	for i, p := range pending {
		err := p.Err()
		switch {
		case err == nil && undos[i]:
			d.undone++
		case err == nil:
			d.applied++
		case errors.Is(err, graph.ErrNothingToUndo):
		default:
			d.failed++
		}
	}
	if err := g.Check(); err != nil {
		return d, err
	}
	d.vertices = g.VertexCount()
	d.edges = g.EdgeCount()
	d.bytes = uint64(g.VertexRecords().Len() + g.EdgeRecords().Len())
	return d, nil
}

// randomEdit applies one edit picked to keep the graph growing slowly.
// Contract errors are swallowed so a transaction only fails on real faults.
func randomEdit(g *graph.Graph, rng *rand.Rand) error {
	n := g.VertexCount()
	if n < 2 {
		g.AddVertex()
		return nil
	}
	pick := func() graph.Vertex {
		v, _ := g.VertexAt(rng.IntN(g.VertexCount()))
		return v
	}

	var err error
	switch roll := rng.IntN(100); {
	case roll < 35:
		g.AddVertex()
	case roll < 75:
		_, err = g.AddEdge(pick(), pick())
	case roll < 85:
		if m := g.EdgeCount(); m > 0 {
			e, _ := g.EdgeAt(rng.IntN(m))
			err = g.DeleteEdge(e)
		}
	case roll < 93:
		err = g.DeleteVertex(pick())
	case roll < 97:
		err = pick().SetSelected(rng.IntN(2) == 0)
	default:
		_, err = g.Merge([]graph.Vertex{pick(), pick()})
	}
	if errors.Is(err, graph.ErrEdgeExists) || errors.Is(err, graph.ErrSelfLoop) {
		return nil
	}
	return err
}

func (r *benchResult) print(w io.Writer) {
	var total docResult
	for i, d := range r.docs {
		fmt.Fprintf(w, "doc %-3d %8s vertices %8s edges %6d applied %5d undone %4d failed %10s\n",
			i, humanize.Comma(int64(d.vertices)), humanize.Comma(int64(d.edges)),
			d.applied, d.undone, d.failed, humanize.Bytes(d.bytes))
		total.applied += d.applied
		total.undone += d.undone
		total.failed += d.failed
		total.bytes += d.bytes
	}
	ticks := total.applied + total.undone + total.failed
	rate := float64(ticks) / r.elapsed.Seconds()
	fmt.Fprintf(w, "\n%s transactions in %s (%s/s), %s packed\n",
		humanize.Comma(int64(ticks)), r.elapsed.Round(time.Millisecond),
		humanize.CommafWithDigits(rate, 0), humanize.Bytes(total.bytes))
}
