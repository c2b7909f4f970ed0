package graph

import (
	"log/slog"
	"math/rand/v2"

	"github.com/DrSkyle/texgraph/pkg/config"
	"github.com/DrSkyle/texgraph/pkg/gpu"
	"go.opentelemetry.io/otel/trace"
)

// Option defines a functional configuration override.
type Option func(*Graph)

// WithDirected selects the directed variant.
func WithDirected(directed bool) Option {
	return func(g *Graph) { g.directed = directed }
}

// WithBufferFactory sets the allocator for mirror buffers.
func WithBufferFactory(f gpu.Factory) Option {
	return func(g *Graph) { g.factory = f }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Graph) { g.logger = l }
}

// WithTracer sets the tracer used for tick spans.
func WithTracer(t trace.Tracer) Option {
	return func(g *Graph) { g.tracer = t }
}

// WithMetrics attaches prometheus collectors.
func WithMetrics(m *Metrics) Option {
	return func(g *Graph) { g.metrics = m }
}

// WithRand sets the source of position jitter.
func WithRand(r *rand.Rand) Option {
	return func(g *Graph) { g.rng = r }
}

// WithJitter sets the half-width of the random position box.
func WithJitter(radius float32) Option {
	return func(g *Graph) { g.jitter = radius }
}

// WithHistoryLimit caps undo depth.
func WithHistoryLimit(n int) Option {
	return func(g *Graph) { g.historyLimit = n }
}

// WithInitialCapacity preallocates record arrays.
func WithInitialCapacity(n int) Option {
	return func(g *Graph) { g.capacity = n }
}

// WithID overrides the generated document id.
func WithID(id string) Option {
	return func(g *Graph) { g.id = id }
}

// WithConfig applies the graph-related fields of cfg.
func WithConfig(cfg config.Config) Option {
	return func(g *Graph) {
		g.directed = cfg.Directed
		g.jitter = float32(cfg.JitterRadius)
		g.capacity = cfg.InitialCapacity
		g.historyLimit = cfg.HistoryLimit
		g.factory = gpu.NewMemoryFactory(cfg.TextureWidth)
		if cfg.Seed != 0 {
			g.rng = rand.New(rand.NewPCG(cfg.Seed, cfg.Seed>>1|1))
		}
	}
}
