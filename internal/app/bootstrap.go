// Package app wires configuration, logging, telemetry and metrics into graph documents.
package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/DrSkyle/texgraph/pkg/config"
	"github.com/DrSkyle/texgraph/pkg/graph"
	"github.com/DrSkyle/texgraph/pkg/storage"
	"github.com/DrSkyle/texgraph/pkg/telemetry"
	"github.com/DrSkyle/texgraph/pkg/version"
	"github.com/DrSkyle/texgraph/pkg/wire"
	"github.com/prometheus/client_golang/prometheus"
)

// App is the process-wide context shared by every open document.
type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Metrics  *graph.Metrics
	Registry *prometheus.Registry

	shutdown func(context.Context) error
}

// New validates cfg and sets up logging, tracing and metrics. Logs go to stderr.
func New(ctx context.Context, cfg config.Config, stderr io.Writer) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	var handler slog.Handler
	if cfg.JSONLogs {
		handler = slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})
	}
	a := &App{
		Config:   cfg,
		Logger:   slog.New(handler),
		Metrics:  graph.NewMetrics(),
		Registry: prometheus.NewRegistry(),
	}
	slog.SetDefault(a.Logger)

	if err := a.Metrics.Register(a.Registry); err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	if !cfg.SkipTelemetry {
		shutdown, err := telemetry.Init(ctx, telemetry.Options{
			ServiceName:    version.AppName,
			ServiceVersion: version.Current,
			Endpoint:       cfg.OtelEndpoint,
		})
		if err != nil {
			a.Logger.Warn("Telemetry failed", "error", err)
		} else {
			a.shutdown = shutdown
		}
	}
	return a, nil
}

// NewGraph opens an empty document configured from the app.
func (a *App) NewGraph(opts ...graph.Option) *graph.Graph {
	base := []graph.Option{
		graph.WithConfig(a.Config),
		graph.WithLogger(a.Logger),
		graph.WithMetrics(a.Metrics),
		graph.WithTracer(telemetry.Tracer("texgraph/graph")),
	}
	return graph.New(append(base, opts...)...)
}

// Format returns the wire format new files are written with.
func (a *App) Format() wire.Format {
	if a.Config.CompressWire {
		return wire.NewFormat(wire.Snappy, wire.CRC32)
	}
	return wire.NewFormat(wire.Uncompressed, wire.CRC32)
}

// Open returns the store serving loc and the key of the document inside it.
func (a *App) Open(ctx context.Context, loc string) (storage.BlobStore, string, error) {
	return storage.Open(ctx, loc, storage.S3Options{
		Region:   a.Config.S3Region,
		Endpoint: a.Config.S3Endpoint,
	})
}

// Save encodes g and writes it to loc, a local path or an s3:// URL.
func (a *App) Save(ctx context.Context, loc string, g *graph.Graph) error {
	var buf bytes.Buffer
	if err := wire.Encode(&buf, wire.Export(g), a.Format()); err != nil {
		return err
	}
	store, key, err := a.Open(ctx, loc)
	if err != nil {
		return err
	}
	if err := store.Put(ctx, key, buf.Bytes()); err != nil {
		return err
	}
	a.Logger.Info("saved", "location", loc, "bytes", buf.Len(),
		"vertices", g.VertexCount(), "edges", g.EdgeCount())
	return nil
}

// ReadDocument fetches and decodes the wire file at loc.
func (a *App) ReadDocument(ctx context.Context, loc string) (*wire.Document, wire.Header, error) {
	store, key, err := a.Open(ctx, loc)
	if err != nil {
		return nil, wire.Header{}, err
	}
	data, err := store.Get(ctx, key)
	if err != nil {
		return nil, wire.Header{}, err
	}
	return wire.Decode(bytes.NewReader(data))
}

// List returns the keys under loc, which names a directory or an s3:// prefix.
func (a *App) List(ctx context.Context, loc string) ([]string, error) {
	store, prefix, err := a.Open(ctx, loc)
	if err != nil {
		return nil, err
	}
	return store.List(ctx, prefix)
}

// Load opens the wire file at loc as a new document and waits for it to be mirrored.
func (a *App) Load(ctx context.Context, loc string) (*graph.Graph, error) {
	doc, _, err := a.ReadDocument(ctx, loc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", loc, err)
	}
	g := a.NewGraph(graph.WithDirected(doc.Manifest.Directed))
	p := g.Transaction(func(_ context.Context, g *graph.Graph) error {
		_, err := wire.Import(g, doc)
		return err
	})
	err = g.Drain(ctx)
	if err == nil {
		err = p.Err()
	}
	if err != nil {
		_ = g.Dispose(context.Background())
		return nil, fmt.Errorf("%s: %w", loc, err)
	}
	a.Logger.Info("loaded", "location", loc, "vertices", g.VertexCount(), "edges", g.EdgeCount())
	return g, nil
}

// Close flushes telemetry.
func (a *App) Close(ctx context.Context) error {
	if a.shutdown == nil {
		return nil
	}
	err := a.shutdown(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
