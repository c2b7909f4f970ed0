// Package config defines the typed configuration shared by the CLI and embedding hosts.
package config

import (
	"errors"
	"fmt"
	"strings"
)

// Config holds every tunable of a texgraph process.
type Config struct {
	// Directed selects the directed graph variant for new documents.
	Directed bool `mapstructure:"directed"`
	// JitterRadius bounds the random offset given to vertices created without a position.
	JitterRadius float64 `mapstructure:"jitter_radius"`
	// InitialCapacity is the number of records preallocated per packed array.
	InitialCapacity int `mapstructure:"initial_capacity"`
	// TextureWidth is the row width of buffers allocated for the in-memory mirror.
	TextureWidth int `mapstructure:"texture_width"`
	// HistoryLimit caps undo depth. Zero keeps all history.
	HistoryLimit int `mapstructure:"history_limit"`
	// Seed feeds the position jitter. Zero picks a random seed.
	Seed uint64 `mapstructure:"seed"`

	JSONLogs bool `mapstructure:"json_logs"`
	Verbose  bool `mapstructure:"verbose"`

	// Telemetry config.
	OtelEndpoint  string `mapstructure:"otel_endpoint"`
	SkipTelemetry bool   `mapstructure:"skip_telemetry"`

	// CompressWire enables snappy compression when saving wire files.
	CompressWire bool `mapstructure:"compress_wire"`

	// S3 settings for s3:// document locations. Credentials come from the AWS default chain.
	S3Region   string `mapstructure:"s3_region"`
	S3Endpoint string `mapstructure:"s3_endpoint"`

	Bench BenchConfig `mapstructure:"bench"`
}

// BenchConfig sizes the synthetic edit storm run by the bench command.
type BenchConfig struct {
	// Documents is the number of independent graphs edited in parallel.
	Documents int `mapstructure:"documents"`
	// Transactions is the number of transactions queued per document.
	Transactions int `mapstructure:"transactions"`
	// OpsPerTransaction is the number of random edits inside one transaction.
	OpsPerTransaction int `mapstructure:"ops_per_transaction"`
	// UndoRatio is the fraction of transactions replaced by an undo.
	UndoRatio float64 `mapstructure:"undo_ratio"`
}

// Defaults.
const (
	DefaultJitterRadius    = 50.0
	DefaultInitialCapacity = 64
	DefaultTextureWidth    = 1024
	DefaultHistoryLimit    = 256
)

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		JitterRadius:    DefaultJitterRadius,
		InitialCapacity: DefaultInitialCapacity,
		TextureWidth:    DefaultTextureWidth,
		HistoryLimit:    DefaultHistoryLimit,
		CompressWire:    true,
		SkipTelemetry:   true,
		Bench:           DefaultBenchConfig(),
	}
}

// DefaultBenchConfig returns the default bench workload.
func DefaultBenchConfig() BenchConfig {
	return BenchConfig{
		Documents:         4,
		Transactions:      500,
		OpsPerTransaction: 8,
		UndoRatio:         0.1,
	}
}

// Validate reports every out-of-range field.
func (c Config) Validate() error {
	var errs []error
	if c.JitterRadius < 0 {
		errs = append(errs, fmt.Errorf("jitter_radius must be >= 0, got %v", c.JitterRadius))
	}
	if c.InitialCapacity < 1 {
		errs = append(errs, fmt.Errorf("initial_capacity must be >= 1, got %d", c.InitialCapacity))
	}
	if c.TextureWidth < 1 {
		errs = append(errs, fmt.Errorf("texture_width must be >= 1, got %d", c.TextureWidth))
	}
	if c.HistoryLimit < 0 {
		errs = append(errs, fmt.Errorf("history_limit must be >= 0, got %d", c.HistoryLimit))
	}
	if c.Bench.Documents < 1 || c.Bench.Transactions < 0 || c.Bench.OpsPerTransaction < 1 {
		errs = append(errs, fmt.Errorf("bench workload out of range: %+v", c.Bench))
	}
	if c.S3Endpoint != "" && !strings.HasPrefix(c.S3Endpoint, "http://") && !strings.HasPrefix(c.S3Endpoint, "https://") {
		errs = append(errs, fmt.Errorf("s3_endpoint must be an http(s) URL, got %q", c.S3Endpoint))
	}
	if c.Bench.UndoRatio < 0 || c.Bench.UndoRatio > 1 {
		errs = append(errs, fmt.Errorf("bench.undo_ratio must be within [0,1], got %v", c.Bench.UndoRatio))
	}
	return errors.Join(errs...)
}
