package config

import (
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Directed {
		t.Error("Expected undirected graphs by default")
	}
	if cfg.HistoryLimit != DefaultHistoryLimit {
		t.Errorf("Expected HistoryLimit %d, got %d", DefaultHistoryLimit, cfg.HistoryLimit)
	}
	if cfg.TextureWidth != 1024 {
		t.Errorf("Expected TextureWidth 1024, got %d", cfg.TextureWidth)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config must validate: %v", err)
	}
}

func TestDefaultBenchConfig(t *testing.T) {
	b := DefaultBenchConfig()
	if b.UndoRatio >= 1.0 {
		t.Error("UndoRatio must leave room for edits")
	}
	if b.Documents < 1 {
		t.Errorf("Expected at least one document, got %d", b.Documents)
	}
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := Default()
	cfg.InitialCapacity = 0
	cfg.HistoryLimit = -1
	cfg.Bench.UndoRatio = 2
	cfg.S3Endpoint = "localhost:4566"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected validation error")
	}
	for _, key := range []string{"initial_capacity", "history_limit", "undo_ratio", "s3_endpoint"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("Expected error to mention %s, got %q", key, err)
		}
	}
}
