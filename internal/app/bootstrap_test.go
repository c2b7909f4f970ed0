package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DrSkyle/texgraph/pkg/config"
	"github.com/DrSkyle/texgraph/pkg/graph"
	"github.com/DrSkyle/texgraph/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.TextureWidth = 0
	_, err := New(context.Background(), cfg, &bytes.Buffer{})
	assert.ErrorContains(t, err, "texture_width")
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Directed = true
	cfg.JSONLogs = true
	var logs bytes.Buffer
	a, err := New(ctx, cfg, &logs)
	require.NoError(t, err)
	defer a.Close(ctx)

	g := a.NewGraph()
	require.True(t, g.IsDirected())
	p := g.Transaction(func(_ context.Context, g *graph.Graph) error {
		vs := []graph.Vertex{g.AddVertexAt(0, 0), g.AddVertexAt(1, 1), g.AddVertexAt(2, 2)}
		_, err := g.Cliqueify(vs)
		return err
	})
	require.NoError(t, g.Drain(ctx))
	require.NoError(t, p.Err())

	path := filepath.Join(t.TempDir(), "g.txgw")
	require.NoError(t, a.Save(ctx, path, g))

	loaded, err := a.Load(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.VertexCount())
	assert.Equal(t, 6, loaded.EdgeCount())
	assert.NotEqual(t, g.ID(), loaded.ID())

	_, h, err := a.ReadDocument(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, a.Format(), h.Format)
	assert.True(t, strings.Contains(logs.String(), `"msg":"saved"`))
}

func TestLoadDisposesGraphOnImportFailure(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Verbose = true
	cfg.JSONLogs = true
	var logs bytes.Buffer
	a, err := New(ctx, cfg, &logs)
	require.NoError(t, err)
	defer a.Close(ctx)

	doc := &wire.Document{
		Vertices: []wire.VertexEntry{{ID: 1}},
		Edges:    []wire.EdgeEntry{{U: 1, V: 7}},
	}
	var buf bytes.Buffer
	require.NoError(t, wire.Encode(&buf, doc, a.Format()))
	path := filepath.Join(t.TempDir(), "dangling.txgw")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	g, err := a.Load(ctx, path)
	assert.Nil(t, g)
	assert.ErrorIs(t, err, wire.ErrDanglingReference)
	assert.Contains(t, logs.String(), `"msg":"disposed"`)
	assert.NotContains(t, logs.String(), `"msg":"loaded"`)
}
