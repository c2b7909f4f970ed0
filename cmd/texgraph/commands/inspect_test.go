package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/DrSkyle/texgraph/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectAndConvert(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, true)
	g := a.NewGraph()
	g.Transaction(func(_ context.Context, g *graph.Graph) error {
		if _, err := g.VertexAux().CreateProperty("rank", graph.PropertyInteger); err != nil {
			return err
		}
		_, err := g.AddEdge(g.AddVertexAt(0, 0), g.AddVertexAt(1, 1))
		return err
	})
	require.NoError(t, g.Drain(ctx))

	dir := t.TempDir()
	src := filepath.Join(dir, "a.txg")
	require.NoError(t, a.Save(ctx, src, g))

	var out bytes.Buffer
	require.NoError(t, inspect(ctx, a, &out, src))
	assert.Contains(t, out.String(), "wire v1, snappy, checksum crc32")
	assert.Contains(t, out.String(), "2 vertices, 1 edges")
	assert.Contains(t, out.String(), "directed: true")
	assert.Contains(t, out.String(), "name: rank")

	dst := filepath.Join(dir, "b.txg")
	convertCompress, convertChecksum = "none", false
	t.Cleanup(func() { convertCompress, convertChecksum = "snappy", true })
	ConvertCmd.SetOut(&out)
	require.NoError(t, ConvertCmd.RunE(ConvertCmd, []string{src, dst}))

	out.Reset()
	require.NoError(t, inspect(ctx, a, &out, dst))
	assert.Contains(t, out.String(), "wire v1, none, checksum none")

	h, err := a.Load(ctx, dst)
	require.NoError(t, err)
	assert.Equal(t, 1, h.EdgeCount())
}

func TestListDocuments(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, false)
	g := a.NewGraph()
	dir := t.TempDir()
	for _, name := range []string{"b.txg", "a.txg", "nested/c.txg"} {
		require.NoError(t, a.Save(ctx, filepath.Join(dir, name), g))
	}

	var out bytes.Buffer
	ListCmd.SetOut(&out)
	t.Cleanup(func() { ListCmd.SetOut(nil) })
	require.NoError(t, ListCmd.RunE(ListCmd, []string{dir}))

	want := filepath.Join(dir, "a.txg") + "\n" +
		filepath.Join(dir, "b.txg") + "\n" +
		filepath.Join(dir, "nested", "c.txg") + "\n"
	assert.Equal(t, want, out.String())
}
