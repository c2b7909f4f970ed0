package graph

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

func buildDumpFixture(t *testing.T) (*Graph, Vertex) {
	t.Helper()
	g := newTestGraph(true)
	_, err := g.VertexAux().CreateProperty("rank", PropertyInteger)
	require.NoError(t, err)
	_, err = g.EdgeAux().CreateProperty("weight", PropertyInteger)
	require.NoError(t, err)
	_, err = g.EdgeAux().CreateProperty("parent", PropertyVertexRef)
	require.NoError(t, err)

	a := g.AddVertexAt(0, 0)
	b := g.AddVertexAt(10, 0)
	c := g.AddVertexAt(5, 5)
	ab, err := g.AddEdge(a, b)
	require.NoError(t, err)
	_, err = g.AddEdge(b, a)
	require.NoError(t, err)
	bc, err := g.AddEdge(b, c)
	require.NoError(t, err)

	require.NoError(t, a.SetProperty("rank", 1))
	require.NoError(t, b.SetSelected(true))
	require.NoError(t, ab.SetProperty("weight", 7))
	require.NoError(t, bc.SetProperty("parent", int32(b.ID())))
	return g, a
}

func TestDumpGolden(t *testing.T) {
	gd := goldie.New(t)
	g, a := buildDumpFixture(t)

	var buf bytes.Buffer
	require.NoError(t, g.Dump(&buf))
	gd.Assert(t, "dump_directed", buf.Bytes())

	require.NoError(t, a.Delete())
	require.NoError(t, g.Check())
	buf.Reset()
	require.NoError(t, g.Dump(&buf))
	gd.Assert(t, "dump_after_delete", buf.Bytes())
}
