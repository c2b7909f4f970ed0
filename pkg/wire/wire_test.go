package wire

import (
	"bytes"
	"context"
	"testing"

	"github.com/DrSkyle/texgraph/pkg/graph"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// fixture builds a small directed graph with one property of each type, then deletes a vertex
// so ids and indices diverge.
func fixture(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New(graph.WithDirected(true), graph.WithID("fixture"))
	p := g.Transaction(func(_ context.Context, g *graph.Graph) error {
		_, err := g.VertexAux().CreateProperty("rank", graph.PropertyInteger)
		require.NoError(t, err)
		_, err = g.VertexAux().CreateProperty("parent", graph.PropertyVertexRef)
		require.NoError(t, err)
		_, err = g.EdgeAux().CreateProperty("twin", graph.PropertyEdgeRef)
		require.NoError(t, err)

		gone := g.AddVertexAt(-1, -1)
		a := g.AddVertexAt(0, 0)
		b := g.AddVertexAt(3, 4)
		c := g.AddVertexAt(6, 8)
		ab, _ := g.AddEdge(a, b)
		ba, _ := g.AddEdge(b, a)
		_, _ = g.AddEdge(b, c)
		require.NoError(t, ab.SetProperty("twin", int32(ba.ID())))
		require.NoError(t, ba.SetProperty("twin", int32(ab.ID())))
		require.NoError(t, c.SetProperty("parent", int32(b.ID())))
		require.NoError(t, b.SetProperty("rank", 2))
		require.NoError(t, a.SetProperty("parent", int32(gone.ID())))
		return gone.Delete()
	})
	require.NoError(t, g.Drain(context.Background()))
	require.NoError(t, p.Err())
	return g
}

func dump(t *testing.T, g *graph.Graph) string {
	t.Helper()
	var b bytes.Buffer
	require.NoError(t, g.Dump(&b))
	return b.String()
}

func TestEncodeDecodeAllFormats(t *testing.T) {
	doc := Export(fixture(t))
	for _, f := range []Format{
		NewFormat(Uncompressed, NoChecksum),
		NewFormat(Uncompressed, CRC32),
		NewFormat(Snappy, CRC32),
	} {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, doc, f))
		got, h, err := Decode(&buf)
		require.NoError(t, err)
		assert.Equal(t, f, h.Format)
		assert.Equal(t, doc, got)
	}
}

func TestExportRemapsReferences(t *testing.T) {
	doc := Export(fixture(t))
	require.Len(t, doc.Vertices, 3)
	require.Len(t, doc.Edges, 3)

	// Deleting the first vertex moved c to the front; a's parent pointed at the deleted vertex.
	assert.Equal(t, doc.Vertices[2].ID, uint32(doc.Vertices[0].Props[1]))
	assert.Equal(t, graph.NullRef, doc.Vertices[1].Props[1])
	// twin references are document positions.
	assert.Equal(t, int32(2), doc.Edges[0].Props[0])
	assert.Equal(t, int32(1), doc.Edges[1].Props[0])
	assert.Equal(t, graph.NullRef, doc.Edges[2].Props[0])
}

func TestImportRemapsIdentities(t *testing.T) {
	src := fixture(t)
	doc := Export(src)

	dst := graph.New(graph.WithDirected(true))
	var res *Imported
	p := dst.Transaction(func(_ context.Context, g *graph.Graph) error {
		var err error
		res, err = Import(g, doc)
		return err
	})
	require.NoError(t, dst.Drain(context.Background()))
	require.NoError(t, p.Err())
	require.NoError(t, dst.Check())

	assert.Len(t, res.Vertices, 3)
	assert.Equal(t, src.EdgeCount(), dst.EdgeCount())
	for i, de := range doc.Edges {
		e, ok := dst.Edge(res.Edges[i])
		require.True(t, ok)
		assert.Equal(t, res.Vertices[de.U], e.U().ID())
		assert.Equal(t, res.Vertices[de.V], e.V().ID())
	}
	c, ok := dst.Vertex(res.Vertices[doc.Vertices[0].ID])
	require.True(t, ok)
	parent, err := c.Property("parent")
	require.NoError(t, err)
	assert.Equal(t, int32(res.Vertices[doc.Vertices[2].ID]), parent)

	e, ok := dst.Edge(res.Edges[0])
	require.True(t, ok)
	assert.True(t, e.IsDual())
	twin, err := e.Property("twin")
	require.NoError(t, err)
	assert.Equal(t, int32(res.Edges[1]), twin)
}

func TestImportRejectsWithoutTouchingGraph(t *testing.T) {
	cases := map[string]struct {
		graph  func() *graph.Graph
		mutate func(d *Document)
		want   error
	}{
		"directed mismatch": {
			graph: func() *graph.Graph { return graph.New() },
			want:  ErrDirectedMismatch,
		},
		"property conflict": {
			graph: func() *graph.Graph {
				g := graph.New(graph.WithDirected(true))
				_, _ = g.VertexAux().CreateProperty("rank", graph.PropertyEdgeRef)
				return g
			},
			want: ErrPropertyConflict,
		},
		"dangling endpoint": {
			mutate: func(d *Document) { d.Edges[0].V = 999 },
			want:   ErrDanglingReference,
		},
		"dangling vertex ref": {
			mutate: func(d *Document) { d.Vertices[0].Props[1] = 999 },
			want:   ErrDanglingReference,
		},
		"dangling edge ref": {
			mutate: func(d *Document) { d.Edges[0].Props[0] = 4 },
			want:   ErrDanglingReference,
		},
		"duplicate id": {
			mutate: func(d *Document) { d.Vertices[1].ID = d.Vertices[0].ID },
			want:   ErrDuplicateID,
		},
		"duplicate edge": {
			mutate: func(d *Document) { d.Edges[2] = EdgeEntry{U: d.Edges[0].U, V: d.Edges[0].V, Props: []int32{-1}} },
			want:   graph.ErrEdgeExists,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			d := Export(fixture(t))
			if tc.mutate != nil {
				tc.mutate(d)
			}
			g := graph.New(graph.WithDirected(true))
			if tc.graph != nil {
				g = tc.graph()
			}
			before := dump(t, g)
			_, err := Import(g, d)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, before, dump(t, g))
		})
	}
}

func TestDecodeRejectsCorruption(t *testing.T) {
	doc := Export(fixture(t))
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, doc, NewFormat(Snappy, CRC32)))
	raw := buf.Bytes()

	flipped := bytes.Clone(raw)
	flipped[len(flipped)-1] ^= 0xff
	_, _, err := Decode(bytes.NewReader(flipped))
	assert.ErrorIs(t, err, ErrChecksum)

	_, _, err = Decode(bytes.NewReader(raw[:len(raw)-3]))
	assert.ErrorIs(t, err, ErrTruncated)

	bad := bytes.Clone(raw)
	copy(bad, "NOPE")
	_, _, err = Decode(bytes.NewReader(bad))
	assert.ErrorIs(t, err, ErrBadMagic)

	ver := bytes.Clone(raw)
	ver[4] = 9
	_, _, err = Decode(bytes.NewReader(ver))
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestFormatPacking(t *testing.T) {
	f := NewFormat(Snappy, CRC32)
	c, s := f.Split()
	assert.Equal(t, Snappy, c)
	assert.Equal(t, CRC32, s)
	assert.Equal(t, Format(0x28), f)
}

func TestManifestYAML(t *testing.T) {
	m := Export(fixture(t)).Manifest
	out, err := yaml.Marshal(m)
	require.NoError(t, err)
	goldie.New(t).Assert(t, "manifest", out)

	var back Manifest
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, m, back)
}
