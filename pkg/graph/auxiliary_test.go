package graph

import (
	"context"
	"fmt"
	"testing"

	"github.com/DrSkyle/texgraph/pkg/gpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePropertyBackfillsNull(t *testing.T) {
	g := newTestGraph(false)
	for i := 0; i < 3; i++ {
		g.AddVertexAt(float32(i), 0)
	}
	aux := g.VertexAux()

	for name, typ := range map[string]PropertyType{
		"weight": PropertyInteger,
		"parent": PropertyVertexRef,
		"via":    PropertyEdgeRef,
	} {
		_, err := aux.CreateProperty(name, typ)
		require.NoError(t, err)
		for _, v := range g.Vertices() {
			got, err := v.Property(name)
			require.NoError(t, err)
			assert.Equal(t, typ.Null(), got, name)
		}
	}
	assert.Equal(t, NullInteger, PropertyInteger.Null())
	assert.Equal(t, int32(-1), PropertyVertexRef.Null())

	v := g.AddVertexAt(9, 9)
	got, err := v.Property("weight")
	require.NoError(t, err)
	assert.Equal(t, NullInteger, got)
}

func TestPropertyContractErrors(t *testing.T) {
	g := newTestGraph(false)
	aux := g.EdgeAux()
	_, err := aux.CreateProperty("w", PropertyInteger)
	require.NoError(t, err)

	_, err = aux.CreateProperty("w", PropertyInteger)
	assert.ErrorIs(t, err, ErrPropertyExists)
	_, err = aux.CreateProperty("z", PropertyType(9))
	assert.ErrorIs(t, err, ErrUnknownPropertyType)
	_, err = aux.CreateProperty("", PropertyInteger)
	assert.ErrorIs(t, err, ErrInvalidPropertyName)
	assert.ErrorIs(t, aux.DeleteProperty("missing"), ErrPropertyNotFound)
	assert.ErrorIs(t, aux.Set("missing", 0, 1), ErrPropertyNotFound)
	assert.ErrorIs(t, aux.Set("w", 0, 1), ErrIndexOutOfRange)
	assert.ErrorIs(t, aux.SetPropertyType("w", PropertyType(7)), ErrUnknownPropertyType)

	_, err = ParsePropertyType("float")
	assert.ErrorIs(t, err, ErrUnknownPropertyType)
	pt, err := ParsePropertyType("vertex")
	require.NoError(t, err)
	assert.Equal(t, PropertyVertexRef, pt)
}

func TestDeletePropertyCompactsChannels(t *testing.T) {
	g := newTestGraph(false)
	vs := []Vertex{g.AddVertexAt(0, 0), g.AddVertexAt(1, 0), g.AddVertexAt(2, 0)}
	aux := g.VertexAux()

	names := []string{"p0", "p1", "p2", "p3", "p4", "p5"}
	for _, n := range names {
		_, err := aux.CreateProperty(n, PropertyInteger)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, aux.Arrays())
	for i, v := range vs {
		for j, n := range names {
			require.NoError(t, v.SetProperty(n, int32(100*i+j)))
		}
	}

	// Deleting the last-created property leaves the others intact.
	require.NoError(t, aux.DeleteProperty("p5"))
	// Deleting from the middle moves the last channel into the hole.
	require.NoError(t, aux.DeleteProperty("p1"))
	assert.Equal(t, 1, aux.Arrays())

	p4, ok := aux.Property("p4")
	require.True(t, ok)
	assert.Equal(t, 1, p4.Channel)

	for i, v := range vs {
		for j, n := range []string{"p0", "p2", "p3", "p4"} {
			want := []int32{0, 2, 3, 4}[j]
			got, err := v.Property(n)
			require.NoError(t, err)
			assert.Equal(t, int32(100*i)+want, got, fmt.Sprintf("vertex %d %s", i, n))
		}
	}
}

func TestRenameAndRetypeProperty(t *testing.T) {
	g := newTestGraph(false)
	v := g.AddVertexAt(0, 0)
	aux := g.VertexAux()
	_, err := aux.CreateProperty("a", PropertyInteger)
	require.NoError(t, err)
	_, err = aux.CreateProperty("b", PropertyInteger)
	require.NoError(t, err)
	require.NoError(t, v.SetProperty("a", 5))

	assert.ErrorIs(t, aux.RenameProperty("a", "b"), ErrPropertyExists)
	require.NoError(t, aux.RenameProperty("a", "c"))
	got, err := v.Property("c")
	require.NoError(t, err)
	assert.Equal(t, int32(5), got)

	require.NoError(t, aux.SetPropertyType("c", PropertyEdgeRef))
	got, err = v.Property("c")
	require.NoError(t, err)
	assert.Equal(t, NullRef, got)
}

func TestEdgePropertiesFollowCompaction(t *testing.T) {
	g := newTestGraph(true)
	a, b, c := g.AddVertexAt(0, 0), g.AddVertexAt(1, 0), g.AddVertexAt(2, 0)
	_, err := g.EdgeAux().CreateProperty("w", PropertyInteger)
	require.NoError(t, err)

	ab, _ := g.AddEdge(a, b)
	bc, _ := g.AddEdge(b, c)
	ca, _ := g.AddEdge(c, a)
	require.NoError(t, ab.SetProperty("w", 1))
	require.NoError(t, bc.SetProperty("w", 2))
	require.NoError(t, ca.SetProperty("w", 3))

	require.NoError(t, ab.Delete())
	w, err := ca.Property("w")
	require.NoError(t, err)
	assert.Equal(t, int32(3), w)
	w, err = bc.Property("w")
	require.NoError(t, err)
	assert.Equal(t, int32(2), w)
}

func TestAuxiliaryBuffersTrackArrays(t *testing.T) {
	var made []*gpu.MemoryBuffer
	factory := func(label string) gpu.Buffer {
		b := gpu.NewMemoryBuffer(label, 16)
		made = append(made, b)
		return b
	}
	g := newTestGraph(false, WithBufferFactory(factory))
	ctx := context.Background()

	apply(t, g, func(g *Graph) error {
		g.AddVertexAt(0, 0)
		for i := 0; i < 5; i++ {
			if _, err := g.VertexAux().CreateProperty(fmt.Sprint("p", i), PropertyInteger); err != nil {
				return err
			}
		}
		return nil
	})
	// vertices, edges, then two auxiliary arrays.
	require.Len(t, made, 4)
	assert.Equal(t, "vertex-aux-1", made[3].Label())

	apply(t, g, func(g *Graph) error { return g.VertexAux().DeleteProperty("p4") })
	assert.Equal(t, 0, made[3].Size())

	data, err := made[2].Read(ctx, 0, 1)
	require.NoError(t, err)
	assert.Len(t, data, 4)
}
