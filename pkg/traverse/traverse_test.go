package traverse

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/DrSkyle/texgraph/pkg/graph"
)

// build creates vertices 1..n and the listed edges, returning the handles by id-1.
func build(t *testing.T, directed bool, n int, edges [][2]int) (*graph.Graph, []graph.Vertex) {
	t.Helper()
	g := graph.New(graph.WithDirected(directed))
	vs := make([]graph.Vertex, n)
	for i := range vs {
		vs[i] = g.AddVertexAt(float32(i), 0)
	}
	for _, e := range edges {
		if _, err := g.AddEdge(vs[e[0]], vs[e[1]]); err != nil {
			t.Fatalf("AddEdge %v: %v", e, err)
		}
	}
	return g, vs
}

func TestTopologicalSort(t *testing.T) {
	// instance -> subnet -> vpc, plus instance -> vpc.
	g, vs := build(t, true, 3, [][2]int{{2, 1}, {1, 0}, {2, 0}})

	sorted, err := TopologicalSort(g, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	var ids []uint32
	for _, v := range sorted {
		ids = append(ids, v.ID())
	}
	expected := []uint32{vs[2].ID(), vs[1].ID(), vs[0].ID()}
	if !reflect.DeepEqual(ids, expected) {
		t.Errorf("Expected %v, got %v", expected, ids)
	}
}

func TestTopologicalSortSubset(t *testing.T) {
	g, vs := build(t, true, 3, [][2]int{{0, 1}, {1, 2}, {2, 0}})

	// The cycle is broken once vertex 2 is left out.
	sorted, err := TopologicalSort(g, []graph.Vertex{vs[1], vs[0]})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(sorted) != 2 || sorted[0].ID() != vs[0].ID() {
		t.Errorf("Expected v1 first, got %v", sorted)
	}
}

func TestCycleDetection(t *testing.T) {
	g, _ := build(t, true, 2, [][2]int{{0, 1}, {1, 0}})
	if _, err := TopologicalSort(g, nil); !errors.Is(err, ErrCycle) {
		t.Errorf("Expected ErrCycle, got %v", err)
	}

	u, _ := build(t, false, 2, nil)
	if _, err := TopologicalSort(u, nil); !errors.Is(err, ErrUndirected) {
		t.Errorf("Expected ErrUndirected, got %v", err)
	}
}

func TestBFSDepthsAndPaths(t *testing.T) {
	// 0 -> 1 -> 2 -> 3, 0 -> 3
	g, vs := build(t, true, 5, [][2]int{{0, 1}, {1, 2}, {2, 3}, {0, 3}})
	_ = g

	tree, err := BFS(vs[0])
	if err != nil {
		t.Fatal(err)
	}
	if d := tree.Depth[vs[3].ID()]; d != 1 {
		t.Errorf("Expected depth 1 for v4, got %d", d)
	}
	if d := tree.Depth[vs[2].ID()]; d != 2 {
		t.Errorf("Expected depth 2 for v3, got %d", d)
	}
	if tree.Reached(vs[4].ID()) {
		t.Error("v5 has no incoming edge and must not be reached")
	}
	want := []uint32{vs[0].ID(), vs[1].ID(), vs[2].ID()}
	if got := tree.PathTo(vs[2].ID()); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected path %v, got %v", want, got)
	}
	if tree.PathTo(vs[4].ID()) != nil {
		t.Error("Expected nil path to unreached vertex")
	}
}

func TestDFSPreorder(t *testing.T) {
	_, vs := build(t, false, 4, [][2]int{{0, 1}, {1, 2}, {0, 3}})
	tree, err := DFS(vs[0])
	if err != nil {
		t.Fatal(err)
	}
	want := []uint32{1, 2, 3, 4}
	if !reflect.DeepEqual(tree.Order, want) {
		t.Errorf("Expected order %v, got %v", want, tree.Order)
	}
}

func TestIsolated(t *testing.T) {
	// gateway -> vpc -> public; vpc -> private is blocked; orphan has no edges.
	g, vs := build(t, true, 5, [][2]int{{0, 1}, {1, 2}, {1, 3}})
	private := vs[3]
	blockPrivate := func(_, to graph.Vertex, _ graph.Edge) bool {
		return to.ID() != private.ID()
	}

	dark, err := Isolated(g, blockPrivate, vs[0])
	if err != nil {
		t.Fatal(err)
	}
	var ids []uint32
	for _, v := range dark {
		ids = append(ids, v.ID())
	}
	want := []uint32{vs[3].ID(), vs[4].ID()}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("Expected isolated %v, got %v", want, ids)
	}
}

func TestComponents(t *testing.T) {
	g, _ := build(t, true, 6, [][2]int{{0, 1}, {2, 1}, {3, 4}})
	comps := Components(g)
	var sizes []int
	for _, c := range comps {
		sizes = append(sizes, len(c))
	}
	if !reflect.DeepEqual(sizes, []int{3, 2, 1}) {
		t.Errorf("Expected component sizes [3 2 1], got %v", sizes)
	}
}

func TestUnionFind(t *testing.T) {
	uf := NewUnionFind(3)
	if !uf.Union(0, 1) {
		t.Error("Expected first union to merge")
	}
	if uf.Union(1, 0) {
		t.Error("Expected repeated union to be a no-op")
	}
	uf.Resize(5)
	uf.Union(3, 4)
	if !uf.Connected(0, 1) || uf.Connected(1, 3) {
		t.Error("Unexpected connectivity")
	}
	if uf.Find(9) != -1 {
		t.Error("Expected -1 for out of range")
	}
}

func TestDijkstraUsesWeightProperty(t *testing.T) {
	g, vs := build(t, true, 4, nil)
	if _, err := g.EdgeAux().CreateProperty("w", graph.PropertyInteger); err != nil {
		t.Fatal(err)
	}
	add := func(a, b int, w int32) {
		e, err := g.AddEdge(vs[a], vs[b])
		if err != nil {
			t.Fatal(err)
		}
		if err := e.SetProperty("w", w); err != nil {
			t.Fatal(err)
		}
	}
	add(0, 1, 10)
	add(0, 2, 1)
	add(2, 1, 2)
	add(1, 3, 1)

	paths, err := Dijkstra(g, vs[0], "w")
	if err != nil {
		t.Fatal(err)
	}
	if d := paths.Dist[vs[3].ID()]; d != 4 {
		t.Errorf("Expected distance 4, got %d", d)
	}
	want := []uint32{vs[0].ID(), vs[2].ID(), vs[1].ID(), vs[3].ID()}
	if got := paths.PathTo(vs[3].ID()); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected path %v, got %v", want, got)
	}

	if _, err := Dijkstra(g, vs[0], "missing"); !errors.Is(err, graph.ErrPropertyNotFound) {
		t.Errorf("Expected ErrPropertyNotFound, got %v", err)
	}
	e, _ := g.EdgeFromTo(vs[1], vs[3])
	_ = e.SetProperty("w", -1)
	if _, err := Dijkstra(g, vs[0], "w"); !errors.Is(err, ErrNegativeWeight) {
		t.Errorf("Expected ErrNegativeWeight, got %v", err)
	}
}

func TestAnnotateInsideTransaction(t *testing.T) {
	g, vs := build(t, false, 3, [][2]int{{0, 1}})
	tree, err := BFS(vs[0])
	if err != nil {
		t.Fatal(err)
	}
	p := g.Transaction(func(_ context.Context, g *graph.Graph) error {
		return tree.Annotate(g, "parent", "depth")
	})
	if err := g.Drain(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := p.Err(); err != nil {
		t.Fatal(err)
	}

	parent, _ := vs[1].Property("parent")
	if parent != int32(vs[0].ID()) {
		t.Errorf("Expected parent %d, got %d", vs[0].ID(), parent)
	}
	depth, _ := vs[2].Property("depth")
	if depth != graph.NullInteger {
		t.Errorf("Expected null depth for unreached vertex, got %d", depth)
	}
	root, _ := vs[0].Property("parent")
	if root != graph.NullRef {
		t.Errorf("Expected null parent for root, got %d", root)
	}
}
