package traverse

import (
	"github.com/DrSkyle/texgraph/pkg/graph"
)

// Filter decides whether a search may cross edge e from one vertex to the next.
type Filter func(from, to graph.Vertex, e graph.Edge) bool

// BFS visits every vertex reachable from roots in breadth-first order, following edge
// direction on directed graphs.
func BFS(roots ...graph.Vertex) (*Tree, error) {
	return Reach(nil, roots...)
}

// Reach is BFS restricted to edges accepted by allow. A nil filter accepts every edge.
func Reach(allow Filter, roots ...graph.Vertex) (*Tree, error) {
	if err := checkRoots(roots); err != nil {
		return nil, err
	}
	t := newTree()
	var queue []graph.Vertex
	for _, r := range roots {
		if t.Reached(r.ID()) {
			continue
		}
		t.Depth[r.ID()] = 0
		t.Order = append(t.Order, r.ID())
		queue = append(queue, r)
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range forward(cur) {
			next := e.Other(cur)
			if t.Reached(next.ID()) {
				continue
			}
			if allow != nil && !allow(cur, next, e) {
				continue
			}
			t.Depth[next.ID()] = t.Depth[cur.ID()] + 1
			t.Parent[next.ID()] = cur.ID()
			t.Order = append(t.Order, next.ID())
			queue = append(queue, next)
		}
	}
	return t, nil
}

// DFS visits every vertex reachable from roots in depth-first preorder. Neighbours are
// explored in edge-id order.
func DFS(roots ...graph.Vertex) (*Tree, error) {
	if err := checkRoots(roots); err != nil {
		return nil, err
	}
	t := newTree()
	var visit func(v graph.Vertex, depth int)
	visit = func(v graph.Vertex, depth int) {
		t.Depth[v.ID()] = depth
		t.Order = append(t.Order, v.ID())
		for _, e := range forward(v) {
			next := e.Other(v)
			if t.Reached(next.ID()) {
				continue
			}
			t.Parent[next.ID()] = v.ID()
			visit(next, depth+1)
		}
	}
	for _, r := range roots {
		if !t.Reached(r.ID()) {
			visit(r, 0)
		}
	}
	return t, nil
}

// Isolated returns the vertices no root can reach, in physical order.
func Isolated(g *graph.Graph, allow Filter, roots ...graph.Vertex) ([]graph.Vertex, error) {
	t, err := Reach(allow, roots...)
	if err != nil {
		return nil, err
	}
	var out []graph.Vertex
	for _, v := range g.Vertices() {
		if !t.Reached(v.ID()) {
			out = append(out, v)
		}
	}
	return out, nil
}
