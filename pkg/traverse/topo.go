package traverse

import (
	"fmt"

	"github.com/DrSkyle/texgraph/pkg/graph"
)

// TopologicalSort orders vs so that for every edge u->v inside the set, u comes before v.
// A nil vs sorts the whole graph.
func TopologicalSort(g *graph.Graph, vs []graph.Vertex) ([]graph.Vertex, error) {
	if !g.IsDirected() {
		return nil, ErrUndirected
	}
	if vs == nil {
		vs = g.Vertices()
	}

	subset := make(map[uint32]bool, len(vs))
	for _, v := range vs {
		if !v.Valid() {
			return nil, fmt.Errorf("vertex %d: %w", v.ID(), graph.ErrVertexNotFound)
		}
		subset[v.ID()] = true
	}

	visited := make(map[uint32]bool)
	onStack := make(map[uint32]bool)
	sorted := make([]graph.Vertex, 0, len(vs))
	var cycle error

	var visit func(v graph.Vertex)
	visit = func(v graph.Vertex) {
		if cycle != nil || visited[v.ID()] {
			return
		}
		if onStack[v.ID()] {
			cycle = fmt.Errorf("through vertex %d: %w", v.ID(), ErrCycle)
			return
		}
		onStack[v.ID()] = true
		for _, e := range v.Out() {
			if next := e.V(); subset[next.ID()] {
				visit(next)
			}
		}
		onStack[v.ID()] = false
		visited[v.ID()] = true
		sorted = append(sorted, v)
	}

	for _, v := range vs {
		visit(v)
		if cycle != nil {
			return nil, cycle
		}
	}

	for i, j := 0, len(sorted)-1; i < j; i, j = i+1, j-1 {
		sorted[i], sorted[j] = sorted[j], sorted[i]
	}
	return sorted, nil
}
