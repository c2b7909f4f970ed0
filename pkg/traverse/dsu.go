package traverse

import (
	"slices"
	"sync"

	"github.com/DrSkyle/texgraph/pkg/graph"
)

// UnionFind is a disjoint-set forest over dense indices.
type UnionFind struct {
	parent []int
	rank   []int
	mu     sync.RWMutex
}

// NewUnionFind creates n singleton sets.
func NewUnionFind(n int) *UnionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &UnionFind{parent: parent, rank: make([]int, n)}
}

// Find returns the representative of i's set, or -1 if i is out of range.
func (uf *UnionFind) Find(i int) int {
	uf.mu.Lock() // path compression writes
	defer uf.mu.Unlock()
	return uf.find(i)
}

func (uf *UnionFind) find(i int) int {
	if i < 0 || i >= len(uf.parent) {
		return -1
	}
	for uf.parent[i] != i {
		uf.parent[i] = uf.parent[uf.parent[i]]
		i = uf.parent[i]
	}
	return i
}

// Union merges the sets of i and j and reports whether they were distinct.
func (uf *UnionFind) Union(i, j int) bool {
	uf.mu.Lock()
	defer uf.mu.Unlock()

	ri, rj := uf.find(i), uf.find(j)
	if ri == -1 || rj == -1 || ri == rj {
		return false
	}
	switch {
	case uf.rank[ri] < uf.rank[rj]:
		uf.parent[ri] = rj
	case uf.rank[ri] > uf.rank[rj]:
		uf.parent[rj] = ri
	default:
		uf.parent[rj] = ri
		uf.rank[ri]++
	}
	return true
}

// Connected reports whether i and j share a set.
func (uf *UnionFind) Connected(i, j int) bool {
	return uf.Find(i) == uf.Find(j)
}

// Resize grows the forest with new singletons.
func (uf *UnionFind) Resize(n int) {
	uf.mu.Lock()
	defer uf.mu.Unlock()
	for i := len(uf.parent); i < n; i++ {
		uf.parent = append(uf.parent, i)
		uf.rank = append(uf.rank, 0)
	}
}

// Components groups vertices into weakly connected components. Components are ordered by
// their lowest physical index and list members in physical order.
func Components(g *graph.Graph) [][]graph.Vertex {
	vs := g.Vertices()
	uf := NewUnionFind(len(vs))
	for _, e := range g.Edges() {
		uf.Union(e.U().Index(), e.V().Index())
	}

	groups := map[int][]graph.Vertex{}
	var roots []int
	for i, v := range vs {
		r := uf.Find(i)
		if _, ok := groups[r]; !ok {
			roots = append(roots, r)
		}
		groups[r] = append(groups[r], v)
	}
	out := make([][]graph.Vertex, 0, len(roots))
	for _, r := range roots {
		out = append(out, groups[r])
	}
	return slices.Clip(out)
}
