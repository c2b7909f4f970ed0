package traverse

import (
	"container/heap"
	"fmt"

	"github.com/DrSkyle/texgraph/pkg/graph"
)

// Paths is the outcome of a single-source shortest-path search.
type Paths struct {
	*Tree
	// Dist is the total weight from the source.
	Dist map[uint32]int64
}

type item struct {
	id   uint32
	dist int64
}

type frontier []item

func (f frontier) Len() int { return len(f) }
func (f frontier) Less(i, j int) bool {
	if f[i].dist != f[j].dist {
		return f[i].dist < f[j].dist
	}
	return f[i].id < f[j].id
}
func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }
func (f *frontier) Push(x any)   { *f = append(*f, x.(item)) }
func (f *frontier) Pop() any {
	old := *f
	it := old[len(old)-1]
	*f = old[:len(old)-1]
	return it
}

// Dijkstra computes shortest paths from src. Edge weights come from the integer edge
// property weightProp; an empty name or a null value counts as weight 1.
func Dijkstra(g *graph.Graph, src graph.Vertex, weightProp string) (*Paths, error) {
	if err := checkRoots([]graph.Vertex{src}); err != nil {
		return nil, err
	}
	if weightProp != "" {
		p, ok := g.EdgeAux().Property(weightProp)
		if !ok {
			return nil, fmt.Errorf("weight %q: %w", weightProp, graph.ErrPropertyNotFound)
		}
		if p.Type != graph.PropertyInteger {
			return nil, fmt.Errorf("weight %q is a %s property: %w", weightProp, p.Type, graph.ErrUnknownPropertyType)
		}
	}

	res := &Paths{Tree: newTree(), Dist: map[uint32]int64{src.ID(): 0}}
	done := map[uint32]bool{}
	pq := &frontier{{id: src.ID()}}

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(item)
		if done[cur.id] {
			continue
		}
		done[cur.id] = true
		res.Order = append(res.Order, cur.id)
		if p, ok := res.Parent[cur.id]; ok {
			res.Depth[cur.id] = res.Depth[p] + 1
		} else {
			res.Depth[cur.id] = 0
		}

		v, _ := g.Vertex(cur.id)
		for _, e := range forward(v) {
			w, err := weight(e, weightProp)
			if err != nil {
				return nil, err
			}
			next := e.Other(v).ID()
			if done[next] {
				continue
			}
			nd := cur.dist + w
			if old, ok := res.Dist[next]; ok && old <= nd {
				continue
			}
			res.Dist[next] = nd
			res.Parent[next] = cur.id
			heap.Push(pq, item{id: next, dist: nd})
		}
	}
	return res, nil
}

func weight(e graph.Edge, prop string) (int64, error) {
	if prop == "" {
		return 1, nil
	}
	w, err := e.Property(prop)
	if err != nil {
		return 0, err
	}
	if w == graph.NullInteger {
		return 1, nil
	}
	if w < 0 {
		return 0, fmt.Errorf("edge %d weight %d: %w", e.ID(), w, ErrNegativeWeight)
	}
	return int64(w), nil
}
