// Package traverse runs graph algorithms over the public graph contract: vertex and edge
// handles, adjacency iteration and auxiliary properties.
package traverse

import (
	"errors"
	"fmt"

	"github.com/DrSkyle/texgraph/pkg/graph"
)

var (
	// ErrCycle indicates a topological sort over a cyclic subgraph.
	ErrCycle = errors.New("cycle detected")
	// ErrUndirected indicates an algorithm that needs edge direction.
	ErrUndirected = errors.New("graph is undirected")
	// ErrNegativeWeight indicates a negative edge weight in a shortest-path search.
	ErrNegativeWeight = errors.New("negative edge weight")
)

// Tree is the outcome of a search from one or more roots.
type Tree struct {
	// Order lists vertex ids in visit order.
	Order []uint32
	// Parent maps each reached non-root vertex to its predecessor.
	Parent map[uint32]uint32
	// Depth is the number of edges from the nearest root.
	Depth map[uint32]int
}

func newTree() *Tree {
	return &Tree{Parent: map[uint32]uint32{}, Depth: map[uint32]int{}}
}

// Reached reports whether id was visited.
func (t *Tree) Reached(id uint32) bool {
	_, ok := t.Depth[id]
	return ok
}

// PathTo walks parents back from id to a root. It returns nil if id was not reached.
func (t *Tree) PathTo(id uint32) []uint32 {
	if !t.Reached(id) {
		return nil
	}
	path := []uint32{id}
	for {
		p, ok := t.Parent[id]
		if !ok {
			break
		}
		path = append(path, p)
		id = p
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Annotate writes the tree into vertex properties: parent as a vertex reference and depth as
// an integer. Properties are created when missing. Unreached vertices keep the null value.
// Call it from inside a transaction.
func (t *Tree) Annotate(g *graph.Graph, parentProp, depthProp string) error {
	aux := g.VertexAux()
	for name, typ := range map[string]graph.PropertyType{
		parentProp: graph.PropertyVertexRef,
		depthProp:  graph.PropertyInteger,
	} {
		if name == "" {
			continue
		}
		p, ok := aux.Property(name)
		switch {
		case !ok:
			if _, err := aux.CreateProperty(name, typ); err != nil {
				return err
			}
		case p.Type != typ:
			if err := aux.SetPropertyType(name, typ); err != nil {
				return err
			}
		default:
			for i := 0; i < aux.Len(); i++ {
				if err := aux.Set(name, i, typ.Null()); err != nil {
					return err
				}
			}
		}
	}

	for _, id := range t.Order {
		v, ok := g.Vertex(id)
		if !ok {
			return fmt.Errorf("vertex %d: %w", id, graph.ErrVertexNotFound)
		}
		if parentProp != "" {
			if p, ok := t.Parent[id]; ok {
				if err := v.SetProperty(parentProp, int32(p)); err != nil {
					return err
				}
			}
		}
		if depthProp != "" {
			if err := v.SetProperty(depthProp, int32(t.Depth[id])); err != nil {
				return err
			}
		}
	}
	return nil
}

// forward returns the edges a search may follow out of v.
func forward(v graph.Vertex) []graph.Edge {
	return v.Out()
}

func checkRoots(roots []graph.Vertex) error {
	for _, r := range roots {
		if !r.Valid() {
			return fmt.Errorf("root %d: %w", r.ID(), graph.ErrVertexNotFound)
		}
	}
	return nil
}
