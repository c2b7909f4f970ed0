package wire

import (
	"fmt"

	"github.com/DrSkyle/texgraph/pkg/graph"
)

// Imported maps document identities to the ids they received in the graph.
type Imported struct {
	// Vertices maps document vertex ids to graph vertex ids.
	Vertices map[uint32]uint32
	// Edges lists the graph edge id of each document edge, in document order.
	Edges []uint32
}

// Validate checks doc against g without modifying either.
func Validate(g *graph.Graph, doc *Document) error {
	m := doc.Manifest
	if m.Directed != g.IsDirected() {
		return fmt.Errorf("document directed=%v, graph directed=%v: %w", m.Directed, g.IsDirected(), ErrDirectedMismatch)
	}
	if err := checkSpecs("vertex", g.VertexAux(), m.VertexProperties); err != nil {
		return err
	}
	if err := checkSpecs("edge", g.EdgeAux(), m.EdgeProperties); err != nil {
		return err
	}

	ids := make(map[uint32]bool, len(doc.Vertices))
	for i, v := range doc.Vertices {
		if len(v.Props) != len(m.VertexProperties) {
			return fmt.Errorf("vertex %d: %w", i, ErrRecordShape)
		}
		if v.ID == graph.InvalidID || ids[v.ID] {
			return fmt.Errorf("vertex id %d: %w", v.ID, ErrDuplicateID)
		}
		ids[v.ID] = true
	}

	type pair struct{ u, v uint32 }
	seen := make(map[pair]bool, len(doc.Edges))
	for i, e := range doc.Edges {
		if len(e.Props) != len(m.EdgeProperties) {
			return fmt.Errorf("edge %d: %w", i, ErrRecordShape)
		}
		if !ids[e.U] || !ids[e.V] {
			return fmt.Errorf("edge %d endpoints %d-%d: %w", i+1, e.U, e.V, ErrDanglingReference)
		}
		if e.U == e.V {
			return fmt.Errorf("edge %d: %w", i+1, graph.ErrSelfLoop)
		}
		k := pair{e.U, e.V}
		if !m.Directed && k.u > k.v {
			k.u, k.v = k.v, k.u
		}
		if seen[k] {
			return fmt.Errorf("edge %d %d-%d: %w", i+1, e.U, e.V, graph.ErrEdgeExists)
		}
		seen[k] = true
	}

	checkRefs := func(kind string, specs []PropertySpec, values func(int) []int32, n int) error {
		for i := 0; i < n; i++ {
			for j, s := range specs {
				v := values(i)[j]
				if v == s.Type.Null() {
					continue
				}
				switch s.Type {
				case graph.PropertyVertexRef:
					if !ids[uint32(v)] {
						return fmt.Errorf("%s %d property %q -> vertex %d: %w", kind, i, s.Name, v, ErrDanglingReference)
					}
				case graph.PropertyEdgeRef:
					if v < 1 || int(v) > len(doc.Edges) {
						return fmt.Errorf("%s %d property %q -> edge %d: %w", kind, i, s.Name, v, ErrDanglingReference)
					}
				}
			}
		}
		return nil
	}
	if err := checkRefs("vertex", m.VertexProperties, func(i int) []int32 { return doc.Vertices[i].Props }, len(doc.Vertices)); err != nil {
		return err
	}
	return checkRefs("edge", m.EdgeProperties, func(i int) []int32 { return doc.Edges[i].Props }, len(doc.Edges))
}

func checkSpecs(kind string, aux *graph.Auxiliary, specs []PropertySpec) error {
	names := make(map[string]bool, len(specs))
	for _, s := range specs {
		if s.Name == "" {
			return fmt.Errorf("%s property: %w", kind, graph.ErrInvalidPropertyName)
		}
		if !s.Type.Valid() {
			return fmt.Errorf("%s property %q: %w", kind, s.Name, graph.ErrUnknownPropertyType)
		}
		if names[s.Name] {
			return fmt.Errorf("%s property %q declared twice: %w", kind, s.Name, ErrPropertyConflict)
		}
		names[s.Name] = true
		if p, ok := aux.Property(s.Name); ok && p.Type != s.Type {
			return fmt.Errorf("%s property %q is %s, document says %s: %w", kind, s.Name, p.Type, s.Type, ErrPropertyConflict)
		}
	}
	return nil
}

// Import adds doc's vertices and edges to g under fresh ids, creating missing properties and
// remapping reference values. It validates first, so a rejected document leaves g untouched.
// Call it from inside a transaction.
func Import(g *graph.Graph, doc *Document) (*Imported, error) {
	if err := Validate(g, doc); err != nil {
		return nil, err
	}
	m := doc.Manifest
	for _, s := range m.VertexProperties {
		if _, ok := g.VertexAux().Property(s.Name); !ok {
			if _, err := g.VertexAux().CreateProperty(s.Name, s.Type); err != nil {
				return nil, err
			}
		}
	}
	for _, s := range m.EdgeProperties {
		if _, ok := g.EdgeAux().Property(s.Name); !ok {
			if _, err := g.EdgeAux().CreateProperty(s.Name, s.Type); err != nil {
				return nil, err
			}
		}
	}

	res := &Imported{Vertices: make(map[uint32]uint32, len(doc.Vertices))}
	vs := make([]graph.Vertex, len(doc.Vertices))
	for i, v := range doc.Vertices {
		vs[i] = g.AddVertexAt(v.X, v.Y)
		res.Vertices[v.ID] = vs[i].ID()
	}
	es := make([]graph.Edge, len(doc.Edges))
	for i, e := range doc.Edges {
		u, _ := g.Vertex(res.Vertices[e.U])
		v, _ := g.Vertex(res.Vertices[e.V])
		edge, err := g.AddEdge(u, v)
		if err != nil {
			return nil, err
		}
		es[i] = edge
		res.Edges = append(res.Edges, edge.ID())
	}

	remap := func(t graph.PropertyType, v int32) int32 {
		if v == t.Null() {
			return v
		}
		switch t {
		case graph.PropertyVertexRef:
			return int32(res.Vertices[uint32(v)])
		case graph.PropertyEdgeRef:
			return int32(res.Edges[v-1])
		}
		return v
	}
	for i, v := range doc.Vertices {
		for j, s := range m.VertexProperties {
			if err := vs[i].SetProperty(s.Name, remap(s.Type, v.Props[j])); err != nil {
				return nil, err
			}
		}
	}
	for i, e := range doc.Edges {
		for j, s := range m.EdgeProperties {
			if err := es[i].SetProperty(s.Name, remap(s.Type, e.Props[j])); err != nil {
				return nil, err
			}
		}
	}
	return res, nil
}
