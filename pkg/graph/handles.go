package graph

// Vertex is a handle to a vertex by id. Handles stay valid across compaction and are
// resolved through the id allocator on every access.
type Vertex struct {
	g  *Graph
	id uint32
}

// ID returns the stable identifier.
func (v Vertex) ID() uint32 { return v.id }

// Valid reports whether the vertex is live.
func (v Vertex) Valid() bool { return v.g != nil && v.g.whereVertex.Has(v.id) }

// Index returns the current physical index, or -1 if the vertex is gone.
func (v Vertex) Index() int {
	if v.g == nil {
		return -1
	}
	i, ok := v.g.whereVertex.Get(v.id)
	if !ok {
		return -1
	}
	return int(i)
}

func (v Vertex) record() (int, VertexRecord, error) {
	if v.g == nil {
		return 0, VertexRecord{}, ErrVertexNotFound
	}
	i, err := v.g.vertexIndex(v)
	if err != nil {
		return 0, VertexRecord{}, err
	}
	return i, v.g.vertices.Vertex(i), nil
}

// X returns the horizontal position, 0 for a dead handle.
func (v Vertex) X() float32 {
	_, r, _ := v.record()
	return r.X
}

// Y returns the vertical position, 0 for a dead handle.
func (v Vertex) Y() float32 {
	_, r, _ := v.record()
	return r.Y
}

// Position returns both coordinates.
func (v Vertex) Position() (x, y float32) {
	_, r, _ := v.record()
	return r.X, r.Y
}

// SetPosition moves the vertex.
func (v Vertex) SetPosition(x, y float32) error {
	i, r, err := v.record()
	if err != nil {
		return err
	}
	r.X, r.Y = x, y
	v.g.vertices.SetVertex(i, r)
	return nil
}

// Flags returns the interaction bits.
func (v Vertex) Flags() Flags {
	_, r, _ := v.record()
	return r.Flags
}

// SetFlags replaces the interaction bits.
func (v Vertex) SetFlags(f Flags) error {
	i, r, err := v.record()
	if err != nil {
		return err
	}
	r.Flags = f
	v.g.vertices.SetVertex(i, r)
	return nil
}

// IsSelected reports FlagSelected.
func (v Vertex) IsSelected() bool { return v.Flags().Has(FlagSelected) }

// SetSelected sets or clears FlagSelected.
func (v Vertex) SetSelected(on bool) error {
	return v.SetFlags(toggle(v.Flags(), FlagSelected, on))
}

// Property reads a vertex property.
func (v Vertex) Property(name string) (int32, error) {
	i, _, err := v.record()
	if err != nil {
		return 0, err
	}
	return v.g.vertexAux.Get(name, i)
}

// SetProperty writes a vertex property.
func (v Vertex) SetProperty(name string, value int32) error {
	i, _, err := v.record()
	if err != nil {
		return err
	}
	return v.g.vertexAux.Set(name, i, value)
}

// Out returns edges leaving v ordered by id. For undirected graphs this is every incident edge.
func (v Vertex) Out() []Edge {
	i := v.Index()
	if i < 0 {
		return nil
	}
	if v.g.directed {
		return v.g.edgesOf(v.g.outcidency[i])
	}
	return v.g.edgesOf(v.g.incidency[i])
}

// In returns edges entering v ordered by id. For undirected graphs this is every incident edge.
func (v Vertex) In() []Edge {
	i := v.Index()
	if i < 0 {
		return nil
	}
	return v.g.edgesOf(v.g.incidency[i])
}

// Edges returns every incident edge ordered by id.
func (v Vertex) Edges() []Edge {
	i := v.Index()
	if i < 0 {
		return nil
	}
	return v.g.incident(i)
}

// Neighbors returns the far endpoint of every incident edge, ordered by edge id, without
// duplicates.
func (v Vertex) Neighbors() []Vertex {
	seen := map[uint32]bool{}
	var out []Vertex
	for _, e := range v.Edges() {
		n := e.Other(v)
		if !seen[n.id] {
			seen[n.id] = true
			out = append(out, n)
		}
	}
	return out
}

// Degree returns the number of incident edges.
func (v Vertex) Degree() int { return len(v.Edges()) }

// Delete removes the vertex and its edges.
func (v Vertex) Delete() error {
	if v.g == nil {
		return ErrVertexNotFound
	}
	return v.g.DeleteVertex(v)
}

// Edge is a handle to an edge by id.
type Edge struct {
	g  *Graph
	id uint32
}

// ID returns the stable identifier.
func (e Edge) ID() uint32 { return e.id }

// Valid reports whether the edge is live.
func (e Edge) Valid() bool { return e.g != nil && e.g.whereEdge.Has(e.id) }

// Index returns the current physical index, or -1 if the edge is gone.
func (e Edge) Index() int {
	if e.g == nil {
		return -1
	}
	i, ok := e.g.whereEdge.Get(e.id)
	if !ok {
		return -1
	}
	return int(i)
}

func (e Edge) record() (int, EdgeRecord, error) {
	if e.g == nil {
		return 0, EdgeRecord{}, ErrEdgeNotFound
	}
	i, err := e.g.edgeIndex(e)
	if err != nil {
		return 0, EdgeRecord{}, err
	}
	return i, e.g.edges.Edge(i), nil
}

// U returns the tail vertex.
func (e Edge) U() Vertex {
	_, r, err := e.record()
	if err != nil {
		return Vertex{}
	}
	return Vertex{g: e.g, id: e.g.vertices.idAt(int(r.U.Index))}
}

// V returns the head vertex.
func (e Edge) V() Vertex {
	_, r, err := e.record()
	if err != nil {
		return Vertex{}
	}
	return Vertex{g: e.g, id: e.g.vertices.idAt(int(r.V.Index))}
}

// Other returns the endpoint that is not v.
func (e Edge) Other(v Vertex) Vertex {
	if u := e.U(); u.id != v.id {
		return u
	}
	return e.V()
}

// IsDual reports whether the inverse directed edge exists.
func (e Edge) IsDual() bool {
	_, r, _ := e.record()
	return r.U.Dual
}

// Flags returns the interaction bits.
func (e Edge) Flags() Flags {
	_, r, _ := e.record()
	return r.Flags
}

// SetFlags replaces the interaction bits.
func (e Edge) SetFlags(f Flags) error {
	i, r, err := e.record()
	if err != nil {
		return err
	}
	r.Flags = f
	e.g.edges.SetEdge(i, r)
	return nil
}

// IsSelected reports FlagSelected.
func (e Edge) IsSelected() bool { return e.Flags().Has(FlagSelected) }

// SetSelected sets or clears FlagSelected.
func (e Edge) SetSelected(on bool) error {
	return e.SetFlags(toggle(e.Flags(), FlagSelected, on))
}

// Property reads an edge property.
func (e Edge) Property(name string) (int32, error) {
	i, _, err := e.record()
	if err != nil {
		return 0, err
	}
	return e.g.edgeAux.Get(name, i)
}

// SetProperty writes an edge property.
func (e Edge) SetProperty(name string, value int32) error {
	i, _, err := e.record()
	if err != nil {
		return err
	}
	return e.g.edgeAux.Set(name, i, value)
}

// Delete removes the edge.
func (e Edge) Delete() error {
	if e.g == nil {
		return ErrEdgeNotFound
	}
	return e.g.DeleteEdge(e)
}

func toggle(f, bit Flags, on bool) Flags {
	if on {
		return f | bit
	}
	return f &^ bit
}
