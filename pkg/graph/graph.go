// Package graph implements a mutable, versioned graph store whose vertex, edge and property
// arrays are packed into 16-byte records and mirrored onto GPU texture buffers.
package graph

import (
	"fmt"
	"log/slog"
	"maps"
	"math/rand/v2"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/DrSkyle/texgraph/pkg/gpu"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// adjacency maps a neighbour's vertex id to the connecting edge id, one map per vertex index.
type adjacency []map[uint32]uint32

func (a adjacency) clone() adjacency {
	c := make(adjacency, len(a))
	for i, m := range a {
		c[i] = maps.Clone(m)
		if c[i] == nil {
			c[i] = map[uint32]uint32{}
		}
	}
	return c
}

// Graph is one document: packed vertex and edge records, their auxiliary properties,
// adjacency, history, and the transaction queue feeding the GPU mirror.
//
// Mutating methods are meant to be called from inside a transaction closure. They are not
// safe for concurrent use; Transaction is.
type Graph struct {
	id       string
	directed bool

	vertices    *RecordArray
	edges       *RecordArray
	whereVertex *Ids
	whereEdge   *Ids

	// incidency holds in-edges for directed graphs and every incident edge otherwise.
	incidency adjacency
	// outcidency is only populated for directed graphs.
	outcidency adjacency

	vertexAux *Auxiliary
	edgeAux   *Auxiliary

	versioner *Versioner

	factory   gpu.Factory
	vertexBuf gpu.Buffer
	edgeBuf   gpu.Buffer

	mu    sync.Mutex
	queue []*transaction
	state atomic.Int32

	rng          *rand.Rand
	jitter       float32
	capacity     int
	historyLimit int

	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *Metrics
}

// New creates an empty graph. Undirected unless WithDirected(true) is given.
func New(opts ...Option) *Graph {
	g := &Graph{
		jitter:   50,
		capacity: 64,
		factory:  gpu.NewMemoryFactory(gpu.DefaultWidth),
		logger:   slog.New(slog.DiscardHandler),
		tracer:   otel.Tracer("texgraph/graph"),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.id == "" {
		g.id = uuid.NewString()
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	g.logger = g.logger.With("graph", g.id)

	g.vertices = NewRecordArray(g.capacity)
	g.edges = NewRecordArray(g.capacity)
	g.whereVertex = NewIds()
	g.whereEdge = NewIds()
	g.vertexAux = newAuxiliary("vertex", g.factory)
	g.edgeAux = newAuxiliary("edge", g.factory)
	g.vertexBuf = g.factory("vertices")
	g.edgeBuf = g.factory("edges")

	g.versioner = NewVersioner()
	g.versioner.SetLimit(g.historyLimit)
	g.track()
	g.versioner.OnPrecommit(func() {
		g.metrics.setEntities(g.VertexCount(), g.EdgeCount())
	})
	return g
}

func (g *Graph) track() {
	v := g.versioner
	Track(v, "vertices",
		func() *RecordArray { return g.vertices },
		func(a *RecordArray) { a.MarkAll(); g.vertices = a },
		(*RecordArray).Clone)
	Track(v, "edges",
		func() *RecordArray { return g.edges },
		func(a *RecordArray) { a.MarkAll(); g.edges = a },
		(*RecordArray).Clone)
	Track(v, "whereVertex",
		func() *Ids { return g.whereVertex },
		func(ids *Ids) { g.whereVertex = ids },
		(*Ids).Clone)
	Track(v, "whereEdge",
		func() *Ids { return g.whereEdge },
		func(ids *Ids) { g.whereEdge = ids },
		(*Ids).Clone)
	Track(v, "incidency",
		func() adjacency { return g.incidency },
		func(a adjacency) { g.incidency = a },
		adjacency.clone)
	Track(v, "outcidency",
		func() adjacency { return g.outcidency },
		func(a adjacency) { g.outcidency = a },
		adjacency.clone)
	Track(v, "vertexAux",
		g.vertexAux.snapshot,
		g.vertexAux.restore,
		auxState.clone)
	Track(v, "edgeAux",
		g.edgeAux.snapshot,
		g.edgeAux.restore,
		auxState.clone)
}

// ID returns the document identifier.
func (g *Graph) ID() string { return g.id }

// IsDirected reports whether edges are ordered pairs.
func (g *Graph) IsDirected() bool { return g.directed }

// VertexCount returns the number of live vertices.
func (g *Graph) VertexCount() int { return g.vertices.Count() }

// EdgeCount returns the number of live edges.
func (g *Graph) EdgeCount() int { return g.edges.Count() }

// VertexAux returns the vertex property store.
func (g *Graph) VertexAux() *Auxiliary { return g.vertexAux }

// EdgeAux returns the edge property store.
func (g *Graph) EdgeAux() *Auxiliary { return g.edgeAux }

// VertexRecords exposes the packed vertex array for read-only consumers.
func (g *Graph) VertexRecords() *RecordArray { return g.vertices }

// EdgeRecords exposes the packed edge array for read-only consumers.
func (g *Graph) EdgeRecords() *RecordArray { return g.edges }

// Vertex returns the live vertex with the given id.
func (g *Graph) Vertex(id uint32) (Vertex, bool) {
	if !g.whereVertex.Has(id) {
		return Vertex{}, false
	}
	return Vertex{g: g, id: id}, true
}

// Edge returns the live edge with the given id.
func (g *Graph) Edge(id uint32) (Edge, bool) {
	if !g.whereEdge.Has(id) {
		return Edge{}, false
	}
	return Edge{g: g, id: id}, true
}

// VertexAt returns the vertex stored at a physical index.
func (g *Graph) VertexAt(index int) (Vertex, error) {
	if index < 0 || index >= g.vertices.Count() {
		return Vertex{}, fmt.Errorf("vertex index %d of %d: %w", index, g.vertices.Count(), ErrIndexOutOfRange)
	}
	return Vertex{g: g, id: g.vertices.idAt(index)}, nil
}

// EdgeAt returns the edge stored at a physical index.
func (g *Graph) EdgeAt(index int) (Edge, error) {
	if index < 0 || index >= g.edges.Count() {
		return Edge{}, fmt.Errorf("edge index %d of %d: %w", index, g.edges.Count(), ErrIndexOutOfRange)
	}
	return Edge{g: g, id: g.edges.idAt(index)}, nil
}

// Vertices returns every vertex in physical order.
func (g *Graph) Vertices() []Vertex {
	out := make([]Vertex, g.vertices.Count())
	for i := range out {
		out[i] = Vertex{g: g, id: g.vertices.idAt(i)}
	}
	return out
}

// Edges returns every edge in physical order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, g.edges.Count())
	for i := range out {
		out[i] = Edge{g: g, id: g.edges.idAt(i)}
	}
	return out
}

// Selected returns the vertices carrying FlagSelected, in physical order.
func (g *Graph) Selected() []Vertex {
	var out []Vertex
	for i := 0; i < g.vertices.Count(); i++ {
		r := g.vertices.Vertex(i)
		if r.Flags.Has(FlagSelected) {
			out = append(out, Vertex{g: g, id: r.ID})
		}
	}
	return out
}

// EdgeFromTo returns the edge u->v, or u-v for undirected graphs.
func (g *Graph) EdgeFromTo(u, v Vertex) (Edge, bool) {
	ui, ok := g.whereVertex.Get(u.id)
	if !ok || !g.whereVertex.Has(v.id) {
		return Edge{}, false
	}
	var eid uint32
	if g.directed {
		eid, ok = g.outcidency[ui][v.id]
	} else {
		eid, ok = g.incidency[ui][v.id]
	}
	if !ok {
		return Edge{}, false
	}
	return Edge{g: g, id: eid}, true
}

func (g *Graph) vertexIndex(v Vertex) (int, error) {
	i, ok := g.whereVertex.Get(v.id)
	if !ok {
		return 0, fmt.Errorf("vertex %d: %w", v.id, ErrVertexNotFound)
	}
	return int(i), nil
}

func (g *Graph) edgeIndex(e Edge) (int, error) {
	i, ok := g.whereEdge.Get(e.id)
	if !ok {
		return 0, fmt.Errorf("edge %d: %w", e.id, ErrEdgeNotFound)
	}
	return int(i), nil
}

// AddVertex appends a vertex at a random position around the origin.
func (g *Graph) AddVertex() Vertex {
	x := (g.rng.Float32()*2 - 1) * g.jitter
	y := (g.rng.Float32()*2 - 1) * g.jitter
	return g.AddVertexAt(x, y)
}

// AddVertexAt appends a vertex at (x, y).
func (g *Graph) AddVertexAt(x, y float32) Vertex {
	index := g.vertices.Count()
	id := g.whereVertex.Create(uint32(index))
	g.vertices.PushVertex(VertexRecord{X: x, Y: y, ID: id})
	g.incidency = append(g.incidency, map[uint32]uint32{})
	if g.directed {
		g.outcidency = append(g.outcidency, map[uint32]uint32{})
	}
	g.vertexAux.push()
	return Vertex{g: g, id: id}
}

// AddEdge connects u to v.
func (g *Graph) AddEdge(u, v Vertex) (Edge, error) {
	ui, err := g.vertexIndex(u)
	if err != nil {
		return Edge{}, err
	}
	vi, err := g.vertexIndex(v)
	if err != nil {
		return Edge{}, err
	}
	if u.id == v.id {
		return Edge{}, fmt.Errorf("vertex %d: %w", u.id, ErrSelfLoop)
	}

	forward := g.incidency[ui]
	if g.directed {
		forward = g.outcidency[ui]
	}
	if _, ok := forward[v.id]; ok {
		return Edge{}, fmt.Errorf("%d->%d: %w", u.id, v.id, ErrEdgeExists)
	}

	index := g.edges.Count()
	id := g.whereEdge.Create(uint32(index))
	rec := EdgeRecord{
		U:  Endpoint{Index: uint32(ui)},
		V:  Endpoint{Index: uint32(vi)},
		ID: id,
	}
	if g.directed {
		rec.V.Marker = true
		if inverse, ok := g.outcidency[vi][u.id]; ok {
			rec.U.Dual, rec.U.Marker = true, true
			g.setDual(inverse, true)
		}
		g.outcidency[ui][v.id] = id
		g.incidency[vi][u.id] = id
	} else {
		g.incidency[ui][v.id] = id
		g.incidency[vi][u.id] = id
	}
	g.edges.PushEdge(rec)
	g.edgeAux.push()
	return Edge{g: g, id: id}, nil
}

func (g *Graph) setDual(edgeID uint32, dual bool) {
	i, ok := g.whereEdge.Get(edgeID)
	if !ok {
		return
	}
	rec := g.edges.Edge(int(i))
	rec.U.Dual, rec.U.Marker = dual, dual
	g.edges.SetEdge(int(i), rec)
}

// DeleteEdge removes e and compacts the edge array.
func (g *Graph) DeleteEdge(e Edge) error {
	index, err := g.edgeIndex(e)
	if err != nil {
		return err
	}
	rec := g.edges.Edge(index)
	uid := g.vertices.idAt(int(rec.U.Index))
	vid := g.vertices.idAt(int(rec.V.Index))

	if g.directed {
		delete(g.outcidency[rec.U.Index], vid)
		delete(g.incidency[rec.V.Index], uid)
		if inverse, ok := g.outcidency[rec.V.Index][uid]; ok {
			g.setDual(inverse, false)
		}
	} else {
		delete(g.incidency[rec.U.Index], vid)
		delete(g.incidency[rec.V.Index], uid)
	}

	last := g.edges.Count() - 1
	if index != last {
		g.edges.SetFrom(index, g.edges, last)
		g.whereEdge.Set(g.edges.idAt(index), uint32(index))
	}
	g.edges.Pop()
	g.edgeAux.swapWithLast(index)
	g.edgeAux.pop()
	g.whereEdge.Delete(e.id)
	return nil
}

// DeleteVertex removes v together with every incident edge and compacts the vertex array.
func (g *Graph) DeleteVertex(v Vertex) error {
	index, err := g.vertexIndex(v)
	if err != nil {
		return err
	}
	for _, e := range g.incident(index) {
		if err := g.DeleteEdge(e); err != nil {
			return err
		}
	}

	last := g.vertices.Count() - 1
	if index != last {
		g.vertices.SetFrom(index, g.vertices, last)
		g.whereVertex.Set(g.vertices.idAt(index), uint32(index))
		g.incidency[index] = g.incidency[last]
		if g.directed {
			g.outcidency[index] = g.outcidency[last]
		}
		g.vertexAux.swapWithLast(index)
		for _, e := range g.incident(index) {
			g.reindexEndpoint(e.id, uint32(last), uint32(index))
		}
	}

	g.vertices.Pop()
	g.incidency[last] = nil
	g.incidency = g.incidency[:last]
	if g.directed {
		g.outcidency[last] = nil
		g.outcidency = g.outcidency[:last]
	}
	g.vertexAux.pop()
	g.whereVertex.Delete(v.id)
	return nil
}

func (g *Graph) reindexEndpoint(edgeID, from, to uint32) {
	i, ok := g.whereEdge.Get(edgeID)
	if !ok {
		return
	}
	rec := g.edges.Edge(int(i))
	if rec.U.Index == from {
		rec.U.Index = to
	}
	if rec.V.Index == from {
		rec.V.Index = to
	}
	g.edges.SetEdge(int(i), rec)
}

// incident returns every edge touching the vertex at index, ordered by edge id.
func (g *Graph) incident(index int) []Edge {
	ids := slices.Collect(maps.Values(g.incidency[index]))
	if g.directed {
		ids = append(ids, slices.Collect(maps.Values(g.outcidency[index]))...)
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)
	out := make([]Edge, len(ids))
	for i, id := range ids {
		out[i] = Edge{g: g, id: id}
	}
	return out
}

func (g *Graph) edgesOf(m map[uint32]uint32) []Edge {
	ids := slices.Sorted(maps.Values(m))
	out := make([]Edge, len(ids))
	for i, id := range ids {
		out[i] = Edge{g: g, id: id}
	}
	return out
}

// Merge replaces vs with one vertex at their centroid. Edges leaving the set are rewired to
// the new vertex; edges inside the set disappear.
func (g *Graph) Merge(vs []Vertex) (Vertex, error) {
	members, err := g.resolveSet(vs)
	if err != nil {
		return Vertex{}, err
	}
	if len(members) == 0 {
		return Vertex{}, ErrEmptyMerge
	}

	var cx, cy float32
	outs := map[uint32]struct{}{}
	ins := map[uint32]struct{}{}
	inSet := map[uint32]bool{}
	for _, m := range members {
		inSet[m.id] = true
	}
	for _, m := range members {
		i, _ := g.whereVertex.Get(m.id)
		rec := g.vertices.Vertex(int(i))
		cx += rec.X
		cy += rec.Y
		if g.directed {
			for nid := range g.outcidency[i] {
				if !inSet[nid] {
					outs[nid] = struct{}{}
				}
			}
		}
		for nid := range g.incidency[i] {
			if !inSet[nid] {
				ins[nid] = struct{}{}
			}
		}
	}
	n := float32(len(members))

	for _, m := range members {
		if err := g.DeleteVertex(m); err != nil {
			return Vertex{}, err
		}
	}
	merged := g.AddVertexAt(cx/n, cy/n)
	for _, nid := range slices.Sorted(maps.Keys(outs)) {
		if _, err := g.AddEdge(merged, Vertex{g: g, id: nid}); err != nil {
			return Vertex{}, err
		}
	}
	for _, nid := range slices.Sorted(maps.Keys(ins)) {
		if _, ok := g.EdgeFromTo(Vertex{g: g, id: nid}, merged); ok {
			continue
		}
		if _, err := g.AddEdge(Vertex{g: g, id: nid}, merged); err != nil {
			return Vertex{}, err
		}
	}
	return merged, nil
}

// Cliqueify adds every missing edge among vs (both orientations when directed) and returns
// the edges it created.
func (g *Graph) Cliqueify(vs []Vertex) ([]Edge, error) {
	members, err := g.resolveSet(vs)
	if err != nil {
		return nil, err
	}
	var created []Edge
	connect := func(a, b Vertex) error {
		if _, ok := g.EdgeFromTo(a, b); ok {
			return nil
		}
		e, err := g.AddEdge(a, b)
		if err != nil {
			return err
		}
		created = append(created, e)
		return nil
	}
	for i := range members {
		for j := i + 1; j < len(members); j++ {
			if err := connect(members[i], members[j]); err != nil {
				return created, err
			}
			if g.directed {
				if err := connect(members[j], members[i]); err != nil {
					return created, err
				}
			}
		}
	}
	return created, nil
}

// resolveSet validates vs and drops duplicates, keeping first occurrence order.
func (g *Graph) resolveSet(vs []Vertex) ([]Vertex, error) {
	seen := make(map[uint32]bool, len(vs))
	out := make([]Vertex, 0, len(vs))
	for _, v := range vs {
		if !g.whereVertex.Has(v.id) {
			return nil, fmt.Errorf("vertex %d: %w", v.id, ErrVertexNotFound)
		}
		if seen[v.id] {
			continue
		}
		seen[v.id] = true
		out = append(out, Vertex{g: g, id: v.id})
	}
	return out, nil
}
