package graph

// Byte offsets within a vertex record.
const (
	vertexX     = 0
	vertexY     = 4
	vertexFlags = 8
	vertexID    = 12
)

// Byte offsets within an edge record.
const (
	edgeU     = 0
	edgeV     = 4
	edgeFlags = 8
	edgeID    = 12
)

// Flags is the per-record interaction bitfield read by the renderer.
type Flags uint32

const (
	FlagSelected Flags = 1 << iota
	FlagSelectedPreview
	FlagHovered
	FlagDragged
)

// Has reports whether every bit in f2 is set.
func (f Flags) Has(f2 Flags) bool { return f&f2 == f2 }

// Endpoint is one end of an edge as seen by the renderer.
// Dual marks a directed edge whose inverse exists; Marker is set on every directed
// head endpoint and on the tail endpoint of a dual pair.
type Endpoint struct {
	Index  uint32
	Dual   bool
	Marker bool
}

// Pack encodes the endpoint into its 4-byte word: index<<2 | dual<<1 | marker.
func (e Endpoint) Pack() uint32 {
	w := e.Index << 2
	if e.Dual {
		w |= 2
	}
	if e.Marker {
		w |= 1
	}
	return w
}

func unpackEndpoint(w uint32) Endpoint {
	return Endpoint{Index: w >> 2, Dual: w&2 != 0, Marker: w&1 != 0}
}

// VertexRecord is the decoded form of a packed vertex.
type VertexRecord struct {
	X, Y  float32
	Flags Flags
	ID    uint32
}

// EdgeRecord is the decoded form of a packed edge.
type EdgeRecord struct {
	U, V  Endpoint
	Flags Flags
	ID    uint32
}

// Vertex decodes record i.
func (a *RecordArray) Vertex(i int) VertexRecord {
	off := i * RecordSize
	return VertexRecord{
		X:     a.Float32(off + vertexX),
		Y:     a.Float32(off + vertexY),
		Flags: Flags(a.Uint32(off + vertexFlags)),
		ID:    a.Uint32(off + vertexID),
	}
}

// SetVertex encodes r into record i.
func (a *RecordArray) SetVertex(i int, r VertexRecord) {
	off := i * RecordSize
	a.SetFloat32(off+vertexX, r.X)
	a.SetFloat32(off+vertexY, r.Y)
	a.SetUint32(off+vertexFlags, uint32(r.Flags))
	a.SetUint32(off+vertexID, r.ID)
}

// PushVertex appends r and returns its index.
func (a *RecordArray) PushVertex(r VertexRecord) int {
	i := a.Push()
	a.SetVertex(i, r)
	return i
}

// Edge decodes record i.
func (a *RecordArray) Edge(i int) EdgeRecord {
	off := i * RecordSize
	return EdgeRecord{
		U:     unpackEndpoint(a.Uint32(off + edgeU)),
		V:     unpackEndpoint(a.Uint32(off + edgeV)),
		Flags: Flags(a.Uint32(off + edgeFlags)),
		ID:    a.Uint32(off + edgeID),
	}
}

// SetEdge encodes r into record i.
func (a *RecordArray) SetEdge(i int, r EdgeRecord) {
	off := i * RecordSize
	a.SetUint32(off+edgeU, r.U.Pack())
	a.SetUint32(off+edgeV, r.V.Pack())
	a.SetUint32(off+edgeFlags, uint32(r.Flags))
	a.SetUint32(off+edgeID, r.ID)
}

// PushEdge appends r and returns its index.
func (a *RecordArray) PushEdge(r EdgeRecord) int {
	i := a.Push()
	a.SetEdge(i, r)
	return i
}

// idAt reads the id word of record i. Vertex and edge records share the offset.
func (a *RecordArray) idAt(i int) uint32 {
	return a.Uint32(i*RecordSize + vertexID)
}
