package graph

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes a deterministic text rendering of the graph in physical order.
func (g *Graph) Dump(w io.Writer) error {
	var b strings.Builder
	kind := "undirected"
	if g.directed {
		kind = "directed"
	}
	fmt.Fprintf(&b, "%s vertices=%d edges=%d\n", kind, g.VertexCount(), g.EdgeCount())

	vprops := g.vertexAux.Properties()
	eprops := g.edgeAux.Properties()
	for _, p := range vprops {
		fmt.Fprintf(&b, "vertex property %q %s channel=%d\n", p.Name, p.Type, p.Channel)
	}
	for _, p := range eprops {
		fmt.Fprintf(&b, "edge property %q %s channel=%d\n", p.Name, p.Type, p.Channel)
	}

	for i := 0; i < g.vertices.Count(); i++ {
		r := g.vertices.Vertex(i)
		fmt.Fprintf(&b, "v%d @%d (%.2f, %.2f) flags=%04b", r.ID, i, r.X, r.Y, uint32(r.Flags))
		for _, p := range vprops {
			v, _ := g.vertexAux.Get(p.Name, i)
			fmt.Fprintf(&b, " %s=%s", p.Name, formatValue(p.Type, v))
		}
		b.WriteByte('\n')
	}
	arrow := "--"
	if g.directed {
		arrow = "->"
	}
	for i := 0; i < g.edges.Count(); i++ {
		r := g.edges.Edge(i)
		fmt.Fprintf(&b, "e%d @%d v%d%sv%d flags=%04b",
			r.ID, i, g.vertices.idAt(int(r.U.Index)), arrow, g.vertices.idAt(int(r.V.Index)), uint32(r.Flags))
		if r.U.Dual {
			b.WriteString(" dual")
		}
		for _, p := range eprops {
			v, _ := g.edgeAux.Get(p.Name, i)
			fmt.Fprintf(&b, " %s=%s", p.Name, formatValue(p.Type, v))
		}
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func formatValue(t PropertyType, v int32) string {
	if v == t.Null() {
		return "null"
	}
	switch t {
	case PropertyVertexRef:
		return fmt.Sprintf("v%d", v)
	case PropertyEdgeRef:
		return fmt.Sprintf("e%d", v)
	}
	return fmt.Sprint(v)
}
