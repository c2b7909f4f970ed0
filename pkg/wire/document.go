// Package wire encodes graphs into a portable file format and loads them back.
//
// A vertex record is x, y and id followed by one 32-bit value per declared vertex property.
// An edge record is the two endpoint vertex ids followed by one value per edge property.
// Edges carry no id of their own; edge references inside property values use the edge's
// 1-based position in the document.
package wire

import (
	"fmt"

	"github.com/DrSkyle/texgraph/pkg/graph"
	"gopkg.in/yaml.v3"
)

// PropertySpec declares one auxiliary property.
type PropertySpec struct {
	Name string
	Type graph.PropertyType
}

// Manifest describes the shape of every record in a Document.
type Manifest struct {
	Directed         bool
	VertexProperties []PropertySpec
	EdgeProperties   []PropertySpec
}

// VertexEntry is one vertex as stored on the wire.
type VertexEntry struct {
	ID    uint32
	X, Y  float32
	Props []int32
}

// EdgeEntry is one edge as stored on the wire.
type EdgeEntry struct {
	U, V  uint32
	Props []int32
}

// Document is a decoded wire file.
type Document struct {
	Manifest Manifest
	Vertices []VertexEntry
	Edges    []EdgeEntry
}

// VertexRecordSize returns the encoded size of one vertex record.
func (m Manifest) VertexRecordSize() int { return 12 + 4*len(m.VertexProperties) }

// EdgeRecordSize returns the encoded size of one edge record.
func (m Manifest) EdgeRecordSize() int { return 8 + 4*len(m.EdgeProperties) }

type yamlProperty struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type yamlManifest struct {
	Directed         bool           `yaml:"directed"`
	VertexProperties []yamlProperty `yaml:"vertex_properties"`
	EdgeProperties   []yamlProperty `yaml:"edge_properties"`
}

func toYAML(specs []PropertySpec) []yamlProperty {
	out := make([]yamlProperty, len(specs))
	for i, s := range specs {
		out[i] = yamlProperty{Name: s.Name, Type: s.Type.String()}
	}
	return out
}

func fromYAML(props []yamlProperty) ([]PropertySpec, error) {
	out := make([]PropertySpec, len(props))
	for i, p := range props {
		t, err := graph.ParsePropertyType(p.Type)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", p.Name, err)
		}
		out[i] = PropertySpec{Name: p.Name, Type: t}
	}
	return out, nil
}

// MarshalYAML renders the manifest with property types by name.
func (m Manifest) MarshalYAML() (any, error) {
	return yamlManifest{
		Directed:         m.Directed,
		VertexProperties: toYAML(m.VertexProperties),
		EdgeProperties:   toYAML(m.EdgeProperties),
	}, nil
}

// UnmarshalYAML is the inverse of MarshalYAML.
func (m *Manifest) UnmarshalYAML(node *yaml.Node) error {
	var y yamlManifest
	if err := node.Decode(&y); err != nil {
		return err
	}
	vp, err := fromYAML(y.VertexProperties)
	if err != nil {
		return err
	}
	ep, err := fromYAML(y.EdgeProperties)
	if err != nil {
		return err
	}
	*m = Manifest{Directed: y.Directed, VertexProperties: vp, EdgeProperties: ep}
	return nil
}

// Export captures g as a Document. Edge references are rewritten to document positions;
// references to entities that no longer exist become null.
func Export(g *graph.Graph) *Document {
	doc := &Document{
		Manifest: Manifest{
			Directed:         g.IsDirected(),
			VertexProperties: specs(g.VertexAux().Properties()),
			EdgeProperties:   specs(g.EdgeAux().Properties()),
		},
	}

	edges := g.Edges()
	position := make(map[uint32]int32, len(edges))
	for i, e := range edges {
		position[e.ID()] = int32(i + 1)
	}
	remap := func(t graph.PropertyType, v int32) int32 {
		if v == t.Null() {
			return v
		}
		switch t {
		case graph.PropertyVertexRef:
			if _, ok := g.Vertex(uint32(v)); !ok {
				return graph.NullRef
			}
		case graph.PropertyEdgeRef:
			p, ok := position[uint32(v)]
			if !ok {
				return graph.NullRef
			}
			return p
		}
		return v
	}

	for _, v := range g.Vertices() {
		x, y := v.Position()
		entry := VertexEntry{ID: v.ID(), X: x, Y: y}
		for _, p := range doc.Manifest.VertexProperties {
			val, _ := v.Property(p.Name)
			entry.Props = append(entry.Props, remap(p.Type, val))
		}
		doc.Vertices = append(doc.Vertices, entry)
	}
	for _, e := range edges {
		entry := EdgeEntry{U: e.U().ID(), V: e.V().ID()}
		for _, p := range doc.Manifest.EdgeProperties {
			val, _ := e.Property(p.Name)
			entry.Props = append(entry.Props, remap(p.Type, val))
		}
		doc.Edges = append(doc.Edges, entry)
	}
	return doc
}

func specs(props []graph.Property) []PropertySpec {
	out := make([]PropertySpec, len(props))
	for i, p := range props {
		out[i] = PropertySpec{Name: p.Name, Type: p.Type}
	}
	return out
}
