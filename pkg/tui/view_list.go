package tui

import (
	"fmt"
	"strings"

	"github.com/DrSkyle/texgraph/pkg/graph"
)

func (m Model) viewList() string {
	vs := m.Graph.Vertices()
	if len(vs) == 0 {
		return "\n   " + subtle.Render("Empty graph. Nothing to show.")
	}

	s := strings.Builder{}
	header := fmt.Sprintf("  %-8s | %-5s | %-22s | %-6s | %s", "VERTEX", "INDEX", "POSITION", "DEGREE", "PROPERTIES")
	s.WriteString(dimStyle.Render(header) + "\n")
	s.WriteString(dimStyle.Render("  "+rule(72)) + "\n")

	props := m.Graph.VertexAux().Properties()
	start, end := m.window(m.cursor, len(vs))
	for i := start; i < end; i++ {
		v := vs[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		x, y := v.Position()

		var pv []string
		for _, p := range props {
			val, _ := v.Property(p.Name)
			pv = append(pv, p.Name+"="+formatValue(p.Type, val))
		}
		line := fmt.Sprintf("%-8s | %-5d | %-22s | %-6d | %s",
			fmt.Sprintf("v%d", v.ID()), i, fmt.Sprintf("(%.2f, %.2f)", x, y), v.Degree(),
			truncate(strings.Join(pv, " "), 40))
		if v.IsSelected() {
			line = special.Render(line + " [SEL]")
		}

		if i == m.cursor {
			s.WriteString(listSelectedStyle.Render(cursor+line) + "\n")
		} else {
			s.WriteString(listNormalStyle.Render(cursor+line) + "\n")
		}
	}
	return s.String()
}

func formatValue(t graph.PropertyType, v int32) string {
	switch {
	case v == t.Null():
		return "null"
	case t == graph.PropertyVertexRef:
		return fmt.Sprintf("v%d", v)
	case t == graph.PropertyEdgeRef:
		return fmt.Sprintf("e%d", v)
	}
	return fmt.Sprint(v)
}
