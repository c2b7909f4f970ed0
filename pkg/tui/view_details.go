package tui

import (
	"fmt"
	"strings"

	"github.com/DrSkyle/texgraph/pkg/graph"
	"github.com/charmbracelet/lipgloss"
)

func (m Model) viewDetails() string {
	v, err := m.Graph.VertexAt(m.cursor)
	if err != nil {
		return "No Vertex Selected"
	}

	header := detailsHeaderStyle.Render(fmt.Sprintf("VERTEX v%d @%d", v.ID(), v.Index()))
	x, y := v.Position()
	state := subtle.Render("SELECTED:  no")
	if v.IsSelected() {
		state = special.Render("SELECTED:  yes")
	}
	info := lipgloss.JoinVertical(lipgloss.Left,
		fmt.Sprintf("POSITION:  (%.3f, %.3f)", x, y),
		fmt.Sprintf("FLAGS:     %04b", uint32(v.Flags())),
		state,
	)

	var props []string
	for _, p := range m.Graph.VertexAux().Properties() {
		val, _ := v.Property(p.Name)
		props = append(props, fmt.Sprintf("%-20s : %-8s %s", p.Name, p.Type, formatValue(p.Type, val)))
	}
	if len(props) == 0 {
		props = []string{"(no properties)"}
	}

	edges := lipgloss.JoinVertical(lipgloss.Left,
		highlight.Render("OUT:       ")+edgeList(v, v.Out()),
		highlight.Render("IN:        ")+edgeList(v, v.In()),
	)
	if !m.Graph.IsDirected() {
		edges = highlight.Render("EDGES:     ") + edgeList(v, v.Edges())
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		header,
		info,
		"",
		dimStyle.Render(strings.Join(props, "\n")),
		"",
		edges,
		"",
		rule(50),
		subtle.Render("[t] BFS tree  [s] toggle select  [esc] back"),
	)
	return detailsBoxStyle.Render(content)
}

func edgeList(v graph.Vertex, es []graph.Edge) string {
	if len(es) == 0 {
		return subtle.Render("-")
	}
	parts := make([]string, len(es))
	for i, e := range es {
		mark := ""
		if e.IsDual() {
			mark = "*"
		}
		parts[i] = fmt.Sprintf("e%d→v%d%s", e.ID(), e.Other(v).ID(), mark)
	}
	return truncate(strings.Join(parts, " "), 70)
}
