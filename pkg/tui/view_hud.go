package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) viewHUD() string {
	kind := "UNDIRECTED"
	if m.Graph.IsDirected() {
		kind = "DIRECTED"
	}
	history := subtle.Render("HISTORY: -")
	if m.Graph.CanUndo() || m.Graph.CanRedo() {
		history = hudLabelStyle.Render("HISTORY:") + hudValueStyle.Render(fmt.Sprintf("undo=%t redo=%t", m.Graph.CanUndo(), m.Graph.CanRedo()))
	}

	segTitle := highlight.Render("TEXGRAPH " + m.Name)
	segKind := subtle.Render(fmt.Sprintf("[ %s ]", kind))
	segCounts := hudLabelStyle.Render("VERTICES:") + hudValueStyle.Render(fmt.Sprint(m.Graph.VertexCount())) +
		"  " + hudLabelStyle.Render("EDGES:") + hudValueStyle.Render(fmt.Sprint(m.Graph.EdgeCount()))

	width := max(m.width-4, 0)
	left := lipgloss.JoinHorizontal(lipgloss.Center, segTitle, "  ", segKind)
	right := lipgloss.JoinHorizontal(lipgloss.Center, segCounts, "  |  ", history)
	spacer := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)

	content := lipgloss.JoinHorizontal(lipgloss.Top,
		left,
		lipgloss.NewStyle().Width(spacer).Render(""),
		right,
	)
	return hudStyle.Width(max(m.width-2, 0)).Render(content)
}
