package tui

import (
	"fmt"
	"strings"
)

// viewTopology renders the breadth-first tree from the chosen root.
func (m Model) viewTopology() string {
	s := strings.Builder{}

	header := fmt.Sprintf("   %-50s | %-5s | %s", fmt.Sprintf("BFS TREE FROM v%d", m.topologyRoot), "DEPTH", "DEGREE")
	s.WriteString(dimStyle.Render(header) + "\n")
	s.WriteString(dimStyle.Render("   "+rule(50)) + "\n")

	if len(m.topologyLines) == 0 {
		return s.String() + "\n   " + danger.Render("No tree.")
	}

	start, end := m.window(m.topologyCursor, len(m.topologyLines))
	for i := start; i < end; i++ {
		line := m.topologyLines[i]
		degree := "-"
		if v, ok := m.Graph.Vertex(line.ID); ok {
			degree = fmt.Sprint(v.Degree())
		}
		row := fmt.Sprintf(" %-50s | %-5d | %s", truncate(line.Text, 50), line.Level, degree)
		if i == m.topologyCursor {
			s.WriteString(listSelectedStyle.Render(">"+row) + "\n")
		} else {
			s.WriteString(listNormalStyle.Render(" "+row) + "\n")
		}
	}
	return s.String()
}
