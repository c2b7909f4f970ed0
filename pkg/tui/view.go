package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch m.state {
	case ViewStateDetail:
		body = m.viewDetails()
	case ViewStateTopology:
		body = m.viewTopology()
	default:
		body = m.viewList()
	}

	parts := []string{m.viewHUD(), body}
	if m.statusMsg != "" {
		parts = append(parts, warning.Render(" "+m.statusMsg))
	}
	parts = append(parts, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, parts...) + "\n"
}

// window returns the slice of rows that fits on screen around cursor.
func (m Model) window(cursor, total int) (int, int) {
	size := m.height - 8 // HUD and footer
	if size < 5 {
		size = 5
	}
	start := cursor - size/2
	if start < 0 {
		start = 0
	}
	end := start + size
	if end > total {
		end = total
		start = max(end-size, 0)
	}
	return start, end
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func rule(n int) string { return strings.Repeat("─", n) }
