package tui

import (
	"context"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/DrSkyle/texgraph/pkg/graph"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

// chain builds v1 -> v2 -> v3 and v1 -> v4 with a rank property on every vertex.
func chain(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New(graph.WithDirected(true), graph.WithRand(rand.New(rand.NewPCG(1, 2))), graph.WithID("tui"))
	p := g.Transaction(func(_ context.Context, g *graph.Graph) error {
		if _, err := g.VertexAux().CreateProperty("rank", graph.PropertyInteger); err != nil {
			return err
		}
		vs := make([]graph.Vertex, 4)
		for i := range vs {
			vs[i] = g.AddVertexAt(float32(i), 0)
			if err := vs[i].SetProperty("rank", int32(i*10)); err != nil {
				return err
			}
		}
		for _, pair := range [][2]int{{0, 1}, {1, 2}, {0, 3}} {
			if _, err := g.AddEdge(vs[pair[0]], vs[pair[1]]); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, g.Drain(context.Background()))
	require.NoError(t, p.Err())
	return g
}

func press(m Model, keys ...tea.KeyMsg) Model {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(Model)
	}
	return m
}

var (
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestViewRendering(t *testing.T) {
	tests := []struct {
		name     string
		keys     []tea.KeyMsg
		want     []string
		dontWant []string
	}{
		{
			name:     "list shows every vertex",
			want:     []string{"TEXGRAPH doc", "DIRECTED", "VERTICES:", "v1", "v4", "rank=30", "> v1"},
			dontWant: []string{"[SEL]", "BFS TREE"},
		},
		{
			name: "cursor moves and clamps",
			keys: []tea.KeyMsg{keyDown, keyDown, keyDown, keyDown, keyDown},
			want: []string{"> v4"},
		},
		{
			name: "details of second vertex",
			keys: []tea.KeyMsg{keyDown, keyEnter},
			want: []string{"VERTEX v2 @1", "POSITION:  (1.000, 0.000)", "rank", "e1→v1", "e2→v3"},
		},
		{
			name:     "back returns to list",
			keys:     []tea.KeyMsg{keyEnter, keyEsc},
			want:     []string{"> v1"},
			dontWant: []string{"POSITION:"},
		},
		{
			name: "bfs tree from the first vertex",
			keys: []tea.KeyMsg{runes("t")},
			want: []string{"BFS TREE FROM v1", "├── v2", "│   └── v3", "└── v4"},
		},
		{
			name: "tree cursor opens details",
			keys: []tea.KeyMsg{runes("t"), keyDown, keyDown, keyUp, keyEnter},
			want: []string{"VERTEX v2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := press(NewModel(chain(t), "doc"), tt.keys...)
			view := m.View()
			for _, w := range tt.want {
				if !strings.Contains(view, w) {
					t.Errorf("View() missing %q\n%s", w, view)
				}
			}
			for _, dw := range tt.dontWant {
				if strings.Contains(view, dw) {
					t.Errorf("View() should not contain %q", dw)
				}
			}
		})
	}
}

func TestToggleSelectionIsUndoable(t *testing.T) {
	g := chain(t)
	m := press(NewModel(g, "doc"), keyDown, runes("s"))

	v, ok := g.Vertex(2)
	require.True(t, ok)
	require.True(t, v.IsSelected())
	require.Contains(t, m.View(), "v2 selected")
	require.Contains(t, m.View(), "[SEL]")

	m = press(m, runes("s"))
	require.False(t, v.IsSelected())
	require.Contains(t, m.View(), "v2 deselected")

	p := g.Undo()
	require.NoError(t, g.Drain(context.Background()))
	require.NoError(t, p.Err())
	require.True(t, v.IsSelected())
}

func TestEmptyGraph(t *testing.T) {
	m := press(NewModel(graph.New(), "empty"), keyDown, keyEnter, runes("t"), runes("s"))
	require.Contains(t, m.View(), "Empty graph")
	require.Contains(t, m.View(), "UNDIRECTED")
}

func TestQuit(t *testing.T) {
	next, cmd := NewModel(chain(t), "doc").Update(runes("q"))
	require.NotNil(t, cmd)
	require.Equal(t, "", next.View())
}
