// Package tui is a terminal viewer for a graph document.
package tui

import (
	"context"
	"fmt"

	"github.com/DrSkyle/texgraph/pkg/graph"
	"github.com/DrSkyle/texgraph/pkg/traverse"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type ViewState int

const (
	ViewStateList ViewState = iota
	ViewStateDetail
	ViewStateTopology
)

// TopologyLine is one row of the flattened search tree.
type TopologyLine struct {
	ID    uint32
	Text  string
	Level int
}

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Details  key.Binding
	Topology key.Binding
	Select   key.Binding
	Back     key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Details, k.Topology, k.Select, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Back},
		{k.Details, k.Topology, k.Select},
		{k.Help, k.Quit},
	}
}

var defaultKeys = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Details:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
	Topology: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "bfs tree")),
	Select:   key.NewBinding(key.WithKeys(" ", "s"), key.WithHelp("s", "toggle select")),
	Back:     key.NewBinding(key.WithKeys("esc", "b"), key.WithHelp("esc", "back")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Model is the bubbletea model of the viewer.
type Model struct {
	Graph *graph.Graph
	Name  string

	keys keyMap
	help help.Model

	state    ViewState
	quitting bool
	width    int
	height   int

	cursor         int
	topologyCursor int
	topologyRoot   uint32
	topologyLines  []TopologyLine

	statusMsg string
}

func NewModel(g *graph.Graph, name string) Model {
	return Model{
		Graph:  g,
		Name:   name,
		keys:   defaultKeys,
		help:   help.New(),
		state:  ViewStateList,
		width:  100,
		height: 30,
	}
}

func (m Model) Init() tea.Cmd { return nil }

// Update handles key presses and resizes.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Up):
			m.move(-1)
		case key.Matches(msg, m.keys.Down):
			m.move(1)
		case key.Matches(msg, m.keys.Back):
			m.state = ViewStateList
		case key.Matches(msg, m.keys.Details):
			m.openDetails()
		case key.Matches(msg, m.keys.Topology):
			m.openTopology()
		case key.Matches(msg, m.keys.Select):
			m.toggleSelection()
		}
	}
	return m, nil
}

func (m *Model) move(delta int) {
	if m.state == ViewStateTopology {
		m.topologyCursor = clamp(m.topologyCursor+delta, len(m.topologyLines))
		return
	}
	m.cursor = clamp(m.cursor+delta, m.Graph.VertexCount())
}

func clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// current returns the vertex under the cursor of the active view.
func (m Model) current() (graph.Vertex, bool) {
	if m.state == ViewStateTopology && m.topologyCursor < len(m.topologyLines) {
		return m.Graph.Vertex(m.topologyLines[m.topologyCursor].ID)
	}
	v, err := m.Graph.VertexAt(m.cursor)
	return v, err == nil
}

func (m *Model) openDetails() {
	v, ok := m.current()
	if !ok {
		return
	}
	m.cursor = v.Index()
	m.state = ViewStateDetail
}

func (m *Model) openTopology() {
	v, ok := m.current()
	if !ok {
		return
	}
	m.buildTopology(v)
	m.topologyCursor = 0
	m.state = ViewStateTopology
}

// toggleSelection flips the selected flag of the current vertex through a transaction so
// the change reaches the mirror and can be undone.
func (m *Model) toggleSelection() {
	v, ok := m.current()
	if !ok {
		return
	}
	on := !v.IsSelected()
	p := m.Graph.Transaction(func(context.Context, *graph.Graph) error {
		return v.SetSelected(on)
	})
	if err := m.Graph.Drain(context.Background()); err != nil {
		m.statusMsg = "select failed: " + err.Error()
		return
	}
	if p.Err() == nil {
		verb := "deselected"
		if on {
			verb = "selected"
		}
		m.statusMsg = fmt.Sprintf("v%d %s", v.ID(), verb)
	}
}

// buildTopology flattens the breadth-first tree rooted at v into display lines.
func (m *Model) buildTopology(root graph.Vertex) {
	m.topologyRoot = root.ID()
	tree, err := traverse.BFS(root)
	if err != nil {
		m.topologyLines = nil
		m.statusMsg = err.Error()
		return
	}
	children := map[uint32][]uint32{}
	for _, id := range tree.Order {
		if p, ok := tree.Parent[id]; ok {
			children[p] = append(children[p], id)
		}
	}

	lines := []TopologyLine{{ID: root.ID(), Text: fmt.Sprintf("v%d", root.ID())}}
	var walk func(id uint32, prefix string, level int)
	walk = func(id uint32, prefix string, level int) {
		kids := children[id]
		for i, c := range kids {
			branch, next := "├── ", "│   "
			if i == len(kids)-1 {
				branch, next = "└── ", "    "
			}
			lines = append(lines, TopologyLine{
				ID:    c,
				Text:  fmt.Sprintf("%s%sv%d", prefix, branch, c),
				Level: level,
			})
			walk(c, prefix+next, level+1)
		}
	}
	walk(root.ID(), "", 1)
	m.topologyLines = lines
}

// Run opens the viewer on g and blocks until the user quits.
func Run(g *graph.Graph, name string) error {
	_, err := tea.NewProgram(NewModel(g, name), tea.WithAltScreen()).Run()
	return err
}
