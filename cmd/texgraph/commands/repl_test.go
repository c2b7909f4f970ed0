package commands

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DrSkyle/texgraph/internal/app"
	"github.com/DrSkyle/texgraph/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, directed bool) *app.App {
	t.Helper()
	cfg := config.Default()
	cfg.Directed = directed
	cfg.Seed = 42
	a, err := app.New(context.Background(), cfg, io.Discard)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close(context.Background()) })
	return a
}

// session feeds script to a fresh REPL and returns everything it printed.
func session(t *testing.T, a *app.App, script string) (string, *REPL) {
	t.Helper()
	var out bytes.Buffer
	r := newREPL(a, a.NewGraph(), strings.NewReader(script), &out)
	r.run(context.Background())
	return out.String(), r
}

const triangle = `add 0 0
add 10 0
add 5 5
edge 1 2
edge 2 3
edge 1 3
`

func TestREPLBuildsGraph(t *testing.T) {
	out, r := session(t, newTestApp(t, false), triangle+"check\nstatus\nquit\n")

	assert.Contains(t, out, "v1 at (0.00, 0.00)")
	assert.Contains(t, out, "v3 at (5.00, 5.00)")
	assert.Contains(t, out, "e1 v1-v2")
	assert.Contains(t, out, "consistent")
	assert.Contains(t, out, "Edges:     3")
	assert.Contains(t, out, "Goodbye!")
	assert.NotContains(t, out, "Error:")
	assert.Equal(t, 3, r.g.VertexCount())
}

func TestREPLReportsContractErrors(t *testing.T) {
	out, r := session(t, newTestApp(t, false), "add 0 0\nedge 1 1\nedge 1 9\nfrobnicate\nundo\nundo\n")

	assert.Contains(t, out, "Error: vertex 1: self-loop")
	assert.Contains(t, out, "Error: v9:")
	assert.Contains(t, out, "Unknown command: frobnicate")
	assert.Contains(t, out, "nothing to undo")
	assert.Equal(t, 0, r.g.VertexCount())
}

func TestREPLUndoRedo(t *testing.T) {
	out, r := session(t, newTestApp(t, true), triangle+"rm v 2\nundo\nredo\nundo\nstatus\n")

	assert.NotContains(t, out, "Error:")
	assert.Equal(t, 3, r.g.VertexCount())
	assert.Equal(t, 3, r.g.EdgeCount())
	assert.True(t, r.g.CanRedo())
}

func TestREPLProperties(t *testing.T) {
	script := triangle + `prop create e w integer
set e 1 w 1
set e 2 w 1
set e 3 w 5
get e 3 w
path 1 3 w
set e 3 w null
get e 3 w
prop list
`
	out, _ := session(t, newTestApp(t, false), script)

	assert.NotContains(t, out, "Error:")
	assert.Contains(t, out, "> 5\n")
	assert.Contains(t, out, "v1 v2 v3 (cost 2)")
	assert.Contains(t, out, "null")
	assert.Contains(t, out, "e w")
}

func TestREPLAlgorithms(t *testing.T) {
	script := triangle + "add 20 20\ntopo\nbfs 1\ncomponents\nisolated 1\nannotate 1 parent depth\nget v 3 depth\n"
	out, _ := session(t, newTestApp(t, true), script)

	assert.NotContains(t, out, "Error:")
	assert.Contains(t, out, "v4 v1 v2 v3")
	assert.Contains(t, out, "v3 depth 1")
	assert.Contains(t, out, "0: v1 v2 v3")
	assert.Contains(t, out, "1: v4")
	assert.Contains(t, out, "> v4\n")
}

func TestREPLQueries(t *testing.T) {
	script := triangle + `prop create e w integer
set e 1 w 1
set e 2 w 1
set e 3 w 9
where v x > 1.0
where e has(props.w) && props.w > 5
pick v y > 1.0
selected
reach 1 props.w < 5
where v degree +
`
	out, _ := session(t, newTestApp(t, false), script)

	assert.Contains(t, out, "> v2 v3\n")
	assert.Contains(t, out, "> e3\n")
	assert.Contains(t, out, "1 selected")
	assert.Contains(t, out, "> v3\n")
	assert.Contains(t, out, "v3 depth 2")
	assert.Contains(t, out, "Error: compile")
}

func TestREPLMergeAndClique(t *testing.T) {
	out, r := session(t, newTestApp(t, false), "add 0 0\nadd 2 0\nadd 4 0\nadd 6 0\nclique 1 2 3 4\nmerge 1 2\n")

	assert.Contains(t, out, "6 edges added")
	assert.Contains(t, out, "at (1.00, 0.00) degree 2")
	assert.Equal(t, 3, r.g.VertexCount())
	assert.Equal(t, 3, r.g.EdgeCount())
}

func TestREPLSaveLoad(t *testing.T) {
	a := newTestApp(t, false)
	path := filepath.Join(t.TempDir(), "tri.txg")

	out, first := session(t, a, triangle+"save "+path+"\n")
	require.NotContains(t, out, "Error:")

	out, second := session(t, a, "load "+path+"\n")
	require.NotContains(t, out, "Error:")
	assert.Contains(t, out, "3 vertices, 3 edges")
	assert.NotEqual(t, first.g.ID(), second.g.ID())

	var want, got bytes.Buffer
	require.NoError(t, first.g.Dump(&want))
	require.NoError(t, second.g.Dump(&got))
	assert.Equal(t, want.String(), got.String())
}

func TestParseID(t *testing.T) {
	for in, want := range map[string]uint32{"3": 3, "v3": 3, "e12": 12} {
		got, err := parseID(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"0", "v", "x1", "-2"} {
		_, err := parseID(in)
		assert.Error(t, err, in)
	}
}
