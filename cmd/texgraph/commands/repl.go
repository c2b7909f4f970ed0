package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/DrSkyle/texgraph/internal/app"
	"github.com/DrSkyle/texgraph/pkg/graph"
	"github.com/DrSkyle/texgraph/pkg/query"
	"github.com/DrSkyle/texgraph/pkg/traverse"
	"github.com/spf13/cobra"
)

var ReplCmd = &cobra.Command{
	Use:   "repl [file]",
	Short: "Edit a graph interactively",
	Example: `  texgraph repl
  texgraph repl --directed
  texgraph repl city.txg`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		a, err := startApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close(context.Background())

		var g *graph.Graph
		if len(args) == 1 {
			if g, err = a.Load(ctx, args[0]); err != nil {
				return err
			}
		} else {
			g = a.NewGraph()
		}

		r := newREPL(a, g, cmd.InOrStdin(), cmd.OutOrStdout())
		fmt.Fprintln(r.out, "texgraph REPL - type 'help' for commands, 'quit' to exit")
		r.run(ctx)
		return r.g.Dispose(ctx)
	},
}

// REPL holds the state of an interactive session.
type REPL struct {
	app    *app.App
	g      *graph.Graph
	reader *bufio.Reader
	out    io.Writer

	queries *query.Engine
}

func newREPL(a *app.App, g *graph.Graph, in io.Reader, out io.Writer) *REPL {
	return &REPL{app: a, g: g, reader: bufio.NewReader(in), out: out}
}

func (r *REPL) run(ctx context.Context) {
	for {
		fmt.Fprint(r.out, "texgraph> ")
		input, err := r.reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input != "" && !r.handleCommand(ctx, input) {
			return
		}
		if err != nil {
			fmt.Fprintln(r.out)
			return
		}
	}
}

func (r *REPL) handleCommand(ctx context.Context, input string) bool {
	parts := strings.Fields(input)
	if len(parts) == 0 || strings.HasPrefix(parts[0], "#") {
		return true
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	var err error
	switch cmd {
	case "help":
		r.printHelp()
	case "quit", "exit":
		fmt.Fprintln(r.out, "Goodbye!")
		return false

	case "status":
		r.cmdStatus()
	case "add", "vertex":
		err = r.cmdAdd(ctx, args)
	case "edge":
		err = r.cmdEdge(ctx, args)
	case "rm", "delete":
		err = r.cmdDelete(ctx, args)
	case "move":
		err = r.cmdMove(ctx, args)
	case "merge":
		err = r.cmdMerge(ctx, args)
	case "clique", "cliqueify":
		err = r.cmdClique(ctx, args)
	case "select":
		err = r.cmdSelect(ctx, args, true)
	case "deselect":
		err = r.cmdSelect(ctx, args, false)
	case "selected":
		r.cmdSelected()
	case "neighbors":
		err = r.cmdNeighbors(args)
	case "prop":
		err = r.cmdProp(ctx, args)
	case "set":
		err = r.cmdSet(ctx, args)
	case "get":
		err = r.cmdGet(args)

	case "undo":
		err = r.settle(ctx, r.g.Undo())
	case "redo":
		err = r.settle(ctx, r.g.Redo())
	case "dump":
		err = r.g.Dump(r.out)
	case "check":
		if err = r.g.Check(); err == nil {
			fmt.Fprintln(r.out, "consistent")
		}

	case "bfs", "dfs":
		err = r.cmdSearch(cmd, args)
	case "topo":
		err = r.cmdTopo()
	case "components":
		r.cmdComponents()
	case "isolated":
		err = r.cmdIsolated(args)
	case "path":
		err = r.cmdPath(args)
	case "annotate":
		err = r.cmdAnnotate(ctx, args)
	case "reach":
		err = r.cmdReach(args)

	case "where":
		err = r.cmdWhere(args)
	case "pick":
		err = r.cmdPick(ctx, args)

	case "save":
		err = r.cmdSave(ctx, args)
	case "load":
		err = r.cmdLoad(ctx, args)

	default:
		fmt.Fprintf(r.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	if err != nil {
		fmt.Fprintf(r.out, "Error: %v\n", err)
	}
	return true
}

func (r *REPL) printHelp() {
	fmt.Fprint(r.out, `Editing:
  add [x y]                  add a vertex, jittered around the origin without a position
  edge <u> <v>               add an edge between vertex ids
  rm v|e <id>...             delete vertices or edges
  move <id> <x> <y>          reposition a vertex
  merge <id>...              merge vertices into one at their centroid
  clique <id>...             connect every pair of the given vertices
  select|deselect v|e <id>...
  selected                   list selected vertices

Properties:
  prop create v|e <name> <integer|vertex|edge>
  prop delete|rename|type v|e <name> [arg]
  prop list
  set v|e <id> <name> <value|null>
  get v|e <id> <name>

History:
  undo | redo

Inspection:
  status | dump | check | neighbors <id>

Algorithms:
  bfs|dfs <root>...          visit order from the roots
  topo                       topological order (directed only)
  components                 connected components
  isolated <root>...         vertices not reachable from the roots
  path <src> <dst> [weight]  shortest path, weights from an integer edge property
  annotate <root> <parent> <depth>
                             store a BFS tree into vertex properties
  reach <root> <edge-expr>   BFS crossing only edges matching a CEL expression

Queries (CEL):
  where v <expr>             list vertices, e.g. where v degree > 2 && x < 0.0
  where e <expr>             list edges, e.g. where e has(props.w) && props.w > 3
  pick v <expr>              select exactly the matching vertices

Files:
  save <path> | load <path>
  quit
`)
}

// apply queues fn as a transaction and ticks until it has run.
func (r *REPL) apply(ctx context.Context, fn graph.TxFunc) error {
	return r.settle(ctx, r.g.Transaction(fn))
}

func (r *REPL) settle(ctx context.Context, p *graph.Pending) error {
	if err := r.g.Drain(ctx); err != nil {
		return err
	}
	return p.Err()
}

func (r *REPL) cmdStatus() {
	kind := "undirected"
	if r.g.IsDirected() {
		kind = "directed"
	}
	fmt.Fprintf(r.out, "Document:  %s (%s)\n", r.g.ID(), kind)
	fmt.Fprintf(r.out, "Vertices:  %d\n", r.g.VertexCount())
	fmt.Fprintf(r.out, "Edges:     %d\n", r.g.EdgeCount())
	fmt.Fprintf(r.out, "State:     %s\n", r.g.State())
	fmt.Fprintf(r.out, "Undo/Redo: %t/%t\n", r.g.CanUndo(), r.g.CanRedo())
}

func (r *REPL) cmdAdd(ctx context.Context, args []string) error {
	var created graph.Vertex
	switch len(args) {
	case 0:
		if err := r.apply(ctx, func(_ context.Context, g *graph.Graph) error {
			created = g.AddVertex()
			return nil
		}); err != nil {
			return err
		}
	case 2:
		x, err := parseFloat(args[0])
		if err != nil {
			return err
		}
		y, err := parseFloat(args[1])
		if err != nil {
			return err
		}
		if err := r.apply(ctx, func(_ context.Context, g *graph.Graph) error {
			created = g.AddVertexAt(x, y)
			return nil
		}); err != nil {
			return err
		}
	default:
		return errors.New("usage: add [x y]")
	}
	x, y := created.Position()
	fmt.Fprintf(r.out, "v%d at (%.2f, %.2f)\n", created.ID(), x, y)
	return nil
}

func (r *REPL) cmdEdge(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: edge <u> <v>")
	}
	u, err := r.vertex(args[0])
	if err != nil {
		return err
	}
	v, err := r.vertex(args[1])
	if err != nil {
		return err
	}
	var e graph.Edge
	if err := r.apply(ctx, func(_ context.Context, g *graph.Graph) error {
		e, err = g.AddEdge(u, v)
		return err
	}); err != nil {
		return err
	}
	suffix := ""
	if e.IsDual() {
		suffix = " (dual)"
	}
	fmt.Fprintf(r.out, "e%d v%d-v%d%s\n", e.ID(), u.ID(), v.ID(), suffix)
	return nil
}

func (r *REPL) cmdDelete(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: rm v|e <id>...")
	}
	switch args[0] {
	case "v":
		vs, err := r.vertices(args[1:])
		if err != nil {
			return err
		}
		return r.apply(ctx, func(_ context.Context, g *graph.Graph) error {
			for _, v := range vs {
				if err := g.DeleteVertex(v); err != nil {
					return err
				}
			}
			return nil
		})
	case "e":
		es, err := r.edges(args[1:])
		if err != nil {
			return err
		}
		return r.apply(ctx, func(_ context.Context, g *graph.Graph) error {
			for _, e := range es {
				if err := g.DeleteEdge(e); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return fmt.Errorf("unknown kind %q, want v or e", args[0])
}

func (r *REPL) cmdMove(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return errors.New("usage: move <id> <x> <y>")
	}
	v, err := r.vertex(args[0])
	if err != nil {
		return err
	}
	x, err := parseFloat(args[1])
	if err != nil {
		return err
	}
	y, err := parseFloat(args[2])
	if err != nil {
		return err
	}
	return r.apply(ctx, func(context.Context, *graph.Graph) error {
		return v.SetPosition(x, y)
	})
}

func (r *REPL) cmdMerge(ctx context.Context, args []string) error {
	vs, err := r.vertices(args)
	if err != nil {
		return err
	}
	var merged graph.Vertex
	if err := r.apply(ctx, func(_ context.Context, g *graph.Graph) error {
		merged, err = g.Merge(vs)
		return err
	}); err != nil {
		return err
	}
	x, y := merged.Position()
	fmt.Fprintf(r.out, "v%d at (%.2f, %.2f) degree %d\n", merged.ID(), x, y, merged.Degree())
	return nil
}

func (r *REPL) cmdClique(ctx context.Context, args []string) error {
	vs, err := r.vertices(args)
	if err != nil {
		return err
	}
	var added []graph.Edge
	if err := r.apply(ctx, func(_ context.Context, g *graph.Graph) error {
		added, err = g.Cliqueify(vs)
		return err
	}); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "%d edges added\n", len(added))
	return nil
}

func (r *REPL) cmdSelect(ctx context.Context, args []string, on bool) error {
	if len(args) < 2 {
		return errors.New("usage: select|deselect v|e <id>...")
	}
	switch args[0] {
	case "v":
		vs, err := r.vertices(args[1:])
		if err != nil {
			return err
		}
		return r.apply(ctx, func(context.Context, *graph.Graph) error {
			for _, v := range vs {
				if err := v.SetSelected(on); err != nil {
					return err
				}
			}
			return nil
		})
	case "e":
		es, err := r.edges(args[1:])
		if err != nil {
			return err
		}
		return r.apply(ctx, func(context.Context, *graph.Graph) error {
			for _, e := range es {
				if err := e.SetSelected(on); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return fmt.Errorf("unknown kind %q, want v or e", args[0])
}

func (r *REPL) cmdSelected() {
	sel := r.g.Selected()
	if len(sel) == 0 {
		fmt.Fprintln(r.out, "nothing selected")
		return
	}
	fmt.Fprintln(r.out, joinVertices(sel))
}

func (r *REPL) cmdNeighbors(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: neighbors <id>")
	}
	v, err := r.vertex(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "out: %s\n", joinEdges(v.Out()))
	fmt.Fprintf(r.out, "in:  %s\n", joinEdges(v.In()))
	fmt.Fprintf(r.out, "neighbors: %s\n", joinVertices(v.Neighbors()))
	return nil
}

func (r *REPL) aux(kind string) (*graph.Auxiliary, error) {
	switch kind {
	case "v":
		return r.g.VertexAux(), nil
	case "e":
		return r.g.EdgeAux(), nil
	}
	return nil, fmt.Errorf("unknown kind %q, want v or e", kind)
}

func (r *REPL) cmdProp(ctx context.Context, args []string) error {
	if len(args) == 1 && args[0] == "list" {
		for _, p := range r.g.VertexAux().Properties() {
			fmt.Fprintf(r.out, "v %-16s %-8s channel %d\n", p.Name, p.Type, p.Channel)
		}
		for _, p := range r.g.EdgeAux().Properties() {
			fmt.Fprintf(r.out, "e %-16s %-8s channel %d\n", p.Name, p.Type, p.Channel)
		}
		return nil
	}
	if len(args) < 3 {
		return errors.New("usage: prop create|delete|rename|type v|e <name> [arg]")
	}
	op, kind, name := args[0], args[1], args[2]
	aux, err := r.aux(kind)
	if err != nil {
		return err
	}
	arg := ""
	if len(args) > 3 {
		arg = args[3]
	}

	switch op {
	case "create":
		t, err := graph.ParsePropertyType(arg)
		if err != nil {
			return err
		}
		return r.apply(ctx, func(context.Context, *graph.Graph) error {
			_, err := aux.CreateProperty(name, t)
			return err
		})
	case "delete":
		return r.apply(ctx, func(context.Context, *graph.Graph) error {
			return aux.DeleteProperty(name)
		})
	case "rename":
		return r.apply(ctx, func(context.Context, *graph.Graph) error {
			return aux.RenameProperty(name, arg)
		})
	case "type":
		t, err := graph.ParsePropertyType(arg)
		if err != nil {
			return err
		}
		return r.apply(ctx, func(context.Context, *graph.Graph) error {
			return aux.SetPropertyType(name, t)
		})
	}
	return fmt.Errorf("unknown prop operation %q", op)
}

// property resolves "v|e <id> <name>" to a getter and setter on the live handle.
func (r *REPL) property(args []string) (get func() (int32, error), set func(int32) error, t graph.PropertyType, err error) {
	aux, err := r.aux(args[0])
	if err != nil {
		return nil, nil, 0, err
	}
	p, ok := aux.Property(args[2])
	if !ok {
		return nil, nil, 0, fmt.Errorf("%q: %w", args[2], graph.ErrPropertyNotFound)
	}
	if args[0] == "v" {
		v, err := r.vertex(args[1])
		if err != nil {
			return nil, nil, 0, err
		}
		return func() (int32, error) { return v.Property(p.Name) },
			func(x int32) error { return v.SetProperty(p.Name, x) }, p.Type, nil
	}
	e, err := r.edge(args[1])
	if err != nil {
		return nil, nil, 0, err
	}
	return func() (int32, error) { return e.Property(p.Name) },
		func(x int32) error { return e.SetProperty(p.Name, x) }, p.Type, nil
}

func (r *REPL) cmdSet(ctx context.Context, args []string) error {
	if len(args) != 4 {
		return errors.New("usage: set v|e <id> <name> <value|null>")
	}
	_, set, t, err := r.property(args[:3])
	if err != nil {
		return err
	}
	value := t.Null()
	if args[3] != "null" {
		n, err := strconv.ParseInt(args[3], 10, 32)
		if err != nil {
			return fmt.Errorf("value %q: %w", args[3], err)
		}
		value = int32(n)
	}
	return r.apply(ctx, func(context.Context, *graph.Graph) error {
		return set(value)
	})
}

func (r *REPL) cmdGet(args []string) error {
	if len(args) != 3 {
		return errors.New("usage: get v|e <id> <name>")
	}
	get, _, t, err := r.property(args)
	if err != nil {
		return err
	}
	v, err := get()
	if err != nil {
		return err
	}
	if v == t.Null() {
		fmt.Fprintln(r.out, "null")
	} else {
		fmt.Fprintln(r.out, v)
	}
	return nil
}

func (r *REPL) cmdSearch(kind string, args []string) error {
	roots, err := r.vertices(args)
	if err != nil {
		return err
	}
	search := traverse.BFS
	if kind == "dfs" {
		search = traverse.DFS
	}
	tree, err := search(roots...)
	if err != nil {
		return err
	}
	for _, id := range tree.Order {
		fmt.Fprintf(r.out, "v%d depth %d\n", id, tree.Depth[id])
	}
	return nil
}

func (r *REPL) cmdTopo() error {
	order, err := traverse.TopologicalSort(r.g, r.g.Vertices())
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out, joinVertices(order))
	return nil
}

func (r *REPL) cmdComponents() {
	for i, c := range traverse.Components(r.g) {
		fmt.Fprintf(r.out, "%d: %s\n", i, joinVertices(c))
	}
}

func (r *REPL) cmdIsolated(args []string) error {
	roots, err := r.vertices(args)
	if err != nil {
		return err
	}
	iso, err := traverse.Isolated(r.g, nil, roots...)
	if err != nil {
		return err
	}
	if len(iso) == 0 {
		fmt.Fprintln(r.out, "none")
		return nil
	}
	fmt.Fprintln(r.out, joinVertices(iso))
	return nil
}

func (r *REPL) cmdPath(args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return errors.New("usage: path <src> <dst> [weight]")
	}
	src, err := r.vertex(args[0])
	if err != nil {
		return err
	}
	dst, err := r.vertex(args[1])
	if err != nil {
		return err
	}
	weight := ""
	if len(args) == 3 {
		weight = args[2]
	}
	paths, err := traverse.Dijkstra(r.g, src, weight)
	if err != nil {
		return err
	}
	path := paths.PathTo(dst.ID())
	if path == nil {
		fmt.Fprintf(r.out, "v%d is unreachable from v%d\n", dst.ID(), src.ID())
		return nil
	}
	hops := make([]string, len(path))
	for i, id := range path {
		hops[i] = fmt.Sprintf("v%d", id)
	}
	fmt.Fprintf(r.out, "%s (cost %d)\n", strings.Join(hops, " "), paths.Dist[dst.ID()])
	return nil
}

func (r *REPL) cmdAnnotate(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return errors.New("usage: annotate <root> <parent> <depth>")
	}
	root, err := r.vertex(args[0])
	if err != nil {
		return err
	}
	return r.apply(ctx, func(_ context.Context, g *graph.Graph) error {
		tree, err := traverse.BFS(root)
		if err != nil {
			return err
		}
		return tree.Annotate(g, args[1], args[2])
	})
}

func (r *REPL) engine() (*query.Engine, error) {
	if r.queries == nil {
		q, err := query.NewEngine()
		if err != nil {
			return nil, err
		}
		r.queries = q
	}
	return r.queries, nil
}

func (r *REPL) cmdWhere(args []string) error {
	if len(args) < 2 {
		return errors.New("usage: where v|e <expr>")
	}
	engine, err := r.engine()
	if err != nil {
		return err
	}
	expr := strings.Join(args[1:], " ")
	switch args[0] {
	case "v":
		q, err := engine.Vertices(expr)
		if err != nil {
			return err
		}
		vs, err := q.Select(r.g)
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, joinVertices(vs))
		return nil
	case "e":
		q, err := engine.Edges(expr)
		if err != nil {
			return err
		}
		es, err := q.Select(r.g)
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, joinEdges(es))
		return nil
	}
	return fmt.Errorf("unknown kind %q, want v or e", args[0])
}

func (r *REPL) cmdPick(ctx context.Context, args []string) error {
	if len(args) < 2 || args[0] != "v" {
		return errors.New("usage: pick v <expr>")
	}
	engine, err := r.engine()
	if err != nil {
		return err
	}
	q, err := engine.Vertices(strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	var picked int
	if err := r.apply(ctx, func(_ context.Context, g *graph.Graph) error {
		picked = 0
		for _, v := range g.Vertices() {
			ok, err := q.Match(g, v)
			if err != nil {
				return err
			}
			if err := v.SetSelected(ok); err != nil {
				return err
			}
			if ok {
				picked++
			}
		}
		return nil
	}); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "%d selected\n", picked)
	return nil
}

func (r *REPL) cmdReach(args []string) error {
	if len(args) < 2 {
		return errors.New("usage: reach <root> <edge-expr>")
	}
	root, err := r.vertex(args[0])
	if err != nil {
		return err
	}
	engine, err := r.engine()
	if err != nil {
		return err
	}
	q, err := engine.Edges(strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	tree, err := traverse.Reach(q.Filter(r.g), root)
	if err != nil {
		return err
	}
	for _, id := range tree.Order {
		fmt.Fprintf(r.out, "v%d depth %d\n", id, tree.Depth[id])
	}
	return nil
}

func (r *REPL) cmdSave(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: save <path>")
	}
	if err := r.app.Save(ctx, args[0], r.g); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "saved %s\n", args[0])
	return nil
}

func (r *REPL) cmdLoad(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: load <path>")
	}
	g, err := r.app.Load(ctx, args[0])
	if err != nil {
		return err
	}
	if err := r.g.Dispose(ctx); err != nil {
		return err
	}
	r.g = g
	fmt.Fprintf(r.out, "loaded %s: %d vertices, %d edges\n", args[0], g.VertexCount(), g.EdgeCount())
	return nil
}

func (r *REPL) vertex(s string) (graph.Vertex, error) {
	id, err := parseID(s)
	if err != nil {
		return graph.Vertex{}, err
	}
	v, ok := r.g.Vertex(id)
	if !ok {
		return graph.Vertex{}, fmt.Errorf("v%d: %w", id, graph.ErrVertexNotFound)
	}
	return v, nil
}

func (r *REPL) edge(s string) (graph.Edge, error) {
	id, err := parseID(s)
	if err != nil {
		return graph.Edge{}, err
	}
	e, ok := r.g.Edge(id)
	if !ok {
		return graph.Edge{}, fmt.Errorf("e%d: %w", id, graph.ErrEdgeNotFound)
	}
	return e, nil
}

func (r *REPL) vertices(args []string) ([]graph.Vertex, error) {
	if len(args) == 0 {
		return nil, errors.New("expected at least one vertex id")
	}
	vs := make([]graph.Vertex, 0, len(args))
	for _, a := range args {
		v, err := r.vertex(a)
		if err != nil {
			return nil, err
		}
		vs = append(vs, v)
	}
	return vs, nil
}

func (r *REPL) edges(args []string) ([]graph.Edge, error) {
	es := make([]graph.Edge, 0, len(args))
	for _, a := range args {
		e, err := r.edge(a)
		if err != nil {
			return nil, err
		}
		es = append(es, e)
	}
	return es, nil
}

// parseID accepts "3", "v3" and "e3".
func parseID(s string) (uint32, error) {
	s = strings.TrimLeft(s, "ve")
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint32(n), nil
}

func parseFloat(s string) (float32, error) {
	f, err := strconv.ParseFloat(s, 32)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid coordinate %q", s)
	}
	return float32(f), nil
}

func joinVertices(vs []graph.Vertex) string {
	if len(vs) == 0 {
		return "-"
	}
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprintf("v%d", v.ID())
	}
	return strings.Join(parts, " ")
}

func joinEdges(es []graph.Edge) string {
	if len(es) == 0 {
		return "-"
	}
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = fmt.Sprintf("e%d", e.ID())
	}
	return strings.Join(parts, " ")
}
