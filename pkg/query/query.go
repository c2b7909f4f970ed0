// Package query compiles CEL expressions into vertex and edge predicates.
//
// Vertex expressions see id, index, x, y, degree, indegree, outdegree, selected and props.
// Edge expressions see id, index, u, v, dual, selected and props. props maps property names
// to values and omits nulls, so has(props.rank) tests for a value.
package query

import (
	"fmt"
	"log/slog"

	"github.com/DrSkyle/texgraph/pkg/graph"
	"github.com/google/cel-go/cel"
)

// Engine holds the CEL environments expressions are compiled against.
type Engine struct {
	vertexEnv *cel.Env
	edgeEnv   *cel.Env
}

// NewEngine initializes the CEL environments with the vertex and edge variables.
func NewEngine() (*Engine, error) {
	props := cel.Variable("props", cel.MapType(cel.StringType, cel.IntType))
	vertexEnv, err := cel.NewEnv(
		cel.Variable("id", cel.IntType),
		cel.Variable("index", cel.IntType),
		cel.Variable("x", cel.DoubleType),
		cel.Variable("y", cel.DoubleType),
		cel.Variable("degree", cel.IntType),
		cel.Variable("indegree", cel.IntType),
		cel.Variable("outdegree", cel.IntType),
		cel.Variable("selected", cel.BoolType),
		props,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex env: %w", err)
	}
	edgeEnv, err := cel.NewEnv(
		cel.Variable("id", cel.IntType),
		cel.Variable("index", cel.IntType),
		cel.Variable("u", cel.IntType),
		cel.Variable("v", cel.IntType),
		cel.Variable("dual", cel.BoolType),
		cel.Variable("selected", cel.BoolType),
		props,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create edge env: %w", err)
	}
	return &Engine{vertexEnv: vertexEnv, edgeEnv: edgeEnv}, nil
}

func compile(env *cel.Env, expr string) (cel.Program, error) {
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}
	if t := ast.OutputType(); t.String() != "bool" && t.String() != "dyn" {
		return nil, fmt.Errorf("%q evaluates to %s, want bool", expr, t)
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}
	return prg, nil
}

func eval(prg cel.Program, src string, vars map[string]any) (bool, error) {
	out, _, err := prg.Eval(vars)
	if err != nil {
		return false, fmt.Errorf("evaluate %q: %w", src, err)
	}
	match, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("%q returned %T, want bool", src, out.Value())
	}
	return match, nil
}

func propsOf(aux *graph.Auxiliary, get func(string) (int32, error)) map[string]int64 {
	out := map[string]int64{}
	for _, p := range aux.Properties() {
		v, err := get(p.Name)
		if err != nil || v == p.Type.Null() {
			continue
		}
		out[p.Name] = int64(v)
	}
	return out
}

// VertexQuery is a compiled vertex predicate.
type VertexQuery struct {
	src string
	prg cel.Program
}

// Vertices compiles expr as a vertex predicate.
func (e *Engine) Vertices(expr string) (*VertexQuery, error) {
	prg, err := compile(e.vertexEnv, expr)
	if err != nil {
		return nil, err
	}
	return &VertexQuery{src: expr, prg: prg}, nil
}

func (q *VertexQuery) String() string { return q.src }

// Match evaluates the predicate against v, a vertex of g.
func (q *VertexQuery) Match(g *graph.Graph, v graph.Vertex) (bool, error) {
	if !v.Valid() {
		return false, fmt.Errorf("vertex %d: %w", v.ID(), graph.ErrVertexNotFound)
	}
	x, y := v.Position()
	return eval(q.prg, q.src, map[string]any{
		"id":        int64(v.ID()),
		"index":     int64(v.Index()),
		"x":         float64(x),
		"y":         float64(y),
		"degree":    int64(v.Degree()),
		"indegree":  int64(len(v.In())),
		"outdegree": int64(len(v.Out())),
		"selected":  v.IsSelected(),
		"props":     propsOf(g.VertexAux(), v.Property),
	})
}

// Select returns the vertices of g that match, in physical order.
func (q *VertexQuery) Select(g *graph.Graph) ([]graph.Vertex, error) {
	var out []graph.Vertex
	for _, v := range g.Vertices() {
		ok, err := q.Match(g, v)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, v)
		}
	}
	return out, nil
}

// EdgeQuery is a compiled edge predicate.
type EdgeQuery struct {
	src string
	prg cel.Program
}

// Edges compiles expr as an edge predicate.
func (e *Engine) Edges(expr string) (*EdgeQuery, error) {
	prg, err := compile(e.edgeEnv, expr)
	if err != nil {
		return nil, err
	}
	return &EdgeQuery{src: expr, prg: prg}, nil
}

func (q *EdgeQuery) String() string { return q.src }

// Match evaluates the predicate against e, an edge of g.
func (q *EdgeQuery) Match(g *graph.Graph, e graph.Edge) (bool, error) {
	if !e.Valid() {
		return false, fmt.Errorf("edge %d: %w", e.ID(), graph.ErrEdgeNotFound)
	}
	return eval(q.prg, q.src, map[string]any{
		"id":       int64(e.ID()),
		"index":    int64(e.Index()),
		"u":        int64(e.U().ID()),
		"v":        int64(e.V().ID()),
		"dual":     e.IsDual(),
		"selected": e.IsSelected(),
		"props":    propsOf(g.EdgeAux(), e.Property),
	})
}

// Select returns the edges of g that match, in physical order.
func (q *EdgeQuery) Select(g *graph.Graph) ([]graph.Edge, error) {
	var out []graph.Edge
	for _, e := range g.Edges() {
		ok, err := q.Match(g, e)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, e)
		}
	}
	return out, nil
}

// Filter adapts the predicate to a search edge filter. Evaluation failures are logged and
// treated as a non-match.
func (q *EdgeQuery) Filter(g *graph.Graph) func(from, to graph.Vertex, e graph.Edge) bool {
	return func(_, _ graph.Vertex, e graph.Edge) bool {
		ok, err := q.Match(g, e)
		if err != nil {
			slog.Error("Edge filter evaluation failed", "query", q.src, "edge", e.ID(), "error", err)
			return false
		}
		return ok
	}
}
