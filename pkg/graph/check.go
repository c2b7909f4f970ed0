package graph

import (
	"fmt"
)

// Check audits the store's bookkeeping: id and index round-trips, adjacency against endpoint
// words, dual flags and auxiliary sizes. Any disagreement is reported as ErrInconsistent.
func (g *Graph) Check() error {
	nv, ne := g.vertices.Count(), g.edges.Count()

	if g.whereVertex.Len() != nv {
		return inconsistent("vertex ids: %d live, %d records", g.whereVertex.Len(), nv)
	}
	if g.whereEdge.Len() != ne {
		return inconsistent("edge ids: %d live, %d records", g.whereEdge.Len(), ne)
	}
	if len(g.incidency) != nv {
		return inconsistent("incidency sized %d for %d vertices", len(g.incidency), nv)
	}
	if g.directed && len(g.outcidency) != nv {
		return inconsistent("outcidency sized %d for %d vertices", len(g.outcidency), nv)
	}
	if g.vertexAux.Len() != nv {
		return inconsistent("vertex properties sized %d for %d vertices", g.vertexAux.Len(), nv)
	}
	if g.edgeAux.Len() != ne {
		return inconsistent("edge properties sized %d for %d edges", g.edgeAux.Len(), ne)
	}

	if err := checkIds("vertex", g.whereVertex, g.vertices, nv); err != nil {
		return err
	}
	if err := checkIds("edge", g.whereEdge, g.edges, ne); err != nil {
		return err
	}

	for i := 0; i < nv; i++ {
		id := g.vertices.idAt(i)
		if at, ok := g.whereVertex.Get(id); !ok || int(at) != i {
			return inconsistent("vertex %d at index %d resolves to %d (live=%v)", id, i, at, ok)
		}
	}

	entries := 0
	for _, m := range g.incidency {
		entries += len(m)
	}
	for _, m := range g.outcidency {
		entries += len(m)
	}
	if entries != 2*ne {
		return inconsistent("%d adjacency entries for %d edges", entries, ne)
	}

	for i := 0; i < ne; i++ {
		rec := g.edges.Edge(i)
		if at, ok := g.whereEdge.Get(rec.ID); !ok || int(at) != i {
			return inconsistent("edge %d at index %d resolves to %d (live=%v)", rec.ID, i, at, ok)
		}
		if int(rec.U.Index) >= nv || int(rec.V.Index) >= nv {
			return inconsistent("edge %d references index %d-%d of %d", rec.ID, rec.U.Index, rec.V.Index, nv)
		}
		uid := g.vertices.idAt(int(rec.U.Index))
		vid := g.vertices.idAt(int(rec.V.Index))

		if !g.directed {
			if g.incidency[rec.U.Index][vid] != rec.ID || g.incidency[rec.V.Index][uid] != rec.ID {
				return inconsistent("edge %d missing from adjacency of %d-%d", rec.ID, uid, vid)
			}
			if rec.U.Dual || rec.U.Marker || rec.V.Dual || rec.V.Marker {
				return inconsistent("undirected edge %d carries direction bits", rec.ID)
			}
			continue
		}

		if g.outcidency[rec.U.Index][vid] != rec.ID || g.incidency[rec.V.Index][uid] != rec.ID {
			return inconsistent("edge %d missing from adjacency of %d->%d", rec.ID, uid, vid)
		}
		_, inverse := g.outcidency[rec.V.Index][uid]
		if rec.U.Dual != inverse || rec.U.Marker != inverse || !rec.V.Marker || rec.V.Dual {
			return inconsistent("edge %d dual bits %+v/%+v, inverse=%v", rec.ID, rec.U, rec.V, inverse)
		}
	}
	return nil
}

// checkIds verifies every live id points at a record carrying it, and that the id the
// allocator hands out next is free.
func checkIds(kind string, ids *Ids, arr *RecordArray, n int) error {
	var err error
	ids.Each(func(id, at uint32) {
		if err == nil && (int(at) >= n || arr.idAt(int(at)) != id) {
			err = inconsistent("%s id %d points at index %d of %d", kind, id, at, n)
		}
	})
	if err != nil {
		return err
	}
	if next := ids.Next(); ids.Has(next) {
		return inconsistent("next %s id %d is already live", kind, next)
	}
	return nil
}

func inconsistent(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInconsistent)
}
