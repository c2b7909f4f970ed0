package graph

import "errors"

// Contract errors. These indicate caller misuse and are never retried.
var (
	// ErrVertexNotFound indicates that a vertex id is not live.
	ErrVertexNotFound = errors.New("vertex not found")

	// ErrEdgeNotFound indicates that an edge id is not live.
	ErrEdgeNotFound = errors.New("edge not found")

	// ErrEdgeExists indicates that the edge u->v (or u-v) is already present.
	ErrEdgeExists = errors.New("edge already exists")

	// ErrSelfLoop indicates an attempt to connect a vertex to itself.
	ErrSelfLoop = errors.New("self-loop")

	// ErrIndexOutOfRange indicates a physical index past the live records.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrEmptyMerge indicates a merge over an empty vertex set.
	ErrEmptyMerge = errors.New("merge requires at least one vertex")
)

// Property errors.
var (
	// ErrPropertyExists indicates a property name collision.
	ErrPropertyExists = errors.New("property already exists")

	// ErrPropertyNotFound indicates that no property has the given name.
	ErrPropertyNotFound = errors.New("property not found")

	// ErrUnknownPropertyType indicates a property type outside the supported set.
	ErrUnknownPropertyType = errors.New("unknown property type")

	// ErrInvalidPropertyName indicates an empty property name.
	ErrInvalidPropertyName = errors.New("invalid property name")
)

// Versioning errors.
var (
	// ErrNothingToUndo indicates an undo with an empty undo stack.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo indicates a redo with an empty redo stack.
	ErrNothingToRedo = errors.New("nothing to redo")

	// ErrInconsistent indicates that the store's internal bookkeeping disagrees with itself.
	// It is a bug in the engine, not a caller error.
	ErrInconsistent = errors.New("internal consistency violation")
)

// Lifecycle errors.
var (
	// ErrDisposed indicates use of a graph after Dispose.
	ErrDisposed = errors.New("graph disposed")
)
