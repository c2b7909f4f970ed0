package graph

import "sync"

// Versioner keeps commit/undo/redo snapshots of a set of named fields.
// Every operation acts on all tracked fields at once, so one step of history is one commit.
type Versioner struct {
	mu        sync.Mutex
	fields    []tracked
	precommit []func()
	depth     int // undo entries, identical across fields
	redoDepth int
	limit     int
}

type tracked interface {
	name() string
	commit()
	undo()
	redo()
	revert()
	clearRedo()
	dropOldest()
}

type field[T any] struct {
	label string
	get   func() T
	set   func(T)
	clone func(T) T
	last  T
	past  []T
	next  []T
}

// NewVersioner creates a versioner with unlimited history.
func NewVersioner() *Versioner {
	return &Versioner{}
}

// Track registers a field. The current value becomes the committed baseline.
func Track[T any](v *Versioner, name string, get func() T, set func(T), clone func(T) T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.fields = append(v.fields, &field[T]{
		label: name,
		get:   get,
		set:   set,
		clone: clone,
		last:  clone(get()),
	})
}

func (f *field[T]) name() string { return f.label }

func (f *field[T]) commit() {
	f.past = append(f.past, f.last)
	f.last = f.clone(f.get())
}

func (f *field[T]) undo() {
	n := len(f.past) - 1
	prev := f.past[n]
	f.past = f.past[:n]
	f.next = append(f.next, f.last)
	f.last = prev
	f.set(f.clone(prev))
}

func (f *field[T]) redo() {
	n := len(f.next) - 1
	nxt := f.next[n]
	f.next = f.next[:n]
	f.past = append(f.past, f.last)
	f.last = nxt
	f.set(f.clone(nxt))
}

func (f *field[T]) revert() {
	f.set(f.clone(f.last))
}

func (f *field[T]) clearRedo() {
	clear(f.next)
	f.next = f.next[:0]
}

func (f *field[T]) dropOldest() {
	var zero T
	f.past[0] = zero
	f.past = f.past[1:]
}

// OnPrecommit registers a hook run by Precommit.
func (v *Versioner) OnPrecommit(fn func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.precommit = append(v.precommit, fn)
}

// Precommit runs the registered hooks. Hosts call it right before Commit.
func (v *Versioner) Precommit() {
	v.mu.Lock()
	hooks := v.precommit
	v.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}

// Commit pushes the last committed values onto the undo stacks and snapshots the live values.
func (v *Versioner) Commit() {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, f := range v.fields {
		f.commit()
	}
	v.depth++
	for v.limit > 0 && v.depth > v.limit {
		for _, f := range v.fields {
			f.dropOldest()
		}
		v.depth--
	}
}

// Undo restores every field to its previous committed value.
func (v *Versioner) Undo() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.depth == 0 {
		return ErrNothingToUndo
	}
	for _, f := range v.fields {
		f.undo()
	}
	v.depth--
	v.redoDepth++
	return nil
}

// Redo reapplies the most recently undone commit.
func (v *Versioner) Redo() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.redoDepth == 0 {
		return ErrNothingToRedo
	}
	for _, f := range v.fields {
		f.redo()
	}
	v.redoDepth--
	v.depth++
	return nil
}

// Revert discards uncommitted changes by restoring the last committed values.
func (v *Versioner) Revert() {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, f := range v.fields {
		f.revert()
	}
}

// ClearRedo drops redo history.
func (v *Versioner) ClearRedo() {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, f := range v.fields {
		f.clearRedo()
	}
	v.redoDepth = 0
}

// CanUndo reports whether Undo would succeed.
func (v *Versioner) CanUndo() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.depth > 0
}

// CanRedo reports whether Redo would succeed.
func (v *Versioner) CanRedo() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.redoDepth > 0
}

// Depth returns the sizes of the undo and redo stacks.
func (v *Versioner) Depth() (undo, redo int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.depth, v.redoDepth
}

// SetLimit caps the undo depth; 0 means unlimited. Excess history is dropped oldest first.
func (v *Versioner) SetLimit(n int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.limit = max(n, 0)
	for v.limit > 0 && v.depth > v.limit {
		for _, f := range v.fields {
			f.dropOldest()
		}
		v.depth--
	}
}

// Fields returns the tracked field names in registration order.
func (v *Versioner) Fields() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]string, len(v.fields))
	for i, f := range v.fields {
		out[i] = f.name()
	}
	return out
}
