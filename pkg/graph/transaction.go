package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// State is the phase of the tick cycle a graph is in.
type State int32

const (
	StateIdle State = iota
	StateDownloading
	StateMutating
	StateCommitting
	StateUploading
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDownloading:
		return "downloading"
	case StateMutating:
		return "mutating"
	case StateCommitting:
		return "committing"
	case StateUploading:
		return "uploading"
	case StateDisposed:
		return "disposed"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Kind distinguishes edits from history replays. Replays are not committed.
type Kind uint8

const (
	KindEdit Kind = iota
	KindUndo
	KindRedo
)

func (k Kind) String() string {
	switch k {
	case KindEdit:
		return "edit"
	case KindUndo:
		return "undo"
	case KindRedo:
		return "redo"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// TxFunc mutates the graph. Returning an error rolls the graph back to the last commit.
type TxFunc func(ctx context.Context, g *Graph) error

// TxOption adjusts a queued transaction.
type TxOption func(*transaction)

// AsUndo marks the transaction as an undo replay.
func AsUndo() TxOption {
	return func(t *transaction) { t.kind = KindUndo }
}

// AsRedo marks the transaction as a redo replay.
func AsRedo() TxOption {
	return func(t *transaction) { t.kind = KindRedo }
}

type transaction struct {
	fn      TxFunc
	kind    Kind
	pending *Pending
	queued  time.Time
}

// Pending completes once its transaction has been applied and uploaded.
type Pending struct {
	done chan struct{}
	err  error
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

func (p *Pending) complete(err error) {
	p.err = err
	close(p.done)
}

// Done is closed when the transaction finished.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Err returns the transaction's result. It is nil until Done is closed.
func (p *Pending) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}

// Wait blocks until the transaction finished or ctx ends.
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Transaction queues fn. It is safe to call from any goroutine.
func (g *Graph) Transaction(fn TxFunc, opts ...TxOption) *Pending {
	tx := &transaction{fn: fn, pending: newPending(), queued: time.Now()}
	for _, opt := range opts {
		opt(tx)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.State() == StateDisposed {
		tx.pending.complete(ErrDisposed)
		return tx.pending
	}
	g.queue = append(g.queue, tx)
	g.metrics.setQueueDepth(len(g.queue))
	return tx.pending
}

// Undo queues a step back in history.
func (g *Graph) Undo() *Pending {
	return g.Transaction(func(_ context.Context, g *Graph) error {
		return g.replay(g.versioner.Undo, g.versioner.Redo)
	}, AsUndo())
}

// Redo queues a step forward in history.
func (g *Graph) Redo() *Pending {
	return g.Transaction(func(_ context.Context, g *Graph) error {
		return g.replay(g.versioner.Redo, g.versioner.Undo)
	}, AsRedo())
}

// replay moves one step through history. A step that restores an inconsistent snapshot is
// undone with its inverse, so the live state and both history stacks are as before the call.
func (g *Graph) replay(step, inverse func() error) error {
	if err := step(); err != nil {
		return err
	}
	if err := g.Check(); err != nil {
		g.logger.Error("history replay left graph inconsistent", "error", err)
		if invErr := inverse(); invErr != nil {
			return errors.Join(err, invErr)
		}
		return err
	}
	g.logger.Info("history replayed",
		"vertices", g.VertexCount(), "edges", g.EdgeCount())
	return nil
}

// CanUndo reports whether there is committed history to step back through.
func (g *Graph) CanUndo() bool { return g.versioner.CanUndo() }

// CanRedo reports whether there is undone history to step forward through.
func (g *Graph) CanRedo() bool { return g.versioner.CanRedo() }

// State returns the current phase.
func (g *Graph) State() State { return State(g.state.Load()) }

func (g *Graph) setState(s State) {
	if g.State() == StateDisposed {
		return
	}
	g.state.Store(int32(s))
}

// QueueLen returns the number of transactions waiting.
func (g *Graph) QueueLen() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.queue)
}

func (g *Graph) dequeue() *transaction {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.queue) == 0 {
		return nil
	}
	tx := g.queue[0]
	g.queue[0] = nil
	g.queue = g.queue[1:]
	g.metrics.setQueueDepth(len(g.queue))
	return tx
}

// Tick runs at most one queued transaction through download, mutate, commit and upload.
// It reports whether a transaction was processed; the error is also delivered to its Pending.
func (g *Graph) Tick(ctx context.Context) (bool, error) {
	if g.State() == StateDisposed {
		return false, ErrDisposed
	}
	tx := g.dequeue()
	if tx == nil {
		return false, nil
	}

	ctx, span := g.tracer.Start(ctx, "Graph.Tick", trace.WithAttributes(
		attribute.String("graph.id", g.id),
		attribute.String("tx.kind", tx.kind.String()),
	))
	start := time.Now()
	err := g.run(ctx, tx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()

	g.metrics.observeTick(tx.kind, time.Since(start), err)
	g.logger.Debug("tick",
		"kind", tx.kind.String(),
		"wait", start.Sub(tx.queued),
		"took", time.Since(start),
		"error", err)
	tx.pending.complete(err)
	return true, err
}

func (g *Graph) run(ctx context.Context, tx *transaction) error {
	defer g.setState(StateIdle)

	g.setState(StateDownloading)
	if err := g.phase(ctx, "download", g.download); err != nil {
		return fmt.Errorf("download: %w", err)
	}

	g.setState(StateMutating)
	err := g.phase(ctx, "mutate", func(ctx context.Context) error {
		return tx.fn(ctx, g)
	})
	if err != nil {
		g.versioner.Revert()
		g.logger.Warn("transaction rolled back", "kind", tx.kind.String(), "error", err)
		if upErr := g.phase(ctx, "upload", g.upload); upErr != nil {
			return errors.Join(err, fmt.Errorf("upload: %w", upErr))
		}
		return err
	}

	if tx.kind == KindEdit {
		g.setState(StateCommitting)
		_ = g.phase(ctx, "commit", func(context.Context) error {
			g.versioner.Precommit()
			g.versioner.Commit()
			g.versioner.ClearRedo()
			return nil
		})
	} else {
		g.metrics.setEntities(g.VertexCount(), g.EdgeCount())
	}

	g.setState(StateUploading)
	if err := g.phase(ctx, "upload", g.upload); err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	return nil
}

func (g *Graph) phase(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := g.tracer.Start(ctx, name)
	defer span.End()
	err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// Drain ticks until the queue is empty and joins every transaction error.
func (g *Graph) Drain(ctx context.Context) error {
	var errs []error
	for {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(errs, err)...)
		}
		ran, err := g.Tick(ctx)
		if err != nil {
			errs = append(errs, err)
		}
		if !ran {
			return errors.Join(errs...)
		}
	}
}

func (g *Graph) download(ctx context.Context) error {
	if _, err := downloadArray(ctx, g.vertexBuf, g.vertices); err != nil {
		return fmt.Errorf("vertices: %w", err)
	}
	if _, err := downloadArray(ctx, g.edgeBuf, g.edges); err != nil {
		return fmt.Errorf("edges: %w", err)
	}
	if err := g.vertexAux.Download(ctx); err != nil {
		return err
	}
	return g.edgeAux.Download(ctx)
}

func (g *Graph) upload(ctx context.Context) error {
	if _, err := uploadArray(ctx, g.vertexBuf, g.vertices); err != nil {
		return fmt.Errorf("vertices: %w", err)
	}
	if _, err := uploadArray(ctx, g.edgeBuf, g.edges); err != nil {
		return fmt.Errorf("edges: %w", err)
	}
	if err := g.vertexAux.Upload(ctx); err != nil {
		return err
	}
	return g.edgeAux.Upload(ctx)
}

// Dispose fails every queued transaction with ErrDisposed and releases the mirror buffers.
func (g *Graph) Dispose(_ context.Context) error {
	g.mu.Lock()
	if g.State() == StateDisposed {
		g.mu.Unlock()
		return nil
	}
	g.state.Store(int32(StateDisposed))
	queued := g.queue
	g.queue = nil
	g.metrics.setQueueDepth(0)
	g.mu.Unlock()

	for _, tx := range queued {
		tx.pending.complete(ErrDisposed)
	}
	g.vertexBuf.ResizeErase(0)
	g.edgeBuf.ResizeErase(0)
	g.vertexAux.dispose()
	g.edgeAux.dispose()
	g.logger.Debug("disposed", "dropped", len(queued))
	return nil
}
