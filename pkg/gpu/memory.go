package gpu

import (
	"context"
	"fmt"
	"sync"
)

// DefaultWidth is the row width used when a MemoryBuffer is created without one.
const DefaultWidth = 1024

// MemoryBuffer keeps texels in host memory. It stands in for a texture when no renderer is
// attached (tests, CLI, headless hosts) and records traffic for inspection.
type MemoryBuffer struct {
	mu       sync.RWMutex
	label    string
	width    int
	data     []float32
	reads    int
	writes   int
	resizes  int
	texelsIO int
}

// NewMemoryBuffer creates an empty buffer.
func NewMemoryBuffer(label string, width int) *MemoryBuffer {
	if width <= 0 {
		width = DefaultWidth
	}
	return &MemoryBuffer{label: label, width: width}
}

// NewMemoryFactory returns a Factory producing MemoryBuffers of the given row width.
func NewMemoryFactory(width int) Factory {
	return func(label string) Buffer {
		return NewMemoryBuffer(label, width)
	}
}

// Label returns the name given at allocation.
func (b *MemoryBuffer) Label() string {
	return b.label
}

func (b *MemoryBuffer) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.data) / TexelFloats
}

func (b *MemoryBuffer) Width() int {
	return b.width
}

func (b *MemoryBuffer) Read(ctx context.Context, start, length int) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	size := len(b.data) / TexelFloats
	if length < 0 {
		length = size - start
	}
	if start < 0 || length < 0 || start+length > size {
		return nil, fmt.Errorf("%s: read [%d,%d) of %d: %w", b.label, start, start+length, size, ErrOutOfBounds)
	}
	out := make([]float32, length*TexelFloats)
	copy(out, b.data[start*TexelFloats:(start+length)*TexelFloats])
	b.reads++
	b.texelsIO += length
	return out, nil
}

func (b *MemoryBuffer) Write(ctx context.Context, data []float32, start int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	size := len(b.data) / TexelFloats
	texels := (len(data) + TexelFloats - 1) / TexelFloats
	if start < 0 || start+texels > size {
		return fmt.Errorf("%s: write [%d,%d) of %d: %w", b.label, start, start+texels, size, ErrOutOfBounds)
	}
	copy(b.data[start*TexelFloats:], data)
	b.writes++
	b.texelsIO += texels
	return nil
}

func (b *MemoryBuffer) ResizeErase(n int) {
	if n < 0 {
		n = 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = make([]float32, n*TexelFloats)
	b.resizes++
}

// Stats reports the traffic a MemoryBuffer has seen.
type Stats struct {
	Reads   int
	Writes  int
	Resizes int
	Texels  int // texels moved by reads and writes
}

// Stats returns a copy of the buffer's traffic counters.
func (b *MemoryBuffer) Stats() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Stats{Reads: b.reads, Writes: b.writes, Resizes: b.resizes, Texels: b.texelsIO}
}

// Poke overwrites texels directly, the way a shader pass writing into the texture would.
func (b *MemoryBuffer) Poke(start int, data []float32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	copy(b.data[start*TexelFloats:], data)
}
