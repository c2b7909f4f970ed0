// Package gpu defines the texture-buffer collaborator the graph store mirrors its packed arrays onto.
package gpu

import (
	"context"
	"errors"
)

// TexelFloats is the number of float32 channels in one RGBA32F texel.
const TexelFloats = 4

// ErrOutOfBounds indicates a read or write past the buffer's allocated size.
var ErrOutOfBounds = errors.New("buffer access out of bounds")

// Buffer is a GPU-resident array of RGBA32F texels.
// Offsets and lengths are measured in texels; data carries TexelFloats floats per texel.
type Buffer interface {
	// Size returns the allocated capacity in texels.
	Size() int
	// Width returns the texture row width in texels.
	Width() int
	// Read copies length texels starting at start. A negative length reads to the end.
	Read(ctx context.Context, start, length int) ([]float32, error)
	// Write stores data starting at texel start.
	Write(ctx context.Context, data []float32, start int) error
	// ResizeErase reallocates the buffer to n texels, discarding its contents.
	ResizeErase(n int)
}

// Factory allocates a new, empty buffer. The label names the array it will mirror.
type Factory func(label string) Buffer
