package gpu

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBufferRoundTrip(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBuffer("vertices", 0)
	assert.Equal(t, DefaultWidth, b.Width())
	assert.Equal(t, 0, b.Size())

	b.ResizeErase(4)
	require.Equal(t, 4, b.Size())

	require.NoError(t, b.Write(ctx, []float32{1, 2, 3, 4, 5, 6, 7, 8}, 1))

	got, err := b.Read(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6, 7, 8}, got)

	all, err := b.Read(ctx, 0, -1)
	require.NoError(t, err)
	assert.Len(t, all, 16)
	assert.Equal(t, float32(0), all[0])

	stats := b.Stats()
	assert.Equal(t, 2, stats.Reads)
	assert.Equal(t, 1, stats.Writes)
	assert.Equal(t, 1, stats.Resizes)
}

func TestMemoryBufferBounds(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBuffer("edges", 16)
	b.ResizeErase(2)

	assert.ErrorIs(t, b.Write(ctx, make([]float32, 12), 0), ErrOutOfBounds)
	_, err := b.Read(ctx, 1, 2)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestMemoryBufferResizeErases(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBuffer("aux", 16)
	b.ResizeErase(1)
	require.NoError(t, b.Write(ctx, []float32{9, 9, 9, 9}, 0))

	b.ResizeErase(2)
	got, err := b.Read(ctx, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, make([]float32, 8), got)
}

func TestMemoryBufferHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := NewMemoryBuffer("v", 16)
	b.ResizeErase(1)
	_, err := b.Read(ctx, 0, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
