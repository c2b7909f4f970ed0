package graph

import (
	"maps"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counterDoc struct {
	n    int
	tags map[string]int
}

func trackDoc(v *Versioner, d *counterDoc) {
	Track(v, "n",
		func() int { return d.n },
		func(x int) { d.n = x },
		func(x int) int { return x })
	Track(v, "tags",
		func() map[string]int { return d.tags },
		func(m map[string]int) { d.tags = m },
		func(m map[string]int) map[string]int { return maps.Clone(m) })
}

func TestVersionerUndoRedoRoundTrip(t *testing.T) {
	d := &counterDoc{tags: map[string]int{}}
	v := NewVersioner()
	trackDoc(v, d)

	d.n = 1
	d.tags["a"] = 1
	v.Commit()
	d.n = 2
	d.tags["b"] = 2
	v.Commit()

	require.NoError(t, v.Undo())
	assert.Equal(t, 1, d.n)
	assert.Equal(t, map[string]int{"a": 1}, d.tags)

	require.NoError(t, v.Undo())
	assert.Equal(t, 0, d.n)
	assert.Empty(t, d.tags)
	assert.ErrorIs(t, v.Undo(), ErrNothingToUndo)

	require.NoError(t, v.Redo())
	require.NoError(t, v.Redo())
	assert.Equal(t, 2, d.n)
	assert.Equal(t, map[string]int{"a": 1, "b": 2}, d.tags)
	assert.ErrorIs(t, v.Redo(), ErrNothingToRedo)
}

func TestVersionerSnapshotsAreNotAliased(t *testing.T) {
	d := &counterDoc{tags: map[string]int{}}
	v := NewVersioner()
	trackDoc(v, d)

	d.tags["a"] = 1
	v.Commit()
	require.NoError(t, v.Undo())
	d.tags["mutated"] = 1
	require.NoError(t, v.Redo())
	assert.Equal(t, map[string]int{"a": 1}, d.tags)
}

func TestVersionerRevertDiscardsUncommitted(t *testing.T) {
	d := &counterDoc{tags: map[string]int{}}
	v := NewVersioner()
	trackDoc(v, d)

	d.n = 5
	v.Commit()
	d.n = 6
	d.tags["x"] = 1
	v.Revert()
	assert.Equal(t, 5, d.n)
	assert.Empty(t, d.tags)
	u, r := v.Depth()
	assert.Equal(t, 1, u)
	assert.Equal(t, 0, r)
}

func TestVersionerClearRedo(t *testing.T) {
	d := &counterDoc{tags: map[string]int{}}
	v := NewVersioner()
	trackDoc(v, d)

	d.n = 1
	v.Commit()
	require.NoError(t, v.Undo())
	assert.True(t, v.CanRedo())
	v.ClearRedo()
	assert.False(t, v.CanRedo())
	assert.ErrorIs(t, v.Redo(), ErrNothingToRedo)
}

func TestVersionerLimitDropsOldest(t *testing.T) {
	d := &counterDoc{tags: map[string]int{}}
	v := NewVersioner()
	trackDoc(v, d)
	v.SetLimit(2)

	for i := 1; i <= 5; i++ {
		d.n = i
		v.Commit()
	}
	u, _ := v.Depth()
	assert.Equal(t, 2, u)
	require.NoError(t, v.Undo())
	require.NoError(t, v.Undo())
	assert.Equal(t, 3, d.n)
	assert.False(t, v.CanUndo())
}

func TestVersionerPrecommitHooks(t *testing.T) {
	v := NewVersioner()
	var calls []string
	v.OnPrecommit(func() { calls = append(calls, "a") })
	v.OnPrecommit(func() { calls = append(calls, "b") })
	v.Precommit()
	assert.Equal(t, []string{"a", "b"}, calls)
	assert.Empty(t, v.Fields())
}
