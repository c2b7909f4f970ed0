package graph

import (
	"encoding/binary"
	"math"

	"github.com/DrSkyle/texgraph/pkg/gpu"
)

// RecordSize is the byte size of one packed record: one RGBA32F texel.
const RecordSize = 4 * gpu.TexelFloats

const growthFactor = 1.618033988749895

// Patch describes the part of a RecordArray that changed since it was last synchronised.
// Lo and Hi are record indices of a half-open dirty range. Resized reports that the logical
// length changed.
type Patch struct {
	Lo, Hi  int
	Resized bool
}

// Empty reports whether the patch carries no work.
func (p Patch) Empty() bool {
	return p.Hi <= p.Lo && !p.Resized
}

func (p Patch) union(o Patch) Patch {
	switch {
	case o.Hi <= o.Lo:
	case p.Hi <= p.Lo:
		p.Lo, p.Hi = o.Lo, o.Hi
	default:
		p.Lo = min(p.Lo, o.Lo)
		p.Hi = max(p.Hi, o.Hi)
	}
	p.Resized = p.Resized || o.Resized
	return p
}

// RecordArray is a growable little-endian byte buffer of fixed-size records.
// Shrinking only moves the logical length; capacity is kept for reuse.
type RecordArray struct {
	buf    []byte
	length int
	patch  Patch
}

// NewRecordArray allocates room for capacity records.
func NewRecordArray(capacity int) *RecordArray {
	if capacity < 1 {
		capacity = 1
	}
	return &RecordArray{buf: make([]byte, capacity*RecordSize)}
}

// Len returns the logical size in bytes.
func (a *RecordArray) Len() int { return a.length }

// Count returns the number of live records.
func (a *RecordArray) Count() int { return a.length / RecordSize }

// Cap returns the allocated capacity in records.
func (a *RecordArray) Cap() int { return len(a.buf) / RecordSize }

func (a *RecordArray) reserve(bytes int) {
	if bytes <= len(a.buf) {
		return
	}
	n := int(float64(len(a.buf))*growthFactor) + RecordSize
	n -= n % RecordSize
	if n < bytes {
		n = bytes
	}
	buf := make([]byte, n)
	copy(buf, a.buf[:a.length])
	a.buf = buf
}

func (a *RecordArray) touch(lo, hi int) {
	a.patch = a.patch.union(Patch{Lo: lo, Hi: hi})
}

// Uint32 reads the word at byte offset off.
func (a *RecordArray) Uint32(off int) uint32 {
	return binary.LittleEndian.Uint32(a.buf[off:])
}

// SetUint32 writes the word at byte offset off.
func (a *RecordArray) SetUint32(off int, v uint32) {
	binary.LittleEndian.PutUint32(a.buf[off:], v)
	r := off / RecordSize
	a.touch(r, r+1)
}

// Float32 reads the float at byte offset off.
func (a *RecordArray) Float32(off int) float32 {
	return math.Float32frombits(a.Uint32(off))
}

// SetFloat32 writes the float at byte offset off.
func (a *RecordArray) SetFloat32(off int, v float32) {
	a.SetUint32(off, math.Float32bits(v))
}

// Push appends a zeroed record and returns its index.
func (a *RecordArray) Push() int {
	i := a.Count()
	a.reserve(a.length + RecordSize)
	clear(a.buf[a.length : a.length+RecordSize])
	a.length += RecordSize
	a.touch(i, i+1)
	a.patch.Resized = true
	return i
}

// PushFrom appends a copy of record src[i] and returns the new index.
func (a *RecordArray) PushFrom(src *RecordArray, i int) int {
	j := a.Push()
	copy(a.record(j), src.record(i))
	return j
}

// SetFrom overwrites record dst with a copy of src[i].
func (a *RecordArray) SetFrom(dst int, src *RecordArray, i int) {
	copy(a.record(dst), src.record(i))
	a.touch(dst, dst+1)
}

// PopFrom moves the last record of src onto the end of a and returns its new index.
func (a *RecordArray) PopFrom(src *RecordArray) int {
	j := a.PushFrom(src, src.Count()-1)
	src.Pop()
	return j
}

// Pop drops the last record.
func (a *RecordArray) Pop() {
	if a.length == 0 {
		return
	}
	a.length -= RecordSize
	a.patch.Resized = true
}

// Truncate shrinks the array to n records.
func (a *RecordArray) Truncate(n int) {
	if n < 0 || n*RecordSize >= a.length {
		return
	}
	a.length = n * RecordSize
	a.patch.Resized = true
}

// Swap exchanges records i and j.
func (a *RecordArray) Swap(i, j int) {
	if i == j {
		return
	}
	var tmp [RecordSize]byte
	copy(tmp[:], a.record(i))
	copy(a.record(i), a.record(j))
	copy(a.record(j), tmp[:])
	a.touch(i, i+1)
	a.touch(j, j+1)
}

func (a *RecordArray) record(i int) []byte {
	off := i * RecordSize
	return a.buf[off : off+RecordSize]
}

// Texels converts records [lo, hi) to texel data, preserving bit patterns.
func (a *RecordArray) Texels(lo, hi int) []float32 {
	out := make([]float32, 0, (hi-lo)*gpu.TexelFloats)
	for off := lo * RecordSize; off < hi*RecordSize; off += 4 {
		out = append(out, math.Float32frombits(binary.LittleEndian.Uint32(a.buf[off:])))
	}
	return out
}

// LoadTexels replaces the contents with texel data read back from a buffer.
// The array is considered in sync afterwards.
func (a *RecordArray) LoadTexels(data []float32) {
	n := len(data) * 4
	n -= n % RecordSize
	a.reserve(n)
	for i := 0; i < n/4; i++ {
		binary.LittleEndian.PutUint32(a.buf[i*4:], math.Float32bits(data[i]))
	}
	a.length = n
	a.patch = Patch{}
}

// Patch returns the pending changes without consuming them.
func (a *RecordArray) Patch() Patch { return a.patch }

// TakePatch returns the pending changes and marks the array clean.
func (a *RecordArray) TakePatch() Patch {
	p := a.patch
	a.patch = Patch{}
	return p
}

// MarkAll flags every live record as changed.
func (a *RecordArray) MarkAll() {
	a.patch = Patch{Lo: 0, Hi: a.Count(), Resized: true}
}

func (a *RecordArray) restorePatch(p Patch) {
	a.patch = a.patch.union(p)
}

// Clone returns a deep copy. The copy starts clean.
func (a *RecordArray) Clone() *RecordArray {
	c := &RecordArray{buf: make([]byte, len(a.buf)), length: a.length}
	copy(c.buf, a.buf[:a.length])
	return c
}

// Bytes returns the live bytes. The slice aliases the array.
func (a *RecordArray) Bytes() []byte {
	return a.buf[:a.length]
}
