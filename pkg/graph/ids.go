package graph

// Ids maps stable 1-based identifiers to a current value (a physical index).
// Id 0 is never handed out so it can mean "absent" inside packed records.
// Freed ids are reused last-freed-first, so replaying the same create/delete
// sequence yields the same ids.
type Ids struct {
	slots []uint32 // value+1 per id-1; 0 marks a free slot
	free  []uint32
	live  int
}

// InvalidID is the id reserved for "no entity".
const InvalidID uint32 = 0

// NewIds creates an empty allocator.
func NewIds() *Ids {
	return &Ids{slots: make([]uint32, 0, 64)}
}

// Create allocates an id for value, reusing a freed id if one exists.
func (a *Ids) Create(value uint32) uint32 {
	a.live++
	if n := len(a.free); n > 0 {
		id := a.free[n-1]
		a.free = a.free[:n-1]
		a.slots[id-1] = value + 1
		return id
	}
	a.slots = append(a.slots, value+1)
	return uint32(len(a.slots))
}

// Get returns the value stored for id.
func (a *Ids) Get(id uint32) (uint32, bool) {
	if id == InvalidID || int(id) > len(a.slots) {
		return 0, false
	}
	v := a.slots[id-1]
	if v == 0 {
		return 0, false
	}
	return v - 1, true
}

// Set overwrites the value of a live id. Setting a free id is a no-op.
func (a *Ids) Set(id, value uint32) {
	if !a.Has(id) {
		return
	}
	a.slots[id-1] = value + 1
}

// Delete frees id. It reports false if id was not live.
func (a *Ids) Delete(id uint32) bool {
	if !a.Has(id) {
		return false
	}
	a.slots[id-1] = 0
	a.free = append(a.free, id)
	a.live--
	return true
}

// Has reports whether id is live.
func (a *Ids) Has(id uint32) bool {
	return id != InvalidID && int(id) <= len(a.slots) && a.slots[id-1] != 0
}

// Len returns the number of live ids.
func (a *Ids) Len() int {
	return a.live
}

// Next returns the id the next Create will hand out.
func (a *Ids) Next() uint32 {
	if n := len(a.free); n > 0 {
		return a.free[n-1]
	}
	return uint32(len(a.slots)) + 1
}

// Each calls fn for every live id in ascending order.
func (a *Ids) Each(fn func(id, value uint32)) {
	for i, v := range a.slots {
		if v != 0 {
			fn(uint32(i+1), v-1)
		}
	}
}

// Clone returns a deep copy, free list included.
func (a *Ids) Clone() *Ids {
	c := &Ids{
		slots: make([]uint32, len(a.slots)),
		free:  make([]uint32, len(a.free)),
		live:  a.live,
	}
	copy(c.slots, a.slots)
	copy(c.free, a.free)
	return c
}
