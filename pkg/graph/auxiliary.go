package graph

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/DrSkyle/texgraph/pkg/gpu"
)

// PropertyType selects how a property's 32-bit channel is interpreted.
type PropertyType uint8

const (
	PropertyInteger PropertyType = iota
	PropertyVertexRef
	PropertyEdgeRef
)

// Null sentinels written into every channel on creation and on a type change.
const (
	NullInteger int32 = math.MaxInt32
	NullRef     int32 = -1
)

func (t PropertyType) String() string {
	switch t {
	case PropertyInteger:
		return "integer"
	case PropertyVertexRef:
		return "vertex"
	case PropertyEdgeRef:
		return "edge"
	default:
		return fmt.Sprintf("PropertyType(%d)", uint8(t))
	}
}

// Valid reports whether t is one of the supported types.
func (t PropertyType) Valid() bool {
	return t <= PropertyEdgeRef
}

// Null returns the sentinel for t.
func (t PropertyType) Null() int32 {
	if t == PropertyInteger {
		return NullInteger
	}
	return NullRef
}

// ParsePropertyType is the inverse of PropertyType.String.
func ParsePropertyType(s string) (PropertyType, error) {
	switch s {
	case "integer", "int":
		return PropertyInteger, nil
	case "vertex":
		return PropertyVertexRef, nil
	case "edge":
		return PropertyEdgeRef, nil
	}
	return 0, fmt.Errorf("%q: %w", s, ErrUnknownPropertyType)
}

// Property describes one auxiliary channel. Channel changes when other properties are deleted.
type Property struct {
	Name    string
	Type    PropertyType
	Channel int
}

// auxState is the versioned part of an Auxiliary.
type auxState struct {
	props  []Property
	count  int
	arrays []*RecordArray
}

func (s auxState) clone() auxState {
	c := auxState{
		props:  slices.Clone(s.props),
		count:  s.count,
		arrays: make([]*RecordArray, len(s.arrays)),
	}
	for i, a := range s.arrays {
		c.arrays[i] = a.Clone()
	}
	return c
}

// Auxiliary stores user-defined 32-bit properties for every vertex or every edge.
// Channels are packed four per record array so each array maps onto one texture.
type Auxiliary struct {
	label   string
	state   auxState
	buffers []gpu.Buffer
	factory gpu.Factory

	// structural is set when the array list changed and buffers must be reconciled.
	structural bool
}

func newAuxiliary(label string, factory gpu.Factory) *Auxiliary {
	return &Auxiliary{label: label, factory: factory}
}

// Properties returns the declared properties in channel order.
func (a *Auxiliary) Properties() []Property {
	return slices.Clone(a.state.props)
}

// Property looks a property up by name.
func (a *Auxiliary) Property(name string) (Property, bool) {
	for _, p := range a.state.props {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// Len returns the number of entities each property holds a value for.
func (a *Auxiliary) Len() int { return a.state.count }

// Arrays returns the number of backing record arrays.
func (a *Auxiliary) Arrays() int { return len(a.state.arrays) }

func (a *Auxiliary) lookup(name string) (Property, error) {
	p, ok := a.Property(name)
	if !ok {
		return Property{}, fmt.Errorf("%s property %q: %w", a.label, name, ErrPropertyNotFound)
	}
	return p, nil
}

func channelOffset(channel, index int) (array, off int) {
	return channel / gpu.TexelFloats, index*RecordSize + (channel%gpu.TexelFloats)*4
}

func (a *Auxiliary) raw(channel, index int) int32 {
	arr, off := channelOffset(channel, index)
	return int32(a.state.arrays[arr].Uint32(off))
}

func (a *Auxiliary) setRaw(channel, index int, v int32) {
	arr, off := channelOffset(channel, index)
	a.state.arrays[arr].SetUint32(off, uint32(v))
}

func (a *Auxiliary) fill(channel int, v int32) {
	for i := 0; i < a.state.count; i++ {
		a.setRaw(channel, i, v)
	}
}

// CreateProperty declares a property and backfills every existing entity with the type's null.
func (a *Auxiliary) CreateProperty(name string, t PropertyType) (Property, error) {
	if name == "" {
		return Property{}, ErrInvalidPropertyName
	}
	if !t.Valid() {
		return Property{}, fmt.Errorf("%s property %q: %w", a.label, name, ErrUnknownPropertyType)
	}
	if _, ok := a.Property(name); ok {
		return Property{}, fmt.Errorf("%s property %q: %w", a.label, name, ErrPropertyExists)
	}

	channel := len(a.state.props)
	if channel%gpu.TexelFloats == 0 {
		arr := NewRecordArray(max(a.state.count, 1))
		for i := 0; i < a.state.count; i++ {
			arr.Push()
		}
		a.state.arrays = append(a.state.arrays, arr)
		a.structural = true
	}
	p := Property{Name: name, Type: t, Channel: channel}
	a.state.props = append(a.state.props, p)
	a.fill(channel, t.Null())
	return p, nil
}

// DeleteProperty removes a property. The last channel is moved into the freed slot and a
// backing array is released once it holds no channel.
func (a *Auxiliary) DeleteProperty(name string) error {
	p, err := a.lookup(name)
	if err != nil {
		return err
	}
	last := len(a.state.props) - 1
	if p.Channel != last {
		moved := a.state.props[last]
		for i := 0; i < a.state.count; i++ {
			a.setRaw(p.Channel, i, a.raw(last, i))
		}
		moved.Channel = p.Channel
		a.state.props[p.Channel] = moved
	}
	a.state.props = a.state.props[:last]

	if last%gpu.TexelFloats == 0 {
		a.state.arrays = a.state.arrays[:len(a.state.arrays)-1]
		a.structural = true
	}
	return nil
}

// RenameProperty changes a property's name in place.
func (a *Auxiliary) RenameProperty(name, to string) error {
	if to == "" {
		return ErrInvalidPropertyName
	}
	p, err := a.lookup(name)
	if err != nil {
		return err
	}
	if name == to {
		return nil
	}
	if _, ok := a.Property(to); ok {
		return fmt.Errorf("%s property %q: %w", a.label, to, ErrPropertyExists)
	}
	a.state.props[p.Channel].Name = to
	return nil
}

// SetPropertyType changes a property's type and resets every value to the new null.
func (a *Auxiliary) SetPropertyType(name string, t PropertyType) error {
	if !t.Valid() {
		return fmt.Errorf("%s property %q: %w", a.label, name, ErrUnknownPropertyType)
	}
	p, err := a.lookup(name)
	if err != nil {
		return err
	}
	a.state.props[p.Channel].Type = t
	a.fill(p.Channel, t.Null())
	return nil
}

// Get reads the property of the entity at physical index.
func (a *Auxiliary) Get(name string, index int) (int32, error) {
	p, err := a.lookup(name)
	if err != nil {
		return 0, err
	}
	if index < 0 || index >= a.state.count {
		return 0, fmt.Errorf("%s index %d of %d: %w", a.label, index, a.state.count, ErrIndexOutOfRange)
	}
	return a.raw(p.Channel, index), nil
}

// Set writes the property of the entity at physical index.
func (a *Auxiliary) Set(name string, index int, v int32) error {
	p, err := a.lookup(name)
	if err != nil {
		return err
	}
	if index < 0 || index >= a.state.count {
		return fmt.Errorf("%s index %d of %d: %w", a.label, index, a.state.count, ErrIndexOutOfRange)
	}
	a.setRaw(p.Channel, index, v)
	return nil
}

func (a *Auxiliary) push() {
	for _, arr := range a.state.arrays {
		arr.Push()
	}
	i := a.state.count
	a.state.count++
	for _, p := range a.state.props {
		a.setRaw(p.Channel, i, p.Type.Null())
	}
}

func (a *Auxiliary) pop() {
	if a.state.count == 0 {
		return
	}
	for _, arr := range a.state.arrays {
		arr.Pop()
	}
	a.state.count--
}

func (a *Auxiliary) swap(i, j int) {
	for _, arr := range a.state.arrays {
		arr.Swap(i, j)
	}
}

func (a *Auxiliary) swapWithLast(i int) {
	a.swap(i, a.state.count-1)
}

func (a *Auxiliary) snapshot() auxState { return a.state }

func (a *Auxiliary) restore(s auxState) {
	a.state = s
	for _, arr := range a.state.arrays {
		arr.MarkAll()
	}
	a.structural = true
}

// Upload mirrors changed arrays onto their buffers, allocating or releasing buffers so there
// is exactly one per array.
func (a *Auxiliary) Upload(ctx context.Context) error {
	for len(a.buffers) < len(a.state.arrays) {
		a.buffers = append(a.buffers, a.factory(fmt.Sprintf("%s-aux-%d", a.label, len(a.buffers))))
	}
	for len(a.buffers) > len(a.state.arrays) {
		n := len(a.buffers) - 1
		a.buffers[n].ResizeErase(0)
		a.buffers = a.buffers[:n]
	}
	a.structural = false

	for i, arr := range a.state.arrays {
		if _, err := uploadArray(ctx, a.buffers[i], arr); err != nil {
			return fmt.Errorf("%s aux array %d: %w", a.label, i, err)
		}
	}
	return nil
}

// Download refreshes arrays from their buffers. Arrays without a buffer yet are left alone.
func (a *Auxiliary) Download(ctx context.Context) error {
	if a.structural {
		return nil
	}
	for i, arr := range a.state.arrays {
		if i >= len(a.buffers) {
			break
		}
		if _, err := downloadArray(ctx, a.buffers[i], arr); err != nil {
			return fmt.Errorf("%s aux array %d: %w", a.label, i, err)
		}
	}
	return nil
}

func (a *Auxiliary) dispose() {
	for _, b := range a.buffers {
		b.ResizeErase(0)
	}
	a.buffers = nil
}
