package structview

import (
	"fmt"
	"math"

	"github.com/wippyai/structview/errors"
	"github.com/wippyai/structview/internal/arith"
	"github.com/wippyai/structview/internal/layout"
	"github.com/wippyai/structview/schema"
)

// Accessor is a live read/write handle bound to one byte range of one
// buffer, mirroring a layout node. The interface is sealed; the three
// implementations form a closed sum: *Scalar, *Struct and *Array.
type Accessor interface {
	// Layout returns the layout node this accessor mirrors.
	Layout() *Layout
	// ByteOffset returns the accessor's absolute byte offset in the buffer.
	ByteOffset() uint32

	sealed()
}

func (*Scalar) sealed() {}
func (*Struct) sealed() {}
func (*Array) sealed()  {}

// Scalar is a read/write handle over one element slot of one per-kind view.
// Its getters and setters coerce between the numeric classes the way the
// kinds themselves do: integer kinds store truncated two's-complement bits,
// float kinds convert. The wide 64-bit kinds round-trip losslessly through
// Int and Uint.
type Scalar struct {
	view   *View
	layout *layout.Layout
	index  uint32
	offset uint32
}

func newScalar(bank *ViewBank, offset uint32, l *layout.Layout, path []string) (*Scalar, error) {
	k := l.Kind
	w := k.Width()
	view := bank.View(k)
	if offset%w != 0 {
		return nil, errors.Misaligned(errors.PhaseAccess, path, "byte offset", offset, w)
	}
	if offset >= view.ByteLen() {
		return nil, errors.OutOfRange(path, offset, view.ByteLen())
	}
	return &Scalar{view: view, layout: l, index: offset / w, offset: offset}, nil
}

func (s *Scalar) Layout() *Layout    { return s.layout }
func (s *Scalar) ByteOffset() uint32 { return s.offset }
func (s *Scalar) Kind() schema.Kind  { return s.layout.Kind }

// Int reads the value as a signed integer. Signed kinds sign-extend, float
// kinds truncate toward zero, u64 values above MaxInt64 wrap.
func (s *Scalar) Int() int64 {
	bits := s.view.bits(s.index)
	switch s.Kind() {
	case schema.I8:
		return int64(int8(bits))
	case schema.I16:
		return int64(int16(bits))
	case schema.I32:
		return int64(int32(bits))
	case schema.F32:
		return int64(math.Float32frombits(uint32(bits)))
	case schema.F64:
		return int64(math.Float64frombits(bits))
	default:
		return int64(bits)
	}
}

// Uint reads the value as an unsigned integer; signed kinds contribute
// their two's-complement bit pattern sign-extended to 64 bits, float kinds
// truncate toward zero.
func (s *Scalar) Uint() uint64 {
	bits := s.view.bits(s.index)
	switch s.Kind() {
	case schema.I8:
		return uint64(int64(int8(bits)))
	case schema.I16:
		return uint64(int64(int16(bits)))
	case schema.I32:
		return uint64(int64(int32(bits)))
	case schema.F32:
		return uint64(int64(math.Float32frombits(uint32(bits))))
	case schema.F64:
		return uint64(int64(math.Float64frombits(bits)))
	default:
		return bits
	}
}

// Float reads the value as a float64. Integer kinds convert; i64/u64
// magnitudes beyond 2^53 lose precision, as any float64 conversion does.
func (s *Scalar) Float() float64 {
	bits := s.view.bits(s.index)
	switch s.Kind() {
	case schema.F32:
		return float64(math.Float32frombits(uint32(bits)))
	case schema.F64:
		return math.Float64frombits(bits)
	case schema.U8, schema.U16, schema.U32, schema.U64:
		return float64(bits)
	default:
		return float64(s.Int())
	}
}

// SetInt writes v, truncating to the kind's width for integer kinds and
// converting for float kinds.
func (s *Scalar) SetInt(v int64) {
	switch s.Kind() {
	case schema.F32:
		s.view.setBits(s.index, uint64(math.Float32bits(float32(v))))
	case schema.F64:
		s.view.setBits(s.index, math.Float64bits(float64(v)))
	default:
		s.view.setBits(s.index, uint64(v))
	}
}

// SetUint writes v, truncating to the kind's width for integer kinds and
// converting for float kinds.
func (s *Scalar) SetUint(v uint64) {
	switch s.Kind() {
	case schema.F32:
		s.view.setBits(s.index, uint64(math.Float32bits(float32(v))))
	case schema.F64:
		s.view.setBits(s.index, math.Float64bits(float64(v)))
	default:
		s.view.setBits(s.index, v)
	}
}

// SetFloat writes v, converting through int64 truncation for integer kinds.
func (s *Scalar) SetFloat(v float64) {
	switch s.Kind() {
	case schema.F32:
		s.view.setBits(s.index, uint64(math.Float32bits(float32(v))))
	case schema.F64:
		s.view.setBits(s.index, math.Float64bits(v))
	default:
		s.view.setBits(s.index, uint64(int64(v)))
	}
}

// Struct exposes eager child accessors for each member, keyed by name.
// Mutation happens through the children; the Struct itself is a fixed
// mapping for the life of the overlay.
type Struct struct {
	layout *layout.Layout
	offset uint32
	names  []string
	fields map[string]Accessor
}

func (s *Struct) Layout() *Layout    { return s.layout }
func (s *Struct) ByteOffset() uint32 { return s.offset }

// Fields returns the member names in declaration order.
func (s *Struct) Fields() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Field returns the named member's accessor, or nil for an unknown name.
func (s *Struct) Field(name string) Accessor {
	return s.fields[name]
}

// Scalar returns the named member as a *Scalar, or nil if the member is
// missing or not scalar-shaped.
func (s *Struct) Scalar(name string) *Scalar {
	sc, _ := s.fields[name].(*Scalar)
	return sc
}

// Array is an indexed sequence of element accessors. Fixed-length arrays
// build their children eagerly; unsized arrays materialize children on
// first access and cache them for the accessor's lifetime (the cache is
// append-only and never invalidated). The cache is not synchronized:
// sharing an unsized Array across goroutines requires external locking.
type Array struct {
	layout *layout.Layout
	offset uint32
	bank   *ViewBank
	path   []string
	elems  []Accessor       // fixed-length children
	lazy   map[int]Accessor // unsized children, by index
}

func (a *Array) Layout() *Layout    { return a.layout }
func (a *Array) ByteOffset() uint32 { return a.offset }

// Len returns the element count, or schema.Unsized for open-ended arrays.
func (a *Array) Len() int {
	return a.layout.Count
}

func (a *Array) Unsized() bool {
	return a.layout.Unsized
}

// At returns the accessor for element i.
//
// For fixed-length arrays the child is pre-built and i must be in range.
// For unsized arrays any non-negative i is addressable: there is no upper
// bound check, and a buffer too small for element i surfaces as an access
// error from the element's scalar leaves, not from the indexing itself.
func (a *Array) At(i int) (Accessor, error) {
	if !a.layout.Unsized {
		if i < 0 || i >= len(a.elems) {
			return nil, errors.OutOfBounds(errors.PhaseAccess, a.path, i, len(a.elems))
		}
		return a.elems[i], nil
	}

	if i < 0 {
		return nil, errors.OutOfBounds(errors.PhaseAccess, a.path, i, 0)
	}
	if child, ok := a.lazy[i]; ok {
		return child, nil
	}

	span, ok := arith.SafeMulU32(uint32(i), a.layout.Stride)
	if !ok {
		return nil, errors.New(errors.PhaseAccess, errors.KindOverflow).
			Path(a.path...).
			Detail("element %d offset overflows", i).
			Build()
	}
	elemOff, ok := arith.SafeAddU32(a.offset, span)
	if !ok {
		return nil, errors.New(errors.PhaseAccess, errors.KindOverflow).
			Path(a.path...).
			Detail("element %d offset overflows", i).
			Build()
	}

	child, err := wrapAccessor(a.bank, elemOff, a.layout.Elem,
		append(append([]string{}, a.path...), fmt.Sprintf("[%d]", i)))
	if err != nil {
		return nil, err
	}
	a.lazy[i] = child
	return child, nil
}

// Scalar returns element i as a *Scalar, or an error if the element is not
// scalar-shaped or cannot be materialized.
func (a *Array) Scalar(i int) (*Scalar, error) {
	child, err := a.At(i)
	if err != nil {
		return nil, err
	}
	sc, ok := child.(*Scalar)
	if !ok {
		return nil, errors.New(errors.PhaseAccess, errors.KindInvalidData).
			Path(a.path...).
			Detail("element %d is %s-shaped, not scalar", i, child.Layout().Shape).
			Build()
	}
	return sc, nil
}

// makeAccessor builds the accessor tree for l rooted at base. Scalar
// layouts are materialized only as children of structs and arrays; a scalar
// at the generator root is a wrapping bug, never user input.
func makeAccessor(bank *ViewBank, base uint32, l *layout.Layout, path []string) (Accessor, error) {
	switch l.Shape {
	case layout.ShapeStruct:
		s := &Struct{
			layout: l,
			offset: base,
			names:  make([]string, 0, len(l.Members)),
			fields: make(map[string]Accessor, len(l.Members)),
		}
		for i := range l.Members {
			m := &l.Members[i]
			mpath := append(append([]string{}, path...), m.Name)
			off, ok := arith.SafeAddU32(base, m.Offset)
			if !ok {
				return nil, errors.New(errors.PhaseAccess, errors.KindOverflow).
					Path(mpath...).
					Detail("absolute member offset overflows").
					Build()
			}
			child, err := makeChild(bank, off, m.Layout, mpath)
			if err != nil {
				return nil, err
			}
			s.names = append(s.names, m.Name)
			s.fields[m.Name] = child
		}
		return s, nil

	case layout.ShapeArray:
		a := &Array{
			layout: l,
			offset: base,
			bank:   bank,
			path:   append([]string{}, path...),
		}
		if l.Unsized {
			a.lazy = make(map[int]Accessor)
			return a, nil
		}
		a.elems = make([]Accessor, 0, l.Count)
		for i := 0; i < l.Count; i++ {
			epath := append(append([]string{}, path...), fmt.Sprintf("[%d]", i))
			span, ok := arith.SafeMulU32(uint32(i), l.Stride)
			if !ok {
				return nil, errors.New(errors.PhaseAccess, errors.KindOverflow).
					Path(epath...).
					Detail("element offset overflows").
					Build()
			}
			off, ok := arith.SafeAddU32(base, span)
			if !ok {
				return nil, errors.New(errors.PhaseAccess, errors.KindOverflow).
					Path(epath...).
					Detail("element offset overflows").
					Build()
			}
			child, err := makeChild(bank, off, l.Elem, epath)
			if err != nil {
				return nil, err
			}
			a.elems = append(a.elems, child)
		}
		return a, nil

	default:
		return nil, errors.New(errors.PhaseAccess, errors.KindInternal).
			Path(path...).
			Detail("scalar layout cannot be materialized without a wrapper").
			Build()
	}
}

func makeChild(bank *ViewBank, base uint32, l *layout.Layout, path []string) (Accessor, error) {
	if l.Shape == layout.ShapeScalar {
		return newScalar(bank, base, l, path)
	}
	return makeAccessor(bank, base, l, path)
}

// wrapAccessor materializes l through a synthetic one-member struct
// {value: l} at offset 0, so even a plain scalar gets a settable slot, and
// returns the inner accessor. Every root creation and every unsized-array
// element goes through this step.
func wrapAccessor(bank *ViewBank, base uint32, l *layout.Layout, path []string) (Accessor, error) {
	synth := &layout.Layout{
		Shape:   layout.ShapeStruct,
		Size:    l.Size,
		Align:   l.Align,
		Unsized: l.Unsized,
		Members: []layout.Member{{Name: "value", Offset: 0, Layout: l}},
	}
	wrapper, err := makeAccessor(bank, base, synth, path)
	if err != nil {
		return nil, err
	}
	return wrapper.(*Struct).Field("value"), nil
}
