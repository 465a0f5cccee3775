package structview

import (
	"go.uber.org/zap"

	"github.com/wippyai/structview/errors"
	"github.com/wippyai/structview/internal/layout"
	"github.com/wippyai/structview/schema"
)

// Layout re-exports the computed layout tree.
type Layout = layout.Layout

// Member re-exports one resolved struct member.
type Member = layout.Member

// Shape re-exports the layout node discriminator.
type Shape = layout.Shape

const (
	ShapeScalar = layout.ShapeScalar
	ShapeStruct = layout.ShapeStruct
	ShapeArray  = layout.ShapeArray
)

// IsLayoutError reports whether err was raised while computing a layout.
func IsLayoutError(err error) bool {
	return errors.InPhase(err, errors.PhaseLayout)
}

// IsAccessError reports whether err was raised while constructing views or
// accessors (buffer capacity, scalar leaf placement).
func IsAccessError(err error) bool {
	return errors.InPhase(err, errors.PhaseAccess)
}

// Factory computes a type description's layout once and stamps out overlay
// accessors against any (buffer, offset) pair. A Factory is immutable after
// construction and safe for concurrent Create calls.
type Factory struct {
	desc   schema.Desc
	layout *layout.Layout
}

// NewFactory resolves desc into a layout, failing with a layout-phase error
// for any violated packing invariant.
func NewFactory(desc schema.Desc) (*Factory, error) {
	l, err := layout.NewCalculator().Calculate(desc)
	if err != nil {
		return nil, err
	}
	Logger().Debug("computed layout",
		zap.Uint32("size", l.Size),
		zap.Uint32("align", l.Align),
		zap.Bool("unsized", l.Unsized),
	)
	return &Factory{desc: desc, layout: l}, nil
}

// NewFactoryJSON parses a wire-format description and builds a factory
// from it.
func NewFactoryJSON(data []byte) (*Factory, error) {
	desc, err := schema.ParseJSON(data)
	if err != nil {
		return nil, err
	}
	return NewFactory(desc)
}

// Desc returns the description the factory was built from.
func (f *Factory) Desc() schema.Desc {
	return f.desc
}

// Layout returns the precomputed layout shared by all overlays.
func (f *Factory) Layout() *Layout {
	return f.layout
}

// Create overlays the layout onto buf at offset 0.
func (f *Factory) Create(buf []byte) (*Overlay, error) {
	return f.CreateAt(buf, 0)
}

// CreateAt overlays the layout onto buf at the given base byte offset. It
// fails with an access error if the region past base is smaller than the
// layout's minimum size. Overlays created against the same buffer alias
// the same bytes and observe each other's writes; they share nothing else
// but the precomputed layout.
func (f *Factory) CreateAt(buf []byte, base uint32) (*Overlay, error) {
	// A base past the buffer leaves a negative remainder, which no layout
	// fits, not even a zero-minimum unsized one.
	if uint64(base) > uint64(len(buf)) {
		return nil, errors.OutOfRange(nil, base, uint32(len(buf)))
	}
	avail := uint32(len(buf)) - base
	if f.layout.Size > avail {
		return nil, errors.BufferTooSmall(f.layout.Size, avail)
	}

	bank := NewViewBank(buf)
	value, err := wrapAccessor(bank, base, f.layout, nil)
	if err != nil {
		return nil, err
	}
	return &Overlay{
		value:  value,
		layout: f.layout,
		bank:   bank,
		base:   base,
	}, nil
}

// Overlay is one binding of a layout to a buffer region: the root accessor
// plus read-only metadata. It borrows the buffer's bytes for as long as the
// caller retains them; every read and write through it aliases that memory
// directly.
type Overlay struct {
	value  Accessor
	layout *layout.Layout
	bank   *ViewBank
	base   uint32
}

// Value returns the root accessor. Its concrete type mirrors the
// description: *Struct, *Array, or *Scalar for a scalar-rooted layout.
func (o *Overlay) Value() Accessor {
	return o.value
}

// Layout returns the computed layout this overlay is bound to.
func (o *Overlay) Layout() *Layout {
	return o.layout
}

// Backing returns the overlay's view bank over the buffer.
func (o *Overlay) Backing() *ViewBank {
	return o.bank
}

// BaseOffset returns the byte offset the overlay was created at.
func (o *Overlay) BaseOffset() uint32 {
	return o.base
}

// Struct returns the root accessor as a *Struct, or nil.
func (o *Overlay) Struct() *Struct {
	s, _ := o.value.(*Struct)
	return s
}

// Array returns the root accessor as an *Array, or nil.
func (o *Overlay) Array() *Array {
	a, _ := o.value.(*Array)
	return a
}

// Scalar returns the root accessor as a *Scalar, or nil.
func (o *Overlay) Scalar() *Scalar {
	s, _ := o.value.(*Scalar)
	return s
}
