package structview

import (
	"encoding/binary"

	"github.com/wippyai/structview/schema"
)

// View is one fixed-width little-endian window over a buffer. Its byte
// length is the buffer length rounded down to a whole number of elements,
// so construction never fails regardless of the buffer size.
type View struct {
	kind  schema.Kind
	bytes []byte
}

func (v *View) Kind() schema.Kind {
	return v.kind
}

// Len returns the element count that fits the buffer.
func (v *View) Len() int {
	return len(v.bytes) / int(v.kind.Width())
}

// ByteLen returns the view's usable byte length (a multiple of the width).
func (v *View) ByteLen() uint32 {
	return uint32(len(v.bytes))
}

// bits returns the raw little-endian bits of element i, zero-extended.
func (v *View) bits(i uint32) uint64 {
	switch v.kind.Width() {
	case 1:
		return uint64(v.bytes[i])
	case 2:
		return uint64(binary.LittleEndian.Uint16(v.bytes[i*2:]))
	case 4:
		return uint64(binary.LittleEndian.Uint32(v.bytes[i*4:]))
	default:
		return binary.LittleEndian.Uint64(v.bytes[i*8:])
	}
}

// setBits stores the low width*8 bits of b into element i.
func (v *View) setBits(i uint32, b uint64) {
	switch v.kind.Width() {
	case 1:
		v.bytes[i] = byte(b)
	case 2:
		binary.LittleEndian.PutUint16(v.bytes[i*2:], uint16(b))
	case 4:
		binary.LittleEndian.PutUint32(v.bytes[i*4:], uint32(b))
	default:
		binary.LittleEndian.PutUint64(v.bytes[i*8:], b)
	}
}

// ViewBank holds one View per scalar kind, all aliasing the same buffer.
type ViewBank struct {
	bytes []byte
	views [schema.NumKinds]View
}

// NewViewBank builds the per-kind views over buf. Any buffer length is
// valid input; each view's element count is floored to fit.
func NewViewBank(buf []byte) *ViewBank {
	b := &ViewBank{bytes: buf}
	for k := range schema.NumKinds {
		kind := schema.Kind(k)
		w := kind.Width()
		n := uint32(len(buf)) / w
		b.views[k] = View{kind: kind, bytes: buf[:n*w]}
	}
	return b
}

// View returns the bank's view for kind k.
func (b *ViewBank) View(k schema.Kind) *View {
	return &b.views[k]
}

// Bytes returns the underlying buffer. The bank borrows it; mutations made
// through any view or accessor are visible here immediately.
func (b *ViewBank) Bytes() []byte {
	return b.bytes
}

// ByteLen returns the buffer's total byte length.
func (b *ViewBank) ByteLen() uint32 {
	return uint32(len(b.bytes))
}
