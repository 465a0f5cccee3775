// Package wasmmem overlays structview layouts onto WASM linear memory.
//
// wazero exposes linear memory as a byte slice view: reads are zero-copy
// and writes through the slice are visible to the guest immediately. The
// view is invalidated when the guest grows its memory, so overlays must be
// recreated after any call that may grow memory.
package wasmmem

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/structview"
	"github.com/wippyai/structview/errors"
)

// Memory is the subset of wazero's api.Memory needed to expose the backing
// bytes.
type Memory interface {
	// Size returns the memory size in bytes.
	Size() uint32
	// Read returns a view of the byte range [offset, offset+byteCount).
	Read(offset, byteCount uint32) ([]byte, bool)
}

var _ Memory = api.Memory(nil)

// Bytes returns the full linear memory of mem as a byte slice aliasing the
// guest's memory.
func Bytes(mem Memory) ([]byte, error) {
	size := mem.Size()
	if size == 0 {
		return nil, nil
	}
	buf, ok := mem.Read(0, size)
	if !ok {
		return nil, errors.New(errors.PhaseAccess, errors.KindOutOfRange).
			Detail("memory reports %d bytes but refuses to expose them", size).
			Build()
	}
	return buf, nil
}

// Overlay binds f's layout to the guest memory at addr. Reads and writes
// through the returned overlay go straight into the guest's linear memory.
func Overlay(f *structview.Factory, mem Memory, addr uint32) (*structview.Overlay, error) {
	buf, err := Bytes(mem)
	if err != nil {
		return nil, err
	}
	return f.CreateAt(buf, addr)
}

// ModuleOverlay binds f's layout to mod's exported memory at addr.
func ModuleOverlay(f *structview.Factory, mod api.Module, addr uint32) (*structview.Overlay, error) {
	mem := mod.Memory()
	if mem == nil {
		return nil, errors.New(errors.PhaseAccess, errors.KindInvalidData).
			Detail("module exports no memory").
			Build()
	}
	return Overlay(f, mem, addr)
}
