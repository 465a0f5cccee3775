package arith

import "math"

// AlignTo rounds offset up to the next multiple of align. align must be a
// power of two; align 0 leaves the offset untouched.
func AlignTo(offset, align uint32) uint32 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

// AlignToAny rounds offset up to the next multiple of align for arbitrary
// (not necessarily power-of-two) alignments.
func AlignToAny(offset, align uint32) (uint32, bool) {
	if align == 0 {
		return offset, true
	}
	rem := offset % align
	if rem == 0 {
		return offset, true
	}
	return SafeAddU32(offset, align-rem)
}

func SafeMulU32(a, b uint32) (uint32, bool) {
	if b != 0 && a > math.MaxUint32/b {
		return 0, false
	}
	return a * b, true
}

func SafeAddU32(a, b uint32) (uint32, bool) {
	if a > math.MaxUint32-b {
		return 0, false
	}
	return a + b, true
}
