package schema

// Kind identifies a fixed-width scalar type.
type Kind uint8

const (
	I8 Kind = iota
	U8
	I16
	U16
	I32
	U32
	F32
	F64
	I64
	U64

	NumKinds = int(iota)
)

var kindTags = [...]string{
	I8:  "i8",
	U8:  "u8",
	I16: "i16",
	U16: "u16",
	I32: "i32",
	U32: "u32",
	F32: "f32",
	F64: "f64",
	I64: "i64",
	U64: "u64",
}

var kindWidths = [...]uint32{
	I8:  1,
	U8:  1,
	I16: 2,
	U16: 2,
	I32: 4,
	U32: 4,
	F32: 4,
	F64: 8,
	I64: 8,
	U64: 8,
}

func (k Kind) String() string {
	if int(k) < len(kindTags) {
		return kindTags[k]
	}
	return "unknown"
}

// Width returns the kind's byte width. A scalar's minimum size and
// alignment both equal its width.
func (k Kind) Width() uint32 {
	if int(k) < len(kindWidths) {
		return kindWidths[k]
	}
	return 0
}

func (k Kind) Valid() bool {
	return int(k) < NumKinds
}

func (k Kind) Signed() bool {
	switch k {
	case I8, I16, I32, I64:
		return true
	}
	return false
}

func (k Kind) Float() bool {
	return k == F32 || k == F64
}

// KindFromTag resolves a wire-format kind tag such as "i32" or "f64".
func KindFromTag(tag string) (Kind, bool) {
	for k, t := range kindTags {
		if t == tag {
			return Kind(k), true
		}
	}
	return 0, false
}
