package schema

// Desc describes the shape of a structured type independent of any buffer.
// The three implementations form a closed sum: Kind (scalar), *Struct and
// *Array.
type Desc interface {
	isDesc()
}

func (Kind) isDesc()    {}
func (*Struct) isDesc() {}
func (*Array) isDesc()  {}

// Unsized marks an array as open-ended. An unsized array may only appear
// as the last member of a struct or at the root of a description.
const Unsized = -1

// Struct is an ordered sequence of named members. Member order is
// semantically significant: it defines the default packing order.
type Struct struct {
	Members []Member

	// Optional overrides. Align must be a multiple of the computed
	// alignment; Size must be at least the computed minimum size.
	Align *uint32
	Size  *uint32
}

// Member is one named field of a Struct. Offset and Align are alternative
// ways of positioning the member; normal use supplies at most one.
type Member struct {
	Name string
	Type Desc

	Offset *uint32
	Align  *uint32
	Size   *uint32
}

// Array is a sequence of Count elements, or an open-ended sequence when
// Count == Unsized. Stride overrides the byte distance between elements;
// it defaults to the element size rounded up to the element alignment.
type Array struct {
	Elem   Desc
	Count  int
	Stride *uint32
}

// Uint32 returns a pointer to v, for filling optional override fields.
func Uint32(v uint32) *uint32 {
	return &v
}
