package layout

import (
	"fmt"
	"strings"

	"github.com/wippyai/structview/schema"
)

// Shape discriminates the three layout node forms.
type Shape uint8

const (
	ShapeScalar Shape = iota
	ShapeStruct
	ShapeArray
)

var shapeNames = [...]string{
	ShapeScalar: "scalar",
	ShapeStruct: "struct",
	ShapeArray:  "array",
}

func (s Shape) String() string {
	if int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return "unknown"
}

// Layout is the computed form of a type description: concrete sizes,
// alignments and member offsets. Size is the static minimum byte size; an
// unsized node's trailing elements contribute nothing to it.
type Layout struct {
	Shape   Shape
	Kind    schema.Kind // scalar nodes
	Size    uint32
	Align   uint32
	Unsized bool

	Members []Member // struct nodes

	Elem   *Layout // array nodes
	Stride uint32
	Count  int // schema.Unsized for open-ended arrays
}

// Member is one resolved struct member: its absolute byte offset within the
// struct and the layout of its type.
type Member struct {
	Name   string
	Offset uint32
	Layout *Layout
}

// Member returns the named member's entry, or nil.
func (l *Layout) Member(name string) *Member {
	for i := range l.Members {
		if l.Members[i].Name == name {
			return &l.Members[i]
		}
	}
	return nil
}

// String renders a compact single-line summary, mostly for logs and tests.
func (l *Layout) String() string {
	switch l.Shape {
	case ShapeScalar:
		return l.Kind.String()
	case ShapeArray:
		count := "unsized"
		if l.Count != schema.Unsized {
			count = fmt.Sprintf("%d", l.Count)
		}
		return fmt.Sprintf("array[%s x %s, stride %d]", l.Elem, count, l.Stride)
	default:
		var b strings.Builder
		b.WriteString("struct{")
		for i, m := range l.Members {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s@%d %s", m.Name, m.Offset, m.Layout)
		}
		b.WriteString("}")
		return b.String()
	}
}
