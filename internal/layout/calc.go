package layout

import (
	"fmt"

	"github.com/wippyai/structview/errors"
	"github.com/wippyai/structview/internal/arith"
	"github.com/wippyai/structview/schema"
)

// Calculator computes layouts from type descriptions. Computed layouts are
// cached per description node, so shared sub-descriptions are resolved once.
// A Calculator is not safe for concurrent use.
type Calculator struct {
	cache map[schema.Desc]*Layout
}

func NewCalculator() *Calculator {
	return &Calculator{
		cache: make(map[schema.Desc]*Layout),
	}
}

// Calculate resolves desc into a concrete layout, validating every packing
// invariant. All failures are layout-phase errors naming the offending node.
func (c *Calculator) Calculate(desc schema.Desc) (*Layout, error) {
	return c.calculate(desc, nil)
}

func (c *Calculator) calculate(desc schema.Desc, path []string) (*Layout, error) {
	if cached, ok := c.cache[desc]; ok {
		return cached, nil
	}

	var (
		l   *Layout
		err error
	)
	switch d := desc.(type) {
	case schema.Kind:
		l, err = calculateScalar(d, path)
	case *schema.Array:
		l, err = c.calculateArray(d, path)
	case *schema.Struct:
		l, err = c.calculateStruct(d, path)
	case nil:
		return nil, errors.New(errors.PhaseLayout, errors.KindInvalidData).
			Path(path...).
			Detail("nil type description").
			Build()
	default:
		return nil, errors.New(errors.PhaseLayout, errors.KindInvalidData).
			Path(path...).
			Detail("unrecognized description type %T", desc).
			Build()
	}
	if err != nil {
		return nil, err
	}

	c.cache[desc] = l
	return l, nil
}

func calculateScalar(k schema.Kind, path []string) (*Layout, error) {
	if !k.Valid() {
		return nil, errors.New(errors.PhaseLayout, errors.KindUnknownKind).
			Path(path...).
			Detail("unknown scalar kind %d", uint8(k)).
			Build()
	}
	w := k.Width()
	return &Layout{
		Shape: ShapeScalar,
		Kind:  k,
		Size:  w,
		Align: w,
	}, nil
}

func (c *Calculator) calculateArray(a *schema.Array, path []string) (*Layout, error) {
	if a.Count < 0 && a.Count != schema.Unsized {
		return nil, errors.New(errors.PhaseLayout, errors.KindInvalidCount).
			Path(path...).
			Value(a.Count).
			Detail("array length %d is negative", a.Count).
			Build()
	}

	elem, err := c.calculate(a.Elem, append(append([]string{}, path...), "[elem]"))
	if err != nil {
		return nil, err
	}
	if elem.Unsized {
		return nil, errors.New(errors.PhaseLayout, errors.KindUnsizedElem).
			Path(path...).
			Detail("array element type must be sized").
			Build()
	}

	var stride uint32
	if a.Stride != nil {
		stride = *a.Stride
		if stride < elem.Size {
			return nil, errors.BadStride(path, stride,
				fmt.Sprintf("stride %d is smaller than element size %d", stride, elem.Size))
		}
		if elem.Align != 0 && stride%elem.Align != 0 {
			return nil, errors.BadStride(path, stride,
				fmt.Sprintf("stride %d is not a multiple of element alignment %d", stride, elem.Align))
		}
	} else {
		s, ok := arith.AlignToAny(elem.Size, elem.Align)
		if !ok {
			return nil, errors.Overflow(path, "default stride overflows")
		}
		stride = s
	}

	// The last element need not fill a full stride.
	var size uint32
	if a.Count > 0 {
		span, ok := arith.SafeMulU32(uint32(a.Count-1), stride)
		if !ok {
			return nil, errors.Overflow(path, "array span overflows")
		}
		size, ok = arith.SafeAddU32(span, elem.Size)
		if !ok {
			return nil, errors.Overflow(path, "array size overflows")
		}
	}

	return &Layout{
		Shape:   ShapeArray,
		Size:    size,
		Align:   elem.Align,
		Unsized: a.Count == schema.Unsized,
		Elem:    elem,
		Stride:  stride,
		Count:   a.Count,
	}, nil
}

func (c *Calculator) calculateStruct(s *schema.Struct, path []string) (*Layout, error) {
	var (
		cursor    uint32
		unsized   bool
		unsizedAt uint32
		typeAlign = uint32(1)
		members   = make([]Member, 0, len(s.Members))
		seen      = make(map[string]struct{}, len(s.Members))
	)

	for _, m := range s.Members {
		mpath := append(append([]string{}, path...), m.Name)

		if _, dup := seen[m.Name]; dup {
			return nil, errors.New(errors.PhaseLayout, errors.KindInvalidData).
				Path(mpath...).
				Detail("duplicate member name %q", m.Name).
				Build()
		}
		seen[m.Name] = struct{}{}

		if unsized {
			return nil, errors.AfterUnsized(path, m.Name)
		}

		ml, err := c.calculate(m.Type, mpath)
		if err != nil {
			return nil, err
		}

		align := ml.Align
		if m.Align != nil {
			align = *m.Align
			if align == 0 || (ml.Align != 0 && align%ml.Align != 0) {
				return nil, errors.New(errors.PhaseLayout, errors.KindBadAlign).
					Path(mpath...).
					Value(align).
					Detail("alignment %d is not a positive multiple of the type alignment %d", align, ml.Align).
					Build()
			}
		}

		var offset uint32
		if m.Offset != nil {
			offset = *m.Offset
			if align != 0 && offset%align != 0 {
				return nil, errors.Misaligned(errors.PhaseLayout, mpath, "offset", offset, align)
			}
		} else {
			o, ok := arith.AlignToAny(cursor, align)
			if !ok {
				return nil, errors.Overflow(mpath, "member offset overflows")
			}
			offset = o
		}

		size := ml.Size
		if m.Size != nil {
			size = *m.Size
			if size < ml.Size {
				return nil, errors.SizeTooSmall(errors.PhaseLayout, mpath, size, ml.Size)
			}
		}

		if ml.Align > typeAlign {
			typeAlign = ml.Align
		}

		members = append(members, Member{Name: m.Name, Offset: offset, Layout: ml})

		if ml.Unsized {
			unsized = true
			unsizedAt = offset
			continue
		}
		end, ok := arith.SafeAddU32(offset, size)
		if !ok {
			return nil, errors.Overflow(mpath, "member end overflows")
		}
		cursor = end
	}

	// The struct's own alignment follows the members' type alignments;
	// per-member alignment overrides influence placement only.
	align := typeAlign
	if s.Align != nil {
		align = *s.Align
		if align == 0 || align%typeAlign != 0 {
			return nil, errors.New(errors.PhaseLayout, errors.KindBadAlign).
				Path(path...).
				Value(align).
				Detail("struct alignment %d is not a positive multiple of the computed alignment %d", align, typeAlign).
				Build()
		}
	}

	size := cursor
	if unsized {
		// The open-ended tail contributes nothing to the static minimum.
		size = unsizedAt
	}
	if s.Size != nil {
		if *s.Size < size {
			return nil, errors.SizeTooSmall(errors.PhaseLayout, path, *s.Size, size)
		}
		size = *s.Size
	}

	return &Layout{
		Shape:   ShapeStruct,
		Size:    size,
		Align:   align,
		Unsized: unsized,
		Members: members,
	}, nil
}
