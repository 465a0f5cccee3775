package witconv

import (
	"strconv"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/structview/errors"
	"github.com/wippyai/structview/internal/arith"
	"github.com/wippyai/structview/internal/layout"
	"github.com/wippyai/structview/schema"
)

// Desc maps a WIT type to the description of its Canonical ABI value
// representation in linear memory, so overlays can read and write component
// values in place.
//
// Primitives map to same-width scalar kinds (bool to u8, char to u32).
// Records and tuples map to structs with the ABI's tail-padded size as an
// explicit size override. Enums map to their discriminant-sized scalar,
// flags to the packed integer (or a u32 array past 64 flags), and resource
// handles to u32. Strings and lists map to their {ptr, len} header struct;
// use Elements to walk a list's element region.
//
// Variant, option and result types are rejected: their payload cases share
// storage, which a non-overlapping member list cannot express.
func Desc(t wit.Type) (schema.Desc, error) {
	switch typ := t.(type) {
	case wit.Bool, wit.U8:
		return schema.U8, nil
	case wit.S8:
		return schema.I8, nil
	case wit.U16:
		return schema.U16, nil
	case wit.S16:
		return schema.I16, nil
	case wit.U32, wit.Char:
		return schema.U32, nil
	case wit.S32:
		return schema.I32, nil
	case wit.U64:
		return schema.U64, nil
	case wit.S64:
		return schema.I64, nil
	case wit.F32:
		return schema.F32, nil
	case wit.F64:
		return schema.F64, nil
	case wit.String:
		return headerDesc(), nil
	case *wit.TypeDef:
		return typeDefDesc(typ)
	default:
		return nil, errors.Unsupported(errors.PhaseConvert, "WIT type has no linear-memory representation")
	}
}

func typeDefDesc(t *wit.TypeDef) (schema.Desc, error) {
	switch kind := t.Kind.(type) {
	case *wit.Record:
		members := make([]schema.Member, 0, len(kind.Fields))
		for _, f := range kind.Fields {
			fd, err := Desc(f.Type)
			if err != nil {
				return nil, err
			}
			members = append(members, schema.Member{Name: f.Name, Type: fd})
		}
		return padded(&schema.Struct{Members: members})
	case *wit.Tuple:
		members := make([]schema.Member, 0, len(kind.Types))
		for i, typ := range kind.Types {
			fd, err := Desc(typ)
			if err != nil {
				return nil, err
			}
			members = append(members, schema.Member{Name: strconv.Itoa(i), Type: fd})
		}
		return padded(&schema.Struct{Members: members})
	case *wit.Enum:
		return discriminantKind(len(kind.Cases)), nil
	case *wit.Flags:
		return flagsDesc(len(kind.Flags)), nil
	case *wit.List:
		return headerDesc(), nil
	case *wit.Own, *wit.Borrow:
		return schema.U32, nil
	case *wit.Variant:
		return nil, errors.Unsupported(errors.PhaseConvert, "variant payload cases share storage")
	case *wit.Option:
		return nil, errors.Unsupported(errors.PhaseConvert, "option payload shares storage with its flag padding")
	case *wit.Result:
		return nil, errors.Unsupported(errors.PhaseConvert, "result payload cases share storage")
	case wit.Type:
		return Desc(kind)
	default:
		return nil, errors.Unsupported(errors.PhaseConvert, "WIT type has no linear-memory representation")
	}
}

// Elements returns an open-ended array description for the element region a
// string or list header points at. Indexing such an overlay at the header's
// ptr walks the actual payload bytes.
func Elements(t wit.Type) (schema.Desc, error) {
	switch typ := t.(type) {
	case wit.String:
		return &schema.Array{Elem: schema.U8, Count: schema.Unsized}, nil
	case *wit.TypeDef:
		list, ok := typ.Kind.(*wit.List)
		if !ok {
			return nil, errors.Unsupported(errors.PhaseConvert, "only strings and lists have an element region")
		}
		elem, err := Desc(list.Type)
		if err != nil {
			return nil, err
		}
		return &schema.Array{Elem: elem, Count: schema.Unsized}, nil
	default:
		return nil, errors.Unsupported(errors.PhaseConvert, "only strings and lists have an element region")
	}
}

// headerDesc is the {ptr, len} pair strings and lists occupy in memory.
func headerDesc() *schema.Struct {
	return &schema.Struct{Members: []schema.Member{
		{Name: "ptr", Type: schema.U32},
		{Name: "len", Type: schema.U32},
	}}
}

// padded pins the struct's size to the Canonical ABI's, which rounds a
// record's end up to its alignment. The default packing computes the same
// member offsets but adds no tail padding, so only the size needs the
// override.
func padded(s *schema.Struct) (schema.Desc, error) {
	l, err := layout.NewCalculator().Calculate(s)
	if err != nil {
		return nil, err
	}
	rounded := arith.AlignTo(l.Size, l.Align)
	if rounded != l.Size {
		s.Size = schema.Uint32(rounded)
	}
	return s, nil
}

func discriminantKind(numCases int) schema.Kind {
	if numCases <= 256 {
		return schema.U8
	} else if numCases <= 65536 {
		return schema.U16
	}
	return schema.U32
}

func flagsDesc(numFlags int) schema.Desc {
	switch {
	case numFlags == 0:
		return &schema.Struct{}
	case numFlags <= 8:
		return schema.U8
	case numFlags <= 16:
		return schema.U16
	case numFlags <= 32:
		return schema.U32
	case numFlags <= 64:
		return schema.U64
	}
	// >64 flags: multiple u32s
	return &schema.Array{Elem: schema.U32, Count: (numFlags + 31) / 32}
}
