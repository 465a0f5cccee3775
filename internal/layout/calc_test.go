package layout

import (
	"math"
	"strings"
	"testing"

	"github.com/wippyai/structview/errors"
	"github.com/wippyai/structview/schema"
)

func mustCalc(t *testing.T, desc schema.Desc) *Layout {
	t.Helper()
	l, err := NewCalculator().Calculate(desc)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	return l
}

func wantLayoutErr(t *testing.T, desc schema.Desc, kind errors.Kind) {
	t.Helper()
	_, err := NewCalculator().Calculate(desc)
	if err == nil {
		t.Fatal("Calculate succeeded, want error")
	}
	if !errors.InPhase(err, errors.PhaseLayout) {
		t.Fatalf("error %v is not a layout error", err)
	}
	if e := err.(*errors.Error); e.Kind != kind {
		t.Fatalf("error kind = %s, want %s (%v)", e.Kind, kind, err)
	}
}

func TestCalculateScalars(t *testing.T) {
	tests := []struct {
		kind  schema.Kind
		width uint32
	}{
		{schema.I8, 1},
		{schema.U8, 1},
		{schema.I16, 2},
		{schema.U16, 2},
		{schema.I32, 4},
		{schema.U32, 4},
		{schema.F32, 4},
		{schema.F64, 8},
		{schema.I64, 8},
		{schema.U64, 8},
	}

	for _, tc := range tests {
		t.Run(tc.kind.String(), func(t *testing.T) {
			l := mustCalc(t, tc.kind)
			if l.Shape != ShapeScalar {
				t.Errorf("shape = %v, want scalar", l.Shape)
			}
			if l.Size != tc.width || l.Align != tc.width {
				t.Errorf("size/align = %d/%d, want %d/%d", l.Size, l.Align, tc.width, tc.width)
			}
			if l.Unsized {
				t.Error("scalar must be sized")
			}
		})
	}

	t.Run("unknown_kind", func(t *testing.T) {
		wantLayoutErr(t, schema.Kind(200), errors.KindUnknownKind)
	})
}

func TestCalculateStruct(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		l := mustCalc(t, &schema.Struct{})
		if l.Size != 0 || l.Align != 1 || l.Unsized {
			t.Errorf("got size=%d align=%d unsized=%v, want 0/1/false", l.Size, l.Align, l.Unsized)
		}
	})

	t.Run("default_packing", func(t *testing.T) {
		l := mustCalc(t, &schema.Struct{Members: []schema.Member{
			{Name: "a", Type: schema.U8},
			{Name: "b", Type: schema.U32},
			{Name: "c", Type: schema.U8},
		}})
		wantOffs := []uint32{0, 4, 8}
		for i, m := range l.Members {
			if m.Offset != wantOffs[i] {
				t.Errorf("member %s offset = %d, want %d", m.Name, m.Offset, wantOffs[i])
			}
		}
		// No trailing padding is added.
		if l.Size != 9 {
			t.Errorf("size = %d, want 9", l.Size)
		}
		if l.Align != 4 {
			t.Errorf("align = %d, want 4", l.Align)
		}
	})

	t.Run("offsets_nondecreasing_and_aligned", func(t *testing.T) {
		l := mustCalc(t, &schema.Struct{Members: []schema.Member{
			{Name: "a", Type: schema.U8},
			{Name: "b", Type: schema.U16},
			{Name: "c", Type: schema.F64},
			{Name: "d", Type: schema.I16},
			{Name: "e", Type: schema.I64},
		}})
		prev := uint32(0)
		for _, m := range l.Members {
			if m.Offset < prev {
				t.Errorf("member %s offset %d decreased below %d", m.Name, m.Offset, prev)
			}
			if m.Offset%m.Layout.Align != 0 {
				t.Errorf("member %s offset %d not aligned to %d", m.Name, m.Offset, m.Layout.Align)
			}
			prev = m.Offset
		}
	})

	t.Run("explicit_offset_and_align", func(t *testing.T) {
		// x pinned at 0, y aligned to 4: y lands at 4, total size 5.
		l := mustCalc(t, &schema.Struct{Members: []schema.Member{
			{Name: "x", Type: schema.I32, Offset: schema.Uint32(0)},
			{Name: "y", Type: schema.I8, Align: schema.Uint32(4)},
		}})
		if l.Members[0].Offset != 0 {
			t.Errorf("x offset = %d, want 0", l.Members[0].Offset)
		}
		if l.Members[1].Offset != 4 {
			t.Errorf("y offset = %d, want 4", l.Members[1].Offset)
		}
		if l.Size != 5 {
			t.Errorf("size = %d, want 5", l.Size)
		}
		if l.Align != 4 {
			t.Errorf("align = %d, want 4", l.Align)
		}
	})

	t.Run("member_align_override_placement_only", func(t *testing.T) {
		// An align override moves the member but never changes the
		// struct's own alignment, which follows the member types.
		l := mustCalc(t, &schema.Struct{Members: []schema.Member{
			{Name: "a", Type: schema.U8},
			{Name: "b", Type: schema.U8, Align: schema.Uint32(8)},
		}})
		if l.Members[1].Offset != 8 {
			t.Errorf("b offset = %d, want 8", l.Members[1].Offset)
		}
		if l.Align != 1 {
			t.Errorf("struct align = %d, want 1", l.Align)
		}
	})

	t.Run("member_size_override", func(t *testing.T) {
		l := mustCalc(t, &schema.Struct{Members: []schema.Member{
			{Name: "a", Type: schema.U8, Size: schema.Uint32(16)},
			{Name: "b", Type: schema.U8},
		}})
		if l.Members[1].Offset != 16 {
			t.Errorf("b offset = %d, want 16", l.Members[1].Offset)
		}
		if l.Size != 17 {
			t.Errorf("size = %d, want 17", l.Size)
		}
	})

	t.Run("struct_level_overrides", func(t *testing.T) {
		l := mustCalc(t, &schema.Struct{
			Members: []schema.Member{{Name: "a", Type: schema.U16}},
			Align:   schema.Uint32(8),
			Size:    schema.Uint32(12),
		})
		if l.Align != 8 {
			t.Errorf("align = %d, want 8", l.Align)
		}
		if l.Size != 12 {
			t.Errorf("size = %d, want 12", l.Size)
		}
	})

	t.Run("nested", func(t *testing.T) {
		inner := &schema.Struct{Members: []schema.Member{
			{Name: "lo", Type: schema.U32},
			{Name: "hi", Type: schema.U32},
		}}
		l := mustCalc(t, &schema.Struct{Members: []schema.Member{
			{Name: "flag", Type: schema.U8},
			{Name: "pair", Type: inner},
		}})
		if l.Members[1].Offset != 4 {
			t.Errorf("pair offset = %d, want 4", l.Members[1].Offset)
		}
		if l.Size != 12 {
			t.Errorf("size = %d, want 12", l.Size)
		}
	})

	t.Run("unsized_tail", func(t *testing.T) {
		l := mustCalc(t, &schema.Struct{Members: []schema.Member{
			{Name: "count", Type: schema.U32},
			{Name: "items", Type: &schema.Array{Elem: schema.U32, Count: schema.Unsized}},
		}})
		if !l.Unsized {
			t.Error("struct with unsized tail must be unsized")
		}
		// The open tail contributes nothing to the static minimum.
		if l.Size != 4 {
			t.Errorf("size = %d, want 4", l.Size)
		}
	})

	errTests := []struct {
		name string
		desc schema.Desc
		kind errors.Kind
	}{
		{
			"member_after_unsized",
			&schema.Struct{Members: []schema.Member{
				{Name: "items", Type: &schema.Array{Elem: schema.U8, Count: schema.Unsized}},
				{Name: "tail", Type: schema.U8},
			}},
			errors.KindAfterUnsized,
		},
		{
			"explicit_offset_after_unsized",
			&schema.Struct{Members: []schema.Member{
				{Name: "items", Type: &schema.Array{Elem: schema.U8, Count: schema.Unsized}},
				{Name: "tail", Type: schema.U8, Offset: schema.Uint32(0)},
			}},
			errors.KindAfterUnsized,
		},
		{
			"align_not_multiple_of_type_align",
			&schema.Struct{Members: []schema.Member{
				{Name: "a", Type: schema.U32, Align: schema.Uint32(2)},
			}},
			errors.KindBadAlign,
		},
		{
			"zero_align",
			&schema.Struct{Members: []schema.Member{
				{Name: "a", Type: schema.U8, Align: schema.Uint32(0)},
			}},
			errors.KindBadAlign,
		},
		{
			"offset_not_multiple_of_align",
			&schema.Struct{Members: []schema.Member{
				{Name: "a", Type: schema.U32, Offset: schema.Uint32(2)},
			}},
			errors.KindMisaligned,
		},
		{
			"offset_not_multiple_of_override_align",
			&schema.Struct{Members: []schema.Member{
				{Name: "a", Type: schema.U8, Align: schema.Uint32(4), Offset: schema.Uint32(2)},
			}},
			errors.KindMisaligned,
		},
		{
			"member_size_below_minimum",
			&schema.Struct{Members: []schema.Member{
				{Name: "a", Type: schema.U32, Size: schema.Uint32(2)},
			}},
			errors.KindSizeTooSmall,
		},
		{
			"struct_size_below_minimum",
			&schema.Struct{
				Members: []schema.Member{{Name: "a", Type: schema.U32}},
				Size:    schema.Uint32(2),
			},
			errors.KindSizeTooSmall,
		},
		{
			"struct_align_not_multiple",
			&schema.Struct{
				Members: []schema.Member{{Name: "a", Type: schema.U32}},
				Align:   schema.Uint32(2),
			},
			errors.KindBadAlign,
		},
		{
			"duplicate_member",
			&schema.Struct{Members: []schema.Member{
				{Name: "a", Type: schema.U8},
				{Name: "a", Type: schema.U8},
			}},
			errors.KindInvalidData,
		},
	}

	for _, tc := range errTests {
		t.Run(tc.name, func(t *testing.T) {
			wantLayoutErr(t, tc.desc, tc.kind)
		})
	}
}

func TestCalculateArray(t *testing.T) {
	t.Run("default_stride", func(t *testing.T) {
		l := mustCalc(t, &schema.Array{Elem: schema.I32, Count: 4})
		if l.Stride != 4 {
			t.Errorf("stride = %d, want 4", l.Stride)
		}
		if l.Size != 16 {
			t.Errorf("size = %d, want 16", l.Size)
		}
		if l.Align != 4 {
			t.Errorf("align = %d, want 4", l.Align)
		}
	})

	t.Run("padded_element_stride", func(t *testing.T) {
		// 5-byte struct elements with align 4 pack at stride 8; the
		// last element does not fill its full stride.
		elem := &schema.Struct{Members: []schema.Member{
			{Name: "v", Type: schema.U32},
			{Name: "tag", Type: schema.U8},
		}}
		l := mustCalc(t, &schema.Array{Elem: elem, Count: 3})
		if l.Stride != 8 {
			t.Errorf("stride = %d, want 8", l.Stride)
		}
		if l.Size != 2*8+5 {
			t.Errorf("size = %d, want 21", l.Size)
		}
	})

	t.Run("explicit_stride", func(t *testing.T) {
		l := mustCalc(t, &schema.Array{Elem: schema.I32, Count: 2, Stride: schema.Uint32(8)})
		if l.Stride != 8 {
			t.Errorf("stride = %d, want 8", l.Stride)
		}
		if l.Size != 12 {
			t.Errorf("size = %d, want 12", l.Size)
		}
	})

	t.Run("zero_length", func(t *testing.T) {
		l := mustCalc(t, &schema.Array{Elem: schema.F64, Count: 0})
		if l.Size != 0 {
			t.Errorf("size = %d, want 0", l.Size)
		}
		if l.Unsized {
			t.Error("zero-length array is sized")
		}
	})

	t.Run("unsized", func(t *testing.T) {
		l := mustCalc(t, &schema.Array{Elem: schema.U16, Count: schema.Unsized})
		if !l.Unsized {
			t.Error("array must be unsized")
		}
		if l.Size != 0 {
			t.Errorf("size = %d, want 0", l.Size)
		}
		if l.Stride != 2 {
			t.Errorf("stride = %d, want 2", l.Stride)
		}
	})

	errTests := []struct {
		name string
		desc schema.Desc
		kind errors.Kind
	}{
		{
			"stride_below_element_size",
			&schema.Array{Elem: schema.I32, Count: 2, Stride: schema.Uint32(3)},
			errors.KindBadStride,
		},
		{
			"stride_not_multiple_of_align",
			&schema.Array{Elem: schema.I32, Count: 2, Stride: schema.Uint32(6)},
			errors.KindBadStride,
		},
		{
			"unsized_element",
			&schema.Array{Elem: &schema.Array{Elem: schema.U8, Count: schema.Unsized}, Count: 2},
			errors.KindUnsizedElem,
		},
		{
			"negative_length",
			&schema.Array{Elem: schema.U8, Count: -7},
			errors.KindInvalidCount,
		},
		{
			"size_overflow",
			&schema.Array{Elem: schema.U32, Count: math.MaxInt32},
			errors.KindOverflow,
		},
	}

	for _, tc := range errTests {
		t.Run(tc.name, func(t *testing.T) {
			wantLayoutErr(t, tc.desc, tc.kind)
		})
	}
}

func TestCalculatorCache(t *testing.T) {
	elem := &schema.Struct{Members: []schema.Member{{Name: "v", Type: schema.U32}}}
	desc := &schema.Struct{Members: []schema.Member{
		{Name: "a", Type: elem},
		{Name: "b", Type: elem},
	}}

	c := NewCalculator()
	l, err := c.Calculate(desc)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if l.Members[0].Layout != l.Members[1].Layout {
		t.Error("shared description nodes should resolve to the same layout")
	}

	again, err := c.Calculate(desc)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if again != l {
		t.Error("repeated calculation should hit the cache")
	}
}

func TestLayoutString(t *testing.T) {
	l := mustCalc(t, &schema.Struct{Members: []schema.Member{
		{Name: "n", Type: schema.U32},
		{Name: "xs", Type: &schema.Array{Elem: schema.F32, Count: schema.Unsized}},
	}})
	s := l.String()
	for _, want := range []string{"n@0 u32", "xs@4", "unsized"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
}
