package schema

import "testing"

func TestKindTable(t *testing.T) {
	tests := []struct {
		kind   Kind
		tag    string
		width  uint32
		signed bool
		float  bool
	}{
		{I8, "i8", 1, true, false},
		{U8, "u8", 1, false, false},
		{I16, "i16", 2, true, false},
		{U16, "u16", 2, false, false},
		{I32, "i32", 4, true, false},
		{U32, "u32", 4, false, false},
		{F32, "f32", 4, false, true},
		{F64, "f64", 8, false, true},
		{I64, "i64", 8, true, false},
		{U64, "u64", 8, false, false},
	}

	if len(tests) != NumKinds {
		t.Fatalf("table covers %d kinds, want %d", len(tests), NumKinds)
	}

	for _, tc := range tests {
		t.Run(tc.tag, func(t *testing.T) {
			if got := tc.kind.String(); got != tc.tag {
				t.Errorf("String() = %q, want %q", got, tc.tag)
			}
			if got := tc.kind.Width(); got != tc.width {
				t.Errorf("Width() = %d, want %d", got, tc.width)
			}
			if got := tc.kind.Signed(); got != tc.signed {
				t.Errorf("Signed() = %v, want %v", got, tc.signed)
			}
			if got := tc.kind.Float(); got != tc.float {
				t.Errorf("Float() = %v, want %v", got, tc.float)
			}
			if !tc.kind.Valid() {
				t.Error("kind should be valid")
			}

			k, ok := KindFromTag(tc.tag)
			if !ok || k != tc.kind {
				t.Errorf("KindFromTag(%q) = %v, %v", tc.tag, k, ok)
			}
		})
	}
}

func TestKindInvalid(t *testing.T) {
	bad := Kind(99)
	if bad.Valid() {
		t.Error("kind 99 should be invalid")
	}
	if bad.String() != "unknown" {
		t.Errorf("String() = %q, want unknown", bad.String())
	}
	if bad.Width() != 0 {
		t.Errorf("Width() = %d, want 0", bad.Width())
	}
	if _, ok := KindFromTag("i128"); ok {
		t.Error("KindFromTag(i128) should fail")
	}
}
