package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseLayout,
				Kind:   KindBadStride,
				Path:   []string{"frame", "points"},
				Detail: "stride 3 is smaller than element size 4",
			},
			contains: []string{"[layout]", "bad_stride", "frame.points", "stride 3"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseAccess,
				Kind:  KindOutOfRange,
			},
			contains: []string{"[access]", "out_of_range"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseParse,
				Kind:   KindInvalidData,
				Detail: "bad member entry",
				Cause:  errors.New("unexpected token"),
			},
			contains: []string{"[parse]", "invalid_data", "bad member entry", "caused by", "unexpected token"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseLayout,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseLayout,
		Kind:  KindMisaligned,
		Path:  []string{"foo"},
	}

	if !err.Is(&Error{Phase: PhaseLayout, Kind: KindMisaligned}) {
		t.Error("Is should match same phase and kind")
	}

	if err.Is(&Error{Phase: PhaseAccess, Kind: KindMisaligned}) {
		t.Error("Is should not match different phase")
	}

	if err.Is(&Error{Phase: PhaseLayout, Kind: KindOverflow}) {
		t.Error("Is should not match different kind")
	}

	target := &Error{Phase: PhaseLayout, Kind: KindMisaligned}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestInPhase(t *testing.T) {
	layoutErr := AfterUnsized([]string{"s"}, "tail")
	if !InPhase(layoutErr, PhaseLayout) {
		t.Error("AfterUnsized should be in the layout phase")
	}
	if InPhase(layoutErr, PhaseAccess) {
		t.Error("AfterUnsized should not be in the access phase")
	}
	if InPhase(errors.New("plain"), PhaseLayout) {
		t.Error("plain errors belong to no phase")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseLayout, KindBadAlign).
		Path("header", "count").
		Value(uint32(3)).
		Cause(cause).
		Detail("alignment %d is not a multiple of %d", 3, 2).
		Build()

	if err.Phase != PhaseLayout {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseLayout)
	}
	if err.Kind != KindBadAlign {
		t.Errorf("Kind = %v, want %v", err.Kind, KindBadAlign)
	}
	if len(err.Path) != 2 || err.Path[0] != "header" || err.Path[1] != "count" {
		t.Errorf("Path = %v, want [header count]", err.Path)
	}
	if err.Value != uint32(3) {
		t.Errorf("Value = %v, want 3", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Error("Cause not preserved")
	}
	if err.Detail != "alignment 3 is not a multiple of 2" {
		t.Errorf("Detail = %q", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name  string
		err   *Error
		phase Phase
		kind  Kind
	}{
		{"misaligned", Misaligned(PhaseLayout, []string{"x"}, "offset", 3, 4), PhaseLayout, KindMisaligned},
		{"size_too_small", SizeTooSmall(PhaseLayout, nil, 2, 4), PhaseLayout, KindSizeTooSmall},
		{"bad_stride", BadStride([]string{"a"}, 3, "stride 3 below element size 4"), PhaseLayout, KindBadStride},
		{"after_unsized", AfterUnsized(nil, "tail"), PhaseLayout, KindAfterUnsized},
		{"overflow", Overflow(nil, "array size overflows"), PhaseLayout, KindOverflow},
		{"buffer_too_small", BufferTooSmall(16, 8), PhaseAccess, KindBufferSmall},
		{"out_of_range", OutOfRange(nil, 24, 16), PhaseAccess, KindOutOfRange},
		{"unsupported", Unsupported(PhaseConvert, "variant types"), PhaseConvert, KindUnsupported},
		{"out_of_bounds", OutOfBounds(PhaseAccess, nil, 5, 3), PhaseAccess, KindOutOfBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Phase != tt.phase {
				t.Errorf("Phase = %v, want %v", tt.err.Phase, tt.phase)
			}
			if tt.err.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", tt.err.Kind, tt.kind)
			}
			if tt.err.Error() == "" {
				t.Error("empty error message")
			}
		})
	}
}
