package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLayout  Phase = "layout"  // layout computation
	PhaseAccess  Phase = "access"  // view/accessor construction
	PhaseParse   Phase = "parse"   // description wire-format decoding
	PhaseConvert Phase = "convert" // foreign type conversion
)

// Kind categorizes the error
type Kind string

const (
	KindUnknownKind  Kind = "unknown_kind"
	KindInvalidCount Kind = "invalid_count"
	KindUnsizedElem  Kind = "unsized_element"
	KindBadStride    Kind = "bad_stride"
	KindAfterUnsized Kind = "member_after_unsized"
	KindMisaligned   Kind = "misaligned"
	KindBadAlign     Kind = "bad_align"
	KindSizeTooSmall Kind = "size_too_small"
	KindOverflow     Kind = "overflow"
	KindBufferSmall  Kind = "buffer_too_small"
	KindOutOfRange   Kind = "out_of_range"
	KindOutOfBounds  Kind = "out_of_bounds"
	KindInvalidData  Kind = "invalid_data"
	KindUnsupported  Kind = "unsupported"
	KindInternal     Kind = "internal"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// InPhase reports whether err is an *Error raised in the given phase.
func InPhase(err error, phase Phase) bool {
	e, ok := err.(*Error)
	return ok && e.Phase == phase
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the member path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Misaligned creates an alignment violation error
func Misaligned(phase Phase, path []string, what string, value, align uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindMisaligned,
		Path:   path,
		Detail: fmt.Sprintf("%s %d is not a multiple of alignment %d", what, value, align),
		Value:  value,
	}
}

// SizeTooSmall creates a size override violation error
func SizeTooSmall(phase Phase, path []string, got, min uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindSizeTooSmall,
		Path:   path,
		Detail: fmt.Sprintf("explicit size %d is below the minimum size %d", got, min),
		Value:  got,
	}
}

// BadStride creates a stride violation error
func BadStride(path []string, stride uint32, detail string) *Error {
	return &Error{
		Phase:  PhaseLayout,
		Kind:   KindBadStride,
		Path:   path,
		Detail: detail,
		Value:  stride,
	}
}

// AfterUnsized creates a member-after-unsized-member error
func AfterUnsized(path []string, name string) *Error {
	return &Error{
		Phase:  PhaseLayout,
		Kind:   KindAfterUnsized,
		Path:   path,
		Detail: fmt.Sprintf("member %q follows an unsized member", name),
	}
}

// Overflow creates an arithmetic overflow error
func Overflow(path []string, detail string) *Error {
	return &Error{
		Phase:  PhaseLayout,
		Kind:   KindOverflow,
		Path:   path,
		Detail: detail,
	}
}

// BufferTooSmall creates a buffer capacity error
func BufferTooSmall(need, have uint32) *Error {
	return &Error{
		Phase:  PhaseAccess,
		Kind:   KindBufferSmall,
		Detail: fmt.Sprintf("layout needs %d bytes but only %d are available", need, have),
		Value:  have,
	}
}

// OutOfRange creates a leaf-beyond-view error
func OutOfRange(path []string, offset, limit uint32) *Error {
	return &Error{
		Phase:  PhaseAccess,
		Kind:   KindOutOfRange,
		Path:   path,
		Detail: fmt.Sprintf("byte offset %d is outside the view's %d bytes", offset, limit),
		Value:  offset,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// OutOfBounds creates an index out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}
