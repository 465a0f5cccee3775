// Package schema defines the type description language consumed by the
// layout calculator.
//
// A description is a tree of three shapes:
//
//	Kind     - one of ten fixed-width scalar kinds (i8..u64, f32, f64)
//	*Struct  - an ordered list of named members with optional
//	           offset/align/size overrides
//	*Array   - a fixed-count or open-ended ("unsized") element sequence
//	           with an optional stride override
//
// Descriptions are plain data: they carry no buffer, no offsets and no
// resolved sizes. ParseJSON and MarshalDesc implement the JSON wire format,
// preserving struct member order, which is semantically significant.
package schema
