// Package errors provides structured error types for the structview library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type includes the member path to the offending node and
// renders as, for example:
//
//	[layout] bad_stride at points: stride 3 is smaller than element size 4
//	[access] out_of_range at header.count: byte offset 24 is outside the view's 16 bytes
//
// The layout phase covers every invariant checked while computing a type
// layout; the access phase covers buffer capacity and scalar leaf placement
// during accessor construction. Reads and writes through an already
// constructed accessor never produce errors.
package errors
