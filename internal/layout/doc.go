// Package layout computes concrete memory layouts for type descriptions.
//
// This package turns a schema description into byte offsets, sizes and
// alignments under the module's single deterministic packing policy.
//
// # Packing Rules
//
//   - Scalars: size equals alignment equals the kind's byte width.
//   - Structs: members laid out in declaration order, each rounded up to its
//     resolved alignment; no trailing padding is added. The struct's own
//     alignment is the maximum of its members' type alignments; per-member
//     alignment overrides affect placement only.
//   - Arrays: stride defaults to the element size rounded up to the element
//     alignment; the last element need not fill a full stride.
//   - Unsized nodes (open-ended trailing arrays) may only terminate a struct
//     and contribute nothing to the static minimum size.
//
// Explicit offset, alignment, size and stride overrides are validated
// against these rules; any violation is a layout-phase error.
//
// This package is internal to structview.
package layout
