// Package structview computes concrete memory layouts for declaratively
// described structured types and overlays live, mutable views onto raw byte
// buffers matching those layouts, without copying data in or out.
//
// It is the engine for any tool that must map C-like structs, fixed or
// open-ended arrays, and scalar numeric fields directly onto a flat memory
// region: GPU uniform/storage buffer contents, binary wire formats,
// memory-mapped records, or WASM linear memory.
//
// # Architecture Overview
//
//	structview/          Root package: factory, accessors, view bank
//	├── schema/          Type description language and JSON wire format
//	├── errors/          Structured layout/access error types
//	├── witconv/         WIT type to description conversion
//	├── wasmmem/         wazero linear-memory buffer adapter
//	├── internal/layout/ Layout calculator
//	├── internal/arith/  Overflow-checked offset arithmetic
//	└── cmd/inspect/     CLI and TUI for browsing buffers through a layout
//
// # Quick Start
//
// Describe a type, build a factory once, then stamp out overlays against any
// buffer:
//
//	desc := &schema.Struct{Members: []schema.Member{
//	    {Name: "x", Type: schema.I32},
//	    {Name: "y", Type: schema.F32},
//	}}
//
//	f, err := structview.NewFactory(desc)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	buf := make([]byte, 64)
//	ov, err := f.Create(buf)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	root := ov.Value().(*structview.Struct)
//	root.Field("x").(*structview.Scalar).SetInt(-7)
//	root.Field("y").(*structview.Scalar).SetFloat(1.5)
//
// All writes go straight into buf's bytes; no copy is ever made.
//
// # Layout Rules
//
//	Kind          Size  Alignment
//	────────────────────────────
//	i8/u8         1     1
//	i16/u16       2     2
//	i32/u32/f32   4     4
//	i64/u64/f64   8     8
//	struct        sum   max member type align
//	array         n     element align
//
// Struct members pack in declaration order, each rounded up to its resolved
// alignment; no trailing padding is added. Explicit per-member offset, align
// and size overrides are validated at layout time. An open-ended ("unsized")
// array may only terminate a struct; its elements are materialized lazily on
// first index access and cached for the accessor's lifetime.
//
// # Error Handling
//
// Exactly two error phases reach callers: layout errors (invariant
// violations while computing a layout, raised by NewFactory) and access
// errors (buffer capacity or scalar leaf placement, raised while
// constructing accessors). Reading or writing through an existing accessor
// never fails:
//
//	[layout] bad_stride at points: stride 3 is smaller than element size 4
//	[access] buffer_too_small: layout needs 16 bytes but only 8 are available
//
// # Thread Safety
//
// A Factory is immutable after construction and safe for concurrent Create
// calls. Accessors alias the buffer directly and perform no locking; sharing
// a buffer or an unsized-array accessor across goroutines requires external
// synchronization.
package structview
