// Package boundary converts values between their Go representation and the
// engine's native representation in wasm linear memory.
//
// Four value types cross the boundary:
//
//	ByteValue - immutable byte payloads (embedded artwork)
//	TextValue - encoded text with an explicit encoding tag
//	TextList  - ordered multi-valued text (genre lists, property values)
//	PathValue - a file path validated for native representability
//
// Every conversion copies. A ByteValue built from a host slice does not
// alias it, and a value lifted out of guest memory stays valid after the
// guest frees its side. Construction failures (unrepresentable text,
// embedded NUL in a path) are raised here, strictly before any engine call.
//
// # Native Representations
//
// Lowering writes the guest forms the engine ABI expects:
//
//	bytes      (ptr, len)
//	text       UTF-8 (ptr, len); other encodings are transcoded down
//	path       NUL-terminated UTF-8 C string
//	text list  [count u32][(ptr u32, len u32) x count]
//
// Guest allocations made while lowering are recorded in an AllocationList so
// the caller can free them all once the engine call returns:
//
//	allocs := boundary.NewAllocationList()
//	defer allocs.FreeAndRelease(alloc)
//
//	ptr, err := boundary.LowerPath(mem, alloc, allocs, path)
//
// # Plain Host Values
//
// API parameters typed as a boundary value also accept the plain Go form.
// The Coerce functions perform that conversion once, at the boundary:
//
//	v, err := boundary.CoerceText("Blackwater Park") // UTF-8 TextValue
//	v, err := boundary.CoerceTextList([]string{"Progressive", "Death Metal"})
package boundary
