package boundary

import (
	"github.com/soundfold/tagbridge/errors"
)

// Lowered records where a value landed in guest memory.
type Lowered struct {
	Ptr uint32
	Len uint32
}

// LowerBytes copies a ByteValue into guest memory as (ptr, len). An empty
// value lowers to (0, 0) without allocating.
func LowerBytes(mem Memory, alloc Allocator, allocs *AllocationList, v ByteValue) (Lowered, error) {
	return lowerRaw(mem, alloc, allocs, v.data, []string{"bytes"})
}

// LowerText transcodes a TextValue to UTF-8 and copies it into guest memory.
// The engine ABI is UTF-8 only; the value's own encoding exists purely on
// the host side.
func LowerText(mem Memory, alloc Allocator, allocs *AllocationList, v TextValue) (Lowered, error) {
	if v.enc == UTF8 {
		return lowerRaw(mem, alloc, allocs, v.data, []string{"text"})
	}
	return LowerString(mem, alloc, allocs, v.String())
}

// LowerString copies a Go string into guest memory as UTF-8 (ptr, len).
func LowerString(mem Memory, alloc Allocator, allocs *AllocationList, s string) (Lowered, error) {
	return lowerRaw(mem, alloc, allocs, []byte(s), []string{"text"})
}

// LowerPath materializes a PathValue as a NUL-terminated UTF-8 C string and
// returns the guest pointer. PathValue construction already rejected
// embedded NUL bytes, so termination here is unambiguous.
func LowerPath(mem Memory, alloc Allocator, allocs *AllocationList, p PathValue) (uint32, error) {
	if p.IsZero() {
		return 0, errors.InvalidInput(errors.PhaseLower, "zero path value")
	}

	data := []byte(p.s)
	size := uint32(len(data)) + 1
	ptr, err := alloc.Alloc(size, 1)
	if err != nil || ptr == 0 {
		return 0, errors.AllocationFailed(errors.PhaseLower, size, 1)
	}
	allocs.Add(ptr, size, 1)

	if err := mem.Write(ptr, data); err != nil {
		return 0, errors.Wrap(errors.PhaseLower, errors.KindOutOfBounds, err, "write path")
	}
	if err := mem.WriteU8(ptr+uint32(len(data)), 0); err != nil {
		return 0, errors.Wrap(errors.PhaseLower, errors.KindOutOfBounds, err, "write path terminator")
	}
	return ptr, nil
}

// LowerTextList copies a TextList into guest memory and returns a pointer to
// its header. Layout: [count u32][(ptr u32, len u32) x count], elements in
// list order. Every allocation is recorded in allocs, so a partial failure
// leaves nothing behind once the caller frees the list.
func LowerTextList(mem Memory, alloc Allocator, allocs *AllocationList, l TextList) (uint32, error) {
	count := uint32(len(l.items))
	if count > MaxListLength {
		return 0, errors.Overflow(errors.PhaseLower, []string{"list"}, count, "text list")
	}

	headerSize := 4 + count*8
	header, err := alloc.Alloc(headerSize, 4)
	if err != nil || header == 0 {
		return 0, errors.AllocationFailed(errors.PhaseLower, headerSize, 4)
	}
	allocs.Add(header, headerSize, 4)

	if err := mem.WriteU32(header, count); err != nil {
		return 0, errors.Wrap(errors.PhaseLower, errors.KindOutOfBounds, err, "write list count")
	}

	for i, item := range l.items {
		low, err := LowerText(mem, alloc, allocs, item)
		if err != nil {
			return 0, err
		}
		entry := header + 4 + uint32(i)*8
		if err := mem.WriteU32(entry, low.Ptr); err != nil {
			return 0, errors.Wrap(errors.PhaseLower, errors.KindOutOfBounds, err, "write list entry")
		}
		if err := mem.WriteU32(entry+4, low.Len); err != nil {
			return 0, errors.Wrap(errors.PhaseLower, errors.KindOutOfBounds, err, "write list entry")
		}
	}
	return header, nil
}

func lowerRaw(mem Memory, alloc Allocator, allocs *AllocationList, data []byte, path []string) (Lowered, error) {
	if len(data) == 0 {
		return Lowered{}, nil
	}
	if len(data) > MaxValueSize {
		return Lowered{}, errors.Overflow(errors.PhaseLower, path, len(data), "guest buffer")
	}

	size := uint32(len(data))
	ptr, err := alloc.Alloc(size, 1)
	if err != nil || ptr == 0 {
		return Lowered{}, errors.AllocationFailed(errors.PhaseLower, size, 1)
	}
	allocs.Add(ptr, size, 1)

	if err := mem.Write(ptr, data); err != nil {
		return Lowered{}, errors.Wrap(errors.PhaseLower, errors.KindOutOfBounds, err, "write value")
	}
	return Lowered{Ptr: ptr, Len: size}, nil
}
