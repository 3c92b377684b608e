package boundary

import (
	"sync"

	tagbridge "github.com/soundfold/tagbridge"
)

type Memory = tagbridge.Memory
type Allocator = tagbridge.Allocator

// Safety limits for values crossing the boundary.
const (
	MaxValueSize  = 16 << 20 // bytes/text payload (16 MB)
	MaxListLength = 1 << 20  // text list elements
)

type Allocation struct {
	Ptr   uint32
	Size  uint32
	Align uint32
}

// AllocationList records every guest allocation made while lowering a value,
// so a multi-part lowering can be freed as a unit whether the engine call
// succeeded or failed halfway.
type AllocationList struct {
	allocations []Allocation
}

var allocationListPool = sync.Pool{
	New: func() any {
		return &AllocationList{allocations: make([]Allocation, 0, 8)}
	},
}

func NewAllocationList() *AllocationList {
	return allocationListPool.Get().(*AllocationList)
}

const maxPooledAllocationCapacity = 128

// Release returns to pool. Must call after Free(); list invalid after Release.
func (al *AllocationList) Release() {
	// Only pool small allocations to prevent memory bloat
	if cap(al.allocations) > maxPooledAllocationCapacity {
		return
	}
	al.Reset()
	allocationListPool.Put(al)
}

func (al *AllocationList) FreeAndRelease(allocator Allocator) {
	al.Free(allocator)
	al.Release()
}

func (al *AllocationList) Add(ptr, size, align uint32) {
	al.allocations = append(al.allocations, Allocation{
		Ptr:   ptr,
		Size:  size,
		Align: align,
	})
}

func (al *AllocationList) Free(allocator Allocator) {
	if allocator == nil {
		return
	}
	for _, a := range al.allocations {
		if a.Ptr != 0 {
			allocator.Free(a.Ptr, a.Size, a.Align)
		}
	}
	al.Reset()
}

func (al *AllocationList) Reset() {
	al.allocations = al.allocations[:0]
}

func (al *AllocationList) Count() int {
	return len(al.allocations)
}
