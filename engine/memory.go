package engine

import (
	"context"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/soundfold/tagbridge/errors"
)

// guestMemory adapts wazero's api.Memory to tagbridge.Memory. wazero reports
// out-of-range access with a bool; this wrapper turns it into a structured
// error.
type guestMemory struct {
	mem api.Memory
}

func (m *guestMemory) oob(offset uint32) error {
	return errors.OutOfBounds(errors.PhaseRuntime, nil, int(offset), int(m.mem.Size()))
}

func (m *guestMemory) Read(offset uint32, length uint32) ([]byte, error) {
	b, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, m.oob(offset)
	}
	return b, nil
}

func (m *guestMemory) Write(offset uint32, data []byte) error {
	if !m.mem.Write(offset, data) {
		return m.oob(offset)
	}
	return nil
}

func (m *guestMemory) ReadU8(offset uint32) (uint8, error) {
	v, ok := m.mem.ReadByte(offset)
	if !ok {
		return 0, m.oob(offset)
	}
	return v, nil
}

func (m *guestMemory) ReadU16(offset uint32) (uint16, error) {
	v, ok := m.mem.ReadUint16Le(offset)
	if !ok {
		return 0, m.oob(offset)
	}
	return v, nil
}

func (m *guestMemory) ReadU32(offset uint32) (uint32, error) {
	v, ok := m.mem.ReadUint32Le(offset)
	if !ok {
		return 0, m.oob(offset)
	}
	return v, nil
}

func (m *guestMemory) ReadU64(offset uint32) (uint64, error) {
	v, ok := m.mem.ReadUint64Le(offset)
	if !ok {
		return 0, m.oob(offset)
	}
	return v, nil
}

func (m *guestMemory) WriteU8(offset uint32, value uint8) error {
	if !m.mem.WriteByte(offset, value) {
		return m.oob(offset)
	}
	return nil
}

func (m *guestMemory) WriteU16(offset uint32, value uint16) error {
	if !m.mem.WriteUint16Le(offset, value) {
		return m.oob(offset)
	}
	return nil
}

func (m *guestMemory) WriteU32(offset uint32, value uint32) error {
	if !m.mem.WriteUint32Le(offset, value) {
		return m.oob(offset)
	}
	return nil
}

func (m *guestMemory) WriteU64(offset uint32, value uint64) error {
	if !m.mem.WriteUint64Le(offset, value) {
		return m.oob(offset)
	}
	return nil
}

// guestAllocator adapts the guest's tb_alloc/tb_free exports to
// tagbridge.Allocator. The Allocator interface carries no context; guest
// allocator calls are short and non-blocking, so a background context is
// used.
type guestAllocator struct {
	alloc  api.Function
	free   api.Function
	logger *zap.Logger
}

func (a *guestAllocator) Alloc(size, align uint32) (uint32, error) {
	res, err := a.alloc.Call(context.Background(), uint64(size), uint64(align))
	if err != nil {
		return 0, errors.Wrap(errors.PhaseLower, errors.KindAllocation, err, "guest alloc")
	}
	ptr := uint32(res[0])
	if ptr == 0 && size > 0 {
		return 0, errors.AllocationFailed(errors.PhaseLower, size, align)
	}
	return ptr, nil
}

func (a *guestAllocator) Free(ptr, size, align uint32) {
	if ptr == 0 {
		return
	}
	if _, err := a.free.Call(context.Background(), uint64(ptr), uint64(size), uint64(align)); err != nil {
		// Nothing a caller could do; the runtime is likely torn down.
		a.logger.Debug("guest free failed", zap.Uint32("ptr", ptr), zap.Error(err))
	}
}
