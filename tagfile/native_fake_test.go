package tagfile

import (
	"context"
	"fmt"

	tagbridge "github.com/soundfold/tagbridge"
	"github.com/soundfold/tagbridge/errors"
)

// fakeMem implements tagbridge.Memory over a flat byte slice.
type fakeMem struct {
	data []byte
}

func (m *fakeMem) check(offset, length uint32) error {
	if int(offset)+int(length) > len(m.data) {
		return errors.OutOfBounds(errors.PhaseRuntime, nil, int(offset), len(m.data))
	}
	return nil
}

func (m *fakeMem) Read(offset uint32, length uint32) ([]byte, error) {
	if err := m.check(offset, length); err != nil {
		return nil, err
	}
	return m.data[offset : offset+length], nil
}

func (m *fakeMem) Write(offset uint32, data []byte) error {
	if err := m.check(offset, uint32(len(data))); err != nil {
		return err
	}
	copy(m.data[offset:], data)
	return nil
}

func (m *fakeMem) ReadU8(offset uint32) (uint8, error) {
	if err := m.check(offset, 1); err != nil {
		return 0, err
	}
	return m.data[offset], nil
}

func (m *fakeMem) ReadU16(offset uint32) (uint16, error) {
	if err := m.check(offset, 2); err != nil {
		return 0, err
	}
	return uint16(m.data[offset]) | uint16(m.data[offset+1])<<8, nil
}

func (m *fakeMem) ReadU32(offset uint32) (uint32, error) {
	if err := m.check(offset, 4); err != nil {
		return 0, err
	}
	return uint32(m.data[offset]) | uint32(m.data[offset+1])<<8 |
		uint32(m.data[offset+2])<<16 | uint32(m.data[offset+3])<<24, nil
}

func (m *fakeMem) ReadU64(offset uint32) (uint64, error) {
	lo, err := m.ReadU32(offset)
	if err != nil {
		return 0, err
	}
	hi, err := m.ReadU32(offset + 4)
	if err != nil {
		return 0, err
	}
	return uint64(lo) | uint64(hi)<<32, nil
}

func (m *fakeMem) WriteU8(offset uint32, value uint8) error {
	if err := m.check(offset, 1); err != nil {
		return err
	}
	m.data[offset] = value
	return nil
}

func (m *fakeMem) WriteU16(offset uint32, value uint16) error {
	if err := m.check(offset, 2); err != nil {
		return err
	}
	m.data[offset] = byte(value)
	m.data[offset+1] = byte(value >> 8)
	return nil
}

func (m *fakeMem) WriteU32(offset uint32, value uint32) error {
	if err := m.check(offset, 4); err != nil {
		return err
	}
	m.data[offset] = byte(value)
	m.data[offset+1] = byte(value >> 8)
	m.data[offset+2] = byte(value >> 16)
	m.data[offset+3] = byte(value >> 24)
	return nil
}

func (m *fakeMem) WriteU64(offset uint32, value uint64) error {
	if err := m.WriteU32(offset, uint32(value)); err != nil {
		return err
	}
	return m.WriteU32(offset+4, uint32(value>>32))
}

// fakeAlloc is a bump allocator over a region of a fakeMem, recording every
// alloc and free so tests can assert the host leaves nothing behind.
type fakeAlloc struct {
	next   uint32
	limit  uint32
	allocs int
	frees  int
}

func (a *fakeAlloc) Alloc(size, align uint32) (uint32, error) {
	if align > 1 {
		a.next = (a.next + align - 1) &^ (align - 1)
	}
	if a.next+size > a.limit {
		return 0, errors.AllocationFailed(errors.PhaseLower, size, align)
	}
	ptr := a.next
	a.next += size
	a.allocs++
	return ptr, nil
}

func (a *fakeAlloc) Free(ptr, size, align uint32) {
	a.frees++
}

// fakeTag is the engine-side tag state of one library entry.
type fakeTag struct {
	strings    map[tagbridge.TagField]string
	uints      map[tagbridge.TagField]uint32
	properties map[string][]string
	picture    []byte
}

func newFakeTag() *fakeTag {
	return &fakeTag{
		strings:    make(map[tagbridge.TagField]string),
		uints:      make(map[tagbridge.TagField]uint32),
		properties: make(map[string][]string),
	}
}

type fakeEntry struct {
	tag      *fakeTag
	props    [4]uint32
	hasProps bool
	freed    bool
	saves    int
}

// fakeNative is an in-memory stand-in for the wasm engine. It honors the
// same ABI the real engine does: paths arrive as C strings, strings and
// artwork as (ptr, len) pairs, multi-valued properties as text-list blobs.
// Engine-owned result buffers come from a scratch region separate from the
// host-visible allocator, so tests can check host allocation balance.
type fakeNative struct {
	mem     *fakeMem
	alloc   *fakeAlloc // host lowering region
	scratch *fakeAlloc // engine-owned results

	library map[string]*fakeTag
	props   map[string][4]uint32
	files   map[uint32]*fakeEntry
	paths   map[uint32]string
	nextRef uint32

	saveOK     bool
	openCalls  int
	freedFiles []uint32
	onFreeFile func()
}

func newFakeNative() *fakeNative {
	return &fakeNative{
		mem:     &fakeMem{data: make([]byte, 1<<20)},
		alloc:   &fakeAlloc{next: 0x1000, limit: 0x80000},
		scratch: &fakeAlloc{next: 0x80000, limit: 1 << 20},
		library: make(map[string]*fakeTag),
		props:   make(map[string][4]uint32),
		files:   make(map[uint32]*fakeEntry),
		paths:   make(map[uint32]string),
		nextRef: 0x100,
		saveOK:  true,
	}
}

// addTrack preloads a library entry so opening path succeeds.
func (n *fakeNative) addTrack(path, title, artist string) *fakeTag {
	tag := newFakeTag()
	tag.strings[tagbridge.FieldTitle] = title
	tag.strings[tagbridge.FieldArtist] = artist
	n.library[path] = tag
	return tag
}

func (n *fakeNative) Memory() tagbridge.Memory       { return n.mem }
func (n *fakeNative) Allocator() tagbridge.Allocator { return n.alloc }

func (n *fakeNative) readCString(ptr uint32) (string, error) {
	for end := ptr; ; end++ {
		b, err := n.mem.ReadU8(end)
		if err != nil {
			return "", err
		}
		if b == 0 {
			raw, err := n.mem.Read(ptr, end-ptr)
			if err != nil {
				return "", err
			}
			return string(raw), nil
		}
	}
}

func (n *fakeNative) entry(file uint32) (*fakeEntry, error) {
	e, ok := n.files[file]
	if !ok || e.freed {
		return nil, fmt.Errorf("stale file reference %#x", file)
	}
	return e, nil
}

func (n *fakeNative) entryByTag(tag uint32) (*fakeEntry, error) {
	return n.entry(tag - 1)
}

func (n *fakeNative) NewFile(ctx context.Context, path uint32, readProps bool, style tagbridge.ReadStyle) (uint32, error) {
	n.openCalls++
	p, err := n.readCString(path)
	if err != nil {
		return 0, err
	}
	src, ok := n.library[p]
	if !ok {
		return 0, nil // unrecognized file: null condition, not an error
	}

	ref := n.nextRef
	n.nextRef += 0x10

	// Clone so edits through one handle do not leak into the library
	tag := newFakeTag()
	for k, v := range src.strings {
		tag.strings[k] = v
	}
	for k, v := range src.uints {
		tag.uints[k] = v
	}
	for k, v := range src.properties {
		tag.properties[k] = append([]string(nil), v...)
	}
	tag.picture = append([]byte(nil), src.picture...)

	props, hasProps := n.props[p]
	n.files[ref] = &fakeEntry{tag: tag, props: props, hasProps: readProps && hasProps}
	n.paths[ref] = p
	return ref, nil
}

func (n *fakeNative) FreeFile(ctx context.Context, file uint32) error {
	e, err := n.entry(file)
	if err != nil {
		return err
	}
	if n.onFreeFile != nil {
		n.onFreeFile()
	}
	e.freed = true
	n.freedFiles = append(n.freedFiles, file)
	return nil
}

func (n *fakeNative) SaveFile(ctx context.Context, file uint32) (bool, error) {
	e, err := n.entry(file)
	if err != nil {
		return false, err
	}
	e.saves++
	if n.saveOK {
		n.library[n.paths[file]] = e.tag
	}
	return n.saveOK, nil
}

func (n *fakeNative) FileTag(ctx context.Context, file uint32) (uint32, error) {
	if _, err := n.entry(file); err != nil {
		return 0, err
	}
	return file + 1, nil
}

func (n *fakeNative) FileAudioProperties(ctx context.Context, file uint32) (uint32, error) {
	e, err := n.entry(file)
	if err != nil {
		return 0, err
	}
	if !e.hasProps {
		return 0, nil
	}
	return file + 2, nil
}

// scratchBytes copies data into the scratch region and returns a pair
// pointer, mimicking engine-owned result buffers.
func (n *fakeNative) scratchBytes(data []byte) (uint32, error) {
	var dataPtr uint32
	if len(data) > 0 {
		ptr, err := n.scratch.Alloc(uint32(len(data)), 1)
		if err != nil {
			return 0, err
		}
		if err := n.mem.Write(ptr, data); err != nil {
			return 0, err
		}
		dataPtr = ptr
	}
	pair, err := n.scratch.Alloc(8, 4)
	if err != nil {
		return 0, err
	}
	if err := n.mem.WriteU32(pair, dataPtr); err != nil {
		return 0, err
	}
	if err := n.mem.WriteU32(pair+4, uint32(len(data))); err != nil {
		return 0, err
	}
	return pair, nil
}

func (n *fakeNative) TagString(ctx context.Context, tag uint32, field tagbridge.TagField) (uint32, uint32, error) {
	e, err := n.entryByTag(tag)
	if err != nil {
		return 0, 0, err
	}
	pair, err := n.scratchBytes([]byte(e.tag.strings[field]))
	if err != nil {
		return 0, 0, err
	}
	return n.readPair(pair)
}

func (n *fakeNative) readPair(pair uint32) (uint32, uint32, error) {
	ptr, err := n.mem.ReadU32(pair)
	if err != nil {
		return 0, 0, err
	}
	length, err := n.mem.ReadU32(pair + 4)
	if err != nil {
		return 0, 0, err
	}
	return ptr, length, nil
}

func (n *fakeNative) SetTagString(ctx context.Context, tag uint32, field tagbridge.TagField, ptr, length uint32) error {
	e, err := n.entryByTag(tag)
	if err != nil {
		return err
	}
	var raw []byte
	if length > 0 {
		b, err := n.mem.Read(ptr, length)
		if err != nil {
			return err
		}
		raw = append([]byte(nil), b...)
	}
	e.tag.strings[field] = string(raw)
	return nil
}

func (n *fakeNative) TagUint(ctx context.Context, tag uint32, field tagbridge.TagField) (uint32, error) {
	e, err := n.entryByTag(tag)
	if err != nil {
		return 0, err
	}
	return e.tag.uints[field], nil
}

func (n *fakeNative) SetTagUint(ctx context.Context, tag uint32, field tagbridge.TagField, value uint32) error {
	e, err := n.entryByTag(tag)
	if err != nil {
		return err
	}
	e.tag.uints[field] = value
	return nil
}

func (n *fakeNative) TagProperty(ctx context.Context, tag, keyPtr, keyLen uint32) (uint32, error) {
	e, err := n.entryByTag(tag)
	if err != nil {
		return 0, err
	}
	key, err := n.mem.Read(keyPtr, keyLen)
	if err != nil {
		return 0, err
	}
	values, ok := e.tag.properties[string(key)]
	if !ok {
		return 0, nil
	}

	header, err := n.scratch.Alloc(4+uint32(len(values))*8, 4)
	if err != nil {
		return 0, err
	}
	if err := n.mem.WriteU32(header, uint32(len(values))); err != nil {
		return 0, err
	}
	for i, v := range values {
		var dataPtr uint32
		if len(v) > 0 {
			dataPtr, err = n.scratch.Alloc(uint32(len(v)), 1)
			if err != nil {
				return 0, err
			}
			if err := n.mem.Write(dataPtr, []byte(v)); err != nil {
				return 0, err
			}
		}
		entry := header + 4 + uint32(i)*8
		if err := n.mem.WriteU32(entry, dataPtr); err != nil {
			return 0, err
		}
		if err := n.mem.WriteU32(entry+4, uint32(len(v))); err != nil {
			return 0, err
		}
	}
	return header, nil
}

func (n *fakeNative) SetTagProperty(ctx context.Context, tag, keyPtr, keyLen, list uint32) error {
	e, err := n.entryByTag(tag)
	if err != nil {
		return err
	}
	key, err := n.mem.Read(keyPtr, keyLen)
	if err != nil {
		return err
	}

	count, err := n.mem.ReadU32(list)
	if err != nil {
		return err
	}
	values := make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		entry := list + 4 + i*8
		ptr, err := n.mem.ReadU32(entry)
		if err != nil {
			return err
		}
		length, err := n.mem.ReadU32(entry + 4)
		if err != nil {
			return err
		}
		var raw []byte
		if length > 0 {
			b, err := n.mem.Read(ptr, length)
			if err != nil {
				return err
			}
			raw = append([]byte(nil), b...)
		}
		values = append(values, string(raw))
	}
	e.tag.properties[string(key)] = values
	return nil
}

func (n *fakeNative) TagPicture(ctx context.Context, tag uint32) (uint32, uint32, error) {
	e, err := n.entryByTag(tag)
	if err != nil {
		return 0, 0, err
	}
	if len(e.tag.picture) == 0 {
		return 0, 0, nil
	}
	pair, err := n.scratchBytes(e.tag.picture)
	if err != nil {
		return 0, 0, err
	}
	return n.readPair(pair)
}

func (n *fakeNative) SetTagPicture(ctx context.Context, tag uint32, ptr, length uint32) error {
	e, err := n.entryByTag(tag)
	if err != nil {
		return err
	}
	var raw []byte
	if length > 0 {
		b, err := n.mem.Read(ptr, length)
		if err != nil {
			return err
		}
		raw = append([]byte(nil), b...)
	}
	e.tag.picture = raw
	return nil
}

func (n *fakeNative) PropsInfo(ctx context.Context, props uint32) (uint32, error) {
	e, err := n.entry(props - 2)
	if err != nil {
		return 0, err
	}
	ptr, err := n.scratch.Alloc(16, 4)
	if err != nil {
		return 0, err
	}
	for i, v := range e.props {
		if err := n.mem.WriteU32(ptr+uint32(i)*4, v); err != nil {
			return 0, err
		}
	}
	return ptr, nil
}

var _ tagbridge.Native = (*fakeNative)(nil)
