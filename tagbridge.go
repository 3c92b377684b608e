package tagbridge

import "context"

// Memory represents the engine's linear memory.
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	ReadU8(offset uint32) (uint8, error)
	ReadU16(offset uint32) (uint16, error)
	ReadU32(offset uint32) (uint32, error)
	ReadU64(offset uint32) (uint64, error)
	WriteU8(offset uint32, value uint8) error
	WriteU16(offset uint32, value uint16) error
	WriteU32(offset uint32, value uint32) error
	WriteU64(offset uint32, value uint64) error
}

// Allocator allocates memory inside the engine's linear memory.
type Allocator interface {
	Alloc(size, align uint32) (uint32, error)
	Free(ptr, size, align uint32)
}

// TagField selects a tag field for TagString/TagUint and their setters.
type TagField uint32

const (
	FieldTitle TagField = iota
	FieldArtist
	FieldAlbum
	FieldComment
	FieldGenre

	// Numeric fields, valid only with TagUint/SetTagUint.
	FieldYear
	FieldTrack
)

func (f TagField) String() string {
	switch f {
	case FieldTitle:
		return "title"
	case FieldArtist:
		return "artist"
	case FieldAlbum:
		return "album"
	case FieldComment:
		return "comment"
	case FieldGenre:
		return "genre"
	case FieldYear:
		return "year"
	case FieldTrack:
		return "track"
	}
	return "unknown"
}

// ReadStyle controls how thoroughly the engine scans a file for audio
// properties when it is opened.
type ReadStyle uint8

const (
	ReadStyleAverage ReadStyle = iota
	ReadStyleFast
	ReadStyleAccurate
)

// Native is the boundary surface of the metadata engine. All references are
// guest pointers into the engine's linear memory; 0 is never a valid
// reference. A file reference transitively owns its tag and audio-properties
// references, and FreeFile releases all of them at once.
//
// String and blob results point at engine-owned buffers that stay valid only
// until the next Native call; callers must copy them out immediately.
//
// Implementations are not safe for concurrent use; see package engine.
type Native interface {
	Memory() Memory
	Allocator() Allocator

	// NewFile opens the file at the NUL-terminated UTF-8 path stored at
	// path. It returns 0 when the file cannot be read or recognized; that
	// is the "null file" condition, not an error.
	NewFile(ctx context.Context, path uint32, readProps bool, style ReadStyle) (uint32, error)
	FreeFile(ctx context.Context, file uint32) error
	SaveFile(ctx context.Context, file uint32) (bool, error)

	FileTag(ctx context.Context, file uint32) (uint32, error)
	FileAudioProperties(ctx context.Context, file uint32) (uint32, error)

	TagString(ctx context.Context, tag uint32, field TagField) (ptr, length uint32, err error)
	SetTagString(ctx context.Context, tag uint32, field TagField, ptr, length uint32) error
	TagUint(ctx context.Context, tag uint32, field TagField) (uint32, error)
	SetTagUint(ctx context.Context, tag uint32, field TagField, value uint32) error

	// TagProperty returns a text-list blob for a property key, 0 when the
	// key is absent. See package boundary for the blob layout.
	TagProperty(ctx context.Context, tag, keyPtr, keyLen uint32) (uint32, error)
	SetTagProperty(ctx context.Context, tag, keyPtr, keyLen, list uint32) error

	// TagPicture returns the embedded artwork payload, (0, 0) when none.
	TagPicture(ctx context.Context, tag uint32) (ptr, length uint32, err error)
	SetTagPicture(ctx context.Context, tag uint32, ptr, length uint32) error

	// PropsInfo returns a pointer to a packed 16-byte struct of four u32
	// fields: length in milliseconds, bitrate in kb/s, sample rate in Hz,
	// channel count.
	PropsInfo(ctx context.Context, props uint32) (uint32, error)
}
