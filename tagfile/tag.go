package tagfile

import (
	"context"

	tagbridge "github.com/soundfold/tagbridge"
	"github.com/soundfold/tagbridge/boundary"
	"github.com/soundfold/tagbridge/errors"
)

// Tag is a non-owning wrapper around the tag sub-object of a File. It is
// valid exactly while its File is open; closing the File invalidates it, and
// every accessor afterwards returns an invalid-state error.
//
// Setter values follow the boundary acceptance rule: parameters typed as a
// boundary value also accept the plain Go form, so SetTitle takes either a
// string or a boundary.TextValue built with an explicit encoding.
type Tag struct {
	file *File
	ref  uint32
	dead bool
}

// Invalidate implements lifecycle.Wrapper. After it runs, no method of the
// tag touches guest memory again.
func (t *Tag) Invalidate() {
	t.dead = true
}

func (t *Tag) guard(op string) error {
	if t.dead || t.file.closed {
		return errors.InvalidState(op)
	}
	return nil
}

func (t *Tag) getString(ctx context.Context, field tagbridge.TagField, op string) (string, error) {
	if err := t.guard(op); err != nil {
		return "", err
	}
	ptr, length, err := t.file.native.TagString(ctx, t.ref, field)
	if err != nil {
		return "", err
	}
	return boundary.LiftString(t.file.native.Memory(), ptr, length)
}

func (t *Tag) setString(ctx context.Context, field tagbridge.TagField, op string, v any) error {
	if err := t.guard(op); err != nil {
		return err
	}
	text, err := boundary.CoerceText(v)
	if err != nil {
		return err
	}

	allocs := boundary.NewAllocationList()
	defer allocs.FreeAndRelease(t.file.native.Allocator())

	low, err := boundary.LowerText(t.file.native.Memory(), t.file.native.Allocator(), allocs, text)
	if err != nil {
		return err
	}
	return t.file.native.SetTagString(ctx, t.ref, field, low.Ptr, low.Len)
}

func (t *Tag) getUint(ctx context.Context, field tagbridge.TagField, op string) (uint, error) {
	if err := t.guard(op); err != nil {
		return 0, err
	}
	v, err := t.file.native.TagUint(ctx, t.ref, field)
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}

func (t *Tag) setUint(ctx context.Context, field tagbridge.TagField, op string, v uint) error {
	if err := t.guard(op); err != nil {
		return err
	}
	if uint64(v) > 0xFFFFFFFF {
		return errors.Overflow(errors.PhaseLower, []string{field.String()}, v, "u32")
	}
	return t.file.native.SetTagUint(ctx, t.ref, field, uint32(v))
}

func (t *Tag) Title(ctx context.Context) (string, error) {
	return t.getString(ctx, tagbridge.FieldTitle, "tag.title")
}

func (t *Tag) SetTitle(ctx context.Context, v any) error {
	return t.setString(ctx, tagbridge.FieldTitle, "tag.set_title", v)
}

func (t *Tag) Artist(ctx context.Context) (string, error) {
	return t.getString(ctx, tagbridge.FieldArtist, "tag.artist")
}

func (t *Tag) SetArtist(ctx context.Context, v any) error {
	return t.setString(ctx, tagbridge.FieldArtist, "tag.set_artist", v)
}

func (t *Tag) Album(ctx context.Context) (string, error) {
	return t.getString(ctx, tagbridge.FieldAlbum, "tag.album")
}

func (t *Tag) SetAlbum(ctx context.Context, v any) error {
	return t.setString(ctx, tagbridge.FieldAlbum, "tag.set_album", v)
}

func (t *Tag) Comment(ctx context.Context) (string, error) {
	return t.getString(ctx, tagbridge.FieldComment, "tag.comment")
}

func (t *Tag) SetComment(ctx context.Context, v any) error {
	return t.setString(ctx, tagbridge.FieldComment, "tag.set_comment", v)
}

func (t *Tag) Genre(ctx context.Context) (string, error) {
	return t.getString(ctx, tagbridge.FieldGenre, "tag.genre")
}

func (t *Tag) SetGenre(ctx context.Context, v any) error {
	return t.setString(ctx, tagbridge.FieldGenre, "tag.set_genre", v)
}

func (t *Tag) Year(ctx context.Context) (uint, error) {
	return t.getUint(ctx, tagbridge.FieldYear, "tag.year")
}

func (t *Tag) SetYear(ctx context.Context, v uint) error {
	return t.setUint(ctx, tagbridge.FieldYear, "tag.set_year", v)
}

func (t *Tag) Track(ctx context.Context) (uint, error) {
	return t.getUint(ctx, tagbridge.FieldTrack, "tag.track")
}

func (t *Tag) SetTrack(ctx context.Context, v uint) error {
	return t.setUint(ctx, tagbridge.FieldTrack, "tag.set_track", v)
}

// Property returns the values of a multi-valued tag property, in tag order.
// A key with no values returns nil.
func (t *Tag) Property(ctx context.Context, key string) ([]string, error) {
	if err := t.guard("tag.property"); err != nil {
		return nil, err
	}

	allocs := boundary.NewAllocationList()
	defer allocs.FreeAndRelease(t.file.native.Allocator())

	keyLow, err := boundary.LowerString(t.file.native.Memory(), t.file.native.Allocator(), allocs, key)
	if err != nil {
		return nil, err
	}
	listPtr, err := t.file.native.TagProperty(ctx, t.ref, keyLow.Ptr, keyLow.Len)
	if err != nil {
		return nil, err
	}
	list, err := boundary.LiftTextList(t.file.native.Memory(), listPtr)
	if err != nil {
		return nil, err
	}
	return list.Strings(), nil
}

// SetProperty replaces the values of a multi-valued tag property. values is
// a []string or a boundary.TextList; order is preserved.
func (t *Tag) SetProperty(ctx context.Context, key string, values any) error {
	if err := t.guard("tag.set_property"); err != nil {
		return err
	}
	list, err := boundary.CoerceTextList(values)
	if err != nil {
		return err
	}

	allocs := boundary.NewAllocationList()
	defer allocs.FreeAndRelease(t.file.native.Allocator())

	mem := t.file.native.Memory()
	alloc := t.file.native.Allocator()

	keyLow, err := boundary.LowerString(mem, alloc, allocs, key)
	if err != nil {
		return err
	}
	listPtr, err := boundary.LowerTextList(mem, alloc, allocs, list)
	if err != nil {
		return err
	}
	return t.file.native.SetTagProperty(ctx, t.ref, keyLow.Ptr, keyLow.Len, listPtr)
}

// Artwork returns the embedded artwork payload. A file without artwork
// returns the empty ByteValue.
func (t *Tag) Artwork(ctx context.Context) (boundary.ByteValue, error) {
	if err := t.guard("tag.artwork"); err != nil {
		return boundary.ByteValue{}, err
	}
	ptr, length, err := t.file.native.TagPicture(ctx, t.ref)
	if err != nil {
		return boundary.ByteValue{}, err
	}
	return boundary.LiftBytes(t.file.native.Memory(), ptr, length)
}

// SetArtwork replaces the embedded artwork. v is a boundary.ByteValue or a
// plain []byte; either way the payload is copied, so mutating the source
// afterwards has no effect.
func (t *Tag) SetArtwork(ctx context.Context, v any) error {
	if err := t.guard("tag.set_artwork"); err != nil {
		return err
	}
	data, err := boundary.CoerceBytes(v)
	if err != nil {
		return err
	}

	allocs := boundary.NewAllocationList()
	defer allocs.FreeAndRelease(t.file.native.Allocator())

	low, err := boundary.LowerBytes(t.file.native.Memory(), t.file.native.Allocator(), allocs, data)
	if err != nil {
		return err
	}
	return t.file.native.SetTagPicture(ctx, t.ref, low.Ptr, low.Len)
}
