package tagfile

import (
	"context"

	tagbridge "github.com/soundfold/tagbridge"
	"github.com/soundfold/tagbridge/boundary"
	"github.com/soundfold/tagbridge/errors"
	"github.com/soundfold/tagbridge/lifecycle"
)

// File owns exactly one native file resource inside the engine. It starts
// Open and becomes Closed through Close; Closed is terminal.
//
// Always release a File explicitly, either with Close or through With:
//
//	f, err := tagfile.Open(ctx, eng, "song.flac")
//	if err != nil {
//	    return err
//	}
//	defer f.Close(ctx)
//
// A File and its wrappers are not safe for concurrent use.
type File struct {
	native  tagbridge.Native
	tracker *lifecycle.Tracker
	path    string
	ref     uint32
	closed  bool

	tag            *Tag
	props          *AudioProperties
	propsRequested bool
	propsAbsent    bool
}

// Open constructs a File for the audio file at path. path is accepted as a
// string or a boundary.PathValue; validation and lowering happen strictly
// before the engine is called, so a bad path never reaches native code.
//
// A file the engine cannot read or recognize still yields a constructed
// handle, with IsNull reporting true. Callers must check it:
//
//	f, err := tagfile.Open(ctx, eng, path)
//	if err != nil {
//	    return err // engine failure, not a bad file
//	}
//	defer f.Close(ctx)
//	if f.IsNull() {
//	    return fmt.Errorf("%s: not a recognized audio file", path)
//	}
func Open(ctx context.Context, native tagbridge.Native, path any, opts ...Option) (*File, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	p, err := boundary.CoercePath(path)
	if err != nil {
		return nil, err
	}

	allocs := boundary.NewAllocationList()
	defer allocs.FreeAndRelease(native.Allocator())

	pathPtr, err := boundary.LowerPath(native.Memory(), native.Allocator(), allocs, p)
	if err != nil {
		return nil, err
	}

	ref, err := native.NewFile(ctx, pathPtr, options.readProps, options.style)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseOpen, errors.KindIO, err, "open "+p.String())
	}

	return &File{
		native:         native,
		tracker:        lifecycle.NewTracker(),
		path:           p.String(),
		ref:            ref,
		propsRequested: options.readProps,
	}, nil
}

// Path returns the path the file was opened from.
func (f *File) Path() string {
	return f.path
}

// IsNull reports whether the engine failed to load valid content for this
// file. A null handle is still a handle: Close works and is required.
func (f *File) IsNull() bool {
	return f.ref == 0
}

// IsClosed reports whether Close has run.
func (f *File) IsClosed() bool {
	return f.closed
}

// Tag returns the file's tag wrapper, creating and registering it on the
// first call and returning the same cached wrapper afterwards.
func (f *File) Tag(ctx context.Context) (*Tag, error) {
	if f.closed {
		return nil, errors.InvalidState("file.tag")
	}
	if f.IsNull() {
		return nil, errors.NotFound(errors.PhaseRuntime, "tag", f.path)
	}
	if f.tag != nil {
		return f.tag, nil
	}

	ref, err := f.native.FileTag(ctx, f.ref)
	if err != nil {
		return nil, err
	}
	if ref == 0 {
		return nil, errors.NotFound(errors.PhaseRuntime, "tag", f.path)
	}

	t := &Tag{file: f, ref: ref}
	f.tag = t
	f.tracker.Register(lifecycle.Identity(f.ref), lifecycle.Identity(ref), t)
	return t, nil
}

// AudioProperties returns the file's audio-properties wrapper, creating and
// registering it on the first call. It returns (nil, nil) when properties
// were not requested at open time or the engine could not provide them.
func (f *File) AudioProperties(ctx context.Context) (*AudioProperties, error) {
	if f.closed {
		return nil, errors.InvalidState("file.audioproperties")
	}
	if f.IsNull() || !f.propsRequested || f.propsAbsent {
		return nil, nil
	}
	if f.props != nil {
		return f.props, nil
	}

	ref, err := f.native.FileAudioProperties(ctx, f.ref)
	if err != nil {
		return nil, err
	}
	if ref == 0 {
		f.propsAbsent = true
		return nil, nil
	}

	infoPtr, err := f.native.PropsInfo(ctx, ref)
	if err != nil {
		return nil, err
	}
	mem := f.native.Memory()
	p := &AudioProperties{file: f, ref: ref}
	fields := []*uint32{&p.lengthMs, &p.bitrate, &p.sampleRate, &p.channels}
	for i, dst := range fields {
		v, err := mem.ReadU32(infoPtr + uint32(i)*4)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseLift, errors.KindOutOfBounds, err, "read audio properties")
		}
		*dst = v
	}

	f.props = p
	f.tracker.Register(lifecycle.Identity(f.ref), lifecycle.Identity(ref), p)
	return p, nil
}

// Save persists in-memory tag edits to the underlying file. The flag is the
// engine's own success bit; Save on a null handle reports false without an
// error, matching the non-error null policy of Open.
func (f *File) Save(ctx context.Context) (bool, error) {
	if f.closed {
		return false, errors.InvalidState("file.save")
	}
	if f.IsNull() {
		return false, nil
	}

	ok, err := f.native.SaveFile(ctx, f.ref)
	if err != nil {
		return false, errors.Wrap(errors.PhaseSave, errors.KindIO, err, "save "+f.path)
	}
	return ok, nil
}

// Close invalidates every wrapper this handle produced, then frees the
// native file resource. The order matters: no wrapper can observe freed
// guest memory, regardless of when the Go collector gets around to the
// wrapper objects themselves. Close is idempotent.
func (f *File) Close(ctx context.Context) error {
	if f.closed {
		return nil
	}
	f.closed = true

	f.tracker.ReleaseParent(lifecycle.Identity(f.ref))
	f.tag = nil
	f.props = nil

	if f.ref != 0 {
		ref := f.ref
		f.ref = 0
		if err := f.native.FreeFile(ctx, ref); err != nil {
			return err
		}
	}
	return nil
}
