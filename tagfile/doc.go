// Package tagfile is the high-level API for reading and writing audio
// metadata through a tagbridge.Native engine.
//
// A File owns one native file resource for its whole lifetime. Its Tag and
// AudioProperties wrappers are created lazily on first access, cached, and
// severed synchronously when the File closes - the wrappers never outlive
// the guest memory they point into, no matter what the Go collector is
// doing.
//
//	f, err := tagfile.Open(ctx, eng, "song.flac")
//	if err != nil {
//	    return err
//	}
//	defer f.Close(ctx)
//
//	if f.IsNull() {
//	    return fmt.Errorf("unrecognized file")
//	}
//	tag, err := f.Tag(ctx)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(tag.Title(ctx))
//
// For one-shot access, With scopes the whole lifetime:
//
//	n, err := tagfile.With(ctx, eng, "song.flac", func(f *tagfile.File) (uint, error) {
//	    tag, err := f.Tag(ctx)
//	    if err != nil {
//	        return 0, err
//	    }
//	    return tag.Track(ctx)
//	})
//
// Opening a file the engine cannot parse is not an error; the handle
// reports IsNull instead, and callers check it explicitly. Operations on a
// closed File or on a wrapper of a closed File fail with an invalid-state
// error (errors.IsInvalidState).
package tagfile
