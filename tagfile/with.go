package tagfile

import (
	"context"

	tagbridge "github.com/soundfold/tagbridge"
)

// With opens a file, hands it to fn, and guarantees Close runs on every exit
// path - normal return, early error return, or panic inside fn - before With
// itself returns fn's result.
//
//	title, err := tagfile.With(ctx, eng, "song.flac", func(f *tagfile.File) (string, error) {
//	    tag, err := f.Tag(ctx)
//	    if err != nil {
//	        return "", err
//	    }
//	    return tag.Title(ctx)
//	})
func With[T any](ctx context.Context, native tagbridge.Native, path any, fn func(*File) (T, error), opts ...Option) (T, error) {
	var zero T

	f, err := Open(ctx, native, path, opts...)
	if err != nil {
		return zero, err
	}
	// Close is idempotent, so the deferred call is a pure panic guard.
	defer f.Close(ctx)

	v, err := fn(f)
	if cerr := f.Close(ctx); err == nil && cerr != nil {
		return zero, cerr
	}
	return v, err
}
