// Package tagbridge bridges Go and a WebAssembly-compiled audio metadata
// engine. The engine owns every file object and its sub-objects inside wasm
// linear memory and frees them eagerly; the Go side owns nothing native,
// marshals every value by copy, and invalidates its wrapper objects before
// any native free so that garbage-collection timing never touches guest
// memory.
//
// # Architecture Overview
//
// The library is organized into packages with distinct responsibilities:
//
//	tagbridge/        Root package with the Memory, Allocator and Native interfaces
//	├── tagfile/      High-level API: File handles, Tag and AudioProperties wrappers
//	├── boundary/     Value marshalling between Go and linear memory
//	├── lifecycle/    Wrapper registry keyed by native identity
//	├── engine/       wazero-backed Native implementation
//	└── errors/       Structured error types
//
// # Quick Start
//
// Load the engine once, then open files through it:
//
//	eng, err := engine.New(ctx, wasmBytes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close(ctx)
//
//	title, err := tagfile.With(ctx, eng, "song.flac", func(f *tagfile.File) (string, error) {
//	    if f.IsNull() {
//	        return "", fmt.Errorf("unrecognized file")
//	    }
//	    tag, err := f.Tag(ctx)
//	    if err != nil {
//	        return "", err
//	    }
//	    return tag.Title(ctx)
//	})
//
// # Memory Model
//
// The engine's allocator is the sole owner of file objects, tags and audio
// properties. Closing a File frees that whole subtree synchronously. Tag and
// AudioProperties values are non-owning wrappers: closing their File
// invalidates them on the spot, and any later accessor returns an
// invalid-state error instead of reading freed guest memory. The package
// installs no finalizers; release is always explicit, via File.Close or the
// scoped tagfile.With helper.
//
// # Thread Safety
//
// Engine and File are not safe for concurrent use. Share them across
// goroutines only behind external synchronization.
package tagbridge
