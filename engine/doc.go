// Package engine runs the wasm-compiled metadata engine and exposes it as
// tagbridge.Native.
//
// The engine module is a WASI preview1 reactor with a fixed export surface:
// a guest allocator (tb_alloc/tb_free) plus the tb_file_*, tb_tag_* and
// tb_props_* entry points listed in engine.go. All required exports are
// resolved at load time, so a mismatched engine build fails in New, not on
// the first file operation. File IO happens inside the guest through its
// WASI preopens; use WithDirMount to restrict what it can see.
//
//	eng, err := engine.New(ctx, wasmBytes,
//	    engine.WithDirMount("/music", "/music"),
//	    engine.WithMemoryLimitPages(4096), // 256MB
//	)
//	if err != nil {
//	    return err
//	}
//	defer eng.Close(ctx)
//
// Engine methods are synchronous and not safe for concurrent use.
package engine
