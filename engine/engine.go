package engine

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"

	tagbridge "github.com/soundfold/tagbridge"
	"github.com/soundfold/tagbridge/errors"
)

// Engine export names. The metadata engine module must export all of them;
// a missing export fails loading, not the first call.
const (
	expAlloc          = "tb_alloc"
	expFree           = "tb_free"
	expFileNew        = "tb_file_new"
	expFileFree       = "tb_file_free"
	expFileSave       = "tb_file_save"
	expFileTag        = "tb_file_tag"
	expFileAudioProps = "tb_file_audioproperties"
	expTagString      = "tb_tag_string"
	expTagSetString   = "tb_tag_set_string"
	expTagUint        = "tb_tag_uint"
	expTagSetUint     = "tb_tag_set_uint"
	expTagProperty    = "tb_tag_property"
	expTagSetProperty = "tb_tag_set_property"
	expTagPicture     = "tb_tag_picture"
	expTagSetPicture  = "tb_tag_set_picture"
	expPropsInfo      = "tb_props_info"
)

// optional initializer for reactor-style modules
const expInitialize = "_initialize"

type exports struct {
	fileNew        api.Function
	fileFree       api.Function
	fileSave       api.Function
	fileTag        api.Function
	fileAudioProps api.Function
	tagString      api.Function
	tagSetString   api.Function
	tagUint        api.Function
	tagSetUint     api.Function
	tagProperty    api.Function
	tagSetProperty api.Function
	tagPicture     api.Function
	tagSetPicture  api.Function
	propsInfo      api.Function
}

// Engine hosts the wasm-compiled metadata engine and implements
// tagbridge.Native over its exports. One Engine serves one goroutine at a
// time; share it across goroutines only behind external synchronization.
type Engine struct {
	runtime wazero.Runtime
	module  api.Module
	mem     *guestMemory
	alloc   *guestAllocator
	fns     exports
	logger  *zap.Logger
	closed  bool
}

type config struct {
	logger     *zap.Logger
	mounts     [][2]string
	limitPages uint32
}

// Option configures engine construction.
type Option func(*config)

// WithLogger sets the engine's logger. Defaults to the package logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithDirMount preopens hostDir for the guest at guestPath. Without any
// mount the guest sees the whole host filesystem rooted at /.
func WithDirMount(hostDir, guestPath string) Option {
	return func(c *config) { c.mounts = append(c.mounts, [2]string{hostDir, guestPath}) }
}

// WithMemoryLimitPages caps guest memory in 64KB pages. 0 means the wazero
// default (4GB).
func WithMemoryLimitPages(pages uint32) Option {
	return func(c *config) { c.limitPages = pages }
}

// New compiles and instantiates the metadata engine from wasmBytes. The
// guest gets WASI preview1 so it can open files through its preopens.
func New(ctx context.Context, wasmBytes []byte, opts ...Option) (*Engine, error) {
	cfg := config{logger: Logger()}
	for _, opt := range opts {
		opt(&cfg)
	}

	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg.limitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.limitPages)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)

	wasi_snapshot_preview1.MustInstantiate(ctx, rt)

	fsCfg := wazero.NewFSConfig()
	if len(cfg.mounts) == 0 {
		fsCfg = fsCfg.WithDirMount("/", "/")
	}
	for _, m := range cfg.mounts {
		fsCfg = fsCfg.WithDirMount(m[0], m[1])
	}

	modCfg := wazero.NewModuleConfig().
		WithName("tagengine").
		WithFSConfig(fsCfg).
		WithStartFunctions() // reactor module; _initialize is called below

	mod, err := rt.InstantiateWithConfig(ctx, wasmBytes, modCfg)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, errors.Instantiation(err)
	}

	e := &Engine{
		runtime: rt,
		module:  mod,
		logger:  cfg.logger,
	}

	if err := e.bind(ctx); err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}

	e.logger.Debug("engine loaded",
		zap.String("module", mod.Name()),
		zap.Uint32("memory_pages", mod.Memory().Size()/65536))
	return e, nil
}

// bind resolves every required export once at load time.
func (e *Engine) bind(ctx context.Context) error {
	mem := e.module.Memory()
	if mem == nil {
		return errors.MissingExport("memory")
	}
	e.mem = &guestMemory{mem: mem}

	allocFn := e.module.ExportedFunction(expAlloc)
	freeFn := e.module.ExportedFunction(expFree)
	if allocFn == nil {
		return errors.MissingExport(expAlloc)
	}
	if freeFn == nil {
		return errors.MissingExport(expFree)
	}
	e.alloc = &guestAllocator{alloc: allocFn, free: freeFn, logger: e.logger}

	required := []struct {
		name string
		dst  *api.Function
	}{
		{expFileNew, &e.fns.fileNew},
		{expFileFree, &e.fns.fileFree},
		{expFileSave, &e.fns.fileSave},
		{expFileTag, &e.fns.fileTag},
		{expFileAudioProps, &e.fns.fileAudioProps},
		{expTagString, &e.fns.tagString},
		{expTagSetString, &e.fns.tagSetString},
		{expTagUint, &e.fns.tagUint},
		{expTagSetUint, &e.fns.tagSetUint},
		{expTagProperty, &e.fns.tagProperty},
		{expTagSetProperty, &e.fns.tagSetProperty},
		{expTagPicture, &e.fns.tagPicture},
		{expTagSetPicture, &e.fns.tagSetPicture},
		{expPropsInfo, &e.fns.propsInfo},
	}
	for _, r := range required {
		fn := e.module.ExportedFunction(r.name)
		if fn == nil {
			return errors.MissingExport(r.name)
		}
		*r.dst = fn
	}

	if init := e.module.ExportedFunction(expInitialize); init != nil {
		if _, err := init.Call(ctx); err != nil {
			return errors.Instantiation(err)
		}
	}
	return nil
}

// Close releases the wazero runtime and everything instantiated in it.
// Idempotent.
func (e *Engine) Close(ctx context.Context) error {
	if e.closed {
		return nil
	}
	e.closed = true
	return e.runtime.Close(ctx)
}

// Memory implements tagbridge.Native.
func (e *Engine) Memory() tagbridge.Memory {
	return e.mem
}

// Allocator implements tagbridge.Native.
func (e *Engine) Allocator() tagbridge.Allocator {
	return e.alloc
}

func (e *Engine) call(ctx context.Context, name string, fn api.Function, params ...uint64) ([]uint64, error) {
	results, err := fn.Call(ctx, params...)
	if err != nil {
		e.logger.Debug("engine call failed", zap.String("fn", name), zap.Error(err))
		return nil, errors.Wrap(errors.PhaseRuntime, errors.KindIO, err, "call "+name)
	}
	return results, nil
}

// NewFile implements tagbridge.Native. A 0 result is the null-file
// condition, not an error.
func (e *Engine) NewFile(ctx context.Context, path uint32, readProps bool, style tagbridge.ReadStyle) (uint32, error) {
	var props uint64
	if readProps {
		props = 1
	}
	res, err := e.call(ctx, expFileNew, e.fns.fileNew, uint64(path), props, uint64(style))
	if err != nil {
		return 0, err
	}
	return uint32(res[0]), nil
}

// FreeFile implements tagbridge.Native.
func (e *Engine) FreeFile(ctx context.Context, file uint32) error {
	_, err := e.call(ctx, expFileFree, e.fns.fileFree, uint64(file))
	return err
}

// SaveFile implements tagbridge.Native.
func (e *Engine) SaveFile(ctx context.Context, file uint32) (bool, error) {
	res, err := e.call(ctx, expFileSave, e.fns.fileSave, uint64(file))
	if err != nil {
		return false, err
	}
	return uint32(res[0]) != 0, nil
}

// FileTag implements tagbridge.Native.
func (e *Engine) FileTag(ctx context.Context, file uint32) (uint32, error) {
	res, err := e.call(ctx, expFileTag, e.fns.fileTag, uint64(file))
	if err != nil {
		return 0, err
	}
	return uint32(res[0]), nil
}

// FileAudioProperties implements tagbridge.Native.
func (e *Engine) FileAudioProperties(ctx context.Context, file uint32) (uint32, error) {
	res, err := e.call(ctx, expFileAudioProps, e.fns.fileAudioProps, uint64(file))
	if err != nil {
		return 0, err
	}
	return uint32(res[0]), nil
}

// TagString implements tagbridge.Native. The export returns a pointer to an
// engine-owned (ptr u32, len u32) pair, valid until the next call.
func (e *Engine) TagString(ctx context.Context, tag uint32, field tagbridge.TagField) (uint32, uint32, error) {
	res, err := e.call(ctx, expTagString, e.fns.tagString, uint64(tag), uint64(field))
	if err != nil {
		return 0, 0, err
	}
	return e.readPair(uint32(res[0]))
}

// SetTagString implements tagbridge.Native.
func (e *Engine) SetTagString(ctx context.Context, tag uint32, field tagbridge.TagField, ptr, length uint32) error {
	_, err := e.call(ctx, expTagSetString, e.fns.tagSetString,
		uint64(tag), uint64(field), uint64(ptr), uint64(length))
	return err
}

// TagUint implements tagbridge.Native.
func (e *Engine) TagUint(ctx context.Context, tag uint32, field tagbridge.TagField) (uint32, error) {
	res, err := e.call(ctx, expTagUint, e.fns.tagUint, uint64(tag), uint64(field))
	if err != nil {
		return 0, err
	}
	return uint32(res[0]), nil
}

// SetTagUint implements tagbridge.Native.
func (e *Engine) SetTagUint(ctx context.Context, tag uint32, field tagbridge.TagField, value uint32) error {
	_, err := e.call(ctx, expTagSetUint, e.fns.tagSetUint,
		uint64(tag), uint64(field), uint64(value))
	return err
}

// TagProperty implements tagbridge.Native.
func (e *Engine) TagProperty(ctx context.Context, tag, keyPtr, keyLen uint32) (uint32, error) {
	res, err := e.call(ctx, expTagProperty, e.fns.tagProperty,
		uint64(tag), uint64(keyPtr), uint64(keyLen))
	if err != nil {
		return 0, err
	}
	return uint32(res[0]), nil
}

// SetTagProperty implements tagbridge.Native.
func (e *Engine) SetTagProperty(ctx context.Context, tag, keyPtr, keyLen, list uint32) error {
	_, err := e.call(ctx, expTagSetProperty, e.fns.tagSetProperty,
		uint64(tag), uint64(keyPtr), uint64(keyLen), uint64(list))
	return err
}

// TagPicture implements tagbridge.Native.
func (e *Engine) TagPicture(ctx context.Context, tag uint32) (uint32, uint32, error) {
	res, err := e.call(ctx, expTagPicture, e.fns.tagPicture, uint64(tag))
	if err != nil {
		return 0, 0, err
	}
	return e.readPair(uint32(res[0]))
}

// SetTagPicture implements tagbridge.Native.
func (e *Engine) SetTagPicture(ctx context.Context, tag uint32, ptr, length uint32) error {
	_, err := e.call(ctx, expTagSetPicture, e.fns.tagSetPicture,
		uint64(tag), uint64(ptr), uint64(length))
	return err
}

// PropsInfo implements tagbridge.Native.
func (e *Engine) PropsInfo(ctx context.Context, props uint32) (uint32, error) {
	res, err := e.call(ctx, expPropsInfo, e.fns.propsInfo, uint64(props))
	if err != nil {
		return 0, err
	}
	return uint32(res[0]), nil
}

// readPair dereferences an engine-owned (ptr, len) pair. Pair pointer 0
// means "no value" and lifts to (0, 0).
func (e *Engine) readPair(pair uint32) (uint32, uint32, error) {
	if pair == 0 {
		return 0, 0, nil
	}
	ptr, err := e.mem.ReadU32(pair)
	if err != nil {
		return 0, 0, err
	}
	length, err := e.mem.ReadU32(pair + 4)
	if err != nil {
		return 0, 0, err
	}
	return ptr, length, nil
}

var _ tagbridge.Native = (*Engine)(nil)
