package run

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lthibault/log"
	"github.com/pkg/errors"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"github.com/wasmio/iobl"
	env "github.com/wasmio/iobl/imports/iobl"
	"github.com/wasmio/iobl/internal/logutil"
	"github.com/wasmio/iobl/internal/statsdutil"
)

// Command returns the `run` command.
func Command() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "run a guest function against files loaded into buffers",
		ArgsUsage: "<path to wasm file>",
		Flags:     Flags(),
		Action:    run,
	}
}

// Flags for the `run` command
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "buffer",
			Aliases: []string{"b"},
			Usage:   "load file into a buffer opened as `path[:mode]`, in call order",
			EnvVars: []string{"IOBL_BUFFER"},
		},
		&cli.PathFlag{
			Name:    "manifest",
			Aliases: []string{"m"},
			Usage:   "read call and buffers from JSON `file`",
			EnvVars: []string{"IOBL_MANIFEST"},
		},
		&cli.StringFlag{
			Name:    "call",
			Usage:   "guest `function` to call with the opened handles",
			Value:   "main",
			EnvVars: []string{"IOBL_CALL"},
		},
		&cli.PathFlag{
			Name:        "out",
			Aliases:     []string{"o"},
			Usage:       "write writable buffers to `dir` instead of their source files",
			DefaultText: "in place",
			EnvVars:     []string{"IOBL_OUT"},
		},
		&cli.StringFlag{
			Name:  "open",
			Usage: "guest `function` allocating a handle",
			Value: "bopen",
		},
		&cli.StringFlag{
			Name:  "close",
			Usage: "guest `function` releasing a handle",
			Value: "bclose",
		},
		&cli.StringFlag{
			Name:    "import-prefix",
			Usage:   "prefix for imported function names, e.g. js_",
			EnvVars: []string{"IOBL_IMPORT_PREFIX"},
		},
		&cli.Uint64Flag{
			Name:        "max-buffer-size",
			Usage:       "fail writes growing a buffer past `bytes`",
			DefaultText: "unlimited",
			EnvVars:     []string{"IOBL_MAX_BUFFER_SIZE"},
		},
		&cli.BoolFlag{
			Name:  "interp",
			Usage: "force interpreter",
		},
		&cli.PathFlag{
			Name:    "cachedir",
			Usage:   "writeable `dir` for native code compiled from wasm",
			EnvVars: []string{"IOBL_CACHEDIR"},
		},
	}
}

func run(c *cli.Context) (err error) {
	if c.NArg() < 1 {
		return errors.New("missing path to wasm file")
	}
	wasmPath := c.Args().First()

	call, specs, err := plan(c)
	if err != nil {
		return err
	}

	wasm, err := os.ReadFile(wasmPath)
	if err != nil {
		return errors.Wrap(err, "read wasm binary")
	}

	logger := logutil.ForGuest(c, wasmPath)
	metrics := statsdutil.New(c, logger)
	if closer, ok := metrics.(interface{ Close() }); ok {
		defer closer.Close()
	}

	h := iobl.NewHostWithConfig(iobl.NewHostConfig().
		WithLogger(logger).
		WithMetrics(metrics).
		WithMaxBufferSize(c.Uint64("max-buffer-size")).
		WithStrictUnregister(true))

	ctx := c.Context
	rtc, err := runtimeConfig(c)
	if err != nil {
		return err
	}
	r := wazero.NewRuntimeWithConfig(ctx, rtc)
	defer r.Close(ctx)

	code, err := r.CompileModule(ctx, wasm)
	if err != nil {
		return errors.Wrap(err, "compile wasm binary")
	}

	mod, err := instantiate(ctx, c, r, code, h)
	if err != nil {
		return err
	}

	g, err := iobl.NewGuestWithConfig(mod, iobl.NewGuestConfig().
		WithOpenFunction(c.String("open")).
		WithCloseFunction(c.String("close")))
	if err != nil {
		return err
	}

	// releases whatever is still open if we bail out early
	defer func() {
		err = multierr.Append(err, h.Close(ctx))
	}()

	descriptors := make([]uint32, len(specs))
	handles := make([]uint32, len(specs))
	for i, spec := range specs {
		if descriptors[i], handles[i], err = open(ctx, h, g, spec); err != nil {
			return err
		}
	}

	results, err := invoke(ctx, mod, call, handles)
	if err != nil {
		return err
	}
	for _, v := range results {
		fmt.Fprintln(c.App.Writer, v)
	}

	for i, spec := range specs {
		if err = h.CloseBuffer(ctx, handles[i], g); err != nil {
			return err
		}
		if err = save(h, descriptors[i], spec, c.Path("out"), logger); err != nil {
			return err
		}
		if err = h.UnregisterBuffer(descriptors[i]); err != nil {
			return err
		}
	}

	return nil
}

// plan merges the manifest with --call and --buffer. Buffers from the
// manifest come first.
func plan(c *cli.Context) (call string, specs []bufferSpec, err error) {
	call = c.String("call")

	if path := c.Path("manifest"); path != "" {
		m, err := loadManifest(path)
		if err != nil {
			return "", nil, err
		}
		if m.Call != "" && !c.IsSet("call") {
			call = m.Call
		}
		specs = append(specs, m.Buffers...)
	}

	for _, s := range c.StringSlice("buffer") {
		spec, err := parseBuffer(s)
		if err != nil {
			return "", nil, err
		}
		specs = append(specs, spec)
	}

	return call, specs, nil
}

func runtimeConfig(c *cli.Context) (wazero.RuntimeConfig, error) {
	var rtc wazero.RuntimeConfig
	if c.Bool("interp") {
		rtc = wazero.NewRuntimeConfigInterpreter()
	} else {
		rtc = wazero.NewRuntimeConfig()
	}

	if dir := c.Path("cachedir"); dir != "" {
		cache, err := wazero.NewCompilationCacheWithDir(dir)
		if err != nil {
			return nil, errors.Wrap(err, "invalid cachedir")
		}
		rtc = rtc.WithCompilationCache(cache)
	}
	return rtc, nil
}

// instantiate links the buffer functions, and WASI if the guest imports it,
// then instantiates the guest.
func instantiate(ctx context.Context, c *cli.Context, r wazero.Runtime, code wazero.CompiledModule, h *iobl.Host) (api.Module, error) {
	if needsWASI(code.ImportedFunctions()) {
		if _, err := wasi_snapshot_preview1.Instantiate(ctx, r); err != nil {
			return nil, errors.Wrap(err, "instantiate wasi")
		}
	}

	builder := r.NewHostModuleBuilder(env.ModuleName)
	env.NewFunctionExporter(h).
		WithNamePrefix(c.String("import-prefix")).
		ExportFunctions(builder)
	if _, err := builder.Instantiate(ctx); err != nil {
		return nil, errors.Wrapf(err, "instantiate %s", env.ModuleName)
	}

	name := logutil.GuestName(c.Args().First())
	mod, err := r.InstantiateModule(ctx, code, wazero.NewModuleConfig().
		WithName(name).
		WithStdin(c.App.Reader).
		WithStdout(c.App.Writer).
		WithStderr(c.App.ErrWriter))
	if err != nil {
		return nil, errors.Wrap(err, "instantiate wasm binary")
	}
	return mod, nil
}

func needsWASI(imports []api.FunctionDefinition) bool {
	for _, f := range imports {
		if moduleName, _, _ := f.Import(); moduleName == wasi_snapshot_preview1.ModuleName {
			return true
		}
	}
	return false
}

// open loads spec into a new buffer and opens it through g. Files opened
// for writing or appending may not exist yet.
func open(ctx context.Context, h *iobl.Host, g iobl.Guest, spec bufferSpec) (d, handle uint32, err error) {
	content, err := os.ReadFile(spec.Path)
	if os.IsNotExist(err) && spec.mode() != iobl.ModeRead && spec.mode() != iobl.ModeReadUpdate {
		content, err = nil, nil
	}
	if err != nil {
		return 0, 0, errors.Wrap(err, "load buffer")
	}

	d = h.RegisterBuffer(content)
	if handle, err = h.OpenBuffer(ctx, d, spec.Mode, g); err != nil {
		return 0, 0, errors.Wrap(err, spec.Path)
	}
	return d, handle, nil
}

// invoke calls the exported function name with one handle per parameter
// and formats its results.
func invoke(ctx context.Context, mod api.Module, name string, handles []uint32) ([]string, error) {
	fn := mod.ExportedFunction(name)
	if fn == nil {
		return nil, errors.Errorf("module %q does not export %q", mod.Name(), name)
	}

	def := fn.Definition()
	if n := len(def.ParamTypes()); n != len(handles) {
		return nil, errors.Errorf("%s takes %d parameters, have %d buffers", name, n, len(handles))
	}

	params := make([]uint64, len(handles))
	for i, handle := range handles {
		params[i] = api.EncodeU32(handle)
	}

	results, err := fn.Call(ctx, params...)
	if exitErr, ok := err.(*sys.ExitError); ok {
		if code := exitErr.ExitCode(); code != 0 {
			return nil, cli.Exit("", int(code))
		}
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrapf(err, "call %s", name)
	}

	return formatResults(def.ResultTypes(), results), nil
}

func formatResults(types []api.ValueType, results []uint64) []string {
	out := make([]string, len(results))
	for i, v := range results {
		switch types[i] {
		case api.ValueTypeI32:
			out[i] = fmt.Sprint(api.DecodeI32(v))
		case api.ValueTypeI64:
			out[i] = fmt.Sprint(int64(v))
		case api.ValueTypeF32:
			out[i] = fmt.Sprint(api.DecodeF32(v))
		case api.ValueTypeF64:
			out[i] = fmt.Sprint(api.DecodeF64(v))
		default:
			out[i] = fmt.Sprintf("%#x", v)
		}
	}
	return out
}

// save writes a writable buffer back to its file, or into dir if set.
func save(h *iobl.Host, d uint32, spec bufferSpec, dir string, logger log.Logger) error {
	if !spec.mode().Writable() {
		return nil
	}

	b, err := h.GetBuffer(d)
	if err != nil {
		return err
	}

	path := spec.Path
	if dir != "" {
		if err = os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "create output directory")
		}
		path = filepath.Join(dir, filepath.Base(spec.Path))
	}

	if err = os.WriteFile(path, b, 0o644); err != nil {
		return errors.Wrap(err, "save buffer")
	}

	logger.With(log.F{
		"descriptor": d,
		"path":       path,
		"size":       len(b),
	}).Debug("saved buffer")
	return nil
}
