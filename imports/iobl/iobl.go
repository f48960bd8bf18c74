// Package iobl contains Go-defined functions imported by guests that perform
// buffer-backed stdio through an iobl.Host, under the module name "env".
//
// # Imported functions
//
//   - "fetch_buffer" - copies bytes of a host buffer into guest memory.
//   - "flush_buffer" - writes bytes of guest memory into a host buffer.
//   - "seek_end" - returns the length of a host buffer.
//   - "print_int", "print_string" - diagnostic output to the host logger.
//
// Guests compiled against the original C header import these with a "js_"
// prefix, e.g. "js_fetch_buffer". Use FunctionExporter.WithNamePrefix for
// those.
//
// Failures reading or writing a buffer, such as an unknown descriptor, trap
// the guest: the calling api.Function returns an error wrapping the iobl
// error.
package iobl

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wasmio/iobl"
)

const (
	i32, i64 = api.ValueTypeI32, api.ValueTypeI64
)

// ModuleName is the module name guests import these functions from.
const ModuleName = "env"

// Names of the exported functions, before any prefix.
const (
	PrintIntName    = "print_int"
	PrintStringName = "print_string"
	FetchBufferName = "fetch_buffer"
	FlushBufferName = "flush_buffer"
	SeekEndName     = "seek_end"
)

// LegacyPrefix is the name prefix used by the original C header.
const LegacyPrefix = "js_"

// MustInstantiate calls Instantiate or panics on error.
//
// This is a simpler function for those who know the module "env" is not
// already instantiated, and don't need to unload it.
func MustInstantiate(ctx context.Context, r wazero.Runtime, h *iobl.Host) {
	if _, err := Instantiate(ctx, r, h); err != nil {
		panic(err)
	}
}

// Instantiate instantiates the "env" module backed by h into the runtime.
//
// # Notes
//
//   - Failure cases are documented on wazero.Runtime InstantiateModule.
//   - Closing the wazero.Runtime has the same effect as closing the result.
//   - To add more functions to the "env" module, use FunctionExporter.
func Instantiate(ctx context.Context, r wazero.Runtime, h *iobl.Host) (api.Closer, error) {
	builder := r.NewHostModuleBuilder(ModuleName)
	NewFunctionExporter(h).ExportFunctions(builder)
	return builder.Instantiate(ctx)
}

// FunctionExporter configures the functions in the "env" module.
type FunctionExporter interface {
	// WithNamePrefix prepends prefix to every exported function name, e.g.
	// LegacyPrefix.
	WithNamePrefix(prefix string) FunctionExporter

	// ExportFunctions builds functions to export with a
	// wazero.HostModuleBuilder named "env".
	ExportFunctions(wazero.HostModuleBuilder)
}

// NewFunctionExporter returns a FunctionExporter whose functions resolve
// descriptors against h.
func NewFunctionExporter(h *iobl.Host) FunctionExporter {
	return &functionExporter{host: h}
}

type functionExporter struct {
	host   *iobl.Host
	prefix string
}

// WithNamePrefix implements FunctionExporter.WithNamePrefix
func (e *functionExporter) WithNamePrefix(prefix string) FunctionExporter {
	return &functionExporter{host: e.host, prefix: prefix}
}

// ExportFunctions implements FunctionExporter.ExportFunctions
func (e *functionExporter) ExportFunctions(builder wazero.HostModuleBuilder) {
	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(e.printInt), []api.ValueType{i32}, nil).
		WithParameterNames("value").
		Export(e.prefix + PrintIntName)

	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(e.printString), []api.ValueType{i32, i32}, nil).
		WithParameterNames("address", "length").
		Export(e.prefix + PrintStringName)

	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(e.fetchBuffer), []api.ValueType{i32, i32, i32, i64}, []api.ValueType{i32}).
		WithParameterNames("descriptor", "address", "length", "position").
		WithResultNames("bytes_copied").
		Export(e.prefix + FetchBufferName)

	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(e.flushBuffer), []api.ValueType{i32, i32, i32, i64}, nil).
		WithParameterNames("descriptor", "address", "length", "position").
		Export(e.prefix + FlushBufferName)

	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(e.seekEnd), []api.ValueType{i32}, []api.ValueType{i64}).
		WithParameterNames("descriptor").
		WithResultNames("size").
		Export(e.prefix + SeekEndName)
}

// printInt logs a signed integer.
//
// Here's the import in a user's module that ends up using this, in
// WebAssembly 1.0 (MVP) Text Format:
//
//	(import "env" "print_int" (func $print_int (param i32)))
func (e *functionExporter) printInt(_ context.Context, mod api.Module, stack []uint64) {
	e.host.Logger().
		WithField("guest", mod.Name()).
		Info(api.DecodeI32(stack[0]))
}

// printString logs length bytes of guest memory at address as UTF-8 text.
// Nothing is logged, and the guest is not trapped, if the range is invalid.
//
//	(import "env" "print_string" (func $print_string (param i32 i32)))
func (e *functionExporter) printString(_ context.Context, mod api.Module, stack []uint64) {
	address, length := api.DecodeU32(stack[0]), api.DecodeU32(stack[1])

	logger := e.host.Logger().WithField("guest", mod.Name())
	mem := mod.Memory()
	if mem == nil {
		logger.Warn("print_string without guest memory")
		return
	}
	buf, ok := mem.Read(address, length)
	if !ok {
		logger.WithField("address", address).
			WithField("length", length).
			Warn("print_string out of range")
		return
	}
	logger.Info(string(buf))
}

// fetchBuffer implements iobl.Host Fetch.
//
//	(import "env" "fetch_buffer"
//	  (func $fetch_buffer (param $descriptor i32) (param $address i32)
//	    (param $length i32) (param $position i64) (result i32)))
func (e *functionExporter) fetchBuffer(_ context.Context, mod api.Module, stack []uint64) {
	d := api.DecodeU32(stack[0])
	address := api.DecodeU32(stack[1])
	length := api.DecodeU32(stack[2])
	position := stack[3]

	n, err := e.host.Fetch(mod.Memory(), d, address, length, position)
	if err != nil {
		panic(err)
	}
	stack[0] = api.EncodeU32(n)
}

// flushBuffer implements iobl.Host Flush. A negative position appends.
//
//	(import "env" "flush_buffer"
//	  (func $flush_buffer (param $descriptor i32) (param $address i32)
//	    (param $length i32) (param $position i64)))
func (e *functionExporter) flushBuffer(_ context.Context, mod api.Module, stack []uint64) {
	d := api.DecodeU32(stack[0])
	address := api.DecodeU32(stack[1])
	length := api.DecodeU32(stack[2])
	position := int64(stack[3])

	if err := e.host.Flush(mod.Memory(), d, address, length, position); err != nil {
		panic(err)
	}
}

// seekEnd implements iobl.Host Size: zero for an unknown descriptor.
//
//	(import "env" "seek_end" (func $seek_end (param $descriptor i32) (result i64)))
func (e *functionExporter) seekEnd(_ context.Context, _ api.Module, stack []uint64) {
	stack[0] = e.host.Size(api.DecodeU32(stack[0]))
}
