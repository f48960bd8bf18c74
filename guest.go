//go:generate mockgen -destination=internal/mock/iobl/iobl.go -package=mock_iobl github.com/wasmio/iobl Guest,Metrics

package iobl

import (
	"context"

	"github.com/pkg/errors"
	"github.com/tetratelabs/wazero/api"
)

// Guest is the computation module as seen by the pointer bridge: it turns a
// descriptor into an opaque handle and releases that handle again.
type Guest interface {
	// Open asks the guest to allocate stream state for descriptor d opened
	// with the numeric mode code. A zero handle means allocation failed.
	Open(ctx context.Context, d, code uint32) (handle uint32, err error)

	// Close asks the guest to flush and free the stream state behind handle.
	Close(ctx context.Context, handle uint32) error
}

// ModuleGuest implements Guest by calling functions exported from an
// instantiated module.
type ModuleGuest struct {
	mod         api.Module
	open, close api.Function
	openName    string
	closeName   string
}

// NewGuest binds the default exports "bopen" and "bclose" of mod.
func NewGuest(mod api.Module) (*ModuleGuest, error) {
	return NewGuestWithConfig(mod, NewGuestConfig())
}

// NewGuestWithConfig binds the exports of mod named by config. It fails if
// either function is not exported.
func NewGuestWithConfig(mod api.Module, config GuestConfig) (*ModuleGuest, error) {
	c := config.(*guestConfig)
	g := &ModuleGuest{mod: mod, openName: c.openName, closeName: c.closeName}

	if g.open = mod.ExportedFunction(c.openName); g.open == nil {
		return nil, errors.Errorf("module %q does not export %q", mod.Name(), c.openName)
	}
	if g.close = mod.ExportedFunction(c.closeName); g.close == nil {
		return nil, errors.Errorf("module %q does not export %q", mod.Name(), c.closeName)
	}
	return g, nil
}

// Module returns the module this guest calls into.
func (g *ModuleGuest) Module() api.Module {
	return g.mod
}

// Open implements Guest.Open
func (g *ModuleGuest) Open(ctx context.Context, d, code uint32) (uint32, error) {
	results, err := g.open.Call(ctx, api.EncodeU32(d), api.EncodeU32(code))
	if err != nil {
		return 0, errors.Wrapf(err, "%s(%d, %d)", g.openName, d, code)
	}
	if len(results) == 0 {
		return 0, errors.Errorf("%s returned no handle", g.openName)
	}
	return api.DecodeU32(results[0]), nil
}

// Close implements Guest.Close
func (g *ModuleGuest) Close(ctx context.Context, handle uint32) error {
	if _, err := g.close.Call(ctx, api.EncodeU32(handle)); err != nil {
		return errors.Wrapf(err, "%s(%d)", g.closeName, handle)
	}
	return nil
}
