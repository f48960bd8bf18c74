// Package iobl lets a WebAssembly guest perform stdio-style file I/O against
// byte buffers owned by the host.
//
// The guest never touches a buffer. The host registers a buffer and gets a
// descriptor, opens the descriptor through the guest (which returns an opaque
// handle for its own stream state) and passes the handle to guest code. The
// guest reads and writes by calling back into the host with the descriptor,
// see package imports/iobl for the functions it imports.
//
//	h := iobl.NewHost()
//	d := h.RegisterBuffer([]byte("abcd"))
//	handle, err := h.OpenBuffer(ctx, d, "r", guest)
//	// ... call guest functions with handle ...
//	_ = h.CloseBuffer(ctx, handle, guest)
//	h.UnregisterBuffer(d)
//
// A Host holds all state for one hosting context and is not safe for
// concurrent use. Use one Host per guest instance.
package iobl

import (
	"context"

	"github.com/google/uuid"
	"github.com/lthibault/log"
	"github.com/pkg/errors"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/multierr"

	"github.com/wasmio/iobl/internal/buffer"
	"github.com/wasmio/iobl/internal/descriptor"
	"github.com/wasmio/iobl/internal/handle"
)

// MaxBufferSize is the hard ceiling on the length of any buffer, whatever
// HostConfig.WithMaxBufferSize says. Writes past it fail with
// ErrBufferTooLarge before anything is allocated.
const MaxBufferSize uint64 = 1 << 32

// Host owns the buffers of one hosting context, the descriptors naming them
// and the guest handles opened on them.
type Host struct {
	id      uuid.UUID
	log     log.Logger
	metrics Metrics

	maxBufferSize    uint64
	strictUnregister bool

	buffers descriptor.Table[uint32, *buffer.Buffer]
	handles *handle.Table
}

// NewHost returns a Host configured with NewHostConfig.
func NewHost() *Host {
	return NewHostWithConfig(NewHostConfig())
}

// NewHostWithConfig returns an empty Host configured by config.
func NewHostWithConfig(config HostConfig) *Host {
	c := config.(*hostConfig)

	handles, err := handle.New()
	if err != nil {
		panic(err) // the schema is static
	}

	id := uuid.New()
	return &Host{
		id:               id,
		log:              c.logger.WithField("host", id.String()),
		metrics:          c.metrics,
		maxBufferSize:    c.maxBufferSize,
		strictUnregister: c.strictUnregister,
		handles:          handles,
	}
}

// ID identifies this host in logs.
func (h *Host) ID() uuid.UUID {
	return h.id
}

// Logger returns the logger guest diagnostic output is written to.
func (h *Host) Logger() log.Logger {
	return h.log
}

// Len returns the number of registered buffers.
func (h *Host) Len() int {
	return h.buffers.Len()
}

// RegisterBuffer stores a copy of b and returns the lowest descriptor not in
// use.
func (h *Host) RegisterBuffer(b []byte) uint32 {
	d := h.buffers.Insert(buffer.New(b))

	h.metrics.Incr("buffer.register")
	h.log.With(log.F{
		"descriptor": d,
		"size":       len(b),
	}).Debug("registered buffer")
	return d
}

// UnregisterBuffer removes descriptor d. Unknown descriptors are ignored.
//
// Handles opened on d are not closed. Unless HostConfig.WithStrictUnregister
// is set they are left dangling, so close them first.
func (h *Host) UnregisterBuffer(d uint32) error {
	if _, ok := h.buffers.Lookup(d); !ok {
		return nil
	}
	if n := h.handles.Count(d); n > 0 {
		if h.strictUnregister {
			return opError("unregister", d, ErrDescriptorInUse)
		}
		h.log.With(log.F{
			"descriptor": d,
			"handles":    n,
		}).Warn("unregistered buffer with open handles")
	}

	h.buffers.Delete(d)
	h.metrics.Incr("buffer.unregister")
	h.log.WithField("descriptor", d).Debug("unregistered buffer")
	return nil
}

// GetBuffer returns a copy of the content behind descriptor d.
func (h *Host) GetBuffer(d uint32) ([]byte, error) {
	b, ok := h.buffers.Lookup(d)
	if !ok {
		return nil, opError("get", d, ErrUnknownDescriptor)
	}
	return b.Bytes(), nil
}

// OpenBuffer opens descriptor d in the given fopen mode through g and returns
// the handle g allocated.
//
// Modes "w" and "w+" discard the buffer's content before g is called.
func (h *Host) OpenBuffer(ctx context.Context, d uint32, mode string, g Guest) (uint32, error) {
	m, err := ParseMode(mode)
	if err != nil {
		return 0, opError("open", d, err)
	}
	b, ok := h.buffers.Lookup(d)
	if !ok {
		return 0, opError("open", d, ErrUnknownDescriptor)
	}
	if m.Truncates() {
		b.Truncate()
	}

	handle, err := g.Open(ctx, d, uint32(m))
	if err != nil {
		return 0, opError("open", d, err)
	}
	if handle == 0 {
		return 0, opError("open", d, ErrAllocationFailed)
	}

	if err = h.handles.Insert(handleEntry(handle, d, m, g)); err != nil {
		return 0, opError("open", d, errors.Wrap(err, "record handle"))
	}

	h.metrics.Incr("handle.open")
	h.log.With(log.F{
		"descriptor": d,
		"handle":     handle,
		"mode":       m,
	}).Debug("opened buffer")
	return handle, nil
}

// CloseBuffer forgets handle and asks g to release it. Closing a handle that
// is not open, including one already closed, does nothing and never calls g.
func (h *Host) CloseBuffer(ctx context.Context, handle uint32, g Guest) error {
	e, ok := h.handles.Remove(handle)
	if !ok {
		return nil
	}

	h.metrics.Decr("handle.open")
	h.metrics.Incr("handle.close")
	h.log.With(log.F{
		"descriptor": e.Descriptor,
		"handle":     handle,
	}).Debug("closing buffer")

	if err := g.Close(ctx, handle); err != nil {
		return opError("close", e.Descriptor, err)
	}
	return nil
}

// Resolve returns the descriptor an open handle was opened on.
func (h *Host) Resolve(handle uint32) (uint32, bool) {
	e, ok := h.handles.Lookup(handle)
	return e.Descriptor, ok
}

// Handles returns the number of open handles on descriptor d.
func (h *Host) Handles(d uint32) int {
	return h.handles.Count(d)
}

// Fetch copies up to length bytes at position of descriptor d into guest
// memory at address and returns the number of bytes copied. Fewer bytes than
// requested, including none, means the read reached the end of the buffer.
func (h *Host) Fetch(mem api.Memory, d, address, length uint32, position uint64) (uint32, error) {
	b, ok := h.buffers.Lookup(d)
	if !ok {
		return 0, opError("fetch", d, ErrUnknownDescriptor)
	}
	if !inRange(mem, address, length) {
		return 0, opError("fetch", d, ErrMemoryOutOfRange)
	}

	data := b.Fetch(position, length)
	if len(data) > 0 && !mem.Write(address, data) {
		return 0, opError("fetch", d, ErrMemoryOutOfRange)
	}

	h.metrics.Count("fetch.bytes", len(data))
	return uint32(len(data)), nil
}

// Flush writes length bytes of guest memory at address into descriptor d at
// position. A negative position appends.
func (h *Host) Flush(mem api.Memory, d, address, length uint32, position int64) error {
	b, ok := h.buffers.Lookup(d)
	if !ok {
		return opError("flush", d, ErrUnknownDescriptor)
	}
	if b.SizeAfter(length, position) > h.limit() {
		return opError("flush", d, ErrBufferTooLarge)
	}

	if !inRange(mem, address, length) {
		return opError("flush", d, ErrMemoryOutOfRange)
	}
	chunk, ok := mem.Read(address, length)
	if !ok {
		return opError("flush", d, ErrMemoryOutOfRange)
	}

	// chunk is a view of guest memory; Flush copies it.
	b.Flush(chunk, position)

	h.metrics.Count("flush.bytes", len(chunk))
	return nil
}

// Size returns the length of descriptor d's buffer, or zero if d is not
// registered.
func (h *Host) Size(d uint32) uint64 {
	if b, ok := h.buffers.Lookup(d); ok {
		return b.Len()
	}
	return 0
}

// Close releases every handle still open through the guest that opened it,
// then drops all buffers. The Host is empty and reusable afterwards.
func (h *Host) Close(ctx context.Context) (err error) {
	for _, e := range h.handles.All() {
		if cerr := e.Guest.Close(ctx, e.Handle); cerr != nil {
			err = multierr.Append(err, opError("close", e.Descriptor, cerr))
		}
	}
	err = multierr.Append(err, h.handles.Reset())

	h.buffers.Range(func(d uint32, b *buffer.Buffer) bool {
		h.log.With(log.F{
			"descriptor": d,
			"size":       b.Len(),
		}).Debug("dropped buffer")
		return true
	})
	h.buffers.Reset()
	return err
}

// limit returns the configured maximum buffer size, capped at MaxBufferSize.
func (h *Host) limit() uint64 {
	if h.maxBufferSize == 0 || h.maxBufferSize > MaxBufferSize {
		return MaxBufferSize
	}
	return h.maxBufferSize
}

func handleEntry(h, d uint32, m Mode, g Guest) handle.Entry {
	return handle.Entry{Handle: h, Descriptor: d, Mode: uint32(m), Guest: g}
}

func inRange(mem api.Memory, address, length uint32) bool {
	return mem != nil && uint64(address)+uint64(length) <= uint64(mem.Size())
}
