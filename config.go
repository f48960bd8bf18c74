package iobl

import (
	"github.com/lthibault/log"
)

// HostConfig controls Host behavior, with the default implementation as
// NewHostConfig.
//
// Note: HostConfig is immutable. Each WithXXX function returns a new instance
// including the corresponding change.
type HostConfig interface {
	// WithLogger sets the logger for host events and guest diagnostic output.
	// Defaults to a logger that only emits fatal messages.
	WithLogger(log.Logger) HostConfig

	// WithMetrics sets the sink for host counters. Defaults to discarding
	// them.
	WithMetrics(Metrics) HostConfig

	// WithMaxBufferSize limits the length of any buffer. A write that would
	// exceed it fails with ErrBufferTooLarge and leaves the buffer unchanged.
	// Zero, the default, and values above MaxBufferSize mean MaxBufferSize.
	//
	// Note: A write far beyond the end of a buffer zero-fills the gap, so a
	// single guest call can request an allocation up to the limit.
	WithMaxBufferSize(uint64) HostConfig

	// WithStrictUnregister makes UnregisterBuffer fail with
	// ErrDescriptorInUse while any handle opened on the descriptor is still
	// open. Defaults to false: unregistering leaves such handles dangling
	// and closing them remains the caller's responsibility.
	WithStrictUnregister(bool) HostConfig
}

type hostConfig struct {
	logger           log.Logger
	metrics          Metrics
	maxBufferSize    uint64
	strictUnregister bool
}

// NewHostConfig returns a HostConfig with defaults documented on each method.
func NewHostConfig() HostConfig {
	return &hostConfig{
		logger:  log.New(log.WithLevel(log.FatalLevel)),
		metrics: nopMetrics{},
	}
}

// clone makes a deep copy of this host config.
func (c *hostConfig) clone() *hostConfig {
	ret := *c
	return &ret
}

// WithLogger implements HostConfig.WithLogger
func (c *hostConfig) WithLogger(logger log.Logger) HostConfig {
	if logger == nil {
		logger = log.New(log.WithLevel(log.FatalLevel))
	}
	ret := c.clone()
	ret.logger = logger
	return ret
}

// WithMetrics implements HostConfig.WithMetrics
func (c *hostConfig) WithMetrics(metrics Metrics) HostConfig {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	ret := c.clone()
	ret.metrics = metrics
	return ret
}

// WithMaxBufferSize implements HostConfig.WithMaxBufferSize
func (c *hostConfig) WithMaxBufferSize(size uint64) HostConfig {
	ret := c.clone()
	ret.maxBufferSize = size
	return ret
}

// WithStrictUnregister implements HostConfig.WithStrictUnregister
func (c *hostConfig) WithStrictUnregister(strict bool) HostConfig {
	ret := c.clone()
	ret.strictUnregister = strict
	return ret
}

// GuestConfig names the functions a guest exports for opening and closing
// streams, with the default implementation as NewGuestConfig.
//
// Note: GuestConfig is immutable. Each WithXXX function returns a new
// instance including the corresponding change.
type GuestConfig interface {
	// WithOpenFunction sets the export called with (descriptor, mode) that
	// returns a handle, or zero on failure. Defaults to "bopen".
	WithOpenFunction(name string) GuestConfig

	// WithCloseFunction sets the export called with a handle to release it.
	// Defaults to "bclose".
	WithCloseFunction(name string) GuestConfig
}

type guestConfig struct {
	openName, closeName string
}

// NewGuestConfig returns a GuestConfig with defaults documented on each
// method.
func NewGuestConfig() GuestConfig {
	return &guestConfig{openName: "bopen", closeName: "bclose"}
}

// clone makes a deep copy of this guest config.
func (c *guestConfig) clone() *guestConfig {
	ret := *c
	return &ret
}

// WithOpenFunction implements GuestConfig.WithOpenFunction
func (c *guestConfig) WithOpenFunction(name string) GuestConfig {
	ret := c.clone()
	ret.openName = name
	return ret
}

// WithCloseFunction implements GuestConfig.WithCloseFunction
func (c *guestConfig) WithCloseFunction(name string) GuestConfig {
	ret := c.clone()
	ret.closeName = name
	return ret
}
