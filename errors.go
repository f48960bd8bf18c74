package iobl

import (
	"fmt"

	"github.com/lthibault/log"
	"github.com/pkg/errors"
)

var (
	// ErrInvalidMode is returned when an open mode is not one of the six
	// stdio modes.
	ErrInvalidMode = errors.New("invalid open mode")

	// ErrUnknownDescriptor is returned when a descriptor is not registered.
	ErrUnknownDescriptor = errors.New("unknown descriptor")

	// ErrAllocationFailed is returned when the guest's open function returns
	// a null handle, usually because it ran out of memory.
	ErrAllocationFailed = errors.New("guest returned a null handle")

	// ErrMemoryOutOfRange is returned when an address range is outside guest
	// memory.
	ErrMemoryOutOfRange = errors.New("out of range of guest memory")

	// ErrBufferTooLarge is returned when a write would grow a buffer past
	// HostConfig.WithMaxBufferSize.
	ErrBufferTooLarge = errors.New("buffer exceeds maximum size")

	// ErrDescriptorInUse is returned by UnregisterBuffer when
	// HostConfig.WithStrictUnregister is set and handles are still open.
	ErrDescriptorInUse = errors.New("descriptor has open handles")
)

// Error records a failed operation and the descriptor it targeted.
//
// Use errors.Is with one of the sentinel errors above to classify it.
type Error struct {
	Op         string
	Descriptor uint32
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s descriptor %d: %v", e.Op, e.Descriptor, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Loggable implements log.Loggable.
func (e *Error) Loggable() map[string]interface{} {
	return log.F{
		"op":         e.Op,
		"descriptor": e.Descriptor,
		"error":      e.Err,
	}
}

func opError(op string, d uint32, err error) error {
	return &Error{Op: op, Descriptor: d, Err: err}
}
