package iobl

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Mode is a stdio open mode. Its numeric value is the code passed to the
// guest's open function, so the values must never be renumbered.
type Mode uint32

const (
	// ModeRead is "r": read from the start.
	ModeRead Mode = iota
	// ModeReadUpdate is "r+": read and write from the start.
	ModeReadUpdate
	// ModeWrite is "w": truncate, then write.
	ModeWrite
	// ModeWriteUpdate is "w+": truncate, then read and write.
	ModeWriteUpdate
	// ModeAppend is "a": write at the end.
	ModeAppend
	// ModeAppendUpdate is "a+": read anywhere, write at the end.
	ModeAppendUpdate
)

var modeNames = [...]string{
	ModeRead:         "r",
	ModeReadUpdate:   "r+",
	ModeWrite:        "w",
	ModeWriteUpdate:  "w+",
	ModeAppend:       "a",
	ModeAppendUpdate: "a+",
}

// ParseMode resolves a C fopen mode string. The binary flag 'b' is accepted
// anywhere after the first character and ignored, so "rb", "r+b" and "rb+"
// are all valid.
func ParseMode(s string) (Mode, error) {
	canonical := s
	if len(s) > 1 {
		canonical = s[:1] + strings.Replace(s[1:], "b", "", 1)
	}
	for m, name := range modeNames {
		if name == canonical {
			return Mode(m), nil
		}
	}
	return 0, errors.Wrapf(ErrInvalidMode, "%q", s)
}

// String returns the canonical mode string, e.g. "w+".
func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "Mode(" + strconv.FormatUint(uint64(m), 10) + ")"
}

// Truncates reports whether opening in this mode discards existing content.
func (m Mode) Truncates() bool {
	return m == ModeWrite || m == ModeWriteUpdate
}

// Writable reports whether a stream opened in this mode may write.
func (m Mode) Writable() bool {
	return m != ModeRead
}
