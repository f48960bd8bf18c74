package iobl

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		input    string
		expected Mode
	}{
		{input: "r", expected: ModeRead},
		{input: "r+", expected: ModeReadUpdate},
		{input: "w", expected: ModeWrite},
		{input: "w+", expected: ModeWriteUpdate},
		{input: "a", expected: ModeAppend},
		{input: "a+", expected: ModeAppendUpdate},
		{input: "rb", expected: ModeRead},
		{input: "r+b", expected: ModeReadUpdate},
		{input: "rb+", expected: ModeReadUpdate},
		{input: "wb", expected: ModeWrite},
		{input: "ab+", expected: ModeAppendUpdate},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.input, func(t *testing.T) {
			m, err := ParseMode(tc.input)
			require.NoError(t, err)
			require.Equal(t, tc.expected, m)
		})
	}
}

func TestParseMode_Invalid(t *testing.T) {
	for _, input := range []string{"", "x", "b", "rw", "r++", "rbb", "R", "+", "w+x"} {
		in := input
		t.Run(in, func(t *testing.T) {
			_, err := ParseMode(in)
			require.True(t, errors.Is(err, ErrInvalidMode), "%v", err)
		})
	}
}

// TestMode_Codes ensures the numeric codes guests switch on never change.
func TestMode_Codes(t *testing.T) {
	require.Equal(t, uint32(0), uint32(ModeRead))
	require.Equal(t, uint32(1), uint32(ModeReadUpdate))
	require.Equal(t, uint32(2), uint32(ModeWrite))
	require.Equal(t, uint32(3), uint32(ModeWriteUpdate))
	require.Equal(t, uint32(4), uint32(ModeAppend))
	require.Equal(t, uint32(5), uint32(ModeAppendUpdate))
}

func TestMode_String(t *testing.T) {
	require.Equal(t, "w+", ModeWriteUpdate.String())
	require.Equal(t, "Mode(9)", Mode(9).String())
}

func TestMode_Truncates(t *testing.T) {
	for m := ModeRead; m <= ModeAppendUpdate; m++ {
		require.Equal(t, m == ModeWrite || m == ModeWriteUpdate, m.Truncates(), m.String())
	}
}

func TestMode_Writable(t *testing.T) {
	require.False(t, ModeRead.Writable())
	require.True(t, ModeReadUpdate.Writable())
	require.True(t, ModeAppend.Writable())
}
