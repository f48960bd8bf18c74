package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	env "github.com/wasmio/iobl/imports/iobl"
	"github.com/wasmio/iobl/internal/testing/guest"
)

func writeGuest(t *testing.T, dir, prefix string) string {
	path := filepath.Join(dir, "guest.wasm")
	require.NoError(t, os.WriteFile(path, guest.Wasm(prefix), 0o644))
	return path
}

func runMain(t *testing.T, args ...string) (stdOut, stdErr string, err error) {
	t.Helper()

	var o, e bytes.Buffer
	app := newApp()
	app.Writer = &o
	app.ErrWriter = &e

	err = app.Run(append([]string{"iobl", "--logfmt", "none"}, args...))
	return o.String(), e.String(), err
}

func TestRun_Size(t *testing.T) {
	dir := t.TempDir()
	wasmPath := writeGuest(t, dir, "")

	in := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(in, []byte("hello"), 0o644))

	stdOut, _, err := runMain(t, "run", "--call", "size", "--buffer", in, wasmPath)
	require.NoError(t, err)
	require.Equal(t, "5\n", stdOut)
}

func TestRun_WriteInPlace(t *testing.T) {
	dir := t.TempDir()
	wasmPath := writeGuest(t, dir, "")

	out := filepath.Join(dir, "out.bin")
	require.NoError(t, os.WriteFile(out, []byte("x"), 0o644))

	_, _, err := runMain(t, "run", "--call", "touch", "--buffer", out+":a", wasmPath)
	require.NoError(t, err)

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	// "x", then descriptor 0 as the guest's 4-byte record
	require.Equal(t, []byte{'x', 0, 0, 0, 0}, b)
}

func TestRun_OutDir(t *testing.T) {
	dir := t.TempDir()
	wasmPath := writeGuest(t, dir, env.LegacyPrefix)
	outDir := filepath.Join(dir, "results")

	// missing files are fine for write modes
	created := filepath.Join(dir, "new.bin")

	_, _, err := runMain(t, "run",
		"--import-prefix", env.LegacyPrefix,
		"--out", outDir,
		"--call", "touch",
		"--buffer", created+":w",
		wasmPath)
	require.NoError(t, err)

	b, err := os.ReadFile(filepath.Join(outDir, "new.bin"))
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0, 0, 0}, b)

	_, err = os.Stat(created)
	require.True(t, os.IsNotExist(err))
}

func TestRun_Manifest(t *testing.T) {
	dir := t.TempDir()
	wasmPath := writeGuest(t, dir, "")

	in := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(in, []byte("abc"), 0o644))

	manifest, err := json.Marshal(map[string]interface{}{
		"call":    "size",
		"buffers": []map[string]string{{"path": in, "mode": "r"}},
	})
	require.NoError(t, err)
	manifestPath := filepath.Join(dir, "run.json")
	require.NoError(t, os.WriteFile(manifestPath, manifest, 0o644))

	stdOut, _, err := runMain(t, "run", "--manifest", manifestPath, wasmPath)
	require.NoError(t, err)
	require.Equal(t, "3\n", stdOut)

	// reading leaves the file alone
	b, err := os.ReadFile(in)
	require.NoError(t, err)
	require.Equal(t, "abc", string(b))
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	wasmPath := writeGuest(t, dir, "")

	notWasmPath := filepath.Join(dir, "bears.wasm")
	require.NoError(t, os.WriteFile(notWasmPath, []byte("pooh"), 0o644))

	in := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(in, []byte("abc"), 0o644))

	tests := []struct {
		message string
		args    []string
	}{
		{
			message: "missing path to wasm file",
			args:    []string{},
		},
		{
			message: "read wasm binary",
			args:    []string{"non-existent.wasm"},
		},
		{
			message: "compile wasm binary",
			args:    []string{notWasmPath},
		},
		{
			message: `does not export "main"`,
			args:    []string{wasmPath},
		},
		{
			message: "read takes 4 parameters, have 1 buffers",
			args:    []string{"--call", "read", "--buffer", in, wasmPath},
		},
		{
			message: "load buffer",
			args:    []string{"--call", "size", "--buffer", filepath.Join(dir, "missing.txt"), wasmPath},
		},
		{
			message: "instantiate wasm binary",
			args:    []string{"--import-prefix", "nope_", wasmPath},
		},
		{
			message: `does not export "fopen"`,
			args:    []string{"--open", "fopen", wasmPath},
		},
		{
			message: "buffer exceeds maximum size",
			args:    []string{"--max-buffer-size", "2", "--call", "touch", "--buffer", in + ":a", wasmPath},
		},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.message, func(t *testing.T) {
			_, _, err := runMain(t, append([]string{"run"}, tc.args...)...)
			require.ErrorContains(t, err, tc.message)
		})
	}
}

func TestVersion(t *testing.T) {
	stdOut, _, err := runMain(t, "version")
	require.NoError(t, err)
	require.Contains(t, stdOut, "wazero")
}
