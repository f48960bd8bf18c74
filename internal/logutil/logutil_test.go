package logutil_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/lthibault/log"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/wasmio/iobl/internal/logutil"
)

// run runs an app with the logging flags and returns what fn logged.
func run(t *testing.T, fn func(log.Logger), args ...string) string {
	var buf bytes.Buffer
	app := &cli.App{
		Name:      "test",
		ErrWriter: &buf,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "logfmt", Value: "text"},
			&cli.StringFlag{Name: "loglvl", Value: "info"},
			&cli.BoolFlag{Name: "prettyprint"},
		},
		Action: func(c *cli.Context) error {
			fn(logutil.New(c))
			return nil
		},
	}

	require.NoError(t, app.Run(append([]string{"test"}, args...)))
	return buf.String()
}

func TestWithLevel(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		logged  []string
		dropped []string
	}{
		{
			name:    "default",
			logged:  []string{"info-msg", "warn-msg"},
			dropped: []string{"debug-msg"},
		},
		{
			name:   "debug",
			args:   []string{"--loglvl", "debug"},
			logged: []string{"debug-msg", "info-msg", "warn-msg"},
		},
		{
			name:    "short",
			args:    []string{"--loglvl", "w"},
			logged:  []string{"warn-msg"},
			dropped: []string{"info-msg"},
		},
		{
			name:    "error",
			args:    []string{"--loglvl", "error"},
			logged:  []string{"error-msg"},
			dropped: []string{"info-msg", "warn-msg"},
		},
		{
			name:    "none",
			args:    []string{"--logfmt", "none", "--loglvl", "debug"},
			dropped: []string{"debug-msg", "info-msg", "warn-msg", "error-msg"},
		},
		{
			name:   "unknown level",
			args:   []string{"--loglvl", "verbose"},
			logged: []string{"info-msg"},
		},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			out := run(t, func(l log.Logger) {
				l.Debug("debug-msg")
				l.Info("info-msg")
				l.Warn("warn-msg")
				l.Error("error-msg")
			}, tc.args...)

			for _, s := range tc.logged {
				require.Contains(t, out, s)
			}
			for _, s := range tc.dropped {
				require.NotContains(t, out, s)
			}
		})
	}
}

func TestWithFormat_JSON(t *testing.T) {
	out := run(t, func(l log.Logger) {
		l.WithField("descriptor", 3).Info("hello")
	}, "--logfmt", "json")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &entry))
	require.Equal(t, "hello", entry["msg"])
	require.Equal(t, float64(3), entry["descriptor"])
	require.Contains(t, entry, "version")
}

func TestNew_Cached(t *testing.T) {
	app := &cli.App{
		Name:      "test",
		ErrWriter: &bytes.Buffer{},
		Action: func(c *cli.Context) error {
			first := logutil.New(c)
			require.Len(t, c.App.Metadata, 1)

			require.Equal(t, first, logutil.New(c))
			require.Len(t, c.App.Metadata, 1)
			return nil
		},
	}
	require.NoError(t, app.Run([]string{"test"}))
}

func TestWithFormat_None(t *testing.T) {
	out := run(t, func(l log.Logger) {
		l.Error("error-msg")
	}, "--logfmt", "none", "--loglvl", "trace")
	require.Empty(t, out)
}

func TestGuestName(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{path: "guest.wasm", expected: "guest"},
		{path: "/opt/wasm/wc.wasm", expected: "wc"},
		{path: "relative/tool", expected: "tool"},
		{path: "archive.wasm.gz", expected: "archive.wasm.gz"},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.path, func(t *testing.T) {
			require.Equal(t, tc.expected, logutil.GuestName(tc.path))
		})
	}
}

func TestForGuest(t *testing.T) {
	out := run(t, func(l log.Logger) {
		l.Info("opened")
	})

	// run binds with no guest fields
	require.NotContains(t, out, "guest=")

	var buf bytes.Buffer
	app := &cli.App{
		Name:      "test",
		ErrWriter: &buf,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "logfmt", Value: "text"},
			&cli.StringFlag{Name: "loglvl", Value: "info"},
		},
		Action: func(c *cli.Context) error {
			logutil.ForGuest(c, "/tmp/wc.wasm").Info("opened")
			return nil
		},
	}
	require.NoError(t, app.Run([]string{"test"}))
	require.Contains(t, buf.String(), "guest=wc")
	require.Contains(t, buf.String(), "wasm=/tmp/wc.wasm")
}
