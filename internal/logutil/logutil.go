// Package logutil contains shared utilities for configuring loggers from a cli context.
package logutil

import (
	"path/filepath"
	"strings"

	"github.com/lthibault/log"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/wasmio/iobl/internal/version"
)

// New logger from a cli context. The first call binds the logger to the
// app, later calls return the same instance.
func New(c *cli.Context) log.Logger {
	if logger := get(c); logger != nil {
		return logger
	}

	return bind(c)
}

// ForGuest returns the app logger scoped to the guest loaded from wasmPath.
// Entries carry the guest's module name, as GuestName derives it, and the
// path it was loaded from. Host events and the guest's own print_int and
// print_string output then share the "guest" field.
func ForGuest(c *cli.Context, wasmPath string) log.Logger {
	return New(c).With(log.F{
		"guest": GuestName(wasmPath),
		"wasm":  wasmPath,
	})
}

// GuestName is the module name a guest loaded from wasmPath is instantiated
// under: the file name without its ".wasm" extension.
func GuestName(wasmPath string) string {
	return strings.TrimSuffix(filepath.Base(wasmPath), ".wasm")
}

// WithLevel returns a log.Option that configures a logger's level.
func WithLevel(c *cli.Context) (opt log.Option) {
	var level = log.FatalLevel
	defer func() {
		opt = log.WithLevel(level)
	}()

	if c.String("logfmt") == "none" {
		return
	}

	switch c.String("loglvl") {
	case "trace", "t":
		level = log.TraceLevel
	case "debug", "d":
		level = log.DebugLevel
	case "info", "i":
		level = log.InfoLevel
	case "warn", "warning", "w":
		level = log.WarnLevel
	case "error", "err", "e":
		level = log.ErrorLevel
	case "fatal", "f":
		level = log.FatalLevel
	default:
		level = log.InfoLevel
	}

	return
}

// WithFormat returns an option that configures a logger's format.
func WithFormat(c *cli.Context) log.Option {
	var fmt logrus.Formatter

	switch c.String("logfmt") {
	case "none":
		// silenced by WithLevel; the formatter is never reached
		fmt = new(logrus.TextFormatter)
	case "json":
		fmt = &logrus.JSONFormatter{PrettyPrint: c.Bool("prettyprint")}
	default:
		fmt = new(logrus.TextFormatter)
	}

	return log.WithFormatter(fmt)
}

func withErrWriter(c *cli.Context) log.Option {
	return log.WithWriter(c.App.ErrWriter)
}

// key with random component to avoid collision
const key = "iobl.logutil:q8#Lw]2v!Tz{0e^Hd"

func bind(c *cli.Context) log.Logger {
	logger := log.New(
		WithLevel(c),
		WithFormat(c),
		withErrWriter(c)).
		WithField("version", version.Get())

	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]interface{})
	}
	c.App.Metadata[key] = func() log.Logger {
		return logger
	}

	return logger
}

func get(c *cli.Context) log.Logger {
	if logger, ok := c.App.Metadata[key].(func() log.Logger); ok {
		return logger()
	}

	return nil
}
