package main

import (
	"os"

	"github.com/lthibault/log"
	"github.com/urfave/cli/v2"

	"github.com/wasmio/iobl/internal/cmd/run"
	"github.com/wasmio/iobl/internal/cmd/version"
	ver "github.com/wasmio/iobl/internal/version"
)

var flags = []cli.Flag{
	// Logging
	&cli.StringFlag{
		Name:    "logfmt",
		Aliases: []string{"f"},
		Usage:   "`format` logs as text, json or none",
		Value:   "text",
		EnvVars: []string{"IOBL_LOGFMT"},
	},
	&cli.StringFlag{
		Name:    "loglvl",
		Usage:   "set logging `level` to trace, debug, info, warn, error or fatal",
		Value:   "info",
		EnvVars: []string{"IOBL_LOGLVL"},
	},
	// Statsd
	&cli.StringFlag{
		Name:        "statsd",
		Usage:       "send metrics to udp `host:port`",
		EnvVars:     []string{"IOBL_STATSD"},
		DefaultText: "disabled",
	},
	// Misc.
	&cli.BoolFlag{
		Name:    "prettyprint",
		Aliases: []string{"pp"},
		Usage:   "pretty-print JSON output",
		Hidden:  true,
	},
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "iobl",
		Usage:     "run WebAssembly guests against host-owned buffers",
		UsageText: "iobl [global options] command [command options] [arguments...]",
		Version:   ver.Get(),
		Flags:     flags,
		Metadata:  map[string]interface{}{},
		Commands: []*cli.Command{
			run.Command(),
			version.Command(),
		},
	}
}
