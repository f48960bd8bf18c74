package version

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/wasmio/iobl/internal/version"
)

// Command returns the `version` command.
func Command() *cli.Command {
	return &cli.Command{
		Name:   "version",
		Usage:  "print the versions of iobl and wazero",
		Action: run,
	}
}

func run(c *cli.Context) error {
	_, err := fmt.Fprintf(c.App.Writer, "iobl %s (wazero %s)\n",
		version.Get(),
		version.GetWazeroVersion())
	return err
}
