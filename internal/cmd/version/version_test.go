package version_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/wasmio/iobl/internal/cmd/version"
)

func TestCommand(t *testing.T) {
	var out bytes.Buffer
	app := &cli.App{
		Name:     "iobl",
		Writer:   &out,
		Commands: []*cli.Command{version.Command()},
	}

	require.NoError(t, app.Run([]string{"iobl", "version"}))
	require.Regexp(t, `^iobl \S+ \(wazero \S+\)\n$`, out.String())
}
