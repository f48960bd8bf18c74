package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModuleVersion(t *testing.T) {
	info := &debug.BuildInfo{
		Main: debug.Module{Path: mainModule, Version: "(devel)"},
		Deps: []*debug.Module{
			{Path: "github.com/pkg/errors", Version: "v0.9.1"},
			{Path: wazeroModule, Version: "v1.7.3"},
		},
	}

	tests := []struct {
		name     string
		info     *debug.BuildInfo
		path     string
		expected string
	}{
		{name: "main devel", info: info, path: mainModule, expected: Default},
		{name: "dependency", info: info, path: wazeroModule, expected: "v1.7.3"},
		{name: "missing", info: info, path: "github.com/example/missing", expected: Default},
		{
			name: "replaced",
			info: &debug.BuildInfo{Deps: []*debug.Module{{
				Path:    wazeroModule,
				Version: "v1.7.3",
				Replace: &debug.Module{Path: "../wazero", Version: ""},
			}}},
			path:     wazeroModule,
			expected: Default,
		},
		{
			name:     "tagged main",
			info:     &debug.BuildInfo{Main: debug.Module{Path: mainModule, Version: "v0.3.0"}},
			path:     mainModule,
			expected: "v0.3.0",
		},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, moduleVersion(tc.info, tc.path))
		})
	}
}

func TestGet_LinkTime(t *testing.T) {
	old := version
	t.Cleanup(func() { version = old })

	version = "v9.9.9"
	require.Equal(t, "v9.9.9", Get())
}

func TestGet(t *testing.T) {
	require.NotEmpty(t, Get())
	require.NotEmpty(t, GetWazeroVersion())
}
