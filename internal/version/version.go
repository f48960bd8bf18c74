// Package version reports the version of iobl and of the wazero runtime it
// was built with.
package version

import (
	"runtime/debug"
	"strings"
)

// Default is returned when no version is available, e.g. in tests or a
// "go run" from a checkout.
const Default = "dev"

// version may be overridden at link time:
//
//	go build -ldflags "-X github.com/wasmio/iobl/internal/version.version=v1.2.3"
var version string

const (
	mainModule   = "github.com/wasmio/iobl"
	wazeroModule = "github.com/tetratelabs/wazero"
)

// Get returns the version of iobl: the link-time version if set, otherwise
// the module version recorded in the build info.
func Get() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		return moduleVersion(info, mainModule)
	}
	return Default
}

// GetWazeroVersion returns the version of the wazero module linked in, or
// Default if unknown.
func GetWazeroVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		return moduleVersion(info, wazeroModule)
	}
	return Default
}

func moduleVersion(info *debug.BuildInfo, path string) string {
	if info.Main.Path == path {
		return clean(info.Main.Version)
	}
	for _, dep := range info.Deps {
		if dep.Path != path {
			continue
		}
		if dep.Replace != nil {
			return clean(dep.Replace.Version)
		}
		return clean(dep.Version)
	}
	return Default
}

// clean maps the placeholders the go tool records for local builds to
// Default.
func clean(v string) string {
	if v == "" || v == "(devel)" {
		return Default
	}
	return strings.TrimSpace(v)
}
