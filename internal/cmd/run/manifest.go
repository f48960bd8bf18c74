package run

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	"github.com/wasmio/iobl"
)

// defaultMode is used for buffers given without a mode.
const defaultMode = "r"

// bufferSpec names a file loaded into a host buffer and the mode the guest
// opens it with.
type bufferSpec struct {
	Path string `mapstructure:"path"`
	Mode string `mapstructure:"mode"`
}

func (b bufferSpec) mode() iobl.Mode {
	m, _ := iobl.ParseMode(b.Mode) // validated on load
	return m
}

// manifest describes a run:
//
//	{
//	  "call": "main",
//	  "buffers": [
//	    {"path": "in.txt", "mode": "r"},
//	    {"path": "out.txt", "mode": "w"}
//	  ]
//	}
type manifest struct {
	Call    string       `mapstructure:"call"`
	Buffers []bufferSpec `mapstructure:"buffers"`
}

// parseBuffer parses a --buffer value of the form path[:mode]. A suffix that
// is not a valid mode is taken as part of the path.
func parseBuffer(s string) (bufferSpec, error) {
	spec := bufferSpec{Path: s, Mode: defaultMode}
	if i := strings.LastIndexByte(s, ':'); i != -1 {
		if _, err := iobl.ParseMode(s[i+1:]); err == nil {
			spec.Path, spec.Mode = s[:i], s[i+1:]
		}
	}

	if spec.Path == "" {
		return bufferSpec{}, errors.Errorf("invalid buffer %q: empty path", s)
	}
	return spec, nil
}

// loadManifest reads a JSON manifest. Unknown keys are rejected.
func loadManifest(path string) (m manifest, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return m, errors.Wrap(err, "read manifest")
	}

	var raw map[string]interface{}
	if err = json.Unmarshal(b, &raw); err != nil {
		return m, errors.Wrapf(err, "parse manifest %s", path)
	}
	if m, err = decodeManifest(raw); err != nil {
		return m, errors.Wrapf(err, "manifest %s", path)
	}
	return m, nil
}

func decodeManifest(raw map[string]interface{}) (m manifest, err error) {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      &m,
	})
	if err != nil {
		return m, err
	}
	if err = dec.Decode(raw); err != nil {
		return m, err
	}

	for i, b := range m.Buffers {
		if b.Path == "" {
			return m, errors.Errorf("buffer %d: empty path", i)
		}
		if b.Mode == "" {
			m.Buffers[i].Mode = defaultMode
		} else if _, err = iobl.ParseMode(b.Mode); err != nil {
			return m, errors.Wrapf(err, "buffer %d", i)
		}
	}
	return m, nil
}
