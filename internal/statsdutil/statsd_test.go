package statsdutil_test

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/lthibault/log"
	"github.com/stretchr/testify/require"

	"github.com/wasmio/iobl/internal/statsdutil"
)

type env map[string]string

func (e env) IsSet(name string) bool {
	_, ok := e[name]
	return ok
}

func (e env) String(name string) string {
	return e[name]
}

func TestNew_Muted(t *testing.T) {
	m := statsdutil.New(env{}, log.New())
	require.IsType(t, statsdutil.Metrics{}, m)

	// muted clients accept everything
	m.Incr("buffer.register")
	m.Decr("handle.open")
	m.Count("fetch.bytes", 42)
	m.(statsdutil.Metrics).Close()
}

func TestMetrics(t *testing.T) {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer conn.Close()

	m := statsdutil.New(env{"statsd": conn.LocalAddr().String()}, log.New())
	metrics, ok := m.(statsdutil.Metrics)
	require.True(t, ok)

	metrics.Incr("buffer.register")
	metrics.Decr("handle.open")
	metrics.Count("flush.bytes", 7)
	metrics.Close()

	var received []string
	buf := make([]byte, 1024)
	for len(received) < 3 {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		n, _, err := conn.ReadFrom(buf)
		require.NoError(t, err)
		for _, line := range strings.Split(string(buf[:n]), "\n") {
			// the client writes empty datagrams when it connects
			if line = strings.TrimSpace(line); line != "" {
				received = append(received, line)
			}
		}
	}

	require.Equal(t, []string{
		"iobl.buffer.register:1|c",
		"iobl.handle.open:-1|c",
		"iobl.flush.bytes:7|c",
	}, received)
}
