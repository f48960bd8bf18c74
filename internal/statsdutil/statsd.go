// Package statsdutil reports iobl.Host metrics to statsd.
package statsdutil

import (
	"time"

	"github.com/lthibault/log"
	"gopkg.in/alexcesaro/statsd.v2"

	"github.com/wasmio/iobl"
)

// Prefix is prepended to every bucket.
const Prefix = "iobl"

// Env is the subset of *cli.Context used to configure the client.
type Env interface {
	IsSet(string) bool
	String(string) string
}

// Metrics wraps a statsd client and satisfies iobl.Metrics.
type Metrics struct{ *statsd.Client }

// New statsd client sending to the address in the "statsd" flag. The client
// is muted if the flag is not set. Setup failures are logged and yield
// metrics that discard everything.
func New(env Env, log log.Logger) iobl.Metrics {
	m, err := statsd.New(
		addr(env),
		muted(env),
		logger(env, log),
		statsd.Prefix(Prefix),
		statsd.FlushPeriod(time.Millisecond*250))
	if err != nil {
		log.WithError(err).
			Warn("setup failed for statsd metrics")
		return nopMetrics{}
	}

	return Metrics{m}
}

func (m Metrics) Incr(bucket string) {
	m.Client.Count(bucket, 1)
}

func (m Metrics) Decr(bucket string) {
	m.Client.Count(bucket, -1)
}

func (m Metrics) Count(bucket string, n int) {
	m.Client.Count(bucket, n)
}

// Close flushes buffered metrics and closes the connection.
func (m Metrics) Close() {
	m.Client.Close()
}

func addr(env Env) statsd.Option {
	if env.IsSet("statsd") {
		return statsd.Address(env.String("statsd"))
	}

	return statsd.Address(":8125")
}

func logger(env Env, log log.Logger) statsd.Option {
	return statsd.ErrorHandler(func(err error) {
		log.WithError(err).
			WithField("statsd", env.String("statsd")).
			Warn("failed to send metrics")
	})
}

func muted(env Env) statsd.Option {
	return statsd.Mute(!env.IsSet("statsd"))
}

type nopMetrics struct{}

func (nopMetrics) Incr(string)       {}
func (nopMetrics) Decr(string)       {}
func (nopMetrics) Count(string, int) {}
