package iobl

// Metrics receives counters from a Host. Bucket names are relative, e.g.
// "fetch.bytes"; implementations add their own prefix.
type Metrics interface {
	Incr(bucket string)
	Decr(bucket string)
	Count(bucket string, n int)
}

type nopMetrics struct{}

func (nopMetrics) Incr(string)       {}
func (nopMetrics) Decr(string)       {}
func (nopMetrics) Count(string, int) {}
