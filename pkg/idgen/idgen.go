package idgen

import "sync/atomic"

// Counter hands out unique, monotonically increasing uint64 values starting
// at 1 (0 is reserved to mean "unset"). The zero value is ready to use.
type Counter struct {
	next atomic.Uint64
}

// Next returns the next id in the sequence. Safe for concurrent use; the
// coordinator's goroutine, resource-fetch callbacks and admin handlers all
// call it.
func (c *Counter) Next() uint64 {
	return c.next.Add(1)
}
