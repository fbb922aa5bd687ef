package transfer

import (
	"io"
	"sync/atomic"
)

// Counter is a current/total pair safe for concurrent reads.
type Counter struct {
	cur   atomic.Uint64
	total atomic.Uint64
}

func (c *Counter) Current() uint64 { return c.cur.Load() }
func (c *Counter) Total() uint64   { return c.total.Load() }

func (c *Counter) Add(n uint64) { c.cur.Add(n) }

// Reset starts a new phase with the given total.
func (c *Counter) Reset(total uint64) {
	c.cur.Store(0)
	c.total.Store(total)
}

// Finish marks the phase complete; trailing archive padding is never read.
func (c *Counter) Finish() { c.cur.Store(c.total.Load()) }

// SetTotal raises the total; it never lowers it below the current value.
func (c *Counter) SetTotal(total uint64) {
	if cur := c.cur.Load(); total < cur {
		total = cur
	}
	c.total.Store(total)
}

type countingReader struct {
	r io.Reader
	c *Counter
}

func (cr countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.c.Add(uint64(n))
	}
	return n, err
}

type countingWriter struct {
	w io.Writer
	c *Counter
}

func (cw countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	if n > 0 {
		cw.c.Add(uint64(n))
	}
	return n, err
}
