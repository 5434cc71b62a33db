package service

import (
	"sync"
	"time"
)

// logicalClock hands out strictly increasing millisecond timestamps so that
// entries appended by this process never tie, even within one millisecond.
type logicalClock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

func newLogicalClock(now func() time.Time) *logicalClock {
	if now == nil {
		now = time.Now
	}
	return &logicalClock{now: now}
}

func (c *logicalClock) Next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().UTC().Truncate(time.Millisecond)
	if !t.After(c.last) {
		t = c.last.Add(time.Millisecond)
	}
	c.last = t
	return t
}
