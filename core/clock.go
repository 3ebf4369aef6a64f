package core

import (
	"sync"
	"time"
)

// Clock supplies operation timestamps in Unix seconds.
type Clock interface {
	Now() int64
}

// SystemClock reads the wall clock and never goes backwards.
type SystemClock struct {
	mu   sync.Mutex
	last int64
}

func (c *SystemClock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if now := time.Now().Unix(); now > c.last {
		c.last = now
	}
	return c.last
}

// FixedClock always returns the same instant.
type FixedClock int64

func (c FixedClock) Now() int64 { return int64(c) }
