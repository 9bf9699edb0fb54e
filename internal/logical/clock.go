// Package logical implements the monotone Lamport logical clock used by
// the DME core to order REQUEST/REPLY events.
package logical

import "sync"

// Timestamp is the logical clock value at the moment of an event.
type Timestamp uint64

// Clock is a Lamport logical clock, safe for concurrent use.
//
// internal/dme calls TickForSend for a REQUEST while holding its node
// mutex, but calls Observe and the TickForSend for each REPLY without
// holding it; Clock's own mutex is what makes each operation atomic.
type Clock struct {
	mu   sync.Mutex
	time Timestamp
}

// NewClock returns a Clock initialized to zero.
func NewClock() *Clock {
	return &Clock{}
}

// TickForSend increments the clock and returns the new value. Call before
// every REQUEST or REPLY send.
func (c *Clock) TickForSend() Timestamp {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.time++
	return c.time
}

// Observe applies the receive rule: clock <- max(clock, incoming) + 1.
func (c *Clock) Observe(incoming Timestamp) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if incoming > c.time {
		c.time = incoming
	}
	c.time++
}

// Read returns the current clock value without mutating it.
func (c *Clock) Read() Timestamp {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.time
}
