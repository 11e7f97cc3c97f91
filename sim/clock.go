package sim

import "time"

// Clock turns elapsed host time into a tick count.
type Clock struct {
	FixedStep   time.Duration
	MaxSubSteps int
	acc         time.Duration
	dropped     uint64
}

// Advance returns how many ticks to run for elapsed. With no fixed step
// every call is exactly one tick. Otherwise time accumulates and at most
// MaxSubSteps ticks are released; whole steps beyond that are dropped.
func (c *Clock) Advance(elapsed time.Duration) int {
	if c.FixedStep <= 0 {
		return 1
	}
	if elapsed > 0 {
		c.acc += elapsed
	}
	n := int(c.acc / c.FixedStep)
	c.acc -= time.Duration(n) * c.FixedStep
	if c.MaxSubSteps > 0 && n > c.MaxSubSteps {
		c.dropped += uint64(n - c.MaxSubSteps)
		n = c.MaxSubSteps
	}
	return n
}

// Dropped reports how many ticks were discarded to keep up.
func (c *Clock) Dropped() uint64 { return c.dropped }

// Reset clears accumulated time.
func (c *Clock) Reset() { c.acc = 0 }
