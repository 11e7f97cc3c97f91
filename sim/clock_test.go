package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClockFrameCoupled(t *testing.T) {
	var c Clock
	assert.Equal(t, 1, c.Advance(0))
	assert.Equal(t, 1, c.Advance(time.Hour))
	assert.Equal(t, 1, c.Advance(-time.Second))
}

func TestClockFixedStep(t *testing.T) {
	c := Clock{FixedStep: 10 * time.Millisecond, MaxSubSteps: 3}
	assert.Equal(t, 0, c.Advance(4*time.Millisecond))
	assert.Equal(t, 1, c.Advance(7*time.Millisecond))
	assert.Equal(t, 2, c.Advance(19*time.Millisecond))
	assert.Zero(t, c.Dropped())

	// ten whole steps; seven are dropped
	assert.Equal(t, 3, c.Advance(100*time.Millisecond))
	assert.Equal(t, uint64(7), c.Dropped())
	assert.Equal(t, 0, c.Advance(8*time.Millisecond))
	assert.Equal(t, 1, c.Advance(2*time.Millisecond))

	c.Reset()
	assert.Equal(t, 0, c.Advance(9*time.Millisecond))
}
