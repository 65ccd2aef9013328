//go:build !linux

package motion

import "time"

// hwClock is the non-Linux fallback: time.Now() has coarser guarantees
// than clock_gettime(CLOCK_MONOTONIC) but is adequate for simulation off
// the target platform.
type hwClock struct {
	rate  uint64
	epoch time.Time
}

// NewHardwareClock returns a StepClock ticking at rate ticks/second.
func NewHardwareClock(rate uint64) StepClock {
	return &hwClock{rate: rate, epoch: time.Now()}
}

func (c *hwClock) Ticks() uint64 {
	return uint64(time.Since(c.epoch).Seconds() * float64(c.rate))
}
