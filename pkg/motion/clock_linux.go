//go:build linux

package motion

import "golang.org/x/sys/unix"

// hwClock reads CLOCK_MONOTONIC directly through the raw syscall rather
// than through time.Now(), matching how the reference firmware reads its
// hardware step timer: a free-running counter with no allocation and no
// wall-clock adjustment on the read path.
type hwClock struct {
	rate  uint64 // step-clock ticks per second
	epoch int64  // nanoseconds at NewHardwareClock time
}

// NewHardwareClock returns a StepClock ticking at rate ticks/second,
// backed by the kernel's monotonic clock. rate should match DDA.ClockRate
// for the segment being simulated.
func NewHardwareClock(rate uint64) StepClock {
	var ts unix.Timespec
	_ = unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts)
	return &hwClock{rate: rate, epoch: ts.Nano()}
}

func (c *hwClock) Ticks() uint64 {
	var ts unix.Timespec
	_ = unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts)
	elapsedNanos := ts.Nano() - c.epoch
	if elapsedNanos < 0 {
		return 0
	}
	return uint64(elapsedNanos) * c.rate / 1_000_000_000
}
