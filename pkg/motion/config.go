package motion

// Config carries the small set of tunables the batched-stepping heuristic
// needs. These are compile-time constants in the reference firmware
// (DDA::MinCalcIntervalCartesian / DDA::MinCalcIntervalDelta); here they are
// data so a board profile loaded at startup (see cmd/motion-sim) can tune
// them per kinematics without touching the recurrence.
type Config struct {
	// MinCalcIntervalCartesian is the step-clock interval below which a
	// Cartesian or extruder drive starts batching multiple steps per
	// recalculation instead of recalculating every step.
	MinCalcIntervalCartesian uint32
	// MinCalcIntervalDelta is the Delta-axis equivalent. Delta geometry
	// is more expensive per step, so its threshold sits higher and it
	// supports one extra batching tier (16x).
	MinCalcIntervalDelta uint32
}

// DefaultConfig returns the tunables used when no board profile overrides
// them. Both are in step-clock ticks, so the step rate at which batching
// starts depends on the clock: with the 48 MHz clock of the profiles under
// boards/, 60 ticks is 1.25us, i.e. about 800,000 steps per second.
func DefaultConfig() Config {
	return Config{
		MinCalcIntervalCartesian: 60,
		MinCalcIntervalDelta:     100,
	}
}
