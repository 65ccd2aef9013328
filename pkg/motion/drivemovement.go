package motion

// CartesianParams holds the prepare-time constants shared by Cartesian axes
// and extruders (extruders are Cartesian drives with pressure-advance
// compensation folded into the same closed-form recurrence).
type CartesianParams struct {
	AccelStopStep                                              uint32
	DecelStartStep                                              uint32
	MmPerStepTimesCKdivTopSpeed                                 uint32
	TwoCsquaredTimesMmPerStepDivA                               uint64
	FourMaxStepDistanceMinusTwoDistanceToStopTimesCsquaredDivA  int64
	CompensationClocks                                          uint32
	AccelCompensationClocks                                     uint32
}

// DeltaParams holds the prepare-time constants for a Delta tower drive.
type DeltaParams struct {
	HMZ0SK                                                  int32
	MinusAaPlusBbTimesKs                                    int32
	DSquaredMinusAsquaredMinusBsquaredTimesKsquaredSsquared int64
	AccelStopDsK                                            uint32
	DecelStartDsK                                           uint32
	MmPerStepTimesCKdivTopSpeed                             uint32
	TwoCsquaredTimesMmPerStepDivA                           uint64
}

// DriveMovement is the per-drive step-timing state machine. Once Prepare*
// has been called it is owned exclusively by the step ISR until its final
// step, at which point it is released back to the free list.
type DriveMovement struct {
	// next links free records together; it is only touched by the pool
	// under its own lock and is meaningless while the record is in use.
	next int32
	// poolIndex is this record's fixed slot in the pool's backing arena,
	// stamped once at InitialAllocate time and never cleared by reset.
	poolIndex int32

	Drive     int
	State     DMState
	Direction bool // true = forward

	TotalSteps uint32
	NextStep   uint32 // 1..TotalSteps while moving

	StepsTillRecalc uint32
	StepInterval    uint32
	NextStepTime    uint32

	// ReverseStartStep equals TotalSteps+1 iff this segment never reverses.
	ReverseStartStep uint32

	TwoDistanceToStopTimesCsquaredDivA uint64

	// Kind selects which of Cart / Delta is the live variant. Exactly one
	// is valid per record for the lifetime of a segment (invariant I5).
	Kind  DMKind
	Cart  CartesianParams
	Delta DeltaParams
}

// reset clears a record back to its zero, idle state. Called by the pool
// when Allocate hands a record out, so that stale state from a prior
// segment can never leak into the next Prepare* call.
func (dm *DriveMovement) reset() {
	*dm = DriveMovement{next: dm.next, poolIndex: dm.poolIndex}
}

// Active reports whether the record still has steps to emit.
func (dm *DriveMovement) Active() bool {
	return dm.State == Moving && dm.NextStep <= dm.TotalSteps
}
