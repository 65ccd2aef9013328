package motion

import "math"

// PrepareExtruder prepares dm to execute an extruder drive's share of a
// move, folding in pressure-advance compensation on top of the ordinary
// Cartesian preparation. extruderIndex selects which of the platform's
// pressure-advance settings applies; doCompensation lets the planner turn
// compensation off entirely (e.g. for a manually-jogged extrude) without
// changing the direction-vector convention.
//
// Step timing for the prepared drive is produced by CalcNextStepCartesian:
// pressure advance only changes the constants computed here, not the
// recurrence that consumes them.
func PrepareExtruder(dm *DriveMovement, dda *DDA, pp PrepParams, extruderIndex int, doCompensation bool, platform Platform) {
	dv := axisComponent(dda, NumLinearAxes+extruderIndex)
	stepsPerMm := platform.DriveStepsPerUnit(dm.Drive) * math.Abs(dv)
	c := float64(dda.ClockRate)

	dm.Kind = KindCartesian

	var tau float64
	if doCompensation && dv > 0 {
		tau = platform.GetPressureAdvance(extruderIndex)
	}

	dm.Cart.CompensationClocks = roundU32(tau * c)
	dm.Cart.AccelCompensationClocks = roundU32(tau * c * pp.CompFactor)

	netSteps := int64(math.Floor((dda.EndSpeed-dda.StartSpeed)*tau*stepsPerMm)) + int64(dm.TotalSteps)

	accelCompensationDistance := tau * (dda.TopSpeed - dda.StartSpeed)
	dm.Cart.AccelStopStep = uint32(math.Floor((dda.AccelDistance+accelCompensationDistance)*stepsPerMm)) + 1
	dm.Cart.TwoCsquaredTimesMmPerStepDivA = roundU64(float64(dda.ClockRateSquared*2) / (stepsPerMm * dda.Acceleration))
	dm.Cart.MmPerStepTimesCKdivTopSpeed = roundU32(c * K1 / (stepsPerMm * dda.TopSpeed))

	if belowHalfStep(dda.DecelDistance, stepsPerMm) {
		dm.TotalSteps = clampStep(netSteps)
		dm.Cart.DecelStartStep = clampStep(netSteps + 1)
		dm.ReverseStartStep = dm.Cart.DecelStartStep
		dm.TwoDistanceToStopTimesCsquaredDivA = 0
		dm.Cart.FourMaxStepDistanceMinusTwoDistanceToStopTimesCsquaredDivA = 0
		return
	}

	decelStartDistance := pp.DecelStartDistance + accelCompensationDistance
	dm.Cart.DecelStartStep = uint32(math.Floor(decelStartDistance*stepsPerMm)) + 1

	initialDecelSpeedTimesCdivA := roundS32(c*dda.TopSpeed/dda.Acceleration) - int32(dm.Cart.CompensationClocks)
	dm.TwoDistanceToStopTimesCsquaredDivA = isquare64s(initialDecelSpeedTimesCdivA) +
		roundU64(decelStartDistance*float64(dda.ClockRateSquared*2)/dda.Acceleration)

	initialDecelSpeed := dda.TopSpeed - dda.Acceleration*tau
	var reverseStartDistance float64
	if initialDecelSpeed > 0 {
		reverseStartDistance = initialDecelSpeed*initialDecelSpeed/(2*dda.Acceleration) + decelStartDistance
	} else {
		reverseStartDistance = decelStartDistance
	}

	if reverseStartDistance >= dda.TotalDistance {
		dm.ReverseStartStep = dm.TotalSteps + 1
		return
	}

	var reverseStartStep uint32
	if initialDecelSpeed < 0 {
		reverseStartStep = dm.Cart.DecelStartStep
	} else {
		reverseStartStep = uint32(dm.TwoDistanceToStopTimesCsquaredDivA/dm.Cart.TwoCsquaredTimesMmPerStepDivA) + 1
	}

	// Guard against a spurious reversal driving totalSteps negative when
	// the segment is almost entirely a retraction.
	if netSteps <= 1 && reverseStartStep <= 1 {
		dm.ReverseStartStep = dm.TotalSteps + 1
		return
	}

	overallSteps := 2*(int64(reverseStartStep)-1) - netSteps
	if overallSteps > 0 {
		dm.TotalSteps = uint32(overallSteps)
		dm.ReverseStartStep = reverseStartStep
		dm.Cart.FourMaxStepDistanceMinusTwoDistanceToStopTimesCsquaredDivA =
			2*(int64(reverseStartStep)-1)*int64(dm.Cart.TwoCsquaredTimesMmPerStepDivA) - int64(dm.TwoDistanceToStopTimesCsquaredDivA)
	} else {
		dm.ReverseStartStep = dm.TotalSteps + 1
	}
}

// clampStep converts a possibly-negative signed step count (pressure
// advance retraction math can produce one transiently) to the unsigned
// step count the DriveMovement fields carry, floored at zero.
func clampStep(v int64) uint32 {
	if v < 0 {
		return 0
	}
	return uint32(v)
}
