package motion

import (
	motionerrors "github.com/feral42/RepRapFirmware/pkg/errors"
)

// PrepParams carries the small set of values the look-ahead planner derives
// once per move and hands to every drive's Prepare* call alongside the DDA.
// Not every field is used by every kinematic model.
type PrepParams struct {
	DecelStartDistance float64 // mm from move start at which deceleration begins
	TopSpeedTimesCdivA uint32  // duplicated from the DDA for convenience

	// Delta-only.
	InitialX, InitialY float64
	DiagonalSquared    float64
	A2PlusB2           float64
	A2B2D2             float64

	// Extruder-only.
	CompFactor float64
}

// PrepareCartesianAxis prepares dm to execute a Cartesian axis move,
// computing the fixed-point constants the recurrence in
// CalcNextStepCartesian needs for the acceleration, cruise and (optional)
// deceleration phases. Cartesian moves never reverse direction mid-segment.
func PrepareCartesianAxis(dm *DriveMovement, dda *DDA, pp PrepParams) {
	stepsPerMm := float64(dm.TotalSteps) / dda.TotalDistance
	c := float64(dda.ClockRate)

	dm.Kind = KindCartesian
	dm.Cart.TwoCsquaredTimesMmPerStepDivA = roundU64(float64(dda.ClockRateSquared*2) / (stepsPerMm * dda.Acceleration))

	dm.Cart.AccelStopStep = uint32(dda.AccelDistance*stepsPerMm) + 1
	dm.Cart.CompensationClocks = 0
	dm.Cart.AccelCompensationClocks = 0

	dm.Cart.MmPerStepTimesCKdivTopSpeed = roundU32(c * K1 / (stepsPerMm * dda.TopSpeed))

	if belowHalfStep(dda.DecelDistance, stepsPerMm) {
		dm.Cart.DecelStartStep = dm.TotalSteps + 1
		dm.TwoDistanceToStopTimesCsquaredDivA = 0
	} else {
		dm.Cart.DecelStartStep = uint32(pp.DecelStartDistance*stepsPerMm) + 1
		dm.TwoDistanceToStopTimesCsquaredDivA = isquare64(pp.TopSpeedTimesCdivA) +
			roundU64(pp.DecelStartDistance*float64(dda.ClockRateSquared*2)/dda.Acceleration)
	}

	// Cartesian moves never reverse.
	dm.ReverseStartStep = dm.TotalSteps + 1
	dm.Cart.FourMaxStepDistanceMinusTwoDistanceToStopTimesCsquaredDivA = 0
}

// batchShift picks the batched-stepping shift factor and returns it along
// with the number of additional identical-interval steps
// (stepsTillRecalc = 2^shift - 1) to emit before the recurrence is invoked
// again. minCalcInterval is the per-kinematics threshold below which the
// axis is judged to be running fast enough to batch; nextStep/limit bound
// how many steps remain before an event (a reversal, or the end of the
// segment) that must not be overshot by batching.
func batchShift(stepInterval, minCalcInterval, nextStep, limit uint32) uint32 {
	if stepInterval >= minCalcInterval {
		return 0
	}
	stepsToLimit := limit - nextStep
	switch {
	case stepInterval < minCalcInterval/4 && stepsToLimit > 8:
		return 3
	case stepInterval < minCalcInterval/2 && stepsToLimit > 4:
		return 2
	case stepsToLimit > 2:
		return 1
	default:
		return 0
	}
}

// stepsToLimit returns the step-index horizon batching must not cross: the
// reversal point if one lies ahead of nextStep, else the end of the
// segment. Cartesian axes never reverse (ReverseStartStep is TotalSteps+1),
// but extruders prepared by PrepareExtruder share this recurrence and can;
// at NextStep == ReverseStartStep the <= keeps the reversal step itself as
// the horizon, so that step is emitted unbatched. deltaStepsToLimit in
// delta.go carries the Delta form of this check, which uses < instead.
func stepsToLimit(dm *DriveMovement) uint32 {
	if dm.NextStep <= dm.ReverseStartStep && dm.ReverseStartStep <= dm.TotalSteps {
		return dm.ReverseStartStep
	}
	return dm.TotalSteps
}

// CalcNextStepCartesian computes dm.NextStepTime for the next batch of
// steps and reports whether more steps remain. It is also used, unmodified,
// to drive extruder step timing (extruders share the Cartesian recurrence;
// pressure advance only changes the constants PrepareExtruder computes).
//
// Precondition: dm.NextStep <= dm.TotalSteps and dm.StepsTillRecalc == 0.
func CalcNextStepCartesian(dm *DriveMovement, dda *DDA, cfg Config, live bool, platform Platform) (bool, error) {
	shift := batchShift(dm.StepInterval, cfg.MinCalcIntervalCartesian, dm.NextStep, stepsToLimit(dm))
	dm.StepsTillRecalc = (1 << shift) - 1

	nextCalcStep := dm.NextStep + dm.StepsTillRecalc
	lastStepTime := dm.NextStepTime

	switch {
	case nextCalcStep < dm.Cart.AccelStopStep:
		adjustedStart := dda.StartSpeedTimesCdivA + dm.Cart.CompensationClocks
		radicand := isquare64(adjustedStart) + dm.Cart.TwoCsquaredTimesMmPerStepDivA*uint64(nextCalcStep)
		dm.NextStepTime = isqrt64(radicand) - adjustedStart

	case nextCalcStep < dm.Cart.DecelStartStep:
		cruise := int64(dm.Cart.MmPerStepTimesCKdivTopSpeed) * int64(nextCalcStep) / K1
		dm.NextStepTime = uint32(cruise + int64(dda.ExtraAccelerationClocks) - int64(dm.Cart.AccelCompensationClocks))

	case nextCalcStep < dm.ReverseStartStep:
		temp := dm.Cart.TwoCsquaredTimesMmPerStepDivA * uint64(nextCalcStep)
		b := dda.TopSpeedTimesCdivAPlusDecelStartClocks - dm.Cart.CompensationClocks
		if temp < dm.TwoDistanceToStopTimesCsquaredDivA {
			dm.NextStepTime = b - isqrt64(dm.TwoDistanceToStopTimesCsquaredDivA-temp)
		} else {
			dm.NextStepTime = b
		}

	default:
		if nextCalcStep == dm.ReverseStartStep {
			dm.Direction = !dm.Direction
			if live {
				platform.SetDirection(dm.Drive, dm.Direction)
			}
		}
		b := dda.TopSpeedTimesCdivAPlusDecelStartClocks - dm.Cart.CompensationClocks
		temp := int64(dm.Cart.TwoCsquaredTimesMmPerStepDivA*uint64(nextCalcStep)) - dm.Cart.FourMaxStepDistanceMinusTwoDistanceToStopTimesCsquaredDivA
		dm.NextStepTime = b + isqrt64Signed(temp)
	}

	dm.StepInterval = (dm.NextStepTime - lastStepTime) >> shift

	if dm.NextStepTime > dda.ClocksNeeded {
		if dm.NextStep >= dm.TotalSteps {
			dm.NextStepTime = dda.ClocksNeeded
		} else {
			dm.State = StepError
			dm.StepInterval = 10_000_000 + dm.NextStepTime
			return false, motionerrors.MotionStepError(dm.Drive, dm.NextStep, dm.TotalSteps)
		}
	}
	return true, nil
}
