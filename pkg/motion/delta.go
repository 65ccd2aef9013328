package motion

import (
	"math"

	motionerrors "github.com/feral42/RepRapFirmware/pkg/errors"
)

// deltaSentinelDecelStartDsK marks a Delta segment with no deceleration
// phase: a projected-distance (dsK) value no real move ever reaches, playing the
// same role decelStartStep = totalSteps+1 plays for Cartesian drives.
const deltaSentinelDecelStartDsK = 0xFFFFFFFF

// PrepareDeltaAxis prepares dm to execute one tower's share of a Delta
// move. geom supplies the tower's fixed (x, y) position; pp carries the
// planner-derived quantities that are shared across towers on this segment
// (initial carriage position, diagonal-rod geometry, decel start distance).
//
// Unlike Cartesian preparation, a Delta segment can require a mid-segment
// direction reversal: the tower may need to rise and then fall (or vice
// versa) to keep the nozzle on a straight line while the diagonal rod's
// geometry constrains the tower's own vertical travel.
func PrepareDeltaAxis(dm *DriveMovement, dda *DDA, pp PrepParams, geom TowerGeometry) {
	stepsPerMm := float64(dm.TotalSteps) / dda.TotalDistance
	c := float64(dda.ClockRate)

	vx, vy, vz := axisComponent(dda, XAxis), axisComponent(dda, YAxis), axisComponent(dda, ZAxis)

	a := pp.InitialX - geom.TowerX(dm.Drive)
	b := pp.InitialY - geom.TowerY(dm.Drive)
	aAplusbB := a*vx + b*vy
	dSquared := pp.DiagonalSquared - a*a - b*b
	hmz0 := math.Sqrt(math.Max(dSquared, 0))

	dm.Kind = KindDelta
	dm.Delta.HMZ0SK = roundS32(hmz0 * stepsPerMm * K2)
	dm.Delta.MinusAaPlusBbTimesKs = -roundS32(aAplusbB * stepsPerMm * K2)
	scaledStepsPerMm := stepsPerMm * K2
	dm.Delta.DSquaredMinusAsquaredMinusBsquaredTimesKsquaredSsquared = roundS64(hmz0 * hmz0 * scaledStepsPerMm * scaledStepsPerMm)
	dm.Delta.TwoCsquaredTimesMmPerStepDivA = roundU64(float64(dda.ClockRateSquared*2) / (stepsPerMm * dda.Acceleration))
	dm.Delta.MmPerStepTimesCKdivTopSpeed = roundU32(c * K1 / (stepsPerMm * dda.TopSpeed))

	dm.Direction = vz >= 0
	dm.ReverseStartStep = dm.TotalSteps + 1

	if pp.A2PlusB2 > 0 {
		avyMinusBvx := a*vy - b*vx
		underRoot := pp.A2B2D2 - avyMinusBvx*avyMinusBvx
		drev := (vz*math.Sqrt(math.Max(underRoot, 0)) - aAplusbB) / pp.A2PlusB2

		if drev > 0 && drev < dda.TotalDistance {
			peakUnderRoot := dSquared - 2*drev*aAplusbB - pp.A2PlusB2*drev*drev
			hrev := vz*drev + math.Sqrt(math.Max(peakUnderRoot, 0))
			numStepsUp := int64(math.Floor((hrev - hmz0) * stepsPerMm))

			switch {
			case numStepsUp < 1 || (dm.Direction && uint32(numStepsUp) <= dm.TotalSteps):
				// No reversal: either the peak lies behind the start, or
				// this carriage never rises past its current step count.
			case dm.Direction:
				dm.ReverseStartStep = uint32(numStepsUp) + 1
				dm.TotalSteps = uint32(2*numStepsUp) - dm.TotalSteps
			default:
				dm.Direction = true
				dm.ReverseStartStep = uint32(numStepsUp) + 1
				dm.TotalSteps = uint32(2*numStepsUp) + dm.TotalSteps
			}
		}
	}

	dm.Delta.AccelStopDsK = roundU32(dda.AccelDistance * stepsPerMm * K2)
	if belowHalfStep(dda.DecelDistance, stepsPerMm) {
		dm.Delta.DecelStartDsK = deltaSentinelDecelStartDsK
		dm.TwoDistanceToStopTimesCsquaredDivA = 0
	} else {
		dm.Delta.DecelStartDsK = roundU32(pp.DecelStartDistance * stepsPerMm * K2)
		dm.TwoDistanceToStopTimesCsquaredDivA = isquare64(pp.TopSpeedTimesCdivA) +
			roundU64(pp.DecelStartDistance*float64(dda.ClockRateSquared*2)/dda.Acceleration)
	}
}

func axisComponent(dda *DDA, axis int) float64 {
	if axis >= len(dda.DirectionVector) {
		return 0
	}
	return dda.DirectionVector[axis]
}

// deltaBatchShift is the Delta equivalent of batchShift, with an extra
// tier: at very high step rates a Delta tower may batch 16 steps instead
// of Cartesian's ceiling of 8, since its recomputation is comparatively
// more expensive.
func deltaBatchShift(stepInterval, minCalcInterval, nextStep, limit uint32) uint32 {
	if stepInterval >= minCalcInterval {
		return 0
	}
	stepsToLimit := limit - nextStep
	switch {
	case stepInterval < minCalcInterval/8 && stepsToLimit > 16:
		return 4
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

// deltaStepsToLimit is stepsToLimit's Delta counterpart: at NextStep ==
// ReverseStartStep the tower has just flipped direction, and the horizon
// for the batch that follows the flip is the segment end, not the
// reversal point itself (dda.h's DriveMovement::stepsTilLimit uses < here).
func deltaStepsToLimit(dm *DriveMovement) uint32 {
	if dm.NextStep < dm.ReverseStartStep && dm.ReverseStartStep <= dm.TotalSteps {
		return dm.ReverseStartStep
	}
	return dm.TotalSteps
}

// CalcNextStepDelta computes dm.NextStepTime for the next batch of Delta
// steps. Unlike the Cartesian recurrence, direction reversal is detected
// by step index (dm.NextStep == dm.ReverseStartStep) rather than by phase,
// and the height counter hmz0sK is advanced before the tower geometry is
// re-solved for the projected step position dsK.
//
// Precondition: dm.NextStep <= dm.TotalSteps and dm.StepsTillRecalc == 0.
func CalcNextStepDelta(dm *DriveMovement, dda *DDA, cfg Config, live bool, platform Platform) (bool, error) {
	if dm.NextStep == dm.ReverseStartStep {
		dm.Direction = !dm.Direction
		if live {
			platform.SetDirection(dm.Drive, dm.Direction)
		}
	}

	shift := deltaBatchShift(dm.StepInterval, cfg.MinCalcIntervalDelta, dm.NextStep, deltaStepsToLimit(dm))
	dm.StepsTillRecalc = (1 << shift) - 1
	lastStepTime := dm.NextStepTime

	heightStep := int32(K2) << shift
	if dm.Direction {
		dm.Delta.HMZ0SK += heightStep
	} else {
		dm.Delta.HMZ0SK -= heightStep
	}

	hmz0scK := int64(dm.Delta.HMZ0SK) * int64(dda.CKc) / Kc
	t1 := int64(dm.Delta.MinusAaPlusBbTimesKs) + hmz0scK
	t2a := dm.Delta.DSquaredMinusAsquaredMinusBsquaredTimesKsquaredSsquared - int64(isquare64s(dm.Delta.HMZ0SK)) + t1*t1

	var t2 int64
	if t2a > 0 {
		t2 = int64(isqrt64(uint64(t2a)))
	}

	var dsK int64
	if dm.Direction {
		dsK = t1 - t2
	} else {
		dsK = t1 + t2
	}
	if dsK < 0 {
		dm.State = StepError
		dm.NextStep += 1_000_000
		return false, motionerrors.MotionGeometryError(dm.Drive)
	}
	dsK32 := uint32(dsK)

	switch {
	case dsK32 < dm.Delta.AccelStopDsK:
		radicand := isquare64(dda.StartSpeedTimesCdivA) + dm.Delta.TwoCsquaredTimesMmPerStepDivA*uint64(dsK32)/K2
		dm.NextStepTime = isqrt64(radicand) - dda.StartSpeedTimesCdivA

	case dsK32 < dm.Delta.DecelStartDsK:
		cruise := int64(dm.Delta.MmPerStepTimesCKdivTopSpeed) * int64(dsK32) / K2 / K1
		dm.NextStepTime = uint32(cruise + int64(dda.ExtraAccelerationClocks))

	default:
		b := dda.TopSpeedTimesCdivAPlusDecelStartClocks
		temp := dm.Delta.TwoCsquaredTimesMmPerStepDivA * uint64(dsK32) / K2
		if temp < dm.TwoDistanceToStopTimesCsquaredDivA {
			dm.NextStepTime = b - isqrt64(dm.TwoDistanceToStopTimesCsquaredDivA-temp)
		} else {
			dm.NextStepTime = b
		}
	}

	dm.StepInterval = (dm.NextStepTime - lastStepTime) >> shift

	if dm.NextStepTime > dda.ClocksNeeded {
		if dm.NextStep+1 >= dm.TotalSteps {
			dm.NextStepTime = dda.ClocksNeeded
		} else {
			dm.State = StepError
			dm.StepInterval = 10_000_000 + dm.NextStepTime
			return false, motionerrors.MotionStepError(dm.Drive, dm.NextStep, dm.TotalSteps)
		}
	}
	return true, nil
}
