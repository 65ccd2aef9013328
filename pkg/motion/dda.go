package motion

// MoveParams describes the physical trapezoidal (or triangular) speed
// profile the look-ahead planner has already resolved for a segment. It is
// the planner's output; NewDDA turns it into the fixed-point constants the
// per-step recurrence needs.
type MoveParams struct {
	TotalDistance float64 // mm
	AccelDistance float64 // mm covered while accelerating
	DecelDistance float64 // mm covered while decelerating
	StartSpeed    float64 // mm/s
	TopSpeed      float64 // mm/s
	EndSpeed      float64 // mm/s
	Acceleration  float64 // mm/s^2, applies to both accel and decel phases

	// DirectionVector is the per-axis unit direction vector for this
	// segment, indexed the same way as drive numbers (X, Y, Z, then one
	// entry per extruder). Its Z-axis component feeds the Delta
	// z-mixing term cKc.
	DirectionVector []float64

	IsDeltaMovement bool
}

// DDA (Digital Differential Analyzer) is the planned move descriptor: a
// straight-line segment with a trapezoidal or triangular speed profile,
// reduced to the fixed-point clock-tick constants every DriveMovement on
// this segment shares.
type DDA struct {
	MoveParams

	ClockRate        uint64 // step-clock ticks per second
	ClockRateSquared uint64 // ClockRate^2, precomputed to avoid repeating the multiply per drive

	StartSpeedTimesCdivA                   uint32
	TopSpeedTimesCdivA                     uint32
	TopSpeedTimesCdivAPlusDecelStartClocks uint32
	ExtraAccelerationClocks                int32
	ClocksNeeded                           uint32

	// CKc is the Z-axis direction cosine of the move scaled by Kc, mixed
	// into the Delta height-to-projected-distance conversion.
	CKc int32
}

// NewDDA computes the derived clock-tick constants for a move. It is the
// planner-context preparation step that must run once per segment before
// any drive on it is prepared; the per-drive Prepare* routines all read
// from the resulting DDA.
func NewDDA(mp MoveParams, clockRate uint64) *DDA {
	dda := &DDA{
		MoveParams:       mp,
		ClockRate:        clockRate,
		ClockRateSquared: clockRate * clockRate,
	}

	c := float64(clockRate)
	dda.StartSpeedTimesCdivA = roundU32(c * mp.StartSpeed / mp.Acceleration)
	dda.TopSpeedTimesCdivA = roundU32(c * mp.TopSpeed / mp.Acceleration)

	accelClocks := c * (mp.TopSpeed - mp.StartSpeed) / mp.Acceleration
	decelClocks := c * (mp.TopSpeed - mp.EndSpeed) / mp.Acceleration
	cruiseDistance := mp.TotalDistance - mp.AccelDistance - mp.DecelDistance
	var cruiseClocks float64
	if mp.TopSpeed > 0 {
		cruiseClocks = c * cruiseDistance / mp.TopSpeed
	}
	decelStartClocks := accelClocks + cruiseClocks

	dda.TopSpeedTimesCdivAPlusDecelStartClocks = roundU32(c*mp.TopSpeed/mp.Acceleration + decelStartClocks)

	var accelDistanceClocks float64
	if mp.TopSpeed > 0 {
		accelDistanceClocks = c * mp.AccelDistance / mp.TopSpeed
	}
	dda.ExtraAccelerationClocks = roundS32(accelClocks - accelDistanceClocks)

	dda.ClocksNeeded = roundU32(accelClocks + cruiseClocks + decelClocks)

	if len(mp.DirectionVector) > ZAxis {
		dda.CKc = roundS32(mp.DirectionVector[ZAxis] * Kc)
	}

	return dda
}

// Axis indices into MoveParams.DirectionVector for the three linear axes.
// Extruder drives occupy indices from NumLinearAxes upward.
const (
	XAxis = 0
	YAxis = 1
	ZAxis = 2

	NumLinearAxes = 3
)

// belowHalfStep reports whether a distance, converted to steps at
// stepsPerMm, is below half a step -- the threshold PrepareCartesianAxis,
// PrepareDeltaAxis and PrepareExtruder all use to decide whether a
// deceleration phase exists at all.
func belowHalfStep(distance, stepsPerMm float64) bool {
	return distance*stepsPerMm < 0.5
}
