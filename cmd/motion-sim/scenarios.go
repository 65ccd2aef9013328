package main

import (
	"math"

	"github.com/feral42/RepRapFirmware/pkg/motion"
)

// trapezoid resolves a move's speed profile the way the (out-of-scope)
// look-ahead planner would: try to reach capSpeed, and fall back to a
// triangle profile -- a single peak below capSpeed -- when the segment is
// too short to reach it.
func trapezoid(distance, accel, startSpeed, endSpeed, capSpeed float64) (accelDist, cruiseDist, decelDist, topSpeed float64) {
	accelDist = (capSpeed*capSpeed - startSpeed*startSpeed) / (2 * accel)
	decelDist = (capSpeed*capSpeed - endSpeed*endSpeed) / (2 * accel)

	if accelDist+decelDist <= distance {
		return accelDist, distance - accelDist - decelDist, decelDist, capSpeed
	}

	vSquared := accel*distance + (startSpeed*startSpeed+endSpeed*endSpeed)/2
	if vSquared < 0 {
		vSquared = 0
	}
	v := math.Sqrt(vSquared)
	accelDist = (v*v - startSpeed*startSpeed) / (2 * accel)
	if accelDist < 0 {
		accelDist = 0
	}
	if accelDist > distance {
		accelDist = distance
	}
	return accelDist, 0, distance - accelDist, v
}

// Scenario bundles one prepared segment: a DDA plus the per-drive
// TotalSteps and PrepParams needed to prepare it. Scenarios stand in for
// what a look-ahead planner would hand the engine for a single move.
type Scenario struct {
	Name           string
	IsDelta        bool
	IsExtruder     bool
	TotalSteps     uint32
	DDA            *motion.DDA
	PrepParams     motion.PrepParams
	DoCompensation bool
	ExtruderIndex  int
}

func cartesianUnitMove(clockRate uint64) Scenario {
	const totalSteps = 100
	const stepsPerMm = 100.0
	distance := totalSteps / stepsPerMm

	accelDist, _, decelDist, top := trapezoid(distance, 1000, 0, 0, 10)
	dda := motion.NewDDA(motion.MoveParams{
		TotalDistance: distance,
		AccelDistance: accelDist,
		DecelDistance: decelDist,
		StartSpeed:    0,
		TopSpeed:      top,
		EndSpeed:      0,
		Acceleration:  1000,
		DirectionVector: []float64{1, 0, 0},
	}, clockRate)

	return Scenario{
		Name:       "cartesian-unit-move",
		TotalSteps: totalSteps,
		DDA:        dda,
		PrepParams: motion.PrepParams{
			DecelStartDistance: distance - decelDist,
			TopSpeedTimesCdivA: dda.TopSpeedTimesCdivA,
		},
	}
}

func cartesianCruiseOnly(clockRate uint64) Scenario {
	const totalSteps = 1000
	const stepsPerMm = 100.0
	distance := totalSteps / stepsPerMm

	dda := motion.NewDDA(motion.MoveParams{
		TotalDistance:   distance,
		AccelDistance:   0,
		DecelDistance:   0,
		StartSpeed:      20,
		TopSpeed:        20,
		EndSpeed:        20,
		Acceleration:    500,
		DirectionVector: []float64{1, 0, 0},
	}, clockRate)

	return Scenario{
		Name:       "cartesian-cruise-only",
		TotalSteps: totalSteps,
		DDA:        dda,
		PrepParams: motion.PrepParams{
			DecelStartDistance: distance,
			TopSpeedTimesCdivA: dda.TopSpeedTimesCdivA,
		},
	}
}

func deltaPureZ(clockRate uint64, diagonalSquared float64) Scenario {
	const totalSteps = 4000
	const stepsPerMm = 160.0
	distance := totalSteps / stepsPerMm

	accelDist, _, decelDist, top := trapezoid(distance, 800, 0, 0, 60)
	dda := motion.NewDDA(motion.MoveParams{
		TotalDistance:   distance,
		AccelDistance:   accelDist,
		DecelDistance:   decelDist,
		StartSpeed:      0,
		TopSpeed:        top,
		EndSpeed:        0,
		Acceleration:    800,
		DirectionVector: []float64{0, 0, 1},
		IsDeltaMovement: true,
	}, clockRate)

	return Scenario{
		Name:       "delta-pure-z",
		IsDelta:    true,
		TotalSteps: totalSteps,
		DDA:        dda,
		PrepParams: motion.PrepParams{
			InitialX:           0,
			InitialY:           0,
			DiagonalSquared:    diagonalSquared,
			A2PlusB2:           0,
			A2B2D2:             0,
			DecelStartDistance: distance - decelDist,
			TopSpeedTimesCdivA: dda.TopSpeedTimesCdivA,
		},
	}
}

func deltaReversal(clockRate uint64, diagonalSquared float64) Scenario {
	const totalSteps = 2000
	const stepsPerMm = 160.0
	distance := totalSteps / stepsPerMm

	// Start 120mm from the centre on tower A's bearing (210 degrees, tower
	// radius 140 in boards/delta.yaml) and move straight toward tower A
	// while descending slightly. Tower A's carriage rises as the effector
	// approaches and then falls, so PrepareDeltaAxis plans one reversal
	// about half way along the move (drev is about 6mm of 12.5mm); towers
	// B and C do not reverse.
	towerA := 210 * math.Pi / 180
	vz := -0.05
	vx, vy := math.Sqrt(1-vz*vz)*math.Cos(towerA), math.Sqrt(1-vz*vz)*math.Sin(towerA)
	accelDist, _, decelDist, top := trapezoid(distance, 800, 0, 0, 60)
	dda := motion.NewDDA(motion.MoveParams{
		TotalDistance:   distance,
		AccelDistance:   accelDist,
		DecelDistance:   decelDist,
		StartSpeed:      0,
		TopSpeed:        top,
		EndSpeed:        0,
		Acceleration:    800,
		DirectionVector: []float64{vx, vy, vz},
		IsDeltaMovement: true,
	}, clockRate)

	a2plusb2 := vx*vx + vy*vy
	return Scenario{
		Name:       "delta-reversal",
		IsDelta:    true,
		TotalSteps: totalSteps,
		DDA:        dda,
		PrepParams: motion.PrepParams{
			InitialX:           120 * math.Cos(towerA),
			InitialY:           120 * math.Sin(towerA),
			DiagonalSquared:    diagonalSquared,
			A2PlusB2:           a2plusb2,
			A2B2D2:             a2plusb2 * diagonalSquared,
			DecelStartDistance: distance - decelDist,
			TopSpeedTimesCdivA: dda.TopSpeedTimesCdivA,
		},
	}
}

func extruderRetraction(clockRate uint64) Scenario {
	const totalSteps = 100
	const stepsPerMm = 415.0
	distance := totalSteps / stepsPerMm

	dda := motion.NewDDA(motion.MoveParams{
		TotalDistance:   distance,
		AccelDistance:   distance * 0.3,
		DecelDistance:   distance * 0.7,
		StartSpeed:      10,
		TopSpeed:        10,
		EndSpeed:        0,
		Acceleration:    2000,
		DirectionVector: []float64{1, 0, 0, 1},
	}, clockRate)

	return Scenario{
		Name:           "extruder-retraction-with-pa",
		IsExtruder:     true,
		TotalSteps:     totalSteps,
		DDA:            dda,
		DoCompensation: true,
		ExtruderIndex:  0,
		PrepParams: motion.PrepParams{
			DecelStartDistance: distance * 0.3,
			TopSpeedTimesCdivA: dda.TopSpeedTimesCdivA,
			CompFactor:         0.5,
		},
	}
}

func lastStepClamp(clockRate uint64) Scenario {
	const totalSteps = 200
	const stepsPerMm = 100.0
	distance := totalSteps / stepsPerMm

	accelDist, _, decelDist, top := trapezoid(distance, 3000, 0, 0.01, 40)
	dda := motion.NewDDA(motion.MoveParams{
		TotalDistance:   distance,
		AccelDistance:   accelDist,
		DecelDistance:   decelDist,
		StartSpeed:      0,
		TopSpeed:        top,
		EndSpeed:        0.01,
		Acceleration:    3000,
		DirectionVector: []float64{1, 0, 0},
	}, clockRate)

	return Scenario{
		Name:       "last-step-clamp",
		TotalSteps: totalSteps,
		DDA:        dda,
		PrepParams: motion.PrepParams{
			DecelStartDistance: distance - decelDist,
			TopSpeedTimesCdivA: dda.TopSpeedTimesCdivA,
		},
	}
}

func scenarioByName(name string, clockRate uint64, diagonalSquared float64) (Scenario, bool) {
	switch name {
	case "cartesian-unit-move":
		return cartesianUnitMove(clockRate), true
	case "cartesian-cruise-only":
		return cartesianCruiseOnly(clockRate), true
	case "delta-pure-z":
		return deltaPureZ(clockRate, diagonalSquared), true
	case "delta-reversal":
		return deltaReversal(clockRate, diagonalSquared), true
	case "extruder-retraction":
		return extruderRetraction(clockRate), true
	case "last-step-clamp":
		return lastStepClamp(clockRate), true
	default:
		return Scenario{}, false
	}
}
