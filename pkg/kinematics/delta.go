// Delta kinematics implementation for linear delta 3D printers.
package kinematics

import (
	"fmt"
	"math"
)

// SLOW_RATIO determines how far out from the towers the reachable radius is
// derated before a move would need excessive single-tower travel.
const SLOW_RATIO = 3.0

// DeltaKinematics carries the tower geometry the step-timing engine reads
// through TowerX/TowerY, plus the reachable envelope reported at startup.
type DeltaKinematics struct {
	*BaseKinematics

	towers [][2]float64 // Tower XY positions, indexed by drive
	limitZ float64      // Z height above which the printable radius tapers
}

// DeltaConfig contains configuration for delta kinematics
type DeltaConfig struct {
	Radius        float64   // Delta radius
	ArmLengths    []float64 // Arm lengths [A, B, C]
	Angles        []float64 // Tower angles in degrees [A, B, C], default [210, 330, 90]
	Endstops      []float64 // Endstop positions for each tower
	PrintRadius   float64   // Maximum print radius (optional, defaults to radius)
	MinZ          float64   // Minimum Z position
	StepDistances []float64 // Step distances for each stepper
}

// NewDeltaKinematics creates a new delta kinematics instance.
func NewDeltaKinematics(cfg DeltaConfig) (*DeltaKinematics, error) {
	if cfg.Radius <= 0 {
		return nil, fmt.Errorf("delta_radius must be positive")
	}
	if len(cfg.ArmLengths) != 3 {
		return nil, fmt.Errorf("delta requires exactly 3 arm lengths")
	}
	for i, arm := range cfg.ArmLengths {
		if arm <= cfg.Radius {
			return nil, fmt.Errorf("arm_length[%d] must be greater than radius", i)
		}
	}
	if len(cfg.Endstops) != 3 {
		return nil, fmt.Errorf("delta requires exactly 3 endstop positions")
	}

	angles := cfg.Angles
	if len(angles) != 3 {
		angles = []float64{210.0, 330.0, 90.0}
	}

	arm2 := make([]float64, 3)
	for i, arm := range cfg.ArmLengths {
		arm2[i] = arm * arm
	}

	towers := make([][2]float64, 3)
	for i, angle := range angles {
		rad := angle * math.Pi / 180.0
		towers[i] = [2]float64{
			math.Cos(rad) * cfg.Radius,
			math.Sin(rad) * cfg.Radius,
		}
	}

	radius2 := cfg.Radius * cfg.Radius
	absEndstops := make([]float64, 3)
	for i := range cfg.Endstops {
		absEndstops[i] = cfg.Endstops[i] + math.Sqrt(arm2[i]-radius2)
	}

	maxZ := cfg.Endstops[0]
	for _, ep := range cfg.Endstops[1:] {
		if ep < maxZ {
			maxZ = ep
		}
	}

	minArmLength := cfg.ArmLengths[0]
	for _, arm := range cfg.ArmLengths[1:] {
		if arm < minArmLength {
			minArmLength = arm
		}
	}
	limitZ := absEndstops[0] - cfg.ArmLengths[0]
	for i := 1; i < 3; i++ {
		lz := absEndstops[i] - cfg.ArmLengths[i]
		if lz < limitZ {
			limitZ = lz
		}
	}

	printRadius := cfg.PrintRadius
	if printRadius <= 0 {
		printRadius = cfg.Radius
	}

	halfMinStepDist := 0.01
	if len(cfg.StepDistances) >= 3 {
		halfMinStepDist = cfg.StepDistances[0]
		for _, sd := range cfg.StepDistances[1:] {
			if sd < halfMinStepDist {
				halfMinStepDist = sd
			}
		}
		halfMinStepDist *= 0.5
	}

	minArm2 := minArmLength * minArmLength

	// ratioToXY finds the XY radius at which an XY move would need a
	// tower to move `ratio` times as fast as the effector.
	ratioToXY := func(ratio float64) float64 {
		return ratio*math.Sqrt(minArm2/(ratio*ratio+1.0)-halfMinStepDist*halfMinStepDist) +
			halfMinStepDist - cfg.Radius
	}

	maxXY := printRadius
	if minArmLength-cfg.Radius < maxXY {
		maxXY = minArmLength - cfg.Radius
	}
	if r4 := ratioToXY(4.0 * SLOW_RATIO); r4 < maxXY {
		maxXY = r4
	}

	rails := make([]Rail, 3)
	for i, axis := range []string{"a", "b", "c"} {
		rails[i] = Rail{
			Name:        "stepper_" + axis,
			PositionMin: cfg.MinZ,
			PositionMax: maxZ,
		}
	}

	dk := &DeltaKinematics{
		BaseKinematics: NewBaseKinematics(rails),
		towers:         towers,
		limitZ:         limitZ,
	}

	dk.AxesMin = []float64{-maxXY, -maxXY, cfg.MinZ}
	dk.AxesMax = []float64{maxXY, maxXY, maxZ}

	return dk, nil
}

// GetType returns the kinematic type name.
func (dk *DeltaKinematics) GetType() string {
	return "delta"
}

// TowerX and TowerY satisfy motion.TowerGeometry: they are the only points
// at which the step-timing engine looks at this kinematics model, at
// Prepare time, once per drive per segment. drive is the tower index
// (0, 1, 2), matching the order towers were built in NewDeltaKinematics.
func (dk *DeltaKinematics) TowerX(drive int) float64 {
	return dk.towers[drive][0]
}

func (dk *DeltaKinematics) TowerY(drive int) float64 {
	return dk.towers[drive][1]
}

// GetStatus returns the machine's reachable envelope.
func (dk *DeltaKinematics) GetStatus() map[string]interface{} {
	return map[string]interface{}{
		"axis_minimum": dk.AxesMin,
		"axis_maximum": dk.AxesMax,
		"cone_start_z": dk.limitZ,
	}
}
