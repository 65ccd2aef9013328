// Package kinematics provides the tower/rail geometry backing the
// step-timing engine's Delta and Cartesian envelope reporting.
package kinematics

// Rail describes one stepper's travel range, used only to size the axis
// limits a kinematics implementation reports.
type Rail struct {
	Name        string
	StepDist    float64
	PositionMin float64
	PositionMax float64
}

// BaseKinematics holds the axis-limit bookkeeping shared by every
// kinematics implementation.
type BaseKinematics struct {
	Rails   []Rail
	Limits  [][2]float64
	AxesMin []float64
	AxesMax []float64
}

// NewBaseKinematics creates a new base kinematics instance.
func NewBaseKinematics(rails []Rail) *BaseKinematics {
	bk := &BaseKinematics{
		Rails:   rails,
		Limits:  make([][2]float64, len(rails)),
		AxesMin: make([]float64, len(rails)),
		AxesMax: make([]float64, len(rails)),
	}

	for i := range rails {
		bk.Limits[i] = [2]float64{1.0, -1.0} // unhomed state
		bk.AxesMin[i] = rails[i].PositionMin
		bk.AxesMax[i] = rails[i].PositionMax
	}

	return bk
}

// GetLimits returns the current axis limits.
func (bk *BaseKinematics) GetLimits() [][2]float64 {
	return bk.Limits
}
