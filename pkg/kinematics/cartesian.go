// Cartesian kinematics implementation for standard 3D printers.
package kinematics

// CartesianKinematics implements standard cartesian kinematics.
type CartesianKinematics struct {
	*BaseKinematics
}

// NewCartesianKinematics creates a new cartesian kinematics instance.
func NewCartesianKinematics(rails []Rail) *CartesianKinematics {
	return &CartesianKinematics{
		BaseKinematics: NewBaseKinematics(rails),
	}
}

// GetType returns the kinematic type name.
func (ck *CartesianKinematics) GetType() string {
	return "cartesian"
}
