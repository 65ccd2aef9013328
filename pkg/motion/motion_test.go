package motion

// fakePlatform is a minimal Platform for tests: fixed steps/mm and pressure
// advance, with direction changes recorded instead of latched to a pin.
type fakePlatform struct {
	stepsPerUnit    map[int]float64
	pressureAdvance map[int]float64
	directions      []bool
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		stepsPerUnit:    make(map[int]float64),
		pressureAdvance: make(map[int]float64),
	}
}

func (p *fakePlatform) DriveStepsPerUnit(drive int) float64 {
	if v, ok := p.stepsPerUnit[drive]; ok {
		return v
	}
	return 1
}

func (p *fakePlatform) GetPressureAdvance(extruderIndex int) float64 {
	return p.pressureAdvance[extruderIndex]
}

func (p *fakePlatform) SetDirection(drive int, forward bool) {
	p.directions = append(p.directions, forward)
}

// fakeGeometry places three towers on a 120 degree circle of the given
// radius, matching the layout PrepareDeltaAxis expects from TowerGeometry.
type fakeGeometry struct {
	x, y [3]float64
}

func newFakeGeometry(radius float64) *fakeGeometry {
	return &fakeGeometry{
		x: [3]float64{radius, -radius / 2, -radius / 2},
		y: [3]float64{0, radius * 0.866, -radius * 0.866},
	}
}

func (g *fakeGeometry) TowerX(drive int) float64 { return g.x[drive] }
func (g *fakeGeometry) TowerY(drive int) float64 { return g.y[drive] }

// runToCompletion drives dm to its last step by repeatedly invoking calc and
// then advancing NextStep by the batch size it reported, exactly as
// cmd/motion-sim/run.go's executor does. It returns the number of calc
// calls made and the final error, if any.
func runToCompletion(dm *DriveMovement, calc func() (bool, error)) (calls int, err error) {
	dm.NextStep = 1
	for dm.NextStep <= dm.TotalSteps {
		calls++
		more, callErr := calc()
		if callErr != nil {
			return calls, callErr
		}
		dm.NextStep += dm.StepsTillRecalc + 1
		dm.StepsTillRecalc = 0
		if !more {
			return calls, nil
		}
		if calls > 1_000_000 {
			panic("runToCompletion: recurrence never terminated")
		}
	}
	return calls, nil
}
