package motion

import "testing"

func TestCartesianUnitMoveReachesLastStep(t *testing.T) {
	const totalSteps = 100
	const stepsPerMm = 100.0
	distance := float64(totalSteps) / stepsPerMm

	dda := NewDDA(MoveParams{
		TotalDistance:   distance,
		AccelDistance:   10 * 10 / (2 * 1000.0), // v^2 / 2a
		DecelDistance:   10 * 10 / (2 * 1000.0),
		StartSpeed:      0,
		TopSpeed:        10,
		EndSpeed:        0,
		Acceleration:    1000,
		DirectionVector: []float64{1, 0, 0},
	}, 48_000_000)

	pool := NewPool()
	pool.InitialAllocate(4)
	dm, err := pool.Allocate(XAxis, Idle)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	dm.TotalSteps = totalSteps

	pp := PrepParams{
		DecelStartDistance: distance - dda.DecelDistance,
		TopSpeedTimesCdivA: dda.TopSpeedTimesCdivA,
	}
	PrepareCartesianAxis(dm, dda, pp)

	platform := newFakePlatform()
	cfg := DefaultConfig()

	dm.State = Moving
	calls, err := runToCompletion(dm, func() (bool, error) {
		return CalcNextStepCartesian(dm, dda, cfg, false, platform)
	})
	if err != nil {
		t.Fatalf("CalcNextStepCartesian: %v", err)
	}
	if calls == 0 {
		t.Fatal("expected at least one recurrence call")
	}
	if dm.NextStepTime == 0 {
		t.Error("NextStepTime never advanced past zero")
	}
	// Batching should mean substantially fewer recompute calls than steps.
	if calls >= totalSteps {
		t.Errorf("batching had no effect: %d calls for %d steps", calls, totalSteps)
	}
}

func TestCartesianCruiseOnlyNeverDecelerates(t *testing.T) {
	const totalSteps = 500
	const stepsPerMm = 100.0
	distance := float64(totalSteps) / stepsPerMm

	dda := NewDDA(MoveParams{
		TotalDistance:   distance,
		AccelDistance:   0,
		DecelDistance:   0,
		StartSpeed:      20,
		TopSpeed:        20,
		EndSpeed:        20,
		Acceleration:    500,
		DirectionVector: []float64{1, 0, 0},
	}, 48_000_000)

	pool := NewPool()
	pool.InitialAllocate(4)
	dm, _ := pool.Allocate(XAxis, Idle)
	dm.TotalSteps = totalSteps

	pp := PrepParams{DecelStartDistance: distance, TopSpeedTimesCdivA: dda.TopSpeedTimesCdivA}
	PrepareCartesianAxis(dm, dda, pp)

	if dm.Cart.DecelStartStep != dm.TotalSteps+1 {
		t.Fatalf("expected no decel phase, DecelStartStep=%d TotalSteps=%d", dm.Cart.DecelStartStep, dm.TotalSteps)
	}

	platform := newFakePlatform()
	cfg := DefaultConfig()
	dm.State = Moving
	if _, err := runToCompletion(dm, func() (bool, error) {
		return CalcNextStepCartesian(dm, dda, cfg, false, platform)
	}); err != nil {
		t.Fatalf("CalcNextStepCartesian: %v", err)
	}
}

func TestStepsToLimitPrefersReversal(t *testing.T) {
	dm := &DriveMovement{TotalSteps: 100, ReverseStartStep: 40, NextStep: 1}
	if got := stepsToLimit(dm); got != 40 {
		t.Errorf("stepsToLimit = %d, want 40", got)
	}
	dm.NextStep = 41
	if got := stepsToLimit(dm); got != 100 {
		t.Errorf("stepsToLimit after reversal = %d, want 100", got)
	}
}

func TestBatchShiftIncreasesWithHeadroom(t *testing.T) {
	const minCalc = 60
	if s := batchShift(1000, minCalc, 1, 100); s != 0 {
		t.Errorf("slow step interval should not batch, got shift %d", s)
	}
	if s := batchShift(5, minCalc, 1, 100); s != 3 {
		t.Errorf("fast step interval with headroom should batch at shift 3, got %d", s)
	}
	if s := batchShift(5, minCalc, 97, 100); s == 3 {
		t.Errorf("batching should shrink near the horizon, got shift %d", s)
	}
}
