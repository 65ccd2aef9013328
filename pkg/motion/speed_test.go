package motion

import "testing"

func TestReduceSpeedCartesianForcesCruiseOnly(t *testing.T) {
	dm := &DriveMovement{
		Kind: KindCartesian,
		Cart: CartesianParams{
			AccelStopStep:                5,
			DecelStartStep:               50,
			MmPerStepTimesCKdivTopSpeed:  1000,
		},
	}
	ReduceSpeed(dm, &DDA{}, 2.0)

	if dm.Cart.AccelStopStep != 0 {
		t.Errorf("AccelStopStep = %d, want 0", dm.Cart.AccelStopStep)
	}
	if dm.Cart.DecelStartStep != noDecelSentinel {
		t.Errorf("DecelStartStep = %d, want sentinel", dm.Cart.DecelStartStep)
	}
	if dm.Cart.MmPerStepTimesCKdivTopSpeed != 2000 {
		t.Errorf("MmPerStepTimesCKdivTopSpeed = %d, want 2000", dm.Cart.MmPerStepTimesCKdivTopSpeed)
	}
}

func TestReduceSpeedDeltaForcesCruiseOnly(t *testing.T) {
	dm := &DriveMovement{
		Kind: KindDelta,
		Delta: DeltaParams{
			AccelStopDsK:                 100,
			DecelStartDsK:                9000,
			MmPerStepTimesCKdivTopSpeed:  500,
		},
	}
	ReduceSpeed(dm, &DDA{}, 0.5)

	if dm.Delta.AccelStopDsK != 0 {
		t.Errorf("AccelStopDsK = %d, want 0", dm.Delta.AccelStopDsK)
	}
	if dm.Delta.DecelStartDsK != deltaSentinelDecelStartDsK {
		t.Errorf("DecelStartDsK = %d, want sentinel", dm.Delta.DecelStartDsK)
	}
	if dm.Delta.MmPerStepTimesCKdivTopSpeed != 250 {
		t.Errorf("MmPerStepTimesCKdivTopSpeed = %d, want 250", dm.Delta.MmPerStepTimesCKdivTopSpeed)
	}
}
