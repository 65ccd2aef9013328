package motion

import "testing"

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.MinCalcIntervalCartesian != 60 {
		t.Errorf("MinCalcIntervalCartesian = %d, want 60", cfg.MinCalcIntervalCartesian)
	}
	if cfg.MinCalcIntervalDelta != 100 {
		t.Errorf("MinCalcIntervalDelta = %d, want 100", cfg.MinCalcIntervalDelta)
	}
}
