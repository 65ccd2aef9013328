package boardcfg

import (
	"os"
	"path/filepath"
	"testing"

	motionlog "github.com/feral42/RepRapFirmware/pkg/log"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "board.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoadCartesianAppliesDefaults(t *testing.T) {
	path := writeTempConfig(t, `
kind: cartesian
drives:
  - name: x
    steps_per_unit: 80
  - name: e0
    steps_per_unit: 415
    pressure_advance: 0.05
timing:
  clock_rate_hz: 48000000
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Timing.MinCalcIntervalCartesian != 60 {
		t.Errorf("MinCalcIntervalCartesian default = %d, want 60", cfg.Timing.MinCalcIntervalCartesian)
	}
	if cfg.Timing.MinCalcIntervalDelta != 100 {
		t.Errorf("MinCalcIntervalDelta default = %d, want 100", cfg.Timing.MinCalcIntervalDelta)
	}
	if cfg.Alloc != 32 {
		t.Errorf("Alloc default = %d, want 32", cfg.Alloc)
	}
}

func TestLoadRejectsUnknownKind(t *testing.T) {
	path := writeTempConfig(t, `
kind: polar
drives:
  - name: x
    steps_per_unit: 80
timing:
  clock_rate_hz: 48000000
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestLoadRequiresDeltaSectionForDeltaKind(t *testing.T) {
	path := writeTempConfig(t, `
kind: delta
drives:
  - name: tower_a
    steps_per_unit: 160
timing:
  clock_rate_hz: 48000000
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error when kind=delta has no delta section")
	}
}

func TestSimPlatformLooksUpByDriveIndex(t *testing.T) {
	cfg := &Config{
		Drives: []DriveConfig{
			{Name: "x", StepsPerUnit: 80},
			{Name: "y", StepsPerUnit: 80},
			{Name: "z", StepsPerUnit: 400},
			{Name: "e0", StepsPerUnit: 415, PressureAdvance: 0.05},
		},
	}
	p := NewSimPlatform(cfg, motionlog.New("test"))

	if got := p.DriveStepsPerUnit(0); got != 80 {
		t.Errorf("DriveStepsPerUnit(0) = %f, want 80", got)
	}
	if got := p.GetPressureAdvance(0); got != 0.05 {
		t.Errorf("GetPressureAdvance(0) = %f, want 0.05", got)
	}
	if got := p.DriveStepsPerUnit(99); got != 1 {
		t.Errorf("out-of-range DriveStepsPerUnit = %f, want default 1", got)
	}
}
