package motion

import "testing"

func TestHardwareClockTicksAdvance(t *testing.T) {
	clk := NewHardwareClock(1_000_000)
	first := clk.Ticks()
	second := clk.Ticks()
	if second < first {
		t.Errorf("Ticks went backwards: %d then %d", first, second)
	}
}
