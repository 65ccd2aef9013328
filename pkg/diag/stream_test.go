package diag

import (
	"encoding/json"
	"testing"

	motionlog "github.com/feral42/RepRapFirmware/pkg/log"
)

func TestMarshalFrameRoundTrips(t *testing.T) {
	f := StepFrame{
		Segment:      1,
		Drive:        2,
		NextStep:     10,
		TotalSteps:   100,
		NextStepTime: 12345,
		StepInterval: 60,
		Direction:    true,
		State:        "moving",
	}

	data, err := MarshalFrame(f)
	if err != nil {
		t.Fatalf("MarshalFrame: %v", err)
	}

	var got StepFrame
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got != f {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, f)
	}
}

func TestPublishWithNoClientsDoesNotBlock(t *testing.T) {
	s := NewServer(motionlog.New("diag-test"))
	// No clients registered; Publish must be a no-op, not a blocking send.
	s.Publish(StepFrame{Segment: 1, Drive: 0})
}
