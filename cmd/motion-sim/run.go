package main

import (
	"fmt"

	"github.com/feral42/RepRapFirmware/pkg/diag"
	motionlog "github.com/feral42/RepRapFirmware/pkg/log"
	"github.com/feral42/RepRapFirmware/pkg/motion"
)

// runDrive drives one DriveMovement to completion, playing the role the
// step-generation interrupt and its surrounding scheduling loop play on
// real hardware: it calls the batch recompute functions in pkg/motion only
// when a batch is exhausted, and fills in the steps within a batch by
// linear interpolation between the last computed time and the freshly
// computed one, exactly as the batching design in the recurrence assumes.
func runDrive(segmentID int, dm *motion.DriveMovement, dda *motion.DDA, cfg motion.Config, isDelta bool, live bool, platform motion.Platform, out *diag.Server, log *motionlog.Logger) error {
	dm.State = motion.Moving
	dm.NextStep = 1

	for dm.NextStep <= dm.TotalSteps {
		lastTime := dm.NextStepTime

		var more bool
		var err error
		if isDelta {
			more, err = motion.CalcNextStepDelta(dm, dda, cfg, live, platform)
		} else {
			more, err = motion.CalcNextStepCartesian(dm, dda, cfg, live, platform)
		}
		if err != nil {
			log.WithField("drive", dm.Drive).WithError(err).Error("step-timing fault")
			return err
		}

		batchSize := dm.StepsTillRecalc + 1
		endpoint := dm.NextStepTime
		for i := uint32(0); i < batchSize && dm.NextStep <= dm.TotalSteps; i++ {
			t := lastTime + (i+1)*dm.StepInterval
			if i == batchSize-1 {
				t = endpoint
			}
			out.Publish(diag.StepFrame{
				Segment:      segmentID,
				Drive:        dm.Drive,
				NextStep:     dm.NextStep,
				TotalSteps:   dm.TotalSteps,
				NextStepTime: t,
				StepInterval: dm.StepInterval,
				Direction:    dm.Direction,
				State:        dm.State.String(),
			})
			dm.NextStep++
		}
		dm.StepsTillRecalc = 0

		if !more {
			break
		}
	}

	if dm.State == motion.StepError {
		return fmt.Errorf("drive %d: step-timing engine reported a fault", dm.Drive)
	}
	return nil
}
