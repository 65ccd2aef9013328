package boardcfg

import (
	motionlog "github.com/feral42/RepRapFirmware/pkg/log"
	"github.com/feral42/RepRapFirmware/pkg/motion"
)

// SimPlatform implements motion.Platform against a loaded board profile,
// for use by a simulator that has no real GPIO to toggle. Direction
// changes are logged instead of latched to a pin.
type SimPlatform struct {
	cfg *Config
	log *motionlog.Logger
}

// NewSimPlatform wraps a board profile as a motion.Platform.
func NewSimPlatform(cfg *Config, log *motionlog.Logger) *SimPlatform {
	return &SimPlatform{cfg: cfg, log: log}
}

func (p *SimPlatform) DriveStepsPerUnit(drive int) float64 {
	if drive < 0 || drive >= len(p.cfg.Drives) {
		return 1
	}
	return p.cfg.Drives[drive].StepsPerUnit
}

func (p *SimPlatform) GetPressureAdvance(extruderIndex int) float64 {
	drive := motion.NumLinearAxes + extruderIndex
	if drive < 0 || drive >= len(p.cfg.Drives) {
		return 0
	}
	return p.cfg.Drives[drive].PressureAdvance
}

func (p *SimPlatform) SetDirection(drive int, forward bool) {
	p.log.WithField("drive", drive).WithField("forward", forward).Debug("direction latched")
}

// MotionConfig converts the loaded timing section into a motion.Config.
func (c *Config) MotionConfig() motion.Config {
	return motion.Config{
		MinCalcIntervalCartesian: c.Timing.MinCalcIntervalCartesian,
		MinCalcIntervalDelta:     c.Timing.MinCalcIntervalDelta,
	}
}
