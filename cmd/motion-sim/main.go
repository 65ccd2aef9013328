// motion-sim is a command-line tool for exercising the step-timing engine
// in pkg/motion against a board profile and one of the seed move scenarios,
// without any real stepper hardware attached.
//
// Usage:
//
//	motion-sim -board boards/cartesian.yaml -scenario cartesian-unit-move
//
// Options:
//
//	-board string     Board profile YAML path (required)
//	-scenario string  Scenario to run: cartesian-unit-move, cartesian-cruise-only,
//	                  delta-pure-z, delta-reversal, extruder-retraction,
//	                  last-step-clamp, all (default: "all")
//	-listen string    Diagnostics websocket listen address (default: "127.0.0.1:8787")
//	-live             Call platform.SetDirection on reversal, as real firmware would
//	-log-file string  Also write logs to this file, rotating at 10MB (default: console only)
//
// Examples:
//
//	# Run every seed scenario for a cartesian board and stream diagnostics
//	motion-sim -board boards/cartesian.yaml -scenario all
//
//	# Watch a delta reversal in the browser dashboard while it runs
//	motion-sim -board boards/delta.yaml -scenario delta-reversal -listen :8787
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/feral42/RepRapFirmware/pkg/boardcfg"
	"github.com/feral42/RepRapFirmware/pkg/diag"
	"github.com/feral42/RepRapFirmware/pkg/kinematics"
	motionlog "github.com/feral42/RepRapFirmware/pkg/log"
	"github.com/feral42/RepRapFirmware/pkg/motion"
)

var scenarioNames = []string{
	"cartesian-unit-move",
	"cartesian-cruise-only",
	"delta-pure-z",
	"delta-reversal",
	"extruder-retraction",
	"last-step-clamp",
}

func main() {
	boardPath := flag.String("board", "", "Board profile YAML path (required)")
	scenarioFlag := flag.String("scenario", "all", "Scenario to run, or \"all\"")
	listen := flag.String("listen", "127.0.0.1:8787", "Diagnostics websocket listen address")
	live := flag.Bool("live", false, "Call platform.SetDirection on reversal, as real firmware would")
	logFile := flag.String("log-file", "", "Also write logs to this file, rotating at 10MB")
	flag.Parse()

	var log *motionlog.Logger
	if *logFile != "" {
		fileLog, writer, err := motionlog.NewConsoleAndFileLogger("motion-sim", motionlog.RotationConfig{
			Filename: *logFile,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to open -log-file %q: %v\n", *logFile, err)
			os.Exit(1)
		}
		defer writer.Close()
		log = fileLog
	} else {
		log = motionlog.New("motion-sim")
	}
	motionlog.ConfigureFromEnv(log)

	if *boardPath == "" {
		fmt.Fprintf(os.Stderr, "Error: -board is required\n")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := boardcfg.Load(*boardPath)
	if err != nil {
		log.WithError(err).Error("failed to load board profile")
		os.Exit(1)
	}

	var geom motion.TowerGeometry
	switch cfg.Kind {
	case "delta":
		dk, err := kinematics.NewDeltaKinematics(kinematics.DeltaConfig{
			Radius:      cfg.Delta.Radius,
			ArmLengths:  cfg.Delta.ArmLengths,
			Angles:      cfg.Delta.Angles,
			Endstops:    cfg.Delta.Endstops,
			PrintRadius: cfg.Delta.PrintRadius,
			MinZ:        cfg.Delta.MinZ,
		})
		if err != nil {
			log.WithError(err).Error("failed to build delta kinematics")
			os.Exit(1)
		}
		geom = dk
		reportDeltaEnvelope(dk, log)
	case "cartesian":
		reportCartesianEnvelope(cfg, log)
	}

	platform := boardcfg.NewSimPlatform(cfg, log)
	motionCfg := cfg.MotionConfig()

	diagServer := diag.NewServer(log)
	mux := http.NewServeMux()
	mux.Handle("/steps", diagServer)
	server := &http.Server{Addr: *listen, Handler: mux}
	go func() {
		log.WithField("addr", *listen).Info("diagnostics websocket listening on /steps")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("diagnostics server exited")
		}
	}()
	// Give a browser-based observer a moment to connect before the first
	// frames are published; a slow client only misses history, never
	// blocks the run (see diag.Server.Publish).
	time.Sleep(200 * time.Millisecond)

	names := scenarioNames
	if *scenarioFlag != "all" {
		names = []string{*scenarioFlag}
	}

	pool := motion.NewPool()
	pool.InitialAllocate(cfg.Alloc)

	exitCode := 0
	for i, name := range names {
		diagonalSquared := 0.0
		if cfg.Kind == "delta" {
			diagonalSquared = cfg.Delta.ArmLengths[0] * cfg.Delta.ArmLengths[0]
		}
		sc, ok := scenarioByName(name, cfg.Timing.ClockRateHz, diagonalSquared)
		if !ok {
			log.WithField("scenario", name).Error("unknown scenario")
			exitCode = 1
			continue
		}
		if sc.IsDelta != (cfg.Kind == "delta") {
			log.WithField("scenario", name).Warn("scenario kind does not match board kind, skipping")
			continue
		}

		if err := runScenario(i, sc, pool, geom, platform, motionCfg, *live, diagServer, log); err != nil {
			log.WithField("scenario", name).WithError(err).Error("scenario failed")
			exitCode = 1
		}
	}

	server.Close()
	os.Exit(exitCode)
}

// runScenario allocates and prepares one DriveMovement per drive named in
// the scenario, then runs every drive to completion concurrently: nothing
// in pkg/motion couples one drive's recurrence to another's, and the pool's
// own lock (see pkg/motion/pool.go) makes concurrent Allocate/Release safe.
// Cartesian and delta scenarios drive every linear axis; extruder scenarios
// drive a single extruder.
func runScenario(segmentID int, sc Scenario, pool *motion.Pool, geom motion.TowerGeometry, platform motion.Platform, cfg motion.Config, live bool, out *diag.Server, log *motionlog.Logger) error {
	log.WithField("scenario", sc.Name).Info("running scenario")

	drives := []int{motion.XAxis, motion.YAxis, motion.ZAxis}
	if sc.IsExtruder {
		drives = []int{motion.NumLinearAxes + sc.ExtruderIndex}
	}

	var g errgroup.Group
	for _, drive := range drives {
		drive := drive
		g.Go(func() error {
			dm, err := pool.Allocate(drive, motion.Idle)
			if err != nil {
				return fmt.Errorf("allocate drive %d: %w", drive, err)
			}
			defer pool.Release(dm)
			dm.TotalSteps = sc.TotalSteps

			switch {
			case sc.IsExtruder:
				motion.PrepareExtruder(dm, sc.DDA, sc.PrepParams, sc.ExtruderIndex, sc.DoCompensation, platform)
			case sc.IsDelta:
				motion.PrepareDeltaAxis(dm, sc.DDA, sc.PrepParams, geom)
			default:
				motion.PrepareCartesianAxis(dm, sc.DDA, sc.PrepParams)
			}

			return runDrive(segmentID, dm, sc.DDA, cfg, sc.IsDelta, live, platform, out, log)
		})
	}
	return g.Wait()
}

// reportDeltaEnvelope logs the reachable envelope NewDeltaKinematics
// derived (axis minima and maxima, and the height at which the printable
// radius starts to taper), giving pkg/kinematics a concrete consumer
// outside of PrepareDeltaAxis's narrow TowerGeometry view.
func reportDeltaEnvelope(dk *kinematics.DeltaKinematics, log *motionlog.Logger) {
	status := dk.GetStatus()
	log.WithFields(motionlog.Fields{
		"axisMinimum": status["axis_minimum"],
		"axisMaximum": status["axis_maximum"],
		"coneStartZ":  status["cone_start_z"],
	}).Info("delta kinematics envelope")
}

// reportCartesianEnvelope builds a CartesianKinematics from the board
// profile's rails and logs its axis limits, giving that kept teacher code a
// consumer on the cartesian side of the simulator, symmetric with
// reportDeltaEnvelope.
func reportCartesianEnvelope(cfg *boardcfg.Config, log *motionlog.Logger) {
	rails := make([]kinematics.Rail, 0, 3)
	for i, axisName := range []string{"stepper_x", "stepper_y", "stepper_z"} {
		if i >= len(cfg.Drives) {
			break
		}
		rails = append(rails, kinematics.Rail{
			Name:     axisName,
			StepDist: 1 / cfg.Drives[i].StepsPerUnit,
		})
	}
	ck := kinematics.NewCartesianKinematics(rails)
	log.WithFields(motionlog.Fields{
		"type":   ck.GetType(),
		"limits": ck.GetLimits(),
	}).Info("cartesian kinematics envelope")
}
