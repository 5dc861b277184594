package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/springbone/omath"
	"github.com/oomph-ac/springbone/scheduler"
	"github.com/oomph-ac/springbone/settings"
	"github.com/sirupsen/logrus"
)

// The following program loads a rig and simulates its springs on a simulated clock, then prints
// the local rotation every simulated bone ended up with.
func main() {
	settingsPath := flag.String("settings", "settings.toml", "path to the settings file, created with defaults when absent")
	rigPath := flag.String("rig", "", "path to the rig file")
	frames := flag.Int("frames", 120, "number of ticks to simulate")
	flag.Parse()

	log := logrus.New()
	log.Formatter = &logrus.TextFormatter{ForceColors: true}

	if *rigPath == "" {
		fmt.Println("Usage: ./springbone -rig <rig.toml> [-settings <settings.toml>] [-frames <n>]")
		return
	}

	if _, err := os.Stat(*settingsPath); os.IsNotExist(err) {
		if err := settings.SaveDefault(*settingsPath); err != nil {
			log.Fatalf("unable to create default settings: %v", err)
		}
	}
	s, err := settings.Load(*settingsPath)
	if err != nil {
		log.Fatalf("unable to load settings: %v", err)
	}
	lvl, _ := s.LogLevel()
	log.SetLevel(lvl)

	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: dsn}); err != nil {
			log.Errorf("sentry disabled: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	if os.Getenv("PPROF_ENABLED") != "" {
		// set configurations before calling `statsview.New()` method
		viewer.SetConfiguration(viewer.WithTheme(viewer.ThemeWesteros), viewer.WithAddr("localhost:8080"))

		mgr := statsview.New()
		go mgr.Start()
		defer mgr.Stop()
	}

	sk, rig, err := settings.LoadRig(*rigPath)
	if err != nil {
		log.Fatalf("unable to load rig: %v", err)
	}
	if !s.Simulation.Enabled {
		log.Info("simulation is disabled in the settings")
		return
	}

	opts := scheduler.Options{Parallel: s.Simulation.Parallel, Workers: s.Simulation.Workers}
	if log.IsLevelEnabled(logrus.TraceLevel) {
		opts.Debugf = log.Tracef
	}
	sim := scheduler.New(log, opts)
	inst, err := sim.AddInstance("main", sk, rig)
	if err != nil {
		log.Fatalf("unable to add rig: %v", err)
	}

	sc := scheduler.NewContext(s.Simulation.FrameRate, time.Duration(s.Simulation.MaxDeltaTime*float64(time.Second)))
	now := time.Now()
	for i := 0; i < *frames; i++ {
		report := sim.Tick(sc, now)
		log.Debugf("tick %d: dt=%.4fs springs=%d commands=%d errors=%d", i, report.DeltaTime, report.Springs, report.Commands, len(report.Errors))
		now = now.Add(sc.FrameDuration)
	}

	stats := sim.Stats()
	log.Infof("simulated %d ticks: mean dt %.4fs, mean commands %.1f, mean tick time %v", *frames, stats.MeanDeltaTime, stats.MeanCommands, stats.MeanDuration)

	resolved := inst.Resolved()
	for _, sp := range resolved.Springs {
		for _, jh := range sp.Joints {
			j := resolved.Joints[jh]
			if !sk.BoneExists(j.Bone) {
				continue
			}
			q := sk.LocalRotation(j.Bone)
			axis := omath.SafeNormalize(q.V, mgl64.Vec3{1, 0, 0})
			fmt.Printf("%s/%s: %.2f° about %v\n", sp.Name, j.Name, mgl64.RadToDeg(omath.QuatAngle(q)), omath.RoundVec64(axis, 4))
		}
	}
}
