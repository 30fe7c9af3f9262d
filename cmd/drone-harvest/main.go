package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/lixenwraith/drone-harvest/audio"
	"github.com/lixenwraith/drone-harvest/config"
	"github.com/lixenwraith/drone-harvest/core"
	"github.com/lixenwraith/drone-harvest/engine"
	"github.com/lixenwraith/drone-harvest/orchestrator"
	"github.com/lixenwraith/drone-harvest/parameter"
	"github.com/lixenwraith/drone-harvest/trace"
)

var (
	configFlag   = flag.String("config", "", "Scene YAML file, built-in scene when empty")
	seedFlag     = flag.Uint64("seed", 0, "Override the scene seed, 0 keeps the configured one")
	headlessFlag = flag.Bool("headless", false, "Run without the console and print delivered counts")
	ticksFlag    = flag.Int("ticks", 60*60*5, "Ticks to run in headless mode")
	journalFlag  = flag.String("journal", "", "Write every event to a zstd JSONL journal")
	pathsFlag    = flag.String("paths", "", "Trace flight paths and write them as GeoJSON on exit")
	audioFlag    = flag.Bool("audio", false, "Play a chime on every delivery")
	debugFlag    = flag.Bool("debug", false, "Write debug logs to logs/drone-harvest.log")
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	flag.Parse()

	logger, logFile := setupLogging(*debugFlag)
	if logFile != nil {
		defer logFile.Close()
	}

	if err := run(logger); err != nil {
		fmt.Fprintf(os.Stderr, "drone-harvest: %v\n", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg := config.Default()
	if *configFlag != "" {
		loaded, err := config.Load(*configFlag)
		if err != nil {
			return err
		}
		cfg = loaded
		logger.Info("config loaded", "path", *configFlag)
	}
	if *seedFlag != 0 {
		cfg.Seed = *seedFlag
	}

	ctrl, err := orchestrator.New(cfg, orchestrator.Options{Logger: logger})
	if err != nil {
		return err
	}

	if *journalFlag != "" {
		j, err := trace.Create(*journalFlag, ctrl.Session())
		if err != nil {
			return err
		}
		ctrl.World().RegisterHandler(j)
		defer func() {
			if err := j.Close(); err != nil {
				logger.Error("journal close", "error", err)
			}
		}()
	}

	if *pathsFlag != "" {
		ctrl.SetPathTracing(true)
		defer writePaths(ctrl, *pathsFlag, logger)
	}

	if *audioFlag {
		chime := audio.NewChime(parameter.AudioVolume)
		if err := chime.Start(); err != nil {
			logger.Warn("audio disabled", "error", err)
		} else {
			ctrl.World().RegisterHandler(chime)
			defer chime.Stop()
		}
	}

	if *headlessFlag {
		return runHeadless(ctrl, *ticksFlag, os.Stdout)
	}
	return runConsole(context.Background(), ctrl)
}

// runHeadless steps the world ticks times at the fixed interval and prints delivered counts
func runHeadless(ctrl *orchestrator.Controller, ticks int, out io.Writer) error {
	for range ticks {
		ctrl.Step(parameter.TickInterval)
	}
	ctrl.Refresh()
	printCounts(out, ctrl)
	return nil
}

func printCounts(out io.Writer, ctrl *orchestrator.Controller) {
	counts := ctrl.Counts()
	factions := make([]int, 0, len(counts))
	for f := range counts {
		factions = append(factions, f)
	}
	slices.Sort(factions)

	fmt.Fprintf(out, "session %s, %d ticks\n", ctrl.Session(), ctrl.World().TickCount())
	for _, f := range factions {
		fmt.Fprintf(out, "faction %d: %d delivered, %d claimed\n", f, counts[f], ctrl.Tally().Claimed(f))
	}
}

func writePaths(ctrl *orchestrator.Controller, path string, logger *slog.Logger) {
	fleets := make([]trace.Fleet, 0, len(ctrl.Bases()))
	for _, b := range ctrl.Bases() {
		fleets = append(fleets, b)
	}
	var raw []byte
	var err error
	ctrl.World().RunSafe(func() {
		raw, err = trace.PathsGeoJSON(fleets...)
	})
	if err == nil {
		err = os.WriteFile(path, raw, 0o644)
	}
	if err != nil {
		logger.Error("write paths", "path", path, "error", err)
		return
	}
	logger.Info("paths written", "path", path, "bytes", len(raw))
}

// newScheduler wires a pausable clock to the controller's world
func newScheduler(ctrl *orchestrator.Controller) (*engine.ClockScheduler, <-chan struct{}) {
	clock := engine.NewPausableClock(nil)
	return engine.NewClockScheduler(ctrl.World(), clock, parameter.TickInterval)
}
