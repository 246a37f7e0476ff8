package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/Bentlybro/camai/internal/config"
	"github.com/Bentlybro/camai/internal/monitoring"
	"github.com/Bentlybro/camai/internal/replay"
	"github.com/Bentlybro/camai/internal/timeutil"
	"github.com/Bentlybro/camai/internal/tracking"
	"github.com/Bentlybro/camai/internal/version"
)

const defaultTuningFile = "tuning.json"

func main() {
	var (
		fixturePath = flag.String("fixture", "", "JSONL detection fixture to replay")
		speed       = flag.Float64("speed", 0, "Playback rate: 1 = real time, 2 = double speed, 0 = unpaced")
		tuningPath  = flag.String("tuning", "", "JSON tuning override file (default: tuning.json if present)")
		quiet       = flag.Bool("quiet", false, "Suppress tracker diagnostics, keep the event stream and summary")
		plotDir     = flag.String("plot-dir", "", "Write summary plots to this directory")
		showVersion = flag.Bool("version", false, "Print version information and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("camai replay %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}
	if *fixturePath == "" {
		flag.Usage()
		log.Fatalf("-fixture is required")
	}

	cfg := loadConfig(*tuningPath)
	if *quiet {
		monitoring.SetLogger(nil)
	}

	frames, err := replay.LoadFixture(*fixturePath)
	if err != nil {
		log.Fatalf("Failed to load fixture: %v", err)
	}

	detector, err := tracking.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create detector: %v", err)
	}

	// Events stream to stdout as JSON lines; diagnostics go to stderr
	// through the standard logger.
	detector.Subscribe(func(ev tracking.Event) {
		line, err := json.Marshal(ev.Map())
		if err != nil {
			log.Printf("Failed to encode event %s: %v", ev.Type, err)
			return
		}
		fmt.Println(string(line))
	})

	var plotter *replay.Plotter
	if *plotDir != "" {
		plotter = replay.NewPlotter()
		if err := plotter.Start(*plotDir); err != nil {
			log.Fatalf("Failed to start plotter: %v", err)
		}
	}

	runner := &replay.Runner{
		Detector: detector,
		Clock:    timeutil.RealClock{},
		Speed:    *speed,
		Plotter:  plotter,
	}

	result, err := runner.Run(frames)
	if err != nil {
		log.Fatalf("Replay failed: %v", err)
	}

	log.Printf("Replayed %d frames (%d detections) in %s: %d events",
		result.Frames, result.Detections, result.Elapsed.Round(time.Millisecond), len(result.Events))

	counts := result.EventCounts()
	types := make([]string, 0, len(counts))
	for et := range counts {
		types = append(types, string(et))
	}
	sort.Strings(types)
	for _, et := range types {
		log.Printf("  %-20s %d", et, counts[tracking.EventType(et)])
	}

	stats := detector.ParkingStats()
	log.Printf("Final state: %d active tracks, %d parked, %d stopped",
		detector.ActiveCount(), stats.Parked, stats.Stopped)

	if plotter != nil {
		n, err := plotter.GeneratePlots()
		if err != nil {
			log.Fatalf("Failed to generate plots: %v", err)
		}
		log.Printf("Wrote %d plots to %s", n, *plotDir)
	}
}

// loadConfig resolves the tracking configuration. An explicitly named
// tuning file must exist; the default one is optional.
func loadConfig(path string) tracking.Config {
	cfg := tracking.DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = defaultTuningFile
	}

	tuning, err := config.LoadTuningConfig(path)
	switch {
	case err == nil:
		cfg = tuning.Apply(cfg)
		monitoring.SetDebug(tuning.GetDebug())
		log.Printf("Applied tuning overrides from %s", path)
	case !explicit && errors.Is(err, config.ErrNoTuningFile):
		// No tuning file, built-in defaults apply.
	default:
		log.Fatalf("Failed to load tuning config: %v", err)
	}
	return cfg
}
