package replay

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/Bentlybro/camai/internal/geom"
	"github.com/Bentlybro/camai/internal/tracking"
)

// Plotter records detection positions and tracker occupancy over a
// replay run, accumulating time series that can be plotted after the
// run completes.
type Plotter struct {
	mu        sync.Mutex
	enabled   bool
	outputDir string

	// paths holds per-class detection centers in frame order.
	paths map[string][]pathPoint

	// eventMarks holds recording offsets (seconds) of emitted events.
	eventMarks map[tracking.EventType][]float64

	counts   []countSample
	frameIdx int
}

// pathPoint is one detection center in image coordinates.
type pathPoint struct {
	FrameIdx int
	X        float64
	Y        float64
}

// countSample is one snapshot of tracker occupancy.
type countSample struct {
	FrameIdx   int
	Offset     float64 // seconds since recording start
	Detections int
	Active     int
	Stopped    int
	Parked     int
}

// NewPlotter creates a plotter. Call Start before sampling.
func NewPlotter() *Plotter {
	return &Plotter{
		paths:      make(map[string][]pathPoint),
		eventMarks: make(map[tracking.EventType][]float64),
	}
}

// Start initializes the plotter for a new run, creating outputDir if
// needed.
func (p *Plotter) Start(outputDir string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	p.outputDir = outputDir
	p.enabled = true
	p.frameIdx = 0
	p.paths = make(map[string][]pathPoint)
	p.eventMarks = make(map[tracking.EventType][]float64)
	p.counts = nil
	return nil
}

// Stop disables sampling. Call GeneratePlots() to produce output files.
func (p *Plotter) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enabled = false
}

// IsEnabled returns true if the plotter is currently recording.
func (p *Plotter) IsEnabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

// Sample captures one frame's detections, the events that frame
// emitted, and the tracker state after the frame was processed. Call
// once per replayed frame.
func (p *Plotter) Sample(frame Frame, det *tracking.Detector, events []tracking.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.enabled || det == nil {
		return
	}

	for _, d := range frame.Dets {
		c := geom.Center(d.Box)
		p.paths[d.Class] = append(p.paths[d.Class], pathPoint{
			FrameIdx: p.frameIdx,
			X:        c.X,
			Y:        c.Y,
		})
	}
	for _, ev := range events {
		p.eventMarks[ev.Type] = append(p.eventMarks[ev.Type], frame.Offset.Seconds())
	}

	stats := det.ParkingStats()
	p.counts = append(p.counts, countSample{
		FrameIdx:   p.frameIdx,
		Offset:     frame.Offset.Seconds(),
		Detections: len(frame.Dets),
		Active:     det.ActiveCount(),
		Stopped:    stats.Stopped,
		Parked:     stats.Parked,
	})
	p.frameIdx++
}

// SampleCount returns the number of frames sampled so far.
func (p *Plotter) SampleCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.counts)
}

// GeneratePlots writes the accumulated series as PNG files and returns
// the number of plots produced.
func (p *Plotter) GeneratePlots() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.outputDir == "" {
		return 0, fmt.Errorf("no output directory configured")
	}
	if len(p.counts) == 0 {
		return 0, nil
	}

	plotCount := 0
	if len(p.paths) > 0 {
		if err := p.generatePathsPlot(); err != nil {
			return plotCount, fmt.Errorf("scene paths: %w", err)
		}
		plotCount++
	}
	if err := p.generateCountsPlot(); err != nil {
		return plotCount, fmt.Errorf("track counts: %w", err)
	}
	plotCount++
	if len(p.eventMarks) > 0 {
		if err := p.generateEventTimelinePlot(); err != nil {
			return plotCount, fmt.Errorf("event timeline: %w", err)
		}
		plotCount++
	}

	return plotCount, nil
}

// generatePathsPlot draws detection centers per class as connected
// paths in image coordinates. The y-axis is inverted so the plot
// matches the camera frame orientation.
func (p *Plotter) generatePathsPlot() error {
	pl := plot.New()
	pl.Title.Text = "Detection paths by class"
	pl.X.Label.Text = "X (px)"
	pl.Y.Label.Text = "Y (px, image top at top)"

	classes := make([]string, 0, len(p.paths))
	for class := range p.paths {
		classes = append(classes, class)
	}
	sort.Strings(classes)

	colors := generateColors(len(classes))
	maxY := 0.0
	for _, points := range p.paths {
		for _, pt := range points {
			if pt.Y > maxY {
				maxY = pt.Y
			}
		}
	}

	for i, class := range classes {
		points := p.paths[class]
		pts := make(plotter.XYs, len(points))
		for j, pt := range points {
			pts[j] = plotter.XY{X: pt.X, Y: maxY - pt.Y}
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = colors[i]
		line.Width = vg.Points(1)
		pl.Add(line)
		pl.Legend.Add(class, line)
	}

	pl.Legend.Top = true
	pl.Legend.Left = false
	pl.Legend.XOffs = -10
	pl.Legend.YOffs = -10

	file := filepath.Join(p.outputDir, "scene_paths.png")
	if err := pl.Save(14*vg.Inch, 6*vg.Inch, file); err != nil {
		return fmt.Errorf("save %s: %w", file, err)
	}
	return nil
}

// generateCountsPlot draws detections per frame alongside the
// tracker's active, stopped, and parked counts over the recording
// timeline.
func (p *Plotter) generateCountsPlot() error {
	pl := plot.New()
	pl.Title.Text = "Tracker occupancy over time"
	pl.X.Label.Text = "Recording time (s)"
	pl.Y.Label.Text = "Count"

	series := []struct {
		label string
		value func(countSample) float64
	}{
		{"detections", func(s countSample) float64 { return float64(s.Detections) }},
		{"active tracks", func(s countSample) float64 { return float64(s.Active) }},
		{"stopped", func(s countSample) float64 { return float64(s.Stopped) }},
		{"parked", func(s countSample) float64 { return float64(s.Parked) }},
	}

	colors := generateColors(len(series))
	for i, sr := range series {
		pts := make(plotter.XYs, len(p.counts))
		for j, s := range p.counts {
			pts[j] = plotter.XY{X: s.Offset, Y: sr.value(s)}
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = colors[i]
		line.Width = vg.Points(1)
		pl.Add(line)
		pl.Legend.Add(sr.label, line)
	}

	pl.Legend.Top = true
	pl.Legend.Left = false
	pl.Legend.XOffs = -10
	pl.Legend.YOffs = -10

	file := filepath.Join(p.outputDir, "track_counts.png")
	if err := pl.Save(14*vg.Inch, 6*vg.Inch, file); err != nil {
		return fmt.Errorf("save %s: %w", file, err)
	}
	return nil
}

// generateEventTimelinePlot draws the cumulative count of emitted
// events per type over the recording timeline.
func (p *Plotter) generateEventTimelinePlot() error {
	pl := plot.New()
	pl.Title.Text = "Emitted events over time"
	pl.X.Label.Text = "Recording time (s)"
	pl.Y.Label.Text = "Cumulative events"

	types := make([]string, 0, len(p.eventMarks))
	for et := range p.eventMarks {
		types = append(types, string(et))
	}
	sort.Strings(types)

	colors := generateColors(len(types))
	for i, et := range types {
		marks := p.eventMarks[tracking.EventType(et)]
		pts := make(plotter.XYs, len(p.counts))
		fired := 0
		for j, s := range p.counts {
			for fired < len(marks) && marks[fired] <= s.Offset {
				fired++
			}
			pts[j] = plotter.XY{X: s.Offset, Y: float64(fired)}
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = colors[i]
		line.Width = vg.Points(1)
		pl.Add(line)
		pl.Legend.Add(et, line)
	}

	pl.Legend.Top = true
	pl.Legend.Left = false
	pl.Legend.XOffs = -10
	pl.Legend.YOffs = -10

	file := filepath.Join(p.outputDir, "event_timeline.png")
	if err := pl.Save(14*vg.Inch, 6*vg.Inch, file); err != nil {
		return fmt.Errorf("save %s: %w", file, err)
	}
	return nil
}

// GetOutputDir returns the configured output directory.
func (p *Plotter) GetOutputDir() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outputDir
}

// generateColors produces n visually distinct colors using HSL color
// space distribution.
func generateColors(n int) []color.Color {
	if n <= 0 {
		return nil
	}

	colors := make([]color.Color, n)
	for i := 0; i < n; i++ {
		hue := float64(i) / float64(n)
		r, g, b := hslToRGB(hue, 0.7, 0.5)
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

// hslToRGB converts HSL color values to RGB.
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	var rf, gf, bf float64

	if s == 0 {
		rf, gf, bf = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q
		rf = hueToRGB(p, q, h+1.0/3.0)
		gf = hueToRGB(p, q, h)
		bf = hueToRGB(p, q, h-1.0/3.0)
	}

	return uint8(rf * 255), uint8(gf * 255), uint8(bf * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	if t < 1.0/6.0 {
		return p + (q-p)*6*t
	}
	if t < 1.0/2.0 {
		return q
	}
	if t < 2.0/3.0 {
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
