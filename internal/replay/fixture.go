// Package replay feeds recorded detection frames through the tracking
// pipeline, reproducing a camera session offline. Fixtures are JSONL
// files with one frame per line, timestamps expressed as offsets from
// the start of the recording.
package replay

import (
	"bufio"
	"encoding/json"
	"fmt"
	"image"
	"os"
	"strings"
	"time"

	"github.com/Bentlybro/camai/internal/tracking"
)

// maxFixtureLine caps a single frame record. Even a crowded frame with
// dozens of detections stays well under this.
const maxFixtureLine = 1 << 20 // 1MB

// Frame is one replayed detection cycle.
type Frame struct {
	// Offset is the frame's position on the recording timeline,
	// relative to the first frame.
	Offset time.Duration
	Width  int
	Height int
	Dets   []tracking.Detection
}

// frameRecord is the JSONL wire form of a Frame.
type frameRecord struct {
	T    float64           `json:"t"` // seconds since recording start
	W    int               `json:"w"`
	H    int               `json:"h"`
	Dets []detectionRecord `json:"dets"`
}

type detectionRecord struct {
	Class       string  `json:"class"`
	Confidence  float64 `json:"confidence"`
	BBox        [4]int  `json:"bbox"` // x0, y0, x1, y1 in pixels
	Signature   string  `json:"signature,omitempty"`
	Color       string  `json:"color,omitempty"`
	Description string  `json:"description,omitempty"`
}

// LoadFixture reads a JSONL detection fixture. Blank lines and lines
// starting with '#' are skipped. Frames must be in non-decreasing
// timestamp order.
func LoadFixture(path string) ([]Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFixtureLine)

	var frames []Frame
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var rec frameRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("fixture line %d: %w", lineNo, err)
		}
		if rec.T < 0 {
			return nil, fmt.Errorf("fixture line %d: negative timestamp %.3f", lineNo, rec.T)
		}

		frame := Frame{
			Offset: time.Duration(rec.T * float64(time.Second)),
			Width:  rec.W,
			Height: rec.H,
			Dets:   make([]tracking.Detection, 0, len(rec.Dets)),
		}
		for _, d := range rec.Dets {
			frame.Dets = append(frame.Dets, tracking.Detection{
				Class:       d.Class,
				Confidence:  d.Confidence,
				Box:         image.Rect(d.BBox[0], d.BBox[1], d.BBox[2], d.BBox[3]),
				Signature:   d.Signature,
				Color:       d.Color,
				Description: d.Description,
			})
		}

		if n := len(frames); n > 0 && frame.Offset < frames[n-1].Offset {
			return nil, fmt.Errorf("fixture line %d: timestamp %.3f is earlier than the previous frame", lineNo, rec.T)
		}
		frames = append(frames, frame)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("fixture %s contains no frames", path)
	}
	return frames, nil
}
