// Package testutil provides shared test fixtures for driving the
// tracking pipeline from other packages.
//
// This package centralises common fixture builders to reduce code
// duplication across test files. The tracking package's own tests use
// in-package helpers instead; importing this package there would be an
// import cycle.
package testutil

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/Bentlybro/camai/internal/tracking"
)

// Det builds a detection with the standard test confidence.
func Det(class string, box image.Rectangle) tracking.Detection {
	return tracking.Detection{
		Class:      class,
		Confidence: 0.9,
		Box:        box,
	}
}

// ClassifiedDet builds a detection carrying classifier output.
func ClassifiedDet(class string, box image.Rectangle, signature, color, description string) tracking.Detection {
	d := Det(class, box)
	d.Signature = signature
	d.Color = color
	d.Description = description
	return d
}

// WriteFile writes content under a test temp dir and returns the full
// path. The file is cleaned up with the test.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}
