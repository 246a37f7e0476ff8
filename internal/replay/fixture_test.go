package replay

import (
	"image"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bentlybro/camai/internal/testutil"
)

// writeFixture drops JSONL content into a temp file and returns its path.
func writeFixture(t *testing.T, content string) string {
	t.Helper()
	return testutil.WriteFile(t, "frames.jsonl", content)
}

func TestLoadFixture(t *testing.T) {
	t.Parallel()

	path := writeFixture(t, `# recorded 2025-04-08 front drive
{"t": 0, "w": 640, "h": 480, "dets": [{"class": "person", "confidence": 0.91, "bbox": [100, 100, 150, 220]}]}

{"t": 0.5, "w": 640, "h": 480, "dets": []}
{"t": 1.25, "w": 640, "h": 480, "dets": [{"class": "car", "confidence": 0.88, "bbox": [300, 200, 500, 320], "signature": "sig-1", "color": "red", "description": "red sedan"}]}
`)

	frames, err := LoadFixture(path)
	require.NoError(t, err)
	require.Len(t, frames, 3)

	assert.Equal(t, time.Duration(0), frames[0].Offset)
	assert.Equal(t, 640, frames[0].Width)
	assert.Equal(t, 480, frames[0].Height)
	require.Len(t, frames[0].Dets, 1)
	assert.Equal(t, "person", frames[0].Dets[0].Class)
	assert.Equal(t, 0.91, frames[0].Dets[0].Confidence)
	assert.Equal(t, image.Rect(100, 100, 150, 220), frames[0].Dets[0].Box)

	assert.Equal(t, 500*time.Millisecond, frames[1].Offset)
	assert.Empty(t, frames[1].Dets)

	assert.Equal(t, 1250*time.Millisecond, frames[2].Offset)
	require.Len(t, frames[2].Dets, 1)
	assert.Equal(t, "sig-1", frames[2].Dets[0].Signature)
	assert.Equal(t, "red", frames[2].Dets[0].Color)
	assert.Equal(t, "red sedan", frames[2].Dets[0].Description)
}

func TestLoadFixtureMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadFixture(filepath.Join(t.TempDir(), "nope.jsonl"))
	assert.Error(t, err)
}

func TestLoadFixtureBadJSON(t *testing.T) {
	t.Parallel()

	path := writeFixture(t, `{"t": 0, "w": 640, "h": 480, "dets": []}
{not json}
`)

	_, err := LoadFixture(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestLoadFixtureOutOfOrder(t *testing.T) {
	t.Parallel()

	path := writeFixture(t, `{"t": 2, "w": 640, "h": 480, "dets": []}
{"t": 1, "w": 640, "h": 480, "dets": []}
`)

	_, err := LoadFixture(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "earlier than the previous frame")
}

func TestLoadFixtureNegativeTimestamp(t *testing.T) {
	t.Parallel()

	path := writeFixture(t, `{"t": -1, "w": 640, "h": 480, "dets": []}`)

	_, err := LoadFixture(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "negative timestamp")
}

func TestLoadFixtureNoFrames(t *testing.T) {
	t.Parallel()

	path := writeFixture(t, "# just a comment\n\n")

	_, err := LoadFixture(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no frames")
}

func TestLoadFixtureEqualTimestampsAllowed(t *testing.T) {
	t.Parallel()

	path := writeFixture(t, `{"t": 1, "w": 640, "h": 480, "dets": []}
{"t": 1, "w": 640, "h": 480, "dets": []}
`)

	frames, err := LoadFixture(path)
	require.NoError(t, err)
	assert.Len(t, frames, 2)
}
