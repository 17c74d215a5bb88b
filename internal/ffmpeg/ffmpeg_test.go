package ffmpeg

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeDuration(t *testing.T) {
	assert.Equal(t, 10.0, ComputeDuration(300, 30))
	assert.InDelta(t, 30.03, ComputeDuration(900, 29.97), 0.01)

	// Degenerate inputs yield zero rather than a division error.
	assert.Equal(t, 0.0, ComputeDuration(900, 0))
	assert.Equal(t, 0.0, ComputeDuration(900, -24))
	assert.Equal(t, 0.0, ComputeDuration(0, 30))
}

func TestParseFrameRate(t *testing.T) {
	assert.Equal(t, 30.0, parseFrameRate("30/1"))
	assert.InDelta(t, 29.97, parseFrameRate("30000/1001"), 0.001)
	assert.Equal(t, 25.0, parseFrameRate("25"))
	assert.Equal(t, 0.0, parseFrameRate("30/0"))
	assert.Equal(t, 0.0, parseFrameRate("garbage"))
	assert.Equal(t, 0.0, parseFrameRate(""))
}

func TestEscapeFilterPath(t *testing.T) {
	assert.Equal(t, `/tmp/captions.srt`, escapeFilterPath(`/tmp/captions.srt`))
	assert.Equal(t, `C\:\\clips\\captions.srt`, escapeFilterPath(`C:\clips\captions.srt`))
}

func TestTrimOutput(t *testing.T) {
	assert.Equal(t, "short error", trimOutput([]byte("  short error \n")))

	long := make([]byte, 1024)
	for i := range long {
		long[i] = 'x'
	}
	trimmed := trimOutput(long)
	assert.Len(t, trimmed, 515)
	assert.Equal(t, "...", trimmed[:3])
}

func TestProbeMissingFile(t *testing.T) {
	r := NewRunner("", "", 0, nil)
	_, err := r.Probe(context.Background(), "/does/not/exist.mp4")
	assert.True(t, errors.Is(err, ErrAssetUnreadable))
}
