package transcribe

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bdougie/clipforge/internal/models"
)

func TestSrtPathFor(t *testing.T) {
	got := srtPathFor("/tmp/whisper_abc", "/work/audio_123.wav")
	assert.Equal(t, filepath.Join("/tmp/whisper_abc", "audio_123.srt"), got)
}

func TestJoinTranscript(t *testing.T) {
	captions := []models.CaptionSegment{
		{Start: 0, End: 2, Text: "hello there"},
		{Start: 2, End: 4, Text: "general kenobi"},
	}
	assert.Equal(t, "hello there general kenobi", joinTranscript(captions))
	assert.Equal(t, "", joinTranscript(nil))
}

func TestTail(t *testing.T) {
	assert.Equal(t, "short", tail("  short \n", 512))
	long := make([]byte, 600)
	for i := range long {
		long[i] = 'x'
	}
	assert.Len(t, tail(string(long), 512), 515)
}
