package subtitle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bdougie/clipforge/internal/models"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0.0, "00:00:00,000"},
		{65.25, "00:01:05,250"},
		{3661.75, "01:01:01,750"},
		{0.001, "00:00:00,001"},
		{59.999, "00:00:59,999"},
		{-1.0, "00:00:00,000"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatTimestamp(tt.seconds))
	}
}

func TestParseTimestamp(t *testing.T) {
	got, err := ParseTimestamp("01:01:01,750")
	require.NoError(t, err)
	assert.InDelta(t, 3661.75, got, 0.0001)

	_, err = ParseTimestamp("not a timecode")
	assert.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	captions := []models.CaptionSegment{
		{Start: 0.0, End: 2.5, Text: "welcome back everyone"},
		{Start: 65.25, End: 68.0, Text: "wait, what?"},
		{Start: 3661.75, End: 3665.0, Text: "that is all for today"},
	}

	decoded := Parse(Marshal(captions))
	require.Len(t, decoded, len(captions))

	for i, c := range captions {
		assert.InDelta(t, c.Start, decoded[i].Start, 0.0005)
		assert.InDelta(t, c.End, decoded[i].End, 0.0005)
		assert.Equal(t, c.Text, decoded[i].Text)
	}
}

func TestParseMultiLineCue(t *testing.T) {
	srt := "1\n00:00:00,000 --> 00:00:01,830\nI'm happy to\nhave you here today.\n\n" +
		"2\n00:00:01,910 --> 00:00:03,610\nAs I'm sure you're all aware\n\n"

	captions := Parse([]byte(srt))
	require.Len(t, captions, 2)
	assert.Equal(t, "I'm happy to have you here today.", captions[0].Text)
	assert.InDelta(t, 1.91, captions[1].Start, 0.0005)
}

func TestParseSkipsMalformedBlocks(t *testing.T) {
	srt := "1\ngarbage timecode line\nsome text\n\n" +
		"2\n00:00:05,000 --> 00:00:06,000\nstill parsed\n\n"

	captions := Parse([]byte(srt))
	require.Len(t, captions, 1)
	assert.Equal(t, "still parsed", captions[0].Text)
}

func TestParseEmpty(t *testing.T) {
	assert.Empty(t, Parse(nil))
	assert.Empty(t, Parse([]byte("")))
}
