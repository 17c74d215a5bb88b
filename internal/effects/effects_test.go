package effects

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bdougie/clipforge/internal/models"
)

// fakeCodec records filter invocations and chains file contents so tests
// can verify which effects reached the final artifact.
type fakeCodec struct {
	filters  []string
	failWhen func(filter string) bool
}

func (f *fakeCodec) apply(inPath, outPath, filter string) error {
	f.filters = append(f.filters, filter)
	if f.failWhen != nil && f.failWhen(filter) {
		return assert.AnError
	}
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	return os.WriteFile(outPath, append(data, []byte("|"+filter)...), 0644)
}

func (f *fakeCodec) ApplyVideoFilter(ctx context.Context, inPath, outPath, filter string) error {
	return f.apply(inPath, outPath, filter)
}

func (f *fakeCodec) ApplyFilterComplex(ctx context.Context, inputs []string, outPath, filter string, extraArgs ...string) error {
	return f.apply(inputs[0], outPath, filter)
}

func newTestEngine(t *testing.T, codec Codec) (*Engine, string) {
	t.Helper()
	workDir := t.TempDir()
	engine := NewEngine(codec, workDir, filepath.Join(workDir, "assets"), nil)

	input := filepath.Join(workDir, "input.mp4")
	require.NoError(t, os.WriteFile(input, []byte("source"), 0644))
	return engine, input
}

func TestApplyEmptyDetectionsReturnsInputUnchanged(t *testing.T) {
	codec := &fakeCodec{}
	engine, input := newTestEngine(t, codec)

	out, err := engine.Apply(context.Background(), input, nil)
	require.NoError(t, err)
	assert.Equal(t, input, out)
	assert.Empty(t, codec.filters)
}

func TestApplyRunsDirectivesInOrder(t *testing.T) {
	codec := &fakeCodec{}
	engine, input := newTestEngine(t, codec)

	detections := []models.MemeDetection{
		{Timestamp: 2.0, MemeType: models.MemeEmphasis, Effects: []string{"zoom"}},
		{Timestamp: 5.0, MemeType: models.MemeReaction, Text: "no way", Effects: []string{"text"}},
	}

	out, err := engine.Apply(context.Background(), input, detections)
	require.NoError(t, err)
	require.NotEqual(t, input, out)

	require.Len(t, codec.filters, 2)
	assert.Contains(t, codec.filters[0], "scale=iw*1.3")
	assert.Contains(t, codec.filters[1], "drawtext")

	// The final artifact carries both effects, zoom first.
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	content := string(data)
	assert.True(t, strings.Index(content, "scale") < strings.Index(content, "drawtext"))
}

func TestApplyCleansUpIntermediates(t *testing.T) {
	codec := &fakeCodec{}
	engine, input := newTestEngine(t, codec)

	detections := []models.MemeDetection{
		{Timestamp: 1.0, Effects: []string{"zoom", "slowmo", "text"}},
	}

	out, err := engine.Apply(context.Background(), input, detections)
	require.NoError(t, err)

	entries, err := os.ReadDir(engine.workDir)
	require.NoError(t, err)

	var mediaFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".mp4") {
			mediaFiles = append(mediaFiles, entry.Name())
		}
	}
	// Only the original input and the final artifact remain.
	assert.ElementsMatch(t, []string{filepath.Base(input), filepath.Base(out)}, mediaFiles)
}

func TestApplyMissingResourceSkipsDirective(t *testing.T) {
	codec := &fakeCodec{}
	engine, input := newTestEngine(t, codec)

	detections := []models.MemeDetection{
		{Timestamp: 2.0, Effects: []string{"zoom"}},
		{Timestamp: 3.0, Effects: []string{"emoji:does_not_exist"}},
		{Timestamp: 4.0, Effects: []string{"sound:ding"}}, // file never created
		{Timestamp: 5.0, MemeType: models.MemeReaction, Effects: []string{"text"}},
	}

	out, err := engine.Apply(context.Background(), input, detections)
	require.NoError(t, err)

	// zoom and text applied; emoji and sound skipped.
	require.Len(t, codec.filters, 2)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "scale")
	assert.Contains(t, string(data), "drawtext")
	assert.NotContains(t, string(data), "overlay=W-110")
	assert.NotContains(t, string(data), "amix")
}

func TestApplyContinuesAfterCodecFailure(t *testing.T) {
	codec := &fakeCodec{
		failWhen: func(filter string) bool { return strings.Contains(filter, "setpts") },
	}
	engine, input := newTestEngine(t, codec)

	detections := []models.MemeDetection{
		{Timestamp: 1.0, Effects: []string{"zoom"}},
		{Timestamp: 2.0, Effects: []string{"slowmo"}},
		{Timestamp: 3.0, MemeType: models.MemeSurprise, Effects: []string{"text"}},
	}

	out, err := engine.Apply(context.Background(), input, detections)
	require.NoError(t, err)

	// slowmo failed; the text overlay was applied to the pre-failure asset.
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "scale")
	assert.Contains(t, string(data), "drawtext")
	assert.NotContains(t, string(data), "|setpts")
}

func TestApplyUnknownTagIsSkipped(t *testing.T) {
	codec := &fakeCodec{}
	engine, input := newTestEngine(t, codec)

	out, err := engine.Apply(context.Background(), input, []models.MemeDetection{
		{Timestamp: 1.0, Effects: []string{"sparkles"}},
	})
	require.NoError(t, err)
	assert.Equal(t, input, out)
	assert.Empty(t, codec.filters)
}

func TestMemeText(t *testing.T) {
	tests := []struct {
		detection models.MemeDetection
		want      string
	}{
		{models.MemeDetection{MemeType: models.MemeReaction, Text: "hm"}, "BRUH"},
		{models.MemeDetection{MemeType: models.MemeEmphasis, Text: "facts"}, "EXACTLY!"},
		{models.MemeDetection{MemeType: models.MemeAwkward, Text: "hm"}, "..."},
		{models.MemeDetection{MemeType: models.MemeSurprise, Text: "hm"}, "PLOT TWIST"},
		{models.MemeDetection{MemeType: models.MemeEmphasis, Text: "wait a second"}, "WAIT WHAT?"},
		{models.MemeDetection{MemeType: models.MemeReaction, Text: "oh dear"}, "OH NO"},
		{models.MemeDetection{MemeType: "unheard_of", Text: "hm"}, "WOW"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, memeText(tt.detection), "text %q", tt.detection.Text)
	}
}

func TestSanitizeDrawtext(t *testing.T) {
	assert.Equal(t, `WAIT WHAT?`, sanitizeDrawtext(`WAIT WHAT?`))
	assert.Equal(t, `its fine\: really`, sanitizeDrawtext(`it's "fine": really`))
}
