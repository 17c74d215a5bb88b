package suggest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bdougie/clipforge/internal/models"
)

type stubCompleter struct {
	response string
	err      error
	calls    int
}

func (s *stubCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	s.calls++
	return s.response, s.err
}

func TestSuggestBrollParsesResponse(t *testing.T) {
	completer := &stubCompleter{response: `Here are my suggestions:
[
  {"timestamp": 15.5, "duration": 3.0, "description": "Show the product", "confidence": 0.8, "category": "product"},
  {"timestamp": 40.0, "duration": 2.5, "description": "Cut to the location", "confidence": 0.7, "category": "location"}
]
Let me know if you need more.`}

	analyzer := NewAnalyzer(completer, nil)
	suggestions := analyzer.SuggestBroll(context.Background(), "we visited the factory", 60)

	require.Len(t, suggestions, 2)
	assert.Equal(t, 15.5, suggestions[0].Timestamp)
	assert.Equal(t, models.SuggestionBroll, suggestions[0].Kind)
	assert.Equal(t, "product", suggestions[0].Details["category"])
}

func TestSuggestBrollMalformedNumbersDegradeToDefaults(t *testing.T) {
	completer := &stubCompleter{response: `[
  {"timestamp": "soon", "duration": "a while", "description": "something", "confidence": "high"}
]`}

	analyzer := NewAnalyzer(completer, nil)
	suggestions := analyzer.SuggestBroll(context.Background(), "transcript", 60)

	require.Len(t, suggestions, 1)
	assert.Equal(t, 0.0, suggestions[0].Timestamp)
	assert.Equal(t, 3.0, suggestions[0].Duration)
	assert.Equal(t, 0.5, suggestions[0].Confidence)
}

func TestSuggestBrollNoParseableArrayYieldsEmpty(t *testing.T) {
	completer := &stubCompleter{response: "I could not find any good moments, sorry."}

	analyzer := NewAnalyzer(completer, nil)
	assert.Empty(t, analyzer.SuggestBroll(context.Background(), "transcript", 60))
}

func TestSuggestBrollNoCompleterYieldsEmpty(t *testing.T) {
	analyzer := NewAnalyzer(nil, nil)
	assert.Empty(t, analyzer.SuggestBroll(context.Background(), "transcript", 60))
}

func TestSuggestBrollServiceErrorYieldsEmpty(t *testing.T) {
	completer := &stubCompleter{err: assert.AnError}
	analyzer := NewAnalyzer(completer, nil)
	assert.Empty(t, analyzer.SuggestBroll(context.Background(), "transcript", 60))
}

func TestDetectMemeMomentsParsesResponse(t *testing.T) {
	completer := &stubCompleter{response: `[
  {"timestamp": 42.3, "meme_type": "emphasis", "text": "wait, what?", "suggested_effects": ["zoom", "emoji:shocked"], "confidence": 0.9}
]`}

	analyzer := NewAnalyzer(completer, nil)
	detections := analyzer.DetectMemeMoments(context.Background(), []models.CaptionSegment{
		{Start: 42.3, End: 44.0, Text: "wait, what?"},
	})

	require.Len(t, detections, 1)
	assert.Equal(t, models.MemeEmphasis, detections[0].MemeType)
	assert.Equal(t, []string{"zoom", "emoji:shocked"}, detections[0].Effects)
}

func TestDetectMemeMomentsFallsBackOnServiceError(t *testing.T) {
	completer := &stubCompleter{err: assert.AnError}
	analyzer := NewAnalyzer(completer, nil)

	detections := analyzer.DetectMemeMoments(context.Background(), []models.CaptionSegment{
		{Start: 1.0, End: 2.0, Text: "Wait, seriously?"},
		{Start: 5.0, End: 6.0, Text: "nothing notable here"},
	})

	require.NotEmpty(t, detections)
	assert.Equal(t, models.MemeReaction, detections[0].MemeType)
	assert.Equal(t, 1.0, detections[0].Timestamp)
}

func TestDetectMemeMomentsFallsBackOnUnparseableResponse(t *testing.T) {
	completer := &stubCompleter{response: "no json here"}
	analyzer := NewAnalyzer(completer, nil)

	detections := analyzer.DetectMemeMoments(context.Background(), []models.CaptionSegment{
		{Start: 3.0, End: 4.0, Text: "that was absolutely wild"},
	})

	require.NotEmpty(t, detections)
	assert.Equal(t, models.MemeEmphasis, detections[0].MemeType)
}

func TestFallbackMemeDetectionMatchesCaseInsensitive(t *testing.T) {
	detections := fallbackMemeDetection([]models.CaptionSegment{
		{Start: 0.5, End: 1.5, Text: "WOW that is great"},
	})

	require.Len(t, detections, 1)
	assert.Equal(t, models.MemeReaction, detections[0].MemeType)
	assert.Equal(t, 0.6, detections[0].Confidence)
}

func TestFallbackMemeDetectionNoMatches(t *testing.T) {
	detections := fallbackMemeDetection([]models.CaptionSegment{
		{Start: 0.5, End: 1.5, Text: "the quarterly figures are in line"},
	})
	assert.Empty(t, detections)
}

func TestSuggestEnhancementsParsesResponse(t *testing.T) {
	completer := &stubCompleter{response: `{"pacing": ["Speed up intro"], "audio": "Add background music"}`}

	analyzer := NewAnalyzer(completer, nil)
	enhancements := analyzer.SuggestEnhancements(context.Background(), "transcript", 30, 30)

	assert.Equal(t, []string{"Speed up intro"}, enhancements["pacing"])
	assert.Equal(t, []string{"Add background music"}, enhancements["audio"])
}

func TestSuggestEnhancementsFallsBackToStaticTable(t *testing.T) {
	for _, completer := range []*stubCompleter{
		nil,
		{err: assert.AnError},
		{response: "not json"},
	} {
		var analyzer *Analyzer
		if completer == nil {
			analyzer = NewAnalyzer(nil, nil)
		} else {
			analyzer = NewAnalyzer(completer, nil)
		}
		enhancements := analyzer.SuggestEnhancements(context.Background(), "transcript", 30, 30)
		assert.Contains(t, enhancements, "pacing")
		assert.Contains(t, enhancements, "accessibility")
	}
}

func TestExtractArrayTolerantOfSurroundingText(t *testing.T) {
	items := extractArray(`Sure! Here is the JSON you asked for: [{"a": 1}] hope that helps`)
	require.Len(t, items, 1)

	assert.Nil(t, extractArray("no brackets at all"))
	assert.Nil(t, extractArray("] backwards ["))
	assert.Nil(t, extractArray("[{invalid json}]"))
}
