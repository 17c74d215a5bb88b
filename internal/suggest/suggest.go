// Package suggest turns transcripts into timestamped editing suggestions by
// querying an external language model, with deterministic fallbacks when
// that service is unavailable. Model responses are treated as untrusted
// text; every analysis yields an empty collection on upstream failure,
// never an error.
package suggest

import (
	"context"
	"log/slog"

	"github.com/bdougie/clipforge/internal/models"
)

// Analyzer exposes three independent read-only analyses over a transcript.
type Analyzer struct {
	completer Completer
	logger    *slog.Logger
}

// NewAnalyzer creates an Analyzer. A nil completer means the language-model
// service is unavailable; analyses then use their fallback paths.
func NewAnalyzer(completer Completer, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{completer: completer, logger: logger}
}

// SuggestBroll analyzes the transcript for B-roll opportunities. There is
// no offline fallback; without a completer the result is empty.
func (a *Analyzer) SuggestBroll(ctx context.Context, transcript string, duration float64) []models.ContentSuggestion {
	if a.completer == nil {
		a.logger.Warn("language model unavailable, skipping b-roll analysis")
		return nil
	}

	response, err := a.completer.Complete(ctx, brollPrompt(transcript, duration))
	if err != nil {
		a.logger.Warn("b-roll analysis failed", "error", err)
		return nil
	}

	var suggestions []models.ContentSuggestion
	for _, item := range extractArray(response) {
		suggestions = append(suggestions, models.ContentSuggestion{
			Timestamp:   floatField(item, "timestamp", 0),
			Duration:    floatField(item, "duration", 3.0),
			Kind:        models.SuggestionBroll,
			Description: stringField(item, "description", ""),
			Confidence:  floatField(item, "confidence", 0.5),
			Details: map[string]string{
				"category": stringField(item, "category", "general"),
			},
		})
	}

	a.logger.Debug("b-roll analysis complete", "suggestions", len(suggestions))
	return suggestions
}

// DetectMemeMoments finds caption spans suitable for viral-style effects.
// When the language model is unavailable or its response unusable, a
// keyword heuristic over the caption text takes over.
func (a *Analyzer) DetectMemeMoments(ctx context.Context, captions []models.CaptionSegment) []models.MemeDetection {
	if a.completer == nil {
		return fallbackMemeDetection(captions)
	}

	response, err := a.completer.Complete(ctx, memePrompt(captions))
	if err != nil {
		a.logger.Warn("meme detection failed, using keyword fallback", "error", err)
		return fallbackMemeDetection(captions)
	}

	items := extractArray(response)
	if items == nil {
		a.logger.Warn("meme detection response had no parseable array, using keyword fallback")
		return fallbackMemeDetection(captions)
	}

	var detections []models.MemeDetection
	for _, item := range items {
		detections = append(detections, models.MemeDetection{
			Timestamp:  floatField(item, "timestamp", 0),
			MemeType:   stringField(item, "meme_type", "general"),
			Text:       stringField(item, "text", ""),
			Effects:    stringSliceField(item, "suggested_effects"),
			Confidence: floatField(item, "confidence", 0.5),
		})
	}

	a.logger.Debug("meme detection complete", "detections", len(detections))
	return detections
}

// SuggestEnhancements produces general improvement suggestions by category.
// Falls back to a static suggestion table when the model path fails.
func (a *Analyzer) SuggestEnhancements(ctx context.Context, transcript string, duration, fps float64) map[string][]string {
	if a.completer == nil {
		return fallbackEnhancements()
	}

	response, err := a.completer.Complete(ctx, enhancementPrompt(transcript, duration, fps))
	if err != nil {
		a.logger.Warn("enhancement analysis failed, using static suggestions", "error", err)
		return fallbackEnhancements()
	}

	obj := extractObject(response)
	if obj == nil {
		return fallbackEnhancements()
	}

	enhancements := make(map[string][]string, len(obj))
	for category, value := range obj {
		if list := stringListValue(value); len(list) > 0 {
			enhancements[category] = list
		}
	}
	if len(enhancements) == 0 {
		return fallbackEnhancements()
	}
	return enhancements
}
