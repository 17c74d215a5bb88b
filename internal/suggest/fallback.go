package suggest

import (
	"strings"

	"github.com/bdougie/clipforge/internal/models"
)

// Keyword lexicons for meme detection when no language model is available.
// Case-insensitive substring match per meme type.
var memeKeywords = []struct {
	memeType string
	words    []string
}{
	{models.MemeReaction, []string{"wow", "oh no", "wait", "what", "seriously", "really"}},
	{models.MemeEmphasis, []string{"exactly", "definitely", "absolutely", "totally", "completely"}},
	{models.MemeAwkward, []string{"um", "uh", "well", "so", "anyway"}},
	{models.MemeSurprise, []string{"surprise", "unexpected", "sudden", "shock", "amazing"}},
}

func fallbackMemeDetection(captions []models.CaptionSegment) []models.MemeDetection {
	var detections []models.MemeDetection

	for _, caption := range captions {
		text := strings.ToLower(caption.Text)
		for _, lexicon := range memeKeywords {
			for _, word := range lexicon.words {
				if strings.Contains(text, word) {
					detections = append(detections, models.MemeDetection{
						Timestamp:  caption.Start,
						MemeType:   lexicon.memeType,
						Text:       caption.Text,
						Effects:    []string{"zoom", "emoji:fire"},
						Confidence: 0.6,
					})
					break
				}
			}
		}
	}
	return detections
}

func fallbackEnhancements() map[string][]string {
	return map[string][]string{
		"pacing":        {"Review pacing for slow sections", "Add dynamic cuts"},
		"audio":         {"Consider background music", "Enhance audio clarity"},
		"visual":        {"Improve lighting consistency", "Add transitions"},
		"engagement":    {"Add compelling intro", "Include call-to-action"},
		"accessibility": {"Ensure readable captions", "Consider audio descriptions"},
	}
}
