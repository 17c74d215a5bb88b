package effects

import (
	"strings"

	"github.com/bdougie/clipforge/internal/models"
)

// Phrase table for text overlays, keyed by meme type.
var memeTexts = map[string][]string{
	models.MemeReaction: {"BRUH", "WAIT WHAT?", "NO WAY", "OMG"},
	models.MemeEmphasis: {"EXACTLY!", "THIS!", "FACTS", "TRUTH"},
	models.MemeAwkward:  {"...", "AWKWARD", "UH OH", "YIKES"},
	models.MemeSurprise: {"PLOT TWIST", "SURPRISE!", "WHOA", "UNEXPECTED"},
}

// memeText picks the overlay phrase for a detection. Keyword overrides win
// over the per-type table; unknown types get a generic phrase.
func memeText(detection models.MemeDetection) string {
	lower := strings.ToLower(detection.Text)
	if strings.Contains(lower, "wait") {
		return "WAIT WHAT?"
	}
	if strings.Contains(lower, "oh") {
		return "OH NO"
	}

	if texts, ok := memeTexts[detection.MemeType]; ok {
		return texts[0]
	}
	return "WOW"
}

// sanitizeDrawtext strips characters that break the drawtext filter string.
func sanitizeDrawtext(text string) string {
	text = strings.ReplaceAll(text, "'", "")
	text = strings.ReplaceAll(text, `"`, "")
	text = strings.ReplaceAll(text, ":", `\:`)
	return text
}
