package suggest

import (
	"fmt"
	"strings"

	"github.com/bdougie/clipforge/internal/models"
)

func brollPrompt(transcript string, duration float64) string {
	return fmt.Sprintf(`Analyze this video transcript and suggest B-roll opportunities:

Transcript: %q
Video Duration: %.1f seconds

For each B-roll suggestion, provide:
1. Timestamp (in seconds from start)
2. Duration (how long the B-roll should last)
3. Description of what B-roll footage would enhance the content
4. Confidence score (0.0-1.0)
5. Category (product, location, concept, demonstration, etc.)

Focus on moments where concepts need visual explanation, products or
locations are mentioned, technical demonstrations occur, or emotional
moments could be enhanced.

Format your response as a JSON array with this structure:
[
  {"timestamp": 15.5, "duration": 3.0, "description": "Show close-up of product features", "confidence": 0.8, "category": "product"}
]

Provide 3-7 suggestions maximum.`, transcript, duration)
}

func memePrompt(captions []models.CaptionSegment) string {
	var segments strings.Builder
	for _, c := range captions {
		fmt.Fprintf(&segments, "%.1fs: %s\n", c.Start, c.Text)
	}

	return fmt.Sprintf(`Analyze these video segments for meme-worthy moments:

%s
Identify moments that would be enhanced by meme effects like zoom for
emphasis, reaction emojis, sound effects, slow motion, or text overlays.

For each meme moment, provide:
1. Timestamp (exact time in seconds)
2. Meme type (reaction, punchline, awkward, emphasis, surprise)
3. Original text at that moment
4. Suggested effects (zoom, emoji:<id>, sound:<id>, slowmo, text)
5. Confidence score (0.0-1.0)

Format as a JSON array:
[
  {"timestamp": 42.3, "meme_type": "emphasis", "text": "wait, what?", "suggested_effects": ["zoom", "emoji:shocked", "sound:record_scratch"], "confidence": 0.9}
]

Focus on genuine moments that would be funny or engaging.`, segments.String())
}

func enhancementPrompt(transcript string, duration, fps float64) string {
	return fmt.Sprintf(`Analyze this video content and suggest enhancements:

Transcript: %q
Video Info: Duration %.1fs, %.1f fps

Suggest improvements in these categories:
1. Pacing (speed up/slow down sections)
2. Audio (background music, sound effects)
3. Visual (color grading, filters, transitions)
4. Engagement (hooks, call-to-actions, interactive elements)
5. Accessibility (caption styling, audio descriptions)

Format as a JSON object:
{"pacing": ["Speed up intro by 20%%"], "audio": ["Add upbeat background music"], "visual": ["Increase contrast"], "engagement": ["Add hook in first 3 seconds"], "accessibility": ["Use larger caption font"]}

Provide 2-4 actionable suggestions per category.`, transcript, duration, fps)
}
