// Package subtitle reads and writes the index-numbered, blank-line-delimited
// SRT caption format with HH:MM:SS,mmm timecodes.
package subtitle

import (
	"fmt"
	"strings"

	"github.com/bdougie/clipforge/internal/models"
)

// FormatTimestamp converts seconds to the SRT timecode form, e.g.
// 65.25 -> "00:01:05,250".
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	millis := int64(seconds*1000 + 0.5)
	h := millis / 3600000
	millis -= h * 3600000
	m := millis / 60000
	millis -= m * 60000
	s := millis / 1000
	ms := millis % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// ParseTimestamp converts an SRT timecode back to seconds.
func ParseTimestamp(ts string) (float64, error) {
	var h, m, s, ms int
	if _, err := fmt.Sscanf(strings.TrimSpace(ts), "%d:%d:%d,%d", &h, &m, &s, &ms); err != nil {
		return 0, fmt.Errorf("invalid timecode %q: %w", ts, err)
	}
	return float64(h)*3600 + float64(m)*60 + float64(s) + float64(ms)/1000, nil
}

// Marshal renders captions as SRT text. Segments are written in order with
// 1-based indices.
func Marshal(captions []models.CaptionSegment) []byte {
	var b strings.Builder
	for i, c := range captions {
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", FormatTimestamp(c.Start), FormatTimestamp(c.End))
		fmt.Fprintf(&b, "%s\n\n", c.Text)
	}
	return []byte(b.String())
}

// Parse decodes SRT text into caption segments. Multi-line cues are joined
// with a single space. Malformed blocks are skipped rather than failing the
// whole document.
func Parse(data []byte) []models.CaptionSegment {
	var captions []models.CaptionSegment

	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")

	var (
		start, end float64
		haveTimes  bool
		text       []string
	)

	flush := func() {
		if haveTimes && len(text) > 0 {
			captions = append(captions, models.CaptionSegment{
				Start: start,
				End:   end,
				Text:  strings.Join(text, " "),
			})
		}
		haveTimes = false
		text = nil
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)

		if line == "" {
			flush()
			continue
		}

		if isDigitOnly(line) && !haveTimes {
			continue
		}

		if left, right, ok := strings.Cut(line, "-->"); ok {
			s, err1 := ParseTimestamp(left)
			e, err2 := ParseTimestamp(right)
			if err1 == nil && err2 == nil {
				start, end = s, e
				haveTimes = true
			}
			continue
		}

		text = append(text, line)
	}
	flush()

	return captions
}

func isDigitOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
