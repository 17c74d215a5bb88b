package pipeline

import "fmt"

// Caption style names.
const (
	StyleStandard = "Standard"
	StyleTikTok   = "TikTok"
	StyleYouTube  = "YouTube"
	StyleCustom   = "Custom"
)

// forceStyleFor returns the ASS force_style overrides for a named caption
// style. Custom uses the caller-configured font size and color; an unknown
// style falls back to Standard.
func forceStyleFor(style string, customFontSize int, customFontColor string) string {
	switch style {
	case StyleTikTok:
		return "FontSize=32,Bold=1,PrimaryColour=&HFFFFFF,OutlineColour=&H000000,Outline=2"
	case StyleYouTube:
		return "FontSize=28,PrimaryColour=&HFFFFFF,BackColour=&H80000000"
	case StyleCustom:
		return fmt.Sprintf("FontSize=%d,PrimaryColour=&H%s", customFontSize, customFontColor)
	default:
		return "FontSize=24,PrimaryColour=&HFFFFFF"
	}
}
