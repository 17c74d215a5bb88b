package effects

import "path/filepath"

// Static asset libraries for emoji overlays and sound effects. Entries are
// looked up by the id portion of an effect tag (emoji:fire, sound:ding);
// a missing file at apply time skips the directive rather than failing.

func defaultEmojiLibrary(assetsDir string) map[string]string {
	dir := filepath.Join(assetsDir, "emojis")
	return map[string]string{
		"fire":     filepath.Join(dir, "fire.png"),
		"shocked":  filepath.Join(dir, "shocked.png"),
		"laughing": filepath.Join(dir, "laughing.png"),
		"thinking": filepath.Join(dir, "thinking.png"),
		"clap":     filepath.Join(dir, "clap.png"),
	}
}

func defaultSoundLibrary(assetsDir string) map[string]string {
	dir := filepath.Join(assetsDir, "sounds")
	return map[string]string{
		"ding":           filepath.Join(dir, "ding.wav"),
		"record_scratch": filepath.Join(dir, "record_scratch.wav"),
		"airhorn":        filepath.Join(dir, "airhorn.wav"),
		"whoosh":         filepath.Join(dir, "whoosh.wav"),
		"pop":            filepath.Join(dir, "pop.wav"),
	}
}
