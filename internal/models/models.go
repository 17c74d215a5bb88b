package models

import "time"

// VideoAsset describes a media file at one point in the pipeline. Assets are
// immutable once probed; every transformation stage produces a new one.
type VideoAsset struct {
	Path        string  `json:"path"`
	Fingerprint string  `json:"fingerprint"`
	Duration    float64 `json:"duration"`
	FPS         float64 `json:"fps"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
}

// AudioTrack is the audio extracted from a VideoAsset for transcription.
type AudioTrack struct {
	Path       string `json:"path"`
	SampleRate int    `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

// CaptionSegment is one timed caption. End always exceeds Start.
type CaptionSegment struct {
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Suggestion kinds produced by the content analyzer.
const (
	SuggestionBroll = "broll"
	SuggestionMeme  = "meme"
	SuggestionZoom  = "zoom"
	SuggestionEmoji = "emoji"
)

// ContentSuggestion is one timestamped editing suggestion.
type ContentSuggestion struct {
	Timestamp   float64           `json:"timestamp"`
	Duration    float64           `json:"duration"`
	Kind        string            `json:"kind"`
	Description string            `json:"description"`
	Confidence  float64           `json:"confidence"`
	Details     map[string]string `json:"details,omitempty"`
}

// Meme moment categories.
const (
	MemeReaction  = "reaction"
	MemePunchline = "punchline"
	MemeAwkward   = "awkward"
	MemeEmphasis  = "emphasis"
	MemeSurprise  = "surprise"
)

// MemeDetection is a detected moment suitable for viral-style effects.
// Effects holds tags from the effect vocabulary (zoom, emoji:<id>,
// sound:<id>, slowmo, text).
type MemeDetection struct {
	Timestamp  float64  `json:"timestamp"`
	MemeType   string   `json:"meme_type"`
	Text       string   `json:"text"`
	Effects    []string `json:"suggested_effects"`
	Confidence float64  `json:"confidence"`
}

// CacheEntry is the cached result of one transcription run.
type CacheEntry struct {
	Transcript string           `json:"transcript"`
	Captions   []CaptionSegment `json:"captions"`
	CreatedAt  time.Time        `json:"created_at"`
}

// ProcessingRecord is one row of processing history.
type ProcessingRecord struct {
	ID             int       `json:"id"`
	Filename       string    `json:"filename"`
	FileSize       int64     `json:"file_size"`
	Duration       float64   `json:"duration"`
	ProcessingTime float64   `json:"processing_time"`
	FeaturesUsed   []string  `json:"features_used"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// Statistics is the running aggregate over all completed runs.
type Statistics struct {
	VideosProcessed     int            `json:"videos_processed"`
	TotalProcessingTime float64        `json:"total_processing_time"`
	FeaturesUsage       map[string]int `json:"features_usage"`
	LastUpdated         time.Time      `json:"last_updated"`
}

// VideoSearchResult is one hit from a transcript similarity search.
type VideoSearchResult struct {
	Filename   string  `json:"filename"`
	Transcript string  `json:"transcript"`
	Similarity float64 `json:"similarity"`
}

// WhisperModels lists the transcription model identifiers, ordered by cost
// and accuracy.
var WhisperModels = []string{"tiny", "base", "small", "medium", "large"}

// ValidModel reports whether model is a known transcription model id.
func ValidModel(model string) bool {
	for _, m := range WhisperModels {
		if m == model {
			return true
		}
	}
	return false
}
