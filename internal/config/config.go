package config

import (
	"os"
	"strconv"
)

// Config holds runtime configuration for clipforge, loaded from the
// environment with sensible defaults.
type Config struct {
	OutputDir string
	CacheDir  string
	WorkDir   string

	FFmpegBin  string
	FFprobeBin string

	WhisperBin   string
	WhisperModel string

	CaptionFontSize  int
	CaptionFontColor string

	CacheRetentionDays int

	// Ollama endpoint for content analysis.
	OllamaBaseURL string
	OllamaPort    int
	OllamaModel   string

	// Optional Postgres persistence.
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
}

// Load reads configuration from CLIPFORGE_* environment variables,
// falling back to defaults for anything unset.
func Load() *Config {
	return &Config{
		OutputDir:          envString("CLIPFORGE_OUTPUT_DIR", "output"),
		CacheDir:           envString("CLIPFORGE_CACHE_DIR", "cache"),
		WorkDir:            envString("CLIPFORGE_WORK_DIR", os.TempDir()),
		FFmpegBin:          envString("CLIPFORGE_FFMPEG", "ffmpeg"),
		FFprobeBin:         envString("CLIPFORGE_FFPROBE", "ffprobe"),
		WhisperBin:         envString("CLIPFORGE_WHISPER", "whisper"),
		WhisperModel:       envString("CLIPFORGE_WHISPER_MODEL", "base"),
		CaptionFontSize:    envInt("CLIPFORGE_CAPTION_FONT_SIZE", 24),
		CaptionFontColor:   envString("CLIPFORGE_CAPTION_FONT_COLOR", "FFFFFF"),
		CacheRetentionDays: envInt("CLIPFORGE_CACHE_RETENTION_DAYS", 30),
		OllamaBaseURL:      envString("CLIPFORGE_OLLAMA_URL", "http://localhost"),
		OllamaPort:         envInt("CLIPFORGE_OLLAMA_PORT", 11434),
		OllamaModel:        envString("CLIPFORGE_OLLAMA_MODEL", "llama3.2"),
		PostgresHost:       envString("CLIPFORGE_PG_HOST", "localhost"),
		PostgresPort:       envString("CLIPFORGE_PG_PORT", "5432"),
		PostgresUser:       envString("CLIPFORGE_PG_USER", "clipforge"),
		PostgresPassword:   envString("CLIPFORGE_PG_PASSWORD", ""),
		PostgresDB:         envString("CLIPFORGE_PG_DB", "clipforge"),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
