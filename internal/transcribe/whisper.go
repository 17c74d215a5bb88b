// Package transcribe invokes the Whisper CLI to turn an audio track into
// a transcript with timed segments.
package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/bdougie/clipforge/internal/models"
	"github.com/bdougie/clipforge/internal/subtitle"
)

// WhisperCLI runs the whisper binary against an audio file and parses the
// SRT output it produces.
type WhisperCLI struct {
	bin     string
	workDir string
	logger  *slog.Logger
}

// NewWhisperCLI creates a transcriber backed by the whisper binary. Output
// files are written under workDir and removed once parsed.
func NewWhisperCLI(bin, workDir string, logger *slog.Logger) *WhisperCLI {
	if bin == "" {
		bin = "whisper"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WhisperCLI{bin: bin, workDir: workDir, logger: logger}
}

// Transcribe runs whisper with the given model and returns the full
// transcript alongside its timed caption segments.
func (w *WhisperCLI) Transcribe(ctx context.Context, audioPath, model string) (string, []models.CaptionSegment, error) {
	if _, err := exec.LookPath(w.bin); err != nil {
		return "", nil, fmt.Errorf("whisper binary not found: %w", err)
	}

	outDir, err := os.MkdirTemp(w.workDir, "whisper_*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create whisper output dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	cmd := exec.CommandContext(ctx, w.bin, audioPath,
		"--model", model,
		"--output_format", "srt",
		"--output_dir", outDir,
	)
	var output strings.Builder
	cmd.Stdout = &output
	cmd.Stderr = &output

	w.logger.Info("running whisper", "audio", audioPath, "model", model)
	if err := cmd.Run(); err != nil {
		return "", nil, fmt.Errorf("whisper failed: %w: %s", err, tail(output.String(), 512))
	}

	data, err := os.ReadFile(srtPathFor(outDir, audioPath))
	if err != nil {
		return "", nil, fmt.Errorf("failed to read whisper output: %w", err)
	}

	captions := subtitle.Parse(data)
	return joinTranscript(captions), captions, nil
}

// srtPathFor returns where whisper writes the SRT for a given input file.
func srtPathFor(outDir, audioPath string) string {
	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	return filepath.Join(outDir, base+".srt")
}

// joinTranscript flattens segments into one transcript string.
func joinTranscript(captions []models.CaptionSegment) string {
	texts := make([]string, 0, len(captions))
	for _, c := range captions {
		texts = append(texts, c.Text)
	}
	return strings.Join(texts, " ")
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
