package ffmpeg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrAssetUnreadable means the input file is missing or not decodable.
	ErrAssetUnreadable = errors.New("asset unreadable")
	// ErrCodecFailed means the external codec process exited non-zero or
	// timed out. The error message carries the process output pass-through.
	ErrCodecFailed = errors.New("codec failed")
)

// DefaultTimeout bounds a single codec invocation when the Runner is built
// without an explicit timeout.
const DefaultTimeout = 10 * time.Minute

// Runner invokes ffmpeg/ffprobe as external processes. It depends only on
// the narrow path-in, path-out contract, never on codec internals.
type Runner struct {
	FFmpegBin  string
	FFprobeBin string
	Timeout    time.Duration
	Logger     *slog.Logger
}

// NewRunner returns a Runner with defaults filled in for empty fields.
func NewRunner(ffmpegBin, ffprobeBin string, timeout time.Duration, logger *slog.Logger) *Runner {
	if ffmpegBin == "" {
		ffmpegBin = "ffmpeg"
	}
	if ffprobeBin == "" {
		ffprobeBin = "ffprobe"
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		FFmpegBin:  ffmpegBin,
		FFprobeBin: ffprobeBin,
		Timeout:    timeout,
		Logger:     logger,
	}
}

// ProbeResult holds the basic stream properties of a media file.
type ProbeResult struct {
	Duration   float64
	FPS        float64
	Width      int
	Height     int
	FrameCount int
}

type probeOutput struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
		NbFrames   string `json:"nb_frames"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe extracts duration, frame rate and dimensions from a media file.
func (r *Runner) Probe(ctx context.Context, path string) (ProbeResult, error) {
	if _, err := os.Stat(path); err != nil {
		return ProbeResult{}, fmt.Errorf("%w: %s", ErrAssetUnreadable, path)
	}

	out, err := r.output(ctx, r.FFprobeBin,
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		path,
	)
	if err != nil {
		return ProbeResult{}, fmt.Errorf("%w: probe of %s: %v", ErrAssetUnreadable, path, err)
	}

	var probed probeOutput
	if err := json.Unmarshal(out, &probed); err != nil {
		return ProbeResult{}, fmt.Errorf("%w: unexpected probe output for %s", ErrAssetUnreadable, path)
	}

	var result ProbeResult
	found := false
	for _, stream := range probed.Streams {
		if stream.CodecType != "video" {
			continue
		}
		result.Width = stream.Width
		result.Height = stream.Height
		result.FPS = parseFrameRate(stream.RFrameRate)
		if n, err := strconv.Atoi(stream.NbFrames); err == nil {
			result.FrameCount = n
		}
		found = true
		break
	}
	if !found {
		return ProbeResult{}, fmt.Errorf("%w: no video stream in %s", ErrAssetUnreadable, path)
	}

	result.Duration = ComputeDuration(result.FrameCount, result.FPS)
	if result.Duration == 0 && result.FPS > 0 {
		if d, err := strconv.ParseFloat(probed.Format.Duration, 64); err == nil {
			result.Duration = d
		}
	}

	return result, nil
}

// ComputeDuration derives duration in seconds from a frame count and frame
// rate. A zero or negative rate yields zero rather than a division error.
func ComputeDuration(frameCount int, fps float64) float64 {
	if fps <= 0 || frameCount <= 0 {
		return 0
	}
	return float64(frameCount) / fps
}

// parseFrameRate parses ffprobe's fractional rate form, e.g. "30000/1001".
func parseFrameRate(rate string) float64 {
	num, den, ok := strings.Cut(rate, "/")
	if !ok {
		f, _ := strconv.ParseFloat(rate, 64)
		return f
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}

// ExtractAudio produces a mono 16 kHz PCM wav from the input video.
func (r *Runner) ExtractAudio(ctx context.Context, inPath, outPath string) error {
	return r.run(ctx,
		"-y",
		"-i", inPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		outPath,
	)
}

// BurnSubtitles renders an SRT file into the video using the subtitles
// filter. forceStyle carries the style-specific ASS overrides.
func (r *Runner) BurnSubtitles(ctx context.Context, inPath, srtPath, outPath, forceStyle string) error {
	filter := fmt.Sprintf("subtitles=%s", escapeFilterPath(srtPath))
	if forceStyle != "" {
		filter += fmt.Sprintf(":force_style='%s'", forceStyle)
	}
	return r.run(ctx,
		"-y",
		"-i", inPath,
		"-vf", filter,
		"-c:v", "libx264",
		"-c:a", "aac",
		outPath,
	)
}

// ApplyVideoFilter re-encodes the video through a single -vf filter chain,
// copying the audio stream untouched.
func (r *Runner) ApplyVideoFilter(ctx context.Context, inPath, outPath, filter string) error {
	return r.run(ctx,
		"-y",
		"-i", inPath,
		"-vf", filter,
		"-c:v", "libx264",
		"-c:a", "copy",
		outPath,
	)
}

// ApplyFilterComplex runs a filter_complex graph over one or more inputs.
// extraArgs are appended between the graph and the output path (mapping,
// codec selection).
func (r *Runner) ApplyFilterComplex(ctx context.Context, inputs []string, outPath, filter string, extraArgs ...string) error {
	args := []string{"-y"}
	for _, in := range inputs {
		args = append(args, "-i", in)
	}
	args = append(args, "-filter_complex", filter)
	args = append(args, extraArgs...)
	args = append(args, outPath)
	return r.run(ctx, args...)
}

// run executes ffmpeg under the configured timeout. The combined output is
// folded into the error payload on failure but never interpreted.
func (r *Runner) run(ctx context.Context, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	r.Logger.Debug("running codec", "bin", r.FFmpegBin, "args", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, r.FFmpegBin, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s timed out after %s: %w", ErrCodecFailed, r.FFmpegBin, r.Timeout, context.DeadlineExceeded)
		}
		return fmt.Errorf("%w: %v: %s", ErrCodecFailed, err, trimOutput(output))
	}
	return nil
}

func (r *Runner) output(ctx context.Context, bin string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin, args...)
	out, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s timed out after %s: %w", ErrCodecFailed, bin, r.Timeout, context.DeadlineExceeded)
		}
		return nil, fmt.Errorf("%w: %v", ErrCodecFailed, err)
	}
	return out, nil
}

// trimOutput keeps error payloads readable; ffmpeg banners run long.
func trimOutput(output []byte) string {
	s := strings.TrimSpace(string(output))
	const max = 512
	if len(s) > max {
		s = "..." + s[len(s)-max:]
	}
	return s
}

// escapeFilterPath escapes characters that the subtitles filter treats
// specially in its path argument.
func escapeFilterPath(path string) string {
	path = strings.ReplaceAll(path, `\`, `\\`)
	path = strings.ReplaceAll(path, `:`, `\:`)
	return path
}
