// Package effects applies timestamped viral-style effect directives to a
// media asset. Directives run strictly in list order, each consuming the
// output of the previous one; a failing or unresolvable directive is
// skipped and the engine continues from the pre-failure asset.
package effects

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/bdougie/clipforge/internal/models"
)

// Fixed effect windows, in seconds.
const (
	zoomDuration   = 0.5
	emojiDuration  = 1.0
	slowmoDuration = 2.0
	textDuration   = 1.5

	zoomFactor   = 1.3
	slowmoFactor = 0.5
)

// Codec is the subset of the ffmpeg runner the engine needs.
type Codec interface {
	ApplyVideoFilter(ctx context.Context, inPath, outPath, filter string) error
	ApplyFilterComplex(ctx context.Context, inputs []string, outPath, filter string, extraArgs ...string) error
}

// Engine interprets an ordered list of effect directives.
type Engine struct {
	codec   Codec
	emoji   map[string]string
	sounds  map[string]string
	workDir string
	logger  *slog.Logger
}

// NewEngine creates an effect engine. Intermediate artifacts are written
// under workDir; emoji and sound libraries are resolved under assetsDir.
func NewEngine(codec Codec, workDir, assetsDir string, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		codec:   codec,
		emoji:   defaultEmojiLibrary(assetsDir),
		sounds:  defaultSoundLibrary(assetsDir),
		workDir: workDir,
		logger:  logger,
	}
}

// Apply runs every directive in order over the asset at inputPath and
// returns the path of the final artifact. An empty detection list returns
// the input unchanged. Individual effect failures are logged and absorbed;
// intermediate artifacts are removed once the final artifact is known.
func (e *Engine) Apply(ctx context.Context, inputPath string, detections []models.MemeDetection) (string, error) {
	if len(detections) == 0 {
		e.logger.Debug("no effect directives to apply")
		return inputPath, nil
	}

	current := inputPath
	var produced []string

	defer func() {
		for _, path := range produced {
			if path == current {
				continue
			}
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				e.logger.Warn("failed to remove intermediate artifact", "path", path, "error", err)
			}
		}
	}()

	for _, detection := range detections {
		if err := ctx.Err(); err != nil {
			return current, err
		}

		for _, tag := range detection.Effects {
			next, err := e.applyOne(ctx, current, detection, tag)
			if err != nil {
				e.logger.Warn("effect failed, continuing with previous asset",
					"effect", tag, "timestamp", detection.Timestamp, "error", err)
				continue
			}
			if next == current {
				continue
			}
			produced = append(produced, next)
			current = next
		}
	}

	return current, nil
}

// applyOne dispatches a single effect tag. Returning the input path
// unchanged means the directive was skipped.
func (e *Engine) applyOne(ctx context.Context, inPath string, detection models.MemeDetection, tag string) (string, error) {
	switch {
	case tag == "zoom":
		return e.applyZoom(ctx, inPath, detection.Timestamp)
	case tag == "slowmo":
		return e.applySlowmo(ctx, inPath, detection.Timestamp)
	case tag == "text":
		return e.applyText(ctx, inPath, detection)
	case strings.HasPrefix(tag, "emoji:"):
		return e.applyEmoji(ctx, inPath, detection.Timestamp, strings.TrimPrefix(tag, "emoji:"))
	case strings.HasPrefix(tag, "sound:"):
		return e.applySound(ctx, inPath, detection.Timestamp, strings.TrimPrefix(tag, "sound:"))
	default:
		e.logger.Debug("unknown effect tag, skipping", "tag", tag)
		return inPath, nil
	}
}

func (e *Engine) applyZoom(ctx context.Context, inPath string, timestamp float64) (string, error) {
	outPath, err := e.tempOutput()
	if err != nil {
		return inPath, err
	}

	filter := fmt.Sprintf(
		"[0:v]scale=iw*%[1]g:ih*%[1]g,crop=iw/%[1]g:ih/%[1]g:(iw-ow)/2:(ih-oh)/2[zoomed];"+
			"[0:v][zoomed]overlay=enable='between(t,%[2]g,%[3]g)'",
		zoomFactor, timestamp, timestamp+zoomDuration)

	if err := e.codec.ApplyFilterComplex(ctx, []string{inPath}, outPath, filter,
		"-c:v", "libx264", "-c:a", "copy"); err != nil {
		os.Remove(outPath)
		return inPath, err
	}
	return outPath, nil
}

func (e *Engine) applyEmoji(ctx context.Context, inPath string, timestamp float64, id string) (string, error) {
	emojiPath, ok := e.emoji[id]
	if !ok {
		e.logger.Warn("emoji not in library, skipping", "id", id)
		return inPath, nil
	}
	if _, err := os.Stat(emojiPath); err != nil {
		e.logger.Warn("emoji asset missing, skipping", "id", id, "path", emojiPath)
		return inPath, nil
	}

	outPath, err := e.tempOutput()
	if err != nil {
		return inPath, err
	}

	filter := fmt.Sprintf(
		"[1:v]scale=100:100[emoji];[0:v][emoji]overlay=W-110:10:enable='between(t,%g,%g)'",
		timestamp, timestamp+emojiDuration)

	if err := e.codec.ApplyFilterComplex(ctx, []string{inPath, emojiPath}, outPath, filter,
		"-c:v", "libx264", "-c:a", "copy"); err != nil {
		os.Remove(outPath)
		return inPath, err
	}
	return outPath, nil
}

func (e *Engine) applySound(ctx context.Context, inPath string, timestamp float64, id string) (string, error) {
	soundPath, ok := e.sounds[id]
	if !ok {
		e.logger.Warn("sound not in library, skipping", "id", id)
		return inPath, nil
	}
	if _, err := os.Stat(soundPath); err != nil {
		e.logger.Warn("sound asset missing, skipping", "id", id, "path", soundPath)
		return inPath, nil
	}

	outPath, err := e.tempOutput()
	if err != nil {
		return inPath, err
	}

	delayMillis := int(timestamp * 1000)
	filter := fmt.Sprintf(
		"[1:a]adelay=%d|%d[delayed];[0:a][delayed]amix=inputs=2[aout]",
		delayMillis, delayMillis)

	if err := e.codec.ApplyFilterComplex(ctx, []string{inPath, soundPath}, outPath, filter,
		"-map", "0:v", "-map", "[aout]", "-c:v", "copy"); err != nil {
		os.Remove(outPath)
		return inPath, err
	}
	return outPath, nil
}

func (e *Engine) applySlowmo(ctx context.Context, inPath string, timestamp float64) (string, error) {
	outPath, err := e.tempOutput()
	if err != nil {
		return inPath, err
	}

	filter := fmt.Sprintf("setpts='if(between(t,%g,%g),PTS/%g,PTS)'",
		timestamp, timestamp+slowmoDuration, slowmoFactor)

	if err := e.codec.ApplyVideoFilter(ctx, inPath, outPath, filter); err != nil {
		os.Remove(outPath)
		return inPath, err
	}
	return outPath, nil
}

func (e *Engine) applyText(ctx context.Context, inPath string, detection models.MemeDetection) (string, error) {
	outPath, err := e.tempOutput()
	if err != nil {
		return inPath, err
	}

	text := sanitizeDrawtext(memeText(detection))
	filter := fmt.Sprintf(
		"drawtext=text='%s':x=(w-text_w)/2:y=h-100:"+
			"fontsize=36:fontcolor=white:bordercolor=black:borderw=2:"+
			"enable='between(t,%g,%g)'",
		text, detection.Timestamp, detection.Timestamp+textDuration)

	if err := e.codec.ApplyVideoFilter(ctx, inPath, outPath, filter); err != nil {
		os.Remove(outPath)
		return inPath, err
	}
	return outPath, nil
}

func (e *Engine) tempOutput() (string, error) {
	f, err := os.CreateTemp(e.workDir, "effect_*.mp4")
	if err != nil {
		return "", fmt.Errorf("failed to create effect output: %w", err)
	}
	path := f.Name()
	f.Close()
	return path, nil
}
