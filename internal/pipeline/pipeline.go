// Package pipeline drives a video asset through load, audio extraction,
// transcription, caption burn-in, effect application and export. Each run
// is a linear state machine; any fatal stage failure moves it to the
// absorbing Failed state and cleans up the run's intermediate artifacts.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/bdougie/clipforge/internal/cache"
	"github.com/bdougie/clipforge/internal/effects"
	"github.com/bdougie/clipforge/internal/ffmpeg"
	"github.com/bdougie/clipforge/internal/models"
	"github.com/bdougie/clipforge/internal/subtitle"
)

// State is a pipeline run's position in the stage sequence.
type State string

const (
	StateReady          State = "ready"
	StateLoaded         State = "loaded"
	StateAudioExtracted State = "audio_extracted"
	StateTranscribed    State = "transcribed"
	StateCaptioned      State = "captioned"
	StateEffectsApplied State = "effects_applied"
	StateExported       State = "exported"
	StateFailed         State = "failed"
)

var (
	// ErrExportFailed means the final artifact could not be written to the
	// destination directory.
	ErrExportFailed = errors.New("export failed")
	// ErrInvalidState means a stage was invoked out of order.
	ErrInvalidState = errors.New("invalid pipeline state")
)

// Codec is the subset of the ffmpeg runner the orchestrator calls directly.
type Codec interface {
	Probe(ctx context.Context, path string) (ffmpeg.ProbeResult, error)
	ExtractAudio(ctx context.Context, inPath, outPath string) error
	BurnSubtitles(ctx context.Context, inPath, srtPath, outPath, forceStyle string) error
}

// Transcriber is the external transcription service boundary: an audio file
// and a model id in, a transcript and ordered segments out.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, model string) (string, []models.CaptionSegment, error)
}

// HistoryStore records completed runs. Recording is best-effort; a nil
// store disables it.
type HistoryStore interface {
	AddProcessingRecord(ctx context.Context, record models.ProcessingRecord, transcript string) (int, error)
}

// Pipeline holds the collaborators shared by runs. All dependencies are
// injected so tests can substitute fakes.
type Pipeline struct {
	codec       Codec
	transcriber Transcriber
	cache       cache.Cache
	effects     *effects.Engine
	history     HistoryStore
	logger      *slog.Logger
	workDir     string

	customFontSize  int
	customFontColor string
}

// Options tunes optional pipeline behavior.
type Options struct {
	History         HistoryStore
	WorkDir         string
	Logger          *slog.Logger
	CustomFontSize  int
	CustomFontColor string
}

// New wires a Pipeline from its collaborators.
func New(codec Codec, transcriber Transcriber, store cache.Cache, engine *effects.Engine, opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workDir := opts.WorkDir
	if workDir == "" {
		workDir = os.TempDir()
	}
	fontSize := opts.CustomFontSize
	if fontSize <= 0 {
		fontSize = 24
	}
	fontColor := opts.CustomFontColor
	if fontColor == "" {
		fontColor = "FFFFFF"
	}
	return &Pipeline{
		codec:           codec,
		transcriber:     transcriber,
		cache:           store,
		effects:         engine,
		history:         opts.History,
		logger:          logger,
		workDir:         workDir,
		customFontSize:  fontSize,
		customFontColor: fontColor,
	}
}

// Run is one pipeline execution over a single asset. It owns every
// intermediate artifact it creates and releases them at a terminal state.
type Run struct {
	ID string

	p *Pipeline

	state      State
	asset      *models.VideoAsset
	audio      *models.AudioTrack
	current    string
	transcript string
	captions   []models.CaptionSegment
	cacheHit   bool
	features   []string
	tempFiles  []string
	startedAt  time.Time
}

// NewRun starts a fresh run in the Ready state.
func (p *Pipeline) NewRun() *Run {
	return &Run{
		ID:        uuid.NewString(),
		p:         p,
		state:     StateReady,
		startedAt: time.Now(),
	}
}

// State returns the run's current state.
func (r *Run) State() State { return r.state }

// Asset returns the probed source asset, nil before Load.
func (r *Run) Asset() *models.VideoAsset { return r.asset }

// Captions returns the caption segments produced by Transcribe.
func (r *Run) Captions() []models.CaptionSegment { return r.captions }

// Transcript returns the full transcript text produced by Transcribe.
func (r *Run) Transcript() string { return r.transcript }

// fail moves the run to the absorbing Failed state, cleans up and returns
// an error naming the originating stage.
func (r *Run) fail(stage string, err error) error {
	r.state = StateFailed
	r.p.logger.Error("pipeline stage failed", "run", r.ID, "stage", stage, "error", err)
	r.Cleanup()
	return fmt.Errorf("stage %s: %w", stage, err)
}

// Load validates the asset and probes its properties.
func (r *Run) Load(ctx context.Context, path string) error {
	if r.state != StateReady {
		return fmt.Errorf("%w: load requires ready, got %s", ErrInvalidState, r.state)
	}
	if err := ctx.Err(); err != nil {
		return r.fail("load", err)
	}

	probed, err := r.p.codec.Probe(ctx, path)
	if err != nil {
		return r.fail("load", err)
	}
	if probed.FPS <= 0 {
		return r.fail("load", fmt.Errorf("%w: zero or negative frame rate in %s", ffmpeg.ErrAssetUnreadable, path))
	}

	fingerprint, err := cache.Fingerprint(path)
	if err != nil {
		return r.fail("load", fmt.Errorf("%w: %v", ffmpeg.ErrAssetUnreadable, err))
	}

	r.asset = &models.VideoAsset{
		Path:        path,
		Fingerprint: fingerprint,
		Duration:    probed.Duration,
		FPS:         probed.FPS,
		Width:       probed.Width,
		Height:      probed.Height,
	}
	r.current = path
	r.state = StateLoaded

	r.p.logger.Info("video loaded", "run", r.ID, "path", path,
		"duration", probed.Duration, "fps", probed.FPS,
		"size", fmt.Sprintf("%dx%d", probed.Width, probed.Height))
	return nil
}

// ExtractAudio produces the mono 16 kHz track used for transcription.
func (r *Run) ExtractAudio(ctx context.Context) error {
	if r.state != StateLoaded {
		return fmt.Errorf("%w: extract audio requires loaded, got %s", ErrInvalidState, r.state)
	}
	if err := ctx.Err(); err != nil {
		return r.fail("extract_audio", err)
	}

	audioPath, err := r.tempFile("audio_*.wav")
	if err != nil {
		return r.fail("extract_audio", err)
	}
	if err := r.p.codec.ExtractAudio(ctx, r.asset.Path, audioPath); err != nil {
		return r.fail("extract_audio", err)
	}

	r.audio = &models.AudioTrack{Path: audioPath, SampleRate: 16000, Channels: 1}
	r.state = StateAudioExtracted

	r.p.logger.Info("audio extracted", "run", r.ID, "path", audioPath)
	return nil
}

// TranscribeResult reports the captions and whether they came from the
// cache, so callers can observe hit vs. miss.
type TranscribeResult struct {
	Captions []models.CaptionSegment
	CacheHit bool
}

// Transcribe resolves captions through the cache, invoking the external
// transcription service only on a miss. Cache failures degrade to
// recomputation and never fail the run.
func (r *Run) Transcribe(ctx context.Context, model string) (TranscribeResult, error) {
	if r.state != StateAudioExtracted {
		return TranscribeResult{}, fmt.Errorf("%w: transcribe requires audio_extracted, got %s", ErrInvalidState, r.state)
	}
	if !models.ValidModel(model) {
		return TranscribeResult{}, r.fail("transcribe", fmt.Errorf("unknown transcription model %q", model))
	}
	if err := ctx.Err(); err != nil {
		return TranscribeResult{}, r.fail("transcribe", err)
	}

	if r.p.cache != nil {
		entry, hit, err := r.p.cache.Get(ctx, r.asset.Fingerprint, model)
		if err != nil {
			r.p.logger.Warn("cache read failed, recomputing", "run", r.ID, "error", err)
		} else if hit {
			r.transcript = entry.Transcript
			r.captions = entry.Captions
			r.cacheHit = true
			r.state = StateTranscribed
			r.p.logger.Info("transcription cache hit", "run", r.ID, "model", model, "captions", len(entry.Captions))
			return TranscribeResult{Captions: r.captions, CacheHit: true}, nil
		}
	}

	transcript, captions, err := r.p.transcriber.Transcribe(ctx, r.audio.Path, model)
	if err != nil {
		return TranscribeResult{}, r.fail("transcribe", err)
	}

	if r.p.cache != nil {
		entry := &models.CacheEntry{Transcript: transcript, Captions: captions}
		if err := r.p.cache.Put(ctx, r.asset.Fingerprint, model, entry); err != nil {
			r.p.logger.Warn("cache write failed", "run", r.ID, "error", err)
		}
	}

	r.transcript = transcript
	r.captions = captions
	r.cacheHit = false
	r.state = StateTranscribed

	r.p.logger.Info("transcription complete", "run", r.ID, "model", model, "captions", len(captions))
	return TranscribeResult{Captions: captions, CacheHit: false}, nil
}

// Caption burns the captions into the video with the named style.
func (r *Run) Caption(ctx context.Context, style string) error {
	if r.state != StateTranscribed {
		return fmt.Errorf("%w: caption requires transcribed, got %s", ErrInvalidState, r.state)
	}
	if err := ctx.Err(); err != nil {
		return r.fail("caption", err)
	}

	srtPath, err := r.tempFile("captions_*.srt")
	if err != nil {
		return r.fail("caption", err)
	}
	if err := os.WriteFile(srtPath, subtitle.Marshal(r.captions), 0644); err != nil {
		return r.fail("caption", err)
	}

	outPath, err := r.tempFile("captioned_*.mp4")
	if err != nil {
		return r.fail("caption", err)
	}

	forceStyle := forceStyleFor(style, r.p.customFontSize, r.p.customFontColor)
	if err := r.p.codec.BurnSubtitles(ctx, r.current, srtPath, outPath, forceStyle); err != nil {
		return r.fail("caption", err)
	}

	r.current = outPath
	r.state = StateCaptioned
	r.features = append(r.features, "captions")

	r.p.logger.Info("captions burned in", "run", r.ID, "style", style)
	return nil
}

// ApplyEffects delegates to the effect engine. An empty detection list is
// a no-op that still advances the state machine.
func (r *Run) ApplyEffects(ctx context.Context, detections []models.MemeDetection) error {
	if r.state != StateCaptioned {
		return fmt.Errorf("%w: apply effects requires captioned, got %s", ErrInvalidState, r.state)
	}
	if err := ctx.Err(); err != nil {
		return r.fail("apply_effects", err)
	}

	// The engine returns the last good intermediate even on error; claim it
	// before the error check so a failed run reclaims it too.
	out, err := r.p.effects.Apply(ctx, r.current, detections)
	if out != r.current {
		r.tempFiles = append(r.tempFiles, out)
		r.current = out
	}
	if err != nil {
		return r.fail("apply_effects", err)
	}
	if len(detections) > 0 {
		r.features = append(r.features, "effects")
	}
	r.state = StateEffectsApplied

	r.p.logger.Info("effects applied", "run", r.ID, "directives", len(detections))
	return nil
}

// Export copies the final artifact to a uniquely named file in outputDir,
// records the run in history, and releases all intermediate artifacts.
func (r *Run) Export(ctx context.Context, outputDir string) (string, error) {
	if r.state != StateCaptioned && r.state != StateEffectsApplied {
		return "", fmt.Errorf("%w: export requires captioned or effects_applied, got %s", ErrInvalidState, r.state)
	}
	if err := ctx.Err(); err != nil {
		return "", r.fail("export", err)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", r.fail("export", fmt.Errorf("%w: %v", ErrExportFailed, err))
	}

	destPath := filepath.Join(outputDir,
		fmt.Sprintf("clipforge_%s_%d.mp4", r.ID[:8], time.Now().Unix()))
	if err := copyFile(r.current, destPath); err != nil {
		// A failed copy leaves a partial destination; reclaim it.
		if rmErr := os.Remove(destPath); rmErr != nil && !os.IsNotExist(rmErr) {
			r.p.logger.Warn("failed to remove partial export", "run", r.ID, "path", destPath, "error", rmErr)
		}
		return "", r.fail("export", fmt.Errorf("%w: %v", ErrExportFailed, err))
	}

	r.state = StateExported
	r.recordHistory(ctx)
	r.Cleanup()

	r.p.logger.Info("video exported", "run", r.ID, "path", destPath)
	return destPath, nil
}

// recordHistory appends the completed run to the history store.
// Best-effort: persistence failures never affect the exported artifact.
func (r *Run) recordHistory(ctx context.Context) {
	if r.p.history == nil {
		return
	}

	var fileSize int64
	if info, err := os.Stat(r.asset.Path); err == nil {
		fileSize = info.Size()
	}

	record := models.ProcessingRecord{
		Filename:       filepath.Base(r.asset.Path),
		FileSize:       fileSize,
		Duration:       r.asset.Duration,
		ProcessingTime: time.Since(r.startedAt).Seconds(),
		FeaturesUsed:   r.features,
		Status:         "completed",
	}
	if _, err := r.p.history.AddProcessingRecord(ctx, record, r.transcript); err != nil {
		r.p.logger.Warn("failed to record processing history", "run", r.ID, "error", err)
	}
}

// Cleanup removes every intermediate artifact the run created. Deletion
// failures are logged, never fatal.
func (r *Run) Cleanup() {
	for _, path := range r.tempFiles {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			r.p.logger.Warn("failed to remove temp file", "run", r.ID, "path", path, "error", err)
		}
	}
	r.tempFiles = nil
}

// tempFile creates an empty run-owned file in the work directory and
// registers it for cleanup.
func (r *Run) tempFile(pattern string) (string, error) {
	f, err := os.CreateTemp(r.p.workDir, pattern)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	path := f.Name()
	f.Close()
	r.tempFiles = append(r.tempFiles, path)
	return path, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
