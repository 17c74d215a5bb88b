package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"log/slog"

	"github.com/lmittmann/tint"

	"github.com/bdougie/clipforge/internal/cache"
	"github.com/bdougie/clipforge/internal/config"
	"github.com/bdougie/clipforge/internal/effects"
	"github.com/bdougie/clipforge/internal/embeddings"
	"github.com/bdougie/clipforge/internal/ffmpeg"
	"github.com/bdougie/clipforge/internal/pipeline"
	"github.com/bdougie/clipforge/internal/storage"
	"github.com/bdougie/clipforge/internal/suggest"
	"github.com/bdougie/clipforge/internal/transcribe"
)

func main() {
	ctx := context.Background()

	// Configure logger
	logger := slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: "15:04:05",
		}),
	)

	cfg := config.Load()

	// Parse command line arguments
	videoPath := ""
	outputDir := cfg.OutputDir
	style := pipeline.StyleStandard
	model := cfg.WhisperModel
	noEffects := false
	useDB := false
	searchQuery := ""
	showStats := false

	for i := 1; i < len(os.Args); i++ {
		switch os.Args[i] {
		case "--video":
			if i+1 < len(os.Args) {
				videoPath = os.Args[i+1]
				i++
			}
		case "--output":
			if i+1 < len(os.Args) {
				outputDir = os.Args[i+1]
				i++
			}
		case "--style":
			if i+1 < len(os.Args) {
				style = os.Args[i+1]
				i++
			}
		case "--model":
			if i+1 < len(os.Args) {
				model = os.Args[i+1]
				i++
			}
		case "--no-effects":
			noEffects = true
		case "--db":
			useDB = true
		case "--search":
			if i+1 < len(os.Args) {
				searchQuery = os.Args[i+1]
				useDB = true
				i++
			}
		case "--stats":
			showStats = true
			useDB = true
		}
	}

	if videoPath == "" && searchQuery == "" && !showStats {
		fmt.Println("Usage: clipforge --video path/to/video.mp4 [--output dir] [--style Standard|TikTok|YouTube|Custom] [--model base] [--no-effects] [--db]")
		fmt.Println("       clipforge --search \"query\" | --stats")
		os.Exit(1)
	}

	// Optional Postgres persistence with transcript embeddings.
	var store *storage.PostgresStore
	var embedSvc *embeddings.Service
	if useDB {
		pgConfig := storage.PostgresConfig{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPassword,
			DBName:   cfg.PostgresDB,
		}
		if err := storage.InitSchema(ctx, pgConfig); err != nil {
			log.Fatalf("Failed to initialize database schema: %v", err)
		}

		embedSvc = embeddings.NewService(2, embeddings.NewOllamaEmbedder(
			fmt.Sprintf("%s:%d", cfg.OllamaBaseURL, cfg.OllamaPort), "nomic-embed-text"))
		defer embedSvc.Close()

		var err error
		store, err = storage.NewPostgresStore(ctx, pgConfig, embedSvc, logger)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer store.Close()
	}

	if searchQuery != "" {
		results, err := store.SearchSimilarVideos(ctx, searchQuery, 10)
		if err != nil {
			log.Fatalf("Search failed: %v", err)
		}
		for _, r := range results {
			fmt.Printf("%.3f  %s  %s\n", r.Similarity, r.Filename, snippet(r.Transcript, 80))
		}
		return
	}

	if showStats {
		stats, err := store.GetStatistics(ctx)
		if err != nil {
			log.Fatalf("Failed to load statistics: %v", err)
		}
		fmt.Printf("Videos processed:     %d\n", stats.VideosProcessed)
		fmt.Printf("Total processing (s): %.1f\n", stats.TotalProcessingTime)
		for feature, count := range stats.FeaturesUsage {
			fmt.Printf("  %-12s %d\n", feature, count)
		}
		return
	}

	// Local transcription cache, with Postgres taking over when enabled.
	fileStore, err := cache.NewFileStore(cfg.CacheDir, logger)
	if err != nil {
		log.Fatalf("Failed to open transcription cache: %v", err)
	}
	var transcriptionCache cache.Cache = fileStore
	if store != nil {
		transcriptionCache = store
	}

	retention := time.Duration(cfg.CacheRetentionDays) * 24 * time.Hour
	if removed, err := transcriptionCache.Evict(ctx, retention); err != nil {
		logger.Warn("cache eviction failed", "error", err)
	} else if removed > 0 {
		logger.Info("evicted expired cache entries", "count", removed)
	}

	// Content analysis agent. Unreachable Ollama degrades to keyword and
	// static fallbacks rather than failing the run.
	var completer suggest.Completer
	if ac, err := suggest.NewOllamaCompleter(ctx, logger, cfg.OllamaBaseURL, cfg.OllamaPort, cfg.OllamaModel); err != nil {
		logger.Warn("ollama unreachable, using fallback suggestions", "error", err)
	} else {
		completer = ac
	}
	analyzer := suggest.NewAnalyzer(completer, logger)

	runner := ffmpeg.NewRunner(cfg.FFmpegBin, cfg.FFprobeBin, ffmpeg.DefaultTimeout, logger)
	engine := effects.NewEngine(runner, cfg.WorkDir, "assets", logger)
	transcriber := transcribe.NewWhisperCLI(cfg.WhisperBin, cfg.WorkDir, logger)

	var history pipeline.HistoryStore
	if store != nil {
		history = store
	}
	pipe := pipeline.New(runner, transcriber, transcriptionCache, engine, pipeline.Options{
		History:         history,
		WorkDir:         cfg.WorkDir,
		Logger:          logger,
		CustomFontSize:  cfg.CaptionFontSize,
		CustomFontColor: cfg.CaptionFontColor,
	})

	fmt.Println("Starting video processing...")
	run := pipe.NewRun()
	if err := run.Load(ctx, videoPath); err != nil {
		log.Fatalf("Error loading video: %v", err)
	}
	if err := run.ExtractAudio(ctx); err != nil {
		log.Fatalf("Error extracting audio: %v", err)
	}

	result, err := run.Transcribe(ctx, model)
	if err != nil {
		log.Fatalf("Error transcribing audio: %v", err)
	}
	if result.CacheHit {
		fmt.Println("Transcription loaded from cache")
	}

	if err := run.Caption(ctx, style); err != nil {
		log.Fatalf("Error burning captions: %v", err)
	}

	if !noEffects {
		detections := analyzer.DetectMemeMoments(ctx, run.Captions())
		fmt.Printf("Detected %d meme moments\n", len(detections))
		if err := run.ApplyEffects(ctx, detections); err != nil {
			log.Fatalf("Error applying effects: %v", err)
		}
	}

	outPath, err := run.Export(ctx, outputDir)
	if err != nil {
		log.Fatalf("Error exporting video: %v", err)
	}

	asset := run.Asset()
	for _, s := range analyzer.SuggestBroll(ctx, run.Transcript(), asset.Duration) {
		fmt.Printf("B-roll @ %.1fs (%.0f%%): %s\n", s.Timestamp, s.Confidence*100, s.Description)
	}
	for category, ideas := range analyzer.SuggestEnhancements(ctx, run.Transcript(), asset.Duration, asset.FPS) {
		fmt.Printf("%s:\n", category)
		for _, idea := range ideas {
			fmt.Printf("  - %s\n", idea)
		}
	}

	fmt.Printf("Video processing completed: %s\n", outPath)
}

func snippet(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
