// Package storage persists processing history, the transcription cache and
// the running statistics aggregate in PostgreSQL.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/bdougie/clipforge/internal/cache"
	"github.com/bdougie/clipforge/internal/embeddings"
	"github.com/bdougie/clipforge/internal/models"
)

// PostgresConfig holds connection details for PostgreSQL.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

func (c PostgresConfig) connString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		c.User, c.Password, c.Host, c.Port, c.DBName,
	)
}

// PostgresStore manages interaction with PostgreSQL. It also satisfies
// cache.Cache, so deployments with a database can back the transcription
// cache with the transcription_cache table instead of the file store.
type PostgresStore struct {
	pool       *pgxpool.Pool
	embeddings *embeddings.Service
	logger     *slog.Logger
}

// NewPostgresStore connects to PostgreSQL and verifies the connection.
// The embeddings service is optional; without it history rows are stored
// without transcript embeddings and similarity search is unavailable.
func NewPostgresStore(ctx context.Context, config PostgresConfig, embedSvc *embeddings.Service, logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	pool, err := pgxpool.New(ctx, config.connString())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{pool: pool, embeddings: embedSvc, logger: logger}, nil
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InitSchema creates the database schema if it doesn't exist.
func InitSchema(ctx context.Context, config PostgresConfig) error {
	conn, err := pgx.Connect(ctx, config.connString())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	_, err = conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS processing_history (
            id SERIAL PRIMARY KEY,
            filename VARCHAR(255) NOT NULL,
            file_size BIGINT,
            duration DOUBLE PRECISION,
            processing_time DOUBLE PRECISION,
            features_used TEXT,
            status VARCHAR(32) NOT NULL DEFAULT 'completed',
            transcript TEXT,
            embedding vector(768),
            created_at TIMESTAMPTZ NOT NULL DEFAULT now()
        );

        CREATE TABLE IF NOT EXISTS transcription_cache (
            id SERIAL PRIMARY KEY,
            file_hash VARCHAR(64) NOT NULL,
            model_used VARCHAR(32) NOT NULL,
            transcript_data TEXT,
            captions_data TEXT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            UNIQUE(file_hash, model_used)
        );

        CREATE TABLE IF NOT EXISTS app_statistics (
            id SERIAL PRIMARY KEY,
            videos_processed INTEGER NOT NULL DEFAULT 0,
            total_processing_time DOUBLE PRECISION NOT NULL DEFAULT 0,
            features_usage TEXT,
            last_updated TIMESTAMPTZ NOT NULL DEFAULT now()
        );
    `)
	if err != nil {
		return fmt.Errorf("failed to create database schema: %w", err)
	}

	_, err = conn.Exec(ctx, `
        CREATE INDEX IF NOT EXISTS idx_history_created_at ON processing_history(created_at);
        CREATE INDEX IF NOT EXISTS idx_cache_key ON transcription_cache(file_hash, model_used);
    `)
	if err != nil {
		return fmt.Errorf("failed to create database indexes: %w", err)
	}

	return nil
}

// AddProcessingRecord appends one row to processing history, updates the
// statistics aggregate, and stores a transcript embedding when an
// embeddings service is configured.
func (s *PostgresStore) AddProcessingRecord(ctx context.Context, record models.ProcessingRecord, transcript string) (int, error) {
	features, err := json.Marshal(record.FeaturesUsed)
	if err != nil {
		return 0, fmt.Errorf("failed to encode features: %w", err)
	}

	status := record.Status
	if status == "" {
		status = "completed"
	}

	var embedding *pgvector.Vector
	if s.embeddings != nil && transcript != "" {
		result := <-s.embeddings.Get(transcript)
		if result.Err != nil {
			s.logger.Warn("failed to generate transcript embedding", "error", result.Err)
		} else {
			v := pgvector.NewVector(result.Embedding)
			embedding = &v
		}
	}

	var id int
	err = s.pool.QueryRow(ctx,
		`INSERT INTO processing_history
        (filename, file_size, duration, processing_time, features_used, status, transcript, embedding)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id`,
		record.Filename, record.FileSize, record.Duration, record.ProcessingTime,
		string(features), status, transcript, embedding).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to store processing record: %w", err)
	}

	if err := s.updateStatistics(ctx, record.ProcessingTime, record.FeaturesUsed); err != nil {
		// The aggregate is derived data; a failed update never fails the run.
		s.logger.Warn("failed to update statistics", "error", err)
	}

	return id, nil
}

// GetProcessingHistory returns the most recent history rows.
func (s *PostgresStore) GetProcessingHistory(ctx context.Context, limit int) ([]models.ProcessingRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, filename, file_size, duration, processing_time, features_used, status, created_at
        FROM processing_history
        ORDER BY created_at DESC
        LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query processing history: %w", err)
	}
	defer rows.Close()

	var records []models.ProcessingRecord
	for rows.Next() {
		var r models.ProcessingRecord
		var features string
		if err := rows.Scan(&r.ID, &r.Filename, &r.FileSize, &r.Duration,
			&r.ProcessingTime, &features, &r.Status, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		if err := json.Unmarshal([]byte(features), &r.FeaturesUsed); err != nil {
			r.FeaturesUsed = nil
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *PostgresStore) updateStatistics(ctx context.Context, processingTime float64, featuresUsed []string) error {
	var (
		id        int
		processed int
		totalTime float64
		usageJSON *string
	)

	err := s.pool.QueryRow(ctx,
		"SELECT id, videos_processed, total_processing_time, features_usage FROM app_statistics ORDER BY id DESC LIMIT 1").
		Scan(&id, &processed, &totalTime, &usageJSON)

	usage := map[string]int{}
	if err == nil && usageJSON != nil {
		if jsonErr := json.Unmarshal([]byte(*usageJSON), &usage); jsonErr != nil {
			usage = map[string]int{}
		}
	}
	for _, feature := range featuresUsed {
		usage[feature]++
	}
	encoded, jsonErr := json.Marshal(usage)
	if jsonErr != nil {
		return jsonErr
	}

	if errors.Is(err, pgx.ErrNoRows) {
		_, err = s.pool.Exec(ctx,
			`INSERT INTO app_statistics (videos_processed, total_processing_time, features_usage)
            VALUES (1, $1, $2)`,
			processingTime, string(encoded))
		return err
	}
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx,
		`UPDATE app_statistics
        SET videos_processed = $1, total_processing_time = $2,
            features_usage = $3, last_updated = now()
        WHERE id = $4`,
		processed+1, totalTime+processingTime, string(encoded), id)
	return err
}

// GetStatistics returns the current statistics aggregate, zero-valued when
// no run has completed yet.
func (s *PostgresStore) GetStatistics(ctx context.Context) (models.Statistics, error) {
	var (
		stats     models.Statistics
		usageJSON *string
	)

	err := s.pool.QueryRow(ctx,
		"SELECT videos_processed, total_processing_time, features_usage, last_updated FROM app_statistics ORDER BY id DESC LIMIT 1").
		Scan(&stats.VideosProcessed, &stats.TotalProcessingTime, &usageJSON, &stats.LastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Statistics{FeaturesUsage: map[string]int{}}, nil
	}
	if err != nil {
		return models.Statistics{}, fmt.Errorf("failed to query statistics: %w", err)
	}

	stats.FeaturesUsage = map[string]int{}
	if usageJSON != nil {
		if err := json.Unmarshal([]byte(*usageJSON), &stats.FeaturesUsage); err != nil {
			stats.FeaturesUsage = map[string]int{}
		}
	}
	return stats, nil
}

// Get implements cache.Cache over the transcription_cache table.
func (s *PostgresStore) Get(ctx context.Context, fingerprint, model string) (*models.CacheEntry, bool, error) {
	var (
		transcript string
		captions   string
		createdAt  time.Time
	)

	err := s.pool.QueryRow(ctx,
		`SELECT transcript_data, captions_data, created_at
        FROM transcription_cache
        WHERE file_hash = $1 AND model_used = $2`,
		fingerprint, model).Scan(&transcript, &captions, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", cache.ErrCacheUnavailable, err)
	}

	entry := &models.CacheEntry{Transcript: transcript, CreatedAt: createdAt}
	if err := json.Unmarshal([]byte(captions), &entry.Captions); err != nil {
		// Corrupt captions behave like a miss; the next Put repairs the row.
		s.logger.Warn("discarding corrupt cache row", "fingerprint", fingerprint, "model", model, "error", err)
		return nil, false, nil
	}
	return entry, true, nil
}

// Put implements cache.Cache: an upsert on (file_hash, model_used).
func (s *PostgresStore) Put(ctx context.Context, fingerprint, model string, entry *models.CacheEntry) error {
	captions, err := json.Marshal(entry.Captions)
	if err != nil {
		return fmt.Errorf("%w: %v", cache.ErrCacheUnavailable, err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO transcription_cache (file_hash, model_used, transcript_data, captions_data)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (file_hash, model_used)
        DO UPDATE SET transcript_data = EXCLUDED.transcript_data,
                      captions_data = EXCLUDED.captions_data,
                      created_at = now()`,
		fingerprint, model, entry.Transcript, string(captions))
	if err != nil {
		return fmt.Errorf("%w: %v", cache.ErrCacheUnavailable, err)
	}
	return nil
}

// Evict implements cache.Cache: unconditional TTL cleanup.
func (s *PostgresStore) Evict(ctx context.Context, olderThan time.Duration) (int, error) {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM transcription_cache WHERE created_at < $1",
		time.Now().UTC().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", cache.ErrCacheUnavailable, err)
	}
	return int(tag.RowsAffected()), nil
}

// SearchSimilarVideos finds previously processed videos whose transcripts
// are semantically close to the query.
func (s *PostgresStore) SearchSimilarVideos(ctx context.Context, query string, limit int) ([]models.VideoSearchResult, error) {
	if s.embeddings == nil {
		return nil, errors.New("similarity search requires an embeddings service")
	}

	result := <-s.embeddings.Get(query)
	if result.Err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", result.Err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT filename, transcript, 1 - (embedding <=> $1) AS similarity
        FROM processing_history
        WHERE embedding IS NOT NULL
        ORDER BY embedding <=> $1
        LIMIT $2`,
		pgvector.NewVector(result.Embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search similar videos: %w", err)
	}
	defer rows.Close()

	var results []models.VideoSearchResult
	for rows.Next() {
		var r models.VideoSearchResult
		if err := rows.Scan(&r.Filename, &r.Transcript, &r.Similarity); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
