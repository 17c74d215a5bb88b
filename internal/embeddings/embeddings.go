// Package embeddings generates transcript embeddings through a pool of
// workers with in-memory memoization.
package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// EmbedFunc turns a piece of text into a vector embedding.
type EmbedFunc func(ctx context.Context, content string) ([]float32, error)

// Result represents the result of embedding generation.
type Result struct {
	Content   string
	Embedding []float32
	Err       error
}

type work struct {
	content string
	result  chan<- Result
}

// Service manages embedding generation and caching.
type Service struct {
	embed     EmbedFunc
	workQueue chan work
	cache     sync.Map
	wg        sync.WaitGroup
}

// NewService creates an embedding service backed by numWorkers goroutines.
func NewService(numWorkers int, embed EmbedFunc) *Service {
	if numWorkers <= 0 {
		numWorkers = 4
	}

	s := &Service{
		embed:     embed,
		workQueue: make(chan work, 100),
	}

	for i := 0; i < numWorkers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
	return s
}

func (s *Service) worker() {
	defer s.wg.Done()
	for w := range s.workQueue {
		if cached, ok := s.cache.Load(w.content); ok {
			if embedding, valid := cached.([]float32); valid {
				w.result <- Result{Content: w.content, Embedding: embedding}
				continue
			}
		}

		embedding, err := s.embed(context.Background(), w.content)
		if err == nil {
			s.cache.Store(w.content, embedding)
		}
		w.result <- Result{Content: w.content, Embedding: embedding, Err: err}
	}
}

// Get requests an embedding asynchronously. The returned channel receives
// exactly one Result.
func (s *Service) Get(content string) <-chan Result {
	resultChan := make(chan Result, 1)

	select {
	case s.workQueue <- work{content: content, result: resultChan}:
	default:
		resultChan <- Result{
			Content: content,
			Err:     fmt.Errorf("embedding queue is full, try again later"),
		}
		close(resultChan)
	}
	return resultChan
}

// Close shuts down the service and waits for all workers to finish.
func (s *Service) Close() {
	if s.workQueue != nil {
		close(s.workQueue)
	}
	s.wg.Wait()
}

// NewOllamaEmbedder returns an EmbedFunc backed by Ollama's embeddings
// endpoint.
func NewOllamaEmbedder(baseURL, model string) EmbedFunc {
	client := &http.Client{Timeout: 30 * time.Second}

	return func(ctx context.Context, content string) ([]float32, error) {
		payload, err := json.Marshal(map[string]string{
			"model":  model,
			"prompt": content,
		})
		if err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/embeddings", bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("embedding request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("embedding request returned status %d", resp.StatusCode)
		}

		var decoded struct {
			Embedding []float32 `json:"embedding"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			return nil, fmt.Errorf("failed to decode embedding response: %w", err)
		}
		if len(decoded.Embedding) == 0 {
			return nil, fmt.Errorf("embedding response was empty")
		}
		return decoded.Embedding, nil
	}
}
