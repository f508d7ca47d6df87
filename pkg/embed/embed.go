// Package embed provides the embedding providers used for sense matching
// and the cosine measure over their vectors.
package embed

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// Encoder maps a batch of strings to fixed-length numeric vectors. For one
// encoder instance every returned vector has length Dimension, and
// identical inputs yield identical vectors.
type Encoder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// ErrShapeMismatch reports a provider returning the wrong number of
// vectors or a vector of the wrong length.
var ErrShapeMismatch = errors.New("embedding response shape mismatch")

// Config selects and tunes a provider.
type Config struct {
	Provider  string // "local" (default) or "http"
	Model     string
	Device    string
	Endpoint  string
	Dimension int
	Workers   int
	Timeout   time.Duration
}

// New returns the provider named by cfg.Provider. Construction failures
// are fatal to the run; providers are never re-initialized mid-stream.
func New(ctx context.Context, cfg Config) (Encoder, error) {
	switch cfg.Provider {
	case "", "local":
		return NewLocal(LocalOptions{Dimension: cfg.Dimension, Workers: cfg.Workers}), nil
	case "http":
		return NewHTTP(ctx, HTTPOptions{
			Endpoint: cfg.Endpoint,
			Model:    cfg.Model,
			Device:   cfg.Device,
			Timeout:  cfg.Timeout,
		})
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

// Cosine returns the cosine similarity of two vectors in [-1, 1]. Vectors
// of different lengths or zero magnitude score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
