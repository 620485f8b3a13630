package core

import "context"

// EmbeddingProvider turns texts into vectors, one per input and in input order.
// Each call is exactly one upstream request; batching is the caller's job.
type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
