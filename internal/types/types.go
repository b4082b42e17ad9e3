package types

import (
	"context"

	"github.com/raglab/deeprag/internal/models"
)

// Core interfaces. Concrete adapters are selected by configuration at
// startup; the pipeline only ever sees these.

// Embedder maps a batch of texts to fixed-dimension vectors,
// order-preserving and same length as the input.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	Model() string
}

// VectorIndex persists embedding records and supports nearest-neighbor
// search with a similarity threshold.
type VectorIndex interface {
	CreateIndex(ctx context.Context, name string, dimension int) error
	Upsert(ctx context.Context, indexName string, records []models.IndexRecord) error
	Search(ctx context.Context, indexName string, queryVector []float32, topK int, threshold float32) ([]models.SearchResult, error)
	Close()
}

// ChatModel generates a grounded answer from a question and retrieved
// context passages. Chat is the direct-dialogue mode, with no retrieved
// context.
type ChatModel interface {
	Generate(ctx context.Context, question string, contextTexts []string, systemInstructions string) (string, error)
	Chat(ctx context.Context, message string, systemInstructions string) (string, error)
	Model() string
}

// StreamingChatModel is implemented by chat models that can deliver the
// answer incrementally.
type StreamingChatModel interface {
	GenerateStream(ctx context.Context, question string, contextTexts []string, systemInstructions string, send func(chunk string) error) error
}

// Retriever embeds a question and searches the vector index.
type Retriever interface {
	Retrieve(ctx context.Context, question string, topK int, threshold float32) ([]models.SearchResult, error)
}
