// Package retriever embeds a question and queries the vector index. It
// holds no cache and performs no retries; sub-call failures propagate
// unchanged to the caller.
package retriever

import (
	"context"

	"github.com/raglab/deeprag/internal/models"
	"github.com/raglab/deeprag/internal/types"
)

const (
	DefaultTopK      = 5
	DefaultThreshold = 0.7
)

type Retriever struct {
	embedder  types.Embedder
	index     types.VectorIndex
	indexName string
}

func New(embedder types.Embedder, index types.VectorIndex, indexName string) *Retriever {
	return &Retriever{embedder: embedder, index: index, indexName: indexName}
}

// Retrieve embeds the question as a single-element batch and searches
// the index. Fewer than topK results, or none at all, is a valid outcome.
func (r *Retriever) Retrieve(ctx context.Context, question string, topK int, threshold float32) ([]models.SearchResult, error) {
	if topK < 1 {
		topK = DefaultTopK
	}

	vectors, err := r.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, err
	}

	return r.index.Search(ctx, r.indexName, vectors[0], topK, threshold)
}
