package store

import (
	"context"
	"log"
	"math"
	"sort"
	"sync"

	"github.com/raglab/deeprag/internal/models"
	"github.com/raglab/deeprag/pkg/apperr"
)

// MemoryStore is a brute-force in-memory vector index with cosine
// similarity. It backs tests and deployments without a database URL.
type MemoryStore struct {
	mu      sync.RWMutex
	indexes map[string]*memIndex
}

type memIndex struct {
	dimension int
	records   []models.IndexRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{indexes: make(map[string]*memIndex)}
}

func (s *MemoryStore) CreateIndex(ctx context.Context, name string, dimension int) error {
	if dimension < 1 {
		return apperr.Configurationf("index dimension must be positive, got %d", dimension)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx, ok := s.indexes[name]; ok {
		if idx.dimension != dimension {
			return apperr.Configurationf("index %s exists with dimension %d, requested %d", name, idx.dimension, dimension)
		}
		log.Printf("index %s already exists with dimension %d", name, dimension)
		return nil
	}
	s.indexes[name] = &memIndex{dimension: dimension}
	return nil
}

func (s *MemoryStore) Upsert(ctx context.Context, indexName string, records []models.IndexRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.indexes[indexName]
	if !ok {
		return apperr.NotFoundf("unknown index: %s", indexName)
	}
	for _, r := range records {
		if len(r.Vector) != idx.dimension {
			return apperr.Configurationf("record vector has dimension %d, index %s expects %d", len(r.Vector), indexName, idx.dimension)
		}
	}
	idx.records = append(idx.records, records...)
	return nil
}

func (s *MemoryStore) Search(ctx context.Context, indexName string, queryVector []float32, topK int, threshold float32) ([]models.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.indexes[indexName]
	if !ok {
		return nil, apperr.NotFoundf("unknown index: %s", indexName)
	}
	if topK < 1 {
		topK = 5
	}

	var results []models.SearchResult
	for _, r := range idx.records {
		sim := cosineSimilarity(r.Vector, queryVector)
		if sim < threshold {
			continue
		}
		results = append(results, models.SearchResult{
			Content:    r.Text,
			Metadata:   r.Metadata,
			Similarity: sim,
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (s *MemoryStore) Close() {}

func cosineSimilarity(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
