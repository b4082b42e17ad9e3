// Package app wires configuration into a ready service: embedder, chat
// engine, vector index and the facade. Both binaries bootstrap through
// it.
package app

import (
	"log"

	"github.com/raglab/deeprag/internal/types"
	"github.com/raglab/deeprag/pkg/chunker"
	cfgPkg "github.com/raglab/deeprag/pkg/config"
	"github.com/raglab/deeprag/pkg/llm"
	"github.com/raglab/deeprag/pkg/rag"
	"github.com/raglab/deeprag/pkg/store"
)

// BuildService assembles the service from config. An empty database URL
// selects the in-memory index so the binaries run without Postgres.
// The caller owns the returned index and must Close it.
func BuildService(config *cfgPkg.Config) (*rag.Service, types.VectorIndex, error) {
	embedder, err := llm.NewEmbedderWithConfig(llm.EmbedderConfig{
		Provider:  config.Embedding.Provider,
		Model:     config.Embedding.Model,
		BaseURL:   config.Embedding.BaseURL,
		APIKeyEnv: config.Embedding.APIKeyEnv,
		Dimension: config.Embedding.Dimension,
	})
	if err != nil {
		return nil, nil, err
	}

	chatEngine, err := llm.NewWithConfig(llm.ChatConfig{
		Provider:    config.LLM.Provider,
		Model:       config.LLM.Model,
		BaseURL:     config.LLM.BaseURL,
		APIKeyEnv:   config.LLM.APIKeyEnv,
		Temperature: config.LLM.Temperature,
		MaxTokens:   config.LLM.MaxTokens,
	})
	if err != nil {
		return nil, nil, err
	}

	var index types.VectorIndex
	if config.Database.URL == "" {
		log.Println("no database URL configured, using in-memory vector index")
		index = store.NewMemoryStore()
	} else {
		index, err = store.NewWithConfig(store.VectorStoreConfig{
			ConnString: config.Database.URL,
		})
		if err != nil {
			return nil, nil, err
		}
	}

	service := rag.NewService(rag.ServiceConfig{
		IndexName: config.Database.IndexName,
		ChunkOptions: chunker.Options{
			Strategy: config.Chunker.Strategy,
			Size:     config.Chunker.Size,
			Overlap:  config.Chunker.Overlap,
		},
		TopK:      config.Retrieval.TopK,
		Threshold: config.Retrieval.Threshold,
	}, embedder, index, chatEngine)

	return service, index, nil
}
