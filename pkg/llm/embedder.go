package llm

import (
	"context"
	"os"

	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/raglab/deeprag/pkg/apperr"
)

// EmbedderConfig represents the configuration for an embedding client.
type EmbedderConfig struct {
	Provider  string // deepseek, openai or ollama
	Model     string
	BaseURL   string
	APIKeyEnv string
	Dimension int
}

// embeddingClient is the slice of the provider API the embedder needs.
// Both the openai-compatible and the ollama langchaingo clients satisfy it.
type embeddingClient interface {
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}

// Embedder maps batches of texts to fixed-dimension vectors. The
// declared dimension is enforced on every provider response; a mismatch
// is a fatal configuration error, not a retry case.
type Embedder struct {
	config EmbedderConfig
	client embeddingClient
}

func NewEmbedderWithConfig(config EmbedderConfig) (*Embedder, error) {
	if config.Model == "" {
		config.Model = "deepseek-embedding"
	}
	if config.Dimension < 1 {
		return nil, apperr.Configurationf("embedding dimension must be positive, got %d", config.Dimension)
	}

	var client embeddingClient
	switch config.Provider {
	case "ollama":
		if config.BaseURL == "" {
			config.BaseURL = "http://localhost:11434"
		}
		c, err := ollama.New(
			ollama.WithModel(config.Model),
			ollama.WithServerURL(config.BaseURL),
		)
		if err != nil {
			return nil, apperr.Configuration("failed to initialize ollama embedder", err)
		}
		client = c
	case "deepseek", "openai":
		key := os.Getenv(config.APIKeyEnv)
		if key == "" {
			return nil, apperr.Configurationf("missing API key in env %s", config.APIKeyEnv)
		}
		if config.BaseURL == "" && config.Provider == "deepseek" {
			config.BaseURL = "https://api.deepseek.com/v1"
		}
		opts := []openai.Option{
			openai.WithToken(key),
			openai.WithModel(config.Model),
			openai.WithEmbeddingModel(config.Model),
		}
		if config.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(config.BaseURL))
		}
		c, err := openai.New(opts...)
		if err != nil {
			return nil, apperr.Configuration("failed to initialize embedder", err)
		}
		client = c
	default:
		return nil, apperr.Configurationf("unknown embedding provider: %s", config.Provider)
	}

	return &Embedder{config: config, client: client}, nil
}

// Embed returns one vector per input text, order-preserving. A provider
// round-trip failure fails the whole batch; callers that need
// partial-failure isolation must sub-batch before calling.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors, err := e.client.CreateEmbedding(ctx, texts)
	if err != nil {
		return nil, apperr.External("embedding request failed", err)
	}
	if len(vectors) != len(texts) {
		return nil, apperr.Externalf("embedding provider returned %d vectors for %d inputs", len(vectors), len(texts))
	}
	for i, v := range vectors {
		if len(v) != e.config.Dimension {
			return nil, apperr.Configurationf("embedding %d has dimension %d, expected %d", i, len(v), e.config.Dimension)
		}
	}
	return vectors, nil
}

// Dimension returns the declared dimensionality of produced vectors.
func (e *Embedder) Dimension() int { return e.config.Dimension }

// Model returns the embedding model identifier.
func (e *Embedder) Model() string { return e.config.Model }
