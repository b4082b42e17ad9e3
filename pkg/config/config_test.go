package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raglab/deeprag/pkg/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "")

	cfg, err := config.LoadConfig(writeConfig(t, "{}"))
	require.NoError(t, err)

	assert.Equal(t, "deepseek", cfg.LLM.Provider)
	assert.Equal(t, "deepseek-chat", cfg.LLM.Model)
	assert.Equal(t, 0.7, cfg.LLM.Temperature)
	assert.Equal(t, 1000, cfg.LLM.MaxTokens)
	assert.Equal(t, 1024, cfg.Embedding.Dimension)
	assert.Equal(t, "embeddings", cfg.Database.IndexName)
	assert.Equal(t, "recursive", cfg.Chunker.Strategy)
	assert.Equal(t, 512, cfg.Chunker.Size)
	assert.Equal(t, 50, cfg.Chunker.Overlap)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.Equal(t, float32(0.7), cfg.Retrieval.Threshold)

	assert.Empty(t, cfg.Validate())
}

func TestLoadConfig_File(t *testing.T) {
	cfg, err := config.LoadConfig(writeConfig(t, `
llm:
  provider: ollama
  model: mistral
  temperature: 0.5
embedding:
  provider: ollama
  model: nomic-embed-text
  dimension: 768
chunker:
  strategy: fixed
  size: 256
  overlap: 32
`))
	require.NoError(t, err)

	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "mistral", cfg.LLM.Model)
	assert.Equal(t, 0.5, cfg.LLM.Temperature)
	assert.Equal(t, 768, cfg.Embedding.Dimension)
	assert.Equal(t, "fixed", cfg.Chunker.Strategy)
	assert.Equal(t, 256, cfg.Chunker.Size)
	assert.Equal(t, 32, cfg.Chunker.Overlap)
	assert.Empty(t, cfg.Validate())
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgresql://env-host:5432/rag")
	t.Setenv("PORT", "9000")

	cfg, err := config.LoadConfig(writeConfig(t, "{}"))
	require.NoError(t, err)

	assert.Equal(t, "postgresql://env-host:5432/rag", cfg.Database.URL)
	assert.Equal(t, "9000", cfg.Server.Port)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{
			name: "overlap >= size",
			yaml: `
chunker:
  size: 100
  overlap: 100
`,
			field: "chunker.overlap",
		},
		{
			name: "unknown strategy",
			yaml: `
chunker:
  strategy: magic
`,
			field: "chunker.strategy",
		},
		{
			name: "unknown provider",
			yaml: `
llm:
  provider: wat
`,
			field: "llm.provider",
		},
		{
			name: "temperature too high",
			yaml: `
llm:
  temperature: 5
`,
			field: "llm.temperature",
		},
		{
			name: "threshold out of range",
			yaml: `
retrieval:
  threshold: 1.5
`,
			field: "retrieval.threshold",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.LoadConfig(writeConfig(t, tt.yaml))
			require.NoError(t, err)

			errs := cfg.Validate()
			require.NotEmpty(t, errs)

			found := false
			for _, e := range errs {
				if e.Field == tt.field {
					found = true
				}
			}
			assert.True(t, found, "expected a validation error for %s, got %v", tt.field, errs)
		})
	}
}
