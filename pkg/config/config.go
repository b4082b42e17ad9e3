package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LLM struct {
		Provider    string  `yaml:"provider"` // deepseek, openai or ollama
		BaseURL     string  `yaml:"base_url"`
		APIKeyEnv   string  `yaml:"api_key_env"`
		Model       string  `yaml:"model"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float64 `yaml:"temperature"`
	} `yaml:"llm"`

	Embedding struct {
		Provider  string `yaml:"provider"`
		BaseURL   string `yaml:"base_url"`
		APIKeyEnv string `yaml:"api_key_env"`
		Model     string `yaml:"model"`
		Dimension int    `yaml:"dimension"`
	} `yaml:"embedding"`

	Database struct {
		URL       string `yaml:"url"`
		IndexName string `yaml:"index_name"`
	} `yaml:"database"`

	Chunker struct {
		Strategy string `yaml:"strategy"` // fixed or recursive
		Size     int    `yaml:"size"`
		Overlap  int    `yaml:"overlap"`
	} `yaml:"chunker"`

	Retrieval struct {
		TopK      int     `yaml:"top_k"`
		Threshold float32 `yaml:"threshold"`
	} `yaml:"retrieval"`

	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Scraper struct {
		MaxDepth  int     `yaml:"max_depth"`
		RateLimit float64 `yaml:"rate_limit"`
	} `yaml:"scraper"`
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/deeprag/config.yaml"),
			"/etc/deeprag/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %v", err)
	}

	// Merge with environment variables
	mergeWithEnv(&config)

	// Apply defaults for unset values
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	applyDefaults(config)
	mergeWithEnv(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.LLM.Provider == "" {
		config.LLM.Provider = "deepseek"
	}
	if config.LLM.Model == "" {
		config.LLM.Model = "deepseek-chat"
	}
	if config.LLM.MaxTokens == 0 {
		config.LLM.MaxTokens = 1000
	}
	if config.LLM.Temperature == 0 {
		config.LLM.Temperature = 0.7
	}
	if config.LLM.BaseURL == "" {
		config.LLM.BaseURL = defaultBaseURL(config.LLM.Provider)
	}
	if config.LLM.APIKeyEnv == "" {
		config.LLM.APIKeyEnv = "DEEPSEEK_API_KEY"
	}

	if config.Embedding.Provider == "" {
		config.Embedding.Provider = config.LLM.Provider
	}
	if config.Embedding.Model == "" {
		config.Embedding.Model = "deepseek-embedding"
	}
	if config.Embedding.Dimension == 0 {
		config.Embedding.Dimension = 1024
	}
	if config.Embedding.BaseURL == "" {
		config.Embedding.BaseURL = defaultBaseURL(config.Embedding.Provider)
	}
	if config.Embedding.APIKeyEnv == "" {
		config.Embedding.APIKeyEnv = config.LLM.APIKeyEnv
	}

	if config.Database.IndexName == "" {
		config.Database.IndexName = "embeddings"
	}

	if config.Chunker.Strategy == "" {
		config.Chunker.Strategy = "recursive"
	}
	if config.Chunker.Size == 0 {
		config.Chunker.Size = 512
	}
	if config.Chunker.Overlap == 0 {
		config.Chunker.Overlap = 50
	}

	if config.Retrieval.TopK == 0 {
		config.Retrieval.TopK = 5
	}
	if config.Retrieval.Threshold == 0 {
		config.Retrieval.Threshold = 0.7
	}

	if config.Server.Port == "" {
		config.Server.Port = "3000"
	}

	if config.Scraper.MaxDepth == 0 {
		config.Scraper.MaxDepth = 3
	}
	if config.Scraper.RateLimit == 0 {
		config.Scraper.RateLimit = 2.0
	}
}

func defaultBaseURL(provider string) string {
	switch provider {
	case "ollama":
		return "http://localhost:11434"
	case "openai":
		return "https://api.openai.com/v1"
	default:
		return "https://api.deepseek.com/v1"
	}
}

func mergeWithEnv(config *Config) {
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Database.URL = dbURL
	}
	if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" && config.LLM.Provider == "ollama" {
		config.LLM.BaseURL = baseURL
		config.Embedding.BaseURL = baseURL
	}
	if port := os.Getenv("PORT"); port != "" {
		config.Server.Port = port
	}
}
