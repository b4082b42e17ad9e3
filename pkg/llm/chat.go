package llm

import (
	"context"
	"os"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/raglab/deeprag/pkg/apperr"
)

// DefaultSystemInstructions is the grounding contract for answer
// generation: the model must answer from the supplied context only and
// say so when the context has nothing relevant.
const DefaultSystemInstructions = "You are a helpful assistant that answers questions based on the provided context. " +
	"Only use information from the context. Keep answers concise, accurate and relevant. " +
	"If the context does not contain enough information to answer the question, " +
	"state that no relevant information was found instead of guessing."

// ChatConfig represents the configuration for a chat engine.
type ChatConfig struct {
	Provider    string // deepseek, openai or ollama
	Model       string
	BaseURL     string
	APIKeyEnv   string
	Temperature float64
	MaxTokens   int
}

// ChatEngine is an engine that uses an LLM to generate chat responses.
type ChatEngine struct {
	config ChatConfig
	llm    llms.Model
}

// NewWithConfig creates a new ChatEngine with the given configuration.
func NewWithConfig(config ChatConfig) (*ChatEngine, error) {
	if config.Model == "" {
		config.Model = "deepseek-chat"
	}
	if config.Temperature == 0 {
		config.Temperature = 0.7
	}
	if config.Temperature < 0 || config.Temperature > 2 {
		return nil, apperr.Configurationf("temperature must be between 0 and 2, got %v", config.Temperature)
	}
	if config.MaxTokens < 0 {
		return nil, apperr.Configurationf("max tokens cannot be negative, got %d", config.MaxTokens)
	} else if config.MaxTokens == 0 {
		config.MaxTokens = 1000
	}

	var model llms.Model
	switch config.Provider {
	case "ollama":
		if config.BaseURL == "" {
			config.BaseURL = "http://localhost:11434"
		}
		m, err := ollama.New(
			ollama.WithModel(config.Model),
			ollama.WithServerURL(config.BaseURL),
		)
		if err != nil {
			return nil, apperr.Configuration("failed to initialize ollama chat model", err)
		}
		model = m
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
		}
		if config.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(config.BaseURL))
		}
		m, err := openai.New(opts...)
		if err != nil {
			return nil, apperr.Configuration("failed to initialize chat model", err)
		}
		model = m
	default:
		return nil, apperr.Configurationf("unknown chat provider: %s", config.Provider)
	}

	return &ChatEngine{config: config, llm: model}, nil
}

// BuildPrompt assembles the user prompt from the retrieved context
// passages (in the order received, i.e. by descending similarity) and
// the question. An empty context still produces a valid prompt; the
// system instructions tell the model how to respond in that case.
func BuildPrompt(question string, contextTexts []string) string {
	var b strings.Builder
	b.WriteString("Context:\n\n")
	b.WriteString(strings.Join(contextTexts, "\n\n"))
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	return b.String()
}

// Generate produces a grounded answer for the question. The context
// passages are folded into a single prompt; generation is bounded by the
// configured temperature and max tokens. No retry on provider failure.
func (ce *ChatEngine) Generate(ctx context.Context, question string, contextTexts []string, systemInstructions string) (string, error) {
	resp, err := ce.generate(ctx, question, contextTexts, systemInstructions)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", apperr.Externalf("chat model returned no choices")
	}
	return resp.Choices[0].Content, nil
}

// GenerateStream is like Generate but delivers the answer incrementally
// through send. It returns once the stream is complete or failed.
func (ce *ChatEngine) GenerateStream(ctx context.Context, question string, contextTexts []string, systemInstructions string, send func(chunk string) error) error {
	_, err := ce.generate(ctx, question, contextTexts, systemInstructions,
		llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			return send(string(chunk))
		}))
	return err
}

func (ce *ChatEngine) generate(ctx context.Context, question string, contextTexts []string, systemInstructions string, extra ...llms.CallOption) (*llms.ContentResponse, error) {
	if systemInstructions == "" {
		systemInstructions = DefaultSystemInstructions
	}

	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemInstructions),
		llms.TextParts(llms.ChatMessageTypeHuman, BuildPrompt(question, contextTexts)),
	}

	opts := append([]llms.CallOption{
		llms.WithTemperature(ce.config.Temperature),
		llms.WithMaxTokens(ce.config.MaxTokens),
	}, extra...)

	resp, err := ce.llm.GenerateContent(ctx, content, opts...)
	if err != nil {
		return nil, apperr.External("chat completion failed", err)
	}
	return resp, nil
}

// DefaultChatInstructions is used for the direct-dialogue mode, where no
// retrieved context is supplied.
const DefaultChatInstructions = "You are a friendly and helpful assistant. Answer concisely and accurately."

// Chat is the direct-dialogue mode: the message goes to the model as-is,
// with no retrieved context, under the given (or default) instructions.
func (ce *ChatEngine) Chat(ctx context.Context, message string, systemInstructions string) (string, error) {
	if systemInstructions == "" {
		systemInstructions = DefaultChatInstructions
	}

	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemInstructions),
		llms.TextParts(llms.ChatMessageTypeHuman, message),
	}

	resp, err := ce.llm.GenerateContent(ctx, content,
		llms.WithTemperature(ce.config.Temperature),
		llms.WithMaxTokens(ce.config.MaxTokens),
	)
	if err != nil {
		return "", apperr.External("chat completion failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", apperr.Externalf("chat model returned no choices")
	}
	return resp.Choices[0].Content, nil
}

// Model returns the chat model identifier.
func (ce *ChatEngine) Model() string { return ce.config.Model }
