// Package rag composes the chunker, embedder, vector index and chat
// model into the service facade. The facade is constructed once at
// process start and passed by reference to request handlers; it holds no
// state across calls beyond its adapters.
package rag

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/raglab/deeprag/internal/models"
	"github.com/raglab/deeprag/internal/types"
	"github.com/raglab/deeprag/pkg/apperr"
	"github.com/raglab/deeprag/pkg/chunker"
	"github.com/raglab/deeprag/pkg/retriever"
)

const Version = "1.0.0"

type ServiceConfig struct {
	IndexName      string
	ChunkOptions   chunker.Options
	TopK           int
	Threshold      float32
	RequestTimeout time.Duration
}

type Service struct {
	config    ServiceConfig
	embedder  types.Embedder
	index     types.VectorIndex
	chat      types.ChatModel
	retriever types.Retriever
}

func NewService(config ServiceConfig, embedder types.Embedder, index types.VectorIndex, chat types.ChatModel) *Service {
	if config.TopK < 1 {
		config.TopK = retriever.DefaultTopK
	}
	if config.Threshold == 0 {
		config.Threshold = retriever.DefaultThreshold
	}
	if config.RequestTimeout == 0 {
		config.RequestTimeout = 60 * time.Second
	}
	return &Service{
		config:    config,
		embedder:  embedder,
		index:     index,
		chat:      chat,
		retriever: retriever.New(embedder, index, config.IndexName),
	}
}

// Initialize creates the vector index if it does not exist yet.
// Index-already-exists is success, not an error.
func (s *Service) Initialize(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.index.CreateIndex(ctx, s.config.IndexName, s.embedder.Dimension())
}

// Query answers a question grounded in retrieved context. An empty
// retrieval still invokes the model; the system instructions make it
// report that nothing relevant was found.
func (s *Service) Query(ctx context.Context, question string) (*models.QueryResult, error) {
	if question == "" {
		return nil, apperr.Validationf("question must not be empty")
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()

	sources, err := s.retriever.Retrieve(ctx, question, s.config.TopK, s.config.Threshold)
	if err != nil {
		return nil, err
	}

	contextTexts := make([]string, len(sources))
	for i, src := range sources {
		contextTexts[i] = src.Content
	}

	answer, err := s.chat.Generate(ctx, question, contextTexts, "")
	if err != nil {
		return nil, err
	}

	return &models.QueryResult{
		Answer:         answer,
		Sources:        sources,
		ProcessingTime: time.Since(start).Milliseconds(),
		Model:          s.chat.Model(),
	}, nil
}

// QueryStream answers like Query but delivers the answer incrementally
// when the chat model supports streaming.
func (s *Service) QueryStream(ctx context.Context, question string, send func(chunk string) error) error {
	if question == "" {
		return apperr.Validationf("question must not be empty")
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	sources, err := s.retriever.Retrieve(ctx, question, s.config.TopK, s.config.Threshold)
	if err != nil {
		return err
	}
	contextTexts := make([]string, len(sources))
	for i, src := range sources {
		contextTexts[i] = src.Content
	}

	if streamer, ok := s.chat.(types.StreamingChatModel); ok {
		return streamer.GenerateStream(ctx, question, contextTexts, "", send)
	}
	answer, err := s.chat.Generate(ctx, question, contextTexts, "")
	if err != nil {
		return err
	}
	return send(answer)
}

// AddDocument chunks the content, embeds all chunks in one batch and
// upserts one record per chunk. Any failing step fails the whole
// ingestion; a partially written document is never reported as success.
func (s *Service) AddDocument(ctx context.Context, content string, metadata map[string]interface{}) (*models.DocumentResult, error) {
	if content == "" {
		return nil, apperr.Validationf("document content must not be empty")
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	documentID := uuid.NewString()
	timestamp := time.Now().UTC().Format(time.RFC3339)

	chunks, err := chunker.Chunk(content, s.config.ChunkOptions)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}

	records := make([]models.IndexRecord, len(chunks))
	for i, c := range chunks {
		recordMeta := make(map[string]interface{}, len(metadata)+3)
		for k, v := range metadata {
			recordMeta[k] = v
		}
		recordMeta["documentId"] = documentID
		recordMeta["chunkIndex"] = c.Index
		recordMeta["timestamp"] = timestamp

		records[i] = models.IndexRecord{
			Vector:   vectors[i],
			Text:     c.Text,
			Metadata: recordMeta,
		}
	}

	if err := s.index.Upsert(ctx, s.config.IndexName, records); err != nil {
		return nil, err
	}

	return &models.DocumentResult{
		ID:        documentID,
		Chunks:    len(chunks),
		Processed: true,
		Timestamp: timestamp,
	}, nil
}

// Chat is the direct-dialogue mode, bypassing retrieval.
func (s *Service) Chat(ctx context.Context, message string, instructions string) (*models.ChatResult, error) {
	if message == "" {
		return nil, apperr.Validationf("message must not be empty")
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	response, err := s.chat.Chat(ctx, message, instructions)
	if err != nil {
		return nil, err
	}

	return &models.ChatResult{
		Response:  response,
		Model:     s.chat.Model(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// Info returns static service identity for the health endpoint.
func (s *Service) Info() map[string]interface{} {
	return map[string]interface{}{
		"status":    "healthy",
		"version":   Version,
		"llm":       s.chat.Model(),
		"embedding": s.embedder.Model(),
		"index":     s.config.IndexName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.config.RequestTimeout)
}
