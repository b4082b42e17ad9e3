package rag_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raglab/deeprag/pkg/apperr"
	"github.com/raglab/deeprag/pkg/chunker"
	"github.com/raglab/deeprag/pkg/rag"
	"github.com/raglab/deeprag/pkg/store"
)

// fakeEmbedder maps texts to fixed 3-dimensional vectors so similarity
// is fully controlled by the test input.
type fakeEmbedder struct {
	calls [][]string
	fail  error
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls = append(f.calls, texts)
	if f.fail != nil {
		return nil, f.fail
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		if strings.Contains(text, "unrelated") {
			vectors[i] = []float32{0, 1, 0}
		} else {
			vectors[i] = []float32{1, 0, 0}
		}
	}
	return vectors, nil
}

func (f *fakeEmbedder) Dimension() int { return 3 }

func (f *fakeEmbedder) Model() string { return "fake-embedding" }

type fakeChat struct {
	lastQuestion string
	lastContext  []string
	lastMessage  string
	fail         error
}

func (f *fakeChat) Generate(ctx context.Context, question string, contextTexts []string, system string) (string, error) {
	if f.fail != nil {
		return "", f.fail
	}
	f.lastQuestion = question
	f.lastContext = contextTexts
	if len(contextTexts) == 0 {
		return "No relevant information was found.", nil
	}
	return "Answer based on " + contextTexts[0], nil
}

func (f *fakeChat) Chat(ctx context.Context, message string, system string) (string, error) {
	if f.fail != nil {
		return "", f.fail
	}
	f.lastMessage = message
	return "Chat reply to " + message, nil
}

func (f *fakeChat) Model() string { return "fake-chat" }

func newTestService(t *testing.T, embedder *fakeEmbedder, chat *fakeChat) *rag.Service {
	t.Helper()
	service := rag.NewService(rag.ServiceConfig{
		IndexName:    "embeddings",
		ChunkOptions: chunker.Options{Strategy: "fixed", Size: 64, Overlap: 0},
		TopK:         5,
		Threshold:    0.7,
	}, embedder, store.NewMemoryStore(), chat)
	require.NoError(t, service.Initialize(context.Background()))
	return service
}

func TestService_AddDocument(t *testing.T) {
	embedder := &fakeEmbedder{}
	service := newTestService(t, embedder, &fakeChat{})

	content := strings.Repeat("relevant words here. ", 4)
	result, err := service.AddDocument(context.Background(), content, map[string]interface{}{"source": "test"})
	require.NoError(t, err)

	assert.NotEmpty(t, result.ID)
	assert.True(t, result.Processed)
	assert.NotEmpty(t, result.Timestamp)

	// One embedding batch, one vector per chunk.
	require.Len(t, embedder.calls, 1)
	assert.Len(t, embedder.calls[0], result.Chunks)
	assert.Greater(t, result.Chunks, 1)
}

func TestService_AddDocumentScenario(t *testing.T) {
	embedder := &fakeEmbedder{}
	service := rag.NewService(rag.ServiceConfig{
		IndexName:    "embeddings",
		ChunkOptions: chunker.Options{Strategy: "fixed", Size: 4, Overlap: 0},
	}, embedder, store.NewMemoryStore(), &fakeChat{})
	require.NoError(t, service.Initialize(context.Background()))

	result, err := service.AddDocument(context.Background(), "A. B. C.", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Chunks)
	require.Len(t, embedder.calls, 1)
	assert.Equal(t, []string{"A. B", ". C."}, embedder.calls[0])
}

func TestService_AddDocumentEmptyContent(t *testing.T) {
	service := newTestService(t, &fakeEmbedder{}, &fakeChat{})

	_, err := service.AddDocument(context.Background(), "", nil)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestService_AddDocumentEmbeddingFailure(t *testing.T) {
	embedder := &fakeEmbedder{fail: apperr.Externalf("provider down")}
	service := newTestService(t, embedder, &fakeChat{})

	_, err := service.AddDocument(context.Background(), "some content", nil)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindExternal))
}

func TestService_Query(t *testing.T) {
	embedder := &fakeEmbedder{}
	chat := &fakeChat{}
	service := newTestService(t, embedder, chat)

	_, err := service.AddDocument(context.Background(), "facts about gophers", map[string]interface{}{"topic": "gophers"})
	require.NoError(t, err)

	result, err := service.Query(context.Background(), "tell me about gophers")
	require.NoError(t, err)

	assert.Contains(t, result.Answer, "facts about gophers")
	require.NotEmpty(t, result.Sources)
	assert.Equal(t, "facts about gophers", result.Sources[0].Content)
	assert.Equal(t, "fake-chat", result.Model)
	assert.GreaterOrEqual(t, result.ProcessingTime, int64(0))

	// Context passages reach the model in retrieval order.
	assert.Equal(t, "tell me about gophers", chat.lastQuestion)
	require.NotEmpty(t, chat.lastContext)
}

func TestService_QueryNoMatchesStillAnswers(t *testing.T) {
	embedder := &fakeEmbedder{}
	service := newTestService(t, embedder, &fakeChat{})

	_, err := service.AddDocument(context.Background(), "facts about gophers", nil)
	require.NoError(t, err)

	result, err := service.Query(context.Background(), "completely unrelated question")
	require.NoError(t, err)
	assert.Empty(t, result.Sources)
	assert.Equal(t, "No relevant information was found.", result.Answer)
}

func TestService_QueryEmptyQuestion(t *testing.T) {
	service := newTestService(t, &fakeEmbedder{}, &fakeChat{})

	_, err := service.Query(context.Background(), "")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestService_Chat(t *testing.T) {
	chat := &fakeChat{}
	service := newTestService(t, &fakeEmbedder{}, chat)

	result, err := service.Chat(context.Background(), "hello there", "")
	require.NoError(t, err)
	assert.Equal(t, "Chat reply to hello there", result.Response)
	assert.Equal(t, "fake-chat", result.Model)
	assert.NotEmpty(t, result.Timestamp)
}

func TestService_ChatEmptyMessage(t *testing.T) {
	service := newTestService(t, &fakeEmbedder{}, &fakeChat{})

	_, err := service.Chat(context.Background(), "", "")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

// fakeStreamingChat streams its answer in fixed pieces so tests can
// observe chunk boundaries.
type fakeStreamingChat struct {
	fakeChat
	pieces []string
}

func (f *fakeStreamingChat) GenerateStream(ctx context.Context, question string, contextTexts []string, system string, send func(chunk string) error) error {
	f.lastQuestion = question
	f.lastContext = contextTexts
	for _, piece := range f.pieces {
		if err := send(piece); err != nil {
			return err
		}
	}
	return nil
}

func TestService_QueryStream(t *testing.T) {
	chat := &fakeStreamingChat{pieces: []string{"gophers ", "dig ", "tunnels"}}
	service := rag.NewService(rag.ServiceConfig{
		IndexName:    "embeddings",
		ChunkOptions: chunker.Options{Strategy: "fixed", Size: 64, Overlap: 0},
	}, &fakeEmbedder{}, store.NewMemoryStore(), chat)
	require.NoError(t, service.Initialize(context.Background()))

	_, err := service.AddDocument(context.Background(), "facts about gophers", nil)
	require.NoError(t, err)

	var chunks []string
	err = service.QueryStream(context.Background(), "tell me about gophers", func(chunk string) error {
		chunks = append(chunks, chunk)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"gophers ", "dig ", "tunnels"}, chunks)
	assert.Equal(t, "tell me about gophers", chat.lastQuestion)
	require.NotEmpty(t, chat.lastContext)
}

func TestService_QueryStreamFallsBackToGenerate(t *testing.T) {
	// fakeChat does not implement streaming, so the whole answer must
	// arrive as a single send.
	embedder := &fakeEmbedder{}
	service := newTestService(t, embedder, &fakeChat{})

	_, err := service.AddDocument(context.Background(), "facts about gophers", nil)
	require.NoError(t, err)

	var chunks []string
	err = service.QueryStream(context.Background(), "tell me about gophers", func(chunk string) error {
		chunks = append(chunks, chunk)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0], "facts about gophers")
}

func TestService_QueryStreamRetrievalFailure(t *testing.T) {
	embedder := &fakeEmbedder{fail: apperr.Externalf("provider down")}
	service := newTestService(t, embedder, &fakeChat{})

	sent := false
	err := service.QueryStream(context.Background(), "anything", func(string) error {
		sent = true
		return nil
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindExternal))
	assert.False(t, sent)
}

func TestService_QueryStreamEmptyQuestion(t *testing.T) {
	service := newTestService(t, &fakeEmbedder{}, &fakeChat{})

	err := service.QueryStream(context.Background(), "", func(string) error { return nil })
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestService_Info(t *testing.T) {
	service := newTestService(t, &fakeEmbedder{}, &fakeChat{})

	info := service.Info()
	assert.Equal(t, "healthy", info["status"])
	assert.Equal(t, "fake-chat", info["llm"])
	assert.Equal(t, "fake-embedding", info["embedding"])
	assert.Equal(t, "embeddings", info["index"])
}
