package tools

import (
	"context"

	"github.com/raglab/deeprag/pkg/rag"
)

// RegisterRAGTools declares the three service tools over the facade.
// Called once at startup, before the registry is shared.
func RegisterRAGTools(registry *Registry, service *rag.Service) error {
	queryTool := Tool{
		Name:        "query_knowledge",
		Description: "Answer a question using retrieval-augmented generation over the indexed documents",
		InputSchema: Schema{
			Type: "object",
			Properties: map[string]Property{
				"question": {Type: "string", Description: "The question to answer"},
			},
			Required: []string{"question"},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			return service.Query(ctx, args["question"].(string))
		},
	}

	addDocumentTool := Tool{
		Name:        "add_document",
		Description: "Chunk, embed and index a text document",
		InputSchema: Schema{
			Type: "object",
			Properties: map[string]Property{
				"content":  {Type: "string", Description: "The document text"},
				"metadata": {Type: "object", Description: "Optional document metadata"},
			},
			Required: []string{"content"},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			metadata, _ := args["metadata"].(map[string]interface{})
			return service.AddDocument(ctx, args["content"].(string), metadata)
		},
	}

	chatTool := Tool{
		Name:        "chat",
		Description: "Talk to the language model directly, without retrieval",
		InputSchema: Schema{
			Type: "object",
			Properties: map[string]Property{
				"message": {Type: "string", Description: "The message to send"},
				"system":  {Type: "string", Description: "Optional system instructions"},
			},
			Required: []string{"message"},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			system, _ := args["system"].(string)
			return service.Chat(ctx, args["message"].(string), system)
		},
	}

	for _, tool := range []Tool{queryTool, addDocumentTool, chatTool} {
		if err := registry.Register(tool); err != nil {
			return err
		}
	}
	return nil
}
