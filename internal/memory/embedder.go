package memory

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/acialhadi25/my-wuxia-journey-sub001/internal/types"
)

// EmbeddingDimensions is the vector width used throughout the similarity
// backend. Stored embeddings must match it.
const EmbeddingDimensions = 1536

const embedTimeout = 10 * time.Second

// GenAIEmbedder produces embeddings through the GenAI API.
type GenAIEmbedder struct {
	client *genai.Client
	model  string
}

// NewGenAIEmbedder creates the GenAI-backed Embedder.
func NewGenAIEmbedder(ctx context.Context, apiKey, modelName string) (*GenAIEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("google api key is required for embeddings")
	}
	if modelName == "" {
		modelName = "gemini-embedding-001"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GenAIEmbedder{
		client: client,
		model:  modelName,
	}, nil
}

func (e *GenAIEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return e.embed(ctx, text, "RETRIEVAL_QUERY")
}

func (e *GenAIEmbedder) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	return e.embed(ctx, text, "RETRIEVAL_DOCUMENT")
}

func (e *GenAIEmbedder) embed(ctx context.Context, text, taskType string) ([]float32, error) {
	if text == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, embedTimeout)
	defer cancel()

	resp, err := e.client.Models.EmbedContent(ctx, e.model, genai.Text(text), &genai.EmbedContentConfig{
		TaskType:             taskType,
		OutputDimensionality: func() *int32 { v := int32(EmbeddingDimensions); return &v }(),
	})
	if err != nil {
		return nil, types.WrapError(types.KindBackendUnavailable, err, "embedding call failed")
	}
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, types.NewError(types.KindBackendUnavailable, "empty embedding response")
	}
	values := resp.Embeddings[0].Values
	if len(values) == EmbeddingDimensions {
		return values, nil
	}
	if len(values) > EmbeddingDimensions {
		slog.Warn("embedding dimensions exceed target, truncating", "actual", len(values), "target", EmbeddingDimensions, "model", e.model)
		return values[:EmbeddingDimensions], nil
	}
	return nil, types.NewError(types.KindBackendUnavailable, "embedding dimensions mismatch: got %d want %d", len(values), EmbeddingDimensions)
}
