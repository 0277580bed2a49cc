// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/pdiddy/research-assistant/pkg/types"
)

const (
	defaultGeminiModel          = "gemini-1.5-flash-latest"
	defaultGeminiEmbeddingModel = "models/embedding-001"
	taskRetrievalDocument       = "RETRIEVAL_DOCUMENT"
)

// Gemini generates and embeds text with Google's Gemini API.
type Gemini struct {
	client         *genai.Client
	model          string
	embeddingModel string
	maxTokens      int
}

// NewGemini creates a Gemini client. baseURL and httpClient are optional
// and exist so tests can point the client at an httptest server.
func NewGemini(ctx context.Context, apiKey, model, embeddingModel string, maxTokens int, baseURL string, httpClient *http.Client) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required (set model.gemini_api_key or .secrets/gemini-api-key)")
	}
	if model == "" {
		model = defaultGeminiModel
	}
	if embeddingModel == "" {
		embeddingModel = defaultGeminiEmbeddingModel
	}

	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	return &Gemini{
		client:         client,
		model:          model,
		embeddingModel: embeddingModel,
		maxTokens:      maxTokens,
	}, nil
}

// Generate sends prompt as a single user turn and returns the reply text.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	var config *genai.GenerateContentConfig
	if g.maxTokens > 0 {
		config = &genai.GenerateContentConfig{MaxOutputTokens: int32(g.maxTokens)}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("%w: Gemini generate: %w", types.ErrUpstream, err)
	}
	return resp.Text(), nil
}

// Embed embeds each text with its own request, using the retrieval-document
// task type for documents and queries alike.
func (g *Gemini) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for i, text := range texts {
		result, err := g.client.Models.EmbedContent(ctx,
			g.embeddingModel,
			[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
			&genai.EmbedContentConfig{TaskType: taskRetrievalDocument},
		)
		if err != nil {
			return nil, fmt.Errorf("%w: Gemini embed text %d: %w", types.ErrUpstream, i, err)
		}
		if len(result.Embeddings) == 0 {
			return nil, fmt.Errorf("%w: Gemini returned no embedding for text %d", types.ErrUpstream, i)
		}
		vectors = append(vectors, result.Embeddings[0].Values)
	}
	return vectors, nil
}
