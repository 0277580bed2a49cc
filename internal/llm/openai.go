// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pdiddy/research-assistant/pkg/types"
)

const (
	defaultOpenAIModel          = "gpt-4o-mini"
	defaultOpenAIEmbeddingModel = "text-embedding-3-small"
)

// OpenAI generates and embeds text with the OpenAI API or any server
// speaking its protocol.
type OpenAI struct {
	client         *openai.Client
	model          string
	embeddingModel string
	maxTokens      int
}

// NewOpenAI creates an OpenAI client. A non-empty baseURL replaces the
// default https://api.openai.com/v1.
func NewOpenAI(apiKey, model, embeddingModel string, maxTokens int, baseURL string, httpClient *http.Client) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required (set model.openai_api_key or .secrets/openai-api-key)")
	}
	if model == "" || model == defaultGeminiModel {
		model = defaultOpenAIModel
	}
	if embeddingModel == "" || embeddingModel == defaultGeminiEmbeddingModel {
		embeddingModel = defaultOpenAIEmbeddingModel
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if httpClient != nil {
		config.HTTPClient = httpClient
	}

	return &OpenAI{
		client:         openai.NewClientWithConfig(config),
		model:          model,
		embeddingModel: embeddingModel,
		maxTokens:      maxTokens,
	}, nil
}

// Generate sends prompt as a single user message and returns the first choice.
func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens: o.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: OpenAI chat completion: %w", types.ErrUpstream, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: OpenAI returned no choices", types.ErrUpstream)
	}
	return resp.Choices[0].Message.Content, nil
}

// Embed embeds each text with its own request.
func (o *OpenAI) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for i, text := range texts {
		resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: []string{text},
			Model: openai.EmbeddingModel(o.embeddingModel),
		})
		if err != nil {
			return nil, fmt.Errorf("%w: OpenAI embed text %d: %w", types.ErrUpstream, i, err)
		}
		if len(resp.Data) == 0 {
			return nil, fmt.Errorf("%w: OpenAI returned no embedding for text %d", types.ErrUpstream, i)
		}
		vectors = append(vectors, resp.Data[0].Embedding)
	}
	return vectors, nil
}
