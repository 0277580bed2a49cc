// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm abstracts the hosted model services the assistant depends on:
// a Generator that completes prompts and an Embedder that turns text into
// vectors. Gemini (google.golang.org/genai), OpenAI
// (github.com/sashabaranov/go-openai), and the Anthropic Messages API are
// supported; each provider is selected by name from configuration.
package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// Generator completes a single prompt and returns the reply text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Embedder returns one vector per input text, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// NewGenerator returns the Generator for cfg.Provider.
func NewGenerator(ctx context.Context, cfg types.ModelConfig, client *http.Client) (Generator, error) {
	switch cfg.Provider {
	case types.ProviderGemini, "":
		return NewGemini(ctx, cfg.GeminiAPIKey, cfg.Model, cfg.EmbeddingModel, cfg.MaxTokens, cfg.BaseURL, client)
	case types.ProviderOpenAI:
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.Model, cfg.EmbeddingModel, cfg.MaxTokens, cfg.BaseURL, client)
	case types.ProviderAnthropic:
		return NewAnthropic(cfg.AnthropicAPIKey, cfg.Model, cfg.MaxTokens, client)
	default:
		return nil, fmt.Errorf("unsupported model provider %q: use gemini, openai, or anthropic", cfg.Provider)
	}
}

// NewEmbedder returns the Embedder for cfg.EmbeddingProvider.
func NewEmbedder(ctx context.Context, cfg types.ModelConfig, client *http.Client) (Embedder, error) {
	switch cfg.EmbeddingProvider {
	case types.ProviderGemini, "":
		return NewGemini(ctx, cfg.GeminiAPIKey, cfg.Model, cfg.EmbeddingModel, cfg.MaxTokens, embeddingBaseURL(cfg, types.ProviderGemini), client)
	case types.ProviderOpenAI:
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.Model, cfg.EmbeddingModel, cfg.MaxTokens, embeddingBaseURL(cfg, types.ProviderOpenAI), client)
	default:
		return nil, fmt.Errorf("unsupported embedding provider %q: use gemini or openai", cfg.EmbeddingProvider)
	}
}

// embeddingBaseURL applies BaseURL to the embedding client only when the
// embedding provider is also the generation provider.
func embeddingBaseURL(cfg types.ModelConfig, p types.Provider) string {
	gen := cfg.Provider
	if gen == "" {
		gen = types.ProviderGemini
	}
	if gen != p {
		return ""
	}
	return cfg.BaseURL
}
