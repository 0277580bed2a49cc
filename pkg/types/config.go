// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "research-assistant/0.1").
	UserAgent string `mapstructure:"user_agent" json:"user_agent" yaml:"user_agent"`

	// MaxRetries is the number of retries on HTTP 429. Zero sends each
	// request once.
	MaxRetries int `mapstructure:"max_retries" json:"max_retries" yaml:"max_retries"`
}

// SearchConfig holds settings for the search stage.
type SearchConfig struct {
	// Source selects the backend: "arxiv" or "semantic_scholar".
	Source string `mapstructure:"source" json:"source" yaml:"source"`

	// MaxResults is the number of records requested from the backend (default 5).
	MaxResults int `mapstructure:"max_results" json:"max_results" yaml:"max_results"`

	// SemanticScholarAPIKey is an optional API key sent as x-api-key.
	SemanticScholarAPIKey string `mapstructure:"semantic_scholar_api_key" json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`
}

// Extractor identifies the PDF text extraction tool.
type Extractor string

const (
	ExtractorPure      Extractor = "pure"
	ExtractorPdftotext Extractor = "pdftotext"
)

// MaterializeConfig holds settings for downloading and splitting papers.
type MaterializeConfig struct {
	// ScratchDir receives downloaded PDFs (default "./temp_pdfs").
	ScratchDir string `mapstructure:"scratch_dir" json:"scratch_dir" yaml:"scratch_dir"`

	// ChunkSize is the target chunk length in characters (default 1000).
	ChunkSize int `mapstructure:"chunk_size" json:"chunk_size" yaml:"chunk_size"`

	// ChunkOverlap is the number of trailing characters carried into the
	// next chunk (default 100).
	ChunkOverlap int `mapstructure:"chunk_overlap" json:"chunk_overlap" yaml:"chunk_overlap"`

	// Delay is the pause between consecutive papers (default 1s).
	Delay time.Duration `mapstructure:"delay" json:"delay" yaml:"delay"`

	// Extractor selects the text extraction backend.
	Extractor Extractor `mapstructure:"extractor" json:"extractor" yaml:"extractor"`

	// KeepDownloads leaves PDFs in ScratchDir after extraction.
	KeepDownloads bool `mapstructure:"keep_downloads" json:"keep_downloads" yaml:"keep_downloads"`
}

// Provider identifies a hosted model service.
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// ModelConfig holds settings for the generative model and the embedding service.
type ModelConfig struct {
	// Provider selects the text generation service (default gemini).
	Provider Provider `mapstructure:"provider" json:"provider" yaml:"provider"`

	// Model is the generation model identifier (e.g. "gemini-1.5-flash-latest").
	Model string `mapstructure:"model" json:"model" yaml:"model"`

	// EmbeddingProvider selects the embedding service (default gemini).
	// Anthropic offers no embeddings.
	EmbeddingProvider Provider `mapstructure:"embedding_provider" json:"embedding_provider" yaml:"embedding_provider"`

	// EmbeddingModel is the embedding model identifier (e.g. "models/embedding-001").
	EmbeddingModel string `mapstructure:"embedding_model" json:"embedding_model" yaml:"embedding_model"`

	// MaxTokens caps the length of model replies.
	MaxTokens int `mapstructure:"max_tokens" json:"max_tokens" yaml:"max_tokens"`

	GeminiAPIKey    string `mapstructure:"gemini_api_key" json:"-" yaml:"-"`
	OpenAIAPIKey    string `mapstructure:"openai_api_key" json:"-" yaml:"-"`
	AnthropicAPIKey string `mapstructure:"anthropic_api_key" json:"-" yaml:"-"`

	// BaseURL overrides the provider endpoint (OpenAI-compatible servers).
	BaseURL string `mapstructure:"base_url" json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// Strategy names a reading-plan ranking strategy.
type Strategy string

const (
	StrategyModel     Strategy = "model"
	StrategyHeuristic Strategy = "heuristic"
)

// PlanConfig holds settings for the reading-plan stage.
type PlanConfig struct {
	Strategy Strategy `mapstructure:"strategy" json:"strategy" yaml:"strategy"`
}

// IndexConfig holds settings for the vector store.
type IndexConfig struct {
	// DBPath is the SQLite database file (default "research.db").
	DBPath string `mapstructure:"db_path" json:"db_path" yaml:"db_path"`

	// Collection is the collection name (default "papers").
	Collection string `mapstructure:"collection" json:"collection" yaml:"collection"`
}

// QAConfig holds settings for question answering.
type QAConfig struct {
	// K is the number of chunks retrieved per question (default 5).
	K int `mapstructure:"k" json:"k" yaml:"k"`
}

// ServerConfig holds settings for the HTTP serving layer.
type ServerConfig struct {
	Addr string `mapstructure:"addr" json:"addr" yaml:"addr"`
}

// Config is the complete runtime configuration. It is built once at startup
// and passed by value to every constructor; nothing mutates it afterwards.
type Config struct {
	HTTP        HTTPConfig        `mapstructure:"http" json:"http" yaml:"http"`
	Search      SearchConfig      `mapstructure:"search" json:"search" yaml:"search"`
	Materialize MaterializeConfig `mapstructure:"materialize" json:"materialize" yaml:"materialize"`
	Model       ModelConfig       `mapstructure:"model" json:"model" yaml:"model"`
	Plan        PlanConfig        `mapstructure:"plan" json:"plan" yaml:"plan"`
	Index       IndexConfig       `mapstructure:"index" json:"index" yaml:"index"`
	QA          QAConfig          `mapstructure:"qa" json:"qa" yaml:"qa"`
	Server      ServerConfig      `mapstructure:"server" json:"server" yaml:"server"`
}

// DefaultConfig returns the configuration used when no file or environment
// overrides are present.
func DefaultConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			Timeout:   60 * time.Second,
			UserAgent: "research-assistant/0.1",
		},
		Search: SearchConfig{
			Source:     "arxiv",
			MaxResults: 5,
		},
		Materialize: MaterializeConfig{
			ScratchDir:   "./temp_pdfs",
			ChunkSize:    1000,
			ChunkOverlap: 100,
			Delay:        time.Second,
			Extractor:    ExtractorPure,
		},
		Model: ModelConfig{
			Provider:          ProviderGemini,
			Model:             "gemini-1.5-flash-latest",
			EmbeddingProvider: ProviderGemini,
			EmbeddingModel:    "models/embedding-001",
			MaxTokens:         1024,
		},
		Plan:   PlanConfig{Strategy: StrategyModel},
		Index:  IndexConfig{DBPath: "research.db", Collection: "papers"},
		QA:     QAConfig{K: 5},
		Server: ServerConfig{Addr: ":8000"},
	}
}

// Validate reports configuration values that no stage can work with.
func (c Config) Validate() error {
	if c.Materialize.ChunkSize <= 0 {
		return fmt.Errorf("materialize.chunk_size must be positive, got %d", c.Materialize.ChunkSize)
	}
	if c.Materialize.ChunkOverlap < 0 || c.Materialize.ChunkOverlap >= c.Materialize.ChunkSize {
		return fmt.Errorf("materialize.chunk_overlap must be in [0, chunk_size), got %d", c.Materialize.ChunkOverlap)
	}
	switch c.Materialize.Extractor {
	case ExtractorPure, ExtractorPdftotext:
	default:
		return fmt.Errorf("materialize.extractor %q: use pure or pdftotext", c.Materialize.Extractor)
	}
	switch c.Plan.Strategy {
	case StrategyModel, StrategyHeuristic:
	default:
		return fmt.Errorf("plan.strategy %q: use model or heuristic", c.Plan.Strategy)
	}
	if c.Model.EmbeddingProvider == ProviderAnthropic {
		return fmt.Errorf("model.embedding_provider %q offers no embeddings", c.Model.EmbeddingProvider)
	}
	if c.QA.K <= 0 {
		return fmt.Errorf("qa.k must be positive, got %d", c.QA.K)
	}
	if c.Index.Collection == "" {
		return fmt.Errorf("index.collection is required")
	}
	return nil
}
