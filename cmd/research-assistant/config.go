// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"github.com/pdiddy/research-assistant/pkg/types"
)

const (
	configName = "research-assistant"
	envPrefix  = "RESEARCH_ASSISTANT"
)

// readConfig points v at the config file (explicit path or the default search
// locations) and environment. A missing default file is not an error.
func readConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", configName))
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, types.DefaultConfig())

	// Provider-native key variables are honored alongside the prefixed ones.
	_ = v.BindEnv("model.gemini_api_key", envPrefix+"_MODEL_GEMINI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY")
	_ = v.BindEnv("model.openai_api_key", envPrefix+"_MODEL_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("model.anthropic_api_key", envPrefix+"_MODEL_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("search.semantic_scholar_api_key", envPrefix+"_SEARCH_SEMANTIC_SCHOLAR_API_KEY", "SEMANTIC_SCHOLAR_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// setDefaults registers every key so that AutomaticEnv can resolve it during
// Unmarshal.
func setDefaults(v *viper.Viper, d types.Config) {
	v.SetDefault("http.timeout", d.HTTP.Timeout)
	v.SetDefault("http.user_agent", d.HTTP.UserAgent)
	v.SetDefault("http.max_retries", d.HTTP.MaxRetries)

	v.SetDefault("search.source", d.Search.Source)
	v.SetDefault("search.max_results", d.Search.MaxResults)
	v.SetDefault("search.semantic_scholar_api_key", "")

	v.SetDefault("materialize.scratch_dir", d.Materialize.ScratchDir)
	v.SetDefault("materialize.chunk_size", d.Materialize.ChunkSize)
	v.SetDefault("materialize.chunk_overlap", d.Materialize.ChunkOverlap)
	v.SetDefault("materialize.delay", d.Materialize.Delay)
	v.SetDefault("materialize.extractor", string(d.Materialize.Extractor))
	v.SetDefault("materialize.keep_downloads", d.Materialize.KeepDownloads)

	v.SetDefault("model.provider", string(d.Model.Provider))
	v.SetDefault("model.model", d.Model.Model)
	v.SetDefault("model.embedding_provider", string(d.Model.EmbeddingProvider))
	v.SetDefault("model.embedding_model", d.Model.EmbeddingModel)
	v.SetDefault("model.max_tokens", d.Model.MaxTokens)
	v.SetDefault("model.base_url", d.Model.BaseURL)
	v.SetDefault("model.gemini_api_key", "")
	v.SetDefault("model.openai_api_key", "")
	v.SetDefault("model.anthropic_api_key", "")

	v.SetDefault("plan.strategy", string(d.Plan.Strategy))
	v.SetDefault("index.db_path", d.Index.DBPath)
	v.SetDefault("index.collection", d.Index.Collection)
	v.SetDefault("qa.k", d.QA.K)
	v.SetDefault("server.addr", d.Server.Addr)
}

// loadConfig decodes v into a validated types.Config.
func loadConfig(v *viper.Viper) (types.Config, error) {
	var c types.Config
	if err := v.Unmarshal(&c); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
