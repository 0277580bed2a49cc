// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-assistant/pkg/types"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  map[string]string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, GeminiAPIKey, "  AIza-abc  \n")
				writeFile(t, dir, SemanticScholarAPIKey, "s2_xyz")
				return dir
			},
			want: map[string]string{
				GeminiAPIKey:          "AIza-abc",
				SemanticScholarAPIKey: "s2_xyz",
			},
		},
		{
			name: "missing directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files, dotfiles, and directories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, OpenAIAPIKey, "sk-live")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				writeFile(t, dir, ".hidden-key", "secret")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: map[string]string{OpenAIAPIKey: "sk-live"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApply(t *testing.T) {
	cfg := types.DefaultConfig()
	cfg.Model.OpenAIAPIKey = "from-env"

	Apply(&cfg, map[string]string{
		GeminiAPIKey:          "gem",
		OpenAIAPIKey:          "from-file",
		AnthropicAPIKey:       "ant",
		SemanticScholarAPIKey: "s2",
	})

	assert.Equal(t, "gem", cfg.Model.GeminiAPIKey)
	assert.Equal(t, "from-env", cfg.Model.OpenAIAPIKey)
	assert.Equal(t, "ant", cfg.Model.AnthropicAPIKey)
	assert.Equal(t, "s2", cfg.Search.SemanticScholarAPIKey)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
