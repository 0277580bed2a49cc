// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-assistant/pkg/types"
)

func samplePlan() Plan {
	papers := []types.ProcessedPaper{
		{
			Paper:   types.Paper{Title: "Denoising Diffusion Probabilistic Models", Authors: []string{"Jonathan Ho", "Ajay Jain", "Pieter Abbeel"}, Summary: "We present DDPM.", URL: "http://arxiv.org/abs/2006.11239v2"},
			Chunks:  []string{"a", "b", "c"},
			Insight: &types.Insight{Contributions: []string{"simple objective"}},
		},
		{
			Paper:  types.Paper{Title: "Score-Based Generative Modeling", Authors: []string{"Yang Song"}, URL: "http://arxiv.org/abs/2011.13456v2"},
			Chunks: []string{"d"},
		},
	}
	return NewPlan("diffusion models", "arxiv", "model", "papers", papers, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
}

func TestNewPlan(t *testing.T) {
	p := samplePlan()
	require.Len(t, p.Papers, 2)
	assert.Equal(t, 1, p.Papers[0].Rank)
	assert.Equal(t, 3, p.Papers[0].Chunks)
	assert.Equal(t, "Score-Based Generative Modeling", p.Papers[1].Title)
	assert.Nil(t, p.Papers[1].Insight)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, samplePlan(), FormatJSON))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	papers := got["papers"].([]any)
	first := papers[0].(map[string]any)
	assert.Equal(t, "Denoising Diffusion Probabilistic Models", first["title"])
	assert.Equal(t, float64(1), first["rank"])
	assert.NotContains(t, buf.String(), `"chunks": [`)
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, samplePlan(), FormatYAML))
	assert.Contains(t, buf.String(), "title: Denoising Diffusion Probabilistic Models")

	var got Plan
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	want := samplePlan()
	assert.Equal(t, want.Query, got.Query)
	assert.True(t, want.GeneratedAt.Equal(got.GeneratedAt))
	require.Len(t, got.Papers, 2)
	assert.Equal(t, want.Papers[0].PlanEntry, got.Papers[0].PlanEntry)
	assert.Equal(t, 3, got.Papers[0].Chunks)
	require.NotNil(t, got.Papers[0].Insight)
	assert.Equal(t, []string{"simple objective"}, got.Papers[0].Insight.Contributions)
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, samplePlan(), FormatTable))
	out := buf.String()
	assert.Contains(t, out, `Reading plan for "diffusion models" (arxiv, model)`)
	assert.Contains(t, out, "Jonathan Ho et al.")
	assert.Contains(t, out, "2 papers")

	buf.Reset()
	require.NoError(t, Write(&buf, Plan{}, FormatTable))
	assert.Equal(t, "No papers in reading plan.\n", buf.String())
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "plan.json")
	require.NoError(t, WriteFile(path, samplePlan(), FormatForPath(path)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "{"))
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"yaml": FormatYAML, "YML": FormatYAML, "json": FormatJSON, "": FormatTable, "table": FormatTable} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("csv")
	assert.Error(t, err)

	assert.Equal(t, FormatJSON, FormatForPath("plan.JSON"))
	assert.Equal(t, FormatYAML, FormatForPath("plan.yaml"))
	assert.Equal(t, FormatYAML, FormatForPath("plan"))
}
