// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package insight

import (
	"bytes"
	"encoding/json"
	"strings"
	"text/template"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// summaryPromptTmpl asks for a JSON summary built from a paper's abstract.
var summaryPromptTmpl = template.Must(template.New("summary").Parse(`You are an academic assistant.

Return ONLY valid JSON with keys: title, url, authors, introduction, methods, conclusion.

Title: {{.Title}}
Authors: {{.Authors}}
URL: {{.URL}}
Abstract: {{.Abstract}}
`))

// insightPromptTmpl asks for the three insight lists of one summary.
var insightPromptTmpl = template.Must(template.New("insight").Parse(`You are an academic assistant.

Given this paper summary (JSON):
{{.SummaryJSON}}

Extract three *lists* with keys exactly:
  • contributions
  • gaps
  • comparisons

Return **ONLY** a valid JSON object, no markdown, no code block, no extra text.
`))

func renderSummaryPrompt(p types.Paper) (string, error) {
	var buf bytes.Buffer
	err := summaryPromptTmpl.Execute(&buf, struct {
		Title, Authors, URL, Abstract string
	}{
		Title:    p.Title,
		Authors:  strings.Join(p.Authors, ", "),
		URL:      p.URL,
		Abstract: p.Summary,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderInsightPrompt(s types.Summary) (string, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := insightPromptTmpl.Execute(&buf, struct{ SummaryJSON string }{string(data)}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
