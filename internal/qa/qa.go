// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package qa answers questions from the chunks of an indexed collection.
package qa

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/internal/vectorstore"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// DefaultK is the number of chunks retrieved per question.
const DefaultK = 5

// NoContextAnswer is returned without calling the model when retrieval
// finds nothing.
const NoContextAnswer = "I couldn't find any relevant information in the provided papers."

var answerPromptTmpl = template.Must(template.New("answer").Parse(
	"You are an academic assistant. Using ONLY the context below, answer the question. " +
		"If the answer isn't in context, say 'I don't know.'\n\n" +
		"--- CONTEXT ---\n{{.Context}}\n\n--- QUESTION ---\n{{.Question}}\n\nAnswer:"))

// Retriever returns the k chunks most similar to a query.
type Retriever interface {
	Query(ctx context.Context, text string, k int) ([]vectorstore.Result, error)
}

// Answer retrieves the k chunks nearest to question and asks gen to answer
// using only them. k <= 0 means DefaultK.
func Answer(ctx context.Context, r Retriever, gen llm.Generator, question string, k int) (string, error) {
	if c, ok := r.(*vectorstore.Collection); r == nil || (ok && c == nil) {
		return "", fmt.Errorf("answering question: collection: %w", types.ErrNotFound)
	}
	if k <= 0 {
		k = DefaultK
	}

	results, err := r.Query(ctx, question, k)
	if err != nil {
		return "", fmt.Errorf("retrieving context: %w", err)
	}
	if len(results) == 0 {
		return NoContextAnswer, nil
	}

	prompt, err := RenderPrompt(results, question)
	if err != nil {
		return "", fmt.Errorf("rendering answer prompt: %w", err)
	}

	reply, err := gen.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("answering question: %w", err)
	}
	return strings.TrimSpace(reply), nil
}

// RenderPrompt builds the grounded prompt from retrieved chunks.
func RenderPrompt(results []vectorstore.Result, question string) (string, error) {
	snippets := make([]string, 0, len(results))
	for _, r := range results {
		authors := r.Metadata.Authors
		if authors == "" {
			authors = "N/A"
		}
		snippets = append(snippets, fmt.Sprintf("Source: %s\nAuthors: %s\nContent: %s", r.Metadata.Title, authors, r.Document))
	}

	var buf bytes.Buffer
	err := answerPromptTmpl.Execute(&buf, struct{ Context, Question string }{
		Context:  strings.Join(snippets, "\n\n"),
		Question: question,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
