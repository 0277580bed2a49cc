// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/internal/pipeline"
	"github.com/pdiddy/research-assistant/internal/qa"
	"github.com/pdiddy/research-assistant/internal/session"
	"github.com/pdiddy/research-assistant/internal/vectorstore"
	"github.com/pdiddy/research-assistant/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type constEmbedder struct{}

func (constEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 1}
	}
	return out, nil
}

type fakeResearcher struct {
	state *pipeline.State
	err   error
	calls []string
}

func (f *fakeResearcher) Run(_ context.Context, query, source string) (*pipeline.State, error) {
	f.calls = append(f.calls, query+"|"+source)
	return f.state, f.err
}

func testCollection(t *testing.T, docs ...string) *vectorstore.Collection {
	t.Helper()
	store, err := vectorstore.Open(filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	col, err := store.CreateCollection(context.Background(), "papers", constEmbedder{})
	require.NoError(t, err)
	ids := make([]string, len(docs))
	metas := make([]types.ChunkMetadata, len(docs))
	for i := range docs {
		ids[i] = string(rune('0' + i))
		metas[i] = types.ChunkMetadata{Title: "Denoising Diffusion Probabilistic Models", Authors: "Jonathan Ho"}
	}
	require.NoError(t, col.Add(context.Background(), ids, docs, metas))
	return col
}

func successState(t *testing.T) *pipeline.State {
	return &pipeline.State{
		Collection: testCollection(t, "Diffusion models add Gaussian noise."),
		ReadingPlan: []types.ProcessedPaper{
			{Paper: types.Paper{Title: "DDPM", Authors: []string{"Jonathan Ho"}, Summary: "s1", URL: "u1"}, Chunks: []string{"secret chunk"}},
			{Paper: types.Paper{Title: "Score SDE", Authors: []string{"Yang Song"}, Summary: "s2", URL: "u2"}},
		},
	}
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func answerGen(prompts *[]string) llm.Generator {
	return llm.GeneratorFunc(func(_ context.Context, p string) (string, error) {
		*prompts = append(*prompts, p)
		return " Gaussian noise is added. ", nil
	})
}

func TestStartResearchAndAsk(t *testing.T) {
	r := &fakeResearcher{state: successState(t)}
	var prompts []string
	s := New(r, answerGen(&prompts), nil, 5, nil)

	rec := do(t, s.Handler(), http.MethodPost, "/start-research", `{"query":"diffusion models"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"diffusion models|arxiv"}, r.calls)
	assert.NotContains(t, rec.Body.String(), "secret chunk")

	var resp ResearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, []types.PlanEntry{
		{Title: "DDPM", Authors: []string{"Jonathan Ho"}, Summary: "s1", URL: "u1"},
		{Title: "Score SDE", Authors: []string{"Yang Song"}, Summary: "s2", URL: "u2"},
	}, resp.ReadingPlan)

	rec = do(t, s.Handler(), http.MethodPost, "/ask-question",
		`{"session_id":"`+resp.SessionID+`","question":"What is added?"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var ans QAResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ans))
	assert.Equal(t, "Gaussian noise is added.", ans.Answer)
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "Content: Diffusion models add Gaussian noise.")
}

func TestStartResearchSource(t *testing.T) {
	r := &fakeResearcher{state: successState(t)}
	s := New(r, nil, nil, 5, nil)

	rec := do(t, s.Handler(), http.MethodPost, "/start-research", `{"query":"graphs","source":"semantic_scholar"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"graphs|semantic_scholar"}, r.calls)
}

func TestStartResearchFailures(t *testing.T) {
	tests := []struct {
		name  string
		state *pipeline.State
		err   error
	}{
		{"no results", &pipeline.State{Halt: pipeline.HaltNoPapers}, types.ErrNoResults},
		{"upstream", nil, types.ErrUpstream},
		{"no collection", &pipeline.State{ReadingPlan: []types.ProcessedPaper{{}}}, nil},
		{"no plan", &pipeline.State{Collection: &vectorstore.Collection{}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := session.NewStore()
			s := New(&fakeResearcher{state: tt.state, err: tt.err}, nil, sessions, 5, nil)

			rec := do(t, s.Handler(), http.MethodPost, "/start-research", `{"query":"q"}`)
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.JSONEq(t, `{"error":"`+workflowFailedMsg+`"}`, rec.Body.String())
			assert.Zero(t, sessions.Len())
		})
	}
}

func TestStartResearchBadRequest(t *testing.T) {
	r := &fakeResearcher{}
	s := New(r, nil, nil, 5, nil)

	for _, body := range []string{`{"query":"  "}`, `{"query":"q","source":"pubmed"}`, `{"query":`} {
		rec := do(t, s.Handler(), http.MethodPost, "/start-research", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	assert.Empty(t, r.calls)
}

func TestAskQuestionUnknownSession(t *testing.T) {
	s := New(&fakeResearcher{}, nil, nil, 5, nil)
	rec := do(t, s.Handler(), http.MethodPost, "/ask-question", `{"session_id":"nope","question":"why?"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Session not found."}`, rec.Body.String())
}

func TestAskQuestionRebuiltCollection(t *testing.T) {
	ctx := context.Background()
	store, err := vectorstore.Open(filepath.Join(t.TempDir(), "rebuild.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	old, err := store.CreateCollection(ctx, "papers", constEmbedder{})
	require.NoError(t, err)
	require.NoError(t, old.Add(ctx, []string{"0"}, []string{"session A chunk"}, []types.ChunkMetadata{{Title: "A"}}))
	sessions := session.NewStore()
	sess := sessions.Create("a", old, []types.ProcessedPaper{{}})

	require.NoError(t, store.DeleteCollection(ctx, "papers"))
	_, err = store.CreateCollection(ctx, "papers", constEmbedder{})
	require.NoError(t, err)

	var prompts []string
	s := New(&fakeResearcher{}, answerGen(&prompts), sessions, 5, nil)
	rec := do(t, s.Handler(), http.MethodPost, "/ask-question", `{"session_id":"`+sess.ID+`","question":"what?"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"`+collectionGoneMsg+`"}`, rec.Body.String())
	assert.Empty(t, prompts)
}

func TestAskQuestionEmptyCollectionSkipsModel(t *testing.T) {
	sessions := session.NewStore()
	sess := sessions.Create("q", testCollection(t), []types.ProcessedPaper{{}})

	var prompts []string
	s := New(&fakeResearcher{}, answerGen(&prompts), sessions, 5, nil)
	rec := do(t, s.Handler(), http.MethodPost, "/ask-question", `{"session_id":"`+sess.ID+`","question":"anything?"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"answer":"`+qa.NoContextAnswer+`"}`, rec.Body.String())
	assert.Empty(t, prompts)
}

func TestAskQuestionModelError(t *testing.T) {
	sessions := session.NewStore()
	sess := sessions.Create("q", testCollection(t, "doc"), nil)
	gen := llm.GeneratorFunc(func(context.Context, string) (string, error) {
		return "", errors.New("quota exceeded")
	})
	s := New(&fakeResearcher{}, gen, sessions, 5, nil)

	rec := do(t, s.Handler(), http.MethodPost, "/ask-question", `{"session_id":"`+sess.ID+`","question":"q"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "quota")
}

func TestHealthAndMetrics(t *testing.T) {
	s := New(&fakeResearcher{}, nil, nil, 5, nil)

	rec := do(t, s.Handler(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	do(t, s.Handler(), http.MethodPost, "/ask-question", `{"session_id":"x","question":"q"}`)

	rec = do(t, s.Handler(), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `research_assistant_questions_total{outcome="not_found"} 1`)
	assert.Contains(t, body, "research_assistant_sessions 0")
	assert.Contains(t, body, `research_assistant_http_requests_total{code="404",method="POST",route="/ask-question"} 1`)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := New(&fakeResearcher{}, nil, nil, 5, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	tr := &http.Transport{}
	client := &http.Client{Transport: tr, Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	tr.CloseIdleConnections()
	assert.Equal(t, "ok", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}
