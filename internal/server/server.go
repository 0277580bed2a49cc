// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the research workflow over HTTP:
//
//	POST /start-research  {query, source}       -> {session_id, reading_plan}
//	POST /ask-question    {session_id, question} -> {answer}
//	GET  /healthz
//	GET  /metrics
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/internal/pipeline"
	"github.com/pdiddy/research-assistant/internal/qa"
	"github.com/pdiddy/research-assistant/internal/search"
	"github.com/pdiddy/research-assistant/internal/session"
	"github.com/pdiddy/research-assistant/pkg/types"
)

const (
	workflowFailedMsg = "Agent workflow failed to produce results."
	collectionGoneMsg = "Session collection no longer exists; start a new research session."
)

// Researcher runs one research workflow.
type Researcher interface {
	Run(ctx context.Context, query, source string) (*pipeline.State, error)
}

// ResearchRequest is the body of POST /start-research.
type ResearchRequest struct {
	Query  string `json:"query"`
	Source string `json:"source"`
}

// ResearchResponse is the reply to POST /start-research.
type ResearchResponse struct {
	SessionID   string            `json:"session_id"`
	ReadingPlan []types.PlanEntry `json:"reading_plan"`
}

// QARequest is the body of POST /ask-question.
type QARequest struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
}

// QAResponse is the reply to POST /ask-question.
type QAResponse struct {
	Answer string `json:"answer"`
}

// Server serves the research API.
type Server struct {
	e          *echo.Echo
	researcher Researcher
	generator  llm.Generator
	sessions   *session.Store
	k          int
	logger     *zap.Logger
	metrics    *metrics
}

// New builds a Server. k is the number of chunks retrieved per question.
func New(r Researcher, gen llm.Generator, sessions *session.Store, k int, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sessions == nil {
		sessions = session.NewStore()
	}

	s := &Server{
		e:          echo.New(),
		researcher: r,
		generator:  gen,
		sessions:   sessions,
		k:          k,
		logger:     logger,
	}
	s.metrics = newMetrics(sessions)

	s.e.HideBanner = true
	s.e.HidePort = true
	s.e.Use(middleware.Recover())
	s.e.Use(s.instrument)
	s.e.HTTPErrorHandler = s.handleError

	s.e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	s.e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})))
	s.e.POST("/start-research", s.startResearch)
	s.e.POST("/ask-question", s.askQuestion)

	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.e }

// Run listens on addr and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.e.Listener = ln
	s.logger.Info("serving", zap.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() { errCh <- s.e.Start("") }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) startResearch(c echo.Context) error {
	var req ResearchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}
	source, err := search.ParseSource(req.Source)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	s.logger.Info("starting research", zap.String("query", req.Query), zap.String("source", source))
	start := time.Now()
	st, err := s.researcher.Run(c.Request().Context(), req.Query, source)
	s.metrics.researchDuration.Observe(time.Since(start).Seconds())

	if err != nil || st == nil || st.Collection == nil || len(st.ReadingPlan) == 0 {
		outcome := "error"
		if errors.Is(err, types.ErrNoResults) {
			outcome = "no_results"
		}
		s.metrics.researchRuns.WithLabelValues(outcome).Inc()
		s.logger.Warn("research workflow produced no results", zap.String("query", req.Query), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, workflowFailedMsg)
	}

	sess := s.sessions.Create(req.Query, st.Collection, st.ReadingPlan)
	s.metrics.researchRuns.WithLabelValues("ok").Inc()
	s.logger.Info("research session created",
		zap.String("session_id", sess.ID),
		zap.Int("papers", len(st.ReadingPlan)))

	return c.JSON(http.StatusOK, ResearchResponse{
		SessionID:   sess.ID,
		ReadingPlan: types.PlanEntries(st.ReadingPlan),
	})
}

func (s *Server) askQuestion(c echo.Context) error {
	var req QARequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	sess, err := s.sessions.Get(req.SessionID)
	if err != nil {
		s.metrics.questions.WithLabelValues("not_found").Inc()
		return echo.NewHTTPError(http.StatusNotFound, "Session not found.")
	}
	if strings.TrimSpace(req.Question) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "question is required")
	}

	s.logger.Info("answering question", zap.String("session_id", sess.ID), zap.String("question", req.Question))
	answer, err := qa.Answer(c.Request().Context(), sess.Collection, s.generator, req.Question, s.k)
	if errors.Is(err, types.ErrNotFound) {
		s.metrics.questions.WithLabelValues("not_found").Inc()
		return echo.NewHTTPError(http.StatusNotFound, collectionGoneMsg).SetInternal(err)
	}
	if err != nil {
		s.metrics.questions.WithLabelValues("error").Inc()
		return fmt.Errorf("answering question: %w", err)
	}

	s.metrics.questions.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, QAResponse{Answer: answer})
}

// handleError writes every error as {"error": msg}. Non-HTTP errors become
// a generic 500.
func (s *Server) handleError(err error, c echo.Context) {
	code := http.StatusInternalServerError
	msg := "internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
	}

	req := c.Request()
	s.logger.Warn("request failed",
		zap.Int("status", code),
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Error(err))

	if !c.Response().Committed {
		_ = c.JSON(code, map[string]string{"error": msg})
	}
}

// instrument records request counts by route and status.
func (s *Server) instrument(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := next(c)
		status := c.Response().Status
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
		} else if err != nil {
			status = http.StatusInternalServerError
		}
		s.metrics.requests.WithLabelValues(c.Request().Method, c.Path(), fmt.Sprint(status)).Inc()
		return err
	}
}

type metrics struct {
	registry         *prometheus.Registry
	requests         *prometheus.CounterVec
	researchRuns     *prometheus.CounterVec
	researchDuration prometheus.Histogram
	questions        *prometheus.CounterVec
}

func newMetrics(sessions *session.Store) *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "research_assistant_http_requests_total",
			Help: "HTTP requests by method, route, and status code.",
		}, []string{"method", "route", "code"}),
		researchRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "research_assistant_research_runs_total",
			Help: "Research workflow runs by outcome.",
		}, []string{"outcome"}),
		researchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "research_assistant_research_duration_seconds",
			Help:    "Wall time of research workflow runs.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		questions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "research_assistant_questions_total",
			Help: "Questions answered by outcome.",
		}, []string{"outcome"}),
	}
	m.registry.MustRegister(
		m.requests,
		m.researchRuns,
		m.researchDuration,
		m.questions,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "research_assistant_sessions",
			Help: "Research sessions held in memory.",
		}, func() float64 { return float64(sessions.Len()) }),
		collectors.NewGoCollector(),
	)
	return m
}
