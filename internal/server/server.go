package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ppiankov/cookbot/internal/model"
)

const shutdownTimeout = 5 * time.Second

// Answerer answers a single query; the pipeline satisfies it
type Answerer interface {
	Answer(ctx context.Context, query model.Query) model.Answer
}

// Server exposes the assistant over HTTP
type Server struct {
	router   *gin.Engine
	http     *http.Server
	answerer Answerer
	logger   *zap.Logger
	debug    bool
}

type queryRequest struct {
	Query    string   `json:"query"`
	Cookware []string `json:"cookware"`
}

type queryResponse struct {
	Response  string        `json:"response"`
	Relevant  bool          `json:"relevant"`
	Intent    model.Intent  `json:"intent"`
	Outcome   model.Outcome `json:"outcome"`
	Degraded  bool          `json:"degraded"`
	RequestID string        `json:"request_id"`
	DebugInfo *debugInfo    `json:"debug_info,omitempty"`
}

type debugInfo struct {
	Stages []model.Stage      `json:"stages"`
	Recipe *model.Recipe      `json:"recipe,omitempty"`
	Match  *model.MatchResult `json:"match,omitempty"`
}

// New creates a server. Routes are registered immediately; call Start to listen.
func New(cfg model.ServerConfig, answerer Answerer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger), cors.New(corsConfig(cfg.AllowedOrigins)))

	s := &Server{
		router:   router,
		answerer: answerer,
		logger:   logger,
		debug:    cfg.Debug,
		http: &http.Server{
			Addr:              cfg.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	router.GET("/health", s.handleHealth)
	router.POST("/api/query", s.handleQuery)
	return s
}

// Handler returns the HTTP handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Stop(shutdownCtx)
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) handleQuery(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query must not be empty"})
		return
	}

	answer := s.answerer.Answer(c.Request.Context(), model.Query{Text: req.Query, Cookware: req.Cookware})

	resp := queryResponse{
		Response:  answer.Text,
		Relevant:  answer.Relevant(),
		Intent:    answer.Intent,
		Outcome:   answer.Outcome,
		Degraded:  answer.Degraded,
		RequestID: answer.RequestID,
	}
	if s.debug {
		resp.DebugInfo = &debugInfo{Stages: answer.Stages, Recipe: answer.Recipe, Match: answer.Match}
	}

	status := http.StatusOK
	if answer.Outcome == model.OutcomeUnavailable {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
