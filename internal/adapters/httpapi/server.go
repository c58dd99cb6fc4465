package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mikey/phishing-filter/internal/core"
	"github.com/mikey/phishing-filter/internal/emailparse"
)

// Server exposes the analyzer over HTTP. All email decoding and request
// validation happens here; the analyzer only ever sees well-formed EmailInput.
type Server struct {
	analyzer   *core.AnalyzerService
	classifier core.Classifier
	parser     *emailparse.Parser
	logger     *zap.Logger
	listenAddr string
	srv        *http.Server
}

// NewServer creates a new HTTP API server.
func NewServer(
	analyzer *core.AnalyzerService,
	classifier core.Classifier,
	parser *emailparse.Parser,
	logger *zap.Logger,
	listenAddr string,
) *Server {
	return &Server{
		analyzer:   analyzer,
		classifier: classifier,
		parser:     parser,
		logger:     logger,
		listenAddr: listenAddr,
	}
}

func (s *Server) buildRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", s.handleHealth)

	api := router.Group("/api/v1")
	api.POST("/analyze/email", s.handleAnalyzeEmail)
	api.POST("/analyze/raw", s.handleAnalyzeRaw)
	api.GET("/features", s.handleFeatures)

	return router
}

// Start starts serving in a background goroutine.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)

	s.srv = &http.Server{
		Addr:    s.listenAddr,
		Handler: s.buildRouter(),
	}

	s.logger.Info("HTTP API starting", zap.String("address", s.listenAddr))

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop() error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

// ProcessEmail analyzes one decoded email.
func (s *Server) ProcessEmail(ctx context.Context, email *core.EmailInput) (*core.AnalysisResult, error) {
	return s.analyzer.Analyze(ctx, email), nil
}
