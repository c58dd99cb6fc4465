package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mikey/phishing-filter/internal/core"
)

// analyzeEmailRequest carries already-decoded email fields.
type analyzeEmailRequest struct {
	Sender  string              `json:"sender" binding:"required,email"`
	Subject string              `json:"subject"`
	Body    string              `json:"body"`
	Headers map[string][]string `json:"headers"`
	Links   []string            `json:"links"`
}

// analyzeRawRequest carries one raw RFC 5322 message.
type analyzeRawRequest struct {
	RawEmail string `json:"raw_email" binding:"required"`
}

func (s *Server) handleAnalyzeEmail(c *gin.Context) {
	var req analyzeEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	email := &core.EmailInput{
		Sender:  req.Sender,
		Subject: req.Subject,
		Body:    req.Body,
		Headers: req.Headers,
		Links:   req.Links,
	}
	if email.Headers == nil {
		email.Headers = map[string][]string{}
	}

	result := s.analyzer.Analyze(c.Request.Context(), email)
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleAnalyzeRaw(c *gin.Context) {
	var req analyzeRawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	email, err := s.parser.ParseString(req.RawEmail)
	if err != nil {
		s.logger.Warn("Failed to parse raw email", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse raw email: " + err.Error()})
		return
	}

	result := s.analyzer.Analyze(c.Request.Context(), email)
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleFeatures(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"features": core.FeatureNames(),
		"categories": []string{
			"sender_reputation",
			"linguistic_analysis",
			"content_analysis",
			"url_analysis",
			"header_analysis",
		},
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"model_loaded": s.classifier.Ready(),
	})
}
