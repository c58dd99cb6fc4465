package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/phishing-filter/internal/adapters/model"
	"github.com/mikey/phishing-filter/internal/core"
	"github.com/mikey/phishing-filter/internal/domains"
	"github.com/mikey/phishing-filter/internal/emailparse"
	"github.com/mikey/phishing-filter/internal/features"
	"github.com/mikey/phishing-filter/internal/utils"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	extractor := features.NewExtractor(domains.NewAllowlist([]string{"yourcompany.com"}, nil), logger)
	classifier := model.NewFromArtifact(nil, logger)
	analyzer := core.NewAnalyzerService(extractor, classifier, nil, logger,
		false, 0, 0.5, core.DefaultRuleWeights(), core.DefaultBlendWeights())
	parser := emailparse.NewParser(utils.NewTextProcessor(logger), logger)

	server := NewServer(analyzer, classifier, parser, logger, "127.0.0.1:0")
	return server.buildRouter()
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleHealth(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, false, body["model_loaded"])
}

func TestHandleAnalyzeEmail(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/v1/analyze/email", `{
		"sender": "security@bank-alert.tk",
		"subject": "URGENT: Verify Account NOW!!!",
		"body": "Click here immediately to verify your account",
		"links": ["http://fake-bank.tk/verify"]
	}`)
	require.Equal(t, http.StatusOK, w.Code)

	var result core.AnalysisResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))

	assert.NotEmpty(t, result.AnalysisID)
	assert.GreaterOrEqual(t, result.RiskScore, 0.0)
	assert.LessOrEqual(t, result.RiskScore, 1.0)
	assert.NotEmpty(t, result.Explanation)
	assert.NotEmpty(t, result.Features)
}

func TestHandleAnalyzeEmailValidation(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/v1/analyze/email", `{"subject":"no sender"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPost, "/api/v1/analyze/email", `{"sender":"not-an-address"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPost, "/api/v1/analyze/email", `{broken`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleAnalyzeRaw(t *testing.T) {
	router := newTestRouter(t)

	raw := "From: sender@example.com\r\nSubject: Hi\r\n\r\nJust checking in.\r\n"
	payload, err := json.Marshal(map[string]string{"raw_email": raw})
	require.NoError(t, err)

	w := doJSON(router, http.MethodPost, "/api/v1/analyze/raw", string(payload))
	require.Equal(t, http.StatusOK, w.Code)

	var result core.AnalysisResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.NotEmpty(t, result.AnalysisID)
}

func TestHandleAnalyzeRawParseFailure(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/v1/analyze/raw", `{"raw_email":"not a message"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleFeatures(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, http.MethodGet, "/api/v1/features", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Features   []string `json:"features"`
		Categories []string `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, core.FeatureNames(), body.Features)
	assert.Len(t, body.Categories, 5)
}
