package respond

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"pathfinder-backend/internal/shared/telemetry"
)

func TestErrorLogLevelFollowsStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	restore := telemetry.SetLogger(zap.New(core))
	defer restore()

	router := gin.New()
	router.GET("/sessions/:id", func(c *gin.Context) {
		Error(c, http.StatusNotFound, "not_found", "missing", nil)
	})
	router.GET("/boom", func(c *gin.Context) {
		Error(c, http.StatusBadGateway, "upstream_unavailable", "down", gin.H{"retry": true})
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/sessions/abc", nil))
	require.Equal(t, http.StatusNotFound, resp.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "not_found", body.Error.Code)
	assert.Nil(t, body.Error.Details)

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, http.StatusBadGateway, resp.Code)

	entries := logs.FilterMessage("http.error").All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "abc", entries[0].ContextMap()["session_id"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
}

func TestAcceptedAndHead(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := func(c *gin.Context) { Accepted(c, gin.H{"requestId": "r-1"}) }
	router.POST("/mentor", handler)
	router.HEAD("/mentor", handler)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/mentor", nil))
	assert.Equal(t, http.StatusAccepted, resp.Code)
	assert.JSONEq(t, `{"requestId":"r-1"}`, resp.Body.String())

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodHead, "/mentor", nil))
	assert.Equal(t, http.StatusAccepted, resp.Code)
	assert.Empty(t, resp.Body.String())
}
