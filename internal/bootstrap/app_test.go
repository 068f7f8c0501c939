package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pathfinder-backend/internal/llm"
	"pathfinder-backend/internal/queue"
	"pathfinder-backend/internal/shared/config"
	localstore "pathfinder-backend/internal/shared/storage/object/local"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Env:                "dev",
		ObjectStoreType:    "local",
		LocalStoreDir:      t.TempDir(),
		LLMProvider:        "none",
		CollegesAPIBase:    "http://127.0.0.1:1/colleges",
		SearchPageSize:     10,
		DefaultState:       "Telangana",
		DefaultCity:        "Hyderabad",
		UpstreamTimeout:    time.Second,
		GenerateRatePerMin: 6,
	}
}

func TestBuildDevDefaults(t *testing.T) {
	gin.SetMode(gin.TestMode)
	app, err := Build(testConfig(t))
	require.NoError(t, err)

	assert.Nil(t, app.DB)
	assert.IsType(t, &localstore.Store{}, app.Store)
	assert.IsType(t, &queue.MemoryClient{}, app.Queue)
	assert.IsType(t, llm.PlaceholderClient{}, app.Generator)
	assert.NotNil(t, app.AdvisorH.GenerateLimit)
	assert.Equal(t, "Telangana", app.Colleges.Default.State)

	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, resp.Code)

	routes := map[string]bool{}
	for _, r := range app.Router.Routes() {
		routes[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /api/v1/colleges/states",
		"POST /api/v1/colleges/sessions/:id/search",
		"POST /api/v1/advisor/sessions/:id/generate",
		"GET /api/v1/advisor/roadmaps/:roadmapId",
		"GET /metrics",
	} {
		assert.True(t, routes[want], "missing route %s", want)
	}
}

func TestBuildMissingKeyOutsideDev(t *testing.T) {
	cfg := testConfig(t)
	cfg.Env = "production"
	cfg.LLMProvider = "gemini"
	_, err := Build(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestBuildMissingKeyInDevUsesPlaceholder(t *testing.T) {
	cfg := testConfig(t)
	cfg.LLMProvider = "openai"
	app, err := BuildServices(t.Context(), cfg)
	require.NoError(t, err)
	assert.IsType(t, llm.PlaceholderClient{}, app.Generator)
}

func TestBuildS3RequiresBucket(t *testing.T) {
	cfg := testConfig(t)
	cfg.ObjectStoreType = "s3"
	_, err := BuildServices(t.Context(), cfg)
	require.Error(t, err)
}
