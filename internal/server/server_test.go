package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/portfolio-tracker/internal/config"
	"github.com/aristath/portfolio-tracker/internal/di"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{
		DataDir:        t.TempDir(),
		Port:           8000,
		DevMode:        true,
		StoreBackend:   config.StoreMemory,
		AllowedOrigins: []string{"http://localhost:3000"},
		GridColumns:    12,
		WidgetIDStyle:  config.WidgetIDSequence,
		Providers: config.ProvidersConfig{
			UpstreamTimeout: time.Second,
			TradesTimeout:   time.Second,
			TradesCacheTTL:  time.Hour,
		},
		Jobs: config.JobsConfig{
			CacheCleanupSchedule: "@hourly",
			TradesWarmupSchedule: "@every 55m",
			MaintenanceSchedule:  "0 3 * * *",
		},
	}

	container, _, err := di.Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close() })

	s := New(Config{Log: zerolog.Nop(), Config: cfg, Container: container})
	s.systemHandlers.systemFn = func() (float64, float64) { return 1, 2 }
	return s
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/health", "/api/health"} {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

		require.Equal(t, http.StatusOK, rec.Code, path)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, "portfolio-tracker", body["service"])
		assert.Equal(t, Version, body["version"])
	}
}

func TestServer_PortfolioRoundTrip(t *testing.T) {
	s := newTestServer(t)

	body := `{"name":"Tech Watch","people":[{"name":"Nancy Pelosi","type":"politician"}]}`
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/portfolios", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/portfolios", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Tech Watch", list[0]["name"])
}

func TestServer_UnknownPortfolio(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/portfolios/999", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_CORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/portfolios", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)
}

func TestServer_SystemStatus(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/system/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SystemStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Len(t, resp.Databases, 1)
	assert.Len(t, resp.Jobs, 3)
	assert.NotNil(t, resp.TradesCache)
	assert.False(t, resp.BackupsEnabled)
}

func TestAllowsAnyOrigin(t *testing.T) {
	assert.True(t, allowsAnyOrigin([]string{"*"}))
	assert.True(t, allowsAnyOrigin([]string{"http://a", "*"}))
	assert.False(t, allowsAnyOrigin([]string{"http://a"}))
	assert.False(t, allowsAnyOrigin(nil))
}
