package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haseebdoesdev/go-task-scheduler/internal/config"
	"github.com/haseebdoesdev/go-task-scheduler/internal/logger"
	"github.com/haseebdoesdev/go-task-scheduler/internal/pool"
)

func init() {
	logger.Init("error", false)
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Metrics.Enabled = true
	cfg.Metrics.Path = "/metrics"
	cfg.Auth.Enabled = false
	cfg.RateLimit.Enabled = false
	return cfg
}

func testPool() *pool.Pool {
	pcfg := pool.DefaultConfig()
	pcfg.Capacity = 5
	return pool.New(pcfg)
}

func TestServer_HealthAndMetrics(t *testing.T) {
	s := NewServer(testConfig(), testPool(), nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w = httptest.NewRecorder()
	s.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_SubmitAndGetTask(t *testing.T) {
	s := NewServer(testConfig(), testPool(), nil)

	body, _ := json.Marshal(map[string]interface{}{
		"name":              "encode-video",
		"priority":          "HIGH",
		"execution_time_ms": 50,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var created map[string]int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created["id"]

	req = httptest.NewRequest(http.MethodGet, "/api/v1/tasks/"+strconv.Itoa(id), nil)
	w = httptest.NewRecorder()
	s.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_AdminSnapshot(t *testing.T) {
	s := NewServer(testConfig(), testPool(), nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/snapshot", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_AuthRequiredWhenEnabled(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.Enabled = true
	cfg.Auth.APIKeys = []string{"secret-key"}

	s := NewServer(cfg, testPool(), nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/snapshot", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin/snapshot", nil)
	req.Header.Set("X-API-Key", "secret-key")
	w = httptest.NewRecorder()
	s.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_StartStop(t *testing.T) {
	s := NewServer(testConfig(), testPool(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()
	s.Stop()
}
