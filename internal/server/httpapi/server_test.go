package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/tasksync/internal/logging"
	"github.com/dmitrijs2005/tasksync/internal/server/config"
	"github.com/dmitrijs2005/tasksync/internal/server/metrics"
	"github.com/dmitrijs2005/tasksync/internal/server/realtime"
	"github.com/dmitrijs2005/tasksync/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/tasksync/internal/server/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	srv *HTTPServer
	hub *realtime.Hub
	cfg *config.Config
}

func testConfig() *config.Config {
	return &config.Config{
		HTTPAddr:                     "127.0.0.1:0",
		SecretKey:                    "test-secret",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 24 * time.Hour,
		AllowedOrigin:                "http://localhost:5173",
		WSPingInterval:               time.Second,
		LoginRatePerMinute:           600,
		LoginRateBurst:               100,
	}
}

func newTestEnv(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()
	log := logging.NewNop()
	rm := repomanager.NewInMemoryRepositoryManager()
	m := metrics.New()
	hub := realtime.NewHub(log, realtime.WithMetrics(m))
	t.Cleanup(hub.Close)

	activities := services.NewActivityService(rm, hub, log)
	deps := Deps{
		Users:      services.NewUserService(rm, activities, cfg, log),
		Tasks:      services.NewTaskService(rm, activities, hub, log),
		Activities: activities,
		Hub:        hub,
		Metrics:    m,
		Storage:    rm,
	}
	return &testEnv{srv: NewHTTPServer(cfg, log, deps), hub: hub, cfg: cfg}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type loginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         struct {
		ID string `json:"id"`
	} `json:"user"`
}

// signup registers and logs in, returning the access token and user id.
func (e *testEnv) signup(t *testing.T, name string) (string, string) {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": name, "email": name + "@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = e.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": name + "@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[loginResponse](t, w)
	return res.AccessToken, res.User.ID
}

type messageBody struct {
	Message string `json:"message"`
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t, testConfig())
	w := e.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

type downStorage struct{}

func (downStorage) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealth_StorageDown(t *testing.T) {
	e := newTestEnv(t, testConfig())
	e.srv.deps.Storage = downStorage{}
	w := e.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	e := newTestEnv(t, testConfig())
	e.do(t, http.MethodGet, "/health", "", nil)
	w := e.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `route="/health"`)
}

func TestCORSPreflight(t *testing.T) {
	e := newTestEnv(t, testConfig())
	w := e.do(t, http.MethodOptions, "/api/tasks/list", "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}
