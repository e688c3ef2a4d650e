package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestRealtimeCounters(t *testing.T) {
	m := New()

	m.ConnOpened()
	m.ConnOpened()
	m.ConnClosed()
	m.Delivered("task-create")
	m.Delivered("task-create")
	m.Dropped("task-update")

	body := scrape(t, m)
	assert.Contains(t, body, "tasksync_realtime_connections 1")
	assert.Contains(t, body, `tasksync_realtime_events_delivered_total{event="task-create"} 2`)
	assert.Contains(t, body, `tasksync_realtime_events_dropped_total{event="task-update"} 1`)
}

func TestMiddleware_LabelsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/tasks/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tasks/abc", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	body := scrape(t, m)
	assert.Contains(t, body, `tasksync_http_requests_total{code="404",method="GET",route="/api/tasks/:id"} 1`)
	assert.Contains(t, body, `route="unmatched"`)
}
