package cli

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/gin-gonic/gin"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/tasksync/internal/client/client"
	"github.com/dmitrijs2005/tasksync/internal/client/models"
	"github.com/dmitrijs2005/tasksync/internal/client/syncstore"
	"github.com/dmitrijs2005/tasksync/internal/logging"
	"github.com/dmitrijs2005/tasksync/internal/server/config"
	"github.com/dmitrijs2005/tasksync/internal/server/httpapi"
	"github.com/dmitrijs2005/tasksync/internal/server/realtime"
	"github.com/dmitrijs2005/tasksync/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/tasksync/internal/server/services"
)

func init() {
	gin.SetMode(gin.TestMode)
	lipgloss.SetColorProfile(termenv.Ascii)
}

func startServer(t *testing.T) string {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.StorageBackend = config.BackendMemory
	cfg.LoginRatePerMinute = 600
	cfg.LoginRateBurst = 100

	log := logging.NewNop()
	rm := repomanager.NewInMemoryRepositoryManager()
	hub := realtime.NewHub(log)
	activities := services.NewActivityService(rm, hub, log)
	srv := httpapi.NewHTTPServer(cfg, log, httpapi.Deps{
		Users:      services.NewUserService(rm, activities, cfg, log),
		Tasks:      services.NewTaskService(rm, activities, hub, log),
		Activities: activities,
		Hub:        hub,
		Storage:    rm,
	})

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		hub.Close()
	})
	return ts.URL
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	old := readPassword
	readPassword = func(int) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { readPassword = old })
}

type cliEnv struct {
	server  string
	session string
}

func newCLIEnv(t *testing.T) *cliEnv {
	return &cliEnv{server: startServer(t), session: filepath.Join(t.TempDir(), "session.json")}
}

func (e *cliEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd(strings.NewReader(stdin), &out, io.Discard)
	cmd.SetArgs(append([]string{"--server", e.server, "--session-file", e.session}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *cliEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, "", args...)
	require.NoError(t, err, out)
	return out
}

func (e *cliEnv) api(t *testing.T) *client.APIClient {
	t.Helper()
	tokens, err := loadTokens(e.session)
	require.NoError(t, err)
	return client.NewAPIClient(e.server, client.WithTokens(tokens))
}

func TestCLI_TaskLifecycle(t *testing.T) {
	stubPassword(t, "secret1")
	e := newCLIEnv(t)

	out := e.mustRun(t, "register", "-u", "alice", "-e", "alice@example.com", "-p", "dev")
	assert.Contains(t, out, "Registered alice <alice@example.com>")

	out, err := e.run(t, "alice@example.com\n", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as alice")

	out = e.mustRun(t, "whoami")
	assert.Contains(t, out, "alice <alice@example.com>")

	out = e.mustRun(t, "tasks", "create", "Ship it", "--priority", "high", "--tags", "release,q3")
	assert.Contains(t, out, "Created ")
	assert.Contains(t, out, "priority: high")

	tasks, err := e.api(t).ListTasks(context.Background(), models.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	id := tasks[0].ID

	out = e.mustRun(t, "tasks", "list")
	assert.Contains(t, out, "Ship it")
	assert.Contains(t, out, "[release, q3]")

	out = e.mustRun(t, "tasks", "list", "--status", models.StatusCompleted)
	assert.Contains(t, out, "No tasks")

	out = e.mustRun(t, "tasks", "update", id, "--status", models.StatusCompleted)
	assert.Contains(t, out, "Updated "+id)
	assert.Contains(t, out, "status:   completed")

	out = e.mustRun(t, "tasks", "show", id)
	assert.Contains(t, out, "Ship it")

	out = e.mustRun(t, "tasks", "stats")
	assert.Contains(t, out, "total 1")
	assert.Contains(t, out, "completed 1")

	out = e.mustRun(t, "tasks", "upcoming")
	assert.Contains(t, out, "No Tasks Due")

	out = e.mustRun(t, "activities")
	assert.Contains(t, out, "created")
	assert.Contains(t, out, "logged_in")

	out = e.mustRun(t, "tasks", "rm", id)
	assert.Contains(t, out, "Task deleted successfully")

	out = e.mustRun(t, "activities", "clear")
	assert.Contains(t, out, "Activity logs cleared")

	out = e.mustRun(t, "logout")
	assert.Contains(t, out, "Logged out successfully")

	_, err = e.run(t, "", "tasks", "list")
	assert.ErrorIs(t, err, client.ErrNotLoggedIn)
}

func TestCLI_Errors(t *testing.T) {
	stubPassword(t, "secret1")
	e := newCLIEnv(t)

	_, err := e.run(t, "", "register", "-u", "bob", "-e", "not-an-email", "-p", "dev")
	assert.Error(t, err)

	_, err = e.run(t, "", "login", "-e", "nobody@example.com")
	assert.ErrorIs(t, err, client.ErrUnauthorized)

	_, err = e.run(t, "", "tasks", "show")
	assert.Error(t, err, "missing id argument")

	_, err = e.run(t, "", "--server", "localhost:8080", "whoami")
	assert.Error(t, err, "scheme-less server url is rejected")
}

// syncBuffer is written by the redraw callback while the test reads it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatch_RedrawsOnBroadcast(t *testing.T) {
	stubPassword(t, "secret1")
	e := newCLIEnv(t)
	e.mustRun(t, "register", "-u", "alice", "-e", "alice@example.com", "-p", "dev")
	e.mustRun(t, "login", "-e", "alice@example.com")

	out := &syncBuffer{}
	app := &App{reader: rdr(""), out: out, errOut: io.Discard}
	require.NoError(t, app.init(&globalFlags{serverURL: e.server, sessionFile: e.session}))

	events := make(chan syncstore.Event, 16)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- app.watch(ctx, models.TaskFilter{}, func(ev syncstore.Event) {
			select {
			case events <- ev:
			default:
			}
		})
	}()

	waitFor := func(match func(syncstore.Event) bool) {
		t.Helper()
		deadline := time.After(3 * time.Second)
		for {
			select {
			case ev := <-events:
				if match(ev) {
					return
				}
			case <-deadline:
				t.Fatal("timed out waiting for event")
			}
		}
	}
	waitFor(func(ev syncstore.Event) bool { _, ok := ev.(syncstore.RoomJoined); return ok })

	other := client.NewAPIClient(e.server)
	_, err := other.Login(context.Background(), "alice@example.com", "secret1")
	require.NoError(t, err)
	_, err = other.CreateTask(context.Background(), models.NewTask{Title: "From elsewhere"})
	require.NoError(t, err)

	waitFor(func(ev syncstore.Event) bool { _, ok := ev.(syncstore.TaskCreated); return ok })
	assert.Contains(t, out.String(), "From elsewhere")
	assert.Contains(t, out.String(), "total 1")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("watch did not stop")
	}
}
