package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/tasksync/internal/server/config"
)

func memoryConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.HTTPAddr = "127.0.0.1:0"
	c.GRPCAddr = "127.0.0.1:0"
	c.StorageBackend = config.BackendMemory
	c.LogLevel = "error"
	return c
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), memoryConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(150 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop after cancel")
	}
}

func TestApp_RunFailsOnBadAddress(t *testing.T) {
	c := memoryConfig()
	c.GRPCAddr = "127.0.0.1:99999"
	app, err := NewApp(context.Background(), c)
	require.NoError(t, err)

	select {
	case err := <-runAsync(app):
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not fail")
	}
}

func TestNewApp_UnknownTraceExporter(t *testing.T) {
	c := memoryConfig()
	c.TraceExporter = "zipkin"
	_, err := NewApp(context.Background(), c)
	assert.Error(t, err)
}

func runAsync(app *App) <-chan error {
	done := make(chan error, 1)
	go func() { done <- app.Run(context.Background()) }()
	return done
}
