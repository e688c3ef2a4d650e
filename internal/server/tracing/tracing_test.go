package tracing

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInit_None(t *testing.T) {
	shutdown, err := Init("svc", ExporterNone, nil)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInit_Unknown(t *testing.T) {
	_, err := Init("svc", "jaeger", nil)
	assert.ErrorIs(t, err, ErrUnknownExporter)
}

func TestInit_StdoutExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := Init("svc", ExporterStdout, &buf)
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "create-task")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "create-task")
}
