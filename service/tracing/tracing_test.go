package tracing

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestSetupExportsSpansToFile(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "spans.json")

	tp, err := Setup("drowsy-test", Options{File: fn, MaxSizeMB: 1})
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "monitor.frame")
	assert.True(t, span.IsRecording())
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	require.NoError(t, tp.Shutdown(context.Background()))

	data, err := os.ReadFile(fn)
	require.NoError(t, err)
	assert.Contains(t, string(data), "monitor.frame")
	assert.Contains(t, string(data), "drowsy-test")
}

func TestSetupWithoutFileStillRecords(t *testing.T) {
	tp, err := Setup("drowsy-test", Options{})
	require.NoError(t, err)
	defer tp.Shutdown(context.Background())

	_, span := otel.Tracer("test").Start(context.Background(), "monitor.frame")
	defer span.End()
	assert.True(t, span.IsRecording())
}
