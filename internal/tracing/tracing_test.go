package tracing

import (
	"context"
	"fmt"
	"testing"

	"waconsole/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestManagerDisabled(t *testing.T) {
	m := NewManager(models.TracingConfig{Enabled: false}, testLogger())

	require.NoError(t, m.Initialize(context.Background()))
	assert.Nil(t, m.tracerProvider)

	// Shutdown without an initialized provider is a no-op
	assert.NoError(t, m.Shutdown(context.Background()))
}

func TestManagerStdoutExporter(t *testing.T) {
	m := NewManager(models.TracingConfig{
		Enabled:        true,
		UseStdout:      true,
		ServiceName:    "waconsole-test",
		ServiceVersion: "test",
		Environment:    "test",
		SampleRate:     1.0,
	}, testLogger())

	require.NoError(t, m.Initialize(context.Background()))
	require.NotNil(t, m.tracerProvider)
	assert.NoError(t, m.Shutdown(context.Background()))
}

func TestManagerNormalizesSampleRate(t *testing.T) {
	for _, rate := range []float64{-1, 0, 5} {
		m := NewManager(models.TracingConfig{
			Enabled:    true,
			UseStdout:  true,
			SampleRate: rate,
		}, testLogger())

		require.NoError(t, m.Initialize(context.Background()), "sample rate %v", rate)
		assert.NoError(t, m.Shutdown(context.Background()))
	}
}

func TestStartSpan(t *testing.T) {
	m := NewManager(models.TracingConfig{
		Enabled:    true,
		UseStdout:  true,
		SampleRate: 1.0,
	}, testLogger())
	require.NoError(t, m.Initialize(context.Background()))
	defer func() {
		require.NoError(t, m.Shutdown(context.Background()))
	}()

	ctx, span := StartSpan(context.Background(), "test_operation")
	defer span.End()

	assert.True(t, span.IsRecording())
	assert.NotEmpty(t, TraceID(ctx))
}

func TestSpanHelpersWithoutSpan(t *testing.T) {
	ctx := context.Background()

	// All helpers tolerate a context with no span in it
	AddSpanAttributes(ctx, attribute.String("key", "value"))
	RecordError(ctx, fmt.Errorf("boom"))
	RecordError(ctx, nil)
	assert.Empty(t, TraceID(ctx))
}
