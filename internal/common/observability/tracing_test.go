package observability

import (
	"context"
	"testing"

	"site-composer/internal/common/config"
	"site-composer/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), config.AppConfig{Name: "site-composer"}, config.TracingConfig{}, logger.NewTestLogger(t))
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracing_Stdout(t *testing.T) {
	shutdown, err := InitTracing(context.Background(),
		config.AppConfig{Name: "site-composer", Version: "test"},
		config.TracingConfig{Enabled: true, Exporter: "stdout", SampleRatio: 0},
		logger.NewTestLogger(t),
	)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestBuildTraceExporter(t *testing.T) {
	_, err := buildTraceExporter(context.Background(), config.TracingConfig{Exporter: "otlp"})
	assert.ErrorContains(t, err, "endpoint")

	_, err = buildTraceExporter(context.Background(), config.TracingConfig{Exporter: "zipkin"})
	assert.ErrorContains(t, err, "unknown exporter")

	exp, err := buildTraceExporter(context.Background(), config.TracingConfig{Exporter: "otlp", Endpoint: "localhost:4318", Insecure: true})
	require.NoError(t, err)
	assert.NoError(t, exp.Shutdown(context.Background()))
}
