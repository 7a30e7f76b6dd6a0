package infrastructure

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/trace"

	"tincli/internal/config"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOTelConfigFrom(t *testing.T) {
	cfg := OTelConfigFrom(config.TelemetryConfig{
		EnableMetrics:  true,
		EnableTracing:  false,
		TraceExporter:  "stdout",
		MetricExporter: "prometheus",
		SampleRatio:    0.5,
		Environment:    "test",
	})

	assert.Equal(t, ServiceName, cfg.ServiceName)
	assert.Equal(t, config.AppVersion, cfg.ServiceVersion)
	assert.Equal(t, "test", cfg.Environment)
	assert.True(t, cfg.EnableMetrics)
	assert.False(t, cfg.EnableTracing)
	assert.Equal(t, 0.5, cfg.SampleRatio)
}

func TestInitializeOTel_PrometheusMetrics(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: "test",
		Environment:    "test",
		EnableMetrics:  true,
		MetricExporter: "prometheus",
	}, quietLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	require.NotNil(t, providers.MeterProvider)
	require.NotNil(t, providers.PrometheusHTTP)
	assert.Nil(t, providers.TracerProvider)

	metrics, err := NewConsolidationMetrics(providers.Meter)
	require.NoError(t, err)
	metrics.RecordRun(context.Background(), "success", 2*time.Second)

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "consolidation_runs_total")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestInitializeOTel_Twice(t *testing.T) {
	cfg := &OTelConfig{ServiceName: ServiceName, EnableMetrics: true, MetricExporter: "prometheus"}

	first, err := InitializeOTel(cfg, quietLogger())
	require.NoError(t, err)
	defer first.Shutdown(context.Background())

	second, err := InitializeOTel(cfg, quietLogger())
	require.NoError(t, err, "each initialization uses its own registry")
	defer second.Shutdown(context.Background())
}

func TestInitializeOTel_UnsupportedExporters(t *testing.T) {
	tests := []struct {
		name string
		cfg  *OTelConfig
	}{
		{"trace", &OTelConfig{EnableTracing: true, TraceExporter: "jaeger"}},
		{"metric", &OTelConfig{EnableMetrics: true, MetricExporter: "statsd"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := InitializeOTel(tt.cfg, quietLogger())
			assert.Error(t, err)
		})
	}
}

func TestInitializeOTel_Disabled(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{ServiceName: ServiceName}, quietLogger())
	require.NoError(t, err)

	assert.Nil(t, providers.TracerProvider)
	assert.Nil(t, providers.MeterProvider)
	assert.Nil(t, providers.PrometheusHTTP)
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestConsolidationMetrics_RecordStage(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	metrics, err := NewConsolidationMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordStage(ctx, "ingest", 10*time.Millisecond, 11)
	metrics.RecordStage(ctx, "ingest", 5*time.Millisecond, 4)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	var rows int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "consolidation_rows_total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				rows += dp.Value
			}
		}
	}
	assert.Equal(t, int64(15), rows)
}

func TestConsolidationMetrics_NilSafe(t *testing.T) {
	var metrics *ConsolidationMetrics

	assert.NotPanics(t, func() {
		metrics.RecordRun(context.Background(), "failed", time.Second)
		metrics.RecordStage(context.Background(), "combine", time.Second, 1)
	})
}

func TestNewConsolidationMetrics_GlobalMeter(t *testing.T) {
	metrics, err := NewConsolidationMetrics(nil)
	require.NoError(t, err)
	assert.NotNil(t, metrics.RunsTotal)
}

func TestStartSpanAndTraceID(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "test")
	defer span.End()

	assert.NotNil(t, trace.SpanFromContext(ctx))
	assert.NotPanics(t, func() { RecordError(ctx, assert.AnError) })
	assert.NotPanics(t, func() { RecordError(ctx, nil) })
	assert.Empty(t, TraceIDFromContext(context.Background()))
}
