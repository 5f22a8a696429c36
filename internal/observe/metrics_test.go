package observe

import (
	"context"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMetrics returns a Metrics instance backed by a ManualReader for
// programmatic metric inspection.
func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

// collect gathers all metric data from the reader.
func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

// findMetric searches for a metric by name across all scope metrics.
func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestNewMetricsCreatesWithoutError(t *testing.T) {
	m, _ := newTestMetrics(t)
	if m == nil {
		t.Fatal("NewMetrics returned nil")
	}
}

func TestRecordAttemptCounts(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordAttempt(ctx, "formalize", 1, "rejected")
	m.RecordAttempt(ctx, "formalize", 2, "accepted")

	rm := collect(t, reader)
	met := findMetric(rm, "protokol.generation.attempts")
	if met == nil {
		t.Fatal("generation attempts metric not found")
	}
	sum, ok := met.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("metric is %T, want Sum[int64]", met.Data)
	}
	if len(sum.DataPoints) != 2 {
		t.Errorf("got %d datapoints, want 2 (distinct attribute sets)", len(sum.DataPoints))
	}
}

func TestRecordViolation(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordViolation(ctx, "residual_filler_phrase", "rejecting")
	m.RecordViolation(ctx, "residual_filler_phrase", "rejecting")
	m.RecordViolation(ctx, "date_not_preserved", "advisory")

	rm := collect(t, reader)
	met := findMetric(rm, "protokol.gate.violations")
	if met == nil {
		t.Fatal("gate violations metric not found")
	}
	sum, ok := met.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("metric is %T, want Sum[int64]", met.Data)
	}

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	if total != 3 {
		t.Errorf("total violations = %d, want 3", total)
	}
}

func TestRecordProviderError(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordProviderError(ctx, "formalize", "setup")
	m.RecordProviderError(ctx, "extract_actions", "transport")

	rm := collect(t, reader)
	met := findMetric(rm, "protokol.provider.errors")
	if met == nil {
		t.Fatal("provider errors metric not found")
	}
	sum, ok := met.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("metric is %T, want Sum[int64]", met.Data)
	}
	if len(sum.DataPoints) != 2 {
		t.Errorf("got %d datapoints, want 2 (distinct attribute sets)", len(sum.DataPoints))
	}
}

func TestGenerationDurationHistogram(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.GenerationDuration.Record(ctx, 2.5)

	rm := collect(t, reader)
	met := findMetric(rm, "protokol.generation.duration")
	if met == nil {
		t.Fatal("generation duration metric not found")
	}
	hist, ok := met.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("metric is %T, want Histogram[float64]", met.Data)
	}
	if len(hist.DataPoints) == 0 || hist.DataPoints[0].Count != 1 {
		t.Errorf("histogram datapoints = %+v", hist.DataPoints)
	}
}
