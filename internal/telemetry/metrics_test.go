package telemetry

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestDecisionMetrics_Record(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(ctx) }()

	m, err := NewDecisionMetrics(mp)
	if err != nil {
		t.Fatalf("NewDecisionMetrics: %v", err)
	}
	m.Record(ctx, "edit-business", true, "")
	m.Record(ctx, "edit-business", true, "")
	m.Record(ctx, "delete-business", false, "requires owner")

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(rm.ScopeMetrics) != 1 || len(rm.ScopeMetrics[0].Metrics) != 1 {
		t.Fatalf("unexpected metrics: %+v", rm.ScopeMetrics)
	}
	got := rm.ScopeMetrics[0].Metrics[0]
	if got.Name != "zeno.access.decisions" {
		t.Errorf("name = %q, want zeno.access.decisions", got.Name)
	}
	sum, ok := got.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("data = %T, want Sum[int64]", got.Data)
	}
	counts := map[string]int64{}
	for _, dp := range sum.DataPoints {
		action, _ := dp.Attributes.Value(attribute.Key("action"))
		counts[action.AsString()] += dp.Value
	}
	if counts["edit-business"] != 2 || counts["delete-business"] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestDecisionMetrics_NilIsNoop(t *testing.T) {
	var m *DecisionMetrics
	m.Record(context.Background(), "edit-business", true, "")
}
