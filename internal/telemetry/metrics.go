package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "zeno-access"

// DecisionMetrics counts business action decisions by action, outcome and denial reason.
// A nil *DecisionMetrics is valid and records nothing.
type DecisionMetrics struct {
	decisions metric.Int64Counter
}

// NewDecisionMetrics registers the zeno.access.decisions counter on mp (the global provider when nil).
func NewDecisionMetrics(mp metric.MeterProvider) (*DecisionMetrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	counter, err := mp.Meter(meterName).Int64Counter(
		"zeno.access.decisions",
		metric.WithDescription("Business action authorization decisions."),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		return nil, err
	}
	return &DecisionMetrics{decisions: counter}, nil
}

// Record adds one decision. reason is empty for allowed decisions.
func (m *DecisionMetrics) Record(ctx context.Context, action string, allowed bool, reason string) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("action", action),
		attribute.Bool("allowed", allowed),
	}
	if reason != "" {
		attrs = append(attrs, attribute.String("reason", reason))
	}
	m.decisions.Add(ctx, 1, metric.WithAttributes(attrs...))
}
