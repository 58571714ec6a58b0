package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestNewOrderMetricsWithRegisterer(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewOrderMetricsWithRegisterer(reg)

	if metrics.ordersCreated == nil || metrics.statusUpdates == nil || metrics.rejected == nil {
		t.Fatal("counters should be initialized")
	}
	if metrics.lookups == nil || metrics.eventsFailed == nil || metrics.operationTimes == nil {
		t.Fatal("collectors should be initialized")
	}
}

func TestNewOrderMetrics_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := NewOrderMetricsWithRegisterer(reg)
	second := NewOrderMetricsWithRegisterer(reg)

	first.RecordOrderCreated()
	second.RecordOrderCreated()

	if got := testutil.ToFloat64(first.ordersCreated); got != 2 {
		t.Fatalf("expected shared counter value 2, got %v", got)
	}
}

func TestRecordCounters(t *testing.T) {
	metrics := NewOrderMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordOrderCreated()
	metrics.RecordStatusUpdate("shipped")
	metrics.RecordStatusUpdate("shipped")
	metrics.RecordRejected(OperationAddOrder, "duplicate")
	metrics.RecordLookup(true)
	metrics.RecordLookup(false)
	metrics.RecordLookup(false)
	metrics.RecordEventPublishFailed()

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"created", testutil.ToFloat64(metrics.ordersCreated), 1},
		{"status shipped", testutil.ToFloat64(metrics.statusUpdates.WithLabelValues("shipped")), 2},
		{"rejected duplicate", testutil.ToFloat64(metrics.rejected.WithLabelValues(OperationAddOrder, "duplicate")), 1},
		{"lookup hit", testutil.ToFloat64(metrics.lookups.WithLabelValues("hit")), 1},
		{"lookup miss", testutil.ToFloat64(metrics.lookups.WithLabelValues("miss")), 2},
		{"events failed", testutil.ToFloat64(metrics.eventsFailed), 1},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, tt.got)
		}
	}
}

func TestObserveOperation(t *testing.T) {
	metrics := NewOrderMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.ObserveOperation(OperationGetOrder, 2*time.Millisecond)
	metrics.ObserveOperation(OperationGetOrder, 3*time.Millisecond)

	observer, err := metrics.operationTimes.GetMetricWithLabelValues(OperationGetOrder)
	if err != nil {
		t.Fatalf("get histogram: %v", err)
	}

	var metric dto.Metric
	if err := observer.(prometheus.Histogram).Write(&metric); err != nil {
		t.Fatalf("write histogram: %v", err)
	}
	if got := metric.GetHistogram().GetSampleCount(); got != 2 {
		t.Fatalf("expected 2 samples, got %d", got)
	}
}

func TestNilMetricsAreNoop(t *testing.T) {
	var metrics *OrderMetrics

	metrics.RecordOrderCreated()
	metrics.RecordStatusUpdate("pending")
	metrics.RecordRejected(OperationAddOrder, "validation")
	metrics.RecordLookup(true)
	metrics.RecordEventPublishFailed()
	metrics.ObserveOperation(OperationListOrders, time.Millisecond)
}
