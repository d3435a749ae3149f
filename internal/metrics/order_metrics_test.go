package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestOrderMetrics_Counters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newOrderMetricsWithRegisterer(registry)

	m.RecordOrderCreated()
	m.RecordOrderCreated()
	m.RecordCreateFailure("unknown_product")
	m.RecordStatusChange("delivered")
	m.RecordStatusNoop()
	m.RecordOrderNotFound()
	m.RecordEventPublished()
	m.RecordEventPublishError()
	m.RecordCreateDuration(10 * time.Millisecond)
	m.RecordValidationDuration(5 * time.Millisecond)

	if got := testutil.ToFloat64(m.ordersCreated); got != 2 {
		t.Fatalf("orders_created_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.createFailures.WithLabelValues("unknown_product")); got != 1 {
		t.Fatalf("orders_create_failures_total{unknown_product} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.statusChanges.WithLabelValues("delivered")); got != 1 {
		t.Fatalf("orders_status_changes_total{delivered} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.statusNoops); got != 1 {
		t.Fatalf("orders_status_noops_total = %v, want 1", got)
	}
}

func TestOrderMetrics_DoubleRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()

	first := newOrderMetricsWithRegisterer(registry)
	// Повторная регистрация должна вернуть уже существующие коллекторы, а не паниковать.
	second := newOrderMetricsWithRegisterer(registry)

	first.RecordOrderCreated()
	second.RecordOrderCreated()

	if got := testutil.ToFloat64(first.ordersCreated); got != 2 {
		t.Fatalf("shared counter = %v, want 2", got)
	}
}

func TestOrderMetrics_NilReceiverSafe(t *testing.T) {
	var m *OrderMetrics

	// Все методы записи должны быть no-op на nil, чтобы метрики были опциональной зависимостью.
	m.RecordOrderCreated()
	m.RecordCreateFailure("x")
	m.RecordStatusChange("pending")
	m.RecordStatusNoop()
	m.RecordOrderNotFound()
	m.RecordEventPublished()
	m.RecordEventPublishError()
	m.RecordCreateDuration(time.Millisecond)
	m.RecordValidationDuration(time.Millisecond)
}
