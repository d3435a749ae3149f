package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics содержит метрики для операций с заказами.
type OrderMetrics struct {
	// Счётчики операций
	ordersCreated    prometheus.Counter
	createFailures   *prometheus.CounterVec
	statusChanges    *prometheus.CounterVec
	statusNoops      prometheus.Counter
	ordersNotFound   prometheus.Counter
	eventsPublished  prometheus.Counter
	eventPublishErrs prometheus.Counter

	// Гистограммы времени выполнения
	createDuration     prometheus.Histogram
	validationDuration prometheus.Histogram
}

// NewOrderMetrics создаёт новый экземпляр метрик заказов.
func NewOrderMetrics() *OrderMetrics {
	return newOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Total number of orders successfully created",
		}),
		createFailures: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "orders_create_failures_total",
			Help: "Total number of failed order creations grouped by reason",
		}, []string{"reason"}),
		statusChanges: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "orders_status_changes_total",
			Help: "Total number of order status changes grouped by target status",
		}, []string{"status"}),
		statusNoops: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orders_status_noops_total",
			Help: "Total number of idempotent status change no-ops",
		}),
		ordersNotFound: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orders_not_found_total",
			Help: "Total number of lookups for nonexistent orders",
		}),
		eventsPublished: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orders_events_published_total",
			Help: "Total number of order lifecycle events published",
		}),
		eventPublishErrs: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orders_event_publish_errors_total",
			Help: "Total number of failed order event publications",
		}),
		createDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "orders_create_duration_seconds",
			Help:    "Duration of the order creation workflow in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		validationDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "orders_product_validation_duration_seconds",
			Help:    "Duration of remote product validation calls in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderCreated увеличивает счётчик созданных заказов.
func (m *OrderMetrics) RecordOrderCreated() {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
}

// RecordCreateFailure увеличивает счётчик неудачных созданий по причине.
func (m *OrderMetrics) RecordCreateFailure(reason string) {
	if m == nil {
		return
	}
	m.createFailures.WithLabelValues(reason).Inc()
}

// RecordStatusChange увеличивает счётчик смен статуса.
func (m *OrderMetrics) RecordStatusChange(status string) {
	if m == nil {
		return
	}
	m.statusChanges.WithLabelValues(status).Inc()
}

// RecordStatusNoop увеличивает счётчик идемпотентных no-op смен статуса.
func (m *OrderMetrics) RecordStatusNoop() {
	if m == nil {
		return
	}
	m.statusNoops.Inc()
}

// RecordOrderNotFound увеличивает счётчик обращений к несуществующим заказам.
func (m *OrderMetrics) RecordOrderNotFound() {
	if m == nil {
		return
	}
	m.ordersNotFound.Inc()
}

// RecordEventPublished увеличивает счётчик опубликованных событий.
func (m *OrderMetrics) RecordEventPublished() {
	if m == nil {
		return
	}
	m.eventsPublished.Inc()
}

// RecordEventPublishError увеличивает счётчик ошибок публикации событий.
func (m *OrderMetrics) RecordEventPublishError() {
	if m == nil {
		return
	}
	m.eventPublishErrs.Inc()
}

// RecordCreateDuration записывает длительность создания заказа.
func (m *OrderMetrics) RecordCreateDuration(duration time.Duration) {
	if m == nil {
		return
	}
	m.createDuration.Observe(duration.Seconds())
}

// RecordValidationDuration записывает длительность обращения к каталогу.
func (m *OrderMetrics) RecordValidationDuration(duration time.Duration) {
	if m == nil {
		return
	}
	m.validationDuration.Observe(duration.Seconds())
}
