package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Операции трекера, используемые как значение label "operation".
const (
	OperationAddOrder           = "add_order"
	OperationGetOrder           = "get_order"
	OperationUpdateOrderStatus  = "update_order_status"
	OperationListOrders         = "list_orders"
	OperationListOrdersByStatus = "list_orders_by_status"
)

// OrderMetrics содержит метрики трекера заказов.
type OrderMetrics struct {
	ordersCreated  prometheus.Counter
	statusUpdates  *prometheus.CounterVec
	rejected       *prometheus.CounterVec
	lookups        *prometheus.CounterVec
	eventsFailed   prometheus.Counter
	operationTimes *prometheus.HistogramVec
}

// NewOrderMetrics регистрирует метрики в prometheus.DefaultRegisterer.
func NewOrderMetrics() *OrderMetrics {
	return NewOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewOrderMetricsWithRegisterer регистрирует метрики в переданном реестре.
// Повторная регистрация возвращает уже существующие коллекторы.
func NewOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "ordertracker_orders_created_total",
			Help: "Total number of orders created",
		}),
		statusUpdates: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "ordertracker_status_updates_total",
			Help: "Total number of order status updates by target status",
		}, []string{"status"}),
		rejected: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "ordertracker_operations_rejected_total",
			Help: "Total number of rejected operations by reason",
		}, []string{"operation", "reason"}),
		lookups: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "ordertracker_order_lookups_total",
			Help: "Total number of order lookups by result",
		}, []string{"result"}),
		eventsFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "ordertracker_events_publish_failed_total",
			Help: "Total number of order events that failed to publish",
		}),
		operationTimes: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "ordertracker_operation_duration_seconds",
			Help:    "Duration of tracker operations in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}, []string{"operation"}),
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

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// Все Record-методы безопасны для nil-получателя: трекер без метрик просто их не пишет.

// RecordOrderCreated увеличивает счётчик созданных заказов.
func (m *OrderMetrics) RecordOrderCreated() {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
}

// RecordStatusUpdate учитывает смену статуса на status.
func (m *OrderMetrics) RecordStatusUpdate(status string) {
	if m == nil {
		return
	}
	m.statusUpdates.WithLabelValues(status).Inc()
}

// RecordRejected учитывает операцию, отклонённую по причине reason
// (validation, invalid_status, duplicate, not_found, storage).
func (m *OrderMetrics) RecordRejected(operation, reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(operation, reason).Inc()
}

// RecordLookup учитывает поиск заказа: found=false означает промах.
func (m *OrderMetrics) RecordLookup(found bool) {
	if m == nil {
		return
	}
	result := "hit"
	if !found {
		result = "miss"
	}
	m.lookups.WithLabelValues(result).Inc()
}

// RecordEventPublishFailed учитывает событие, которое не удалось опубликовать.
func (m *OrderMetrics) RecordEventPublishFailed() {
	if m == nil {
		return
	}
	m.eventsFailed.Inc()
}

// ObserveOperation записывает длительность операции.
func (m *OrderMetrics) ObserveOperation(operation string, duration time.Duration) {
	if m == nil {
		return
	}
	m.operationTimes.WithLabelValues(operation).Observe(duration.Seconds())
}
