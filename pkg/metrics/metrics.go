package metrics

import (
	"strings"
	"supplyStore/domain"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	OrdersPlaced = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Total number of orders committed",
	})

	// Failures of order mutations by error kind
	OrderFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_failures_total",
		Help: "Order placement and update failures by error kind",
	}, []string{"kind"})

	StockBatchUpdates = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_batch_updates_total",
		Help: "Supplier stock batch updates by outcome",
	}, []string{"outcome"})

	PointTransfers = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "point_transfers_total",
		Help: "Point transfers by outcome",
	}, []string{"outcome"})

	PointTransferAmount = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "point_transfer_amount_total",
		Help: "Sum of points moved by committed transfers",
	})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Latency of HTTP handlers",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

var once sync.Once

func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			OrdersPlaced,
			OrderFailures,
			StockBatchUpdates,
			PointTransfers,
			PointTransferAmount,
			HTTPRequestDuration,
		)
	})
}

// Outcome is the label recorded for err: "success", the lower-cased error
// kind, or "error" for untyped failures.
func Outcome(err error) string {
	if err == nil {
		return "success"
	}
	if kind := domain.KindOf(err); kind != "" {
		return strings.ToLower(string(kind))
	}
	return "error"
}
