// Package metrics exposes process-wide counters and gauges over
// github.com/prometheus/client_golang, the pattern this corpus's
// long-running services use for a /metrics endpoint the teacher itself
// never built.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fenrir/internal/matching"
)

var (
	ordersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fenrir_orders_total",
		Help: "Orders admitted to the matching core, by outcome.",
	}, []string{"outcome"})

	tradesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fenrir_trades_total",
		Help: "Trades executed by the matching core.",
	})

	bookDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fenrir_book_depth",
		Help: "Resting order count per symbol and side.",
	}, []string{"symbol", "side"})

	queueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fenrir_queue_depth",
		Help: "Buffered command count per shard inbox.",
	}, []string{"shard"})
)

// Observe updates counters from a published matching.Event. It is meant
// to be composed with a production EventSink: call it alongside, never
// instead of, the sink's own Publish.
func Observe(e matching.Event) {
	switch ev := e.(type) {
	case matching.Trade:
		tradesTotal.Inc()
	case matching.OrderAdded:
		ordersTotal.WithLabelValues("added").Inc()
	case matching.OrderRejected:
		ordersTotal.WithLabelValues("rejected").Inc()
	case matching.OrderDeleted:
		ordersTotal.WithLabelValues(ev.Reason.String()).Inc()
	}
}

// SetBookDepth records the resting order counts for a symbol's book,
// called by a shard worker after processing each command.
func SetBookDepth(symbol string, bids, asks int) {
	bookDepth.WithLabelValues(symbol, "bid").Set(float64(bids))
	bookDepth.WithLabelValues(symbol, "ask").Set(float64(asks))
}

// SetQueueDepth records a shard's current inbox backlog.
func SetQueueDepth(shard string, depth int) {
	queueDepth.WithLabelValues(shard).Set(float64(depth))
}

// Handler returns the HTTP handler promhttp serves /metrics with.
func Handler() http.Handler {
	return promhttp.Handler()
}
