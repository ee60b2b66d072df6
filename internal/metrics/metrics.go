// Package metrics exposes the engine's operational counters as
// Prometheus collectors. The serve command exposes them at /metrics;
// the simulator updates the top-of-book gauges in-process only.
// Grounded on the singleton-collector pattern used elsewhere in this
// stack for exchange metrics, scaled down to a single symbol.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	collector *Collector
	once      sync.Once
)

// Collector holds every metric fenrir publishes about the book and its
// event processing.
type Collector struct {
	EventLatency *prometheus.HistogramVec
	TradesTotal  prometheus.Counter
	TradeVolume  prometheus.Counter
	OrdersTotal  *prometheus.CounterVec
	BestBid      prometheus.Gauge
	BestAsk      prometheus.Gauge
	BidDepth     prometheus.Gauge
	AskDepth     prometheus.Gauge
}

// Collect returns the process-wide singleton Collector, registering its
// metrics with the default registry on first use.
func Collect() *Collector {
	once.Do(func() {
		collector = newCollector()
	})
	return collector
}

func newCollector() *Collector {
	c := &Collector{
		EventLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fenrir",
			Subsystem: "engine",
			Name:      "event_latency_ns",
			Help:      "Per-event (add/cancel/replace) processing latency in nanoseconds.",
			Buckets:   prometheus.ExponentialBuckets(100, 2, 16),
		}, []string{"op"}),
		TradesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fenrir",
			Subsystem: "engine",
			Name:      "trades_total",
			Help:      "Total number of trades emitted by the matching engine.",
		}),
		TradeVolume: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fenrir",
			Subsystem: "engine",
			Name:      "trade_volume_total",
			Help:      "Total traded quantity across all trades.",
		}),
		OrdersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fenrir",
			Subsystem: "engine",
			Name:      "orders_total",
			Help:      "Total number of order events handled, by kind.",
		}, []string{"kind"}),
		BestBid: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fenrir",
			Subsystem: "book",
			Name:      "best_bid_ticks",
			Help:      "Current best bid price, in ticks.",
		}),
		BestAsk: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fenrir",
			Subsystem: "book",
			Name:      "best_ask_ticks",
			Help:      "Current best ask price, in ticks.",
		}),
		BidDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fenrir",
			Subsystem: "book",
			Name:      "bid_depth_at_best",
			Help:      "Resting quantity at the current best bid.",
		}),
		AskDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fenrir",
			Subsystem: "book",
			Name:      "ask_depth_at_best",
			Help:      "Resting quantity at the current best ask.",
		}),
	}

	prometheus.MustRegister(
		c.EventLatency,
		c.TradesTotal,
		c.TradeVolume,
		c.OrdersTotal,
		c.BestBid,
		c.BestAsk,
		c.BidDepth,
		c.AskDepth,
	)
	return c
}

// Handler returns the HTTP handler that serves the default registry at
// /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveTop records a fresh top-of-book reading. bestBid/bestAsk are
// passed as float64 ticks, with 0 standing for an empty side.
func (c *Collector) ObserveTop(bestBid, bestAsk float64, bidDepth, askDepth uint64) {
	c.BestBid.Set(bestBid)
	c.BestAsk.Set(bestAsk)
	c.BidDepth.Set(float64(bidDepth))
	c.AskDepth.Set(float64(askDepth))
}
