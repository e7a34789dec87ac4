package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "papertrader"

// SignalsTotal counts signals by outcome: accepted, duplicate, rejected, paused.
var SignalsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "signals",
		Name:      "total",
		Help:      "Signals received, by outcome",
	},
	[]string{"outcome"},
)

// TradesTotal counts ledger records by kind and reason.
var TradesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ledger",
		Name:      "trades_total",
		Help:      "Trade records appended to the ledger",
	},
	[]string{"kind", "reason"},
)

var PersistenceFailures = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ledger",
		Name:      "persistence_failures_total",
		Help:      "Snapshot saves that failed and were left for retry",
	},
)

var PersistenceLatency = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "ledger",
		Name:      "persistence_latency_ms",
		Help:      "Time to save one snapshot in milliseconds",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 25, 50, 100, 250},
	},
)

var VirtualBalance = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "account",
		Name:      "virtual_balance_usd",
		Help:      "Free virtual balance",
	},
)

var OpenPositions = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "account",
		Name:      "open_positions",
		Help:      "Number of open positions",
	},
)

var ActiveMonitors = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "monitor",
		Name:      "active",
		Help:      "Running position monitors",
	},
)

var PriceFailures = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "monitor",
		Name:      "price_failures_total",
		Help:      "Price oracle failures observed by monitors",
	},
)

var StopRaises = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "monitor",
		Name:      "stop_raises_total",
		Help:      "Trailing stop ratchets",
	},
)
