// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RLRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limiter_requests_total",
			Help: "Total requests seen by the rate limiter",
		},
		[]string{"endpoint"},
	)
	RLBlocked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limiter_blocked_total",
			Help: "Total requests blocked by the rate limiter",
		},
		[]string{"endpoint"},
	)

	LedgerEntries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_entries_total",
			Help: "Committed ledger entries by transaction type and currency",
		},
		[]string{"type", "currency"},
	)
	// CurrencyFlow splits committed amounts by direction: "in" for credits, "out" for debits.
	CurrencyFlow = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "currency_flow_total",
			Help: "Committed currency moved, by currency and direction",
		},
		[]string{"currency", "direction"},
	)

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route, method and status",
		},
		[]string{"route", "method", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	WSConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_connections",
			Help: "Open group chat websocket connections",
		},
	)
)

func init() {
	prometheus.MustRegister(RLRequests, RLBlocked, LedgerEntries, CurrencyFlow, HTTPRequests, HTTPDuration, WSConnections)
}

// ObserveLedger records one committed ledger entry.
func ObserveLedger(txType, currency string, amount int64) {
	LedgerEntries.WithLabelValues(txType, currency).Inc()
	switch {
	case amount > 0:
		CurrencyFlow.WithLabelValues(currency, "in").Add(float64(amount))
	case amount < 0:
		CurrencyFlow.WithLabelValues(currency, "out").Add(float64(-amount))
	}
}
