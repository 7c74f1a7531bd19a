package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScanTicks counts scheduler ticks by the state they ran in.
	ScanTicks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "orb",
		Name:      "scheduler_ticks_total",
		Help:      "Scheduler ticks, labeled by scheduler state.",
	}, []string{"state"})

	// RangesComputed counts opening ranges successfully computed.
	RangesComputed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "orb",
		Name:      "ranges_computed_total",
		Help:      "Opening ranges computed across all symbols and days.",
	})

	// SignalsFired counts dispatched breakout signals.
	SignalsFired = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "orb",
		Name:      "signals_fired_total",
		Help:      "Breakout signals fired, labeled by symbol and direction.",
	}, []string{"symbol", "direction"})

	// NotifyFailures counts per-sink notification delivery failures.
	NotifyFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "orb",
		Name:      "notify_failures_total",
		Help:      "Notification sink failures, labeled by sink.",
	}, []string{"sink"})

	// DataFetchFailures counts market-data fetches that errored or came back empty.
	DataFetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "orb",
		Name:      "data_fetch_failures_total",
		Help:      "Market data fetches treated as no-data-this-tick, labeled by symbol.",
	}, []string{"symbol"})
)
