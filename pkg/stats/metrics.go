package stats

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "swapd"

var (
	// SettlementsTotal counts the settlement operations by operation and
	// result status, or error kind.
	SettlementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlements_total",
			Help:      "Number of settlement operations by operation and result.",
		},
		[]string{"operation", "result"},
	)

	// SweeperTicksTotal counts the sweeper ticks by result
	// (completed, failed, skipped).
	SweeperTicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeper_ticks_total",
			Help:      "Number of expiration sweeper ticks by result.",
		},
		[]string{"result"},
	)

	// SweeperItemsTotal counts the swaps handled by the sweeper by result
	// (expired, conflict, failed).
	SweeperItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeper_items_total",
			Help:      "Number of swaps processed by the expiration sweeper.",
		},
		[]string{"result"},
	)

	SweeperLastRun = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sweeper_last_run_timestamp_seconds",
			Help:      "Unix time of the last completed sweep.",
		},
	)

	// LedgerWritesTotal counts the ledger writes by result
	// (recorded, duplicate, deferred).
	LedgerWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_writes_total",
			Help:      "Number of ledger writes by result.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		SettlementsTotal,
		SweeperTicksTotal,
		SweeperItemsTotal,
		SweeperLastRun,
		LedgerWritesTotal,
	)
}
