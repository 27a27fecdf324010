package manager

import "github.com/prometheus/client_golang/prometheus"

var (
	managerLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sumbench",
			Subsystem: "manager",
			Name:      "loads_total",
			Help:      "Model load attempts by result (ok, failed, rejected)",
		},
		[]string{"result"},
	)

	managerLoadSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "sumbench",
			Subsystem: "manager",
			Name:      "load_duration_seconds",
			Help:      "Wall-clock duration of successful model loads",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)

	managerUnloadsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sumbench",
			Subsystem: "manager",
			Name:      "unloads_total",
			Help:      "Completed model unloads",
		},
	)

	managerResidentMB = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "sumbench",
			Subsystem: "manager",
			Name:      "resident_mb",
			Help:      "Summed measured footprint of resident models, MB",
		},
	)

	managerBudgetMB = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "sumbench",
			Subsystem: "manager",
			Name:      "budget_mb",
			Help:      "Configured accelerator memory budget, MB (0 = unlimited)",
		},
	)
)

func init() {
	prometheus.MustRegister(managerLoadsTotal, managerLoadSeconds, managerUnloadsTotal,
		managerResidentMB, managerBudgetMB)
}
