package keeper

import "github.com/prometheus/client_golang/prometheus"

var (
	epochGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "axiom_vault",
		Subsystem: "keeper",
		Name:      "current_epoch",
		Help:      "the epoch seen by the last keeper round",
	})

	lockedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "axiom_vault",
		Subsystem: "keeper",
		Name:      "total_locked",
		Help:      "principal committed to the lock venue, in whole units",
	})

	unlockedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "axiom_vault",
		Subsystem: "keeper",
		Name:      "unlocked_unspent",
		Help:      "matured principal reserved for the withdrawal queue, in whole units",
	})

	navGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "axiom_vault",
		Subsystem: "keeper",
		Name:      "nav",
		Help:      "net asset value of the vault, in whole units",
	})

	priceGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "axiom_vault",
		Subsystem: "keeper",
		Name:      "share_price",
		Help:      "base asset per share",
	})

	queueDepthGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "axiom_vault",
		Subsystem: "keeper",
		Name:      "queue_depth",
		Help:      "unsettled withdrawal queue entries",
	})

	haltedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "axiom_vault",
		Subsystem: "keeper",
		Name:      "halted",
		Help:      "1 while the vault is halted",
	})

	cycleCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "axiom_vault",
		Subsystem: "keeper",
		Name:      "relock_cycle_total",
		Help:      "The total number of relock cycles run by the keeper",
	})

	settledCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "axiom_vault",
		Subsystem: "keeper",
		Name:      "settled_entry_total",
		Help:      "The total number of queue entries settled by the keeper",
	})

	roundFailureCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "axiom_vault",
		Subsystem: "keeper",
		Name:      "round_failure_total",
		Help:      "The total number of keeper rounds that gave up",
	})
)

func init() {
	prometheus.MustRegister(epochGauge)
	prometheus.MustRegister(lockedGauge)
	prometheus.MustRegister(unlockedGauge)
	prometheus.MustRegister(navGauge)
	prometheus.MustRegister(priceGauge)
	prometheus.MustRegister(queueDepthGauge)
	prometheus.MustRegister(haltedGauge)
	prometheus.MustRegister(cycleCounter)
	prometheus.MustRegister(settledCounter)
	prometheus.MustRegister(roundFailureCounter)
}
