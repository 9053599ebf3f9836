package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	MessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wasend_messages_total",
			Help: "Delivery attempts by final stage",
		},
		[]string{"stage"}, // sent|failed
	)

	StrategyAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wasend_strategy_attempts_total",
			Help: "Commit strategy attempts by strategy and result",
		},
		[]string{"strategy", "result"}, // click|keystroke|script , ok|error|skipped
	)
)

func MustRegister(r prometheus.Registerer) {
	r.MustRegister(
		MessagesTotal,
		StrategyAttemptsTotal,
	)
}
