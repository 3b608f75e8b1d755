package api

import "github.com/prometheus/client_golang/prometheus"

var (
	requestCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "axiom_vault",
		Subsystem: "api",
		Name:      "request_total",
		Help:      "The total number of api requests",
	}, []string{"route", "code"})

	rateLimitedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "axiom_vault",
		Subsystem: "api",
		Name:      "rate_limited_total",
		Help:      "The total number of api requests rejected by the rate limiter",
	})
)

func init() {
	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(rateLimitedCounter)
}
