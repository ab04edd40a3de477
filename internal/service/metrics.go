package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	policyTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "healthsure_policy_transitions_total",
		Help: "Policy status changes by resulting status.",
	}, []string{"status"})

	dashboardCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "healthsure_dashboard_cache_lookups_total",
		Help: "Dashboard cache lookups by result (hit, miss, error).",
	}, []string{"result"})
)

// RecordPolicyTransition counts n policies moving into status.
func RecordPolicyTransition(status string, n int) {
	if n > 0 {
		policyTransitions.WithLabelValues(status).Add(float64(n))
	}
}
