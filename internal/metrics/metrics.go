// Package metrics defines the Prometheus collectors exported by the server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "splitledger"

// Metrics groups every collector the service updates.
type Metrics struct {
	RPCRequests *prometheus.CounterVec
	RPCDuration *prometheus.HistogramVec

	// PlanTransfers observes the number of transfers in each settlement plan.
	PlanTransfers prometheus.Histogram

	// UnmatchedBalances counts members left with unmatched balance by the
	// planner, which only happens when stored expenses break the zero-sum invariant.
	UnmatchedBalances prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RPCRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "RPC calls by procedure and result code.",
		}, []string{"procedure", "code"}),
		RPCDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC latency by procedure.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		PlanTransfers: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "settlement_plan_transfers",
			Help:      "Transfers per computed settlement plan.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		}),
		UnmatchedBalances: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlement_unmatched_balances_total",
			Help:      "Members left with unmatched balance after planning.",
		}),
	}

	reg.MustRegister(m.RPCRequests, m.RPCDuration, m.PlanTransfers, m.UnmatchedBalances)
	return m
}

// ObservePlan records the outcome of one settlement plan.
func (m *Metrics) ObservePlan(transfers, unmatched int) {
	if m == nil {
		return
	}
	m.PlanTransfers.Observe(float64(transfers))
	m.UnmatchedBalances.Add(float64(unmatched))
}
