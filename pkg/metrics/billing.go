package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DeductionCounter counts billable deduction attempts partitioned by target
// ledger, feature type and outcome (ok | quota_exceeded | insufficient | error).
var DeductionCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "billing",
	Name:      "deductions_total",
	Help:      "Billable deduction attempts by target kind, feature type and outcome.",
}, []string{"target", "feature", "outcome"})

// OrgOverdraftCounter counts fail-open deductions that left an organization
// pool overdrawn; it feeds the operational alert for top-ups.
var OrgOverdraftCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "billing",
	Name:      "org_overdraft_total",
	Help:      "Organization point deductions that exceeded the pool balance.",
}, []string{"organization_id"})

// DeductionDuration observes end-to-end deduction latency in milliseconds.
var DeductionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Subsystem: "billing",
	Name:      "bp_dur",
	Help:      "Deduction process latency in milliseconds.",
	Buckets:   HistogramBuckets,
}, []string{"target"})
