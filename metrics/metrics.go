// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ward_ballot"

// Ballot outcomes
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

var (
	BallotsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ballots_total",
		Help:      "Ballot submissions by outcome.",
	}, []string{"outcome"})

	VotesRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "votes_recorded_total",
		Help:      "Vote rows committed to the ledger.",
	})

	VoteItemFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "vote_item_failures_total",
		Help:      "Individual selections that were not recorded.",
	})

	AuditChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_checks_total",
		Help:      "Vote audit checks by check and result.",
	}, []string{"check", "result"})

	DecryptFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "decrypt_failures_total",
		Help:      "Encrypted candidate references that failed to decrypt or match.",
	}, []string{"path"})

	NotificationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_failures_total",
		Help:      "Vote confirmations that could not be delivered.",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Request latency by route pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "pattern"})
)

// Handler serves the default registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.Handler()
}

// AuditResult maps a check outcome onto the result label
func AuditResult(valid bool) string {
	if valid {
		return "valid"
	}
	return "invalid"
}
