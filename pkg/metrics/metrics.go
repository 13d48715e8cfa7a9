// Package metrics exposes Prometheus instrumentation for the identify path and
// its upstream calls.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mnemosyne"

// Identify outcomes.
const (
	OutcomeOK           = "ok"
	OutcomeUpstream     = "upstream_error"
	OutcomeMalformed    = "malformed_record"
	OutcomeNoCandidates = "no_candidates"
	OutcomeVerification = "verification_failed"
	OutcomeError        = "error"
)

var (
	identifyTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "identify_requests_total",
			Help:      "Identify requests by outcome.",
		},
		[]string{"outcome"},
	)

	upstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Latency of calls to the memory table and blob store.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "op", "result"},
	)

	announcementsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "announcements_dropped_total",
			Help:      "Speech announcements dropped because the queue was full.",
		},
	)

	eventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      "Identification events dropped because the publish queue was full.",
		},
	)
)

// ObserveIdentify counts one identify request with the given outcome.
func ObserveIdentify(outcome string) {
	identifyTotal.WithLabelValues(outcome).Inc()
}

// ObserveUpstream records the latency of one upstream call started at start.
func ObserveUpstream(service, op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	upstreamDuration.WithLabelValues(service, op, result).Observe(time.Since(start).Seconds())
}

// AnnouncementDropped counts one dropped speech announcement.
func AnnouncementDropped() {
	announcementsDropped.Inc()
}

// EventDropped counts one identification event that never reached the publisher.
func EventDropped() {
	eventsDropped.Inc()
}
