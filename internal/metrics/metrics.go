package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	VotesCast = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "covervote",
			Subsystem: "ledger",
			Name:      "votes_cast_total",
			Help:      "Accepted votes by option",
		},
		[]string{"option"},
	)

	VotesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "covervote",
			Subsystem: "ledger",
			Name:      "votes_rejected_total",
			Help:      "Rejected vote attempts by reason",
		},
		[]string{"reason"},
	)

	LedgerSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "covervote",
			Subsystem: "ledger",
			Name:      "votes",
			Help:      "Number of votes currently held by the ledger",
		},
	)

	RosterSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "covervote",
			Subsystem: "roster",
			Name:      "voters",
			Help:      "Number of eligible voters loaded from the roster",
		},
	)

	MirrorSync = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "covervote",
			Subsystem: "mirror",
			Name:      "appends_total",
			Help:      "Mirror append attempts by backend and result",
		},
		[]string{"backend", "result"},
	)

	MirrorSyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "covervote",
			Subsystem: "mirror",
			Name:      "append_duration_seconds",
			Help:      "Latency of mirror appends",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"backend"},
	)

	LiveSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "covervote",
			Subsystem: "live",
			Name:      "subscribers",
			Help:      "Connected live observers",
		},
	)

	LiveDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "covervote",
			Subsystem: "live",
			Name:      "dropped_events_total",
			Help:      "Events discarded because an observer fell behind",
		},
	)
)

const (
	ResultOK      = "ok"
	ResultFailed  = "failed"
	ResultSkipped = "skipped"
)

func RecordAppend(backend, result string, seconds float64) {
	MirrorSync.WithLabelValues(backend, result).Inc()
	if result != ResultSkipped {
		MirrorSyncDuration.WithLabelValues(backend).Observe(seconds)
	}
}
