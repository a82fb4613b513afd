// Package metrics provides Prometheus metrics for the lost & found backend.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal tracks inbound HTTP requests by route and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lostfound",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	// HTTPRequestDuration tracks inbound HTTP request latency
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lostfound",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "route"},
	)

	// RateLimitHits tracks requests rejected by the per-IP limiter
	RateLimitHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lostfound",
			Subsystem: "ratelimit",
			Name:      "hits_total",
			Help:      "Total number of requests rejected by rate limiting",
		},
	)

	// RankingsTotal tracks candidate ranking runs
	RankingsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lostfound",
			Subsystem: "matching",
			Name:      "rankings_total",
			Help:      "Total number of candidate ranking runs",
		},
	)

	// CandidatesScoredTotal tracks individual candidate scorings
	CandidatesScoredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lostfound",
			Subsystem: "matching",
			Name:      "candidates_scored_total",
			Help:      "Total number of candidates scored",
		},
	)

	// MatchScores tracks the distribution of combined candidate scores
	MatchScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "lostfound",
			Subsystem: "matching",
			Name:      "candidate_score",
			Help:      "Combined match score of each scored candidate",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		},
	)

	// ReportsCreatedTotal tracks filed reports by kind
	ReportsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lostfound",
			Subsystem: "reports",
			Name:      "created_total",
			Help:      "Total number of reports filed",
		},
		[]string{"kind"},
	)

	// MatchesCreatedTotal tracks recorded matches by type
	MatchesCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lostfound",
			Subsystem: "matches",
			Name:      "created_total",
			Help:      "Total number of matches recorded",
		},
		[]string{"match_type"},
	)

	// MessagesSentTotal tracks messages sent between users by type
	MessagesSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lostfound",
			Subsystem: "messages",
			Name:      "sent_total",
			Help:      "Total number of messages sent",
		},
		[]string{"message_type"},
	)
)
