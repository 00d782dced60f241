// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UssdRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ussd_requests_total",
			Help: "Total number of USSD requests processed, by step",
		},
		[]string{"step"},
	)

	UssdResponses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ussd_responses_total",
			Help: "Total number of USSD responses, by kind (con/end)",
		},
		[]string{"kind"},
	)

	UssdRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "ussd_request_duration_seconds",
			Help: "Duration of USSD request processing in seconds",
		},
		[]string{"step"},
	)

	MatchesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matches_created_total",
			Help: "Total number of job-worker matches created",
		},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Total number of notification attempts, by outcome",
		},
		[]string{"status"},
	)

	JobsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jobs_created_total",
			Help: "Total number of jobs posted",
		},
	)
)
