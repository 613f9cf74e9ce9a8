package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	MatchesCommitted    prometheus.Counter
	MatchCommitFailures prometheus.Counter
	CommitDuration      prometheus.Histogram
	MatchesRemoved      prometheus.Counter
	RatingResets        prometheus.Counter
	EventsProcessed     *prometheus.CounterVec
	SlackNotifSent      prometheus.Counter
	SlackNotifFailed    prometheus.Counter
	StartupTimeSeconds  prometheus.Gauge
}
