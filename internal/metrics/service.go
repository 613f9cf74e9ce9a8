package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		MatchesCommitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "babyfoot_matches_committed_total",
			Help: "The total number of matches committed to the ledger.",
		}),
		MatchCommitFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "babyfoot_match_commit_failures_total",
			Help: "The total number of match commits rolled back because of a store failure.",
		}),
		CommitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "babyfoot_match_commit_duration_seconds",
			Help:    "The duration of the match commit transaction.",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		MatchesRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "babyfoot_matches_removed_total",
			Help: "The total number of matches removed from the ledger.",
		}),
		RatingResets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "babyfoot_rating_resets_total",
			Help: "The total number of full rating resets.",
		}),
		EventsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "babyfoot_events_processed_total",
			Help: "The total number of ledger events handled, by event type.",
		}, []string{"event_type"}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "babyfoot_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "babyfoot_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "babyfoot_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.MatchesCommitted,
		s.MatchCommitFailures,
		s.CommitDuration,
		s.MatchesRemoved,
		s.RatingResets,
		s.EventsProcessed,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncMatchesCommitted() {
	s.MatchesCommitted.Inc()
}

func (s *Service) IncMatchCommitFailures() {
	s.MatchCommitFailures.Inc()
}

func (s *Service) ObserveCommitDuration(duration float64) {
	s.CommitDuration.Observe(duration)
}

func (s *Service) IncMatchesRemoved() {
	s.MatchesRemoved.Inc()
}

func (s *Service) IncRatingResets() {
	s.RatingResets.Inc()
}

func (s *Service) IncEventsProcessed(eventType string) {
	s.EventsProcessed.WithLabelValues(eventType).Inc()
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
