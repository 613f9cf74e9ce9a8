package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncMatchesCommitted()
	IncMatchCommitFailures()
	ObserveCommitDuration(duration float64)
	IncMatchesRemoved()
	IncRatingResets()
	IncEventsProcessed(eventType string)
	IncSlackNotifSent()
	IncSlackNotifFailed()
	SetStartupTime(duration float64)
}
