package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                  sync.Mutex
	matchesCommitted    int
	matchCommitFailures int
	commitDurations     []float64
	matchesRemoved      int
	ratingResets        int
	eventsProcessed     map[string]int
	slackNotifSent      int
	slackNotifFailed    int
	startupTime         float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		commitDurations: make([]float64, 0),
		eventsProcessed: make(map[string]int),
	}
}

func (m *Mock) IncMatchesCommitted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesCommitted++
}

func (m *Mock) IncMatchCommitFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchCommitFailures++
}

func (m *Mock) ObserveCommitDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commitDurations = append(m.commitDurations, duration)
}

func (m *Mock) IncMatchesRemoved() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesRemoved++
}

func (m *Mock) IncRatingResets() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ratingResets++
}

func (m *Mock) IncEventsProcessed(eventType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventsProcessed[eventType]++
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// MatchesCommitted returns the number of times IncMatchesCommitted was called.
func (m *Mock) MatchesCommitted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesCommitted
}

// MatchCommitFailures returns the number of times IncMatchCommitFailures was called.
func (m *Mock) MatchCommitFailures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchCommitFailures
}

// CommitDurations returns every observed commit duration.
func (m *Mock) CommitDurations() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.commitDurations...)
}

// MatchesRemoved returns the number of times IncMatchesRemoved was called.
func (m *Mock) MatchesRemoved() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesRemoved
}

// RatingResets returns the number of times IncRatingResets was called.
func (m *Mock) RatingResets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ratingResets
}

// EventsProcessed returns how many events of eventType were counted.
func (m *Mock) EventsProcessed(eventType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eventsProcessed[eventType]
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}
