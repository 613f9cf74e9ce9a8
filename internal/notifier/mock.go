package notifier

import (
	"sync"

	"github.com/mauv0809/babyfoot-ledger/internal/club"
	"github.com/mauv0809/babyfoot-ledger/internal/ledger"
	"github.com/mauv0809/babyfoot-ledger/internal/stats"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Call records
	SendMatchResultCalls   []*ledger.MatchResult
	SendMatchRemovedCalls  []ledger.MatchRemoved
	SendSeasonStartedCalls []*ledger.ResetResult
	PlayerNotFoundQueries  []string

	// DryRuns holds the dryRun argument of every Send call, in call order.
	DryRuns []bool

	// Optional error returned by every Send method
	SendErr error
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMatchResultCalls = nil
	m.SendMatchRemovedCalls = nil
	m.SendSeasonStartedCalls = nil
	m.PlayerNotFoundQueries = nil
	m.DryRuns = nil
}

func (m *Mock) SendMatchResult(result *ledger.MatchResult, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMatchResultCalls = append(m.SendMatchResultCalls, result)
	m.DryRuns = append(m.DryRuns, dryRun)
	return m.SendErr
}

func (m *Mock) SendMatchRemoved(removed ledger.MatchRemoved, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMatchRemovedCalls = append(m.SendMatchRemovedCalls, removed)
	m.DryRuns = append(m.DryRuns, dryRun)
	return m.SendErr
}

func (m *Mock) SendSeasonStarted(reset *ledger.ResetResult, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendSeasonStartedCalls = append(m.SendSeasonStartedCalls, reset)
	m.DryRuns = append(m.DryRuns, dryRun)
	return m.SendErr
}

func (m *Mock) FormatLeaderboardResponse(entries []stats.LeaderboardEntry) (any, error) {
	return "formatted_leaderboard", nil
}

func (m *Mock) FormatPlayerSummaryResponse(summary *stats.PlayerSummary) (any, error) {
	return "formatted_player_summary", nil
}

func (m *Mock) FormatPlayerNotFoundResponse(query string, suggestions []club.PlayerSuggestion) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PlayerNotFoundQueries = append(m.PlayerNotFoundQueries, query)
	return "formatted_player_not_found", nil
}
