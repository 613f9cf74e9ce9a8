package notifier

import (
	"github.com/mauv0809/babyfoot-ledger/internal/club"
	"github.com/mauv0809/babyfoot-ledger/internal/ledger"
	"github.com/mauv0809/babyfoot-ledger/internal/stats"
)

// Notifier defines a high-level interface for sending notifications about ledger events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For ledger events
	SendMatchResult(result *ledger.MatchResult, dryRun bool) error
	SendMatchRemoved(removed ledger.MatchRemoved, dryRun bool) error
	SendSeasonStarted(reset *ledger.ResetResult, dryRun bool) error

	// For formatting responses for slash commands
	FormatLeaderboardResponse(entries []stats.LeaderboardEntry) (any, error)
	FormatPlayerSummaryResponse(summary *stats.PlayerSummary) (any, error)
	FormatPlayerNotFoundResponse(query string, suggestions []club.PlayerSuggestion) (any, error)
}
