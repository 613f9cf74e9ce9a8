package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/mauv0809/babyfoot-ledger/internal/club"
	"github.com/mauv0809/babyfoot-ledger/internal/ledger"
	"github.com/mauv0809/babyfoot-ledger/internal/metrics"
	"github.com/mauv0809/babyfoot-ledger/internal/notifier"
	"github.com/mauv0809/babyfoot-ledger/internal/rank"
	"github.com/mauv0809/babyfoot-ledger/internal/rating"
	"github.com/mauv0809/babyfoot-ledger/internal/stats"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	return NewNotifierWithAPI(slack.New(token), channelID, metrics)
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}
	if s.channelID == "" {
		log.Debug("No Slack channel configured, skipping message")
		return "", "", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", s.channelID)
		return "", "", errors.Wrap(err, "failed to post message")
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

func (s *Notifier) SendMatchResult(result *ledger.MatchResult, dryRun bool) error {
	_, _, err := s.sendMessage(s.formatMatchResult(result), dryRun)
	return err
}

func (s *Notifier) SendMatchRemoved(removed ledger.MatchRemoved, dryRun bool) error {
	_, _, err := s.sendMessage(s.formatMatchRemoved(removed), dryRun)
	return err
}

func (s *Notifier) SendSeasonStarted(reset *ledger.ResetResult, dryRun bool) error {
	_, _, err := s.sendMessage(s.formatSeasonStarted(reset), dryRun)
	return err
}

// FormatLeaderboardResponse formats a leaderboard message for a slash command response.
func (s *Notifier) FormatLeaderboardResponse(entries []stats.LeaderboardEntry) (any, error) {
	return s.formatLeaderboard(entries), nil
}

// FormatPlayerSummaryResponse formats a player summary message for a slash command response.
func (s *Notifier) FormatPlayerSummaryResponse(summary *stats.PlayerSummary) (any, error) {
	return s.formatPlayerSummary(summary), nil
}

// FormatPlayerNotFoundResponse formats a player not found message for a slash command response.
func (s *Notifier) FormatPlayerNotFoundResponse(query string, suggestions []club.PlayerSuggestion) (any, error) {
	return s.formatPlayerNotFound(query, suggestions), nil
}

func teamName(changes []ledger.RatingChange, team int) string {
	var names []string
	for _, c := range changes {
		if c.Team == team {
			names = append(names, c.PlayerName)
		}
	}
	return strings.Join(names, " & ")
}

// formatMatchResult creates the Slack message for a committed match using Block Kit.
func (s *Notifier) formatMatchResult(result *ledger.MatchResult) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "⚽ Match recorded! ⚽", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	m := result.Match
	scoreText := fmt.Sprintf("%s %d - %d %s",
		teamName(result.Changes, 1),
		m.Team1Score,
		m.Team2Score,
		teamName(result.Changes, 2),
	)
	winnerText := fmt.Sprintf("Result: %s won! 🏆", teamName(result.Changes, m.WinnerTeam))

	var fields []*slack.TextBlockObject
	for _, c := range result.Changes {
		text := fmt.Sprintf("%s (%s)\n%s → %s (%s)",
			c.PlayerName,
			c.Position,
			rating.FormatRating(c.RatingBefore),
			rating.FormatRating(c.RatingAfter),
			rating.FormatRatingChange(float64(c.Change)),
		)
		fields = append(fields, slack.NewTextBlockObject("plain_text", text, true, false))
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", scoreText, true, false), nil, nil))
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", winnerText, true, false), fields, nil))

	t := result.Transfer
	transferText := fmt.Sprintf("%d base points × %.1f = %d points transferred", t.PointsBase, t.Multiplier, t.PointsEffective)
	blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", transferText, true, false)))

	return slack.NewBlockMessage(blocks...)
}

// formatMatchRemoved creates the Slack message for a deleted match.
func (s *Notifier) formatMatchRemoved(removed ledger.MatchRemoved) slack.Message {
	text := fmt.Sprintf("🗑️ Match #%d (%d - %d, played %s) was removed. Ratings were not restored; it had moved %d points.",
		removed.Match.ID,
		removed.Match.Team1Score,
		removed.Match.Team2Score,
		removed.Match.PlayedAt.Time().Format("Mon 02 Jan, 15:04"),
		removed.Match.PointsDelta,
	)
	return slack.NewBlockMessage(
		slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", text, true, false), nil, nil),
	)
}

// formatSeasonStarted creates the Slack message sent after all ratings are reset.
func (s *Notifier) formatSeasonStarted(reset *ledger.ResetResult) slack.Message {
	headerText := fmt.Sprintf("🏁 %s has started! 🏁", reset.Season.Name)
	bodyText := fmt.Sprintf("All %d players are back at %s. Good luck!",
		reset.PlayersReset,
		rating.FormatRating(rating.DefaultRating),
	)
	return slack.NewBlockMessage(
		slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", headerText, true, false)),
		slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", bodyText, true, false), nil, nil),
	)
}

func medal(position int) string {
	switch position {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	}
	return ""
}

// formatLeaderboard creates a Slack message to display the rating leaderboard.
func (s *Notifier) formatLeaderboard(entries []stats.LeaderboardEntry) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🏆 Leaderboard 🏆", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(entries) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No players yet. Add some players and play a match!", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	for _, e := range entries {
		playerText := fmt.Sprintf("%d. %s %s\n> Rating: %s (%s) | W/L: %d/%d | Win %%: %.1f%%",
			e.Rank,
			medal(e.Rank),
			e.PlayerName,
			rating.FormatRating(e.Rating),
			e.Tier,
			e.Wins,
			e.Losses,
			e.WinRate,
		)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", playerText, true, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatPlayerSummary creates a Slack message to display a single player's record.
func (s *Notifier) formatPlayerSummary(summary *stats.PlayerSummary) slack.Message {
	headerText := fmt.Sprintf("📊 Stats for %s", summary.PlayerName)

	tierText := summary.Tier
	if !rank.Classify(summary.Rating).IsTop() {
		tierText = fmt.Sprintf("%s, %.0f%% to next tier", summary.Tier, summary.TierProgress)
	}
	playerText := fmt.Sprintf("> *Rating*: %s (%s)\n> *Record*: %dW %dL (%.1f%%)\n> *Attack*: %d/%d (%.1f%%)\n> *Defense*: %d/%d (%.1f%%)\n> *Points*: +%d / -%d\n> *Avg change*: %+.1f",
		rating.FormatRating(summary.Rating),
		tierText,
		summary.Wins,
		summary.Losses,
		summary.WinRate,
		summary.Attack.Wins,
		summary.Attack.GamesPlayed,
		summary.Attack.WinRate,
		summary.Defense.Wins,
		summary.Defense.GamesPlayed,
		summary.Defense.WinRate,
		summary.PointsWon,
		summary.PointsLost,
		summary.AvgRatingChange,
	)

	return slack.NewBlockMessage(
		slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", headerText, true, false)),
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", playerText, false, false), nil, nil),
	)
}

// formatPlayerNotFound creates a Slack message for when no player matches the query.
func (s *Notifier) formatPlayerNotFound(query string, suggestions []club.PlayerSuggestion) slack.Message {
	text := fmt.Sprintf("Sorry, I couldn't find a player matching *%s*.", query)
	if len(suggestions) == 0 {
		text += " Try a different name."
	} else {
		names := make([]string, 0, len(suggestions))
		for _, sg := range suggestions {
			names = append(names, sg.Player.Name)
		}
		text += fmt.Sprintf(" Did you mean: %s?", strings.Join(names, ", "))
	}
	return slack.NewBlockMessage(
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil),
	)
}
