package ledger

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mauv0809/babyfoot-ledger/internal/club"
	"github.com/mauv0809/babyfoot-ledger/internal/metrics"
	"github.com/mauv0809/babyfoot-ledger/internal/pubsub"
	"github.com/mauv0809/babyfoot-ledger/internal/rating"
)

// Ledger is the only writer of players, matches and rating history.
type Ledger struct {
	store    club.ClubStore
	pubsub   pubsub.PubSubClient
	metrics  metrics.Metrics
	validate *validator.Validate
	now      func() time.Time
}

// Participant is one player's seat in a match being entered.
type Participant struct {
	PlayerID int64         `json:"player_id" validate:"required,gt=0"`
	Position club.Position `json:"position" validate:"required,oneof=attack defense"`
}

// MatchInput is a finished match as entered by a user. A zero PlayedAt means "now".
type MatchInput struct {
	Team1      [2]Participant `json:"team1" validate:"dive"`
	Team2      [2]Participant `json:"team2" validate:"dive"`
	Team1Score int            `json:"team1_score" validate:"gte=0"`
	Team2Score int            `json:"team2_score" validate:"gte=0"`
	PlayedAt   time.Time      `json:"played_at"`
}

type seat struct {
	Participant
	Team int
}

func (in MatchInput) seats() [4]seat {
	return [4]seat{
		{Participant: in.Team1[0], Team: 1},
		{Participant: in.Team1[1], Team: 1},
		{Participant: in.Team2[0], Team: 2},
		{Participant: in.Team2[1], Team: 2},
	}
}

// RatingChange is what a committed match did to one participant.
type RatingChange struct {
	PlayerID     int64         `json:"player_id"`
	PlayerName   string        `json:"player_name"`
	Team         int           `json:"team"`
	Position     club.Position `json:"position"`
	RatingBefore float64       `json:"rating_before"`
	RatingAfter  float64       `json:"rating_after"`
	Change       int           `json:"change"`
}

// MatchResult is returned by CommitMatch and published as the match-committed event.
type MatchResult struct {
	Match    club.Match      `json:"match"`
	Transfer rating.Transfer `json:"transfer"`
	Changes  []RatingChange  `json:"changes"`
	DryRun   bool            `json:"dry_run,omitempty"`
}

// MatchRemoved is published as the match-removed event.
type MatchRemoved struct {
	Match     club.Match     `json:"match"`
	RemovedAt club.Timestamp `json:"removed_at"`
	DryRun    bool           `json:"dry_run,omitempty"`
}

// ResetResult is returned by ResetAllRatings and published as the ratings-reset event.
type ResetResult struct {
	PlayersReset int64       `json:"players_reset"`
	Season       club.Season `json:"season"`
	DryRun       bool        `json:"dry_run,omitempty"`
}

type newPlayer struct {
	Name     string        `json:"name" validate:"required,min=2"`
	Position club.Position `json:"preferred_position" validate:"required,oneof=attack defense"`
}

type ratingOverride struct {
	Rating float64 `json:"rating" validate:"gte=100"`
}

type positionOverride struct {
	Position club.Position `json:"preferred_position" validate:"required,oneof=attack defense"`
}
