package stats

import (
	"time"

	"github.com/mauv0809/babyfoot-ledger/internal/club"
)

// Aggregator derives leaderboards and player analytics from the match history.
// It never writes.
type Aggregator struct {
	store club.Queries
	now   func() time.Time
}

// LeaderboardEntry is one ranked player.
type LeaderboardEntry struct {
	Rank        int     `json:"rank"`
	PlayerID    int64   `json:"player_id"`
	PlayerName  string  `json:"player_name"`
	Rating      float64 `json:"rating"`
	Tier        string  `json:"tier"`
	GamesPlayed int     `json:"games_played"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	WinRate     float64 `json:"win_rate"`
}

// PositionSummary covers the games a player played in one position.
type PositionSummary struct {
	GamesPlayed int     `json:"games_played"`
	Wins        int     `json:"wins"`
	WinRate     float64 `json:"win_rate"`
}

// PlayerSummary aggregates every match a player took part in.
type PlayerSummary struct {
	PlayerID          int64           `json:"player_id"`
	PlayerName        string          `json:"player_name"`
	PreferredPosition club.Position   `json:"preferred_position"`
	Rating            float64         `json:"rating"`
	Tier              string          `json:"tier"`
	TierColor         string          `json:"tier_color"`
	TierProgress      float64         `json:"tier_progress"`
	PointsWon         int             `json:"points_won"`
	PointsLost        int             `json:"points_lost"`
	GamesPlayed       int             `json:"games_played"`
	Wins              int             `json:"wins"`
	Losses            int             `json:"losses"`
	WinRate           float64         `json:"win_rate"`
	AvgRatingChange   float64         `json:"avg_rating_change"`
	Attack            PositionSummary `json:"attack"`
	Defense           PositionSummary `json:"defense"`
}

// PartnerStats describes how a player fares alongside one teammate.
type PartnerStats struct {
	PartnerID   int64   `json:"partner_id"`
	PartnerName string  `json:"partner_name"`
	GamesPlayed int     `json:"games_played"`
	Wins        int     `json:"wins"`
	WinRate     float64 `json:"win_rate"`
}

// OpponentStats describes how a player fares against one opponent. WinRate is the player's
// win rate against them; OpponentWinRate is its complement.
type OpponentStats struct {
	OpponentID      int64   `json:"opponent_id"`
	OpponentName    string  `json:"opponent_name"`
	GamesPlayed     int     `json:"games_played"`
	Wins            int     `json:"wins"`
	Losses          int     `json:"losses"`
	WinRate         float64 `json:"win_rate"`
	OpponentWinRate float64 `json:"opponent_win_rate"`
}

// RecentResult is one of a player's latest matches.
type RecentResult struct {
	MatchID      int64          `json:"match_id"`
	PlayedAt     club.Timestamp `json:"played_at"`
	Won          bool           `json:"won"`
	RatingChange float64        `json:"rating_change"`
	RatingAfter  float64        `json:"rating_after"`
}

// RatingPoint is one sample of a player's rating over time.
type RatingPoint struct {
	At     club.Timestamp `json:"at"`
	Rating float64        `json:"rating"`
}

// MatchSummary is a match with its participants' names, for listings.
type MatchSummary struct {
	club.Match
	Team1Player1Name string `json:"team1_player1_name"`
	Team1Player2Name string `json:"team1_player2_name"`
	Team2Player1Name string `json:"team2_player1_name"`
	Team2Player2Name string `json:"team2_player2_name"`
}
