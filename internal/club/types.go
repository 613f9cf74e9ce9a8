package club

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
)

// store handles all database operations for the club.
type store struct {
	queries
	db *sqlx.DB
}

// queries runs statements against either the database or an open transaction.
type queries struct {
	ext sqlx.ExtContext
}

// Position is the table position a player occupies during a match.
type Position string

const (
	PositionAttack  Position = "attack"
	PositionDefense Position = "defense"
)

// Valid reports whether p is a known position.
func (p Position) Valid() bool {
	return p == PositionAttack || p == PositionDefense
}

// Timestamp is stored as UNIX milliseconds but used as a time.Time.
type Timestamp int64

// NewTimestamp converts t to millisecond precision.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t.UnixMilli())
}

func (t Timestamp) Time() time.Time {
	return time.UnixMilli(int64(t)).UTC()
}

func (t Timestamp) Value() (driver.Value, error) {
	return int64(t), nil
}

func (t *Timestamp) Scan(src any) error {
	switch src := src.(type) {
	case int64:
		*t = Timestamp(src)
	case float64:
		*t = Timestamp(int64(src))
	case []byte:
		v, err := strconv.ParseInt(string(src), 10, 64)
		if err != nil {
			return err
		}
		*t = Timestamp(v)
	default:
		return fmt.Errorf("expected int64 or []byte, got %T", src)
	}
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time().Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return err
	}
	*t = NewTimestamp(parsed)
	return nil
}

// Player is a roster member. Ratings and counters are only changed by the ledger.
type Player struct {
	ID                int64     `db:"id" json:"id"`
	Name              string    `db:"name" json:"name"`
	PreferredPosition Position  `db:"preferred_position" json:"preferred_position"`
	Rating            float64   `db:"current_rating" json:"rating"`
	PointsWon         int       `db:"points_won" json:"points_won"`
	PointsLost        int       `db:"points_lost" json:"points_lost"`
	CreatedAt         Timestamp `db:"created_at" json:"created_at"`
	UpdatedAt         Timestamp `db:"updated_at" json:"updated_at"`
}

// Match is a completed 2v2 game together with the numbers used to rate it.
type Match struct {
	ID                   int64     `db:"id" json:"id"`
	SeasonID             *int64    `db:"season_id" json:"season_id,omitempty"`
	Team1Player1ID       int64     `db:"team1_player1_id" json:"team1_player1_id"`
	Team1Player2ID       int64     `db:"team1_player2_id" json:"team1_player2_id"`
	Team2Player1ID       int64     `db:"team2_player1_id" json:"team2_player1_id"`
	Team2Player2ID       int64     `db:"team2_player2_id" json:"team2_player2_id"`
	Team1Player1Position Position  `db:"team1_player1_position" json:"team1_player1_position"`
	Team1Player2Position Position  `db:"team1_player2_position" json:"team1_player2_position"`
	Team2Player1Position Position  `db:"team2_player1_position" json:"team2_player1_position"`
	Team2Player2Position Position  `db:"team2_player2_position" json:"team2_player2_position"`
	Team1Score           int       `db:"team1_score" json:"team1_score"`
	Team2Score           int       `db:"team2_score" json:"team2_score"`
	WinnerTeam           int       `db:"winner_team" json:"winner_team"`
	Team1AvgRating       float64   `db:"team1_avg_rating" json:"team1_avg_rating"`
	Team2AvgRating       float64   `db:"team2_avg_rating" json:"team2_avg_rating"`
	PointsBase           int       `db:"points_base" json:"points_base"`
	PointsDelta          int       `db:"points_delta" json:"points_delta"`
	ScoreMultiplier      float64   `db:"score_multiplier" json:"score_multiplier"`
	PlayedAt             Timestamp `db:"played_at" json:"played_at"`
	CreatedAt            Timestamp `db:"created_at" json:"created_at"`
}

// Slot is one of the four seats of a match.
type Slot struct {
	PlayerID int64
	Team     int
	Position Position
}

// Slots lists the four seats in team order.
func (m *Match) Slots() [4]Slot {
	return [4]Slot{
		{PlayerID: m.Team1Player1ID, Team: 1, Position: m.Team1Player1Position},
		{PlayerID: m.Team1Player2ID, Team: 1, Position: m.Team1Player2Position},
		{PlayerID: m.Team2Player1ID, Team: 2, Position: m.Team2Player1Position},
		{PlayerID: m.Team2Player2ID, Team: 2, Position: m.Team2Player2Position},
	}
}

// SlotOf returns the seat playerID occupied, if any.
func (m *Match) SlotOf(playerID int64) (Slot, bool) {
	for _, s := range m.Slots() {
		if s.PlayerID == playerID {
			return s, true
		}
	}
	return Slot{}, false
}

// PlayerIDs returns the four participants in team order.
func (m *Match) PlayerIDs() []int64 {
	return []int64{m.Team1Player1ID, m.Team1Player2ID, m.Team2Player1ID, m.Team2Player2ID}
}

// RatingHistoryEntry records one player's rating movement caused by one match.
type RatingHistoryEntry struct {
	ID           int64     `db:"id" json:"id"`
	PlayerID     int64     `db:"player_id" json:"player_id"`
	MatchID      int64     `db:"match_id" json:"match_id"`
	RatingBefore float64   `db:"rating_before" json:"rating_before"`
	RatingAfter  float64   `db:"rating_after" json:"rating_after"`
	Change       float64   `db:"rating_change" json:"change"`
	CreatedAt    Timestamp `db:"created_at" json:"created_at"`
}

// Season is an informational period between two rating resets.
type Season struct {
	ID        int64      `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	StartedAt Timestamp  `db:"started_at" json:"started_at"`
	EndedAt   *Timestamp `db:"ended_at" json:"ended_at,omitempty"`
}
