package club

import "context"

// Queries defines the reads and writes available on the club's data, whether or not
// a transaction is open.
type Queries interface {
	CreatePlayer(ctx context.Context, player *Player) error
	GetPlayer(ctx context.Context, id int64) (*Player, error)
	GetPlayers(ctx context.Context, ids []int64) ([]Player, error)
	ListPlayers(ctx context.Context) ([]Player, error)
	UpdatePlayerRating(ctx context.Context, id int64, rating float64, now Timestamp) error
	UpdatePlayerPosition(ctx context.Context, id int64, position Position, now Timestamp) error
	ApplyMatchResult(ctx context.Context, id int64, rating float64, pointsWon, pointsLost int, now Timestamp) error
	ResetRatings(ctx context.Context, rating float64, now Timestamp) (int64, error)
	DeletePlayer(ctx context.Context, id int64) error

	CreateMatch(ctx context.Context, match *Match) error
	GetMatch(ctx context.Context, id int64) (*Match, error)
	ListMatches(ctx context.Context, limit int) ([]Match, error)
	ListMatchesForPlayer(ctx context.Context, playerID int64) ([]Match, error)
	DeleteMatches(ctx context.Context, ids []int64) error

	AppendRatingHistory(ctx context.Context, entry *RatingHistoryEntry) error
	ListRatingHistory(ctx context.Context, playerID int64) ([]RatingHistoryEntry, error)
	DeleteRatingHistoryForMatches(ctx context.Context, matchIDs []int64) error
	DeleteRatingHistoryForPlayer(ctx context.Context, playerID int64) error

	CurrentSeason(ctx context.Context) (*Season, error)
	ListSeasons(ctx context.Context) ([]Season, error)
	StartSeason(ctx context.Context, name string, now Timestamp) (*Season, error)
}

// ClubStore defines the interface for interacting with the club's data.
type ClubStore interface {
	Queries
	// Transaction runs fn against a single transaction, committing when fn returns nil
	// and rolling back otherwise.
	Transaction(ctx context.Context, fn func(q Queries) error) error
}
