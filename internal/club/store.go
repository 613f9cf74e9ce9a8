package club

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
)

var matchColumns = []string{
	"id", "season_id",
	"team1_player1_id", "team1_player2_id", "team2_player1_id", "team2_player2_id",
	"team1_player1_position", "team1_player2_position", "team2_player1_position", "team2_player2_position",
	"team1_score", "team2_score", "winner_team",
	"team1_avg_rating", "team2_avg_rating", "points_base", "points_delta", "score_multiplier",
	"played_at", "created_at",
}

const playerColumns = "id, name, preferred_position, current_rating, points_won, points_lost, created_at, updated_at"

// New creates a new ClubStore.
func New(db *sqlx.DB) ClubStore {
	return &store{
		queries: queries{ext: db},
		db:      db,
	}
}

// Transaction scopes fn to one database transaction.
func (s *store) Transaction(ctx context.Context, fn func(q Queries) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&queries{ext: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("Failed to roll back transaction", "error", rbErr, "cause", err)
			return errors.WithSecondaryError(err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (q *queries) CreatePlayer(ctx context.Context, player *Player) error {
	query, args, err := squirrel.Insert("players").SetMap(squirrel.Eq{
		"name":               player.Name,
		"preferred_position": player.PreferredPosition,
		"current_rating":     player.Rating,
		"points_won":         player.PointsWon,
		"points_lost":        player.PointsLost,
		"created_at":         player.CreatedAt,
		"updated_at":         player.UpdatedAt,
	}).ToSql()
	if err != nil {
		return err
	}

	res, err := q.ext.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("Failed to add player", "error", err, "name", player.Name)
		return fmt.Errorf("failed to add player: %w", translateError(err))
	}
	if player.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("failed to read player id: %w", err)
	}

	log.Info("Added new player to the store", "playerID", player.ID, "name", player.Name)
	return nil
}

func (q *queries) GetPlayer(ctx context.Context, id int64) (*Player, error) {
	var p Player
	err := sqlx.GetContext(ctx, q.ext, &p, "SELECT "+playerColumns+" FROM players WHERE id = ?", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(ErrNotFound, "player %d", id)
		}
		log.Error("Failed to query player", "error", err, "playerID", id)
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return &p, nil
}

// GetPlayers returns the players with the given ids. Unknown ids are skipped.
func (q *queries) GetPlayers(ctx context.Context, ids []int64) ([]Player, error) {
	if len(ids) == 0 {
		return []Player{}, nil
	}

	query, args, err := squirrel.Select(playerColumns).From("players").
		Where(squirrel.Eq{"id": ids}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}

	players := []Player{}
	if err := sqlx.SelectContext(ctx, q.ext, &players, query, args...); err != nil {
		log.Error("Failed to query players by ids", "error", err, "ids", ids)
		return nil, fmt.Errorf("failed to get players: %w", err)
	}
	return players, nil
}

// ListPlayers returns the whole roster sorted by name.
func (q *queries) ListPlayers(ctx context.Context) ([]Player, error) {
	players := []Player{}
	if err := sqlx.SelectContext(ctx, q.ext, &players, "SELECT "+playerColumns+" FROM players ORDER BY name, id"); err != nil {
		log.Error("Failed to query all players", "error", err)
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	return players, nil
}

func (q *queries) UpdatePlayerRating(ctx context.Context, id int64, rating float64, now Timestamp) error {
	return q.updatePlayer(ctx, id, squirrel.Eq{"current_rating": rating, "updated_at": now})
}

func (q *queries) UpdatePlayerPosition(ctx context.Context, id int64, position Position, now Timestamp) error {
	return q.updatePlayer(ctx, id, squirrel.Eq{"preferred_position": position, "updated_at": now})
}

// ApplyMatchResult stores a player's post-match rating and adds to the cumulative counters.
func (q *queries) ApplyMatchResult(ctx context.Context, id int64, rating float64, pointsWon, pointsLost int, now Timestamp) error {
	return q.updatePlayer(ctx, id, squirrel.Eq{
		"current_rating": rating,
		"points_won":     squirrel.Expr("points_won + ?", pointsWon),
		"points_lost":    squirrel.Expr("points_lost + ?", pointsLost),
		"updated_at":     now,
	})
}

func (q *queries) updatePlayer(ctx context.Context, id int64, set squirrel.Eq) error {
	query, args, err := squirrel.Update("players").SetMap(set).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}

	res, err := q.ext.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("Failed to update player", "error", err, "playerID", id)
		return fmt.Errorf("failed to update player: %w", err)
	}
	return requireAffected(res, errors.Wrapf(ErrNotFound, "player %d", id))
}

// ResetRatings sets every player back to rating and clears the counters. History is kept.
func (q *queries) ResetRatings(ctx context.Context, rating float64, now Timestamp) (int64, error) {
	res, err := q.ext.ExecContext(ctx,
		"UPDATE players SET current_rating = ?, points_won = 0, points_lost = 0, updated_at = ?",
		rating, now)
	if err != nil {
		log.Error("Failed to reset ratings", "error", err)
		return 0, fmt.Errorf("failed to reset ratings: %w", err)
	}
	return res.RowsAffected()
}

func (q *queries) DeletePlayer(ctx context.Context, id int64) error {
	res, err := q.ext.ExecContext(ctx, "DELETE FROM players WHERE id = ?", id)
	if err != nil {
		log.Error("Failed to delete player", "error", err, "playerID", id)
		return fmt.Errorf("failed to delete player: %w", err)
	}
	return requireAffected(res, errors.Wrapf(ErrNotFound, "player %d", id))
}

func (q *queries) CreateMatch(ctx context.Context, match *Match) error {
	query, args, err := squirrel.Insert("matches").SetMap(squirrel.Eq{
		"season_id":              match.SeasonID,
		"team1_player1_id":       match.Team1Player1ID,
		"team1_player2_id":       match.Team1Player2ID,
		"team2_player1_id":       match.Team2Player1ID,
		"team2_player2_id":       match.Team2Player2ID,
		"team1_player1_position": match.Team1Player1Position,
		"team1_player2_position": match.Team1Player2Position,
		"team2_player1_position": match.Team2Player1Position,
		"team2_player2_position": match.Team2Player2Position,
		"team1_score":            match.Team1Score,
		"team2_score":            match.Team2Score,
		"winner_team":            match.WinnerTeam,
		"team1_avg_rating":       match.Team1AvgRating,
		"team2_avg_rating":       match.Team2AvgRating,
		"points_base":            match.PointsBase,
		"points_delta":           match.PointsDelta,
		"score_multiplier":       match.ScoreMultiplier,
		"played_at":              match.PlayedAt,
		"created_at":             match.CreatedAt,
	}).ToSql()
	if err != nil {
		return err
	}

	res, err := q.ext.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("Failed to insert match", "error", err)
		return fmt.Errorf("failed to insert match: %w", err)
	}
	if match.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("failed to read match id: %w", err)
	}
	return nil
}

func (q *queries) GetMatch(ctx context.Context, id int64) (*Match, error) {
	query, args, err := squirrel.Select(matchColumns...).From("matches").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}

	var m Match
	if err := sqlx.GetContext(ctx, q.ext, &m, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(ErrNotFound, "match %d", id)
		}
		log.Error("Failed to query match", "error", err, "matchID", id)
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return &m, nil
}

// ListMatches returns the most recently played matches first. A limit <= 0 returns all of them.
func (q *queries) ListMatches(ctx context.Context, limit int) ([]Match, error) {
	builder := squirrel.Select(matchColumns...).From("matches").OrderBy("played_at DESC", "id DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	return q.selectMatches(ctx, builder)
}

// ListMatchesForPlayer returns every match playerID took part in, most recent first.
func (q *queries) ListMatchesForPlayer(ctx context.Context, playerID int64) ([]Match, error) {
	builder := squirrel.Select(matchColumns...).From("matches").
		Where(squirrel.Or{
			squirrel.Eq{"team1_player1_id": playerID},
			squirrel.Eq{"team1_player2_id": playerID},
			squirrel.Eq{"team2_player1_id": playerID},
			squirrel.Eq{"team2_player2_id": playerID},
		}).
		OrderBy("played_at DESC", "id DESC")
	return q.selectMatches(ctx, builder)
}

func (q *queries) selectMatches(ctx context.Context, builder squirrel.SelectBuilder) ([]Match, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	matches := []Match{}
	if err := sqlx.SelectContext(ctx, q.ext, &matches, query, args...); err != nil {
		log.Error("Failed to query matches", "error", err)
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return matches, nil
}

func (q *queries) DeleteMatches(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := squirrel.Delete("matches").Where(squirrel.Eq{"id": ids}).ToSql()
	if err != nil {
		return err
	}
	if _, err := q.ext.ExecContext(ctx, query, args...); err != nil {
		log.Error("Failed to delete matches", "error", err, "matchIDs", ids)
		return fmt.Errorf("failed to delete matches: %w", err)
	}
	return nil
}

func (q *queries) AppendRatingHistory(ctx context.Context, entry *RatingHistoryEntry) error {
	query, args, err := squirrel.Insert("rating_history").SetMap(squirrel.Eq{
		"player_id":     entry.PlayerID,
		"match_id":      entry.MatchID,
		"rating_before": entry.RatingBefore,
		"rating_after":  entry.RatingAfter,
		"rating_change": entry.Change,
		"created_at":    entry.CreatedAt,
	}).ToSql()
	if err != nil {
		return err
	}

	res, err := q.ext.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("Failed to append rating history", "error", err, "playerID", entry.PlayerID, "matchID", entry.MatchID)
		return fmt.Errorf("failed to append rating history: %w", err)
	}
	if entry.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("failed to read rating history id: %w", err)
	}
	return nil
}

// ListRatingHistory returns a player's history in chronological order.
func (q *queries) ListRatingHistory(ctx context.Context, playerID int64) ([]RatingHistoryEntry, error) {
	entries := []RatingHistoryEntry{}
	err := sqlx.SelectContext(ctx, q.ext, &entries, `
		SELECT id, player_id, match_id, rating_before, rating_after, rating_change, created_at
		FROM rating_history
		WHERE player_id = ?
		ORDER BY created_at ASC, id ASC`, playerID)
	if err != nil {
		log.Error("Failed to query rating history", "error", err, "playerID", playerID)
		return nil, fmt.Errorf("failed to list rating history: %w", err)
	}
	return entries, nil
}

func (q *queries) DeleteRatingHistoryForMatches(ctx context.Context, matchIDs []int64) error {
	if len(matchIDs) == 0 {
		return nil
	}

	query, args, err := squirrel.Delete("rating_history").Where(squirrel.Eq{"match_id": matchIDs}).ToSql()
	if err != nil {
		return err
	}
	if _, err := q.ext.ExecContext(ctx, query, args...); err != nil {
		log.Error("Failed to delete rating history for matches", "error", err, "matchIDs", matchIDs)
		return fmt.Errorf("failed to delete rating history: %w", err)
	}
	return nil
}

func (q *queries) DeleteRatingHistoryForPlayer(ctx context.Context, playerID int64) error {
	if _, err := q.ext.ExecContext(ctx, "DELETE FROM rating_history WHERE player_id = ?", playerID); err != nil {
		log.Error("Failed to delete rating history for player", "error", err, "playerID", playerID)
		return fmt.Errorf("failed to delete rating history: %w", err)
	}
	return nil
}

// CurrentSeason returns the open season.
func (q *queries) CurrentSeason(ctx context.Context) (*Season, error) {
	var s Season
	err := sqlx.GetContext(ctx, q.ext, &s, `
		SELECT id, name, started_at, ended_at FROM seasons
		WHERE ended_at IS NULL
		ORDER BY id DESC LIMIT 1`)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrap(ErrNotFound, "open season")
		}
		return nil, fmt.Errorf("failed to get current season: %w", err)
	}
	return &s, nil
}

func (q *queries) ListSeasons(ctx context.Context) ([]Season, error) {
	seasons := []Season{}
	if err := sqlx.SelectContext(ctx, q.ext, &seasons, "SELECT id, name, started_at, ended_at FROM seasons ORDER BY id"); err != nil {
		return nil, fmt.Errorf("failed to list seasons: %w", err)
	}
	return seasons, nil
}

// StartSeason closes any open season and opens a new one.
func (q *queries) StartSeason(ctx context.Context, name string, now Timestamp) (*Season, error) {
	if _, err := q.ext.ExecContext(ctx, "UPDATE seasons SET ended_at = ? WHERE ended_at IS NULL", now); err != nil {
		return nil, fmt.Errorf("failed to close season: %w", err)
	}

	query, args, err := squirrel.Insert("seasons").Columns("name", "started_at").Values(name, now).ToSql()
	if err != nil {
		return nil, err
	}
	res, err := q.ext.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to start season: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read season id: %w", err)
	}

	log.Info("Started new season", "seasonID", id, "name", name)
	return &Season{ID: id, Name: name, StartedAt: now}, nil
}

func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
