package ledger

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/mauv0809/babyfoot-ledger/internal/club"
	"github.com/mauv0809/babyfoot-ledger/internal/pubsub"
	"github.com/mauv0809/babyfoot-ledger/internal/rating"
)

// CommitMatch validates a finished match, computes the point transfer and applies it to all
// four participants in a single transaction.
func (l *Ledger) CommitMatch(ctx context.Context, in MatchInput) (*MatchResult, error) {
	if err := l.validateInput(ctx, in); err != nil {
		return nil, err
	}
	if err := checkMatch(in); err != nil {
		return nil, err
	}

	start := time.Now()
	now := l.now()
	playedAt := in.PlayedAt
	if playedAt.IsZero() {
		playedAt = now
	}

	var result *MatchResult
	err := l.store.Transaction(ctx, func(q club.Queries) error {
		var err error
		result, err = applyMatch(ctx, q, in, club.NewTimestamp(playedAt), club.NewTimestamp(now))
		return err
	})
	if err != nil {
		err = txError("commit match", err)
		if errors.Is(err, ErrTransactionFailed) {
			l.metrics.IncMatchCommitFailures()
			log.Error("Match commit rolled back", "error", err)
		}
		return nil, err
	}

	l.metrics.IncMatchesCommitted()
	l.metrics.ObserveCommitDuration(time.Since(start).Seconds())
	log.Info("Committed match",
		"matchID", result.Match.ID,
		"score", []int{result.Match.Team1Score, result.Match.Team2Score},
		"winner_team", result.Match.WinnerTeam,
		"points", result.Transfer.PointsEffective,
	)

	result.DryRun = IsDryRun(ctx)
	l.publish(pubsub.EventMatchCommitted, result)
	return result, nil
}

// checkMatch rejects matches that could never be valid regardless of the roster.
func checkMatch(in MatchInput) error {
	seen := make(map[int64]struct{}, 4)
	for _, s := range in.seats() {
		if _, dup := seen[s.PlayerID]; dup {
			return invalidMatch("all participants must be unique")
		}
		seen[s.PlayerID] = struct{}{}
	}

	if in.Team1Score == in.Team2Score {
		return invalidMatch("a match cannot end in a tie")
	}
	return nil
}

func applyMatch(ctx context.Context, q club.Queries, in MatchInput, playedAt, now club.Timestamp) (*MatchResult, error) {
	seats := in.seats()

	var players [4]club.Player
	for i, s := range seats {
		p, err := q.GetPlayer(ctx, s.PlayerID)
		if err != nil {
			return nil, err
		}
		players[i] = *p
	}

	team1Avg := rating.TeamAverage(players[0].Rating, players[1].Rating)
	team2Avg := rating.TeamAverage(players[2].Rating, players[3].Rating)

	winnerTeam := 1
	transfer := rating.ComputeTransfer(team1Avg, team2Avg, in.Team1Score, in.Team2Score)
	if in.Team2Score > in.Team1Score {
		winnerTeam = 2
		transfer = rating.ComputeTransfer(team2Avg, team1Avg, in.Team2Score, in.Team1Score)
	}

	match := club.Match{
		Team1Player1ID:       seats[0].PlayerID,
		Team1Player2ID:       seats[1].PlayerID,
		Team2Player1ID:       seats[2].PlayerID,
		Team2Player2ID:       seats[3].PlayerID,
		Team1Player1Position: seats[0].Position,
		Team1Player2Position: seats[1].Position,
		Team2Player1Position: seats[2].Position,
		Team2Player2Position: seats[3].Position,
		Team1Score:           in.Team1Score,
		Team2Score:           in.Team2Score,
		WinnerTeam:           winnerTeam,
		Team1AvgRating:       team1Avg,
		Team2AvgRating:       team2Avg,
		PointsBase:           transfer.PointsBase,
		PointsDelta:          transfer.PointsEffective,
		ScoreMultiplier:      transfer.Multiplier,
		PlayedAt:             playedAt,
		CreatedAt:            now,
	}

	season, err := q.CurrentSeason(ctx)
	switch {
	case err == nil:
		match.SeasonID = &season.ID
	case !errors.Is(err, club.ErrNotFound):
		return nil, err
	}

	if err := q.CreateMatch(ctx, &match); err != nil {
		return nil, err
	}

	changes := make([]RatingChange, 0, len(seats))
	for i, s := range seats {
		change := transfer.LoserChange
		if s.Team == winnerTeam {
			change = transfer.WinnerChange
		}

		before := players[i].Rating
		after := rating.ApplyRatingChange(before, change)

		var won, lost int
		if change > 0 {
			won = change
		} else {
			lost = -change
		}
		if err := q.ApplyMatchResult(ctx, s.PlayerID, after, won, lost, now); err != nil {
			return nil, err
		}

		// The recorded change is the transfer itself, so the four entries of a match always sum
		// to zero even when the floor clipped a rating.
		entry := club.RatingHistoryEntry{
			PlayerID:     s.PlayerID,
			MatchID:      match.ID,
			RatingBefore: before,
			RatingAfter:  after,
			Change:       float64(change),
			CreatedAt:    now,
		}
		if err := q.AppendRatingHistory(ctx, &entry); err != nil {
			return nil, err
		}

		changes = append(changes, RatingChange{
			PlayerID:     s.PlayerID,
			PlayerName:   players[i].Name,
			Team:         s.Team,
			Position:     s.Position,
			RatingBefore: before,
			RatingAfter:  after,
			Change:       change,
		})
	}

	return &MatchResult{Match: match, Transfer: transfer, Changes: changes}, nil
}

// RemoveMatch deletes a match and its history rows. Ratings are left as they are.
func (l *Ledger) RemoveMatch(ctx context.Context, id int64) error {
	var removed *club.Match
	err := l.store.Transaction(ctx, func(q club.Queries) error {
		m, err := q.GetMatch(ctx, id)
		if err != nil {
			return err
		}
		if err := q.DeleteRatingHistoryForMatches(ctx, []int64{id}); err != nil {
			return err
		}
		if err := q.DeleteMatches(ctx, []int64{id}); err != nil {
			return err
		}
		removed = m
		return nil
	})
	if err != nil {
		return txError("remove match", err)
	}

	l.metrics.IncMatchesRemoved()
	log.Warn("Removed match without restoring ratings", "matchID", id, "points", removed.PointsDelta)
	l.publish(pubsub.EventMatchRemoved, MatchRemoved{
		Match:     *removed,
		RemovedAt: club.NewTimestamp(l.now()),
		DryRun:    IsDryRun(ctx),
	})
	return nil
}
