// Package stats computes the read side of the ledger: leaderboard, player summaries,
// partner and opponent affinity and rating time series.
package stats

import (
	"context"
	"sort"
	"time"

	"github.com/mauv0809/babyfoot-ledger/internal/club"
	"github.com/mauv0809/babyfoot-ledger/internal/rank"
	"github.com/mauv0809/babyfoot-ledger/internal/rating"
)

// New creates an Aggregator reading from store.
func New(store club.Queries) *Aggregator {
	return &Aggregator{store: store, now: time.Now}
}

func winRate(wins, games int) float64 {
	if games == 0 {
		return 0
	}
	return float64(wins) / float64(games) * 100
}

func won(m *club.Match, s club.Slot) bool {
	return s.Team == m.WinnerTeam
}

// ListPlayers returns the roster sorted by name.
func (a *Aggregator) ListPlayers(ctx context.Context) ([]club.Player, error) {
	return a.store.ListPlayers(ctx)
}

// GetPlayer returns a single player.
func (a *Aggregator) GetPlayer(ctx context.Context, id int64) (*club.Player, error) {
	return a.store.GetPlayer(ctx, id)
}

// ListSeasons returns every season, oldest first.
func (a *Aggregator) ListSeasons(ctx context.Context) ([]club.Season, error) {
	return a.store.ListSeasons(ctx)
}

// Leaderboard ranks every player by rating. Equal ratings are ordered by player id.
func (a *Aggregator) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	players, err := a.store.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	matches, err := a.store.ListMatches(ctx, 0)
	if err != nil {
		return nil, err
	}

	type record struct{ games, wins int }
	records := make(map[int64]*record, len(players))
	for _, p := range players {
		records[p.ID] = &record{}
	}
	for i := range matches {
		m := &matches[i]
		for _, s := range m.Slots() {
			r, ok := records[s.PlayerID]
			if !ok {
				continue
			}
			r.games++
			if won(m, s) {
				r.wins++
			}
		}
	}

	sort.SliceStable(players, func(i, j int) bool {
		if players[i].Rating != players[j].Rating {
			return players[i].Rating > players[j].Rating
		}
		return players[i].ID < players[j].ID
	})

	entries := make([]LeaderboardEntry, 0, len(players))
	for i, p := range players {
		r := records[p.ID]
		entries = append(entries, LeaderboardEntry{
			Rank:        i + 1,
			PlayerID:    p.ID,
			PlayerName:  p.Name,
			Rating:      p.Rating,
			Tier:        rank.Classify(p.Rating).Name,
			GamesPlayed: r.games,
			Wins:        r.wins,
			Losses:      r.games - r.wins,
			WinRate:     winRate(r.wins, r.games),
		})
	}
	return entries, nil
}

// PlayerSummary aggregates a player's record overall and per position.
func (a *Aggregator) PlayerSummary(ctx context.Context, playerID int64) (*PlayerSummary, error) {
	player, err := a.store.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	matches, err := a.store.ListMatchesForPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	history, err := a.store.ListRatingHistory(ctx, playerID)
	if err != nil {
		return nil, err
	}

	tier := rank.Classify(player.Rating)
	summary := &PlayerSummary{
		PlayerID:          player.ID,
		PlayerName:        player.Name,
		PreferredPosition: player.PreferredPosition,
		Rating:            player.Rating,
		Tier:              tier.Name,
		TierColor:         tier.Color,
		TierProgress:      rank.Progress(player.Rating),
		PointsWon:         player.PointsWon,
		PointsLost:        player.PointsLost,
	}

	for i := range matches {
		m := &matches[i]
		s, ok := m.SlotOf(playerID)
		if !ok {
			continue
		}

		pos := &summary.Attack
		if s.Position == club.PositionDefense {
			pos = &summary.Defense
		}
		summary.GamesPlayed++
		pos.GamesPlayed++
		if won(m, s) {
			summary.Wins++
			pos.Wins++
		}
	}
	summary.Losses = summary.GamesPlayed - summary.Wins
	summary.WinRate = winRate(summary.Wins, summary.GamesPlayed)
	summary.Attack.WinRate = winRate(summary.Attack.Wins, summary.Attack.GamesPlayed)
	summary.Defense.WinRate = winRate(summary.Defense.Wins, summary.Defense.GamesPlayed)

	if len(history) > 0 {
		var total float64
		for _, h := range history {
			total += h.Change
		}
		summary.AvgRatingChange = total / float64(len(history))
	}
	return summary, nil
}

type tally struct {
	id    int64
	games int
	wins  int
}

// tallies counts shared games and the player's wins per teammate (sameTeam) or per opponent.
func (a *Aggregator) tallies(ctx context.Context, playerID int64, sameTeam bool) ([]*tally, map[int64]string, error) {
	if _, err := a.store.GetPlayer(ctx, playerID); err != nil {
		return nil, nil, err
	}
	matches, err := a.store.ListMatchesForPlayer(ctx, playerID)
	if err != nil {
		return nil, nil, err
	}

	byID := make(map[int64]*tally)
	var order []*tally
	for i := range matches {
		m := &matches[i]
		self, ok := m.SlotOf(playerID)
		if !ok {
			continue
		}
		for _, s := range m.Slots() {
			if s.PlayerID == playerID || (s.Team == self.Team) != sameTeam {
				continue
			}
			t, ok := byID[s.PlayerID]
			if !ok {
				t = &tally{id: s.PlayerID}
				byID[s.PlayerID] = t
				order = append(order, t)
			}
			t.games++
			if won(m, self) {
				t.wins++
			}
		}
	}

	ids := make([]int64, 0, len(order))
	for _, t := range order {
		ids = append(ids, t.id)
	}
	players, err := a.store.GetPlayers(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	names := make(map[int64]string, len(players))
	for _, p := range players {
		names[p.ID] = p.Name
	}
	return order, names, nil
}

// BestPartners ranks teammates by the player's win rate alongside them, then by games played.
func (a *Aggregator) BestPartners(ctx context.Context, playerID int64, limit int) ([]PartnerStats, error) {
	tallies, names, err := a.tallies(ctx, playerID, true)
	if err != nil {
		return nil, err
	}

	partners := make([]PartnerStats, 0, len(tallies))
	for _, t := range tallies {
		partners = append(partners, PartnerStats{
			PartnerID:   t.id,
			PartnerName: names[t.id],
			GamesPlayed: t.games,
			Wins:        t.wins,
			WinRate:     winRate(t.wins, t.games),
		})
	}

	sort.SliceStable(partners, func(i, j int) bool {
		if partners[i].WinRate != partners[j].WinRate {
			return partners[i].WinRate > partners[j].WinRate
		}
		if partners[i].GamesPlayed != partners[j].GamesPlayed {
			return partners[i].GamesPlayed > partners[j].GamesPlayed
		}
		return partners[i].PartnerID < partners[j].PartnerID
	})
	return truncate(partners, limit), nil
}

// ToughestOpponents ranks opponents by the player's win rate against them, lowest first,
// then by games played. The opponent the player beats least often comes first.
func (a *Aggregator) ToughestOpponents(ctx context.Context, playerID int64, limit int) ([]OpponentStats, error) {
	tallies, names, err := a.tallies(ctx, playerID, false)
	if err != nil {
		return nil, err
	}

	opponents := make([]OpponentStats, 0, len(tallies))
	for _, t := range tallies {
		rate := winRate(t.wins, t.games)
		opponents = append(opponents, OpponentStats{
			OpponentID:      t.id,
			OpponentName:    names[t.id],
			GamesPlayed:     t.games,
			Wins:            t.wins,
			Losses:          t.games - t.wins,
			WinRate:         rate,
			OpponentWinRate: 100 - rate,
		})
	}

	sort.SliceStable(opponents, func(i, j int) bool {
		if opponents[i].WinRate != opponents[j].WinRate {
			return opponents[i].WinRate < opponents[j].WinRate
		}
		if opponents[i].GamesPlayed != opponents[j].GamesPlayed {
			return opponents[i].GamesPlayed > opponents[j].GamesPlayed
		}
		return opponents[i].OpponentID < opponents[j].OpponentID
	})
	return truncate(opponents, limit), nil
}

// RecentPerformance returns the player's latest results, most recently played first.
func (a *Aggregator) RecentPerformance(ctx context.Context, playerID int64, limit int) ([]RecentResult, error) {
	if _, err := a.store.GetPlayer(ctx, playerID); err != nil {
		return nil, err
	}
	matches, err := a.store.ListMatchesForPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	history, err := a.store.ListRatingHistory(ctx, playerID)
	if err != nil {
		return nil, err
	}

	byMatch := make(map[int64]club.RatingHistoryEntry, len(history))
	for _, h := range history {
		byMatch[h.MatchID] = h
	}

	results := make([]RecentResult, 0, len(matches))
	for i := range matches {
		m := &matches[i]
		h, ok := byMatch[m.ID]
		if !ok {
			continue
		}
		s, _ := m.SlotOf(playerID)
		results = append(results, RecentResult{
			MatchID:      m.ID,
			PlayedAt:     m.PlayedAt,
			Won:          won(m, s),
			RatingChange: h.Change,
			RatingAfter:  h.RatingAfter,
		})
	}
	return truncate(results, limit), nil
}

// RatingHistory returns the player's rating after every match in chronological order.
// A player without history gets a single point at the default rating.
func (a *Aggregator) RatingHistory(ctx context.Context, playerID int64) ([]RatingPoint, error) {
	if _, err := a.store.GetPlayer(ctx, playerID); err != nil {
		return nil, err
	}
	history, err := a.store.ListRatingHistory(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if len(history) == 0 {
		return []RatingPoint{{At: club.NewTimestamp(a.now()), Rating: rating.DefaultRating}}, nil
	}

	points := make([]RatingPoint, 0, len(history))
	for _, h := range history {
		points = append(points, RatingPoint{At: h.CreatedAt, Rating: h.RatingAfter})
	}
	return points, nil
}

// RecentMatches lists the latest matches with participant names.
func (a *Aggregator) RecentMatches(ctx context.Context, limit int) ([]MatchSummary, error) {
	matches, err := a.store.ListMatches(ctx, limit)
	if err != nil {
		return nil, err
	}
	players, err := a.store.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(players))
	for _, p := range players {
		names[p.ID] = p.Name
	}

	summaries := make([]MatchSummary, 0, len(matches))
	for _, m := range matches {
		summaries = append(summaries, MatchSummary{
			Match:            m,
			Team1Player1Name: names[m.Team1Player1ID],
			Team1Player2Name: names[m.Team1Player2ID],
			Team2Player1Name: names[m.Team2Player1ID],
			Team2Player2Name: names[m.Team2Player2ID],
		})
	}
	return summaries, nil
}

func truncate[T any](s []T, limit int) []T {
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}
