package club_test

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/mauv0809/babyfoot-ledger/internal/club"
	"github.com/mauv0809/babyfoot-ledger/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) (club.ClubStore, *sqlx.DB) {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	t.Cleanup(teardown)

	return club.New(db), db
}

func addPlayer(t *testing.T, store club.Queries, name string) club.Player {
	t.Helper()

	now := club.NewTimestamp(time.Now())
	p := club.Player{
		Name:              name,
		PreferredPosition: club.PositionAttack,
		Rating:            1000,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	require.NoError(t, store.CreatePlayer(context.Background(), &p))
	return p
}

func addMatch(t *testing.T, store club.Queries, ids [4]int64, playedAt time.Time) club.Match {
	t.Helper()

	m := club.Match{
		Team1Player1ID:       ids[0],
		Team1Player2ID:       ids[1],
		Team2Player1ID:       ids[2],
		Team2Player2ID:       ids[3],
		Team1Player1Position: club.PositionAttack,
		Team1Player2Position: club.PositionDefense,
		Team2Player1Position: club.PositionAttack,
		Team2Player2Position: club.PositionDefense,
		Team1Score:           10,
		Team2Score:           5,
		WinnerTeam:           1,
		Team1AvgRating:       1000,
		Team2AvgRating:       1000,
		PointsBase:           50,
		PointsDelta:          50,
		ScoreMultiplier:      1,
		PlayedAt:             club.NewTimestamp(playedAt),
		CreatedAt:            club.NewTimestamp(playedAt),
	}
	require.NoError(t, store.CreateMatch(context.Background(), &m))
	return m
}

func TestCreateAndGetPlayers(t *testing.T) {
	store, _ := setupTestDB(t)
	ctx := context.Background()

	bob := addPlayer(t, store, "Bob")
	alice := addPlayer(t, store, "Alice")
	assert.NotZero(t, bob.ID)
	assert.NotEqual(t, bob.ID, alice.ID)

	t.Run("gets a single player", func(t *testing.T) {
		p, err := store.GetPlayer(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, "Bob", p.Name)
		assert.Equal(t, 1000.0, p.Rating)
		assert.Equal(t, club.PositionAttack, p.PreferredPosition)
	})

	t.Run("lists players by name", func(t *testing.T) {
		players, err := store.ListPlayers(ctx)
		require.NoError(t, err)
		require.Len(t, players, 2)
		assert.Equal(t, "Alice", players[0].Name)
		assert.Equal(t, "Bob", players[1].Name)
	})

	t.Run("gets multiple players skipping unknown ids", func(t *testing.T) {
		players, err := store.GetPlayers(ctx, []int64{alice.ID, 999})
		require.NoError(t, err)
		require.Len(t, players, 1)
		assert.Equal(t, "Alice", players[0].Name)
	})

	t.Run("returns empty slice for empty id slice", func(t *testing.T) {
		players, err := store.GetPlayers(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, players)
	})

	t.Run("unknown player is not found", func(t *testing.T) {
		_, err := store.GetPlayer(ctx, 999)
		assert.True(t, errors.Is(err, club.ErrNotFound))
	})
}

func TestCreatePlayer_DuplicateName(t *testing.T) {
	store, _ := setupTestDB(t)

	addPlayer(t, store, "Alice")

	p := club.Player{Name: "Alice", PreferredPosition: club.PositionDefense, Rating: 1000}
	err := store.CreatePlayer(context.Background(), &p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, club.ErrDuplicate), "unique violations should be marked as duplicates")
}

func TestUpdatePlayer(t *testing.T) {
	store, _ := setupTestDB(t)
	ctx := context.Background()
	p := addPlayer(t, store, "Alice")
	now := club.NewTimestamp(time.Now())

	require.NoError(t, store.UpdatePlayerRating(ctx, p.ID, 1234, now))
	require.NoError(t, store.UpdatePlayerPosition(ctx, p.ID, club.PositionDefense, now))
	require.NoError(t, store.ApplyMatchResult(ctx, p.ID, 1284, 50, 0, now))
	require.NoError(t, store.ApplyMatchResult(ctx, p.ID, 1240, 0, 44, now))

	got, err := store.GetPlayer(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1240.0, got.Rating)
	assert.Equal(t, club.PositionDefense, got.PreferredPosition)
	assert.Equal(t, 50, got.PointsWon)
	assert.Equal(t, 44, got.PointsLost)

	err = store.UpdatePlayerRating(ctx, 999, 1000, now)
	assert.True(t, errors.Is(err, club.ErrNotFound))
}

func TestResetRatings(t *testing.T) {
	store, _ := setupTestDB(t)
	ctx := context.Background()
	a := addPlayer(t, store, "Alice")
	b := addPlayer(t, store, "Bob")
	now := club.NewTimestamp(time.Now())
	require.NoError(t, store.ApplyMatchResult(ctx, a.ID, 1100, 100, 0, now))
	require.NoError(t, store.ApplyMatchResult(ctx, b.ID, 900, 0, 100, now))

	n, err := store.ResetRatings(ctx, 1000, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	players, err := store.ListPlayers(ctx)
	require.NoError(t, err)
	for _, p := range players {
		assert.Equal(t, 1000.0, p.Rating)
		assert.Zero(t, p.PointsWon)
		assert.Zero(t, p.PointsLost)
	}
}

func TestMatchesAndHistory(t *testing.T) {
	store, _ := setupTestDB(t)
	ctx := context.Background()

	var ids [4]int64
	for i, name := range []string{"Alice", "Bob", "Carol", "Dave"} {
		ids[i] = addPlayer(t, store, name).ID
	}
	extra := addPlayer(t, store, "Eve")

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	older := addMatch(t, store, ids, base)
	newer := addMatch(t, store, [4]int64{ids[0], extra.ID, ids[2], ids[3]}, base.Add(time.Hour))

	t.Run("gets a match with its audit fields", func(t *testing.T) {
		m, err := store.GetMatch(ctx, older.ID)
		require.NoError(t, err)
		assert.Equal(t, ids[1], m.Team1Player2ID)
		assert.Equal(t, club.PositionDefense, m.Team1Player2Position)
		assert.Equal(t, 50, m.PointsDelta)
		assert.Equal(t, base, m.PlayedAt.Time())
	})

	t.Run("lists matches most recent first", func(t *testing.T) {
		matches, err := store.ListMatches(ctx, 0)
		require.NoError(t, err)
		require.Len(t, matches, 2)
		assert.Equal(t, newer.ID, matches[0].ID)

		limited, err := store.ListMatches(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, limited, 1)
	})

	t.Run("lists matches for a player in any slot", func(t *testing.T) {
		matches, err := store.ListMatchesForPlayer(ctx, ids[1])
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, older.ID, matches[0].ID)

		matches, err = store.ListMatchesForPlayer(ctx, ids[3])
		require.NoError(t, err)
		assert.Len(t, matches, 2)
	})

	t.Run("history is returned in chronological order and deleted with matches", func(t *testing.T) {
		first := club.RatingHistoryEntry{PlayerID: ids[0], MatchID: older.ID, RatingBefore: 1000, RatingAfter: 1050, Change: 50, CreatedAt: older.CreatedAt}
		second := club.RatingHistoryEntry{PlayerID: ids[0], MatchID: newer.ID, RatingBefore: 1050, RatingAfter: 1100, Change: 50, CreatedAt: newer.CreatedAt}
		require.NoError(t, store.AppendRatingHistory(ctx, &second))
		require.NoError(t, store.AppendRatingHistory(ctx, &first))

		history, err := store.ListRatingHistory(ctx, ids[0])
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, older.ID, history[0].MatchID)
		assert.Equal(t, newer.ID, history[1].MatchID)

		require.NoError(t, store.DeleteRatingHistoryForMatches(ctx, []int64{older.ID}))
		require.NoError(t, store.DeleteMatches(ctx, []int64{older.ID}))

		history, err = store.ListRatingHistory(ctx, ids[0])
		require.NoError(t, err)
		require.Len(t, history, 1)
		_, err = store.GetMatch(ctx, older.ID)
		assert.True(t, errors.Is(err, club.ErrNotFound))
	})
}

func TestTransaction_RollsBackOnError(t *testing.T) {
	store, _ := setupTestDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.Transaction(ctx, func(q club.Queries) error {
		p := club.Player{Name: "Ghost", PreferredPosition: club.PositionAttack, Rating: 1000}
		if err := q.CreatePlayer(ctx, &p); err != nil {
			return err
		}
		return boom
	})
	assert.True(t, errors.Is(err, boom))

	players, err := store.ListPlayers(ctx)
	require.NoError(t, err)
	assert.Empty(t, players, "the insert should have been rolled back")
}

func TestSeasons(t *testing.T) {
	store, _ := setupTestDB(t)
	ctx := context.Background()

	first, err := store.CurrentSeason(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Season 1", first.Name)

	now := club.NewTimestamp(time.Now())
	second, err := store.StartSeason(ctx, "Season 2", now)
	require.NoError(t, err)

	current, err := store.CurrentSeason(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, current.ID)

	seasons, err := store.ListSeasons(ctx)
	require.NoError(t, err)
	require.Len(t, seasons, 2)
	require.NotNil(t, seasons[0].EndedAt)
	assert.Equal(t, now, *seasons[0].EndedAt)
	assert.Nil(t, seasons[1].EndedAt)
}
