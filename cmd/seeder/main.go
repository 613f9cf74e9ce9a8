package main

import (
	"context"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/babyfoot-ledger/internal/club"
	"github.com/mauv0809/babyfoot-ledger/internal/config"
	"github.com/mauv0809/babyfoot-ledger/internal/database"
	"github.com/mauv0809/babyfoot-ledger/internal/ledger"
	"github.com/mauv0809/babyfoot-ledger/internal/metrics"
	"github.com/mauv0809/babyfoot-ledger/internal/pubsub"
)

var seedPlayers = []struct {
	Name     string
	Position club.Position
}{
	{"Seeder Player A", club.PositionAttack},
	{"Seeder Player B", club.PositionDefense},
	{"Seeder Player C", club.PositionAttack},
	{"Seeder Player D", club.PositionDefense},
	{"Seeder Player E", club.PositionAttack},
	{"Seeder Player F", club.PositionDefense},
}

const numMatches = 500

func main() {
	log.Info("Starting database seeder...")
	cfg := config.Load()
	ctx := context.Background()

	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer dbTeardown()

	store := club.New(db)
	// Matches go through the ledger so ratings and history stay consistent. Nobody listens
	// on the local bus, so seeding never posts to Slack.
	l := ledger.New(store, pubsub.NewLocal(), metrics.NewService())

	players := ensurePlayers(ctx, store, l)
	log.Info("Ensured seed players exist.", "count", len(players))

	log.Info("Preparing to commit dummy matches...", "total", numMatches)
	startTime := time.Now()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for i := 0; i < numMatches; i++ {
		picked := rng.Perm(len(players))[:4]
		input := ledger.MatchInput{
			Team1: [2]ledger.Participant{
				{PlayerID: players[picked[0]].ID, Position: club.PositionAttack},
				{PlayerID: players[picked[1]].ID, Position: club.PositionDefense},
			},
			Team2: [2]ledger.Participant{
				{PlayerID: players[picked[2]].ID, Position: club.PositionAttack},
				{PlayerID: players[picked[3]].ID, Position: club.PositionDefense},
			},
			PlayedAt: startTime.Add(-time.Duration(numMatches-i) * time.Hour),
		}

		loserScore := rng.Intn(10)
		if rng.Intn(2) == 0 {
			input.Team1Score, input.Team2Score = 10, loserScore
		} else {
			input.Team1Score, input.Team2Score = loserScore, 10
		}

		if _, err := l.CommitMatch(ctx, input); err != nil {
			log.Fatalf("Failed to commit match %d: %s", i+1, err)
		}
		if (i+1)%100 == 0 {
			log.Info("Committed batch", "completed", i+1, "total", numMatches)
		}
	}

	log.Info("Successfully committed all dummy matches.", "duration", time.Since(startTime))
}

// ensurePlayers adds any missing seed player and returns all of them.
func ensurePlayers(ctx context.Context, store club.ClubStore, l *ledger.Ledger) []club.Player {
	existing, err := store.ListPlayers(ctx)
	if err != nil {
		log.Fatalf("Failed to list players: %s", err)
	}
	byName := make(map[string]club.Player, len(existing))
	for _, p := range existing {
		byName[p.Name] = p
	}

	players := make([]club.Player, 0, len(seedPlayers))
	for _, sp := range seedPlayers {
		if p, ok := byName[sp.Name]; ok {
			players = append(players, p)
			continue
		}
		p, err := l.AddPlayer(ctx, sp.Name, sp.Position)
		if err != nil {
			log.Fatalf("Failed to add seed player %s: %s", sp.Name, err)
		}
		players = append(players, *p)
	}
	return players
}
