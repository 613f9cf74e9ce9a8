package ledger

import (
	"context"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/mauv0809/babyfoot-ledger/internal/club"
	"github.com/mauv0809/babyfoot-ledger/internal/metrics"
	"github.com/mauv0809/babyfoot-ledger/internal/pubsub"
	"github.com/mauv0809/babyfoot-ledger/internal/rating"
)

// New creates a Ledger writing to store. Events are published on pubsub after every
// successful write.
func New(store club.ClubStore, pubsub pubsub.PubSubClient, metrics metrics.Metrics) *Ledger {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &Ledger{
		store:    store,
		pubsub:   pubsub,
		metrics:  metrics,
		validate: validate,
		now:      time.Now,
	}
}

type dryRunKey struct{}

// WithDryRun marks ctx so that events published by writes made with it ask consumers not to
// post anywhere.
func WithDryRun(ctx context.Context, dryRun bool) context.Context {
	return context.WithValue(ctx, dryRunKey{}, dryRun)
}

// IsDryRun reports whether ctx was marked with WithDryRun.
func IsDryRun(ctx context.Context) bool {
	dryRun, ok := ctx.Value(dryRunKey{}).(bool)
	return ok && dryRun
}

func (l *Ledger) validateInput(ctx context.Context, payload any) error {
	if err := l.validate.StructCtx(ctx, payload); err != nil {
		return describeValidation(err)
	}
	return nil
}

// AddPlayer registers a new player at the default rating.
func (l *Ledger) AddPlayer(ctx context.Context, name string, position club.Position) (*club.Player, error) {
	in := newPlayer{Name: strings.TrimSpace(name), Position: position}
	if err := l.validateInput(ctx, in); err != nil {
		return nil, err
	}

	now := club.NewTimestamp(l.now())
	player := &club.Player{
		Name:              in.Name,
		PreferredPosition: in.Position,
		Rating:            rating.DefaultRating,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := l.store.CreatePlayer(ctx, player); err != nil {
		if errors.Is(err, club.ErrDuplicate) {
			return nil, invalidf("player name %q is already taken", in.Name)
		}
		return nil, txError("add player", err)
	}
	return player, nil
}

// RemovePlayer deletes a player together with every match they played and all history
// rows of those matches. Other participants keep their current ratings.
func (l *Ledger) RemovePlayer(ctx context.Context, id int64) error {
	var removedMatches int
	err := l.store.Transaction(ctx, func(q club.Queries) error {
		if _, err := q.GetPlayer(ctx, id); err != nil {
			return err
		}

		matches, err := q.ListMatchesForPlayer(ctx, id)
		if err != nil {
			return err
		}
		matchIDs := make([]int64, 0, len(matches))
		for _, m := range matches {
			matchIDs = append(matchIDs, m.ID)
		}

		if err := q.DeleteRatingHistoryForMatches(ctx, matchIDs); err != nil {
			return err
		}
		if err := q.DeleteMatches(ctx, matchIDs); err != nil {
			return err
		}
		if err := q.DeleteRatingHistoryForPlayer(ctx, id); err != nil {
			return err
		}
		removedMatches = len(matchIDs)
		return q.DeletePlayer(ctx, id)
	})
	if err != nil {
		return txError("remove player", err)
	}

	log.Info("Removed player", "playerID", id, "matches_removed", removedMatches)
	if removedMatches > 0 {
		log.Warn("Ratings of other participants were not restored", "playerID", id, "matches_removed", removedMatches)
	}
	return nil
}

// EditRating overrides a player's rating. No history row is written.
func (l *Ledger) EditRating(ctx context.Context, id int64, newRating float64) (*club.Player, error) {
	if err := l.validateInput(ctx, ratingOverride{Rating: newRating}); err != nil {
		return nil, err
	}
	if err := l.store.UpdatePlayerRating(ctx, id, newRating, club.NewTimestamp(l.now())); err != nil {
		return nil, txError("edit rating", err)
	}

	log.Info("Rating overridden", "playerID", id, "rating", newRating)
	return l.store.GetPlayer(ctx, id)
}

// EditPosition changes a player's preferred position.
func (l *Ledger) EditPosition(ctx context.Context, id int64, position club.Position) (*club.Player, error) {
	if err := l.validateInput(ctx, positionOverride{Position: position}); err != nil {
		return nil, err
	}
	if err := l.store.UpdatePlayerPosition(ctx, id, position, club.NewTimestamp(l.now())); err != nil {
		return nil, txError("edit position", err)
	}
	return l.store.GetPlayer(ctx, id)
}

// ResetAllRatings puts every player back to the default rating with empty counters and opens
// a new season. Matches and history are kept.
func (l *Ledger) ResetAllRatings(ctx context.Context) (*ResetResult, error) {
	now := club.NewTimestamp(l.now())
	result := &ResetResult{}

	err := l.store.Transaction(ctx, func(q club.Queries) error {
		n, err := q.ResetRatings(ctx, rating.DefaultRating, now)
		if err != nil {
			return err
		}
		seasons, err := q.ListSeasons(ctx)
		if err != nil {
			return err
		}
		season, err := q.StartSeason(ctx, seasonName(len(seasons)+1), now)
		if err != nil {
			return err
		}

		result.PlayersReset = n
		result.Season = *season
		return nil
	})
	if err != nil {
		return nil, txError("reset ratings", err)
	}

	l.metrics.IncRatingResets()
	log.Info("Reset all ratings", "players", result.PlayersReset, "season", result.Season.Name)
	result.DryRun = IsDryRun(ctx)
	l.publish(pubsub.EventRatingsReset, result)
	return result, nil
}

func seasonName(n int) string {
	return "Season " + strconv.Itoa(n)
}

func (l *Ledger) publish(topic pubsub.EventType, payload any) {
	if l.pubsub == nil {
		return
	}
	if err := l.pubsub.SendMessage(topic, payload); err != nil {
		log.Error("Failed to publish ledger event", "error", err, "topic", topic)
	}
}
