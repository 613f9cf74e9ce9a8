package handlers

import (
	"net/http"

	"github.com/mauv0809/babyfoot-ledger/internal/stats"
)

func LeaderboardHandler(agg *stats.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := agg.Leaderboard(r.Context())
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, entries)
	}
}

func ListSeasonsHandler(agg *stats.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		seasons, err := agg.ListSeasons(r.Context())
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, seasons)
	}
}

func PlayerSummaryHandler(agg *stats.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			badRequest(w, "Invalid player id")
			return
		}
		summary, err := agg.PlayerSummary(r.Context(), id)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, summary)
	}
}

func RatingHistoryHandler(agg *stats.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			badRequest(w, "Invalid player id")
			return
		}
		points, err := agg.RatingHistory(r.Context(), id)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, points)
	}
}

// playerListHandler serves the per-player endpoints that take a limit.
func playerListHandler[T any](fallback int, list func(r *http.Request, id int64, limit int) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			badRequest(w, "Invalid player id")
			return
		}
		limit, ok := queryLimit(r, fallback)
		if !ok {
			badRequest(w, "Invalid limit")
			return
		}
		items, err := list(r, id, limit)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, items)
	}
}

func BestPartnersHandler(agg *stats.Aggregator) http.HandlerFunc {
	return playerListHandler(5, func(r *http.Request, id int64, limit int) ([]stats.PartnerStats, error) {
		return agg.BestPartners(r.Context(), id, limit)
	})
}

func ToughestOpponentsHandler(agg *stats.Aggregator) http.HandlerFunc {
	return playerListHandler(5, func(r *http.Request, id int64, limit int) ([]stats.OpponentStats, error) {
		return agg.ToughestOpponents(r.Context(), id, limit)
	})
}

func RecentPerformanceHandler(agg *stats.Aggregator) http.HandlerFunc {
	return playerListHandler(10, func(r *http.Request, id int64, limit int) ([]stats.RecentResult, error) {
		return agg.RecentPerformance(r.Context(), id, limit)
	})
}
