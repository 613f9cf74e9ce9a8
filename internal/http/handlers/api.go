package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/babyfoot-ledger/internal/club"
	"github.com/mauv0809/babyfoot-ledger/internal/ledger"
	"github.com/mauv0809/babyfoot-ledger/internal/stats"
)

type addPlayerRequest struct {
	Name              string        `json:"name"`
	PreferredPosition club.Position `json:"preferred_position"`
}

type editRatingRequest struct {
	Rating float64 `json:"rating"`
}

type editPositionRequest struct {
	PreferredPosition club.Position `json:"preferred_position"`
}

func ListPlayersHandler(agg *stats.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := agg.ListPlayers(r.Context())
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, players)
	}
}

func AddPlayerHandler(l *ledger.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addPlayerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "Invalid JSON")
			return
		}

		player, err := l.AddPlayer(r.Context(), req.Name, req.PreferredPosition)
		if err != nil {
			respondError(w, r, err)
			return
		}
		log.Info("Added player", "playerID", player.ID, "name", player.Name)
		respondJSON(w, http.StatusCreated, player)
	}
}

func RemovePlayerHandler(l *ledger.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			badRequest(w, "Invalid player id")
			return
		}
		if err := l.RemovePlayer(r.Context(), id); err != nil {
			respondError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func EditRatingHandler(l *ledger.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			badRequest(w, "Invalid player id")
			return
		}
		var req editRatingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "Invalid JSON")
			return
		}

		player, err := l.EditRating(r.Context(), id, req.Rating)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, player)
	}
}

func EditPositionHandler(l *ledger.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			badRequest(w, "Invalid player id")
			return
		}
		var req editPositionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "Invalid JSON")
			return
		}

		player, err := l.EditPosition(r.Context(), id, req.PreferredPosition)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, player)
	}
}

func ListMatchesHandler(agg *stats.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, ok := queryLimit(r, 20)
		if !ok {
			badRequest(w, "Invalid limit")
			return
		}
		matches, err := agg.RecentMatches(r.Context(), limit)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, matches)
	}
}

func CommitMatchHandler(l *ledger.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in ledger.MatchInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			badRequest(w, "Invalid JSON")
			return
		}

		result, err := l.CommitMatch(r.Context(), in)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusCreated, result)
	}
}

func RemoveMatchHandler(l *ledger.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			badRequest(w, "Invalid match id")
			return
		}
		if err := l.RemoveMatch(r.Context(), id); err != nil {
			respondError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func ResetRatingsHandler(l *ledger.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Warn("Received request to reset all ratings")
		result, err := l.ResetAllRatings(r.Context())
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}
