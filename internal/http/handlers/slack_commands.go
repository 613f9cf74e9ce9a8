package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/babyfoot-ledger/internal/club"
	"github.com/mauv0809/babyfoot-ledger/internal/notifier"
	"github.com/mauv0809/babyfoot-ledger/internal/stats"
	"github.com/slack-go/slack"
)

// respondWithSlackMsg is a helper to format and write a Slack message as an HTTP response.
func respondWithSlackMsg(w http.ResponseWriter, msg any) {
	slackMsg, ok := msg.(slack.Message)
	if !ok {
		http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
		log.Error("Failed to cast message to slack.Message")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(slackMsg); err != nil {
		log.Error("Failed to encode slack message to JSON", "error", err)
	}
}

func LeaderboardCommandHandler(agg *stats.Aggregator, notifier notifier.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := agg.Leaderboard(r.Context())
		if err != nil {
			http.Error(w, "Failed to get leaderboard", http.StatusInternalServerError)
			log.Error("Failed to get leaderboard", "error", err)
			return
		}

		msg, err := notifier.FormatLeaderboardResponse(entries)
		if err != nil {
			http.Error(w, "Failed to format leaderboard", http.StatusInternalServerError)
			log.Error("Failed to format leaderboard", "error", err)
			return
		}
		respondWithSlackMsg(w, msg)
	}
}

func PlayerStatsCommandHandler(agg *stats.Aggregator, notifier notifier.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}

		playerName := strings.TrimSpace(r.FormValue("text"))
		if playerName == "" {
			http.Error(w, "Player name is required.", http.StatusBadRequest)
			return
		}
		log.Info("Received player stats command", "player", playerName)

		players, err := agg.ListPlayers(r.Context())
		if err != nil {
			http.Error(w, "Failed to get players", http.StatusInternalServerError)
			log.Error("Failed to get players", "error", err)
			return
		}

		var msg any
		player, suggestions := club.MatchPlayerName(players, playerName)
		if player == nil {
			log.Warn("Could not resolve player", "player", playerName, "suggestions", len(suggestions))
			msg, err = notifier.FormatPlayerNotFoundResponse(playerName, suggestions)
		} else {
			var summary *stats.PlayerSummary
			summary, err = agg.PlayerSummary(r.Context(), player.ID)
			if err == nil {
				msg, err = notifier.FormatPlayerSummaryResponse(summary)
			}
		}

		if err != nil {
			http.Error(w, "Failed to format player stats", http.StatusInternalServerError)
			log.Error("Failed to format player stats", "error", err)
			return
		}
		respondWithSlackMsg(w, msg)
	}
}
