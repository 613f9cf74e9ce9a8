package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(seasonsCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(matchesCmd)
	rootCmd.AddCommand(resetCmd)

	playersCmd.AddCommand(playersAddCmd, playersRemoveCmd, playersRatingCmd, playersPositionCmd)
	playersCmd.AddCommand(playerStatsCmd("summary", "Show a player's summary"))
	playersCmd.AddCommand(playerStatsCmd("partners", "Show a player's best partners"))
	playersCmd.AddCommand(playerStatsCmd("opponents", "Show a player's toughest opponents"))
	playersCmd.AddCommand(playerStatsCmd("recent", "Show a player's recent results"))
	playersCmd.AddCommand(playerStatsCmd("rating-history", "Show a player's rating over time"))
	playersAddCmd.Flags().String("position", "attack", "Preferred position (attack or defense)")

	matchesCmd.AddCommand(matchesAddCmd, matchesRemoveCmd)
	matchesCmd.Flags().Int("limit", 20, "Number of matches to list")
	matchesAddCmd.Flags().String("team1", "", "Team 1 as attacker_id,defender_id")
	matchesAddCmd.Flags().String("team2", "", "Team 2 as attacker_id,defender_id")
	_ = matchesAddCmd.MarkFlagRequired("team1")
	_ = matchesAddCmd.MarkFlagRequired("team2")
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/leaderboard")
	},
}

var seasonsCmd = &cobra.Command{
	Use:   "seasons",
	Short: "List seasons",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/seasons")
	},
}

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List players",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/players")
	},
}

var playersAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a player",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		position, _ := cmd.Flags().GetString("position")
		return performRequest(http.MethodPost, "/players", map[string]string{
			"name":               args[0],
			"preferred_position": position,
		})
	},
}

var playersRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a player who has no matches",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodDelete, "/players/"+args[0], nil)
	},
}

var playersRatingCmd = &cobra.Command{
	Use:   "set-rating <id> <rating>",
	Short: "Override a player's rating",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rating, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid rating %q: %w", args[1], err)
		}
		return performRequest(http.MethodPut, "/players/"+args[0]+"/rating", map[string]float64{"rating": rating})
	},
}

var playersPositionCmd = &cobra.Command{
	Use:   "set-position <id> <attack|defense>",
	Short: "Change a player's preferred position",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPut, "/players/"+args[0]+"/position", map[string]string{"preferred_position": args[1]})
	},
}

func playerStatsCmd(name, short string) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return performGetRequest("/players/" + args[0] + "/" + name)
		},
	}
}

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List recent matches",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return performGetRequest("/matches?limit=" + strconv.Itoa(limit))
	},
}

var matchesAddCmd = &cobra.Command{
	Use:   "add <team1_score> <team2_score>",
	Short: "Record a finished match",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		score1, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid score %q: %w", args[0], err)
		}
		score2, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid score %q: %w", args[1], err)
		}

		team1Flag, _ := cmd.Flags().GetString("team1")
		team2Flag, _ := cmd.Flags().GetString("team2")
		team1, err := parseTeam(team1Flag)
		if err != nil {
			return err
		}
		team2, err := parseTeam(team2Flag)
		if err != nil {
			return err
		}

		return performRequest(http.MethodPost, "/matches", map[string]any{
			"team1":       team1,
			"team2":       team2,
			"team1_score": score1,
			"team2_score": score2,
		})
	},
}

var matchesRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a match without restoring ratings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodDelete, "/matches/"+args[0], nil)
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset-ratings",
	Short: "Reset every rating to 1000 and start a new season",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/admin/reset-ratings", nil)
	},
}

type seat struct {
	PlayerID int64  `json:"player_id"`
	Position string `json:"position"`
}

// parseTeam reads "attacker_id,defender_id".
func parseTeam(raw string) ([2]seat, error) {
	var team [2]seat
	var attacker, defender int64
	if _, err := fmt.Sscanf(raw, "%d,%d", &attacker, &defender); err != nil {
		return team, fmt.Errorf("invalid team %q, expected attacker_id,defender_id: %w", raw, err)
	}
	team[0] = seat{PlayerID: attacker, Position: "attack"}
	team[1] = seat{PlayerID: defender, Position: "defense"}
	return team, nil
}

func performGetRequest(endpoint string) error {
	return performRequest(http.MethodGet, endpoint, nil)
}

func performRequest(method, endpoint string, payload any) error {
	target, err := url.Parse(host + endpoint)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if dryRun {
		q := target.Query()
		q.Set("dry_run", "true")
		target.RawQuery = q.Encode()
	}
	fmt.Printf("Making %s request to %s\n", method, target)

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, target.String(), body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(respBody))

	return nil
}
