package http

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/mauv0809/babyfoot-ledger/internal/club"
	"github.com/mauv0809/babyfoot-ledger/internal/config"
	"github.com/mauv0809/babyfoot-ledger/internal/database"
	"github.com/mauv0809/babyfoot-ledger/internal/ledger"
	"github.com/mauv0809/babyfoot-ledger/internal/metrics"
	"github.com/mauv0809/babyfoot-ledger/internal/notifier"
	slacknotifier "github.com/mauv0809/babyfoot-ledger/internal/notifier/slack"
	"github.com/mauv0809/babyfoot-ledger/internal/processor"
	"github.com/mauv0809/babyfoot-ledger/internal/pubsub"
	"github.com/mauv0809/babyfoot-ledger/internal/stats"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

const testSlackSigningSecret = "test-signing-secret"

type testServer struct {
	*Server
	events *notifier.Mock
}

// setupTestServer initializes a new server with an in-memory database. Slack commands use the real
// formatter; events pushed to the processor land on a mock notifier.
func setupTestServer(t *testing.T, slackSigningSecret string) *testServer {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	t.Cleanup(dbTeardown)

	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	metricsHandler := metrics.NewMetricsHandler(reg)

	store := club.New(db)
	bus := pubsub.NewMock()
	l := ledger.New(store, bus, metricsSvc)
	agg := stats.New(store)

	events := notifier.NewMock()
	proc := processor.New(events, metricsSvc, bus)
	slackFormatter := slacknotifier.NewNotifierWithAPI(nil, "", metricsSvc)

	cfg := config.Config{Slack: config.SlackConfig{SigningSecret: slackSigningSecret}}
	return &testServer{
		Server: NewServer(db, l, agg, metricsHandler, cfg, slackFormatter, proc),
		events: events,
	}
}

func (s *testServer) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

// seedPlayers adds attackers through the API and returns their ids.
func (s *testServer) seedPlayers(t *testing.T, names ...string) []int64 {
	t.Helper()
	ids := make([]int64, 0, len(names))
	for _, name := range names {
		rr := s.do(t, http.MethodPost, "/players", map[string]string{"name": name, "preferred_position": "attack"})
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		ids = append(ids, decodeBody[club.Player](t, rr).ID)
	}
	return ids
}

func matchBody(ids []int64, score1, score2 int) map[string]any {
	seat := func(id int64, pos string) map[string]any {
		return map[string]any{"player_id": id, "position": pos}
	}
	return map[string]any{
		"team1":       []any{seat(ids[0], "attack"), seat(ids[1], "defense")},
		"team2":       []any{seat(ids[2], "attack"), seat(ids[3], "defense")},
		"team1_score": score1,
		"team2_score": score2,
	}
}

// createSlackCommandRequest creates an http.Request suitable for testing Slack slash commands,
// including the necessary signature and timestamp headers for verification.
func createSlackCommandRequest(t *testing.T, targetURL string, form url.Values, signingSecret string) *http.Request {
	t.Helper()

	bodyBytes := []byte(form.Encode())
	req, err := http.NewRequest(http.MethodPost, targetURL, bytes.NewReader(bodyBytes))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	timestamp := time.Now().Unix()
	req.Header.Set("X-Slack-Request-Timestamp", strconv.FormatInt(timestamp, 10))

	baseString := fmt.Sprintf("v0:%d:%s", timestamp, string(bodyBytes))
	h := hmac.New(sha256.New, []byte(signingSecret))
	h.Write([]byte(baseString))
	req.Header.Set("X-Slack-Signature", "v0="+hex.EncodeToString(h.Sum(nil)))

	return req
}

func TestHealthCheckHandler(t *testing.T) {
	server := setupTestServer(t, "")

	rr := server.do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rr.Code, "handler returned wrong status code")
	assert.Equal(t, "OK!", rr.Body.String(), "handler returned unexpected body")
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestRequestIDIsEchoed(t *testing.T) {
	server := setupTestServer(t, "")

	req, err := http.NewRequest(http.MethodGet, "/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "abc-123")

	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	assert.Equal(t, "abc-123", rr.Header().Get("X-Request-ID"))
}

func TestMetricsHandler(t *testing.T) {
	server := setupTestServer(t, "")
	ids := server.seedPlayers(t, "Alice", "Bob", "Carol", "Dave")
	require.Equal(t, http.StatusCreated, server.do(t, http.MethodPost, "/matches", matchBody(ids, 10, 5)).Code)

	rr := server.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "babyfoot_matches_committed_total 1")
}

func TestPlayerHandlers(t *testing.T) {
	server := setupTestServer(t, "")

	t.Run("adds a player", func(t *testing.T) {
		rr := server.do(t, http.MethodPost, "/players", map[string]string{"name": "  Morten Voss ", "preferred_position": "defense"})
		require.Equal(t, http.StatusCreated, rr.Code)

		player := decodeBody[club.Player](t, rr)
		assert.Equal(t, "Morten Voss", player.Name)
		assert.Equal(t, club.PositionDefense, player.PreferredPosition)
		assert.Equal(t, 1000.0, player.Rating)
	})

	t.Run("rejects a duplicate name", func(t *testing.T) {
		rr := server.do(t, http.MethodPost, "/players", map[string]string{"name": "Morten Voss", "preferred_position": "attack"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "already taken")
	})

	t.Run("rejects an unknown position", func(t *testing.T) {
		rr := server.do(t, http.MethodPost, "/players", map[string]string{"name": "Goalie", "preferred_position": "goal"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "preferred_position must be one of: attack defense")
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/players", strings.NewReader("{"))
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("lists players", func(t *testing.T) {
		rr := server.do(t, http.MethodGet, "/players", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		players := decodeBody[[]club.Player](t, rr)
		require.Len(t, players, 1)
		assert.Equal(t, "Morten Voss", players[0].Name)
	})

	t.Run("edits rating and position", func(t *testing.T) {
		players := decodeBody[[]club.Player](t, server.do(t, http.MethodGet, "/players", nil))
		id := players[0].ID

		rr := server.do(t, http.MethodPut, fmt.Sprintf("/players/%d/rating", id), map[string]float64{"rating": 1234})
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 1234.0, decodeBody[club.Player](t, rr).Rating)

		rr = server.do(t, http.MethodPut, fmt.Sprintf("/players/%d/rating", id), map[string]float64{"rating": 50})
		assert.Equal(t, http.StatusBadRequest, rr.Code)

		rr = server.do(t, http.MethodPut, fmt.Sprintf("/players/%d/position", id), map[string]string{"preferred_position": "attack"})
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, club.PositionAttack, decodeBody[club.Player](t, rr).PreferredPosition)
	})

	t.Run("unknown and invalid ids", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, server.do(t, http.MethodPut, "/players/999/rating", map[string]float64{"rating": 1200}).Code)
		assert.Equal(t, http.StatusNotFound, server.do(t, http.MethodGet, "/players/999/summary", nil).Code)
		assert.Equal(t, http.StatusBadRequest, server.do(t, http.MethodGet, "/players/abc/summary", nil).Code)
		assert.Equal(t, http.StatusBadRequest, server.do(t, http.MethodGet, "/players/1/partners?limit=-2", nil).Code)
	})

	t.Run("removes a player", func(t *testing.T) {
		players := decodeBody[[]club.Player](t, server.do(t, http.MethodGet, "/players", nil))
		rr := server.do(t, http.MethodDelete, fmt.Sprintf("/players/%d", players[0].ID), nil)
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, http.StatusNotFound, server.do(t, http.MethodDelete, fmt.Sprintf("/players/%d", players[0].ID), nil).Code)
	})
}

func TestMatchHandlers(t *testing.T) {
	server := setupTestServer(t, "")
	ids := server.seedPlayers(t, "Alice", "Bob", "Carol", "Dave")

	var matchID int64
	t.Run("commits a match", func(t *testing.T) {
		rr := server.do(t, http.MethodPost, "/matches", matchBody(ids, 10, 5))
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

		result := decodeBody[ledger.MatchResult](t, rr)
		matchID = result.Match.ID
		assert.Equal(t, 1, result.Match.WinnerTeam)
		assert.Equal(t, 50, result.Transfer.PointsEffective)
		require.Len(t, result.Changes, 4)
		assert.Equal(t, 1050.0, result.Changes[0].RatingAfter)
		assert.Equal(t, 950.0, result.Changes[3].RatingAfter)
	})

	t.Run("rejects a tie", func(t *testing.T) {
		rr := server.do(t, http.MethodPost, "/matches", matchBody(ids, 7, 7))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "a match cannot end in a tie")
	})

	t.Run("rejects a repeated player", func(t *testing.T) {
		rr := server.do(t, http.MethodPost, "/matches", matchBody([]int64{ids[0], ids[0], ids[2], ids[3]}, 10, 2))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "all participants must be unique")
	})

	t.Run("unknown player is not found", func(t *testing.T) {
		rr := server.do(t, http.MethodPost, "/matches", matchBody([]int64{ids[0], ids[1], ids[2], 999}, 10, 2))
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Contains(t, rr.Body.String(), "player 999")
	})

	t.Run("lists matches with names", func(t *testing.T) {
		rr := server.do(t, http.MethodGet, "/matches?limit=5", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		matches := decodeBody[[]stats.MatchSummary](t, rr)
		require.Len(t, matches, 1)
		assert.Equal(t, "Alice", matches[0].Team1Player1Name)
		assert.Equal(t, "Dave", matches[0].Team2Player2Name)
	})

	t.Run("serves leaderboard and player stats", func(t *testing.T) {
		board := decodeBody[[]stats.LeaderboardEntry](t, server.do(t, http.MethodGet, "/leaderboard", nil))
		require.Len(t, board, 4)
		assert.Equal(t, "Alice", board[0].PlayerName)
		assert.Equal(t, 1, board[0].Wins)

		summary := decodeBody[stats.PlayerSummary](t, server.do(t, http.MethodGet, fmt.Sprintf("/players/%d/summary", ids[0]), nil))
		assert.Equal(t, 1, summary.Attack.GamesPlayed)

		partners := decodeBody[[]stats.PartnerStats](t, server.do(t, http.MethodGet, fmt.Sprintf("/players/%d/partners", ids[0]), nil))
		require.Len(t, partners, 1)
		assert.Equal(t, "Bob", partners[0].PartnerName)

		opponents := decodeBody[[]stats.OpponentStats](t, server.do(t, http.MethodGet, fmt.Sprintf("/players/%d/opponents?limit=1", ids[0]), nil))
		assert.Len(t, opponents, 1)

		recent := decodeBody[[]stats.RecentResult](t, server.do(t, http.MethodGet, fmt.Sprintf("/players/%d/recent", ids[2]), nil))
		require.Len(t, recent, 1)
		assert.False(t, recent[0].Won)

		history := decodeBody[[]stats.RatingPoint](t, server.do(t, http.MethodGet, fmt.Sprintf("/players/%d/rating-history", ids[1]), nil))
		require.Len(t, history, 1)
		assert.Equal(t, 1050.0, history[0].Rating)
	})

	t.Run("removes a match", func(t *testing.T) {
		rr := server.do(t, http.MethodDelete, fmt.Sprintf("/matches/%d", matchID), nil)
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, http.StatusNotFound, server.do(t, http.MethodDelete, fmt.Sprintf("/matches/%d", matchID), nil).Code)
	})
}

func TestResetRatingsHandler(t *testing.T) {
	server := setupTestServer(t, "")
	server.seedPlayers(t, "Alice", "Bob")

	rr := server.do(t, http.MethodPost, "/admin/reset-ratings", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	result := decodeBody[ledger.ResetResult](t, rr)
	assert.Equal(t, int64(2), result.PlayersReset)
	assert.Equal(t, "Season 2", result.Season.Name)

	seasons := decodeBody[[]club.Season](t, server.do(t, http.MethodGet, "/seasons", nil))
	assert.Len(t, seasons, 2)
}

func TestPubSubPushHandler(t *testing.T) {
	push := func(t *testing.T, server *testServer, topic string, data string) *httptest.ResponseRecorder {
		var msg struct {
			Message struct {
				Data string `json:"data"`
			} `json:"message"`
		}
		msg.Message.Data = data
		return server.do(t, http.MethodPost, "/pubsub/"+topic, msg)
	}

	t.Run("hands a committed match to the processor", func(t *testing.T) {
		server := setupTestServer(t, "")
		payload, err := msgpack.Marshal(&ledger.MatchResult{Match: club.Match{ID: 42, WinnerTeam: 2}})
		require.NoError(t, err)

		rr := push(t, server, "match-committed", base64.StdEncoding.EncodeToString(payload))
		assert.Equal(t, http.StatusOK, rr.Code)
		require.Len(t, server.events.SendMatchResultCalls, 1)
		assert.Equal(t, int64(42), server.events.SendMatchResultCalls[0].Match.ID)
	})

	t.Run("unknown topic", func(t *testing.T) {
		server := setupTestServer(t, "")
		rr := push(t, server, "ball-boy", "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("invalid base64", func(t *testing.T) {
		server := setupTestServer(t, "")
		rr := push(t, server, "match-removed", "!!not-base64!!")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Empty(t, server.events.SendMatchRemovedCalls)
	})
}

func TestLeaderboardCommandHandler(t *testing.T) {
	server := setupTestServer(t, testSlackSigningSecret)
	server.seedPlayers(t, "Player A", "Player B")

	req := createSlackCommandRequest(t, "/slack/command/leaderboard", url.Values{}, testSlackSigningSecret)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var msg slack.Message
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &msg))
	assert.Contains(t, rr.Body.String(), "Player A")
}

func TestPlayerStatsCommandHandler(t *testing.T) {
	server := setupTestServer(t, testSlackSigningSecret)
	server.seedPlayers(t, "Morten Voss", "Player Two", "Player Three", "Player Four")

	t.Run("handles found player", func(t *testing.T) {
		form := url.Values{}
		form.Set("text", "morten voss")

		req := createSlackCommandRequest(t, "/slack/command/player-stats", form, testSlackSigningSecret)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "Stats for Morten Voss")
	})

	t.Run("handles not found player", func(t *testing.T) {
		form := url.Values{}
		form.Set("text", "Unknown")

		req := createSlackCommandRequest(t, "/slack/command/player-stats", form, testSlackSigningSecret)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "couldn't find a player matching")
	})

	t.Run("handles missing player name", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/player-stats", url.Values{}, testSlackSigningSecret)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("rejects request with invalid signature", func(t *testing.T) {
		form := url.Values{}
		form.Set("text", "Morten")

		req := createSlackCommandRequest(t, "/slack/command/player-stats", form, testSlackSigningSecret)
		req.Header.Set("X-Slack-Signature", "v0=invalid-signature")

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("rejects request with missing signature", func(t *testing.T) {
		form := url.Values{}
		form.Set("text", "Morten")

		req := createSlackCommandRequest(t, "/slack/command/player-stats", form, testSlackSigningSecret)
		req.Header.Del("X-Slack-Signature")

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("rejects request with outdated timestamp", func(t *testing.T) {
		form := url.Values{}
		form.Set("text", "Morten")

		req := createSlackCommandRequest(t, "/slack/command/player-stats", form, testSlackSigningSecret)
		req.Header.Set("X-Slack-Request-Timestamp", strconv.FormatInt(time.Now().Add(-6*time.Minute).Unix(), 10))

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestDryRunReachesNotifier(t *testing.T) {
	db, dbTeardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	t.Cleanup(dbTeardown)

	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	store := club.New(db)

	bus := pubsub.NewLocal()
	events := notifier.NewMock()
	proc := processor.New(events, metricsSvc, bus)
	proc.Subscribe(bus)

	server := &testServer{
		Server: NewServer(db, ledger.New(store, bus, metricsSvc), stats.New(store), metrics.NewMetricsHandler(reg),
			config.Config{}, slacknotifier.NewNotifierWithAPI(nil, "", metricsSvc), proc),
		events: events,
	}
	ids := server.seedPlayers(t, "Alice", "Bob", "Carol", "Dave")

	t.Run("commit with dry_run", func(t *testing.T) {
		events.Reset()
		rr := server.do(t, http.MethodPost, "/matches?dry_run=true", matchBody(ids, 10, 5))
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

		require.Len(t, events.SendMatchResultCalls, 1)
		assert.Equal(t, []bool{true}, events.DryRuns)
	})

	t.Run("commit without dry_run", func(t *testing.T) {
		events.Reset()
		rr := server.do(t, http.MethodPost, "/matches", matchBody(ids, 3, 10))
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

		require.Len(t, events.SendMatchResultCalls, 1)
		assert.Equal(t, []bool{false}, events.DryRuns)
	})

	t.Run("remove and reset with dry_run", func(t *testing.T) {
		matches := decodeBody[[]stats.MatchSummary](t, server.do(t, http.MethodGet, "/matches", nil))
		require.NotEmpty(t, matches)

		events.Reset()
		require.Equal(t, http.StatusNoContent, server.do(t, http.MethodDelete, fmt.Sprintf("/matches/%d?dry_run=true", matches[0].ID), nil).Code)
		require.Equal(t, http.StatusOK, server.do(t, http.MethodPost, "/admin/reset-ratings?dry_run=true", nil).Code)

		assert.Len(t, events.SendMatchRemovedCalls, 1)
		assert.Len(t, events.SendSeasonStartedCalls, 1)
		assert.Equal(t, []bool{true, true}, events.DryRuns)
	})
}
