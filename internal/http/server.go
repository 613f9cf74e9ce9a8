package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mauv0809/babyfoot-ledger/internal/config"
	"github.com/mauv0809/babyfoot-ledger/internal/http/handlers"
	"github.com/mauv0809/babyfoot-ledger/internal/ledger"
	"github.com/mauv0809/babyfoot-ledger/internal/notifier"
	"github.com/mauv0809/babyfoot-ledger/internal/processor"
	"github.com/mauv0809/babyfoot-ledger/internal/stats"
)

func NewServer(db handlers.Pinger, l *ledger.Ledger, agg *stats.Aggregator, metricsHandler http.Handler, cfg config.Config, notifier notifier.Notifier, processor *processor.Processor) *Server {
	server := &Server{
		DB:             db,
		Ledger:         l,
		Stats:          agg,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Notifier:       notifier,
		Processor:      processor,
		Router:         chi.NewRouter(),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	r := s.Router
	r.Use(requestIDMiddleware, paramsMiddleware)

	r.Handle("/metrics", s.MetricsHandler)
	r.Get("/health", handlers.HealthCheckHandler(s.DB))
	r.Get("/leaderboard", handlers.LeaderboardHandler(s.Stats))
	r.Get("/seasons", handlers.ListSeasonsHandler(s.Stats))

	r.Route("/players", func(r chi.Router) {
		r.Get("/", handlers.ListPlayersHandler(s.Stats))
		r.Post("/", handlers.AddPlayerHandler(s.Ledger))
		r.Route("/{id}", func(r chi.Router) {
			r.Delete("/", handlers.RemovePlayerHandler(s.Ledger))
			r.Put("/rating", handlers.EditRatingHandler(s.Ledger))
			r.Put("/position", handlers.EditPositionHandler(s.Ledger))
			r.Get("/summary", handlers.PlayerSummaryHandler(s.Stats))
			r.Get("/partners", handlers.BestPartnersHandler(s.Stats))
			r.Get("/opponents", handlers.ToughestOpponentsHandler(s.Stats))
			r.Get("/recent", handlers.RecentPerformanceHandler(s.Stats))
			r.Get("/rating-history", handlers.RatingHistoryHandler(s.Stats))
		})
	})

	r.Route("/matches", func(r chi.Router) {
		r.Get("/", handlers.ListMatchesHandler(s.Stats))
		r.Post("/", handlers.CommitMatchHandler(s.Ledger))
		r.Delete("/{id}", handlers.RemoveMatchHandler(s.Ledger))
	})

	r.Post("/admin/reset-ratings", handlers.ResetRatingsHandler(s.Ledger))
	r.Post("/pubsub/{topic}", handlers.PubSubPushHandler(s.Processor))

	r.Group(func(r chi.Router) {
		r.Use(slackVerifyMiddleware(s.Cfg.Slack.SigningSecret))
		r.Post("/slack/command/leaderboard", handlers.LeaderboardCommandHandler(s.Stats, s.Notifier))
		r.Post("/slack/command/player-stats", handlers.PlayerStatsCommandHandler(s.Stats, s.Notifier))
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
