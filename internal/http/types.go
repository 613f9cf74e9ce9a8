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

type Server struct {
	DB             handlers.Pinger
	Ledger         *ledger.Ledger
	Stats          *stats.Aggregator
	MetricsHandler http.Handler
	Cfg            config.Config
	Notifier       notifier.Notifier
	Processor      *processor.Processor
	Router         *chi.Mux
}
