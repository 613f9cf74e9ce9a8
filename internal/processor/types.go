package processor

import (
	"github.com/mauv0809/babyfoot-ledger/internal/metrics"
	"github.com/mauv0809/babyfoot-ledger/internal/pubsub"
)

// Processor reacts to ledger events by notifying the club.
type Processor struct {
	pubsub   pubsub.PubSubClient
	notifier Notifier
	metrics  metrics.Metrics
}
