package processor

import (
	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/mauv0809/babyfoot-ledger/internal/ledger"
	"github.com/mauv0809/babyfoot-ledger/internal/metrics"
	"github.com/mauv0809/babyfoot-ledger/internal/pubsub"
)

// ErrUnknownEvent is returned for topics the processor has no handler for.
var ErrUnknownEvent = errors.New("unknown event type")

// New creates a new Processor.
func New(notifier Notifier, metrics metrics.Metrics, pubsub pubsub.PubSubClient) *Processor {
	return &Processor{
		pubsub:   pubsub,
		notifier: notifier,
		metrics:  metrics,
	}
}

// Subscribe registers the processor for every ledger event on an in-process bus.
func (p *Processor) Subscribe(bus *pubsub.LocalClient) {
	for _, topic := range pubsub.EventTypes {
		bus.Subscribe(topic, func(data []byte) error {
			return p.HandleMessage(topic, data, false)
		})
	}
}

// HandleMessage decodes one event payload and sends the matching notification. The
// notification is a dry run when either dryRun or the event itself asks for one.
func (p *Processor) HandleMessage(topic pubsub.EventType, data []byte, dryRun bool) error {
	log.Debug("Handling event", "topic", topic, "bytes", len(data), "dryRun", dryRun)

	var err error
	switch topic {
	case pubsub.EventMatchCommitted:
		var result ledger.MatchResult
		if err = p.pubsub.ProcessMessage(data, &result); err != nil {
			return errors.Wrapf(err, "failed to decode %s", topic)
		}
		err = p.notifier.SendMatchResult(&result, dryRun || result.DryRun)

	case pubsub.EventMatchRemoved:
		var removed ledger.MatchRemoved
		if err = p.pubsub.ProcessMessage(data, &removed); err != nil {
			return errors.Wrapf(err, "failed to decode %s", topic)
		}
		err = p.notifier.SendMatchRemoved(removed, dryRun || removed.DryRun)

	case pubsub.EventRatingsReset:
		var reset ledger.ResetResult
		if err = p.pubsub.ProcessMessage(data, &reset); err != nil {
			return errors.Wrapf(err, "failed to decode %s", topic)
		}
		err = p.notifier.SendSeasonStarted(&reset, dryRun || reset.DryRun)

	default:
		log.Warn("Unknown event type", "topic", topic)
		return errors.Wrapf(ErrUnknownEvent, "%q", topic)
	}

	if err != nil {
		log.Error("Failed to notify about event", "error", err, "topic", topic)
		return err
	}

	p.metrics.IncEventsProcessed(string(topic))
	log.Info("Processed event", "topic", topic)
	return nil
}
