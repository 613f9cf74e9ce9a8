package pubsub

import (
	"sync"

	"cloud.google.com/go/pubsub"
)

// Client publishes to Google Cloud Pub/Sub topics named after the event type.
type Client struct {
	client *pubsub.Client
}

// LocalClient delivers events in-process to subscribed handlers.
type LocalClient struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// Handler receives the encoded payload of an event.
type Handler func(data []byte) error

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	EventMatchCommitted EventType = "match-committed"
	EventMatchRemoved   EventType = "match-removed"
	EventRatingsReset   EventType = "ratings-reset"
)

// EventTypes lists every event the ledger publishes.
var EventTypes = []EventType{EventMatchCommitted, EventMatchRemoved, EventRatingsReset}

// Valid reports whether e is a known event type.
func (e EventType) Valid() bool {
	for _, known := range EventTypes {
		if e == known {
			return true
		}
	}
	return false
}
