package pubsub

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

const publishTimeout = 10 * time.Second

var (
	_ PubSubClient = (*Client)(nil)
	_ PubSubClient = (*LocalClient)(nil)
)

// New connects to Cloud Pub/Sub for projectID.
func New(ctx context.Context, projectID string) (*Client, error) {
	pubSubC, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}
	return &Client{client: pubSubC}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) SendMessage(topic EventType, data any) error {
	msgpackData, err := msgpack.Marshal(data)
	if err != nil {
		log.Error("MessagePack marshal error", "error", err, "topic", topic)
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	result := c.client.Topic(string(topic)).Publish(ctx, &pubsub.Message{Data: msgpackData})
	serverID, err := result.Get(ctx)
	if err != nil {
		log.Error("Failed to publish message", "error", err, "topic", topic)
		return err
	}
	log.Info("Published message", "topic", topic, "serverID", serverID)
	return nil
}

func (c *Client) ProcessMessage(data []byte, returnValue any) error {
	return decode(data, returnValue)
}

// NewLocal returns an event bus that calls subscribers synchronously.
func NewLocal() *LocalClient {
	return &LocalClient{handlers: make(map[EventType][]Handler)}
}

// Subscribe registers h for every message sent to topic.
func (c *LocalClient) Subscribe(topic EventType, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[topic] = append(c.handlers[topic], h)
}

// SendMessage encodes data and hands it to each subscriber of topic. Subscriber failures are
// logged and do not fail the send.
func (c *LocalClient) SendMessage(topic EventType, data any) error {
	msgpackData, err := msgpack.Marshal(data)
	if err != nil {
		log.Error("MessagePack marshal error", "error", err, "topic", topic)
		return err
	}

	c.mu.RLock()
	handlers := c.handlers[topic]
	c.mu.RUnlock()

	if len(handlers) == 0 {
		log.Debug("No subscribers for topic", "topic", topic)
		return nil
	}
	for _, h := range handlers {
		if err := h(msgpackData); err != nil {
			log.Error("Subscriber failed to handle message", "error", err, "topic", topic)
		}
	}
	return nil
}

func (c *LocalClient) ProcessMessage(data []byte, returnValue any) error {
	return decode(data, returnValue)
}

// decode unmarshals MessagePack data into the provided pointer.
func decode(data []byte, returnValue any) error {
	if err := msgpack.Unmarshal(data, returnValue); err != nil {
		log.Error("MessagePack unmarshal error", "error", err)
		return err
	}
	return nil
}
