package pubsub

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct {
	MatchID int64
	Names   []string
}

func TestLocalClient_DeliversToSubscribers(t *testing.T) {
	c := NewLocal()

	var received []testEvent
	c.Subscribe(EventMatchCommitted, func(data []byte) error {
		var ev testEvent
		if err := c.ProcessMessage(data, &ev); err != nil {
			return err
		}
		received = append(received, ev)
		return nil
	})
	c.Subscribe(EventMatchCommitted, func([]byte) error {
		return errors.New("subscriber failure")
	})

	err := c.SendMessage(EventMatchCommitted, testEvent{MatchID: 7, Names: []string{"Alice", "Bob"}})
	require.NoError(t, err, "a failing subscriber should not fail the send")
	require.Len(t, received, 1)
	assert.Equal(t, int64(7), received[0].MatchID)
	assert.Equal(t, []string{"Alice", "Bob"}, received[0].Names)

	require.NoError(t, c.SendMessage(EventRatingsReset, testEvent{MatchID: 1}))
	assert.Len(t, received, 1, "other topics should not reach the subscriber")
}

func TestMockPubSubClient_RecordsAndDecodes(t *testing.T) {
	m := NewMock()
	require.NoError(t, m.SendMessage(EventMatchRemoved, testEvent{MatchID: 3}))
	assert.Equal(t, []EventType{EventMatchRemoved}, m.Topics())

	local := NewLocal()
	var payload []byte
	local.Subscribe(EventMatchRemoved, func(data []byte) error {
		payload = data
		return nil
	})
	require.NoError(t, local.SendMessage(EventMatchRemoved, testEvent{MatchID: 3}))

	var ev testEvent
	require.NoError(t, m.ProcessMessage(payload, &ev))
	assert.Equal(t, int64(3), ev.MatchID)

	m.Reset()
	assert.Empty(t, m.Topics())
}

func TestEventType_Valid(t *testing.T) {
	assert.True(t, EventMatchCommitted.Valid())
	assert.False(t, EventType("assign-ball-boy").Valid())
}
