package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// drainUntilClosed reads the client's send queue until the hub closes it,
// returning the frames that were queued.
func drainUntilClosed(t *testing.T, client *Client) [][]byte {
	t.Helper()

	var frames [][]byte
	deadline := time.After(2 * time.Second)
	for {
		select {
		case frame, ok := <-client.Send:
			if !ok {
				return frames
			}
			frames = append(frames, frame)
		case <-deadline:
			t.Fatal("send queue never closed")
		}
	}
}

func TestHubRegisterUnregister(t *testing.T) {
	broker := NewBroker(zap.NewNop())
	hub := NewHub(broker, nil, zap.NewNop())
	go hub.Run()

	client := NewClient(hub, nil, "s1", "p1")
	hub.Register(client)
	waitFor(t, func() bool { return hub.OnlineCount() == 1 })
	assert.Equal(t, 1, broker.SubscriberCount("s1"))

	hub.Unregister(client)
	frames := drainUntilClosed(t, client)
	// the welcome frame was queued before the disconnect
	require.NotEmpty(t, frames)

	assert.Equal(t, 0, hub.OnlineCount())
	assert.Equal(t, 0, broker.SubscriberCount("s1"))
}

// A client that disconnects while its registration is still queued must be
// fully released: no hub entry and no broker channel left behind.
func TestHubImmediateDisconnect(t *testing.T) {
	broker := NewBroker(zap.NewNop())
	hub := NewHub(broker, nil, zap.NewNop())
	go hub.Run()

	client := NewClient(hub, nil, "s1", "p1")
	hub.Register(client)
	hub.Unregister(client)

	drainUntilClosed(t, client)
	waitFor(t, func() bool {
		return hub.OnlineCount() == 0 && broker.SubscriberCount("s1") == 0
	})
}

// Unregister must release the broker channel even for a client whose
// registration never went through at all.
func TestHubUnregisterUnregisteredClient(t *testing.T) {
	broker := NewBroker(zap.NewNop())
	hub := NewHub(broker, nil, zap.NewNop())
	go hub.Run()

	client := NewClient(hub, nil, "s1", "p1")
	require.Equal(t, 1, broker.SubscriberCount("s1"))

	hub.Unregister(client)
	waitFor(t, func() bool { return broker.SubscriberCount("s1") == 0 })
	assert.Equal(t, 0, hub.OnlineCount())
}

// Publishing after a disconnect must not deliver anything to the departed
// client, and must not panic on its closed send queue.
func TestHubNoDeliveryAfterUnregister(t *testing.T) {
	broker := NewBroker(zap.NewNop())
	hub := NewHub(broker, nil, zap.NewNop())
	go hub.Run()

	client := NewClient(hub, nil, "s1", "p1")
	hub.Register(client)
	waitFor(t, func() bool { return hub.OnlineCount() == 1 })

	hub.Unregister(client)
	drainUntilClosed(t, client)

	for i := 0; i < 20; i++ {
		broker.Publish(NewChangeEvent(TablePlayers, EventInsert, "s1", nil, nil))
	}
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, broker.SubscriberCount("s1"))
}

// Events published before registration completes are buffered on the
// client's channel and delivered once the hub subscribes it.
func TestHubBuffersEventsBeforeRegister(t *testing.T) {
	broker := NewBroker(zap.NewNop())
	hub := NewHub(broker, nil, zap.NewNop())
	go hub.Run()

	client := NewClient(hub, nil, "s1", "p1")
	broker.Publish(NewChangeEvent(TablePlayers, EventInsert, "s1", nil, nil))

	hub.Register(client)

	waitFor(t, func() bool { return len(client.Send) >= 2 })

	hub.Unregister(client)
	frames := drainUntilClosed(t, client)
	// the welcome frame plus the buffered change event
	require.GreaterOrEqual(t, len(frames), 2)
}
