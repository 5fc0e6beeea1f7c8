package realtime

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestBrokerDeliversPerTopic(t *testing.T) {
	broker := NewBroker(zap.NewNop())

	var mu sync.Mutex
	var got []*ChangeEvent

	ch := broker.OpenChannel("s1")
	ch.OnChange(TableRounds, func(ev *ChangeEvent) {
		mu.Lock()
		got = append(got, ev)
		mu.Unlock()
	})
	ch.Subscribe()

	broker.Publish(NewChangeEvent(TableRounds, EventInsert, "s1", nil, nil))
	// a different session's event must not arrive
	broker.Publish(NewChangeEvent(TableRounds, EventInsert, "s2", nil, nil))
	// same session, unregistered table must not arrive
	broker.Publish(NewChangeEvent(TableGuesses, EventInsert, "s1", nil, nil))

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	})

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.Equal(t, "s1", got[0].SessionID)
	assert.Equal(t, TableRounds, got[0].Table)
}

func TestBrokerCatchAllHandler(t *testing.T) {
	broker := NewBroker(zap.NewNop())

	var count atomic.Int32
	ch := broker.OpenChannel("s1")
	ch.OnChange(TableAll, func(ev *ChangeEvent) { count.Add(1) })
	ch.Subscribe()

	broker.Publish(NewChangeEvent(TableSessions, EventUpdate, "s1", nil, nil))
	broker.Publish(NewChangeEvent(TablePlayers, EventInsert, "s1", nil, nil))

	waitFor(t, func() bool { return count.Load() == 2 })
}

func TestRemoveChannelStopsDelivery(t *testing.T) {
	broker := NewBroker(zap.NewNop())

	var count atomic.Int32
	ch := broker.OpenChannel("s1")
	ch.OnChange(TableAll, func(ev *ChangeEvent) { count.Add(1) })
	ch.Subscribe()

	broker.Publish(NewChangeEvent(TableSessions, EventUpdate, "s1", nil, nil))
	waitFor(t, func() bool { return count.Load() == 1 })

	broker.RemoveChannel(ch)
	assert.Equal(t, 0, broker.SubscriberCount("s1"))

	// events after release never reach the handler, buffered or not
	for i := 0; i < 10; i++ {
		broker.Publish(NewChangeEvent(TableSessions, EventUpdate, "s1", nil, nil))
	}
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), count.Load())
}

func TestRemoveChannelBeforeSubscribe(t *testing.T) {
	broker := NewBroker(zap.NewNop())

	var count atomic.Int32
	ch := broker.OpenChannel("s1")
	ch.OnChange(TableAll, func(ev *ChangeEvent) { count.Add(1) })

	// release racing an in-flight subscribe must be safe
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		ch.Subscribe()
	}()
	go func() {
		defer wg.Done()
		broker.RemoveChannel(ch)
	}()
	wg.Wait()

	broker.Publish(NewChangeEvent(TableSessions, EventUpdate, "s1", nil, nil))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), count.Load())

	// double release is a no-op
	broker.RemoveChannel(ch)
}

func TestPublishNeverBlocks(t *testing.T) {
	broker := NewBroker(zap.NewNop())

	// a channel that never subscribes fills up and starts dropping
	broker.OpenChannel("s1")

	done := make(chan struct{})
	go func() {
		for i := 0; i < channelBuffer*2; i++ {
			broker.Publish(NewChangeEvent(TableGuesses, EventInsert, "s1", nil, nil))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a lagging subscriber")
	}
}

func TestPublishIgnoresEmptySession(t *testing.T) {
	broker := NewBroker(zap.NewNop())
	broker.Publish(nil)
	broker.Publish(&ChangeEvent{Table: TableRounds})
}
