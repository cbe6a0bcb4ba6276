package broadcast

import (
	"fmt"
	"testing"
	"time"

	gametypes "github.com/rmarques/pointblank/pkg/game/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotN(n int) gametypes.Snapshot {
	return gametypes.Snapshot{
		SessionID:  "session-hub",
		LastAction: fmt.Sprintf("update %d", n),
	}
}

func TestHub_SubscribeCatchesUp(t *testing.T) {
	hub := NewHub()

	// publishes before the subscription exists are not replayed, only the
	// current snapshot handed to Subscribe is
	hub.Publish(snapshotN(1))
	hub.Publish(snapshotN(2))

	sub := hub.Subscribe(snapshotN(2))
	defer sub.Close()

	snapshot, ok := sub.Next(time.Second)
	require.True(t, ok)
	assert.Equal(t, snapshotN(2), snapshot)

	hub.Publish(snapshotN(3))
	snapshot, ok = sub.Next(time.Second)
	require.True(t, ok)
	assert.Equal(t, snapshotN(3), snapshot)
}

func TestHub_PublishDetachesLaggingSubscriber(t *testing.T) {
	hub := NewHub()

	lagging := hub.Subscribe(snapshotN(0))
	reading := hub.Subscribe(snapshotN(0))
	defer reading.Close()

	received := []gametypes.Snapshot{}
	snapshot, ok := reading.Next(time.Second)
	require.True(t, ok)
	received = append(received, snapshot)

	// interleave publish and read so the reading subscriber never lags while
	// the other one fills up and gets detached
	publishes := SubscriptionBufferSize + 4
	for i := 1; i <= publishes; i++ {
		hub.Publish(snapshotN(i))
		snapshot, ok := reading.Next(time.Second)
		require.True(t, ok)
		received = append(received, snapshot)
	}

	for i, snapshot := range received {
		assert.Equal(t, snapshotN(i), snapshot, "snapshots must arrive in publish order")
	}

	select {
	case <-lagging.Done():
	default:
		t.Fatal("lagging subscriber should have been detached")
	}
	assert.Equal(t, 1, hub.Count())

	// the detached subscriber can still drain what was buffered before the
	// detach, then gets a clean stop
	drained := 0
	for {
		if _, ok := lagging.Next(10 * time.Millisecond); !ok {
			break
		}
		drained++
	}
	assert.Equal(t, SubscriptionBufferSize, drained)
}

func TestHub_CloseIsIdempotent(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe(snapshotN(0))

	sub.Close()
	sub.Close()
	assert.Zero(t, hub.Count())

	// publishing after the close must not panic or deliver
	hub.Publish(snapshotN(1))

	// the catch-up snapshot buffered before the close is still drained
	snapshot, ok := sub.Next(10 * time.Millisecond)
	require.True(t, ok)
	assert.Equal(t, snapshotN(0), snapshot)

	_, ok = sub.Next(10 * time.Millisecond)
	assert.False(t, ok)
}

func TestHub_NextTimesOut(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe(snapshotN(0))
	defer sub.Close()

	_, ok := sub.Next(time.Second)
	require.True(t, ok)

	start := time.Now()
	_, ok = sub.Next(20 * time.Millisecond)
	assert.False(t, ok)
	assert.Less(t, time.Since(start), time.Second)
}
