package broadcast

import (
	"sync"
	"time"

	gametypes "github.com/rmarques/pointblank/pkg/game/types"
	"github.com/rmarques/pointblank/pkg/log"
)

const (
	// SubscriptionBufferSize is the per-subscription snapshot buffer. A
	// subscriber that falls this far behind is detached rather than allowed
	// to block the publisher.
	SubscriptionBufferSize = 16
)

// Hub fans session snapshots out to observers. Each session's engine owns one
// hub; the hub owns its subscriber set and nothing else. Publishing never
// blocks on a slow or disconnected subscriber.
type Hub struct {
	mu     sync.Mutex
	subs   map[int]*Subscription
	nextID int
}

func NewHub() *Hub {
	return &Hub{
		subs: make(map[int]*Subscription),
	}
}

// Subscription delivers an ordered sequence of snapshots to one observer.
// It is owned by the observer's connection for the connection's lifetime; the
// hub only holds a reference so it can deliver and detach.
type Subscription struct {
	id   int
	hub  *Hub
	ch   chan gametypes.Snapshot
	done chan struct{}
	once sync.Once
}

// Subscribe attaches a new subscription. The current snapshot is buffered as
// the first delivered item so a late joiner never starts from a stale view.
func (h *Hub) Subscribe(current gametypes.Snapshot) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &Subscription{
		id:   h.nextID,
		hub:  h,
		ch:   make(chan gametypes.Snapshot, SubscriptionBufferSize),
		done: make(chan struct{}),
	}
	sub.ch <- current
	h.subs[sub.id] = sub

	return sub
}

// Publish delivers a snapshot to every attached subscription. A subscription
// whose buffer is full is detached instead of stalling delivery to others.
func (h *Hub) Publish(snapshot gametypes.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, sub := range h.subs {
		select {
		case sub.ch <- snapshot:
		default:
			log.Warn("Subscriber %d is not keeping up, detaching", id)
			delete(h.subs, id)
			sub.markDone()
		}
	}
}

// Unsubscribe detaches a subscription. It is idempotent and safe to call
// concurrently with Publish.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.subs, sub.id)
	sub.markDone()
}

// Count returns the number of attached subscriptions.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (s *Subscription) markDone() {
	s.once.Do(func() {
		close(s.done)
	})
}

// Close detaches the subscription from its hub. Idempotent.
func (s *Subscription) Close() {
	s.hub.Unsubscribe(s)
}

// Done is closed once the subscription is detached, whether by Close or by
// the hub dropping a lagging subscriber.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Next waits up to timeout for the next snapshot. The bounded wait lets the
// caller poll for external cancellation without holding any lock. It returns
// false on timeout or once the subscription is detached with no buffered
// snapshots left.
func (s *Subscription) Next(timeout time.Duration) (gametypes.Snapshot, bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case snapshot := <-s.ch:
		return snapshot, true
	case <-s.done:
		// Drain anything delivered before the detach.
		select {
		case snapshot := <-s.ch:
			return snapshot, true
		default:
			return gametypes.Snapshot{}, false
		}
	case <-timer.C:
		return gametypes.Snapshot{}, false
	}
}
