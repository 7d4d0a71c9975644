// Package audit fans engine events out to subscribers. Delivery is
// best-effort: a slow, blocking, or failing subscriber never changes
// an evaluation's outcome or its latency.
package audit

import (
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/gatewright/rbac/types"
)

// Bus dispatches events to per-subscriber queues. Each subscriber gets
// its own buffered channel drained by its own goroutine; when a queue
// is full the event is dropped for that subscriber.
type Bus struct {
	mu     sync.RWMutex
	subs   map[types.EventType][]*subscriber
	size   int
	closed bool
	wg     sync.WaitGroup
	log    logr.Logger
}

type subscriber struct {
	ch chan types.Event
}

// New creates a bus whose subscriber queues hold up to size events.
func New(size int, l logr.Logger) *Bus {
	if size <= 0 {
		size = 64
	}
	return &Bus{
		subs: make(map[types.EventType][]*subscriber),
		size: size,
		log:  l,
	}
}

// Subscribe registers a handler for one event type and starts its
// delivery goroutine. Subscribing on a closed bus is a no-op.
func (b *Bus) Subscribe(t types.EventType, h types.Handler) {
	sub := &subscriber{ch: make(chan types.Event, b.size)}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.subs[t] = append(b.subs[t], sub)
	b.mu.Unlock()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for ev := range sub.ch {
			h(ev)
		}
	}()
}

// Publish emits an event to every subscriber of its type. It never
// blocks: a full subscriber queue drops the event.
func (b *Bus) Publish(t types.EventType, payload interface{}) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}

	subs := b.subs[t]
	if len(subs) == 0 {
		return
	}

	ev := types.Event{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: time.Now(),
		Payload:   payload,
	}
	for _, sub := range subs {
		select {
		case sub.ch <- ev:
		default:
			b.log.V(4).Info("subscriber queue full, event dropped", "type", t, "event", ev.ID)
		}
	}
}

// Close stops delivery and waits for in-flight handlers to drain.
// Closing twice is a no-op.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	for _, subs := range b.subs {
		for _, sub := range subs {
			close(sub.ch)
		}
	}
	b.mu.Unlock()

	b.wg.Wait()
}
