package session

import (
	"context"
	"sync"
)

// Event announces that the authentication state of a storage scope changed.
// Receivers re-read the state instead of trusting Status alone.
type Event struct {
	Scope  string
	Status Status
}

const subscriberBuffer = 4

// Broker fans state changes out to subscribers. Publish never blocks: a
// subscriber whose buffer is full misses the event and catches up on the next.
type Broker struct {
	mu     sync.Mutex
	subs   map[chan Event]string
	closed bool
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[chan Event]string)}
}

// Subscribe returns a channel of events for scope ("" receives every scope).
// The channel is closed once ctx is done or the broker is closed.
func (b *Broker) Subscribe(ctx context.Context, scope string) <-chan Event {
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch
	}
	b.subs[ch] = scope
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
		b.mu.Unlock()
	}()
	return ch
}

// Close ends every subscription, current and future. The server calls it on
// shutdown so open event streams return.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
}

func (b *Broker) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch, scope := range b.subs {
		if scope != "" && scope != e.Scope {
			continue
		}
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribers returns the number of live subscriptions.
func (b *Broker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
