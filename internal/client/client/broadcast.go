package client

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/catalogctl/internal/client/models"
)

const subscriptionBuffer = 8

// Subscription receives auth events until Close is called. The events
// channel is never closed; consumers select on Done as well.
type Subscription struct {
	ch   chan models.AuthEvent
	done chan struct{}
	once sync.Once
	b    *Broadcaster
}

func (s *Subscription) Events() <-chan models.AuthEvent {
	return s.ch
}

func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Close releases the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		close(s.done)
		s.b.remove(s)
	})
}

// Broadcaster fans auth events out to every live subscription.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[*Subscription]struct{})}
}

func (b *Broadcaster) Subscribe() *Subscription {
	s := &Subscription{
		ch:   make(chan models.AuthEvent, subscriptionBuffer),
		done: make(chan struct{}),
		b:    b,
	}
	b.mu.Lock()
	b.subs[s] = struct{}{}
	b.mu.Unlock()
	return s
}

func (b *Broadcaster) remove(s *Subscription) {
	b.mu.Lock()
	delete(b.subs, s)
	b.mu.Unlock()
}

// Publish delivers ev to every subscription in order. Delivery to a
// subscription stops waiting once it is closed or ctx is done.
func (b *Broadcaster) Publish(ctx context.Context, ev models.AuthEvent) {
	b.mu.Lock()
	subs := make([]*Subscription, 0, len(b.subs))
	for s := range b.subs {
		subs = append(subs, s)
	}
	b.mu.Unlock()

	for _, s := range subs {
		select {
		case s.ch <- ev:
		case <-s.done:
		case <-ctx.Done():
			return
		}
	}
}

// Len reports the number of live subscriptions.
func (b *Broadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
