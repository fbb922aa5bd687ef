// Package bridge fans driver events out to presentation-side subscribers.
package bridge

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"launcherd/internal/tasks"
)

// ErrHubClosed is returned by Publish after Close.
var ErrHubClosed = errors.New("event hub closed")

// Hub is a tasks.Sink that copies every event into the mailbox of each
// subscriber. Mailboxes are unbounded, so Publish never waits on a consumer.
type Hub struct {
	log zerolog.Logger

	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	closed bool
}

var _ tasks.Sink = (*Hub)(nil)

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{log: log.With().Str("component", "bridge").Logger(), subs: make(map[*Subscription]struct{})}
}

// Publish delivers e to every current subscriber in order.
func (h *Hub) Publish(e tasks.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHubClosed
	}
	for s := range h.subs {
		s.push(e)
	}
	return nil
}

// Subscribe registers a new subscriber. Events published before the call are
// not replayed.
func (h *Hub) Subscribe(name string) (*Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrHubClosed
	}
	s := &Subscription{
		name:   name,
		hub:    h,
		out:    make(chan tasks.Event),
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	h.subs[s] = struct{}{}
	go s.pump()
	h.log.Debug().Str("subscriber", name).Int("subscribers", len(h.subs)).Msg("subscribed")
	return s, nil
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close rejects further events. Subscribers receive what is already in their
// mailbox, then their channel closes.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for s := range h.subs {
		s.finish()
		delete(h.subs, s)
	}
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	delete(h.subs, s)
	h.mu.Unlock()
}
