package bridge

import (
	"sync"

	"launcherd/internal/tasks"
)

// Subscription is one ordered event stream from a Hub.
type Subscription struct {
	name string
	hub  *Hub

	mu      sync.Mutex
	queue   []tasks.Event
	final   bool
	stopped sync.Once

	out    chan tasks.Event
	notify chan struct{}
	done   chan struct{}
}

// C delivers events in publish order. It is closed after Close, or after the
// hub closes and the mailbox drains.
func (s *Subscription) C() <-chan tasks.Event { return s.out }

// Pending returns the number of events waiting in the mailbox.
func (s *Subscription) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Close unsubscribes and discards undelivered events.
func (s *Subscription) Close() {
	s.stopped.Do(func() { close(s.done) })
	s.hub.remove(s)
}

func (s *Subscription) push(e tasks.Event) {
	s.mu.Lock()
	s.queue = append(s.queue, e)
	s.mu.Unlock()
	s.wake()
}

func (s *Subscription) finish() {
	s.mu.Lock()
	s.final = true
	s.mu.Unlock()
	s.wake()
}

func (s *Subscription) wake() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *Subscription) pump() {
	defer close(s.out)
	for {
		s.mu.Lock()
		batch := s.queue
		s.queue = nil
		final := s.final
		s.mu.Unlock()

		for _, e := range batch {
			select {
			case s.out <- e:
			case <-s.done:
				return
			}
		}
		if len(batch) > 0 {
			continue
		}
		if final {
			return
		}
		select {
		case <-s.notify:
		case <-s.done:
			return
		}
	}
}
