package tasks

import "sync"

// MemorySink stores events in-memory for tests.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

func NewMemorySink() *MemorySink { return &MemorySink{} }

func (s *MemorySink) Publish(e Event) error {
	s.mu.Lock()
	s.events = append(s.events, e)
	s.mu.Unlock()
	return nil
}

func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Terminal returns completed and failed events in order.
func (s *MemorySink) Terminal() []Event {
	var out []Event
	for _, e := range s.Events() {
		if e.Type != EventProgress {
			out = append(out, e)
		}
	}
	return out
}

// ForJob returns the events of one job in order.
func (s *MemorySink) ForJob(id string) []Event {
	var out []Event
	for _, e := range s.Events() {
		if e.JobID == id {
			out = append(out, e)
		}
	}
	return out
}
