package tasks

import "time"

// Entry is a queued job with the identity the driver assigned on submit.
type Entry struct {
	ID         string
	Job        Job
	EnqueuedAt time.Time
}

// JobInfo is a read-only description of a queued or active job.
type JobInfo struct {
	ID         string    `json:"id"`
	Variant    string    `json:"variant"`
	Kind       Kind      `json:"kind"`
	Title      string    `json:"title"`
	Author     string    `json:"author"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

func (e Entry) Info() JobInfo {
	return JobInfo{
		ID:         e.ID,
		Variant:    string(e.Job.Variant()),
		Kind:       e.Job.Kind(),
		Title:      e.Job.Title(),
		Author:     e.Job.Author(),
		EnqueuedAt: e.EnqueuedAt,
	}
}

// Queue is a FIFO of pending jobs. It performs no de-duplication and is not
// safe for concurrent use: the driver goroutine owns it.
type Queue struct {
	items []Entry
}

func NewQueue() *Queue { return &Queue{} }

// Enqueue appends e at the tail.
func (q *Queue) Enqueue(e Entry) { q.items = append(q.items, e) }

// PeekNext returns the head without removing it.
func (q *Queue) PeekNext() (Entry, bool) {
	if len(q.items) == 0 {
		return Entry{}, false
	}
	return q.items[0], true
}

// TakeNext removes and returns the head.
func (q *Queue) TakeNext() (Entry, bool) {
	if len(q.items) == 0 {
		return Entry{}, false
	}
	e := q.items[0]
	q.items[0] = Entry{}
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return e, true
}

func (q *Queue) Len() int      { return len(q.items) }
func (q *Queue) IsEmpty() bool { return len(q.items) == 0 }

// Pending describes the queued jobs in order.
func (q *Queue) Pending() []JobInfo {
	out := make([]JobInfo, 0, len(q.items))
	for _, e := range q.items {
		out = append(out, e.Info())
	}
	return out
}
