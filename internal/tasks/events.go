package tasks

import "time"

// EventType tags the three events the driver emits.
type EventType string

const (
	EventProgress  EventType = "progress"
	EventCompleted EventType = "completed"
	EventFailed    EventType = "failed"
)

// Event is one notification from the driver to the presentation side. Every
// event carries the variant so callers can update their own bookkeeping.
type Event struct {
	Type    EventType `json:"type"`
	JobID   string    `json:"job_id"`
	Variant string    `json:"variant"`
	Kind    Kind      `json:"kind"`
	At      time.Time `json:"at"`

	// progress
	Current uint64  `json:"current"`
	Total   uint64  `json:"total"`
	Ratio   float64 `json:"ratio"`
	Status  *Status `json:"status,omitempty"`

	// failed
	Title  string `json:"title,omitempty"`
	Author string `json:"author,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ProgressTick builds a progress event for the active job.
func ProgressTick(info JobInfo, p Progress, s Status) Event {
	st := s
	return Event{
		Type:    EventProgress,
		JobID:   info.ID,
		Variant: info.Variant,
		Kind:    info.Kind,
		At:      time.Now(),
		Current: p.Current,
		Total:   p.Total,
		Ratio:   p.Ratio(),
		Status:  &st,
	}
}

// JobCompleted builds the terminal success event.
func JobCompleted(info JobInfo) Event {
	return Event{
		Type:    EventCompleted,
		JobID:   info.ID,
		Variant: info.Variant,
		Kind:    info.Kind,
		At:      time.Now(),
	}
}

// JobFailed builds the terminal failure event. The message is the cause
// without the resolution/status prefix.
func JobFailed(info JobInfo, err error) Event {
	return Event{
		Type:    EventFailed,
		JobID:   info.ID,
		Variant: info.Variant,
		Kind:    info.Kind,
		At:      time.Now(),
		Title:   info.Title,
		Author:  info.Author,
		Error:   failureMessage(err),
	}
}

// Sink receives driver events in production order. Publish must not block for
// long; an error means the event pipe is gone and stops the driver.
type Sink interface {
	Publish(Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event) error

func (f SinkFunc) Publish(e Event) error { return f(e) }
