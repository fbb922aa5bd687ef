package tasks

import (
	"context"
	"sync/atomic"

	"launcherd/internal/catalog"
)

// Kind names a job kind. The set is open: third-party kinds pick their own.
type Kind string

const (
	KindGameDiff  Kind = "game_diff_install"
	KindComponent Kind = "component_download"
	KindPrefix    Kind = "prefix_creation"
)

// Job is an immutable description of pending work. Resolve consumes it: it
// starts the underlying long-running operation and hands back the pollable
// ActiveJob. A Job must not be resolved twice.
type Job interface {
	Variant() catalog.Variant
	Title() string
	Author() string
	Kind() Kind
	Resolve(ctx context.Context) (ActiveJob, error)
}

// ActiveJob is the started form of a Job. It is polled by the driver goroutine
// only; implementations need not be safe for concurrent use.
type ActiveJob interface {
	Variant() catalog.Variant
	// IsFinished may refresh cached state; it must agree with Status reaching
	// StatusFinished.
	IsFinished() bool
	// Progress must not regress between calls.
	Progress() Progress
	Status() (Status, error)
	// Close releases the underlying handle. Called exactly once by the driver.
	Close() error
}

// Meta carries the identity of a job. Title and author derive from the variant
// unless overridden. Embed it by value in job structs and call Consume at the
// top of Resolve.
type Meta struct {
	Var        catalog.Variant
	TitleText  string
	AuthorText string

	resolved atomic.Bool
}

func (m *Meta) Variant() catalog.Variant { return m.Var }

func (m *Meta) Title() string {
	if m.TitleText != "" {
		return m.TitleText
	}
	return m.Var.Title()
}

func (m *Meta) Author() string {
	if m.AuthorText != "" {
		return m.AuthorText
	}
	return m.Var.Author()
}

// Consume marks the job as resolved; the second call returns ErrAlreadyResolved.
func (m *Meta) Consume() error {
	if !m.resolved.CompareAndSwap(false, true) {
		return ErrAlreadyResolved
	}
	return nil
}

// Guard keeps what an adapter reports consistent across polls: progress never
// decreases and status never moves backwards in the sequence. The zero value
// is ready to use.
type Guard struct {
	seen     bool
	status   Status
	progress Progress
}

// Status returns s, or the last reported status when s is out of sequence.
func (g *Guard) Status(s Status) Status {
	if !g.seen || s > g.status {
		g.status = s
		g.seen = true
	}
	return g.status
}

// Progress returns p with each component raised to its previous maximum.
func (g *Guard) Progress(p Progress) Progress {
	if p.Current > g.progress.Current {
		g.progress.Current = p.Current
	}
	if p.Total > g.progress.Total {
		g.progress.Total = p.Total
	}
	return g.progress
}

// Last returns the last reported status and whether any was reported.
func (g *Guard) Last() (Status, bool) { return g.status, g.seen }
