package tasks

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"launcherd/internal/catalog"
)

// step is one scripted poll result of a fake active job.
type step struct {
	cur, total uint64
	status     Status
	err        error
}

// activeTracker counts live active jobs to check the single-slot invariant.
type activeTracker struct {
	cur atomic.Int32
	max atomic.Int32
}

func (t *activeTracker) enter() {
	n := t.cur.Add(1)
	for {
		m := t.max.Load()
		if n <= m || t.max.CompareAndSwap(m, n) {
			return
		}
	}
}

func (t *activeTracker) exit() { t.cur.Add(-1) }

// fakeJob is a scripted Job: each poll of its active form reads the next step.
type fakeJob struct {
	Meta
	kind       Kind
	resolveErr error
	panicOn    string
	steps      []step
	tracker    *activeTracker
	closed     atomic.Bool
}

func newFakeJob(v string, steps ...step) *fakeJob {
	return &fakeJob{Meta: Meta{Var: catalog.Variant(v)}, kind: KindGameDiff, steps: steps}
}

func (j *fakeJob) Kind() Kind { return j.kind }

func (j *fakeJob) Resolve(ctx context.Context) (ActiveJob, error) {
	if err := j.Consume(); err != nil {
		return nil, err
	}
	if j.panicOn == "resolve" {
		panic("boom")
	}
	if j.resolveErr != nil {
		return nil, j.resolveErr
	}
	if j.tracker != nil {
		j.tracker.enter()
	}
	return &fakeActive{job: j}, nil
}

type fakeActive struct {
	job   *fakeJob
	idx   int
	guard Guard
}

func (a *fakeActive) Variant() catalog.Variant { return a.job.Var }

func (a *fakeActive) IsFinished() bool {
	return a.job.steps[a.idx].status == StatusFinished
}

func (a *fakeActive) Status() (Status, error) {
	s := a.job.steps[a.idx]
	if s.err != nil {
		return 0, s.err
	}
	return a.guard.Status(s.status), nil
}

// Progress reports the current step and advances the script.
func (a *fakeActive) Progress() Progress {
	s := a.job.steps[a.idx]
	if a.idx < len(a.job.steps)-1 {
		a.idx++
	}
	return a.guard.Progress(Progress{Current: s.cur, Total: s.total})
}

func (a *fakeActive) Close() error {
	a.job.closed.Store(true)
	if a.job.tracker != nil {
		a.job.tracker.exit()
	}
	return nil
}

// finishing returns a three-step script that ends in StatusFinished.
func finishing() []step {
	return []step{
		{0, 10, StatusDownloading, nil},
		{5, 10, StatusUnpacking, nil},
		{10, 10, StatusFinished, nil},
	}
}

// startDriver runs a driver with a fast poll interval until the test ends.
func startDriver(t *testing.T, sink Sink) *Driver {
	t.Helper()
	d := NewDriver(sink, DriverConfig{PollInterval: 2 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	t.Cleanup(func() {
		cancel()
		<-d.Done()
	})
	return d
}

func submit(t *testing.T, d *Driver, j Job) string {
	t.Helper()
	id, err := d.Submit(context.Background(), j)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	return id
}
