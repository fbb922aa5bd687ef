package launcher

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"launcherd/internal/components"
	"launcherd/internal/gamediff"
	"launcherd/internal/prefix"
	"launcherd/internal/tasks"
	"launcherd/internal/transfer"
)

// doneUpdater reports a finished (or failed) update on the first poll.
type doneUpdater struct{ err error }

func (u doneUpdater) Stage() (gamediff.Stage, error) {
	if u.err != nil {
		return gamediff.StageDownloading, u.err
	}
	return gamediff.StageFinished, nil
}
func (doneUpdater) Current() uint64 { return 1 }
func (doneUpdater) Total() uint64   { return 1 }
func (doneUpdater) Close() error    { return nil }

type fakeUpdate struct {
	applicable bool
	updater    doneUpdater
}

func (f fakeUpdate) Applicable() bool { return f.applicable }

func (f fakeUpdate) Install(context.Context) (gamediff.Updater, error) {
	if !f.applicable {
		return nil, nil
	}
	return f.updater, nil
}

type fakeChecker struct {
	mu      sync.Mutex
	updates map[string]fakeUpdate
	checked []string
}

func (f *fakeChecker) Check(_ context.Context, g gamediff.Game) (Update, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checked = append(f.checked, string(g.Variant))
	u, ok := f.updates[string(g.Variant)]
	if !ok {
		return nil, errors.New("manifest unreachable")
	}
	return u, nil
}

type doneTask struct{}

func (doneTask) Stage() (transfer.Stage, error) { return transfer.StageDone, nil }
func (doneTask) Current() uint64                { return 1 }
func (doneTask) Total() uint64                  { return 1 }
func (doneTask) Close() error                   { return nil }

type fakeComponents struct {
	mu         sync.Mutex
	downloaded map[string]bool
	requested  []string
}

func (f *fakeComponents) IsDownloaded(v components.Version) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.downloaded[v.Name]
}

func (f *fakeComponents) Download(_ context.Context, v components.Version) (transfer.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requested = append(f.requested, v.Name)
	return doneTask{}, nil
}

type doneBuild struct{}

func (doneBuild) Stage() (prefix.Stage, error) { return prefix.StageDone, nil }
func (doneBuild) Current() uint64              { return 1 }
func (doneBuild) Total() uint64                { return 1 }
func (doneBuild) Close() error                 { return nil }

type fakePrefixes struct {
	exists bool
}

func (f *fakePrefixes) Exists(string) bool { return f.exists }

func (f *fakePrefixes) Create(context.Context, string, bool) (prefix.Build, error) {
	return doneBuild{}, nil
}

func failureFixture(i int) tasks.Event {
	return tasks.Event{Type: tasks.EventFailed, JobID: fmt.Sprintf("job-%d", i), Variant: "genshin", Error: "boom"}
}
