package jobkinds

import (
	"context"
	"sync"

	"launcherd/internal/components"
	"launcherd/internal/gamediff"
	"launcherd/internal/prefix"
	"launcherd/internal/transfer"
)

// scripted is a capability handle whose state tests move by hand.
type scripted[S ~int32] struct {
	mu         sync.Mutex
	stage      S
	cur, total uint64
	err        error
	closed     bool
}

func (s *scripted[S]) set(stage S, cur, total uint64) {
	s.mu.Lock()
	s.stage, s.cur, s.total = stage, cur, total
	s.mu.Unlock()
}

func (s *scripted[S]) fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *scripted[S]) Stage() (S, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage, s.err
}

func (s *scripted[S]) Current() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

func (s *scripted[S]) Total() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *scripted[S]) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func (s *scripted[S]) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type fakeDiff struct {
	up  *scripted[gamediff.Stage]
	err error
}

func (d fakeDiff) Install(context.Context) (gamediff.Updater, error) {
	if d.err != nil {
		return nil, d.err
	}
	if d.up == nil {
		return nil, nil
	}
	return d.up, nil
}

type fakeSource struct {
	downloaded bool
	task       *scripted[transfer.Stage]
	err        error
	got        components.Version
}

func (f *fakeSource) IsDownloaded(components.Version) bool { return f.downloaded }

func (f *fakeSource) Download(_ context.Context, v components.Version) (transfer.Task, error) {
	f.got = v
	if f.err != nil {
		return nil, f.err
	}
	return f.task, nil
}

type fakeBuilder struct {
	exists    bool
	build     *scripted[prefix.Stage]
	corefonts bool
}

func (f *fakeBuilder) Exists(string) bool { return f.exists }

func (f *fakeBuilder) Create(_ context.Context, _ string, corefonts bool) (prefix.Build, error) {
	f.corefonts = corefonts
	return f.build, nil
}
