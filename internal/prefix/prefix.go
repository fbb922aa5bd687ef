// Package prefix creates wine prefixes.
package prefix

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"launcherd/internal/common/executil"
	"launcherd/internal/common/fsutil"
)

// Stage is the phase of a prefix build.
type Stage int32

const (
	StageCreating Stage = iota
	StageInstallingFonts
	StageDone
)

// Build is the pollable view of a running prefix build. Progress counts steps.
type Build interface {
	Stage() (Stage, error)
	Current() uint64
	Total() uint64
	Close() error
}

// Builder runs wineboot and winetricks against a prefix path.
type Builder struct {
	Wineboot   string
	Winetricks string
	// Env is added to every command, e.g. WINE or WINEARCH.
	Env    map[string]string
	Runner executil.Runner
	Log    zerolog.Logger
}

// Exists reports whether a prefix folder is already present at path.
func (b *Builder) Exists(path string) bool { return fsutil.DirExists(path) }

// Create starts building a prefix at path and returns immediately.
func (b *Builder) Create(ctx context.Context, path string, corefonts bool) (Build, error) {
	if path == "" {
		return nil, errors.New("empty prefix path")
	}
	if b.Runner == nil {
		return nil, errors.New("no command runner configured")
	}
	ctx, cancel := context.WithCancel(ctx)
	r := &run{b: b, path: path, corefonts: corefonts, cancel: cancel, done: make(chan struct{})}
	r.total.Store(1)
	if corefonts {
		r.total.Store(2)
	}
	go r.exec(ctx)
	return r, nil
}

type run struct {
	b         *Builder
	path      string
	corefonts bool

	stage atomic.Int32
	cur   atomic.Uint64
	total atomic.Uint64

	mu  sync.Mutex
	err error

	cancel context.CancelFunc
	done   chan struct{}
}

func (r *run) exec(ctx context.Context) {
	defer close(r.done)
	log := r.b.Log.With().Str("prefix", r.path).Logger()
	created := !fsutil.PathExists(r.path)
	if err := r.steps(ctx); err != nil {
		log.Warn().Str("event", "prefix_failed").Err(err).Msg("prefix creation failed")
		// A half built prefix would pass Exists and block every retry.
		if created {
			if rerr := os.RemoveAll(r.path); rerr != nil {
				log.Error().Err(rerr).Msg("remove partial prefix")
			}
		}
		r.mu.Lock()
		r.err = err
		r.mu.Unlock()
		return
	}
	log.Info().Str("event", "prefix_created").Bool("corefonts", r.corefonts).Msg("prefix ready")
}

func (r *run) steps(ctx context.Context) error {
	if err := os.MkdirAll(r.path, 0o755); err != nil {
		return err
	}
	if err := r.b.Runner.Run(ctx, r.cmd(r.b.Wineboot, "wineboot", "-i")); err != nil {
		return fmt.Errorf("wineboot: %w", err)
	}
	r.cur.Add(1)

	if r.corefonts {
		r.stage.Store(int32(StageInstallingFonts))
		if err := r.b.Runner.Run(ctx, r.cmd(r.b.Winetricks, "winetricks", "-q", "corefonts")); err != nil {
			return fmt.Errorf("winetricks corefonts: %w", err)
		}
		r.cur.Add(1)
	}
	r.stage.Store(int32(StageDone))
	return nil
}

func (r *run) cmd(bin, fallback string, args ...string) executil.Cmd {
	if bin == "" {
		bin = fallback
	}
	env := map[string]string{"WINEPREFIX": r.path}
	for k, v := range r.b.Env {
		env[k] = v
	}
	return executil.Cmd{Path: bin, Args: args, Env: env}
}

func (r *run) Stage() (Stage, error) {
	r.mu.Lock()
	err := r.err
	r.mu.Unlock()
	return Stage(r.stage.Load()), err
}

func (r *run) Current() uint64 { return r.cur.Load() }
func (r *run) Total() uint64   { return r.total.Load() }

func (r *run) Close() error {
	r.cancel()
	<-r.done
	return nil
}
