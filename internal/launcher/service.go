package launcher

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"launcherd/internal/bridge"
	"launcherd/internal/catalog"
	"launcherd/internal/common/executil"
	"launcherd/internal/components"
	"launcherd/internal/config"
	"launcherd/internal/gamediff"
	"launcherd/internal/jobkinds"
	"launcherd/internal/library"
	"launcherd/internal/prefix"
	"launcherd/internal/tasks"
)

const recentFailures = 20

// Update is a checked game diff.
type Update interface {
	jobkinds.Diff
	Applicable() bool
}

// GameChecker looks up the update available for an installed game.
type GameChecker interface {
	Check(ctx context.Context, g gamediff.Game) (Update, error)
}

// Options carries the dependencies of a Service. Nil capabilities are built
// from Config.
type Options struct {
	Config   config.Config
	Log      zerolog.Logger
	Registry prometheus.Registerer

	Games      GameChecker
	Components jobkinds.ComponentSource
	Prefixes   jobkinds.PrefixBuilder
	// Installed reports whether a game has a version on disk.
	Installed func(gamediff.Game) bool
}

// Service is the launcher daemon: it owns the driver and everything that
// feeds it or listens to it.
type Service struct {
	cfg config.Config
	log zerolog.Logger

	driver  *tasks.Driver
	hub     *bridge.Hub
	libSub  *bridge.Subscription
	library *library.Tracker

	games      map[catalog.Variant]gamediff.Game
	checker    GameChecker
	components jobkinds.ComponentSource
	prefixes   jobkinds.PrefixBuilder
	installed  func(gamediff.Game) bool
	procs      *executil.ProcTracker

	started time.Time
	ready   atomic.Bool

	mu       sync.Mutex
	failures []tasks.Event
	notices  []string

	// component and prefix jobs not yet completed or failed, job id -> key
	inflightMu sync.Mutex
	inflight   map[string]string
}

// New builds a Service. Nothing runs until Run.
func New(opts Options) (*Service, error) {
	cfg := opts.Config
	log := opts.Log.With().Str("component", "launcher").Logger()

	s := &Service{
		cfg:        cfg,
		log:        log,
		games:      make(map[catalog.Variant]gamediff.Game),
		checker:    opts.Games,
		components: opts.Components,
		prefixes:   opts.Prefixes,
		installed:  opts.Installed,
		started:    time.Now(),
		inflight:   make(map[string]string),
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout.Std()}
	var runner *executil.ExecRunner
	if s.checker == nil || s.prefixes == nil {
		runner = executil.NewExecRunner(opts.Log.With().Str("component", "exec").Logger())
		s.procs = runner.Procs
	}
	if s.checker == nil {
		s.checker = clientChecker{&gamediff.Client{
			HTTP:    httpClient,
			Runner:  runner,
			Hpatchz: cfg.Hpatchz,
			TempDir: cfg.TempDir,
			Log:     opts.Log.With().Str("component", "gamediff").Logger(),
		}}
	}
	if s.components == nil {
		s.components = &components.Downloader{
			Root:    cfg.ComponentsDir,
			Client:  httpClient,
			TempDir: cfg.TempDir,
			Log:     opts.Log,
		}
	}
	if s.prefixes == nil {
		s.prefixes = &prefix.Builder{
			Wineboot:   cfg.Wineboot,
			Winetricks: cfg.Winetricks,
			Runner:     runner,
			Log:        opts.Log,
		}
	}
	if s.installed == nil {
		s.installed = func(g gamediff.Game) bool {
			v, err := gamediff.InstalledVersion(g.Dir)
			return err == nil && v != ""
		}
	}

	var all, installed []catalog.Variant
	for _, g := range cfg.Games {
		game := gamediff.Game{Variant: catalog.Variant(g.Variant), Dir: g.Dir, ManifestURL: g.ManifestURL}
		if _, dup := s.games[game.Variant]; dup {
			return nil, fmt.Errorf("duplicate game %s", g.Variant)
		}
		s.games[game.Variant] = game
		all = append(all, game.Variant)
		if s.installed(game) {
			installed = append(installed, game.Variant)
		}
	}
	s.library = library.New(all, installed)

	s.hub = bridge.NewHub(opts.Log)
	sub, err := s.hub.Subscribe("library")
	if err != nil {
		return nil, err
	}
	s.libSub = sub

	var metrics *tasks.Metrics
	if opts.Registry != nil {
		metrics = tasks.NewMetrics(opts.Registry)
	}
	s.driver = tasks.NewDriver(s.hub, tasks.DriverConfig{
		PollInterval: cfg.PollInterval.Std(),
		SubmitBuffer: cfg.SubmitBuffer,
		Logger:       opts.Log,
		Metrics:      metrics,
	})
	return s, nil
}

// Run drives the queue until ctx is done. It returns the first fatal error,
// such as a lost event pipe.
func (s *Service) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer s.hub.Close()
		return s.driver.Run(gctx)
	})
	g.Go(func() error {
		s.consume(s.libSub)
		return nil
	})
	if s.cfg.UpdateCheckCron != "" {
		g.Go(func() error { return s.runCron(gctx) })
	}

	s.ready.Store(true)
	s.log.Info().Str("event", "launcher_start").Int("games", len(s.games)).Msg("launcher running")
	err := g.Wait()
	s.ready.Store(false)
	if s.procs != nil {
		s.procs.KillAll()
	}
	s.log.Info().Str("event", "launcher_stop").Err(err).Msg("launcher stopped")
	return err
}

// consume keeps the library and the failure log in step with the driver.
func (s *Service) consume(sub *bridge.Subscription) {
	for e := range sub.C() {
		if e.Type == tasks.EventFailed {
			s.recordFailure(e)
		}
		if e.Type != tasks.EventProgress {
			s.settle(e.JobID)
		}
		v := catalog.Variant(e.Variant)
		if s.library.Apply(e, s.onDisk) {
			s.log.Debug().Str("variant", e.Variant).Str("membership", string(s.library.Of(v))).Msg("library updated")
		}
	}
}

func (s *Service) onDisk(v catalog.Variant) bool {
	g, ok := s.games[v]
	return ok && s.installed(g)
}

func (s *Service) recordFailure(e tasks.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, e)
	if n := len(s.failures); n > recentFailures {
		s.failures = append([]tasks.Event(nil), s.failures[n-recentFailures:]...)
	}
}

// submitTracked submits j under key. With unique set it submits nothing and
// returns an empty id while another job for key is still queued or running.
func (s *Service) submitTracked(ctx context.Context, key string, unique bool, j tasks.Job) (string, error) {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	if unique {
		for id, k := range s.inflight {
			if k == key {
				s.log.Debug().Str("key", key).Str("job_id", id).Msg("already queued")
				return "", nil
			}
		}
	}
	// held across Submit so a terminal event cannot settle the id first
	id, err := s.driver.Submit(ctx, j)
	if err != nil {
		return "", err
	}
	s.inflight[id] = key
	return id, nil
}

func (s *Service) settle(id string) {
	s.inflightMu.Lock()
	delete(s.inflight, id)
	s.inflightMu.Unlock()
}

func (s *Service) notice(msg string) {
	s.mu.Lock()
	s.notices = append(s.notices, msg)
	s.mu.Unlock()
}

// Ready reports whether Run is active.
func (s *Service) Ready() bool { return s.ready.Load() }

// Subscribe opens a new event stream.
func (s *Service) Subscribe(name string) (*bridge.Subscription, error) {
	return s.hub.Subscribe(name)
}

// Library exposes the membership tracker.
func (s *Service) Library() *library.Tracker { return s.library }

type clientChecker struct{ c *gamediff.Client }

func (cc clientChecker) Check(ctx context.Context, g gamediff.Game) (Update, error) {
	d, err := cc.c.Check(ctx, g)
	if err != nil {
		return nil, err
	}
	return d, nil
}
