package launcher

import (
	"context"
	"fmt"

	"launcherd/internal/catalog"
	"launcherd/internal/components"
	"launcherd/internal/config"
	"launcherd/internal/gamediff"
	"launcherd/internal/jobkinds"
	"launcherd/internal/library"
	"launcherd/internal/tasks"
)

// checkOnResolve is a Diff that looks the update up only when the driver
// resolves the job, so enqueueing never touches the network.
type checkOnResolve struct {
	checker GameChecker
	game    gamediff.Game
}

func (c checkOnResolve) Install(ctx context.Context) (gamediff.Updater, error) {
	u, err := c.checker.Check(ctx, c.game)
	if err != nil {
		return nil, err
	}
	return u.Install(ctx)
}

// EnqueueGame queues the installation of an available game. It returns
// ErrNotAvailable when the game is already queued or installed.
func (s *Service) EnqueueGame(ctx context.Context, v catalog.Variant) (string, error) {
	g, ok := s.games[v]
	if !ok {
		return "", &UnknownVariantError{Variant: v}
	}
	if !s.library.MarkQueued(v) {
		return "", fmt.Errorf("%s: %w", v, ErrNotAvailable)
	}
	id, err := s.driver.Submit(ctx, jobkinds.NewGameDiffJob(v, checkOnResolve{checker: s.checker, game: g}))
	if err != nil {
		s.library.Release(v, library.Available)
		return "", err
	}
	s.log.Info().Str("event", "enqueue_game").Str("job_id", id).Str("variant", string(v)).Msg("game queued")
	return id, nil
}

// EnqueueUpdate queues the update of an installed game.
func (s *Service) EnqueueUpdate(ctx context.Context, v catalog.Variant) (string, error) {
	g, ok := s.games[v]
	if !ok {
		return "", &UnknownVariantError{Variant: v}
	}
	return s.submitUpdate(ctx, g, checkOnResolve{checker: s.checker, game: g})
}

func (s *Service) submitUpdate(ctx context.Context, g gamediff.Game, d jobkinds.Diff) (string, error) {
	if !s.library.MarkUpdating(g.Variant) {
		return "", fmt.Errorf("%s: %w", g.Variant, ErrNotInstalled)
	}
	id, err := s.driver.Submit(ctx, jobkinds.NewGameDiffJob(g.Variant, d))
	if err != nil {
		s.library.Release(g.Variant, library.Installed)
		return "", err
	}
	s.log.Info().Str("event", "enqueue_update").Str("job_id", id).Str("variant", string(g.Variant)).Msg("game update queued")
	return id, nil
}

// EnqueueComponent queues the configured version of a component (wine or
// dxvk). A non-empty name must match the configured version.
func (s *Service) EnqueueComponent(ctx context.Context, kind catalog.Variant, name string) (string, error) {
	v, err := s.componentVersion(kind)
	if err != nil {
		return "", err
	}
	if name != "" && name != v.Name {
		return "", &ConfigError{What: string(kind), Err: fmt.Errorf("version %q is not configured (configured: %q)", name, v.Name)}
	}
	return s.enqueueComponent(ctx, v, false)
}

func (s *Service) enqueueComponent(ctx context.Context, v components.Version, unique bool) (string, error) {
	kind := v.Kind
	id, err := s.submitTracked(ctx, string(kind), unique, jobkinds.NewComponentJob(v, s.components))
	if err != nil || id == "" {
		return "", err
	}
	s.log.Info().Str("event", "enqueue_component").Str("job_id", id).Str("variant", string(kind)).
		Str("version", v.Name).Msg("component queued")
	return id, nil
}

func (s *Service) componentVersion(kind catalog.Variant) (components.Version, error) {
	var c *config.Component
	switch kind {
	case catalog.Wine:
		c = s.cfg.Wine
	case catalog.DXVK:
		c = s.cfg.DXVK
	default:
		return components.Version{}, &UnknownVariantError{Variant: kind}
	}
	if c == nil {
		return components.Version{}, &ConfigError{What: string(kind), Err: fmt.Errorf("no version configured")}
	}
	v := components.Version{Kind: kind, Name: c.Name, Title: c.Title, URL: c.URL}
	if err := v.Validate(); err != nil {
		return components.Version{}, &ConfigError{What: string(kind), Err: err}
	}
	return v, nil
}

// EnqueuePrefix queues creation of a wine prefix. An empty path selects the
// configured prefix.
func (s *Service) EnqueuePrefix(ctx context.Context, path string, corefonts bool) (string, error) {
	if path == "" {
		path = s.cfg.Prefix.Path
	}
	if path == "" {
		return "", &ConfigError{What: "prefix", Err: fmt.Errorf("no prefix path configured")}
	}
	return s.enqueuePrefix(ctx, path, corefonts, false)
}

func (s *Service) enqueuePrefix(ctx context.Context, path string, corefonts, unique bool) (string, error) {
	id, err := s.submitTracked(ctx, "prefix:"+path, unique, jobkinds.NewPrefixJob(path, corefonts, s.prefixes))
	if err != nil || id == "" {
		return "", err
	}
	s.log.Info().Str("event", "enqueue_prefix").Str("job_id", id).Str("path", path).
		Bool("corefonts", corefonts).Msg("prefix creation queued")
	return id, nil
}

// Submit queues an arbitrary job.
func (s *Service) Submit(ctx context.Context, j tasks.Job) (string, error) {
	return s.driver.Submit(ctx, j)
}
