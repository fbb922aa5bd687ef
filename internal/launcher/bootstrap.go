package launcher

import (
	"context"
	"fmt"
	"sort"

	"github.com/robfig/cron/v3"

	"launcherd/internal/catalog"
)

// Bootstrap runs the startup checks: configured wine and dxvk versions that
// are not downloaded yet and a missing prefix are queued unless a job for them
// is already queued or running. Configuration
// problems become notices on the status endpoint and are never fatal. It
// returns the ids of the queued jobs.
func (s *Service) Bootstrap(ctx context.Context) []string {
	var ids []string
	for _, kind := range []catalog.Variant{catalog.Wine, catalog.DXVK} {
		id, err := s.ensureComponent(ctx, kind)
		if err != nil {
			s.log.Warn().Str("event", "bootstrap_component").Str("variant", string(kind)).Err(err).Msg("component check failed")
			s.notice(fmt.Sprintf("%s: %v", kind, err))
			continue
		}
		if id != "" {
			ids = append(ids, id)
		}
	}

	if path := s.cfg.Prefix.Path; path != "" && !s.prefixes.Exists(path) {
		id, err := s.enqueuePrefix(ctx, path, s.cfg.Prefix.InstallCorefonts, true)
		if err != nil {
			s.log.Warn().Str("event", "bootstrap_prefix").Err(err).Msg("prefix check failed")
			s.notice(fmt.Sprintf("prefix: %v", err))
		} else if id != "" {
			ids = append(ids, id)
		}
	}
	s.log.Info().Str("event", "bootstrap").Int("queued", len(ids)).Msg("startup checks done")
	return ids
}

func (s *Service) ensureComponent(ctx context.Context, kind catalog.Variant) (string, error) {
	if (kind == catalog.Wine && s.cfg.Wine == nil) || (kind == catalog.DXVK && s.cfg.DXVK == nil) {
		return "", nil
	}
	v, err := s.componentVersion(kind)
	if err != nil {
		return "", err
	}
	if s.components.IsDownloaded(v) {
		return "", nil
	}
	return s.enqueueComponent(ctx, v, true)
}

// CheckUpdates queues an update for every installed game whose manifest
// announces a newer version. It returns the ids of the queued jobs.
func (s *Service) CheckUpdates(ctx context.Context) []string {
	installed, _, _ := s.library.Sets()
	sort.Strings(installed)
	var ids []string
	for _, name := range installed {
		g, ok := s.games[catalog.Variant(name)]
		if !ok {
			continue
		}
		log := s.log.With().Str("variant", name).Logger()
		u, err := s.checker.Check(ctx, g)
		if err != nil {
			log.Warn().Str("event", "update_check").Err(err).Msg("update check failed")
			continue
		}
		if !u.Applicable() {
			log.Debug().Str("event", "update_check").Msg("up to date")
			continue
		}
		id, err := s.submitUpdate(ctx, g, u)
		if err != nil {
			log.Warn().Str("event", "update_check").Err(err).Msg("cannot queue update")
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// runCron re-runs the startup checks and the update check on the configured
// schedule until ctx is done.
func (s *Service) runCron(ctx context.Context) error {
	c := cron.New(cron.WithLogger(cron.DiscardLogger))
	_, err := c.AddFunc(s.cfg.UpdateCheckCron, func() {
		s.log.Info().Str("event", "update_cron").Msg("scheduled update check")
		s.Bootstrap(ctx)
		s.CheckUpdates(ctx)
	})
	if err != nil {
		return fmt.Errorf("update_check_cron: %w", err)
	}
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
