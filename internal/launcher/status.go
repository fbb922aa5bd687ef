package launcher

import (
	"time"

	"launcherd/internal/registry"
	"launcherd/internal/tasks"
	"launcherd/pkg/types"
)

// Queue projects the driver snapshot onto the wire type.
func (s *Service) Queue() types.QueueResponse {
	snap := s.driver.Snapshot()
	out := types.QueueResponse{
		State:          string(snap.State),
		Pending:        make([]types.Job, 0, len(snap.Pending)),
		CompletedTotal: snap.Completed,
		FailedTotal:    snap.Failed,
		UpdatedAt:      snap.UpdatedAt,
	}
	for _, p := range snap.Pending {
		out.Pending = append(out.Pending, jobInfo(p))
	}
	if a := snap.Active; a != nil {
		aj := &types.ActiveJob{
			Job:       jobInfo(a.JobInfo),
			StartedAt: a.StartedAt,
			Current:   a.Progress.Current,
			Total:     a.Progress.Total,
			Ratio:     a.Ratio,
		}
		if a.Status != nil {
			aj.Status = a.Status.String()
		}
		out.Active = aj
	}
	return out
}

// LibrarySets returns the installed, queued and available games.
func (s *Service) LibrarySets() types.LibraryResponse {
	installed, queued, available := s.library.Sets()
	return types.LibraryResponse{Installed: installed, Queued: queued, Available: available}
}

// Status returns everything the status endpoint shows.
func (s *Service) Status() types.StatusResponse {
	now := time.Now()
	out := types.StatusResponse{
		Queue:          s.Queue(),
		Library:        s.LibrarySets(),
		Components:     []types.Component{},
		RecentFailures: []types.Event{},
		Tools:          s.SanityCheck(),
		UptimeSeconds:  int64(now.Sub(s.started).Seconds()),
		ServerTimeUnix: now.Unix(),
	}
	if list, err := registry.LoadDir(s.cfg.ComponentsDir); err != nil {
		s.log.Warn().Err(err).Msg("scan components")
	} else {
		out.Components = list
	}

	s.mu.Lock()
	for _, e := range s.failures {
		out.RecentFailures = append(out.RecentFailures, WireEvent(e))
	}
	out.Notices = append([]string(nil), s.notices...)
	s.mu.Unlock()
	return out
}

func jobInfo(j tasks.JobInfo) types.Job {
	return types.Job{
		ID:         j.ID,
		Variant:    j.Variant,
		Kind:       string(j.Kind),
		Title:      j.Title,
		Author:     j.Author,
		EnqueuedAt: j.EnqueuedAt,
	}
}

// WireEvent converts a driver event to its API form.
func WireEvent(e tasks.Event) types.Event {
	out := types.Event{
		Type:    string(e.Type),
		JobID:   e.JobID,
		Variant: e.Variant,
		Kind:    string(e.Kind),
		At:      e.At,
		Current: e.Current,
		Total:   e.Total,
		Ratio:   e.Ratio,
		Title:   e.Title,
		Author:  e.Author,
		Error:   e.Error,
	}
	if e.Status != nil {
		out.Status = e.Status.String()
	}
	return out
}
