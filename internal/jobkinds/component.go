package jobkinds

import (
	"context"
	"fmt"

	"launcherd/internal/components"
	"launcherd/internal/tasks"
	"launcherd/internal/transfer"
)

// ComponentSource downloads component versions.
type ComponentSource interface {
	IsDownloaded(v components.Version) bool
	Download(ctx context.Context, v components.Version) (transfer.Task, error)
}

// ComponentJob downloads one wine or dxvk version. Its title is the version
// title and its author is empty.
type ComponentJob struct {
	tasks.Meta
	Version components.Version
	Source  ComponentSource
}

func NewComponentJob(v components.Version, src ComponentSource) *ComponentJob {
	return &ComponentJob{
		Meta:    tasks.Meta{Var: v.Kind, TitleText: v.DisplayTitle()},
		Version: v,
		Source:  src,
	}
}

func (j *ComponentJob) Kind() tasks.Kind { return tasks.KindComponent }

// Author is empty for components whatever the catalog says.
func (j *ComponentJob) Author() string { return j.AuthorText }

func (j *ComponentJob) Resolve(ctx context.Context) (tasks.ActiveJob, error) {
	if err := j.Consume(); err != nil {
		return nil, err
	}
	if j.Source.IsDownloaded(j.Version) {
		return nil, &tasks.ResolutionError{Variant: j.Var, Err: tasks.ErrNoApplicableUpdate}
	}
	t, err := j.Source.Download(ctx, j.Version)
	if err != nil {
		return nil, &tasks.ResolutionError{Variant: j.Var, Err: err}
	}
	return &active{
		variant:   j.Var,
		unitStage: int(transfer.StageDownloading),
		stage: func() (tasks.Status, int, error) {
			st, err := t.Stage()
			if err != nil {
				return 0, 0, err
			}
			s, err := TransferStatus(st)
			return s, int(st), err
		},
		counts: func() (uint64, uint64) { return t.Current(), t.Total() },
		closer: t.Close,
	}, nil
}

// TransferStatus maps transfer stages onto statuses.
func TransferStatus(st transfer.Stage) (tasks.Status, error) {
	switch st {
	case transfer.StageDownloading:
		return tasks.StatusDownloading, nil
	case transfer.StageUnpacking:
		return tasks.StatusUnpacking, nil
	case transfer.StageDone:
		return tasks.StatusFinished, nil
	}
	return 0, fmt.Errorf("unknown transfer stage %d", int(st))
}
