package jobkinds

import (
	"context"
	"fmt"

	"launcherd/internal/catalog"
	"launcherd/internal/prefix"
	"launcherd/internal/tasks"
)

// PrefixBuilder creates wine prefixes.
type PrefixBuilder interface {
	Exists(path string) bool
	Create(ctx context.Context, path string, corefonts bool) (prefix.Build, error)
}

// PrefixJob creates a wine prefix, optionally installing corefonts into it.
type PrefixJob struct {
	tasks.Meta
	Path             string
	InstallCorefonts bool
	Builder          PrefixBuilder
}

func NewPrefixJob(path string, corefonts bool, b PrefixBuilder) *PrefixJob {
	return &PrefixJob{Meta: tasks.Meta{Var: catalog.Prefix}, Path: path, InstallCorefonts: corefonts, Builder: b}
}

func (j *PrefixJob) Kind() tasks.Kind { return tasks.KindPrefix }

func (j *PrefixJob) Resolve(ctx context.Context) (tasks.ActiveJob, error) {
	if err := j.Consume(); err != nil {
		return nil, err
	}
	if j.Builder.Exists(j.Path) {
		return nil, &tasks.ResolutionError{Variant: j.Var, Err: tasks.ErrNoApplicableUpdate}
	}
	b, err := j.Builder.Create(ctx, j.Path, j.InstallCorefonts)
	if err != nil {
		return nil, &tasks.ResolutionError{Variant: j.Var, Err: err}
	}
	// steps completed out of wineboot and the optional winetricks run
	return &active{
		variant:   j.Var,
		unitStage: everyStage,
		stage: func() (tasks.Status, int, error) {
			st, err := b.Stage()
			if err != nil {
				return 0, 0, err
			}
			s, err := PrefixStatus(st)
			return s, int(st), err
		},
		counts: func() (uint64, uint64) { return b.Current(), b.Total() },
		closer: b.Close,
	}, nil
}

// PrefixStatus maps prefix build stages onto statuses.
func PrefixStatus(st prefix.Stage) (tasks.Status, error) {
	switch st {
	case prefix.StageCreating:
		return tasks.StatusCreatingPrefix, nil
	case prefix.StageInstallingFonts:
		return tasks.StatusInstallingFonts, nil
	case prefix.StageDone:
		return tasks.StatusFinished, nil
	}
	return 0, fmt.Errorf("unknown prefix stage %d", int(st))
}
