package jobkinds

import (
	"context"
	"fmt"

	"launcherd/internal/catalog"
	"launcherd/internal/gamediff"
	"launcherd/internal/tasks"
)

// Diff is an installable game update. Install returns a nil Updater when
// there is nothing to install.
type Diff interface {
	Install(ctx context.Context) (gamediff.Updater, error)
}

// GameDiffJob installs a game update.
type GameDiffJob struct {
	tasks.Meta
	Diff Diff
}

func NewGameDiffJob(v catalog.Variant, d Diff) *GameDiffJob {
	return &GameDiffJob{Meta: tasks.Meta{Var: v}, Diff: d}
}

func (j *GameDiffJob) Kind() tasks.Kind { return tasks.KindGameDiff }

func (j *GameDiffJob) Resolve(ctx context.Context) (tasks.ActiveJob, error) {
	if err := j.Consume(); err != nil {
		return nil, err
	}
	up, err := j.Diff.Install(ctx)
	if err != nil {
		return nil, &tasks.ResolutionError{Variant: j.Var, Err: err}
	}
	if up == nil {
		return nil, &tasks.ResolutionError{Variant: j.Var, Err: tasks.ErrNoApplicableUpdate}
	}
	return &active{
		variant:   j.Var,
		unitStage: int(gamediff.StageDownloading), // archive bytes
		stage: func() (tasks.Status, int, error) {
			st, err := up.Stage()
			if err != nil {
				return 0, 0, err
			}
			s, err := DiffStatus(st)
			return s, int(st), err
		},
		counts: func() (uint64, uint64) { return up.Current(), up.Total() },
		closer: up.Close,
	}, nil
}

// DiffStatus maps updater stages onto statuses one to one.
func DiffStatus(st gamediff.Stage) (tasks.Status, error) {
	switch st {
	case gamediff.StagePreparingTransition:
		return tasks.StatusPreparingTransition, nil
	case gamediff.StageDownloading:
		return tasks.StatusDownloading, nil
	case gamediff.StageUnpacking:
		return tasks.StatusUnpacking, nil
	case gamediff.StageFinishingTransition:
		return tasks.StatusFinishingTransition, nil
	case gamediff.StageApplyingHdiffPatches:
		return tasks.StatusApplyingHdiffPatches, nil
	case gamediff.StageDeletingObsoleteFiles:
		return tasks.StatusDeletingObsoleteFiles, nil
	case gamediff.StageFinished:
		return tasks.StatusFinished, nil
	}
	return 0, fmt.Errorf("unknown updater stage %d", int(st))
}
