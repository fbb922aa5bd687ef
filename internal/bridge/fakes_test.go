package bridge

import (
	"context"
	"errors"

	"launcherd/internal/catalog"
	"launcherd/internal/tasks"
)

// failingJob never resolves; the driver reports it straight away.
type failingJob struct{}

func (failingJob) Variant() catalog.Variant { return catalog.Genshin }
func (failingJob) Title() string            { return "Genshin Impact" }
func (failingJob) Author() string           { return "miHoYo" }
func (failingJob) Kind() tasks.Kind         { return tasks.KindGameDiff }

func (failingJob) Resolve(context.Context) (tasks.ActiveJob, error) {
	return nil, errors.New("offline")
}
