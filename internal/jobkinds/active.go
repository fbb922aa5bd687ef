package jobkinds

import (
	"launcherd/internal/catalog"
	"launcherd/internal/tasks"
)

// everyStage makes an adapter report the capability counters as they are.
const everyStage = -1

// active is the ActiveJob shared by all adapters. stage returns the mapped
// status and the ordinal of the capability stage.
//
// unitStage names the capability stage whose counters measure the job, e.g.
// the download of an update archive. Earlier stages report nothing yet and
// later stages hold at the total reached there, so a counter reset by the
// capability between stages never shows up as a step back.
type active struct {
	variant   catalog.Variant
	unitStage int
	stage     func() (tasks.Status, int, error)
	counts    func() (uint64, uint64)
	closer    func() error

	guard tasks.Guard
	phase int
	held  tasks.Progress
}

func (a *active) Variant() catalog.Variant { return a.variant }

func (a *active) IsFinished() bool {
	s, _, err := a.stage()
	return err == nil && s == tasks.StatusFinished
}

func (a *active) Status() (tasks.Status, error) {
	s, phase, err := a.stage()
	if err != nil {
		return 0, err
	}
	if phase > a.phase {
		a.phase = phase
	}
	return a.guard.Status(s), nil
}

func (a *active) Progress() tasks.Progress {
	cur, total := a.counts()
	var p tasks.Progress
	switch {
	case a.unitStage == everyStage:
		p = tasks.Progress{Current: cur, Total: total}
	case a.phase < a.unitStage:
		// nothing measured yet
	case a.phase == a.unitStage:
		if total > 0 && cur > total {
			cur = total
		}
		p = tasks.Progress{Current: cur, Total: total}
		a.held = p
	default:
		n := a.held.Total
		if n == 0 {
			n = a.held.Current
		}
		if n == 0 {
			n = 1
		}
		p = tasks.Progress{Current: n, Total: n}
	}
	return a.guard.Progress(p)
}

func (a *active) Close() error { return a.closer() }
