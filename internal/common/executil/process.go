package executil

import (
	"os/exec"
	"sync"
)

// ProcTracker tracks started processes so they can be killed on shutdown.
type ProcTracker struct {
	mu    sync.Mutex
	procs map[*exec.Cmd]struct{}
}

func NewProcTracker() *ProcTracker {
	return &ProcTracker{procs: make(map[*exec.Cmd]struct{})}
}

func (pt *ProcTracker) Add(cmd *exec.Cmd) {
	pt.mu.Lock()
	pt.procs[cmd] = struct{}{}
	pt.mu.Unlock()
}

func (pt *ProcTracker) Remove(cmd *exec.Cmd) {
	pt.mu.Lock()
	delete(pt.procs, cmd)
	pt.mu.Unlock()
}

func (pt *ProcTracker) Len() int {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	return len(pt.procs)
}

// KillAll kills every tracked process, best-effort.
func (pt *ProcTracker) KillAll() {
	pt.mu.Lock()
	procs := make([]*exec.Cmd, 0, len(pt.procs))
	for c := range pt.procs {
		procs = append(procs, c)
	}
	pt.procs = make(map[*exec.Cmd]struct{})
	pt.mu.Unlock()
	for _, c := range procs {
		if c.Process != nil {
			_ = c.Process.Kill()
		}
	}
}
