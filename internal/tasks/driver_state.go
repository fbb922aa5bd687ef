package tasks

import "time"

// DriverState is the lifecycle state of the driver loop.
type DriverState string

const (
	StateIdle       DriverState = "idle"
	StateStarting   DriverState = "starting"
	StateRunning    DriverState = "running"
	StateCompleting DriverState = "completing"
	// StateFailed is passed through while a failure event is emitted; the
	// driver always returns to StateIdle afterwards.
	StateFailed DriverState = "failed"
)

// ActiveInfo describes the running job as of the last poll.
type ActiveInfo struct {
	JobInfo
	StartedAt time.Time `json:"started_at"`
	Progress  Progress  `json:"progress"`
	Ratio     float64   `json:"ratio"`
	Status    *Status   `json:"status,omitempty"`
}

// Snapshot is a read-only projection of the driver state.
type Snapshot struct {
	State     DriverState `json:"state"`
	Active    *ActiveInfo `json:"active,omitempty"`
	Pending   []JobInfo   `json:"pending"`
	Completed uint64      `json:"completed_total"`
	Failed    uint64      `json:"failed_total"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// activeSlot is the single running job. Owned by the driver goroutine.
type activeSlot struct {
	info      JobInfo
	job       ActiveJob
	startedAt time.Time
	progress  Progress
	status    Status
	polled    bool
}

func (a *activeSlot) describe() *ActiveInfo {
	out := &ActiveInfo{
		JobInfo:   a.info,
		StartedAt: a.startedAt,
		Progress:  a.progress,
		Ratio:     a.progress.Ratio(),
	}
	if a.polled {
		st := a.status
		out.Status = &st
	}
	return out
}
