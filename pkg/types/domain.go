package types

import "time"

// Component is a downloaded runtime component found on disk.
type Component struct {
	// Component kind (wine or dxvk).
	// example: wine
	Kind string `json:"kind" example:"wine"`
	// Version folder name.
	// example: wine-ge-proton8-26
	Name string `json:"name" example:"wine-ge-proton8-26"`
	// Absolute path of the version folder.
	// example: /home/user/.local/share/launcherd/components/wine/wine-ge-proton8-26
	Path string `json:"path" example:"/home/user/.local/share/launcherd/components/wine/wine-ge-proton8-26"`
}

// Job describes a queued or running job.
type Job struct {
	// Identifier assigned on submit.
	ID string `json:"id"`
	// Variant the job installs.
	// example: genshin
	Variant string `json:"variant" example:"genshin"`
	// Job kind: game_diff_install, component_download or prefix_creation.
	// example: game_diff_install
	Kind string `json:"kind" example:"game_diff_install"`
	// Display title.
	// example: Genshin Impact
	Title string `json:"title" example:"Genshin Impact"`
	// Display author, may be empty.
	// example: miHoYo
	Author     string    `json:"author" example:"miHoYo"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// ActiveJob is the running job with its last polled progress.
type ActiveJob struct {
	Job
	StartedAt time.Time `json:"started_at"`
	Current   uint64    `json:"current"`
	Total     uint64    `json:"total"`
	// Current/Total clamped to [0,1].
	// example: 0.5
	Ratio float64 `json:"ratio" example:"0.5"`
	// Last reported status, empty before the first poll.
	// example: downloading
	Status string `json:"status,omitempty" example:"downloading"`
}

// Event is one Presentation Bridge notification as sent over /events.
type Event struct {
	// progress, completed or failed.
	// example: progress
	Type    string    `json:"type" example:"progress"`
	JobID   string    `json:"job_id"`
	Variant string    `json:"variant"`
	Kind    string    `json:"kind"`
	At      time.Time `json:"at"`
	Current uint64    `json:"current"`
	Total   uint64    `json:"total"`
	Ratio   float64   `json:"ratio"`
	Status  string    `json:"status,omitempty"`
	Title   string    `json:"title,omitempty"`
	Author  string    `json:"author,omitempty"`
	// Failure message for failed events.
	// example: no applicable update
	Error string `json:"error,omitempty" example:"no applicable update"`
}
