package types

import "time"

// Job kinds accepted by POST /jobs.
const (
	EnqueueGame      = "game"
	EnqueueUpdate    = "update"
	EnqueueComponent = "component"
	EnqueuePrefix    = "prefix"
)

// EnqueueRequest is the body of POST /jobs. Which fields are read depends on Kind.
type EnqueueRequest struct {
	// game, update, component or prefix.
	// example: game
	Kind string `json:"kind" example:"game"`
	// Game variant (kind=game or update) or component kind wine/dxvk (kind=component).
	// example: genshin
	Variant string `json:"variant,omitempty" example:"genshin"`
	// Component version name (kind=component). Empty selects the configured version.
	// example: wine-ge-proton8-26
	Name string `json:"name,omitempty" example:"wine-ge-proton8-26"`
	// Prefix path (kind=prefix). Empty selects the configured prefix.
	// example: /home/user/.local/share/launcherd/prefix
	Path string `json:"path,omitempty"`
	// Install corefonts after creating the prefix (kind=prefix).
	// example: true
	InstallCorefonts bool `json:"install_corefonts,omitempty" example:"true"`
}

// EnqueueResponse is returned by POST /jobs with status 202.
type EnqueueResponse struct {
	JobID string `json:"job_id"`
	// example: genshin
	Variant string `json:"variant" example:"genshin"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// QueueResponse is returned by GET /queue.
type QueueResponse struct {
	// Driver state: idle, starting, running, completing or failed.
	// example: running
	State   string     `json:"state" example:"running"`
	Active  *ActiveJob `json:"active,omitempty"`
	Pending []Job      `json:"pending"`
	// example: 3
	CompletedTotal uint64 `json:"completed_total" example:"3"`
	// example: 1
	FailedTotal uint64    `json:"failed_total" example:"1"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// LibraryResponse is returned by GET /library. The three sets are disjoint.
type LibraryResponse struct {
	Installed []string `json:"installed"`
	Queued    []string `json:"queued"`
	Available []string `json:"available"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	Queue      QueueResponse   `json:"queue"`
	Library    LibraryResponse `json:"library"`
	Components []Component     `json:"components"`
	// Most recent failures, oldest first.
	RecentFailures []Event `json:"recent_failures"`
	// Startup notices such as an unusable component configuration.
	Notices []string `json:"notices,omitempty"`
	// External programs used by the pipelines.
	Tools []ToolCheck `json:"tools"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}

// ToolCheck reports whether an external program was found.
type ToolCheck struct {
	// example: hpatchz
	Name  string `json:"name" example:"hpatchz"`
	Found bool   `json:"found"`
	// Resolved executable path.
	Path  string `json:"path,omitempty"`
	Error string `json:"error,omitempty"`
}
