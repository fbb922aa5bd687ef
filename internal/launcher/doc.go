// Package launcher wires the task queue driver to the installation
// capabilities, the library tracker and the event hub.
//
// Files:
//   - service.go: Service construction, Run and lifecycle
//   - enqueue.go: EnqueueGame, EnqueueUpdate, EnqueueComponent, EnqueuePrefix
//   - bootstrap.go: startup checks and the periodic update check
//   - status.go: status projection for the HTTP API
//   - sanity.go: external tool checks reported in the status
//   - errors.go: typed errors and helpers
package launcher
