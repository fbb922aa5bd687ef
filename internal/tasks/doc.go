// Package tasks implements the installation task queue: jobs, the FIFO queue of
// pending jobs and the single background driver that resolves, polls and retires
// them. It is structured into small files by concern:
//
//   - status.go: the shared Status vocabulary and its ordering.
//   - progress.go: Progress and the derived ratio.
//   - job.go: Job and ActiveJob contracts, Meta and Guard helpers for adapters.
//   - queue.go: the FIFO Queue owned by the driver goroutine.
//   - events.go: Event, Sink and constructors for the three event types.
//   - sink_memory.go: an in-memory Sink for tests.
//   - errors.go: ResolutionError, StatusQueryError and sentinels.
//   - config.go: DriverConfig and package defaults.
//   - driver.go: the Driver loop (Submit, Run, Start).
//   - driver_state.go: driver states and the published Snapshot.
//   - metrics.go: Prometheus collectors.
//
// Concurrency model: callers only submit jobs (Submit) and consume events
// through the Sink the driver was built with. The pending list and the active
// slot are touched by the driver goroutine alone; readers get an immutable
// Snapshot published through an atomic pointer.
//
// Concrete job kinds live in internal/jobkinds.
package tasks
