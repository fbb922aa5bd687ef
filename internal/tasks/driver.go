package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Driver is the single background worker that sequences job execution. Jobs
// enter through Submit; the driver resolves them one at a time in FIFO order,
// polls the active job on a fixed cadence and reports every transition to its
// Sink.
type Driver struct {
	cfg     DriverConfig
	log     zerolog.Logger
	sink    Sink
	metrics *Metrics

	submit  chan Entry
	stopped chan struct{}
	running atomic.Bool

	// owned by the Run goroutine
	queue     *Queue
	active    *activeSlot
	state     DriverState
	completed uint64
	failed    uint64
	ticker    *time.Ticker

	snap atomic.Pointer[Snapshot]

	startOnce sync.Once
	done      chan struct{}
	err       error
}

// NewDriver builds a driver that reports to sink. The driver is inert until
// Run or Start is called; jobs submitted before that are buffered.
func NewDriver(sink Sink, cfg DriverConfig) *Driver {
	if sink == nil {
		panic("tasks: nil sink")
	}
	cfg = cfg.withDefaults()
	d := &Driver{
		cfg:     cfg,
		log:     cfg.Logger.With().Str("component", "driver").Logger(),
		sink:    sink,
		metrics: cfg.Metrics,
		submit:  make(chan Entry, cfg.SubmitBuffer),
		stopped: make(chan struct{}),
		queue:   NewQueue(),
		state:   StateIdle,
		done:    make(chan struct{}),
	}
	d.snap.Store(&Snapshot{State: StateIdle, Pending: []JobInfo{}, UpdatedAt: time.Now()})
	return d
}

// Submit hands job to the driver and returns the id assigned to it. It only
// blocks when the submit buffer is full.
func (d *Driver) Submit(ctx context.Context, job Job) (string, error) {
	if job == nil {
		return "", errors.New("nil job")
	}
	e := Entry{ID: uuid.NewString(), Job: job, EnqueuedAt: time.Now()}
	select {
	case d.submit <- e:
		// With room in the buffer the send can win against a closed
		// stopped channel; nothing reads the buffer after Run returns.
		select {
		case <-d.stopped:
			return "", ErrDriverStopped
		default:
		}
		d.metrics.jobEnqueued(job.Kind())
		d.log.Debug().Str("event", "job_submitted").Str("job_id", e.ID).
			Str("variant", string(job.Variant())).Str("kind", string(job.Kind())).Msg("job submitted")
		return e.ID, nil
	case <-d.stopped:
		return "", ErrDriverStopped
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Snapshot returns the state published by the driver goroutine.
func (d *Driver) Snapshot() Snapshot { return *d.snap.Load() }

// Start runs the driver in a supervised goroutine. The outcome is observable
// through Done and Err.
func (d *Driver) Start(ctx context.Context) {
	d.startOnce.Do(func() {
		go func() {
			d.err = d.Run(ctx)
			close(d.done)
		}()
	})
}

// Done is closed once a Start-ed driver has exited.
func (d *Driver) Done() <-chan struct{} { return d.done }

// Err returns the exit error of a Start-ed driver, nil while it runs.
func (d *Driver) Err() error {
	select {
	case <-d.done:
		return d.err
	default:
		return nil
	}
}

// Run executes the driver loop until ctx is done or the sink fails. Context
// cancellation is a clean stop and returns nil; queued jobs are dropped.
func (d *Driver) Run(ctx context.Context) error {
	if !d.running.CompareAndSwap(false, true) {
		return errors.New("driver already running")
	}
	defer close(d.stopped)

	d.ticker = time.NewTicker(d.cfg.PollInterval)
	defer d.ticker.Stop()

	d.log.Info().Str("event", "driver_start").Dur("poll_interval", d.cfg.PollInterval).Msg("driver started")
	d.publish()

	for {
		if d.active == nil {
			if e, ok := d.queue.TakeNext(); ok {
				if err := d.start(ctx, e); err != nil {
					return d.abort(err)
				}
				continue
			}
			d.setState(StateIdle)
			select {
			case e := <-d.submit:
				d.queue.Enqueue(e)
				d.publish()
			case <-ctx.Done():
				return d.shutdown()
			}
			continue
		}

		select {
		case e := <-d.submit:
			d.queue.Enqueue(e)
			d.publish()
		case <-d.ticker.C:
			if err := d.poll(); err != nil {
				return d.abort(err)
			}
		case <-ctx.Done():
			return d.shutdown()
		}
	}
}

// start resolves the head job. Only sink errors are returned.
func (d *Driver) start(ctx context.Context, e Entry) error {
	info := e.Info()
	d.setState(StateStarting)
	d.log.Info().Str("event", "job_start").Str("job_id", info.ID).Str("variant", info.Variant).
		Str("kind", string(info.Kind)).Msg("resolving job")

	var aj ActiveJob
	err := guarded(func() error {
		var rerr error
		aj, rerr = e.Job.Resolve(ctx)
		return rerr
	})
	if err == nil && aj == nil {
		err = errors.New("resolve returned no active job")
	}
	if err != nil {
		if !IsResolutionError(err) {
			err = &ResolutionError{Variant: e.Job.Variant(), Err: err}
		}
		d.log.Warn().Str("event", "job_resolve_failed").Str("job_id", info.ID).Str("variant", info.Variant).
			Err(err).Msg("job abandoned")
		d.failed++
		d.metrics.jobFailed(info.Kind, "resolve", time.Time{})
		d.setState(StateFailed)
		if err := d.emit(JobFailed(info, err)); err != nil {
			return err
		}
		d.setState(StateIdle)
		return nil
	}

	d.active = &activeSlot{info: info, job: aj, startedAt: time.Now()}
	d.setState(StateRunning)
	d.ticker.Reset(d.cfg.PollInterval)
	return d.poll()
}

// poll reads the active job once and emits the resulting events.
func (d *Driver) poll() error {
	a := d.active
	if a == nil {
		return nil
	}

	var (
		finished bool
		st       Status
		p        Progress
	)
	err := guarded(func() error {
		finished = a.job.IsFinished()
		var serr error
		st, serr = a.job.Status()
		if serr != nil {
			return serr
		}
		p = a.job.Progress()
		return nil
	})
	if err != nil {
		if !IsStatusQueryError(err) {
			err = &StatusQueryError{Variant: a.job.Variant(), Err: err}
		}
		d.log.Warn().Str("event", "job_status_failed").Str("job_id", a.info.ID).Str("variant", a.info.Variant).
			Err(err).Msg("job abandoned")
		d.failed++
		d.metrics.jobFailed(a.info.Kind, "status", a.startedAt)
		d.setState(StateFailed)
		d.release(a)
		if err := d.emit(JobFailed(a.info, err)); err != nil {
			return err
		}
		d.setState(StateIdle)
		return nil
	}

	a.progress, a.status, a.polled = p, st, true
	d.publish()
	if err := d.emit(ProgressTick(a.info, p, st)); err != nil {
		return err
	}

	if st != StatusFinished {
		if finished {
			d.log.Debug().Str("job_id", a.info.ID).Str("status", st.String()).Msg("finished flag ahead of status")
		}
		return nil
	}

	d.setState(StateCompleting)
	d.release(a)
	d.completed++
	d.metrics.jobCompleted(a.info.Kind, a.startedAt)
	d.log.Info().Str("event", "job_completed").Str("job_id", a.info.ID).Str("variant", a.info.Variant).
		Dur("dur", time.Since(a.startedAt)).Msg("job completed")
	if err := d.emit(JobCompleted(a.info)); err != nil {
		return err
	}
	d.setState(StateIdle)
	return nil
}

// release drops the active job and closes its handle.
func (d *Driver) release(a *activeSlot) {
	d.active = nil
	if err := guarded(a.job.Close); err != nil {
		d.log.Warn().Str("job_id", a.info.ID).Err(err).Msg("close active job")
	}
}

func (d *Driver) emit(e Event) error {
	if err := d.sink.Publish(e); err != nil {
		return fmt.Errorf("%w: %v", ErrSinkClosed, err)
	}
	return nil
}

func (d *Driver) shutdown() error {
	if d.active != nil {
		d.log.Warn().Str("event", "driver_stop").Str("job_id", d.active.info.ID).Msg("stopping with an active job")
		d.release(d.active)
	}
	if !d.queue.IsEmpty() {
		d.log.Warn().Str("event", "driver_stop").Int("pending", d.queue.Len()).Msg("dropping queued jobs")
	}
	d.log.Info().Str("event", "driver_stop").Int("dropped", d.queue.Len()+len(d.submit)).Msg("driver stopped")
	d.setState(StateIdle)
	return nil
}

func (d *Driver) abort(err error) error {
	d.log.Error().Str("event", "driver_abort").Err(err).Msg("event pipe lost")
	if d.active != nil {
		d.release(d.active)
	}
	return err
}

func (d *Driver) setState(s DriverState) {
	if d.state == s {
		return
	}
	d.log.Debug().Str("from", string(d.state)).Str("to", string(s)).Msg("driver transition")
	d.state = s
	d.publish()
}

func (d *Driver) publish() {
	snap := &Snapshot{
		State:     d.state,
		Pending:   d.queue.Pending(),
		Completed: d.completed,
		Failed:    d.failed,
		UpdatedAt: time.Now(),
	}
	active := 0
	if d.active != nil {
		snap.Active = d.active.describe()
		active = 1
	}
	d.snap.Store(snap)
	d.metrics.setQueue(d.queue.Len(), active)
}

// guarded runs fn and turns a panic in job code into an error.
func guarded(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
