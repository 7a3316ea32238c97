// Package scheduler implements the cooperative periodic task runner:
// each registered Task advances in fixed-period steps on its own
// goroutine, with coordinated, idempotent shutdown. A goroutine is this
// module's idiomatic stand-in for an activity's own OS thread — the
// NTRIP toolkit's own apps (e.g.
// apps/rtcmfilter/main.go's per-channel writer goroutines) use exactly
// this shape for independent concurrent activities.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"runtime/pprof"
	"sync"
	"time"

	"github.com/google/uuid"

	"ogntrack/internal/metrics"
)

// Task is the contract every scheduled activity implements. Returning
// false means "I am done; do not call me again."
type Task interface {
	Step() bool
}

// TaskID identifies a registered activity. IDs are assigned in increasing
// order starting from 0.
type TaskID uint64

// ErrAlreadyStopped is returned by a second call to stop an activity that
// has already been asked to shut down. This is benign and callers are
// expected to ignore it.
var ErrAlreadyStopped = errors.New("scheduler: activity already stopped")

type activity struct {
	id TaskID
	name string
	task Task
	period time.Duration

	stopOnce sync.Once
	stopCh chan struct{}
	done chan struct{}
}

func (a *activity) stop() error {
	err := ErrAlreadyStopped
	a.stopOnce.Do(func() {
		close(a.stopCh)
		err = nil
	})
	return err
}

// Scheduler hosts and coordinates the lifetime of any number of Task
// activities.
type Scheduler struct {
	mu sync.Mutex
	nextID TaskID
	activities map[TaskID]*activity

	// runID tags every log line this scheduler's activities emit, so
	// that log output from successive runs of the same process (e.g.
	// after a reconnect cycle) can be told apart.
	runID string
	logger *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Scheduler at construction time.
type Option func(*Scheduler)

// WithLogger attaches a logger for per-step diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = logger }
}

// WithMetrics attaches a Metrics sink. A nil Metrics is a no-op.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scheduler) { s.metrics = m }
}

// New creates an empty Scheduler.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		activities: make(map[TaskID]*activity),
		runID: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddTask registers task under name, spawns its activity goroutine and
// returns its TaskID. A period of zero means "run continuously with a
// cooperative yield between steps."
func (s *Scheduler) AddTask(name string, task Task, period time.Duration) TaskID {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	act := &activity{
		id: id,
		name: name,
		task: task,
		period: period,
		stopCh: make(chan struct{}),
		done: make(chan struct{}),
	}
	s.activities[id] = act
	taskCount := len(s.activities)
	s.mu.Unlock()

	s.metrics.SetTaskCount(taskCount)

	labels := pprof.Labels("task", name, "scheduler_run", s.runID)
	go pprof.Do(context.Background(), labels, func(ctx context.Context) {
		s.run(act)
	})

	return id
}

// StopAll signals every tracked activity to shut down. It does not block
// for them to actually finish — call Wait for each TaskID to do that.
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, act := range s.activities {
		act.stop()
	}
}

// Wait blocks until the activity identified by id finishes (whether it
// returned false from Step or was asked to stop), then forgets it. An
// unknown id is a no-op.
func (s *Scheduler) Wait(id TaskID) {
	s.mu.Lock()
	act, ok := s.activities[id]
	s.mu.Unlock()
	if !ok {
		return
	}

	<-act.done

	s.mu.Lock()
	delete(s.activities, id)
	taskCount := len(s.activities)
	s.mu.Unlock()

	s.metrics.SetTaskCount(taskCount)
}

// run is the per-activity loop: call Step; on false, exit; otherwise
// advance next_run by period and wait for either its arrival or a
// shutdown signal. A next_run already in the past (drift) resets to now
// and polls shutdown non-blocking rather than trying to catch up with
// back-to-back steps.
func (s *Scheduler) run(act *activity) {
	defer close(act.done)

	next := time.Now()
	for {
		select {
		case <-act.stopCh:
			return
		default:
		}

		if !act.task.Step() {
			if s.logger != nil {
				s.logger.Debug("activity finished", "task", act.name, "run", s.runID)
			}
			return
		}
		s.metrics.StepTaken(act.name)

		if act.period <= 0 {
			// Cooperative yield: let other goroutines run, then loop
			// back to re-check the stop channel before the next step.
			runtime.Gosched()
			continue
		}

		next = next.Add(act.period)
		now := time.Now()
		if next.After(now) {
			timer := time.NewTimer(next.Sub(now))
			select {
			case <-timer.C:
			case <-act.stopCh:
				timer.Stop()
				return
			}
		} else {
			// Drift: we're behind schedule. Don't burn CPU trying to
			// catch up — just reset to now and continue.
			next = now
		}
	}
}
