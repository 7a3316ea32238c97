// Package airspace implements the time-windowed, per-aircraft trajectory
// buffer: a concurrent multi-track ring of recent position reports, keyed
// by ICAO address, with a single writer and any number of concurrent
// readers. The single-mutex-over-a-map shape follows the NTRIP toolkit's
// circular queue (apps/proxy/circular_queue.CircularQueue) and its use of
// sync.RWMutex.
package airspace

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron"

	"ogntrack/internal/metrics"
	"ogntrack/internal/queue"
	"ogntrack/internal/wire"
)

// Airspace is the mapping ICAOAddress -> AircraftHistory, the scalar
// refresh stamp and the buffer window. Access is synchronized by mu:
// Store.Step takes the writer lock for the whole batch; Viewer.Read takes
// the reader lock for the scope of its callback.
type Airspace struct {
	mu sync.RWMutex
	bufferDuration time.Duration
	dateTime time.Time
	histories map[wire.ICAOAddress]*AircraftHistory

	// poisoned approximates the "prior holder aborted, lock is poisoned"
	// condition Rust's std::sync::Mutex has no Go equivalent for: if a
	// panic escapes the writer's critical section, the Airspace is
	// marked poisoned and every subsequent reader treats that as the
	// fatal programmer error it is (see Viewer.Read's poisoned check).
	poisoned bool
}

func newAirspace(bufferDuration time.Duration, now time.Time) *Airspace {
	return &Airspace{
		bufferDuration: bufferDuration,
		dateTime: now,
		histories: make(map[wire.ICAOAddress]*AircraftHistory),
	}
}

// Store is the writer side of an Airspace: it owns the inbound sample
// queue and performs the periodic update() pass. It implements the
// scheduler's Task contract (Step() bool) so it can be registered
// directly with a scheduler.Scheduler.
type Store struct {
	airspace *Airspace
	inbound *queue.Unbounded[wire.Aircraft]
	clock func() time.Time
	logger *slog.Logger
	metrics *metrics.Metrics

	gc *cron.Cron
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithLogger attaches a logger for discard/prune diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithMetrics attaches a Metrics sink. A nil Metrics (the default) is a
// no-op.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithClock overrides the store's notion of "now", for testing.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

// New constructs a Store with an empty Airspace stamped at the current
// time.
func New(bufferDuration time.Duration, inbound *queue.Unbounded[wire.Aircraft], opts ...Option) *Store {
	s := &Store{
		inbound: inbound,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.airspace = newAirspace(bufferDuration, s.clock())
	return s
}

// StartEmptyHistoryGC starts a cron job that periodically removes
// addresses whose history has pruned down to nothing. The schedule
// string follows the NTRIP toolkit's own cron usage in
// rtcmlogger/log/writer.go (robfig/cron v1 syntax, whose first field is
// seconds; descriptors such as "@every 1m" are also accepted). The
// returned function stops the job; it is safe to call more than once.
func (s *Store) StartEmptyHistoryGC(schedule string) (stop func(), err error) {
	s.gc = cron.New()
	if err := s.gc.AddFunc(schedule, s.collectEmptyHistories); err != nil {
		return nil, fmt.Errorf("airspace: invalid GC schedule %q: %w", schedule, err)
	}
	s.gc.Start()
	return s.gc.Stop, nil
}

func (s *Store) collectEmptyHistories() {
	s.airspace.mu.Lock()
	defer s.airspace.mu.Unlock()

	removed := 0
	for addr, history := range s.airspace.histories {
		if history.Len() == 0 {
			delete(s.airspace.histories, addr)
			removed++
		}
	}
	if removed > 0 && s.logger != nil {
		s.logger.Debug("garbage collected empty histories", "count", removed)
	}
	if s.metrics != nil {
		s.metrics.SetTrackedAircraft(len(s.airspace.histories))
	}
}

// Step drains every sample currently available on the inbound queue and
// applies them in one write-locked update pass. It always returns true:
// the AirspaceStore never signals the scheduler to stop on its own —
// only shutdown of the whole scheduler ends it.
func (s *Store) Step() bool {
	batch := s.inbound.Drain()
	s.update(batch)
	return true
}

// update applies one batch under the writer lock. The panic recovery
// sits inside the locked section, after the deferred Unlock is
// registered, so it runs before the unlock (defers are LIFO) and the
// poisoned flag is published to readers atomically with whatever partial
// state the panic left behind — never with the lock already released.
func (s *Store) update(batch []wire.Aircraft) {
	s.airspace.mu.Lock()
	defer s.airspace.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.airspace.poisoned = true
			if s.logger != nil {
				s.logger.Error("airspace: update panicked, marking store poisoned and skipping step", "panic", r)
			}
		}
	}()

	now := s.clock()
	s.airspace.dateTime = now
	cutoff := now.Add(-s.airspace.bufferDuration)

	prunedTotal := 0
	for _, history := range s.airspace.histories {
		prunedTotal += history.pruneFront(cutoff)
	}
	if prunedTotal > 0 {
		s.metrics.HistoriesPruned(prunedTotal)
	}

	for _, sample := range batch {
		if sample.DateTime.Before(cutoff) {
			s.metrics.SampleDropped()
			if s.logger != nil {
				s.logger.Debug("dropping stale sample", "icao", sample.ICAOAddress.String(), "age", now.Sub(sample.DateTime))
			}
			continue
		}

		history, ok := s.airspace.histories[sample.ICAOAddress]
		if !ok {
			history = &AircraftHistory{}
			s.airspace.histories[sample.ICAOAddress] = history
		}
		history.insert(sample)
		s.metrics.SampleIngested()
	}

	s.metrics.SetTrackedAircraft(len(s.airspace.histories))
}

// Viewer grants shared read access to the Store's Airspace. Any number of
// Viewers may be created and used concurrently; they share the same
// underlying Airspace and its RWMutex.
type Viewer struct {
	airspace *Airspace
}

// Viewer returns a new read handle onto the store's Airspace.
func (s *Store) Viewer() *Viewer {
	return &Viewer{airspace: s.airspace}
}

// Snapshot is the shared-read view exposed for the duration of a
// Viewer.Read call: the refresh timestamp and the ICAO -> history
// mapping, the downstream consumer's whole interface onto the airspace.
type Snapshot struct {
	DateTime time.Time
	airspace *Airspace
}

// Len returns the number of distinct aircraft currently tracked.
func (s Snapshot) Len() int {
	return len(s.airspace.histories)
}

// Track returns the ordered sample history for addr, if any is present.
// The returned slice is only valid for the lifetime of the enclosing
// Read call.
func (s Snapshot) Track(addr wire.ICAOAddress) ([]wire.Aircraft, bool) {
	history, ok := s.airspace.histories[addr]
	if !ok {
		return nil, false
	}
	return history.Entries(), true
}

// Range calls fn once for every tracked aircraft, in no particular
// order, passing its address and ordered sample history. fn must not
// retain the slice beyond the call.
func (s Snapshot) Range(fn func(addr wire.ICAOAddress, history []wire.Aircraft)) {
	for addr, history := range s.airspace.histories {
		fn(addr, history.Entries())
	}
}

// Read acquires a shared-read scope on the Airspace and runs fn with a
// Snapshot valid for the duration of the call; writes block until fn
// returns. If the Airspace was poisoned by a panicking writer, Read
// panics: lock poisoning is treated by readers as a fatal programming
// error, not a recoverable condition.
func (v *Viewer) Read(fn func(Snapshot)) {
	v.airspace.mu.RLock()
	defer v.airspace.mu.RUnlock()

	if v.airspace.poisoned {
		panic("airspace: read from a poisoned store (a prior writer panicked mid-update)")
	}

	fn(Snapshot{DateTime: v.airspace.dateTime, airspace: v.airspace})
}
