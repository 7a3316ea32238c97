// Package metrics exposes the Prometheus instrumentation for the
// Scheduler and AirspaceStore. Wiring client_golang here follows the
// stratux dependency list (github.com/prometheus/client_golang) rather
// than the NTRIP toolkit, which doesn't ship its own metrics; this
// package is grounded on that sibling project instead.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds every collector this module registers. A nil *Metrics is
// valid everywhere it's accepted — every method is a no-op on a nil
// receiver, so callers that don't care about metrics can pass nil.
type Metrics struct {
	SchedulerSteps *prometheus.CounterVec
	SchedulerTaskCount prometheus.Gauge

	AirspaceSamplesIngested prometheus.Counter
	AirspaceSamplesDropped prometheus.Counter
	AirspaceHistoriesPruned prometheus.Counter
	AirspaceTrackedAircraft prometheus.Gauge
}

// New creates a Metrics instance and registers its collectors with reg.
// Passing a fresh prometheus.NewRegistry() is recommended for tests so
// that repeated test runs don't collide with a shared default registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SchedulerSteps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ogntrack",
			Subsystem: "scheduler",
			Name: "task_steps_total",
			Help: "Number of steps taken by each scheduled task, labelled by task name.",
		}, []string{"task"}),
		SchedulerTaskCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ogntrack",
			Subsystem: "scheduler",
			Name: "tasks_running",
			Help: "Number of activities currently tracked by the scheduler.",
		}),
		AirspaceSamplesIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ogntrack",
			Subsystem: "airspace",
			Name: "samples_ingested_total",
			Help: "Number of Aircraft samples inserted into a track history.",
		}),
		AirspaceSamplesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ogntrack",
			Subsystem: "airspace",
			Name: "samples_dropped_total",
			Help: "Number of Aircraft samples discarded for arriving older than the buffer cutoff.",
		}),
		AirspaceHistoriesPruned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ogntrack",
			Subsystem: "airspace",
			Name: "entries_pruned_total",
			Help: "Number of stale samples removed from track histories.",
		}),
		AirspaceTrackedAircraft: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ogntrack",
			Subsystem: "airspace",
			Name: "tracked_aircraft",
			Help: "Number of distinct ICAO addresses currently present in the airspace map.",
		}),
	}

	reg.MustRegister(
		m.SchedulerSteps,
		m.SchedulerTaskCount,
		m.AirspaceSamplesIngested,
		m.AirspaceSamplesDropped,
		m.AirspaceHistoriesPruned,
		m.AirspaceTrackedAircraft,
	)

	return m
}

// StepTaken records that task took a step.
func (m *Metrics) StepTaken(task string) {
	if m == nil {
		return
	}
	m.SchedulerSteps.WithLabelValues(task).Inc()
}

// SetTaskCount records the current number of tracked scheduler activities.
func (m *Metrics) SetTaskCount(n int) {
	if m == nil {
		return
	}
	m.SchedulerTaskCount.Set(float64(n))
}

// SampleIngested records a successfully inserted sample.
func (m *Metrics) SampleIngested() {
	if m == nil {
		return
	}
	m.AirspaceSamplesIngested.Inc()
}

// SampleDropped records a sample discarded for being too old.
func (m *Metrics) SampleDropped() {
	if m == nil {
		return
	}
	m.AirspaceSamplesDropped.Inc()
}

// HistoriesPruned records n stale entries removed across all histories in
// one update pass.
func (m *Metrics) HistoriesPruned(n int) {
	if m == nil {
		return
	}
	m.AirspaceHistoriesPruned.Add(float64(n))
}

// SetTrackedAircraft records the current size of the airspace map.
func (m *Metrics) SetTrackedAircraft(n int) {
	if m == nil {
		return
	}
	m.AirspaceTrackedAircraft.Set(float64(n))
}
