// Package viewer implements a minimal terminal display consumer of the
// AirspaceStore's read-only view, in the spirit of the NTRIP toolkit's
// displayrtcm3 command: a periodic Task that reads a shared snapshot and
// prints a table to an io.Writer. Spatial grouping uses
// github.com/gansidui/geohash, a dependency none of this module's other
// components needed a home for.
package viewer

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/gansidui/geohash"

	"ogntrack/internal/airspace"
	"ogntrack/internal/wire"
)

// geohashPrecision controls the cell size shown in the table; 6
// characters resolve to roughly 1.2km x 0.6km, fine enough to cluster
// nearby gliders without a column that changes every sample.
const geohashPrecision = 6

// Terminal is a scheduler.Task that, on each step, reads the current
// Airspace snapshot and renders it as a plain text table.
type Terminal struct {
	viewer *airspace.Viewer
	out io.Writer
	clock func() time.Time
	logger *slog.Logger
}

// Option configures a Terminal at construction time.
type Option func(*Terminal)

// WithLogger attaches a logger for render-error diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Terminal) { t.logger = logger }
}

// WithClock overrides the Terminal's notion of "now", for testing age
// calculations.
func WithClock(clock func() time.Time) Option {
	return func(t *Terminal) { t.clock = clock }
}

// New builds a Terminal viewer that renders v to out on each Step.
func New(v *airspace.Viewer, out io.Writer, opts...Option) *Terminal {
	t := &Terminal{viewer: v, out: out, clock: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// row is one rendered line of the table: an aircraft address, its most
// recent sample, and the cell that sample falls in.
type row struct {
	addr wire.ICAOAddress
	latest wire.Aircraft
	cell string
	samples int
}

// Step renders one refresh of the table. It always returns true: a
// display glitch should not bring down the rest of the scheduler.
func (t *Terminal) Step() bool {
	defer func() {
		if r := recover(); r != nil {
			if t.logger != nil {
				t.logger.Error("viewer: render panicked, skipping this refresh", "panic", r)
			}
		}
	}()

	var rows []row
	t.viewer.Read(func(snap airspace.Snapshot) {
		snap.Range(func(addr wire.ICAOAddress, history []wire.Aircraft) {
			if len(history) == 0 {
				return
			}
			latest := history[len(history)-1]
			cell, _ := geohash.Encode(latest.Latitude, latest.Longitude, geohashPrecision)
			rows = append(rows, row{addr: addr, latest: latest, cell: cell, samples: len(history)})
		})
	})

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].addr.String() < rows[j].addr.String()
	})

	now := t.clock()
	fmt.Fprintf(t.out, "%-9s %-8s %-7s %8s %9s %6s %5s %s\n",
		"ICAO", "CALL", "AGE", "LAT", "LON", "ALT", "PTS", "CELL")
	for _, r := range rows {
		age := now.Sub(r.latest.DateTime).Round(time.Second)
		fmt.Fprintf(t.out, "%-9s %-8s %7s %8.4f %9.4f %6.0f %5d %s\n",
			r.addr.String(), r.latest.Callsign, age, r.latest.Latitude, r.latest.Longitude,
			r.latest.GPSAltitude, r.samples, r.cell)
	}

	return true
}
