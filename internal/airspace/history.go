package airspace

import (
	"sort"
	"time"

	"ogntrack/internal/wire"
)

// AircraftHistory is the ordered recent history of position reports for a
// single aircraft, kept non-decreasing by DateTime. A small sorted slice
// gives O(1) front/back access and O(log n) positional insert in the
// common case without the overhead of a tree; this mirrors the NTRIP
// toolkit's own choice of a plain slice-backed container for its
// circular queue of messages (apps/proxy/circular_queue).
type AircraftHistory struct {
	entries []wire.Aircraft
}

// Len returns the number of retained samples.
func (h *AircraftHistory) Len() int {
	return len(h.entries)
}

// Entries returns the history's samples, oldest first. The returned slice
// aliases the history's internal storage and is only valid until the next
// mutation of this history (callers read it under the Airspace's shared
// read lock, see Viewer.Read).
func (h *AircraftHistory) Entries() []wire.Aircraft {
	return h.entries
}

func (h *AircraftHistory) front() (wire.Aircraft, bool) {
	if len(h.entries) == 0 {
		return wire.Aircraft{}, false
	}
	return h.entries[0], true
}

func (h *AircraftHistory) back() (wire.Aircraft, bool) {
	if len(h.entries) == 0 {
		return wire.Aircraft{}, false
	}
	return h.entries[len(h.entries)-1], true
}

// pruneFront drops entries from the front of the history while they are
// older than cutoff, and returns how many were dropped. The front is the
// oldest entry by invariant, so this never has to scan past the first
// surviving entry.
func (h *AircraftHistory) pruneFront(cutoff time.Time) int {
	i := 0
	for i < len(h.entries) && h.entries[i].DateTime.Before(cutoff) {
		i++
	}
	if i == 0 {
		return 0
	}
	h.entries = append(h.entries[:0:0], h.entries[i:]...)
	return i
}

// insert places sample into the history, preserving non-decreasing order.
// An in-order sample is appended at the tail in O(1), and a sample older
// than every entry is prepended at the head (O(n) for the slice shift);
// everything else, including a minor reordering near the tail, falls back
// to a binary-partition insert in O(log n) + O(n) for the slice shift.
func (h *AircraftHistory) insert(sample wire.Aircraft) {
	if back, ok := h.back(); !ok || !back.DateTime.After(sample.DateTime) {
		// back.DateTime <= sample.DateTime (or history empty): append.
		h.entries = append(h.entries, sample)
		return
	}

	if front, ok := h.front(); ok && front.DateTime.After(sample.DateTime) {
		// front.DateTime > sample.DateTime: prepend. Strictly greater, not
		// >=, so a sample tied with the current front falls through to the
		// general case below and keeps the stable-append tie-break.
		h.entries = append(h.entries, wire.Aircraft{})
		copy(h.entries[1:], h.entries)
		h.entries[0] = sample
		return
	}

	// General case: find the first entry strictly after sample's
	// timestamp and insert before it. Using "strictly after" rather than
	// "at or after" is what gives ties stable-append semantics — a new
	// sample with the same timestamp as an existing entry lands after it.
	i := sort.Search(len(h.entries), func(i int) bool {
		return h.entries[i].DateTime.After(sample.DateTime)
	})
	h.entries = append(h.entries, wire.Aircraft{})
	copy(h.entries[i+1:], h.entries[i:])
	h.entries[i] = sample
}
