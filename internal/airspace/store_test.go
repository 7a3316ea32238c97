package airspace

import (
	"testing"
	"time"

	"ogntrack/internal/queue"
	"ogntrack/internal/wire"
)

func addr(t *testing.T, v uint32) wire.ICAOAddress {
	t.Helper()
	a, err := wire.NewICAOAddress(v)
	if err != nil {
		t.Fatalf("NewICAOAddress(%#x): %v", v, err)
	}
	return a
}

func TestStoreStepPrunesOnEveryUpdate(t *testing.T) {
	now := time.Date(2026, 7, 29, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	q := queue.New[wire.Aircraft]()
	store := New(5*time.Second, q, WithClock(clock))

	a := addr(t, 0x000000)
	q.Send(wire.Aircraft{ICAOAddress: a, DateTime: now.Add(-10 * time.Second)})
	q.Send(wire.Aircraft{ICAOAddress: a, DateTime: now.Add(-3 * time.Second)})
	q.Send(wire.Aircraft{ICAOAddress: a, DateTime: now.Add(-1 * time.Second)})

	if !store.Step() {
		t.Fatal("Step() returned false, want true")
	}

	viewer := store.Viewer()
	var got []time.Time
	viewer.Read(func(s Snapshot) {
		history, ok := s.Track(a)
		if !ok {
			t.Fatal("expected a track for address")
		}
		for _, e := range history {
			got = append(got, e.DateTime)
		}
	})

	// -10s is dropped on arrival (older than cutoff); -3s and -1s survive.
	want := []time.Time{now.Add(-3 * time.Second), now.Add(-1 * time.Second)}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("entry %d = %v, want %v", i, got[i], want[i])
		}
	}

	// A second update with nothing new should prune -3s once the clock
	// advances far enough, matching scenario 4.
	clock2 := now.Add(3 * time.Second)
	store.clock = func() time.Time { return clock2 }
	store.Step()

	viewer.Read(func(s Snapshot) {
		history, _ := s.Track(a)
		if len(history) != 1 {
			t.Errorf("after second update, len = %d, want 1 (%v)", len(history), history)
		}
	})
}

func TestStoreStepDropsSamplesOlderThanCutoff(t *testing.T) {
	now := time.Date(2026, 7, 29, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	q := queue.New[wire.Aircraft]()
	store := New(5*time.Second, q, WithClock(clock))

	a := addr(t, 0x000001)
	q.Send(wire.Aircraft{ICAOAddress: a, DateTime: now.Add(-10 * time.Second)})

	store.Step()

	viewer := store.Viewer()
	viewer.Read(func(s Snapshot) {
		history, ok := s.Track(a)
		if ok && len(history) != 0 {
			t.Errorf("expected no surviving entries for a sample older than cutoff, got %v", history)
		}
	})
}

func TestStoreViewerSeesConsistentSnapshot(t *testing.T) {
	now := time.Date(2026, 7, 29, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	q := queue.New[wire.Aircraft]()
	store := New(time.Minute, q, WithClock(clock))

	a := addr(t, 0x000002)
	q.Send(wire.Aircraft{ICAOAddress: a, DateTime: now})
	store.Step()

	viewer := store.Viewer()
	count := 0
	viewer.Read(func(s Snapshot) {
		count = s.Len()
		if !s.DateTime.Equal(now) {
			t.Errorf("Snapshot.DateTime = %v, want %v", s.DateTime, now)
		}
	})
	if count != 1 {
		t.Errorf("Snapshot.Len() = %d, want 1", count)
	}
}
