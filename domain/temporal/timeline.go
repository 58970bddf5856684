package temporal

import (
	"sync"
	"time"

	pkgerrors "lineage-backend/pkg/errors"
)

// Timeline holds the ordered snapshot history of one graph. Snapshots are
// strictly increasing by timestamp; each records the stepwise diff against
// its immediate predecessor so range diffs compose instead of re-scanning.
type Timeline struct {
	mu        sync.RWMutex
	snapshots []*Snapshot
	steps     []Diff // steps[i] = snapshots[i-1] → snapshots[i]; steps[0] diffs from empty
}

// NewTimeline creates an empty timeline
func NewTimeline() *Timeline {
	return &Timeline{}
}

// Record appends a snapshot. The timestamp must be strictly after the
// current tail or the append is rejected.
func (t *Timeline) Record(s *Snapshot) error {
	if s == nil {
		return pkgerrors.NewValidation("snapshot is required")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	var prev *Snapshot
	if n := len(t.snapshots); n > 0 {
		prev = t.snapshots[n-1]
		if !s.TakenAt().After(prev.TakenAt()) {
			return pkgerrors.NewValidation("snapshot timestamp must be after the latest recorded snapshot")
		}
	}

	t.steps = append(t.steps, computeDiff(prev, s))
	t.snapshots = append(t.snapshots, s)
	return nil
}

// Diff returns the net change-list from the snapshot at a to the snapshot
// at b. Both timestamps must match recorded snapshots exactly, and a must
// not come after b. Identical timestamps yield an empty diff.
func (t *Timeline) Diff(a, b time.Time) (Diff, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ia, ok := t.indexAt(a)
	if !ok {
		return Diff{}, pkgerrors.NewNotFound("no snapshot recorded at " + a.Format(time.RFC3339Nano))
	}
	ib, ok := t.indexAt(b)
	if !ok {
		return Diff{}, pkgerrors.NewNotFound("no snapshot recorded at " + b.Format(time.RFC3339Nano))
	}
	if ia > ib {
		return Diff{}, pkgerrors.NewValidation("diff start must not come after diff end")
	}
	if ia == ib {
		return Diff{}, nil
	}
	return composeDiffs(t.steps[ia+1 : ib+1]), nil
}

// At returns the snapshot recorded at the exact timestamp
func (t *Timeline) At(ts time.Time) (*Snapshot, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	i, ok := t.indexAt(ts)
	if !ok {
		return nil, pkgerrors.NewNotFound("no snapshot recorded at " + ts.Format(time.RFC3339Nano))
	}
	return t.snapshots[i], nil
}

// Latest returns the most recent snapshot, or nil on an empty timeline
func (t *Timeline) Latest() *Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if len(t.snapshots) == 0 {
		return nil
	}
	return t.snapshots[len(t.snapshots)-1]
}

// Len returns the number of recorded snapshots
func (t *Timeline) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.snapshots)
}

// Playback returns a restartable iterator over the snapshots recorded in
// [from, to], inclusive on both ends. Zero time values leave the matching
// end of the interval open. The iterator works on a stable slice of the
// history as of this call.
func (t *Timeline) Playback(from, to time.Time) *Playback {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var window []*Snapshot
	for _, s := range t.snapshots {
		if !from.IsZero() && s.TakenAt().Before(from) {
			continue
		}
		if !to.IsZero() && s.TakenAt().After(to) {
			break
		}
		window = append(window, s)
	}
	return &Playback{snapshots: window}
}

// indexAt finds the snapshot with the exact timestamp; callers hold t.mu.
func (t *Timeline) indexAt(ts time.Time) (int, bool) {
	for i, s := range t.snapshots {
		if s.TakenAt().Equal(ts) {
			return i, true
		}
		if s.TakenAt().After(ts) {
			break
		}
	}
	return 0, false
}

// Playback steps through a snapshot window in recording order
type Playback struct {
	snapshots []*Snapshot
	pos       int
}

// Next returns the next snapshot in the window, or false when exhausted
func (p *Playback) Next() (*Snapshot, bool) {
	if p.pos >= len(p.snapshots) {
		return nil, false
	}
	s := p.snapshots[p.pos]
	p.pos++
	return s, true
}

// Restart rewinds the iterator to the beginning of its window
func (p *Playback) Restart() {
	p.pos = 0
}

// Len returns the number of snapshots in the playback window
func (p *Playback) Len() int {
	return len(p.snapshots)
}
