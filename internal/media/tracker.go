package media

import (
	"maps"
	"sync"
	"time"

	"storefront/internal/state"
)

// DefaultRetention is how long a finished batch stays visible.
const DefaultRetention = 3 * time.Second

// Tracker keeps per-file upload progress keyed by filename. Completed and
// error are terminal: later updates for that file are ignored. Once every
// tracked file is terminal the map is kept for the retention period and then
// cleared.
type Tracker struct {
	retention time.Duration

	mu    sync.Mutex
	gen   int
	timer *time.Timer

	cell *state.Cell[map[string]Progress]
}

func NewTracker(retention time.Duration) *Tracker {
	return &Tracker{
		retention: retention,
		cell:      state.NewCell(map[string]Progress{}),
	}
}

// Begin starts tracking names at 0%, replacing any finished batch.
func (t *Tracker) Begin(names ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopTimerLocked()
	t.cell.Update(func(cur map[string]Progress) map[string]Progress {
		next := make(map[string]Progress, len(cur)+len(names))
		for k, v := range cur {
			if !v.Status.Terminal() {
				next[k] = v
			}
		}
		for _, n := range names {
			next[n] = Progress{Filename: n, Status: StatusUploading}
		}
		return next
	})
}

func (t *Tracker) SetPercent(name string, percent int) {
	t.transition(name, func(p Progress) Progress {
		if percent > p.Percent {
			p.Percent = min(percent, 100)
		}
		return p
	})
}

func (t *Tracker) Complete(name, url string) {
	t.transition(name, func(p Progress) Progress {
		p.Percent = 100
		p.Status = StatusCompleted
		p.URL = url
		return p
	})
}

func (t *Tracker) Fail(name, message string) {
	t.transition(name, func(p Progress) Progress {
		p.Status = StatusError
		p.Error = message
		return p
	})
}

func (t *Tracker) transition(name string, fn func(Progress) Progress) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur := t.cell.Get()
	p, ok := cur[name]
	if !ok || p.Status.Terminal() {
		return
	}

	next := maps.Clone(cur)
	next[name] = fn(p)
	t.cell.Set(next)

	if allTerminal(next) {
		t.scheduleClearLocked()
	}
}

func allTerminal(m map[string]Progress) bool {
	if len(m) == 0 {
		return false
	}
	for _, p := range m {
		if !p.Status.Terminal() {
			return false
		}
	}
	return true
}

func (t *Tracker) scheduleClearLocked() {
	t.stopTimerLocked()
	t.gen++
	gen := t.gen
	t.timer = time.AfterFunc(t.retention, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if gen != t.gen {
			return
		}
		t.timer = nil
		t.cell.Set(map[string]Progress{})
	})
}

func (t *Tracker) stopTimerLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.gen++
}

// Snapshot returns a copy of the progress map.
func (t *Tracker) Snapshot() map[string]Progress {
	return maps.Clone(t.cell.Get())
}

// Done reports whether a batch is tracked and every file in it is terminal.
func (t *Tracker) Done() bool { return allTerminal(t.cell.Get()) }

func (t *Tracker) Subscribe(fn func(map[string]Progress)) (cancel func()) {
	return t.cell.Subscribe(func(m map[string]Progress) { fn(maps.Clone(m)) })
}

// Clear drops every record immediately.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopTimerLocked()
	t.cell.Set(map[string]Progress{})
}
