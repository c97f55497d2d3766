package scheduler

import (
	"sort"
	"sync"
	"time"
)

// Manual is a deterministic Scheduler for tests. Time only moves when
// Advance is called; due callbacks run inline on the advancing goroutine in
// due-time order. Manual also implements clock.Clock so a test can share one
// time source between cooldown checks and scheduled tasks.
type Manual struct {
	mu      sync.Mutex
	now     time.Time
	nextID  int
	pending []*manualTask
}

type manualTask struct {
	owner    *Manual
	id       int
	due      time.Time
	interval time.Duration // zero for one-shot
	fn       func()
	canceled bool
}

func (t *manualTask) Cancel() {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	t.canceled = true
}

// NewManual returns a manual scheduler starting at the given instant.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the current logical time.
func (s *Manual) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// After runs fn once after d of logical time has been advanced.
func (s *Manual) After(d time.Duration, fn func()) Task {
	return s.schedule(d, 0, fn)
}

// Every runs fn at each interval of logical time until cancelled.
func (s *Manual) Every(interval time.Duration, fn func()) Task {
	return s.schedule(interval, interval, fn)
}

func (s *Manual) schedule(d, interval time.Duration, fn func()) Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	t := &manualTask{
		owner:    s,
		id:       s.nextID,
		due:      s.now.Add(d),
		interval: interval,
		fn:       fn,
	}
	s.pending = append(s.pending, t)
	return t
}

// Advance moves logical time forward by d, running every task that comes due
// along the way. Tasks scheduled by a running callback are honored within the
// same advance if they fall inside the window.
func (s *Manual) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)
	for {
		t := s.popDue(target)
		if t == nil {
			break
		}
		if t.due.After(s.now) {
			s.now = t.due
		}
		fn := t.fn
		s.mu.Unlock()
		fn()
		s.mu.Lock()
	}
	s.now = target
	s.mu.Unlock()
}

// popDue removes and returns the earliest non-cancelled task due at or before
// target, rescheduling periodic tasks. Caller holds the lock.
func (s *Manual) popDue(target time.Time) *manualTask {
	sort.SliceStable(s.pending, func(i, j int) bool {
		if s.pending[i].due.Equal(s.pending[j].due) {
			return s.pending[i].id < s.pending[j].id
		}
		return s.pending[i].due.Before(s.pending[j].due)
	})
	for i, t := range s.pending {
		if t.canceled {
			continue
		}
		if t.due.After(target) {
			break
		}
		if t.interval > 0 {
			// same struct stays pending so the handle returned by
			// Every cancels all future runs
			t.due = t.due.Add(t.interval)
		} else {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
		}
		return t
	}
	// drop cancelled entries so the slice does not grow unbounded
	kept := s.pending[:0]
	for _, t := range s.pending {
		if !t.canceled {
			kept = append(kept, t)
		}
	}
	s.pending = kept
	return nil
}
