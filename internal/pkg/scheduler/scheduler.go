// Package scheduler provides cancellable deferred and periodic tasks on a
// single logical clock. Arena countdowns, wave spawn cycles, death-action
// delays and the end-of-game grace period are all driven through it, so
// tests can substitute a manual implementation and advance time
// deterministically.
package scheduler

import (
	"sync"
	"time"
)

//go:generate mockgen -destination=mock/mock.go -package=mockscheduler github.com/bixgamer707/hordes/internal/pkg/scheduler Scheduler

// Task is the cancellation handle for a scheduled callback. The owner of a
// task must retain the handle and cancel it when leaving the state that
// scheduled it, otherwise a stale timer can fire against reset state.
type Task interface {
	// Cancel stops the task if it has not fired yet. Safe to call more
	// than once and after the task has already run.
	Cancel()
}

// Scheduler schedules callbacks on the logical clock.
type Scheduler interface {
	// After runs fn once after d has elapsed.
	After(d time.Duration, fn func()) Task

	// Every runs fn repeatedly at the given interval until cancelled.
	// The first run happens one interval from now.
	Every(interval time.Duration, fn func()) Task
}

// Real implements Scheduler on top of the runtime timers.
type Real struct{}

// NewReal returns a scheduler backed by wall-clock timers.
func NewReal() *Real {
	return &Real{}
}

type realTask struct {
	once sync.Once
	stop func()
}

func (t *realTask) Cancel() {
	t.once.Do(t.stop)
}

// After runs fn once after d has elapsed.
func (s *Real) After(d time.Duration, fn func()) Task {
	timer := time.AfterFunc(d, fn)
	return &realTask{stop: func() { timer.Stop() }}
}

// Every runs fn at the given interval until cancelled.
func (s *Real) Every(interval time.Duration, fn func()) Task {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				return
			}
		}
	}()
	return &realTask{stop: func() {
		ticker.Stop()
		close(done)
	}}
}
