package scheduler_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bixgamer707/hordes/internal/pkg/scheduler"
)

var testStart = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func TestManualAfter(t *testing.T) {
	s := scheduler.NewManual(testStart)

	fired := 0
	s.After(10*time.Second, func() { fired++ })

	s.Advance(9 * time.Second)
	assert.Equal(t, 0, fired)

	s.Advance(1 * time.Second)
	assert.Equal(t, 1, fired)

	// one-shot does not fire again
	s.Advance(time.Minute)
	assert.Equal(t, 1, fired)
}

func TestManualAfterCancel(t *testing.T) {
	s := scheduler.NewManual(testStart)

	fired := 0
	task := s.After(10*time.Second, func() { fired++ })
	task.Cancel()

	s.Advance(time.Minute)
	assert.Equal(t, 0, fired)

	// cancelling again is a no-op
	task.Cancel()
}

func TestManualEvery(t *testing.T) {
	s := scheduler.NewManual(testStart)

	fired := 0
	task := s.Every(20*time.Second, func() { fired++ })

	s.Advance(60 * time.Second)
	assert.Equal(t, 3, fired)

	task.Cancel()
	s.Advance(60 * time.Second)
	assert.Equal(t, 3, fired)
}

func TestManualOrdering(t *testing.T) {
	s := scheduler.NewManual(testStart)

	var order []string
	s.After(30*time.Second, func() { order = append(order, "late") })
	s.After(10*time.Second, func() { order = append(order, "early") })
	s.After(20*time.Second, func() { order = append(order, "middle") })

	s.Advance(time.Minute)
	assert.Equal(t, []string{"early", "middle", "late"}, order)
}

func TestManualNestedSchedule(t *testing.T) {
	s := scheduler.NewManual(testStart)

	fired := 0
	s.After(10*time.Second, func() {
		s.After(5*time.Second, func() { fired++ })
	})

	// the nested task falls inside the same advance window
	s.Advance(time.Minute)
	assert.Equal(t, 1, fired)
}

func TestManualNowTracksDueTime(t *testing.T) {
	s := scheduler.NewManual(testStart)

	var seen time.Time
	s.After(10*time.Second, func() { seen = s.Now() })

	s.Advance(time.Minute)
	assert.Equal(t, testStart.Add(10*time.Second), seen)
	assert.Equal(t, testStart.Add(time.Minute), s.Now())
}

func TestRealAfterFires(t *testing.T) {
	s := scheduler.NewReal()

	done := make(chan struct{})
	s.After(time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task never fired")
	}
}

func TestRealCancelStopsPeriodic(t *testing.T) {
	s := scheduler.NewReal()

	ch := make(chan struct{}, 16)
	task := s.Every(time.Millisecond, func() { ch <- struct{}{} })

	<-ch
	task.Cancel()
	// Cancel twice is safe.
	task.Cancel()
}
