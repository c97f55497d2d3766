// Package stats applies arena gameplay events to the statistics repository.
// Events are queued and applied by a single background worker so the event
// delivery path never blocks on storage I/O, and each event lands exactly
// once.
package stats

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bixgamer707/hordes/internal/errors"
	"github.com/bixgamer707/hordes/internal/repositories/statistics"
)

//go:generate mockgen -destination=mock/mock.go -package=statsmock github.com/bixgamer707/hordes/internal/stats Recorder

// EventType classifies a gameplay event.
type EventType string

// Event types
const (
	EventKill        EventType = "kill"
	EventDeath       EventType = "death"
	EventAttempt     EventType = "attempt"
	EventCompletion  EventType = "completion"
	EventWaveReached EventType = "wave_reached"
	EventPlaytime    EventType = "playtime"
)

// Event is one statistics-relevant occurrence. Wave is set for
// EventWaveReached; Elapsed for EventCompletion and EventPlaytime.
type Event struct {
	Type     EventType
	PlayerID string
	ArenaID  string
	Wave     int
	Elapsed  time.Duration
}

// Recorder accepts gameplay events for asynchronous persistence.
type Recorder interface {
	Record(event Event)
}

// Config holds the dependencies for the async recorder.
type Config struct {
	Repository statistics.Repository
	// BufferSize bounds the queue; zero means 256.
	BufferSize int
}

// Validate ensures all required dependencies are provided.
func (c *Config) Validate() error {
	if c.Repository == nil {
		return errors.InvalidArgument("statistics repository is required")
	}
	return nil
}

// AsyncRecorder is the production Recorder. Record never blocks; when the
// queue is full the event is dropped and logged rather than stalling the
// event-delivery path.
type AsyncRecorder struct {
	repo statistics.Repository

	mu     sync.Mutex
	closed bool
	events chan Event
	done   chan struct{}
}

// NewAsyncRecorder creates and starts a recorder.
func NewAsyncRecorder(cfg *Config) (*AsyncRecorder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	size := cfg.BufferSize
	if size <= 0 {
		size = 256
	}

	r := &AsyncRecorder{
		repo:   cfg.Repository,
		events: make(chan Event, size),
		done:   make(chan struct{}),
	}
	go r.run()
	return r, nil
}

// Ensure AsyncRecorder implements Recorder
var _ Recorder = (*AsyncRecorder)(nil)

// Record queues an event for persistence.
func (r *AsyncRecorder) Record(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	select {
	case r.events <- event:
	default:
		slog.Warn("statistics queue full, dropping event",
			"type", event.Type,
			"player_id", event.PlayerID,
		)
	}
}

// Close drains the queue and stops the worker. Blocks until every queued
// event has been applied or the context expires.
func (r *AsyncRecorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.events)
	r.mu.Unlock()

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return errors.DeadlineExceeded("statistics recorder did not drain in time")
	}
}

func (r *AsyncRecorder) run() {
	defer close(r.done)
	for event := range r.events {
		r.apply(event)
	}
}

func (r *AsyncRecorder) apply(event Event) {
	input := &statistics.IncrementInput{
		PlayerID: event.PlayerID,
		ArenaID:  event.ArenaID,
	}

	switch event.Type {
	case EventKill:
		input.Kills = 1
	case EventDeath:
		input.Deaths = 1
	case EventAttempt:
		input.Attempts = 1
	case EventCompletion:
		input.Completions = 1
		input.CompletionTime = event.Elapsed
	case EventWaveReached:
		input.WaveReached = event.Wave
	case EventPlaytime:
		input.Playtime = event.Elapsed
	default:
		slog.Warn("unknown statistics event type", "type", event.Type)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := r.repo.Increment(ctx, input); err != nil {
		slog.Error("failed to persist statistics event",
			"type", event.Type,
			"player_id", event.PlayerID,
			"arena_id", event.ArenaID,
			"error", err,
		)
	}
}
