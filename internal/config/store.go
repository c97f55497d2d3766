package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bixgamer707/hordes/internal/entities"
	"github.com/bixgamer707/hordes/internal/errors"
)

// Store owns the loaded configuration snapshot for a config directory
// holding arenas.yaml and messages.yaml. Reload swaps the snapshot
// atomically; readers always see a consistent pair.
type Store struct {
	dir string

	mu        sync.RWMutex
	arenas    []*entities.ArenaDefinition
	templates map[string]string
}

// NewStore creates a store over the directory and performs the initial load.
func NewStore(dir string) (*Store, error) {
	s := &Store{dir: dir}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads both documents. On error the previous snapshot is kept.
func (s *Store) Reload() error {
	arenas, skipped, err := LoadArenas(filepath.Join(s.dir, "arenas.yaml"))
	if err != nil {
		return errors.Wrap(err, "load arenas")
	}
	for _, skip := range skipped {
		slog.Warn("skipping arena with invalid config", "error", skip)
	}

	templates, err := LoadMessages(filepath.Join(s.dir, "messages.yaml"))
	if err != nil {
		return errors.Wrap(err, "load messages")
	}

	s.mu.Lock()
	s.arenas = arenas
	s.templates = templates
	s.mu.Unlock()

	slog.Info("configuration loaded", "dir", s.dir, "arenas", len(arenas), "templates", len(templates))
	return nil
}

// Arenas returns the current arena definitions.
func (s *Store) Arenas() []*entities.ArenaDefinition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.arenas
}

// Templates returns the current message templates.
func (s *Store) Templates() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.templates
}

// Watch reloads the store when either document changes on disk and invokes
// onReload after each successful reload. Events are debounced because
// editors emit bursts of writes. Blocks until the context is cancelled.
func (s *Store) Watch(ctx context.Context, onReload func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create config watcher")
	}
	defer watcher.Close()

	if err := watcher.Add(s.dir); err != nil {
		return errors.Wrapf(err, "watch %s", s.dir)
	}

	var debounce *time.Timer
	reloads := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(event.Name)
			if name != "arenas.yaml" && name != "messages.yaml" {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(250*time.Millisecond, func() {
				select {
				case reloads <- struct{}{}:
				default:
				}
			})
		case <-reloads:
			if err := s.Reload(); err != nil {
				slog.Error("config reload failed, keeping previous snapshot", "error", err)
				continue
			}
			if onReload != nil {
				onReload()
			}
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("config watcher error", "error", watchErr)
		}
	}
}
