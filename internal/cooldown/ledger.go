// Package cooldown implements the time-gated rejoin restrictions applied
// after arena completions and rejoin death actions.
package cooldown

import (
	"sync"
	"time"

	"github.com/bixgamer707/hordes/internal/pkg/clock"
)

type key struct {
	player string
	arena  string
}

// Ledger tracks cooldown expiry instants across three independent
// namespaces: global (all arenas), per-arena, and temporary (short-lived
// rejoin gates). Entries are lazily evicted on lookup and proactively by
// CleanupExpired. Safe for concurrent use.
type Ledger struct {
	mu    sync.Mutex
	clock clock.Clock

	global    map[string]time.Time
	arena     map[key]time.Time
	temporary map[key]time.Time
}

// NewLedger creates an empty ledger on the given clock.
func NewLedger(clk clock.Clock) *Ledger {
	return &Ledger{
		clock:     clk,
		global:    make(map[string]time.Time),
		arena:     make(map[key]time.Time),
		temporary: make(map[key]time.Time),
	}
}

// SetGlobal blocks the player from every arena for the given duration.
// Overwrites any existing global entry; cooldowns never stack.
func (l *Ledger) SetGlobal(playerID string, d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.global[playerID] = l.clock.Now().Add(d)
}

// SetArena blocks the player from one arena for the given duration.
func (l *Ledger) SetArena(playerID, arenaID string, d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.arena[key{playerID, arenaID}] = l.clock.Now().Add(d)
}

// SetTemporary installs a short-lived rejoin gate for one arena.
func (l *Ledger) SetTemporary(playerID, arenaID string, d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.temporary[key{playerID, arenaID}] = l.clock.Now().Add(d)
}

// HasCooldown reports whether any namespace currently blocks the player from
// the arena. Checks global first, then per-arena, then temporary; expired
// entries encountered along the way are evicted.
func (l *Ledger) HasCooldown(playerID, arenaID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	k := key{playerID, arenaID}

	if expiry, ok := l.global[playerID]; ok {
		if now.Before(expiry) {
			return true
		}
		delete(l.global, playerID)
	}
	if expiry, ok := l.arena[k]; ok {
		if now.Before(expiry) {
			return true
		}
		delete(l.arena, k)
	}
	if expiry, ok := l.temporary[k]; ok {
		if now.Before(expiry) {
			return true
		}
		delete(l.temporary, k)
	}
	return false
}

// Remaining returns the longest remaining block for the player and arena, or
// zero when no cooldown is active. Used to render rejection messages.
func (l *Ledger) Remaining(playerID, arenaID string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	var longest time.Duration

	check := func(expiry time.Time, ok bool) {
		if ok && now.Before(expiry) {
			if rem := expiry.Sub(now); rem > longest {
				longest = rem
			}
		}
	}

	expiry, ok := l.global[playerID]
	check(expiry, ok)
	expiry, ok = l.arena[key{playerID, arenaID}]
	check(expiry, ok)
	expiry, ok = l.temporary[key{playerID, arenaID}]
	check(expiry, ok)

	return longest
}

// ClearPlayer removes every entry for the player across all namespaces.
func (l *Ledger) ClearPlayer(playerID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.global, playerID)
	for k := range l.arena {
		if k.player == playerID {
			delete(l.arena, k)
		}
	}
	for k := range l.temporary {
		if k.player == playerID {
			delete(l.temporary, k)
		}
	}
}

// CleanupExpired sweeps all namespaces and removes expired entries, bounding
// memory independent of lookup traffic. Returns the number removed.
func (l *Ledger) CleanupExpired() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	removed := 0

	for p, expiry := range l.global {
		if !now.Before(expiry) {
			delete(l.global, p)
			removed++
		}
	}
	for k, expiry := range l.arena {
		if !now.Before(expiry) {
			delete(l.arena, k)
			removed++
		}
	}
	for k, expiry := range l.temporary {
		if !now.Before(expiry) {
			delete(l.temporary, k)
			removed++
		}
	}
	return removed
}
