package entities

import (
	"strings"

	"github.com/bixgamer707/hordes/internal/errors"
)

// DeathAction is the policy applied to a participant immediately after dying.
type DeathAction string

// Death actions
const (
	// DeathActionKick removes the participant from the arena after a short
	// delay.
	DeathActionKick DeathAction = "kick"
	// DeathActionSpectate switches the participant to spectator mode.
	DeathActionSpectate DeathAction = "spectate"
	// DeathActionRejoin relocates the participant out and optionally gates
	// re-entry behind a temporary cooldown.
	DeathActionRejoin DeathAction = "rejoin"
	// DeathActionRespawn returns the participant to combat after a delay,
	// provided the arena is still running.
	DeathActionRespawn DeathAction = "respawn"
)

// ParseDeathAction maps a config string onto a DeathAction.
func ParseDeathAction(s string) (DeathAction, error) {
	switch DeathAction(strings.ToLower(s)) {
	case DeathActionKick, DeathActionSpectate, DeathActionRejoin, DeathActionRespawn:
		return DeathAction(strings.ToLower(s)), nil
	default:
		return "", errors.InvalidArgumentf("unknown death action %q", s)
	}
}

// ProgressionType governs how the arena advances between waves.
type ProgressionType string

// Progression types
const (
	// ProgressionAutomatic schedules the next wave after a fixed delay.
	ProgressionAutomatic ProgressionType = "automatic"
	// ProgressionManual waits for an external trigger before advancing.
	ProgressionManual ProgressionType = "manual"
)

// ParseProgressionType maps a config string onto a ProgressionType.
func ParseProgressionType(s string) (ProgressionType, error) {
	switch ProgressionType(strings.ToLower(s)) {
	case ProgressionAutomatic, ProgressionManual:
		return ProgressionType(strings.ToLower(s)), nil
	default:
		return "", errors.InvalidArgumentf("unknown progression type %q", s)
	}
}

// RewardMode governs when rewards are dispatched.
type RewardMode string

// Reward modes
const (
	// RewardAllWaves dispatches progressive rewards after every wave plus
	// the full reward on victory.
	RewardAllWaves RewardMode = "all_waves"
	// RewardCompletionOnly dispatches rewards only on victory.
	RewardCompletionOnly RewardMode = "completion_only"
)

// ParseRewardMode maps a config string onto a RewardMode.
func ParseRewardMode(s string) (RewardMode, error) {
	switch RewardMode(strings.ToLower(s)) {
	case RewardAllWaves, RewardCompletionOnly:
		return RewardMode(strings.ToLower(s)), nil
	default:
		return "", errors.InvalidArgumentf("unknown reward mode %q", s)
	}
}
