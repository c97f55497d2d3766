// Package engine declares the narrow interfaces through which the arena core
// drives the game engine. The engine side is an external collaborator; the
// websocket gateway provides the production implementations.
package engine

import (
	"github.com/bixgamer707/hordes/internal/entities"
)

//go:generate mockgen -destination=mock/mock.go -package=enginemock github.com/bixgamer707/hordes/internal/engine Adapter,Messenger,PermissionChecker,RewardDispatcher

// Adapter is the player-side surface of the game engine.
type Adapter interface {
	// Teleport moves the player to the location.
	Teleport(playerID string, loc entities.Location) error

	// SetGameMode forces an engine game mode on the player.
	SetGameMode(playerID, mode string) error

	// SetSpectator switches the player into the spectator visual mode.
	SetSpectator(playerID string) error

	// Heal restores the player's health and hunger to full.
	Heal(playerID string) error

	// ClearInventory wipes the player's inventory.
	ClearInventory(playerID string) error

	// SaveState snapshots the player's inventory and external state on
	// the engine side.
	SaveState(playerID string) error

	// RestoreState restores a snapshot taken by SaveState.
	RestoreState(playerID string) error
}

// Messenger delivers player-facing text. All copy is rendered through the
// messages package before it reaches here.
type Messenger interface {
	// Send delivers a direct message to one player.
	Send(playerID, message string)

	// Broadcast delivers a message to every listed player.
	Broadcast(playerIDs []string, message string)
}

// PermissionChecker answers permission-node queries for a player.
type PermissionChecker interface {
	HasPermission(playerID, node string) bool
}

// RewardDispatcher executes reward commands on behalf of a player. The
// command text is data-driven config; the core never interprets it.
type RewardDispatcher interface {
	Dispatch(playerID, command string) error
}
