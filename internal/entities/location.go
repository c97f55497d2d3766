// Package entities defines the domain types shared across the arena core:
// arena and wave definitions, participants, policies, and statistics shapes.
package entities

// Location is a position inside an engine world.
type Location struct {
	World string  `json:"world"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Yaw   float32 `json:"yaw,omitempty"`
	Pitch float32 `json:"pitch,omitempty"`
}

// IsZero reports whether the location was never set.
func (l Location) IsZero() bool {
	return l.World == "" && l.X == 0 && l.Y == 0 && l.Z == 0
}
