// Package localstore persists the device-local copy of the active
// treatment timer across a prioritized list of durable sources.
package localstore

import "github.com/treatclock/treatclock/internal/model"

// Source is one durable backend for the local timer snapshot. Sources are
// consulted in priority order on load and written through on save; a new
// backend only has to implement this interface.
type Source interface {
	// Name identifies the source in logs.
	Name() string
	// Load reads the persisted timer state. A missing record returns
	// (nil, nil); a corrupt record returns an error.
	Load() (*model.TimerState, error)
	// Save writes the timer state.
	Save(state *model.TimerState) error
	// Clear removes the persisted record. Clearing an absent record is
	// a no-op.
	Clear() error
}
