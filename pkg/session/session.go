// Package session persists the CLI's working state between invocations.
//
// A session remembers which user the CLI acts as, which world it is
// editing, and whether a simulation is currently running on the server.
// Commands consult the session so that `qtopo sim stop` or
// `qtopo sim message` work without re-stating ids on every call.
//
// # Usage
//
// Load the current state:
//
//	store, err := session.NewFileStore("")  // Uses ~/.config/qtopo/
//	state, err := store.Load(ctx)
//	if state == nil {
//	    // No session yet
//	}
//
// Record a started simulation:
//
//	state.SimulationID = simID
//	state.Running = true
//	store.Save(ctx, state)
package session

import (
	"context"
	"time"
)

// State is the CLI's persisted working state.
type State struct {
	// UserID identifies the user on the server. Sent as the bearer
	// credential on authenticated requests.
	UserID string `json:"user_id,omitempty"`

	// WorldID is the world the CLI is editing.
	WorldID string `json:"world_id,omitempty"`

	// SimulationID is the id of the last simulation started from this
	// session. Empty when no simulation was ever started.
	SimulationID string `json:"simulation_id,omitempty"`

	// Running reports whether that simulation is believed to be running.
	// The server is authoritative; this is the last known state.
	Running bool `json:"running"`

	// UpdatedAt is the time of the last save.
	UpdatedAt time.Time `json:"updated_at"`
}

// Active reports whether the session has a simulation believed running.
func (s *State) Active() bool {
	return s != nil && s.SimulationID != "" && s.Running
}

// EndSimulation clears the simulation fields, keeping the user and world.
func (s *State) EndSimulation() {
	s.SimulationID = ""
	s.Running = false
}

// Store is the interface for session persistence backends.
type Store interface {
	// Load retrieves the saved state. Returns nil, nil when no session
	// has been saved yet.
	Load(ctx context.Context) (*State, error)

	// Save persists the state, stamping UpdatedAt.
	Save(ctx context.Context, state *State) error

	// Clear removes the saved state. Clearing a missing session is not
	// an error.
	Clear(ctx context.Context) error
}
