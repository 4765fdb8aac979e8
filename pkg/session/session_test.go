package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	// No session yet
	state, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if state != nil {
		t.Fatal("expected nil state before first Save")
	}

	saved := &State{
		UserID:       "u-1",
		WorldID:      "w-1",
		SimulationID: "sim-1",
		Running:      true,
	}
	if err := store.Save(ctx, saved); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.UpdatedAt.IsZero() {
		t.Error("Save should stamp UpdatedAt")
	}

	state, err = store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if state.UserID != "u-1" || state.SimulationID != "sim-1" || !state.Running {
		t.Errorf("loaded state = %+v", state)
	}
	if !state.Active() {
		t.Error("state with a running simulation should be active")
	}
}

func TestEndSimulationKeepsUser(t *testing.T) {
	state := &State{UserID: "u-1", WorldID: "w-1", SimulationID: "sim-1", Running: true}
	state.EndSimulation()

	if state.SimulationID != "" || state.Running {
		t.Errorf("simulation fields not cleared: %+v", state)
	}
	if state.UserID != "u-1" || state.WorldID != "w-1" {
		t.Errorf("user and world must survive: %+v", state)
	}
	if state.Active() {
		t.Error("ended session should not be active")
	}
}

func TestFileStoreClear(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := store.Save(ctx, &State{UserID: "u"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	// Clearing twice is fine
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("second Clear: %v", err)
	}

	state, err := store.Load(ctx)
	if err != nil || state != nil {
		t.Errorf("Load after Clear = %+v, %v", state, err)
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, stateFile), []byte("{nope"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Load(ctx); err == nil {
		t.Error("corrupt session file should fail Load")
	}
}

func TestNilStateNotActive(t *testing.T) {
	var state *State
	if state.Active() {
		t.Error("nil state must not be active")
	}
}
