package autosave

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/qforge/qtopo/pkg/snapshot"
	"github.com/qforge/qtopo/pkg/topology"
)

type fakeSaver struct {
	mu    sync.Mutex
	calls int
	fail  bool
	last  *snapshot.Snapshot
}

func (f *fakeSaver) SaveTopology(ctx context.Context, snap *snapshot.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail {
		return errors.New("server unavailable")
	}
	f.last = snap
	return nil
}

func (f *fakeSaver) saved() *snapshot.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

func (f *fakeSaver) setFail(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = v
}

func quiet() *log.Logger { return log.New(io.Discard) }

func TestFlushSavesOnlyOnChange(t *testing.T) {
	g := topology.New()
	saver := &fakeSaver{}
	loop := New(g, saver, time.Minute, quiet())

	ctx := context.Background()

	// First flush persists the empty topology.
	if err := loop.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	if saver.calls != 1 {
		t.Fatalf("calls = %d, want 1", saver.calls)
	}

	// Nothing changed: no save.
	if err := loop.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	if saver.calls != 1 {
		t.Fatalf("unchanged flush saved anyway, calls = %d", saver.calls)
	}

	// A change triggers the next save.
	if _, err := g.AddNode(topology.KindClassicalHost, "", 0, 0); err != nil {
		t.Fatal(err)
	}
	if err := loop.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	if saver.calls != 2 {
		t.Fatalf("calls = %d, want 2", saver.calls)
	}
}

func TestFailedSaveKeepsBaseline(t *testing.T) {
	g := topology.New()
	if _, err := g.AddNode(topology.KindQuantumHost, "", 0, 0); err != nil {
		t.Fatal(err)
	}
	saver := &fakeSaver{fail: true}
	loop := New(g, saver, time.Minute, quiet())

	ctx := context.Background()
	if err := loop.Flush(ctx); err == nil {
		t.Fatal("expected save error")
	}

	// Baseline was not advanced: the retry still attempts the save.
	saver.setFail(false)
	if err := loop.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	if saver.calls != 2 {
		t.Fatalf("calls = %d, want 2", saver.calls)
	}
	if saver.last == nil {
		t.Fatal("successful retry did not deliver a snapshot")
	}
}

func TestPrimeSuppressesInitialSave(t *testing.T) {
	g := topology.New()
	if _, err := g.AddNode(topology.KindClassicalHost, "ch1", 0, 0); err != nil {
		t.Fatal(err)
	}

	data, err := snapshot.Marshal(snapshot.Export(g, quiet()))
	if err != nil {
		t.Fatal(err)
	}

	saver := &fakeSaver{}
	loop := New(g, saver, time.Minute, quiet())
	loop.Prime(data)

	if err := loop.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	if saver.calls != 0 {
		t.Fatalf("primed loop saved unchanged topology, calls = %d", saver.calls)
	}
}

func TestRunReactsToChanges(t *testing.T) {
	g := topology.New()
	saver := &fakeSaver{}
	loop := New(g, saver, time.Hour, quiet())
	// Persist the initial state so only the change below triggers a save.
	if err := loop.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	if _, err := g.AddNode(topology.KindQuantumRepeater, "", 0, 0); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(2 * time.Second)
	for saver.saved() == nil {
		select {
		case <-deadline:
			t.Fatal("Run did not save after a graph change")
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run returned %v, want context.Canceled", err)
	}
}
